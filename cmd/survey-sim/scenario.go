package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/simulation"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// maxExtraRounds 节流积压时最多追加的调查轮数
const maxExtraRounds = 8

// scenarioRow 单个目标的调查结果
type scenarioRow struct {
	Name     string `json:"name"`
	NodeID   string `json:"node_id"`
	Status   string `json:"status"`
	Inbound  int    `json:"inbound,omitempty"`
	Outbound int    `json:"outbound,omitempty"`
}

func newScenarioCmd() *cobra.Command {
	var (
		surveyor   string
		closeTime  time.Duration
		outputJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scenario [target...]",
		Short: "在六节点拓扑上运行一次调查",
		Long: `在回环网络上构建六节点拓扑并由 surveyor 调查给定目标:

  E → A → B → C → D
          B → F

仲裁集为 {A, C}；D 的 overlay 版本过低；B 的应答白名单为 {A, E}，其余节点只应答 A。
未指定目标时调查除 surveyor 外的全部节点。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := simulation.NewScenario(closeTime, config.DefaultSurveyConfig())
			if err != nil {
				return err
			}
			targets, err := resolveTargets(surveyor, args)
			if err != nil {
				return err
			}

			rows, result, err := runScenario(sc, surveyor, targets)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"surveyor": surveyor,
					"node_id":  sc.ID(surveyor).String(),
					"targets":  rows,
					"result":   result,
				})
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "surveyor: %s (%s)\n", surveyor, sc.ID(surveyor).ShortString())
			for _, row := range rows {
				if row.Status == statusAnswered {
					_, _ = fmt.Fprintf(w, "%s  %-11s inbound=%d outbound=%d\n", row.Name, row.Status, row.Inbound, row.Outbound)
					continue
				}
				_, _ = fmt.Fprintf(w, "%s  %s\n", row.Name, row.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&surveyor, "surveyor", simulation.NodeA, "发起调查的节点名")
	cmd.Flags().DurationVar(&closeTime, "close-time", 5*time.Second, "模拟账本关闭间隔")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "以 JSON 输出")
	return cmd
}

// 目标状态
const (
	statusAnswered   = "answered"
	statusNoResponse = "no-response"
	statusBad        = "bad-response"
	statusNotSent    = "not-sent"
)

// resolveTargets 校验节点名，未指定目标时取除 surveyor 外的全部节点
func resolveTargets(surveyor string, args []string) ([]string, error) {
	if !slices.Contains(simulation.ScenarioNames, surveyor) {
		return nil, fmt.Errorf("未知节点 %q，可选 %v", surveyor, simulation.ScenarioNames)
	}
	if len(args) == 0 {
		out := make([]string, 0, len(simulation.ScenarioNames)-1)
		for _, name := range simulation.ScenarioNames {
			if name != surveyor {
				out = append(out, name)
			}
		}
		return out, nil
	}
	for _, name := range args {
		if !slices.Contains(simulation.ScenarioNames, name) {
			return nil, fmt.Errorf("未知节点 %q，可选 %v", name, simulation.ScenarioNames)
		}
	}
	return args, nil
}

// runScenario 发出请求并推进模拟，直到积压清空或达到轮数上限
func runScenario(sc *simulation.Scenario, surveyor string, targets []string) ([]scenarioRow, types.SurveyResult, error) {
	mgr := sc.Nodes[surveyor].Manager

	for _, name := range targets {
		err := mgr.SurveyTopology(sc.ID(name), 0)
		switch {
		case err == nil:
		case errors.Is(err, types.ErrThrottled):
			log.Debug("请求被节流，等待下一窗口", "target", name)
		default:
			return nil, types.SurveyResult{}, fmt.Errorf("调查 %s 失败: %w", name, err)
		}
	}

	sc.SurveyRound()
	for i := 0; i < maxExtraRounds && len(mgr.Backlog()) > 0; i++ {
		sc.SurveyRound()
	}

	result := mgr.Result()
	rows := make([]scenarioRow, 0, len(targets))
	for _, name := range targets {
		id := sc.ID(name)
		row := scenarioRow{Name: name, NodeID: id.String()}
		body, requested := result.Topology[id.String()]
		switch {
		case slices.Contains(result.BadResponseNodes, id.String()):
			row.Status = statusBad
		case !requested:
			row.Status = statusNotSent
		case body == nil:
			row.Status = statusNoResponse
		default:
			row.Status = statusAnswered
			row.Inbound = len(body.InboundPeers)
			row.Outbound = len(body.OutboundPeers)
		}
		rows = append(rows, row)
	}
	return rows, result, nil
}
