package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/introspect"
	"github.com/dep2p/go-dep2p-survey/internal/simulation"
)

// maxCranksPerTick 每个节拍最多投递的消息数
const maxCranksPerTick = 10_000

func newServeCmd() *cobra.Command {
	var (
		addr      string
		node      string
		closeTime time.Duration
		tick      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "持续运行六节点场景并暴露一个节点的管理接口",
		Long: `持续运行六节点场景：每个节拍投递在途消息、推进一个账本间隔并关闭账本。
指定节点的管理接口通过 HTTP 暴露，可用 /surveytopology、/getsurveyresult 等端点驱动调查。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tick <= 0 {
				return fmt.Errorf("tick 必须大于 0")
			}
			sc, err := simulation.NewScenario(closeTime, config.DefaultSurveyConfig())
			if err != nil {
				return err
			}
			n, ok := sc.Nodes[node]
			if !ok {
				return fmt.Errorf("未知节点 %q，可选 %v", node, simulation.ScenarioNames)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := introspect.New(introspect.Config{Addr: addr, Survey: n.Manager})
			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("启动管理服务失败: %w", err)
			}
			defer func() { _ = srv.Stop() }()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "node %s (%s) admin on http://%s\n", node, n.ID(), srv.Addr())
			for _, name := range simulation.ScenarioNames {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", name, sc.ID(name))
			}

			runSimulation(ctx, sc.Sim, tick)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAdminConfig().ListenAddr, "管理接口监听地址")
	cmd.Flags().StringVar(&node, "node", simulation.NodeA, "暴露管理接口的节点名")
	cmd.Flags().DurationVar(&closeTime, "close-time", 5*time.Second, "模拟账本关闭间隔")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "真实时间中每个账本间隔的长度")
	return cmd
}

// runSimulation 按节拍推进模拟网络，直到 ctx 取消
func runSimulation(ctx context.Context, sim *simulation.Simulation, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sim.CrankUntilIdle(maxCranksPerTick)
			sim.Clock().Add(sim.CloseTime())
			seq := sim.CloseLedger()
			log.Debug("账本已关闭", "seq", seq, "delivered", sim.Delivered())
		}
	}
}
