package simulation

import (
	"time"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// 拓扑场景中的节点名
const (
	NodeA = "A"
	NodeB = "B"
	NodeC = "C"
	NodeD = "D" // overlay 版本低于调查最低版本
	NodeE = "E" // 不在传递仲裁集内
	NodeF = "F"
)

// ScenarioNames 场景节点名，按加入顺序
var ScenarioNames = []string{NodeA, NodeB, NodeC, NodeD, NodeE, NodeF}

// Scenario 六节点拓扑场景
//
//	E → A → B → C → D
//	        B → F
//
// 仲裁集为 {A, C}。B 的应答白名单为 {A, E}，其余节点只应答 A。
// D 的 overlay 版本低于 MinOverlayVersion，不会收到任何调查消息。
type Scenario struct {
	Sim   *Simulation
	Nodes map[string]*Node
}

// NewScenario 构建六节点拓扑场景
func NewScenario(closeTime time.Duration, base config.SurveyConfig) (*Scenario, error) {
	ids := make(map[string]*identity.Identity, len(ScenarioNames))
	for _, name := range ScenarioNames {
		id, err := identity.Generate()
		if err != nil {
			return nil, err
		}
		ids[name] = id
	}

	sim := New(closeTime)
	sc := &Scenario{Sim: sim, Nodes: make(map[string]*Node, len(ScenarioNames))}

	for _, name := range ScenarioNames {
		cfg := base
		opts := NodeOptions{
			Identity:     ids[name],
			Survey:       &cfg,
			SurveyorKeys: []types.NodeID{ids[NodeA].ID()},
		}
		switch name {
		case NodeB:
			opts.SurveyorKeys = append(opts.SurveyorKeys, ids[NodeE].ID())
		case NodeD:
			opts.OverlayVersion = base.MinOverlayVersion - 1
		}

		n, err := sim.AddNode(opts)
		if err != nil {
			return nil, err
		}
		sc.Nodes[name] = n
	}

	sim.SetQuorum(sc.ID(NodeA), sc.ID(NodeC))

	for _, l := range [][2]string{
		{NodeE, NodeA},
		{NodeA, NodeB},
		{NodeB, NodeC},
		{NodeB, NodeF},
		{NodeC, NodeD},
	} {
		if err := sim.AddConnection(sc.ID(l[0]), sc.ID(l[1])); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

// ID 返回节点 ID
func (sc *Scenario) ID(name string) types.NodeID {
	return sc.Nodes[name].ID()
}

// Name 返回节点名，未知节点返回 Base58 ID
func (sc *Scenario) Name(id types.NodeID) string {
	for name, n := range sc.Nodes {
		if n.ID() == id {
			return name
		}
	}
	return id.String()
}

// SurveyRound 推进一个节流窗口，使在途请求完成往返
func (sc *Scenario) SurveyRound() {
	n := sc.Nodes[NodeA]
	sc.Sim.CrankForAtLeast(n.Config.ThrottleWindow(sc.Sim.closeTime))
}
