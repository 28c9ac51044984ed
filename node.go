package survey

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/introspect"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
	coresurvey "github.com/dep2p/go-dep2p-survey/internal/core/survey"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/history"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
)

var log = logger.Logger("survey")

// Node 拓扑调查节点
//
// Node 是嵌入方与调查子系统交互的主入口，聚合身份、指标、归档、
// 调查管理器与可选的管理接口。传输层、仲裁集与账本进度由嵌入方通过
// WithOverlay / WithQuorum / WithLedger 提供。
//
// 使用示例：
//
//	node, err := survey.New(ctx,
//	    survey.WithOverlay(overlay),
//	    survey.WithQuorum(quorum),
//	    survey.WithLedger(ledger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	if err := node.Start(ctx); err != nil {
//	    return err
//	}
//	_ = node.SurveyTopology(peer, 0)
type Node struct {
	mu sync.RWMutex

	config *nodeConfig
	app    *fx.App

	// 由 Fx 注入
	identity *identity.Identity
	manager  *coresurvey.Manager
	gatherer prometheus.Gatherer
	storage  engine.Engine
	admin    *introspect.Server

	state   NodeState
	started bool
	closed  bool
}

// New 创建调查节点
//
// 只装配组件，不启动后台任务；调用 Start 后节点才处理消息。
func New(_ context.Context, opts ...Option) (*Node, error) {
	cfg := newNodeConfig()
	if err := cfg.apply(opts...); err != nil {
		return nil, fmt.Errorf("apply options: %w", err)
	}

	node := &Node{
		config: cfg,
		state:  StateIdle,
	}

	app, err := buildFxApp(cfg, node)
	if err != nil {
		return nil, err
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build node: %w", err)
	}
	node.app = app

	log.Debug("节点已创建", "node", node.identity.ID().ShortString())
	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回本节点 ID
func (n *Node) ID() NodeID {
	return n.identity.ID()
}

// State 返回节点当前状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Gatherer 返回指标采集器
func (n *Node) Gatherer() prometheus.Gatherer {
	return n.gatherer
}

// AdminAddr 返回管理接口实际监听地址，未启用时为空
func (n *Node) AdminAddr() string {
	if n.admin == nil {
		return ""
	}
	return n.admin.Addr()
}

// AdminHandler 返回管理接口的 http.Handler
//
// 不依赖 Admin.ListenAddr，便于挂载到嵌入方自己的 HTTP 服务上。
func (n *Node) AdminHandler() http.Handler {
	if n.admin != nil {
		return n.admin.Handler()
	}
	return introspect.New(introspect.Config{
		Survey:   n.manager,
		Gatherer: n.gatherer,
	}).Handler()
}

// ════════════════════════════════════════════════════════════════════════════
//                              调查操作
// ════════════════════════════════════════════════════════════════════════════

// SurveyTopology 请求调查指定节点的拓扑
//
// duration 为 0 时使用默认会话时长。被节流时返回 ErrThrottled，
// 目标保留在待发队列中，节流窗口释放后自动发出。
func (n *Node) SurveyTopology(surveyed NodeID, duration time.Duration) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.manager.SurveyTopology(surveyed, duration)
}

// StopSurvey 结束当前调查会话，结果保留至下次开启
func (n *Node) StopSurvey() error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	n.manager.StopSurvey()
	return nil
}

// Result 返回当前结果快照
func (n *Node) Result() SurveyResult {
	return n.manager.Result()
}

// ResultJSON 返回当前结果的 JSON 编码
func (n *Node) ResultJSON() ([]byte, error) {
	return n.manager.ResultJSON()
}

// History 返回已归档的调查会话，最近结束的在前
func (n *Node) History() ([]history.Record, error) {
	return n.manager.History()
}

// HandleMessage 处理从 from 收到的调查消息
//
// 节点未运行时静默丢弃。
func (n *Node) HandleMessage(from NodeID, msg SurveyMessage) {
	if n.checkRunning() != nil {
		return
	}
	n.manager.HandleMessage(from, msg)
}

// HandleWire 解码并处理一帧线上调查消息
func (n *Node) HandleWire(from NodeID, data []byte) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.manager.HandleWire(from, data)
}

// OnLedgerClosed 账本关闭通知
func (n *Node) OnLedgerClosed(seq uint32) {
	if n.checkRunning() != nil {
		return
	}
	n.manager.OnLedgerClosed(seq)
}

// checkRunning 检查节点是否处于运行状态
func (n *Node) checkRunning() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}
	return nil
}
