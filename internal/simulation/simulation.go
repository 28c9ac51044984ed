package simulation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

var log = logger.Logger("simulation")

// 模拟错误
var (
	ErrUnknownNode   = errors.New("simulation: unknown node")
	ErrNotConnected  = errors.New("simulation: peers not connected")
	ErrAlreadyLinked = errors.New("simulation: peers already connected")
)

// genesisLedger 模拟网络的起始账本序号
const genesisLedger = 2

// NodeOptions 节点选项
type NodeOptions struct {
	// Identity 节点身份，为空时随机生成
	Identity *identity.Identity

	// Survey 调查配置，为 nil 时使用默认配置
	Survey *config.SurveyConfig

	// OverlayVersion 覆盖声明的 overlay 版本，0 表示使用配置值
	OverlayVersion uint32

	// SurveyorKeys 应答白名单
	SurveyorKeys []types.NodeID

	// Metrics 可选的指标
	Metrics *metrics.SurveyMetrics
}

// Node 模拟网络中的一个节点
type Node struct {
	Identity *identity.Identity
	Manager  *survey.Manager
	Config   config.SurveyConfig

	version uint32
	overlay *loopOverlay
}

// ID 返回节点 ID
func (n *Node) ID() types.NodeID {
	return n.Identity.ID()
}

// Version 返回节点声明的 overlay 版本
func (n *Node) Version() uint32 {
	return n.version
}

// envelope 在途的线上消息
type envelope struct {
	from types.NodeID
	to   types.NodeID
	data []byte
}

// Simulation 回环模拟网络
type Simulation struct {
	mu sync.Mutex

	clock     *clock.Mock
	closeTime time.Duration
	ledger    uint32
	quorum    types.NodeSet

	nodes map[types.NodeID]*Node
	order []types.NodeID
	links map[types.NodeID]map[types.NodeID]*link
	queue []envelope

	delivered int
}

// New 创建模拟网络，closeTime 为预期账本关闭间隔
func New(closeTime time.Duration) *Simulation {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	return &Simulation{
		clock:     clk,
		closeTime: closeTime,
		ledger:    genesisLedger,
		quorum:    types.NewNodeSet(),
		nodes:     make(map[types.NodeID]*Node),
		links:     make(map[types.NodeID]map[types.NodeID]*link),
	}
}

// Clock 返回共享的 mock 时钟
func (s *Simulation) Clock() *clock.Mock {
	return s.clock
}

// CloseTime 返回预期账本关闭间隔
func (s *Simulation) CloseTime() time.Duration {
	return s.closeTime
}

// ============================================================================
//                              拓扑
// ============================================================================

// AddNode 加入一个节点
func (s *Simulation) AddNode(opts NodeOptions) (*Node, error) {
	id := opts.Identity
	if id == nil {
		var err error
		if id, err = identity.Generate(); err != nil {
			return nil, err
		}
	}

	cfg := config.DefaultSurveyConfig()
	if opts.Survey != nil {
		cfg = *opts.Survey
	}
	if len(opts.SurveyorKeys) > 0 {
		cfg.SurveyorKeys = make([]string, 0, len(opts.SurveyorKeys))
		for _, k := range opts.SurveyorKeys {
			cfg.SurveyorKeys = append(cfg.SurveyorKeys, k.String())
		}
	}
	version := cfg.OverlayVersion
	if opts.OverlayVersion != 0 {
		version = opts.OverlayVersion
	}

	s.mu.Lock()
	if _, ok := s.nodes[id.ID()]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("simulation: duplicate node %s", id.ID().ShortString())
	}
	s.mu.Unlock()

	overlay := &loopOverlay{sim: s, self: id.ID()}
	mgr, err := survey.New(survey.Params{
		Identity: id,
		Overlay:  overlay,
		Quorum:   quorumSource{s},
		Ledger:   ledgerSource{s},
		Config:   cfg,
		Clock:    s.clock,
		Metrics:  opts.Metrics,
	})
	if err != nil {
		return nil, err
	}

	n := &Node{
		Identity: id,
		Manager:  mgr,
		Config:   cfg,
		version:  version,
		overlay:  overlay,
	}

	s.mu.Lock()
	s.nodes[n.ID()] = n
	s.order = append(s.order, n.ID())
	s.links[n.ID()] = make(map[types.NodeID]*link)
	s.mu.Unlock()

	log.Debug("加入节点", "node", n.ID().ShortString(), "version", version)
	return n, nil
}

// AddConnection 建立 initiator → acceptor 的连接
//
// 对 initiator 是出站连接，对 acceptor 是入站连接。
func (s *Simulation) AddConnection(initiator, acceptor types.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[initiator]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, initiator.ShortString())
	}
	if _, ok := s.nodes[acceptor]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, acceptor.ShortString())
	}
	if _, ok := s.links[initiator][acceptor]; ok {
		return ErrAlreadyLinked
	}

	now := s.clock.Now()
	s.links[initiator][acceptor] = &link{peer: acceptor, inbound: false, connectedAt: now}
	s.links[acceptor][initiator] = &link{peer: initiator, inbound: true, connectedAt: now}
	return nil
}

// SetQuorum 设置所有节点共享的传递仲裁集
func (s *Simulation) SetQuorum(ids ...types.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quorum = types.NewNodeSet(ids...)
}

// Node 按 ID 查找节点
func (s *Simulation) Node(id types.NodeID) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes[id]
}

// Nodes 按加入顺序返回全部节点
func (s *Simulation) Nodes() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// ============================================================================
//                              推进
// ============================================================================

// Crank 投递队首的一条消息，队列为空时返回 false
func (s *Simulation) Crank() bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	env := s.queue[0]
	s.queue = s.queue[1:]
	dst := s.nodes[env.to]
	if l := s.links[env.to][env.from]; l != nil {
		l.messagesRead++
		l.bytesRead += uint64(len(env.data))
	}
	s.delivered++
	s.mu.Unlock()

	if err := dst.Manager.HandleWire(env.from, env.data); err != nil {
		log.Warn("投递失败", "from", env.from.ShortString(), "to", env.to.ShortString(), "error", err)
	}
	return true
}

// CrankUntilIdle 投递直到队列为空或达到 max 条，返回投递数量
func (s *Simulation) CrankUntilIdle(max int) int {
	n := 0
	for n < max && s.Crank() {
		n++
	}
	return n
}

// maxCranksPerStep 单个时间步内最多投递的消息数
const maxCranksPerStep = 100_000

// CrankForAtLeast 推进至少 d 的模拟时间
//
// 每一步先投递完所有在途消息，再前进一个账本间隔并关闭账本。
func (s *Simulation) CrankForAtLeast(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += s.closeTime {
		s.CrankUntilIdle(maxCranksPerStep)
		s.clock.Add(s.closeTime)
		s.CloseLedger()
	}
	s.CrankUntilIdle(maxCranksPerStep)
}

// CloseLedger 关闭一个账本并通知所有节点
func (s *Simulation) CloseLedger() uint32 {
	s.mu.Lock()
	s.ledger++
	seq := s.ledger
	nodes := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id])
	}
	s.mu.Unlock()

	for _, n := range nodes {
		n.Manager.OnLedgerClosed(seq)
	}
	return seq
}

// Ledger 返回最近关闭的账本序号
func (s *Simulation) Ledger() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

// Pending 返回队列中的消息数
func (s *Simulation) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Delivered 返回累计投递的消息数
func (s *Simulation) Delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}

// enqueue 编码并入队一条消息
func (s *Simulation) enqueue(from, to types.NodeID, msg types.SurveyMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.links[from][to]
	if l == nil {
		return fmt.Errorf("%w: %s -> %s", ErrNotConnected, from.ShortString(), to.ShortString())
	}
	data, err := codec.EncodeMessage(msg)
	if err != nil {
		return err
	}
	l.messagesWritten++
	l.bytesWritten += uint64(len(data))
	s.queue = append(s.queue, envelope{from: from, to: to, data: data})
	return nil
}
