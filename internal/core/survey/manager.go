package survey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/history"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/relay"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/results"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/secure"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/throttle"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
	"github.com/dep2p/go-dep2p-survey/pkg/interfaces"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

var log = logger.Logger("survey/manager")

// DefaultSessionDuration 未指定时长时的会话时长
const DefaultSessionDuration = 30 * time.Minute

// defaultTickInterval 预期账本关闭时间未知时的节拍间隔
const defaultTickInterval = 5 * time.Second

// Params Manager 依赖
type Params struct {
	Identity *identity.Identity
	Overlay  interfaces.Overlay
	Quorum   interfaces.QuorumSource
	Ledger   interfaces.LedgerSource
	Config   config.SurveyConfig

	// 可选
	Clock   clock.Clock
	Metrics *metrics.SurveyMetrics
	Archive *history.Archive
}

// session 调查会话
type session struct {
	id        uuid.UUID
	startedAt time.Time
	expiresAt time.Time
	running   bool
}

// Manager 调查服务
type Manager struct {
	mu sync.Mutex

	id      *identity.Identity
	self    types.NodeID
	ledger  interfaces.LedgerSource
	clock   clock.Clock
	metrics *metrics.SurveyMetrics
	archive *history.Archive

	engine  *relay.Engine
	tracker *throttle.Tracker
	table   *results.Table

	session *session
	backlog []types.NodeID

	cancel context.CancelFunc
	done   chan struct{}
}

// New 创建调查服务
func New(p Params) (*Manager, error) {
	if p.Ledger == nil {
		return nil, errors.New("survey: ledger source is required")
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}

	m := &Manager{
		id:      p.Identity,
		ledger:  p.Ledger,
		clock:   clk,
		metrics: p.Metrics,
		archive: p.Archive,
		tracker: throttle.NewTracker(
			p.Config.ThrottleWindow(p.Ledger.ExpectedCloseTime()),
			p.Config.MaxRequestsPerWindow,
			clk),
		table: results.NewTable(),
	}

	eng, err := relay.New(relay.Params{
		Identity: p.Identity,
		Overlay:  p.Overlay,
		Quorum:   p.Quorum,
		Ledger:   p.Ledger,
		Config:   p.Config,
		Clock:    clk,
		Metrics:  p.Metrics,
		Sink:     m.handleResponseLocked,
	})
	if err != nil {
		return nil, err
	}
	m.engine = eng
	m.self = p.Identity.ID()
	return m, nil
}

// ID 返回本节点 ID
func (m *Manager) ID() types.NodeID {
	return m.self
}

// ============================================================================
//                              会话
// ============================================================================

// StartSurvey 开启新的调查会话
//
// 已有会话进行中时返回原会话 ID 与 false。
func (m *Manager) StartSurvey(duration time.Duration) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked(duration)
}

func (m *Manager) startLocked(duration time.Duration) (uuid.UUID, bool) {
	if m.session != nil && m.session.running {
		m.extendLocked(duration)
		return m.session.id, false
	}
	if duration <= 0 {
		duration = DefaultSessionDuration
	}

	now := m.clock.Now()
	m.session = &session{
		id:        uuid.New(),
		startedAt: now,
		expiresAt: now.Add(duration),
		running:   true,
	}
	m.table.Reset()
	m.tracker.Reset()
	m.backlog = nil
	m.metrics.SetPending(0)

	log.Info("开启调查会话", "session", m.session.id, "duration", duration)
	return m.session.id, true
}

// extendLocked 把会话到期时间延长到 now + duration（只延长不缩短）
func (m *Manager) extendLocked(duration time.Duration) {
	if duration <= 0 {
		return
	}
	if exp := m.clock.Now().Add(duration); exp.After(m.session.expiresAt) {
		m.session.expiresAt = exp
	}
}

// StopSurvey 结束当前调查会话，结果保留至下次开启
func (m *Manager) StopSurvey() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endLocked("stopped")
}

func (m *Manager) endLocked(reason string) {
	if m.session == nil || !m.session.running {
		return
	}
	m.session.running = false
	m.backlog = nil
	log.Info("结束调查会话", "session", m.session.id, "reason", reason, "results", m.table.Len())

	if m.archive == nil {
		return
	}
	rec := history.Record{
		SessionID: m.session.id,
		StartedAt: m.session.startedAt,
		EndedAt:   m.clock.Now(),
		Result:    m.resultLocked(),
	}
	if err := m.archive.Save(rec); err != nil {
		log.Warn("归档调查会话失败", "session", m.session.id, "error", err)
	}
}

// Running 是否有会话进行中
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.running
}

// ============================================================================
//                              请求
// ============================================================================

// SurveyTopology 请求调查指定节点的拓扑
//
// 没有会话时先开启会话。被节流时返回 ErrThrottled，目标进入待发队列，
// 在后续账本关闭或节拍时自动重发。
func (m *Manager) SurveyTopology(surveyed types.NodeID, duration time.Duration) error {
	if surveyed.IsEmpty() {
		return types.ErrInvalidNodeID
	}
	if duration < 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidDuration, duration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.startLocked(duration)

	if surveyed == m.self {
		m.table.RecordAnswer(m.self, m.engine.LocalTopology())
		m.metrics.Result(metrics.ResultAnswer)
		return nil
	}

	m.table.MarkRequested(surveyed)
	if err := m.submitLocked(surveyed); err != nil {
		if errors.Is(err, types.ErrThrottled) && !m.tracker.IsPending(surveyed) {
			m.enqueueLocked(surveyed)
		}
		return err
	}
	return nil
}

// submitLocked 占用节流额度并发出请求
func (m *Manager) submitLocked(surveyed types.NodeID) error {
	if _, err := m.tracker.Submit(surveyed); err != nil {
		return err
	}
	defer m.metrics.SetPending(len(m.tracker.Pending()))

	req := types.SurveyMessage{
		Type:       types.MessageRequest,
		Command:    types.CommandTopology,
		SurveyorID: m.self,
		SurveyedID: surveyed,
		LedgerSeq:  m.ledger.LastClosedLedger(),
	}
	if err := m.engine.Originate(req); err != nil {
		m.tracker.Complete(surveyed)
		return fmt.Errorf("originate survey request: %w", err)
	}
	log.Debug("发出调查请求", "surveyed", surveyed.ShortString(), "ledger", req.LedgerSeq)
	return nil
}

func (m *Manager) enqueueLocked(surveyed types.NodeID) {
	for _, id := range m.backlog {
		if id == surveyed {
			return
		}
	}
	m.backlog = append(m.backlog, surveyed)
}

// topOffLocked 用当前窗口的剩余额度发出待发队列中的请求
func (m *Manager) topOffLocked() {
	if m.session == nil || !m.session.running {
		return
	}
	for len(m.backlog) > 0 && m.tracker.Remaining() > 0 {
		next := m.backlog[0]
		m.backlog = m.backlog[1:]

		if m.tracker.IsPending(next) {
			continue
		}
		if err := m.submitLocked(next); err != nil {
			if errors.Is(err, types.ErrThrottled) {
				m.backlog = append([]types.NodeID{next}, m.backlog...)
				return
			}
			log.Warn("重发调查请求失败", "surveyed", next.ShortString(), "error", err)
		}
	}
}

// Backlog 返回待发队列副本
func (m *Manager) Backlog() []types.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.NodeID(nil), m.backlog...)
}

// ============================================================================
//                              入站
// ============================================================================

// HandleMessage 处理从 from 收到的调查消息
func (m *Manager) HandleMessage(from types.NodeID, msg types.SurveyMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.HandleMessage(from, msg)
}

// HandleWire 解码并处理从 from 收到的线上字节
func (m *Manager) HandleWire(from types.NodeID, data []byte) error {
	m.metrics.ReceivedBytes(len(data))

	msg, err := codec.DecodeMessage(data)
	if err != nil {
		m.metrics.Message(0, metrics.OutcomeMalformed)
		return err
	}
	m.HandleMessage(from, msg)
	return nil
}

// handleResponseLocked 处理发给本节点的应答
//
// 由引擎在处理通道内同步调用，调用时 Manager 已持有锁。
func (m *Manager) handleResponseLocked(msg types.SurveyMessage) {
	surveyed := msg.SurveyedID
	if !m.table.Requested(surveyed) {
		log.Debug("忽略未请求目标的应答", "surveyed", surveyed.ShortString())
		return
	}

	plain, err := m.decrypt(msg.EncryptedBody)
	if err != nil {
		m.markBadLocked(surveyed, err)
		return
	}
	body, err := codec.DecodeTopology(plain)
	if err != nil {
		m.markBadLocked(surveyed, err)
		return
	}

	m.table.RecordAnswer(surveyed, body)
	m.tracker.Complete(surveyed)
	m.metrics.Result(metrics.ResultAnswer)
	m.metrics.SetPending(len(m.tracker.Pending()))
	log.Debug("收到拓扑应答", "surveyed", surveyed.ShortString(),
		"inbound", len(body.InboundPeers), "outbound", len(body.OutboundPeers))
}

func (m *Manager) decrypt(ciphertext []byte) ([]byte, error) {
	return secure.Decrypt(m.id.EncryptionPublicKey(), m.id.EncryptionPrivateKey(), ciphertext)
}

func (m *Manager) markBadLocked(surveyed types.NodeID, err error) {
	m.table.MarkBadResponse(surveyed)
	m.tracker.Complete(surveyed)
	m.metrics.Result(metrics.ResultBad)
	log.Warn("无效的拓扑应答", "surveyed", surveyed.ShortString(), "error", err)
}

// ============================================================================
//                              账本事件与节拍
// ============================================================================

// OnLedgerClosed 账本关闭通知
func (m *Manager) OnLedgerClosed(seq uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.engine.OnLedgerClosed(seq)
	m.maintainLocked()
}

// maintainLocked 到期清理、会话到期与待发队列补发
func (m *Manager) maintainLocked() {
	if n := m.tracker.Expire(); n > 0 {
		log.Debug("在途请求到期", "count", n)
	}
	if m.session != nil && m.session.running && !m.clock.Now().Before(m.session.expiresAt) {
		m.endLocked("expired")
	}
	m.topOffLocked()
	m.metrics.SetPending(len(m.tracker.Pending()))
}

// Start 启动后台节拍
//
// 没有账本事件时，节拍负责会话到期与待发队列补发。
func (m *Manager) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return nil
	}
	interval := m.ledger.ExpectedCloseTime()
	if interval <= 0 {
		interval = defaultTickInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	ticker := m.clock.Ticker(interval)

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				m.maintainLocked()
				m.mu.Unlock()
			}
		}
	}(m.done)

	log.Debug("调查服务已启动", "node", m.self.ShortString(), "tick", interval)
	return nil
}

// Stop 停止后台节拍
func (m *Manager) Stop() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// ============================================================================
//                              结果
// ============================================================================

// Result 返回当前结果快照
func (m *Manager) Result() types.SurveyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultLocked()
}

func (m *Manager) resultLocked() types.SurveyResult {
	snap := m.table.Snapshot()
	res := types.SurveyResult{
		Topology: make(map[string]*types.TopologyBody, len(snap.Topology)),
	}
	for id, body := range snap.Topology {
		res.Topology[id.String()] = body
	}
	for _, id := range snap.BadResponseNodes {
		res.BadResponseNodes = append(res.BadResponseNodes, id.String())
	}
	if m.session != nil {
		res.SurveyInProgress = m.session.running
		res.SessionID = m.session.id.String()
	}
	return res
}

// ResultJSON 返回结果的 JSON 表示
func (m *Manager) ResultJSON() ([]byte, error) {
	return json.Marshal(m.Result())
}

// History 返回已归档的会话，未配置归档时为空
func (m *Manager) History() ([]history.Record, error) {
	if m.archive == nil {
		return nil, nil
	}
	return m.archive.List()
}

// Engine 返回中继引擎
func (m *Manager) Engine() *relay.Engine {
	return m.engine
}

// 编译时检查接口实现
var _ interfaces.SurveyService = (*Manager)(nil)
