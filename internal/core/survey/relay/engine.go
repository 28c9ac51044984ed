package relay

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/gate"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/secure"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
	"github.com/dep2p/go-dep2p-survey/pkg/interfaces"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

var log = logger.Logger("survey/relay")

// ResponseSink 接收指向本节点（调查者）的应答
type ResponseSink func(msg types.SurveyMessage)

// Params 中继引擎依赖
type Params struct {
	Identity *identity.Identity
	Overlay  interfaces.Overlay
	Quorum   interfaces.QuorumSource
	Ledger   interfaces.LedgerSource
	Config   config.SurveyConfig

	// 可选
	Clock   clock.Clock
	Metrics *metrics.SurveyMetrics
	Sink    ResponseSink
}

// Engine 调查消息中继引擎
type Engine struct {
	mu sync.Mutex

	id        *identity.Identity
	self      types.NodeID
	overlay   interfaces.Overlay
	quorum    interfaces.QuorumSource
	ledger    interfaces.LedgerSource
	cfg       config.SurveyConfig
	networkID [32]byte
	allowList types.NodeSet
	clock     clock.Clock
	metrics   *metrics.SurveyMetrics
	sink      ResponseSink

	dedup     *DedupCache
	surveyors *SurveyorLimiter
	peers     *PeerLimiter
	keys      *keyCache
}

// New 创建中继引擎
func New(p Params) (*Engine, error) {
	if p.Identity == nil || p.Overlay == nil || p.Quorum == nil || p.Ledger == nil {
		return nil, errors.New("relay: identity, overlay, quorum and ledger are required")
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}

	allow, err := p.Config.SurveyorAllowList()
	if err != nil {
		return nil, fmt.Errorf("relay: surveyor keys: %w", err)
	}

	window := p.Config.EffectiveDedupWindow(p.Ledger.ExpectedCloseTime())
	dedup, err := NewDedupCache(p.Config.DedupCapacity, window, clk)
	if err != nil {
		return nil, fmt.Errorf("relay: dedup cache: %w", err)
	}

	keys, err := newKeyCache()
	if err != nil {
		return nil, fmt.Errorf("relay: key cache: %w", err)
	}

	self := p.Identity.ID()
	return &Engine{
		id:        p.Identity,
		self:      self,
		overlay:   p.Overlay,
		quorum:    p.Quorum,
		ledger:    p.Ledger,
		cfg:       p.Config,
		networkID: p.Config.NetworkID(),
		allowList: allow,
		clock:     clk,
		metrics:   p.Metrics,
		sink:      p.Sink,
		dedup:     dedup,
		surveyors: NewSurveyorLimiter(self, p.Config.MaxRequestsPerLedger),
		peers:     NewPeerLimiter(p.Config.PeerMessageRate, p.Config.PeerMessageBurst, clk),
		keys:      keys,
	}, nil
}

// SetSink 设置应答接收者
func (e *Engine) SetSink(sink ResponseSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// ============================================================================
//                              入站处理
// ============================================================================

// HandleMessage 处理从 from 收到的调查消息
func (e *Engine) HandleMessage(from types.NodeID, msg types.SurveyMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.peers.Allow(from) {
		e.drop(from, msg, metrics.OutcomeRateLimited)
		return
	}
	if !e.fresh(msg.LedgerSeq) {
		e.drop(from, msg, metrics.OutcomeStale)
		return
	}

	key := msg.Key()
	if e.dedup.Seen(key) {
		e.drop(from, msg, metrics.OutcomeDuplicate)
		return
	}
	if !e.trusted(msg.SurveyorID) {
		e.drop(from, msg, metrics.OutcomeUntrusted)
		return
	}
	if !e.verify(msg) {
		e.drop(from, msg, metrics.OutcomeBadSignature)
		return
	}
	if msg.IsRequest() && !e.surveyors.Allow(msg.SurveyorID, msg.SurveyedID) {
		e.drop(from, msg, metrics.OutcomeSurveyorLimit)
		return
	}
	e.dedup.Record(key)
	e.metrics.SetDedupEntries(e.dedup.Len())

	if msg.IsResponse() && msg.SurveyorID == e.self {
		e.metrics.Message(msg.Type, metrics.OutcomeDelivered)
		if e.sink != nil {
			e.sink(msg)
		}
		return
	}

	if msg.IsRequest() && msg.SurveyedID == e.self {
		e.answerLocked(msg)
	}
	e.relayLocked(from, msg)
}

// Originate 签名并泛洪本节点发起的消息
//
// 本节点始终可信，不经过授权判定。
func (e *Engine) Originate(msg types.SurveyMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	signed, err := e.sign(msg)
	if err != nil {
		return err
	}
	e.dedup.Record(signed.Key())
	e.metrics.SetDedupEntries(e.dedup.Len())
	e.floodLocked(types.EmptyNodeID, signed)
	return nil
}

// OnLedgerClosed 账本关闭：清理过期去重条目、调查者限额与空闲限速器
func (e *Engine) OnLedgerClosed(seq uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pruned := e.dedup.Prune()
	e.surveyors.Reset()
	e.peers.Cleanup()
	e.metrics.SetDedupEntries(e.dedup.Len())
	log.Debug("账本关闭", "seq", seq, "pruned", pruned, "dedup", e.dedup.Len())
}

// DedupLen 返回去重缓存条目数
func (e *Engine) DedupLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dedup.Len()
}

// LocalTopology 返回本节点当前拓扑
func (e *Engine) LocalTopology() types.TopologyBody {
	return BuildTopology(e.overlay.Connections(), e.clock.Now())
}

// ============================================================================
//                              检查
// ============================================================================

// fresh 账本序号是否落在 [lcl - N, lcl + 1]
func (e *Engine) fresh(seq uint32) bool {
	lcl := uint64(e.ledger.LastClosedLedger())
	s := uint64(seq)
	return s+uint64(e.cfg.NumLedgersBeforeIgnore) >= lcl && s <= lcl+1
}

func (e *Engine) trusted(surveyor types.NodeID) bool {
	return surveyor == e.self || gate.MayRelayOrAnswer(surveyor, e.quorum.TransitiveQuorum())
}

func (e *Engine) verify(msg types.SurveyMessage) bool {
	digest, err := codec.SigningDigest(e.networkID, msg)
	if err != nil {
		return false
	}
	return identity.Verify(msg.Signer(), digest, msg.Signature)
}

func (e *Engine) sign(msg types.SurveyMessage) (types.SurveyMessage, error) {
	digest, err := codec.SigningDigest(e.networkID, msg)
	if err != nil {
		return msg, err
	}
	msg.Signature = e.id.Sign(digest)
	return msg, nil
}

func (e *Engine) drop(from types.NodeID, msg types.SurveyMessage, outcome string) {
	e.metrics.Message(msg.Type, outcome)
	if e.cfg.DebugDrops {
		log.Debug("丢弃调查消息",
			"outcome", outcome,
			"from", from.ShortString(),
			"key", msg.Key().String())
	}
}

// ============================================================================
//                              应答
// ============================================================================

// answerLocked 作为被调查者应答
//
// 拒绝应答与未收到请求不可区分。
func (e *Engine) answerLocked(req types.SurveyMessage) {
	if !gate.MayAnswer(req.SurveyorID, e.allowList, e.quorum.TransitiveQuorum()) {
		e.drop(types.EmptyNodeID, req, metrics.OutcomeRefused)
		return
	}

	resp, err := e.buildResponse(req)
	if err != nil {
		log.Warn("构造调查应答失败", "surveyor", req.SurveyorID.ShortString(), "error", err)
		return
	}
	e.dedup.Record(resp.Key())
	e.metrics.Message(req.Type, metrics.OutcomeAnswered)
	e.routeResponseLocked(types.EmptyNodeID, resp)
}

func (e *Engine) buildResponse(req types.SurveyMessage) (types.SurveyMessage, error) {
	plain, err := codec.EncodeTopology(e.LocalTopology())
	if err != nil {
		return types.SurveyMessage{}, err
	}
	pub, err := e.keys.get(req.SurveyorID)
	if err != nil {
		return types.SurveyMessage{}, err
	}

	body, err := secure.Encrypt(pub, plain)
	if errors.Is(err, types.ErrCiphertextOverflow) {
		panic(fmt.Sprintf("survey: encoded topology exceeds ciphertext capacity: %v", err))
	}
	if err != nil {
		return types.SurveyMessage{}, err
	}

	return e.sign(types.SurveyMessage{
		Type:          types.MessageResponse,
		Command:       req.Command,
		SurveyorID:    req.SurveyorID,
		SurveyedID:    e.self,
		LedgerSeq:     req.LedgerSeq,
		EncryptedBody: body,
	})
}

// ============================================================================
//                              转发
// ============================================================================

func (e *Engine) relayLocked(from types.NodeID, msg types.SurveyMessage) {
	if msg.IsResponse() {
		e.routeResponseLocked(from, msg)
	} else {
		e.floodLocked(from, msg)
	}
	e.metrics.Message(msg.Type, metrics.OutcomeRelayed)
}

// routeResponseLocked 与调查者直连时直接发送，否则泛洪
func (e *Engine) routeResponseLocked(from types.NodeID, msg types.SurveyMessage) {
	for _, c := range e.overlay.Connections() {
		if c.ID == msg.SurveyorID {
			e.send(c.ID, msg)
			return
		}
	}
	e.floodLocked(from, msg)
}

// floodLocked 发送给所有支持调查的连接，排除 from
func (e *Engine) floodLocked(from types.NodeID, msg types.SurveyMessage) {
	for _, c := range e.overlay.Connections() {
		if c.ID == from || !gate.SupportsSurvey(c.OverlayVersion, e.cfg.MinOverlayVersion) {
			continue
		}
		e.send(c.ID, msg)
	}
}

func (e *Engine) send(to types.NodeID, msg types.SurveyMessage) {
	if err := e.overlay.Send(to, msg); err != nil {
		log.Debug("发送调查消息失败", "to", to.ShortString(), "key", msg.Key().String(), "error", err)
	}
}
