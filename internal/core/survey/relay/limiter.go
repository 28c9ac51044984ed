package relay

import (
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// SurveyorLimiter - 调查者限额
// ════════════════════════════════════════════════════════════════════════════

// SurveyorLimiter 限制每个调查者在单个账本内触及的不同目标数
//
// 账本关闭时清零。本节点发起的调查不受限。
type SurveyorLimiter struct {
	max     int
	self    types.NodeID
	targets map[types.NodeID]types.NodeSet
}

// NewSurveyorLimiter 创建调查者限额
func NewSurveyorLimiter(self types.NodeID, maxPerLedger int) *SurveyorLimiter {
	return &SurveyorLimiter{
		max:     maxPerLedger,
		self:    self,
		targets: make(map[types.NodeID]types.NodeSet),
	}
}

// Allow 检查并登记 (surveyor, surveyed)
//
// 已登记过的目标始终允许，新目标在未达上限时登记。
func (l *SurveyorLimiter) Allow(surveyor, surveyed types.NodeID) bool {
	if surveyor == l.self {
		return true
	}
	set, ok := l.targets[surveyor]
	if !ok {
		set = types.NewNodeSet()
		l.targets[surveyor] = set
	}
	if set.Contains(surveyed) {
		return true
	}
	if set.Len() >= l.max {
		return false
	}
	set.Add(surveyed)
	return true
}

// Reset 清空所有登记
func (l *SurveyorLimiter) Reset() {
	l.targets = make(map[types.NodeID]types.NodeSet)
}

// ════════════════════════════════════════════════════════════════════════════
// PeerLimiter - 对端入站限速
// ════════════════════════════════════════════════════════════════════════════

// peerIdleExpiry 对端限速器空闲回收时间
const peerIdleExpiry = 5 * time.Minute

type peerBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PeerLimiter 按连接限制入站调查消息速率
//
// 速率为 0 时不限制。
type PeerLimiter struct {
	limit rate.Limit
	burst int
	clock clock.Clock
	peers map[types.NodeID]*peerBucket
}

// NewPeerLimiter 创建对端限速器
func NewPeerLimiter(perSecond float64, burst int, clk clock.Clock) *PeerLimiter {
	return &PeerLimiter{
		limit: rate.Limit(perSecond),
		burst: burst,
		clock: clk,
		peers: make(map[types.NodeID]*peerBucket),
	}
}

// Allow 检查来自 peer 的一条消息是否放行
func (l *PeerLimiter) Allow(peer types.NodeID) bool {
	if l.limit <= 0 {
		return true
	}
	now := l.clock.Now()
	b, ok := l.peers[peer]
	if !ok {
		b = &peerBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.peers[peer] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Cleanup 回收空闲对端的限速器
func (l *PeerLimiter) Cleanup() int {
	now := l.clock.Now()
	removed := 0
	for id, b := range l.peers {
		if now.Sub(b.lastSeen) > peerIdleExpiry {
			delete(l.peers, id)
			removed++
		}
	}
	return removed
}
