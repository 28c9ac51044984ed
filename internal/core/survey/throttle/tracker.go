// Package throttle 实现调查请求的节流与在途跟踪
//
// 节流窗口长度为 ThrottleMultiplier × 预期账本关闭时间，每个窗口内最多发出
// MaxRequestsPerWindow 个请求。同一目标在窗口内只能有一个在途请求。
// 请求在窗口到期后不再视为在途，但迟到的应答仍会被接受。
package throttle

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// PendingRequest 在途请求
type PendingRequest struct {
	Surveyed    types.NodeID
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// RequestHandle Submit 成功后返回的请求句柄
type RequestHandle = PendingRequest

// Tracker 节流器与在途请求表
type Tracker struct {
	mu sync.Mutex

	window      time.Duration
	maxRequests int
	clock       clock.Clock

	windowStart time.Time
	used        int
	pending     map[types.NodeID]PendingRequest
}

// NewTracker 创建节流器
func NewTracker(window time.Duration, maxPerWindow int, clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	return &Tracker{
		window:      window,
		maxRequests: maxPerWindow,
		clock:       clk,
		windowStart: clk.Now(),
		pending:     make(map[types.NodeID]PendingRequest),
	}
}

// Submit 登记一个新请求
//
// 目标已在途或窗口额度用尽时返回 ErrThrottled。
func (t *Tracker) Submit(surveyed types.NodeID) (RequestHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	t.rollLocked(now)

	if p, ok := t.pending[surveyed]; ok && now.Before(p.ExpiresAt) {
		return RequestHandle{}, fmt.Errorf("%w: %s already pending", types.ErrThrottled, surveyed.ShortString())
	}
	if t.used >= t.maxRequests {
		return RequestHandle{}, fmt.Errorf("%w: %d requests in current window", types.ErrThrottled, t.used)
	}

	t.used++
	h := PendingRequest{
		Surveyed:    surveyed,
		RequestedAt: now,
		ExpiresAt:   now.Add(t.window),
	}
	t.pending[surveyed] = h
	return h, nil
}

// Complete 标记目标已应答，返回其是否在途
func (t *Tracker) Complete(surveyed types.NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[surveyed]
	delete(t.pending, surveyed)
	return ok
}

// IsPending 目标是否在途
func (t *Tracker) IsPending(surveyed types.NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[surveyed]
	return ok && t.clock.Now().Before(p.ExpiresAt)
}

// Pending 返回在途请求（按请求时间排序）
func (t *Tracker) Pending() []PendingRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PendingRequest, 0, len(t.pending))
	for _, p := range t.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return bytes.Compare(out[i].Surveyed[:], out[j].Surveyed[:]) < 0
	})
	return out
}

// Expire 移除窗口已到期的在途请求，返回移除数量
func (t *Tracker) Expire() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	t.rollLocked(now)

	removed := 0
	for id, p := range t.pending {
		if !now.Before(p.ExpiresAt) {
			delete(t.pending, id)
			removed++
		}
	}
	return removed
}

// Remaining 返回当前窗口剩余额度
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked(t.clock.Now())
	return t.maxRequests - t.used
}

// Window 返回窗口长度
func (t *Tracker) Window() time.Duration {
	return t.window
}

// Reset 清空在途请求并开启新窗口
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = make(map[types.NodeID]PendingRequest)
	t.windowStart = t.clock.Now()
	t.used = 0
}

// rollLocked 窗口到期时开启新窗口
func (t *Tracker) rollLocked(now time.Time) {
	if now.Sub(t.windowStart) >= t.window {
		t.windowStart = now
		t.used = 0
	}
}
