package relay

import (
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// DedupCache 有界、带时间窗口的去重缓存
//
// 条目在窗口到期后视为不存在，并在 Prune 时清除；容量满时淘汰最久未用的条目。
type DedupCache struct {
	entries *lru.Cache[types.DedupKey, time.Time]
	window  time.Duration
	clock   clock.Clock
}

// NewDedupCache 创建去重缓存
func NewDedupCache(capacity int, window time.Duration, clk clock.Clock) (*DedupCache, error) {
	entries, err := lru.New[types.DedupKey, time.Time](capacity)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &DedupCache{entries: entries, window: window, clock: clk}, nil
}

// Seen 检查键是否在窗口内出现过
func (c *DedupCache) Seen(key types.DedupKey) bool {
	at, ok := c.entries.Peek(key)
	if !ok {
		return false
	}
	if c.expired(at) {
		c.entries.Remove(key)
		return false
	}
	return true
}

// Record 记录键
func (c *DedupCache) Record(key types.DedupKey) {
	c.entries.Add(key, c.clock.Now())
}

// Prune 清除所有过期条目，返回清除数量
func (c *DedupCache) Prune() int {
	removed := 0
	for _, key := range c.entries.Keys() {
		if at, ok := c.entries.Peek(key); ok && c.expired(at) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed
}

// Len 返回当前条目数（含尚未清除的过期条目）
func (c *DedupCache) Len() int {
	return c.entries.Len()
}

// Window 返回去重窗口
func (c *DedupCache) Window() time.Duration {
	return c.window
}

func (c *DedupCache) expired(at time.Time) bool {
	return !c.clock.Now().Before(at.Add(c.window))
}
