// Package results 汇总调查者收到的拓扑应答
//
// 每个被调查节点一条记录：已请求未应答时为 nil，收到应答后为最新的 TopologyBody。
// 重复或迟到的应答直接覆盖，不做合并。
package results

import (
	"sync"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// Snapshot 结果表只读副本
type Snapshot struct {
	Topology         map[types.NodeID]*types.TopologyBody
	BadResponseNodes []types.NodeID
}

// Table 结果表
type Table struct {
	mu      sync.RWMutex
	entries map[types.NodeID]*types.TopologyBody
	bad     types.NodeSet
}

// NewTable 创建结果表
func NewTable() *Table {
	return &Table{
		entries: make(map[types.NodeID]*types.TopologyBody),
		bad:     types.NewNodeSet(),
	}
}

// MarkRequested 登记一个已请求的目标；已有记录时不变
func (t *Table) MarkRequested(id types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[id]; !ok {
		t.entries[id] = nil
	}
}

// Requested 目标是否已登记
func (t *Table) Requested(id types.NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.entries[id]
	return ok
}

// RecordAnswer 写入应答，覆盖旧值
func (t *Table) RecordAnswer(id types.NodeID, body types.TopologyBody) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := body.Clone()
	t.entries[id] = &b
	delete(t.bad, id)
}

// MarkBadResponse 标记目标返回了无法解密或解码的应答
func (t *Table) MarkBadResponse(id types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.bad.Add(id)
}

// Snapshot 返回深拷贝
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		Topology:         make(map[types.NodeID]*types.TopologyBody, len(t.entries)),
		BadResponseNodes: t.bad.Slice(),
	}
	for id, body := range t.entries {
		if body == nil {
			s.Topology[id] = nil
			continue
		}
		b := body.Clone()
		s.Topology[id] = &b
	}
	return s
}

// Render 返回以 Base58 NodeID 为键的结果（未应答为 nil）
func (t *Table) Render() map[string]*types.TopologyBody {
	snap := t.Snapshot()
	out := make(map[string]*types.TopologyBody, len(snap.Topology))
	for id, body := range snap.Topology {
		out[id.String()] = body
	}
	return out
}

// Len 返回记录数
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Reset 清空结果
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[types.NodeID]*types.TopologyBody)
	t.bad = types.NewNodeSet()
}
