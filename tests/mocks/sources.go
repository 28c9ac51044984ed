package mocks

import (
	"sync"
	"time"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// MockQuorum 模拟 QuorumSource 接口实现
type MockQuorum struct {
	Set types.NodeSet

	TransitiveQuorumFunc func() types.NodeSet
}

// NewMockQuorum 创建包含给定节点的仲裁集
func NewMockQuorum(ids ...types.NodeID) *MockQuorum {
	return &MockQuorum{Set: types.NewNodeSet(ids...)}
}

// TransitiveQuorum 返回仲裁集快照
func (m *MockQuorum) TransitiveQuorum() types.NodeSet {
	if m.TransitiveQuorumFunc != nil {
		return m.TransitiveQuorumFunc()
	}
	return m.Set
}

// MockLedger 模拟 LedgerSource 接口实现
type MockLedger struct {
	mu sync.Mutex

	Seq       uint32
	CloseTime time.Duration
}

// NewMockLedger 创建账本数据源
func NewMockLedger(seq uint32, closeTime time.Duration) *MockLedger {
	return &MockLedger{Seq: seq, CloseTime: closeTime}
}

// LastClosedLedger 返回最近关闭的账本序号
func (m *MockLedger) LastClosedLedger() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Seq
}

// ExpectedCloseTime 返回预期关闭间隔
func (m *MockLedger) ExpectedCloseTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloseTime
}

// SetSeq 设置账本序号
func (m *MockLedger) SetSeq(seq uint32) {
	m.mu.Lock()
	m.Seq = seq
	m.mu.Unlock()
}
