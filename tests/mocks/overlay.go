package mocks

import (
	"sync"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// SendCall 记录一次 Send 调用
type SendCall struct {
	To  types.NodeID
	Msg types.SurveyMessage
}

// MockOverlay 模拟 Overlay 接口实现
type MockOverlay struct {
	mu sync.Mutex

	// Conns 当前连接
	Conns []types.PeerConnInfo

	// 可覆盖的方法
	ConnectionsFunc func() []types.PeerConnInfo
	SendFunc        func(to types.NodeID, msg types.SurveyMessage) error

	// 调用记录
	SendCalls []SendCall
}

// NewMockOverlay 创建带有给定连接的 MockOverlay
func NewMockOverlay(conns ...types.PeerConnInfo) *MockOverlay {
	return &MockOverlay{Conns: conns}
}

// Connections 返回当前连接快照
func (m *MockOverlay) Connections() []types.PeerConnInfo {
	if m.ConnectionsFunc != nil {
		return m.ConnectionsFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.PeerConnInfo(nil), m.Conns...)
}

// Send 记录发送
func (m *MockOverlay) Send(to types.NodeID, msg types.SurveyMessage) error {
	m.mu.Lock()
	m.SendCalls = append(m.SendCalls, SendCall{To: to, Msg: msg})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(to, msg)
	}
	return nil
}

// Sent 返回已记录的发送副本
func (m *MockOverlay) Sent() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendCall(nil), m.SendCalls...)
}

// SentOfType 返回指定类型消息的发送记录
func (m *MockOverlay) SentOfType(typ types.MessageType) []SendCall {
	var out []SendCall
	for _, c := range m.Sent() {
		if c.Msg.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// Reset 清空发送记录
func (m *MockOverlay) Reset() {
	m.mu.Lock()
	m.SendCalls = nil
	m.mu.Unlock()
}
