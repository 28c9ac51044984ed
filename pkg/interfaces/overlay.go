// Package interfaces 定义拓扑调查子系统的公共接口
//
// 本文件定义 Overlay 接口，由外部传输层实现。
package interfaces

import "github.com/dep2p/go-dep2p-survey/pkg/types"

// Overlay 定义调查核心所需的 overlay 能力
//
// 投递语义由外部传输层负责：至少一次、可能重复、可能乱序。
// Send 不得在调用方的处理通道内同步回调 HandleMessage。
type Overlay interface {
	// Connections 返回当前已建立连接的快照
	Connections() []types.PeerConnInfo

	// Send 向已连接的对端发送一条调查消息
	Send(to types.NodeID, msg types.SurveyMessage) error
}
