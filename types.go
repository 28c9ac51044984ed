package survey

import (
	"github.com/dep2p/go-dep2p-survey/pkg/interfaces"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已停止（可重新启动）
	StateStopped

	// StateClosed 已关闭
	StateClosed
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// NodeID 节点 ID
	NodeID = types.NodeID

	// SurveyMessage 调查消息
	SurveyMessage = types.SurveyMessage

	// SurveyResult 调查结果
	SurveyResult = types.SurveyResult

	// TopologyBody 拓扑应答体
	TopologyBody = types.TopologyBody

	// PeerConnInfo 连接快照
	PeerConnInfo = types.PeerConnInfo

	// Overlay 外部传输层
	Overlay = interfaces.Overlay

	// QuorumSource 传递仲裁集数据源
	QuorumSource = interfaces.QuorumSource

	// LedgerSource 账本进度数据源
	LedgerSource = interfaces.LedgerSource
)
