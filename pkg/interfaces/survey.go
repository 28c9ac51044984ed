// Package interfaces 定义拓扑调查子系统的公共接口
//
// 本文件定义调查服务及其只读数据源。
package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// QuorumSource 传递仲裁集数据源
//
// 由外部仲裁子系统维护，每次账本关闭后更新。调查核心只读取快照，从不修改。
type QuorumSource interface {
	// TransitiveQuorum 返回当前传递仲裁集快照
	TransitiveQuorum() types.NodeSet
}

// LedgerSource 账本进度数据源
type LedgerSource interface {
	// LastClosedLedger 返回最近关闭的账本序号
	LastClosedLedger() uint32

	// ExpectedCloseTime 返回预期的账本关闭间隔
	ExpectedCloseTime() time.Duration
}

// SurveyService 定义调查服务接口
type SurveyService interface {
	// StartSurvey 开启新的调查会话；已有会话进行中时返回原会话 ID 与 false
	StartSurvey(duration time.Duration) (uuid.UUID, bool)

	// SurveyTopology 请求调查指定节点的拓扑
	//
	// 被节流时返回 ErrThrottled，目标保留在待发队列中稍后自动重发。
	SurveyTopology(surveyed types.NodeID, duration time.Duration) error

	// StopSurvey 结束当前调查会话，结果保留至下次开启
	StopSurvey()

	// Result 返回当前结果快照
	Result() types.SurveyResult

	// HandleMessage 处理从 from 收到的调查消息
	HandleMessage(from types.NodeID, msg types.SurveyMessage)

	// OnLedgerClosed 账本关闭通知
	OnLedgerClosed(seq uint32)

	// Start 启动后台节拍
	Start(ctx context.Context) error

	// Stop 停止后台节拍
	Stop() error
}
