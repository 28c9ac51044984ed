package survey

import (
	"errors"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ErrMissingCollaborator 缺少外部协作者
	ErrMissingCollaborator = errors.New("overlay, quorum and ledger sources are required")

	// ────────────────────────────────────────────────────────────────────────
	// 调查错误（pkg/types 的别名）
	// ────────────────────────────────────────────────────────────────────────

	// ErrThrottled 请求被节流
	ErrThrottled = types.ErrThrottled

	// ErrInvalidNodeID 无效的节点 ID
	ErrInvalidNodeID = types.ErrInvalidNodeID

	// ErrInvalidDuration 无效的调查时长
	ErrInvalidDuration = types.ErrInvalidDuration

	// ErrMalformedPayload 消息格式错误
	ErrMalformedPayload = types.ErrMalformedPayload
)
