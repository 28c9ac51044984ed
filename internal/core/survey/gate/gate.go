// Package gate 实现调查消息的授权判定
//
// 两级授权：
//   - 中继与考虑：调查者必须属于传递仲裁集
//   - 应答：调查者必须属于本节点的调查者白名单
//
// 判定均为纯函数，不缓存、不修改入参。仲裁集与白名单由调用方在处理时传入。
package gate

import (
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// MayRelayOrAnswer 调查者是否属于传递仲裁集
func MayRelayOrAnswer(surveyor types.NodeID, quorum types.NodeSet) bool {
	return quorum.Contains(surveyor)
}

// MayAnswer 是否允许向调查者应答
//
// 白名单为空时退化为仲裁集成员资格。
func MayAnswer(surveyor types.NodeID, allowList, quorum types.NodeSet) bool {
	if allowList.Len() == 0 {
		return quorum.Contains(surveyor)
	}
	return allowList.Contains(surveyor)
}

// SupportsSurvey 对端 overlay 版本是否支持调查消息
func SupportsSurvey(overlayVersion, minVersion uint32) bool {
	return overlayVersion >= minVersion
}
