// Package mocks 提供调查子系统外部协作者的测试 Mock
//
// # 核心 Mock
//
//   - MockOverlay: 模拟 interfaces.Overlay，记录所有 Send 调用
//   - MockQuorum: 模拟 interfaces.QuorumSource
//   - MockLedger: 模拟 interfaces.LedgerSource
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 记录调用历史，便于验证测试行为
//
// # 使用示例
//
//	overlay := mocks.NewMockOverlay(
//	    types.PeerConnInfo{ID: peerB, OverlayVersion: 12},
//	)
//	engine.HandleMessage(peerB, msg)
//
//	if len(overlay.Sent()) != 0 {
//	    t.Error("untrusted surveyor must not be relayed")
//	}
package mocks
