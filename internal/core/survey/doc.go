// Package survey 实现单节点的拓扑调查服务
//
// Manager 把各子组件串成一个节点服务：
//
//	codec/     能力编解码（protowire）
//	secure/    应答体加密（nacl/box 匿名封装）
//	gate/      授权判定
//	relay/     消息处理通道：去重、信任、签名校验、应答、转发
//	throttle/  请求节流与在途跟踪
//	results/   结果汇总
//	history/   已结束会话归档
//
// # 并发
//
// 每个节点只有一条处理通道：Manager 的互斥锁串行化所有入站消息、
// 管理命令与账本事件。锁顺序固定为 Manager → relay.Engine；
// 引擎回调应答接收者时 Manager 已持有锁，接收者不得再次加锁。
//
// # 会话
//
// StartSurvey 开启会话并清空上次结果；StopSurvey 或到期结束会话，
// 结果保留到下次开启，同时写入归档。会话结束后到达的应答，只要目标
// 曾被请求，仍会写入结果表。
package survey
