// Package relay 实现调查消息的泛洪中继
//
// 每条入站消息依次经过：
//
//	1. 对端限速      单个连接的消息速率上限
//	2. 新鲜度        账本序号必须落在 [lcl - N, lcl + 1]
//	3. 去重          DedupCache 命中即丢弃
//	4. 信任          调查者必须属于传递仲裁集（本节点始终可信）
//	5. 签名          请求由调查者签名，应答由被调查者签名
//	6. 调查者限额    每个调查者每个账本最多触及的目标数
//	7. 记录          写入 DedupCache（与 3-6 在同一处理通道内完成）
//	8. 本地目标      请求指向本节点时按白名单决定是否应答；
//	                 应答指向本节点时交给 ResponseSink
//	9. 转发          原样转发给所有支持调查的连接（排除来源）
//
// 任何一步失败都静默丢弃，仅计入指标；开启 DebugDrops 时额外输出调试日志。
//
// Engine 自身串行化所有处理。ResponseSink 在处理通道内同步调用，
// 不得回调 Engine。
package relay
