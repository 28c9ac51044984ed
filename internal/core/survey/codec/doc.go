// Package codec 实现调查载荷的确定性二进制编解码
//
// 线格式为 protobuf 兼容的 TLV（protowire），字段按编号严格递增写出，
// 解码时拒绝未知字段、错误的线类型、乱序字段以及越界的列表和字符串。
//
// # 编码上界
//
// 所有长度上界均为编译期常量：
//
//	MaxPeerStatLen   单条 PeerStat 的最大编码长度
//	MaxPlaintextLen  满载 TopologyBody 的最大编码长度
//
// secure 包据此在编译期断言密文容量足够。
//
// # 签名载荷
//
// SigningPayload 返回消息去掉签名字段后的编码，SigningDigest 将其与
// NetworkID 拼接后做 BLAKE2b-256，作为 Ed25519 签名的输入。
package codec
