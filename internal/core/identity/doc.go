// Package identity 实现调查节点的身份管理
//
// 节点身份为一对 Ed25519 密钥，NodeID 即公钥本身。
//
// # 核心功能
//
// 1. 密钥对管理：
//   - Ed25519 密钥生成
//   - PEM 持久化（原子写）
//
// 2. 签名与验证：
//   - 调查请求由调查者签名，应答由被调查者签名
//
// 3. 加密密钥派生：
//   - 由 Ed25519 私钥派生 X25519 私钥（SHA-512 + clamping）
//   - 由 NodeID 派生 X25519 公钥（Edwards → Montgomery）
//   - 调查应答据此加密给调查者，无需额外交换密钥
//
// # 快速开始
//
//	id, _ := identity.Generate()
//	sig := id.Sign(payload)
//	ok := identity.Verify(id.ID(), payload, sig)
//
//	pub, _ := identity.EncryptionKeyFor(surveyorID)
package identity
