// Package types 定义拓扑调查子系统的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              ID 相关错误
// ============================================================================

var (
	// ErrInvalidNodeID 无效的节点 ID
	ErrInvalidNodeID = errors.New("invalid node ID: must be 32-byte Base58")
)

// ============================================================================
//                              载荷相关错误
// ============================================================================

var (
	// ErrPayloadTooLarge 载荷超出声明上限（构造期错误，调用方缺陷）
	ErrPayloadTooLarge = errors.New("survey payload too large")

	// ErrMalformedPayload 接收到结构非法的载荷
	ErrMalformedPayload = errors.New("malformed survey payload")
)

// ============================================================================
//                              加密相关错误
// ============================================================================

var (
	// ErrDecryptionFailed 解密失败（密文被篡改或密钥不匹配）
	ErrDecryptionFailed = errors.New("survey decryption failed")

	// ErrCiphertextOverflow 密文超出固定容量
	//
	// 按构造不可达；一旦出现即说明容量常量被破坏。
	ErrCiphertextOverflow = errors.New("survey ciphertext overflow")

	// ErrInvalidSignature 消息签名无效
	ErrInvalidSignature = errors.New("invalid survey message signature")
)

// ============================================================================
//                              调查流程错误
// ============================================================================

var (
	// ErrThrottled 请求被节流，稍后可重试
	ErrThrottled = errors.New("survey request throttled")

	// ErrSurveyNotRunning 当前没有进行中的调查
	ErrSurveyNotRunning = errors.New("no survey in progress")

	// ErrInvalidDuration 调查时长无效
	ErrInvalidDuration = errors.New("invalid survey duration")
)
