// Package secure 实现调查应答的非对称加密
//
// 应答体使用匿名 sealed box（X25519 + XSalsa20-Poly1305）加密给调查者，
// 调查者的 X25519 公钥由其 NodeID 派生。每次加密使用新的临时密钥对，
// 密文长度固定为明文长度加 Overhead。
package secure

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

const (
	// Overhead 密文相对明文的固定开销（临时公钥 + MAC）
	Overhead = box.AnonymousOverhead

	// MaxCiphertextLen 密文固定容量
	MaxCiphertextLen = types.MaxEncryptedBodyLen
)

// 满载明文加密后必须放得进密文容量，否则此处无法通过编译。
const _ uint = MaxCiphertextLen - (codec.MaxPlaintextLen + Overhead)

// Encrypt 将明文加密给 recipient
//
// 明文超出容量时返回 ErrCiphertextOverflow；经 codec 编码的载荷按构造不会触发。
func Encrypt(recipient *[32]byte, plaintext []byte) ([]byte, error) {
	if len(plaintext)+Overhead > MaxCiphertextLen {
		return nil, fmt.Errorf("%w: plaintext %d bytes", types.ErrCiphertextOverflow, len(plaintext))
	}
	out, err := box.SealAnonymous(make([]byte, 0, len(plaintext)+Overhead), plaintext, recipient, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return out, nil
}

// Decrypt 使用本地密钥对解密
//
// 任何失败均返回 ErrDecryptionFailed，不返回部分明文。
func Decrypt(pub, priv *[32]byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < Overhead || len(ciphertext) > MaxCiphertextLen {
		return nil, fmt.Errorf("%w: ciphertext %d bytes", types.ErrDecryptionFailed, len(ciphertext))
	}
	out, ok := box.OpenAnonymous(nil, ciphertext, pub, priv)
	if !ok {
		return nil, types.ErrDecryptionFailed
	}
	return out, nil
}
