package identity

import (
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// curvePrivateFromSeed 将 Ed25519 种子转换为 X25519 私钥
//
// 标准转换方法（RFC 7748, RFC 8032）：
//  1. 对种子进行 SHA-512 哈希
//  2. 取哈希前 32 字节
//  3. 进行 clamping（清理低 3 位和最高位，置位次高位）
func curvePrivateFromSeed(seed []byte) []byte {
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	return h[:32]
}

// EncryptionKeyFor 由 NodeID 派生 X25519 公钥
//
// Edwards -> Montgomery：u = (1 + y) / (1 - y) (mod p)。
// 非法曲线点与退化点（u = 0）均被拒绝。
func EncryptionKeyFor(id types.NodeID) (*[32]byte, error) {
	point, err := new(edwards25519.Point).SetBytes(id[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurvePoint, err)
	}

	var key [32]byte
	copy(key[:], point.BytesMontgomery())

	var zero [32]byte
	if subtle.ConstantTimeCompare(key[:], zero[:]) == 1 {
		return nil, ErrInvalidCurvePoint
	}
	return &key, nil
}
