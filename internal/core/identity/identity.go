package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// ============================================================================
//                              Identity
// ============================================================================

// Identity 本地节点身份
//
// 持有 Ed25519 签名密钥以及由其派生的 X25519 加密密钥。创建后只读，可并发使用。
type Identity struct {
	priv   ed25519.PrivateKey
	id     types.NodeID
	encPub [32]byte
	encKey [32]byte
}

// New 从 Ed25519 私钥创建身份
func New(priv ed25519.PrivateKey) (*Identity, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}

	id, err := types.NodeIDFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	i := &Identity{priv: priv, id: id}
	copy(i.encKey[:], curvePrivateFromSeed(priv.Seed()))

	pub, err := curve25519.X25519(i.encKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	copy(i.encPub[:], pub)
	return i, nil
}

// FromSeed 从 32 字节种子创建身份
func FromSeed(seed []byte) (*Identity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKeySize
	}
	return New(ed25519.NewKeyFromSeed(seed))
}

// Generate 生成新身份
func Generate() (*Identity, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return New(priv)
}

// ID 返回节点 ID
func (i *Identity) ID() types.NodeID {
	return i.id
}

// Seed 返回私钥种子
func (i *Identity) Seed() []byte {
	return i.priv.Seed()
}

// Sign 签名数据
func (i *Identity) Sign(data []byte) []byte {
	return ed25519.Sign(i.priv, data)
}

// EncryptionPublicKey 返回 X25519 公钥
func (i *Identity) EncryptionPublicKey() *[32]byte {
	k := i.encPub
	return &k
}

// EncryptionPrivateKey 返回 X25519 私钥
func (i *Identity) EncryptionPrivateKey() *[32]byte {
	k := i.encKey
	return &k
}

// ============================================================================
//                              签名验证
// ============================================================================

// Verify 使用 NodeID 对应的公钥验证签名
func Verify(id types.NodeID, data, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(id.PublicKey(), data, sig)
}
