package relay

import (
	arc "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// keyCacheSize 派生加密公钥缓存容量
const keyCacheSize = 256

// keyCache 缓存由 NodeID 派生的 X25519 公钥
//
// 派生需要一次点解压，同一调查者的请求会在多个账本内反复出现。
type keyCache struct {
	keys *arc.ARCCache[types.NodeID, [32]byte]
}

func newKeyCache() (*keyCache, error) {
	keys, err := arc.NewARC[types.NodeID, [32]byte](keyCacheSize)
	if err != nil {
		return nil, err
	}
	return &keyCache{keys: keys}, nil
}

// get 返回 id 对应的加密公钥
func (c *keyCache) get(id types.NodeID) (*[32]byte, error) {
	if k, ok := c.keys.Get(id); ok {
		return &k, nil
	}
	k, err := identity.EncryptionKeyFor(id)
	if err != nil {
		return nil, err
	}
	c.keys.Add(id, *k)
	return k, nil
}
