package types

import (
	"bytes"
	"crypto/ed25519"
	"sort"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              NodeID - 节点标识
// ============================================================================

// NodeIDLen NodeID 字节长度（ed25519 公钥长度）
const NodeIDLen = ed25519.PublicKeySize

// NodeID 节点唯一标识符
//
// 即节点的 ed25519 公钥本身。调查应答的加密公钥由它派生，
// 因此这里不做哈希。
//
// 外部表示格式：
//   - String(): Base58 编码（用户可读、可分享）
//   - ShortString(): Base58 前缀（日志简短标识）
type NodeID [NodeIDLen]byte

// EmptyNodeID 空节点ID
var EmptyNodeID NodeID

// String 返回 NodeID 的 Base58 字符串表示
func (id NodeID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString 返回 NodeID 的短字符串表示
//
// 格式：Base58 前 8 个字符，用于日志中的简短标识。
func (id NodeID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回 NodeID 的字节切片
func (id NodeID) Bytes() []byte {
	return id[:]
}

// PublicKey 返回对应的 ed25519 公钥
func (id NodeID) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id[:])
}

// IsEmpty 检查 NodeID 是否为空
func (id NodeID) IsEmpty() bool {
	return id == EmptyNodeID
}

// MarshalText 实现 encoding.TextMarshaler，使 NodeID 可作为 JSON 对象键
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NodeIDFromBytes 从字节切片创建 NodeID
func NodeIDFromBytes(b []byte) (NodeID, error) {
	if len(b) != NodeIDLen {
		return EmptyNodeID, ErrInvalidNodeID
	}
	var id NodeID
	copy(id[:], b)
	return id, nil
}

// ParseNodeID 从 Base58 字符串解析 NodeID
func ParseNodeID(s string) (NodeID, error) {
	if s == "" {
		return EmptyNodeID, ErrInvalidNodeID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyNodeID, ErrInvalidNodeID
	}
	return NodeIDFromBytes(b)
}

// ============================================================================
//                              NodeSet - 节点集合
// ============================================================================

// NodeSet 节点集合
//
// 用于调查者白名单与传递仲裁集快照。nil 集合可以安全读取。
type NodeSet map[NodeID]struct{}

// NewNodeSet 创建包含给定节点的集合
func NewNodeSet(ids ...NodeID) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// ParseNodeSet 从 Base58 字符串列表解析节点集合
func ParseNodeSet(keys []string) (NodeSet, error) {
	s := make(NodeSet, len(keys))
	for _, k := range keys {
		id, err := ParseNodeID(k)
		if err != nil {
			return nil, err
		}
		s[id] = struct{}{}
	}
	return s, nil
}

// Contains 检查节点是否在集合中
func (s NodeSet) Contains(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Add 添加节点
func (s NodeSet) Add(id NodeID) {
	s[id] = struct{}{}
}

// Len 返回集合大小
func (s NodeSet) Len() int {
	return len(s)
}

// Clone 返回集合副本
func (s NodeSet) Clone() NodeSet {
	c := make(NodeSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Slice 返回按字节序排序的节点列表
func (s NodeSet) Slice() []NodeID {
	ids := make([]NodeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
