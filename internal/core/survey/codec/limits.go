package codec

import (
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// 上界常量
//
// 字段编号均小于 16，标签占 1 字节；varint 最长 10 字节（uint64）或 5 字节（uint32）。
const (
	// MaxPeerListLen 每个方向的最大连接数
	MaxPeerListLen = types.MaxPeerListLen

	// MaxVersionStrLen 版本字符串最大长度
	MaxVersionStrLen = types.MaxVersionStrLen

	tagLen       = 1
	maxVarint32  = 5
	maxVarint64  = 10
	peerIDLen    = tagLen + 1 + types.NodeIDLen
	versionLen   = tagLen + 1 + MaxVersionStrLen
	counterLen   = tagLen + maxVarint64
	numCounters  = 13
	peerEntryLen = tagLen + 2 + MaxPeerStatLen
	totalLen     = tagLen + maxVarint32

	// MaxPeerStatLen 单条 PeerStat 的最大编码长度
	MaxPeerStatLen = peerIDLen + versionLen + numCounters*counterLen

	// MaxPlaintextLen 满载 TopologyBody 的最大编码长度
	MaxPlaintextLen = 2*MaxPeerListLen*peerEntryLen + 2*totalLen
)
