package types

import "time"

// PeerConnInfo 由外部 Overlay 报告的单条连接快照
type PeerConnInfo struct {
	// ID 对端节点
	ID NodeID

	// Inbound 是否由对端发起（入站）
	Inbound bool

	// OverlayVersion 对端声明的 overlay 协议版本
	OverlayVersion uint32

	// VersionStr 对端声明的软件版本字符串
	VersionStr string

	// ConnectedAt 连接建立时间
	ConnectedAt time.Time

	// 流量计数
	MessagesRead              uint64
	MessagesWritten           uint64
	BytesRead                 uint64
	BytesWritten              uint64
	UniqueFloodBytesRecv      uint64
	DuplicateFloodBytesRecv   uint64
	UniqueFetchBytesRecv      uint64
	DuplicateFetchBytesRecv   uint64
	UniqueFloodMessageRecv    uint64
	DuplicateFloodMessageRecv uint64
	UniqueFetchMessageRecv    uint64
	DuplicateFetchMessageRecv uint64
}

// PeerStat 在 now 时刻把连接快照转换为 PeerStat
//
// 超长的版本字符串在快照时截断到 MaxVersionStrLen，
// 对端声明的字符串不受本节点控制。
func (c PeerConnInfo) PeerStat(now time.Time) PeerStat {
	version := c.VersionStr
	if len(version) > MaxVersionStrLen {
		version = version[:MaxVersionStrLen]
	}
	var secs uint64
	if !c.ConnectedAt.IsZero() && now.After(c.ConnectedAt) {
		secs = uint64(now.Sub(c.ConnectedAt) / time.Second)
	}
	return PeerStat{
		ID:                        c.ID,
		VersionStr:                version,
		MessagesRead:              c.MessagesRead,
		MessagesWritten:           c.MessagesWritten,
		BytesRead:                 c.BytesRead,
		BytesWritten:              c.BytesWritten,
		SecondsConnected:          secs,
		UniqueFloodBytesRecv:      c.UniqueFloodBytesRecv,
		DuplicateFloodBytesRecv:   c.DuplicateFloodBytesRecv,
		UniqueFetchBytesRecv:      c.UniqueFetchBytesRecv,
		DuplicateFetchBytesRecv:   c.DuplicateFetchBytesRecv,
		UniqueFloodMessageRecv:    c.UniqueFloodMessageRecv,
		DuplicateFloodMessageRecv: c.DuplicateFloodMessageRecv,
		UniqueFetchMessageRecv:    c.UniqueFetchMessageRecv,
		DuplicateFetchMessageRecv: c.DuplicateFetchMessageRecv,
	}
}
