package relay

import (
	"time"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// BuildTopology 由连接快照构造拓扑应答体
//
// 每个方向最多取 MaxPeerListLen 条，总数字段报告真实连接数。
// 超长的版本字符串在快照时截断。
func BuildTopology(conns []types.PeerConnInfo, now time.Time) types.TopologyBody {
	var body types.TopologyBody
	for _, c := range conns {
		if c.Inbound {
			body.TotalInboundPeerCount++
			if len(body.InboundPeers) < types.MaxPeerListLen {
				body.InboundPeers = append(body.InboundPeers, c.PeerStat(now))
			}
			continue
		}
		body.TotalOutboundPeerCount++
		if len(body.OutboundPeers) < types.MaxPeerListLen {
			body.OutboundPeers = append(body.OutboundPeers, c.PeerStat(now))
		}
	}
	return body
}
