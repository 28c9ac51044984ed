package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// TopologyBody 字段编号
const (
	fieldInbound       protowire.Number = 1
	fieldOutbound      protowire.Number = 2
	fieldTotalInbound  protowire.Number = 3
	fieldTotalOutbound protowire.Number = 4
)

// EncodeTopology 编码拓扑应答体
//
// 超出列表或字符串上界时返回 ErrPayloadTooLarge，不做截断。
func EncodeTopology(body types.TopologyBody) ([]byte, error) {
	if err := body.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, 0, MaxPlaintextLen)
	scratch := make([]byte, 0, MaxPeerStatLen)

	var err error
	for _, list := range []struct {
		num   protowire.Number
		stats []types.PeerStat
	}{
		{fieldInbound, body.InboundPeers},
		{fieldOutbound, body.OutboundPeers},
	} {
		for _, s := range list.stats {
			if scratch, err = appendPeerStat(scratch[:0], s); err != nil {
				return nil, err
			}
			b = protowire.AppendTag(b, list.num, protowire.BytesType)
			b = protowire.AppendBytes(b, scratch)
		}
	}

	b = protowire.AppendTag(b, fieldTotalInbound, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(body.TotalInboundPeerCount))
	b = protowire.AppendTag(b, fieldTotalOutbound, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(body.TotalOutboundPeerCount))
	return b, nil
}

// DecodeTopology 解码拓扑应答体
func DecodeTopology(b []byte) (types.TopologyBody, error) {
	var body types.TopologyBody
	if len(b) > MaxPlaintextLen {
		return body, malformed("topology length %d > %d", len(b), MaxPlaintextLen)
	}

	d := newDecoder(b)
	for d.more() {
		num, err := d.field(topologyField)
		if err != nil {
			return types.TopologyBody{}, err
		}
		switch num {
		case fieldInbound, fieldOutbound:
			raw, err := d.bytes(MaxPeerStatLen)
			if err != nil {
				return types.TopologyBody{}, err
			}
			s, err := DecodePeerStat(raw)
			if err != nil {
				return types.TopologyBody{}, err
			}
			list := &body.InboundPeers
			if num == fieldOutbound {
				list = &body.OutboundPeers
			}
			if len(*list) == MaxPeerListLen {
				return types.TopologyBody{}, malformed("field %d exceeds %d peers", num, MaxPeerListLen)
			}
			*list = append(*list, s)
		case fieldTotalInbound:
			if body.TotalInboundPeerCount, err = d.uint32(); err != nil {
				return types.TopologyBody{}, err
			}
		case fieldTotalOutbound:
			if body.TotalOutboundPeerCount, err = d.uint32(); err != nil {
				return types.TopologyBody{}, err
			}
		}
	}
	return body, nil
}

func topologyField(num protowire.Number) (protowire.Type, bool, bool) {
	switch num {
	case fieldInbound, fieldOutbound:
		return protowire.BytesType, true, true
	case fieldTotalInbound, fieldTotalOutbound:
		return protowire.VarintType, false, true
	default:
		return 0, false, false
	}
}
