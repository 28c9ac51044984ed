package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// PeerStat 字段编号
const (
	fieldPeerID      protowire.Number = 1
	fieldPeerVersion protowire.Number = 2
	fieldFirstCount  protowire.Number = 3
	fieldLastCount                    = fieldFirstCount + numCounters - 1
)

// counterRefs 按线格式顺序返回计数器字段的指针
func counterRefs(s *types.PeerStat) [numCounters]*uint64 {
	return [numCounters]*uint64{
		&s.MessagesRead,
		&s.MessagesWritten,
		&s.BytesRead,
		&s.BytesWritten,
		&s.SecondsConnected,
		&s.UniqueFloodBytesRecv,
		&s.DuplicateFloodBytesRecv,
		&s.UniqueFetchBytesRecv,
		&s.DuplicateFetchBytesRecv,
		&s.UniqueFloodMessageRecv,
		&s.DuplicateFloodMessageRecv,
		&s.UniqueFetchMessageRecv,
		&s.DuplicateFetchMessageRecv,
	}
}

// EncodePeerStat 编码单条 PeerStat
func EncodePeerStat(s types.PeerStat) ([]byte, error) {
	return appendPeerStat(make([]byte, 0, MaxPeerStatLen), s)
}

func appendPeerStat(b []byte, s types.PeerStat) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	b = protowire.AppendTag(b, fieldPeerID, protowire.BytesType)
	b = protowire.AppendBytes(b, s.ID[:])
	b = protowire.AppendTag(b, fieldPeerVersion, protowire.BytesType)
	b = protowire.AppendString(b, s.VersionStr)

	for i, v := range counterRefs(&s) {
		b = protowire.AppendTag(b, fieldFirstCount+protowire.Number(i), protowire.VarintType)
		b = protowire.AppendVarint(b, *v)
	}
	return b, nil
}

// DecodePeerStat 解码单条 PeerStat
func DecodePeerStat(b []byte) (types.PeerStat, error) {
	var s types.PeerStat
	if len(b) > MaxPeerStatLen {
		return s, malformed("peer stat length %d > %d", len(b), MaxPeerStatLen)
	}

	d := newDecoder(b)
	refs := counterRefs(&s)
	haveID := false

	for d.more() {
		num, err := d.field(peerStatField)
		if err != nil {
			return types.PeerStat{}, err
		}
		switch num {
		case fieldPeerID:
			if s.ID, err = d.nodeID(); err != nil {
				return types.PeerStat{}, err
			}
			haveID = true
		case fieldPeerVersion:
			v, err := d.bytes(MaxVersionStrLen)
			if err != nil {
				return types.PeerStat{}, err
			}
			s.VersionStr = string(v)
		default:
			v, err := d.varint()
			if err != nil {
				return types.PeerStat{}, err
			}
			*refs[num-fieldFirstCount] = v
		}
	}

	if !haveID {
		return types.PeerStat{}, malformed("peer stat without node id")
	}
	return s, nil
}

func peerStatField(num protowire.Number) (protowire.Type, bool, bool) {
	switch {
	case num == fieldPeerID, num == fieldPeerVersion:
		return protowire.BytesType, false, true
	case num >= fieldFirstCount && num <= fieldLastCount:
		return protowire.VarintType, false, true
	default:
		return 0, false, false
	}
}
