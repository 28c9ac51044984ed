package types

import (
	"errors"
	"strings"
	"testing"
)

func TestSurveyMessage(t *testing.T) {
	surveyor, surveyed := testNodeID(1), testNodeID(2)
	req := SurveyMessage{Type: MessageRequest, SurveyorID: surveyor, SurveyedID: surveyed, LedgerSeq: 7}
	resp := req
	resp.Type = MessageResponse

	t.Run("签名者", func(t *testing.T) {
		if req.Signer() != surveyor {
			t.Error("request must be signed by surveyor")
		}
		if resp.Signer() != surveyed {
			t.Error("response must be signed by surveyed")
		}
	})

	t.Run("去重键区分类型", func(t *testing.T) {
		if req.Key() == resp.Key() {
			t.Error("request and response share a dedup key")
		}
		other := req
		other.LedgerSeq = 8
		if req.Key() == other.Key() {
			t.Error("dedup key ignores ledger seq")
		}
		if !strings.Contains(req.Key().String(), "request") {
			t.Errorf("DedupKey.String() = %q", req.Key().String())
		}
	})

	t.Run("类型名称", func(t *testing.T) {
		if MessageType(9).String() != "unknown(9)" {
			t.Errorf("MessageType(9).String() = %q", MessageType(9).String())
		}
		if CommandTopology.String() != "topology" {
			t.Errorf("CommandTopology.String() = %q", CommandTopology.String())
		}
	})
}

func TestNewTopologyBody(t *testing.T) {
	peers := func(n int) []PeerStat {
		out := make([]PeerStat, n)
		for i := range out {
			out[i] = PeerStat{ID: testNodeID(byte(i)), VersionStr: "v"}
		}
		return out
	}

	t.Run("正常", func(t *testing.T) {
		body, err := NewTopologyBody(peers(2), peers(MaxPeerListLen))
		if err != nil {
			t.Fatalf("NewTopologyBody() error = %v", err)
		}
		if body.TotalInboundPeerCount != 2 || body.TotalOutboundPeerCount != MaxPeerListLen {
			t.Errorf("totals = %d/%d", body.TotalInboundPeerCount, body.TotalOutboundPeerCount)
		}
	})

	t.Run("列表超限", func(t *testing.T) {
		_, err := NewTopologyBody(peers(MaxPeerListLen+1), nil)
		if !errors.Is(err, ErrPayloadTooLarge) {
			t.Errorf("error = %v, want ErrPayloadTooLarge", err)
		}
	})

	t.Run("版本字符串超限", func(t *testing.T) {
		p := peers(1)
		p[0].VersionStr = strings.Repeat("x", MaxVersionStrLen+1)
		_, err := NewTopologyBody(nil, p)
		if !errors.Is(err, ErrPayloadTooLarge) {
			t.Errorf("error = %v, want ErrPayloadTooLarge", err)
		}
	})

	t.Run("Clone 不共享切片", func(t *testing.T) {
		body, _ := NewTopologyBody(peers(1), nil)
		c := body.Clone()
		c.InboundPeers[0].VersionStr = "changed"
		if body.InboundPeers[0].VersionStr != "v" {
			t.Error("Clone() shares inbound slice")
		}
		if c.OutboundPeers != nil {
			t.Error("Clone() should keep nil lists nil")
		}
	})
}
