package relay

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

func nodeID(b byte) types.NodeID {
	var id types.NodeID
	id[0] = b
	return id
}

func TestSurveyorLimiter(t *testing.T) {
	self := nodeID(0)
	l := NewSurveyorLimiter(self, 2)

	t.Run("达到上限后拒绝新目标", func(t *testing.T) {
		assert.True(t, l.Allow(nodeID(1), nodeID(10)))
		assert.True(t, l.Allow(nodeID(1), nodeID(11)))
		assert.False(t, l.Allow(nodeID(1), nodeID(12)))
	})

	t.Run("已登记目标始终允许", func(t *testing.T) {
		assert.True(t, l.Allow(nodeID(1), nodeID(10)))
	})

	t.Run("调查者之间独立", func(t *testing.T) {
		assert.True(t, l.Allow(nodeID(2), nodeID(12)))
	})

	t.Run("本节点不受限", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.True(t, l.Allow(self, nodeID(byte(20+i))))
		}
	})

	t.Run("重置", func(t *testing.T) {
		l.Reset()
		assert.True(t, l.Allow(nodeID(1), nodeID(12)))
	})
}

func TestPeerLimiter(t *testing.T) {
	clk := clock.NewMock()

	t.Run("速率为零不限制", func(t *testing.T) {
		l := NewPeerLimiter(0, 0, clk)
		for i := 0; i < 100; i++ {
			assert.True(t, l.Allow(nodeID(1)))
		}
	})

	t.Run("令牌随时间恢复", func(t *testing.T) {
		l := NewPeerLimiter(1, 2, clk)
		assert.True(t, l.Allow(nodeID(1)))
		assert.True(t, l.Allow(nodeID(1)))
		assert.False(t, l.Allow(nodeID(1)))

		clk.Add(time.Second)
		assert.True(t, l.Allow(nodeID(1)))
	})

	t.Run("回收空闲对端", func(t *testing.T) {
		l := NewPeerLimiter(1, 1, clk)
		l.Allow(nodeID(1))
		clk.Add(peerIdleExpiry + time.Second)
		l.Allow(nodeID(2))
		assert.Equal(t, 1, l.Cleanup())
	})
}

func TestBuildTopology(t *testing.T) {
	now := time.Unix(1000, 0)
	var conns []types.PeerConnInfo
	for i := 0; i < 30; i++ {
		conns = append(conns, types.PeerConnInfo{ID: nodeID(byte(i)), Inbound: true, ConnectedAt: now.Add(-time.Duration(i) * time.Second)})
	}
	conns = append(conns, types.PeerConnInfo{ID: nodeID(200), VersionStr: string(make([]byte, 300))})

	body := BuildTopology(conns, now)
	assert.Len(t, body.InboundPeers, types.MaxPeerListLen)
	assert.Equal(t, uint32(30), body.TotalInboundPeerCount)
	assert.Len(t, body.OutboundPeers, 1)
	assert.Len(t, body.OutboundPeers[0].VersionStr, types.MaxVersionStrLen)
	assert.Equal(t, uint64(3), body.InboundPeers[3].SecondsConnected)
	assert.NoError(t, body.Validate())
}
