package results

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

func nodeID(b byte) types.NodeID {
	var id types.NodeID
	id[0] = b
	return id
}

func body(n uint32) types.TopologyBody {
	return types.TopologyBody{
		InboundPeers:          []types.PeerStat{{ID: nodeID(byte(n)), VersionStr: "v1", BytesRead: uint64(n)}},
		TotalInboundPeerCount: n,
	}
}

func TestTable_MarkRequested(t *testing.T) {
	tbl := NewTable()
	tbl.MarkRequested(nodeID(1))

	snap := tbl.Snapshot()
	require.Contains(t, snap.Topology, nodeID(1))
	assert.Nil(t, snap.Topology[nodeID(1)])

	tbl.RecordAnswer(nodeID(1), body(1))
	tbl.MarkRequested(nodeID(1))
	assert.NotNil(t, tbl.Snapshot().Topology[nodeID(1)], "已有应答时登记不覆盖")
}

func TestTable_RecordAnswerIdempotent(t *testing.T) {
	tbl := NewTable()
	tbl.MarkRequested(nodeID(1))

	tbl.RecordAnswer(nodeID(1), body(1))
	tbl.RecordAnswer(nodeID(1), body(2))

	snap := tbl.Snapshot()
	require.NotNil(t, snap.Topology[nodeID(1)])
	assert.Equal(t, body(2), *snap.Topology[nodeID(1)], "保留最新应答")
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_SnapshotIsDeepCopy(t *testing.T) {
	tbl := NewTable()
	tbl.RecordAnswer(nodeID(1), body(1))

	snap := tbl.Snapshot()
	snap.Topology[nodeID(1)].InboundPeers[0].BytesRead = 999
	snap.Topology[nodeID(2)] = nil

	again := tbl.Snapshot()
	assert.Equal(t, uint64(1), again.Topology[nodeID(1)].InboundPeers[0].BytesRead)
	assert.NotContains(t, again.Topology, nodeID(2))
}

func TestTable_BadResponse(t *testing.T) {
	tbl := NewTable()
	tbl.MarkRequested(nodeID(1))
	tbl.MarkBadResponse(nodeID(1))

	assert.Equal(t, []types.NodeID{nodeID(1)}, tbl.Snapshot().BadResponseNodes)

	tbl.RecordAnswer(nodeID(1), body(1))
	assert.Empty(t, tbl.Snapshot().BadResponseNodes, "有效应答清除错误标记")
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable()
	tbl.MarkRequested(nodeID(1))
	tbl.RecordAnswer(nodeID(2), types.TopologyBody{TotalOutboundPeerCount: 4})

	out := tbl.Render()
	require.Len(t, out, 2)
	assert.Nil(t, out[nodeID(1).String()])

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"`+nodeID(1).String()+`":null`)
	assert.Contains(t, string(data), `"numTotalOutboundPeers":4`)
}

func TestTable_Reset(t *testing.T) {
	tbl := NewTable()
	tbl.RecordAnswer(nodeID(1), body(1))
	tbl.MarkBadResponse(nodeID(2))

	tbl.Reset()
	snap := tbl.Snapshot()
	assert.Empty(t, snap.Topology)
	assert.Empty(t, snap.BadResponseNodes)
	assert.False(t, tbl.Requested(nodeID(1)))
}
