package relay

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

func dedupKey(b byte, typ types.MessageType) types.DedupKey {
	var id types.NodeID
	id[0] = b
	return types.DedupKey{Type: typ, SurveyorID: id, SurveyedID: id, LedgerSeq: 1}
}

func TestDedupCache_Window(t *testing.T) {
	clk := clock.NewMock()
	c, err := NewDedupCache(16, time.Minute, clk)
	require.NoError(t, err)

	key := dedupKey(1, types.MessageRequest)
	assert.False(t, c.Seen(key))

	c.Record(key)
	assert.True(t, c.Seen(key))

	clk.Add(59 * time.Second)
	assert.True(t, c.Seen(key), "窗口内仍然命中")

	clk.Add(time.Second)
	assert.False(t, c.Seen(key), "窗口到期后不再命中")
	assert.Zero(t, c.Len(), "过期条目在检查时移除")
}

func TestDedupCache_TypeIsPartOfKey(t *testing.T) {
	c, err := NewDedupCache(16, time.Minute, clock.NewMock())
	require.NoError(t, err)

	c.Record(dedupKey(1, types.MessageRequest))
	assert.False(t, c.Seen(dedupKey(1, types.MessageResponse)))
}

func TestDedupCache_Prune(t *testing.T) {
	clk := clock.NewMock()
	c, err := NewDedupCache(16, time.Minute, clk)
	require.NoError(t, err)

	c.Record(dedupKey(1, types.MessageRequest))
	clk.Add(30 * time.Second)
	c.Record(dedupKey(2, types.MessageRequest))
	clk.Add(30 * time.Second)

	assert.Equal(t, 1, c.Prune())
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Seen(dedupKey(2, types.MessageRequest)))
}

func TestDedupCache_Capacity(t *testing.T) {
	c, err := NewDedupCache(4, time.Hour, clock.NewMock())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c.Record(dedupKey(byte(i), types.MessageRequest))
	}
	assert.Equal(t, 4, c.Len())
	assert.True(t, c.Seen(dedupKey(9, types.MessageRequest)))
	assert.False(t, c.Seen(dedupKey(0, types.MessageRequest)))
}

func TestNewDedupCache_InvalidCapacity(t *testing.T) {
	_, err := NewDedupCache(0, time.Minute, nil)
	assert.Error(t, err)
}
