package survey

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/secure"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// ============================================================================
// 会话
// ============================================================================

func TestManager_Session(t *testing.T) {
	f := newFixture(t, nil)

	id1, started := f.mgr.StartSurvey(time.Minute)
	require.True(t, started)
	assert.True(t, f.mgr.Running())

	t.Run("重复开启返回原会话", func(t *testing.T) {
		id, started := f.mgr.StartSurvey(time.Minute)
		assert.False(t, started)
		assert.Equal(t, id1, id)
	})

	require.NoError(t, f.mgr.SurveyTopology(f.target(0), 0))
	require.Len(t, f.mgr.Result().Topology, 1)

	t.Run("结束后结果保留", func(t *testing.T) {
		f.mgr.StopSurvey()
		res := f.mgr.Result()
		assert.False(t, res.SurveyInProgress)
		assert.Equal(t, id1.String(), res.SessionID)
		assert.Len(t, res.Topology, 1)
	})

	t.Run("新会话清空结果", func(t *testing.T) {
		id2, started := f.mgr.StartSurvey(0)
		require.True(t, started)
		assert.NotEqual(t, id1, id2)
		assert.Empty(t, f.mgr.Result().Topology)
	})
}

func TestManager_SessionExpiry(t *testing.T) {
	f := newFixture(t, nil)

	id, _ := f.mgr.StartSurvey(10 * time.Second)
	require.NoError(t, f.mgr.SurveyTopology(f.target(1), 0))

	f.clock.Add(5 * time.Second)
	f.mgr.OnLedgerClosed(testLedger + 1)
	assert.True(t, f.mgr.Running())

	f.clock.Add(5 * time.Second)
	f.mgr.OnLedgerClosed(testLedger + 2)
	assert.False(t, f.mgr.Running())

	// 到期的会话写入归档
	records, err := f.mgr.History()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].SessionID)
	assert.Contains(t, records[0].Result.Topology, f.target(1).String())
}

func TestManager_SessionExtend(t *testing.T) {
	f := newFixture(t, nil)

	f.mgr.StartSurvey(10 * time.Second)
	f.clock.Add(8 * time.Second)

	// 再次请求时延长到期时间
	require.NoError(t, f.mgr.SurveyTopology(f.target(0), 10*time.Second))
	f.clock.Add(5 * time.Second)
	f.mgr.OnLedgerClosed(testLedger + 1)
	assert.True(t, f.mgr.Running())
}

// ============================================================================
// 请求
// ============================================================================

func TestManager_SurveyTopology(t *testing.T) {
	f := newFixture(t, nil)
	target := f.target(2)

	require.NoError(t, f.mgr.SurveyTopology(target, time.Minute))

	sent := f.overlay.SentOfType(types.MessageRequest)
	require.Len(t, sent, 3, "请求泛洪到全部连接")

	req := sent[0].Msg
	assert.Equal(t, f.self.ID(), req.SurveyorID)
	assert.Equal(t, target, req.SurveyedID)
	assert.Equal(t, uint32(testLedger), req.LedgerSeq)

	digest, err := codec.SigningDigest(f.cfg.NetworkID(), req)
	require.NoError(t, err)
	assert.True(t, identity.Verify(f.self.ID(), digest, req.Signature))

	res := f.mgr.Result()
	assert.True(t, res.SurveyInProgress)
	require.Contains(t, res.Topology, target.String())
	assert.Nil(t, res.Topology[target.String()])

	t.Run("参数校验", func(t *testing.T) {
		assert.ErrorIs(t, f.mgr.SurveyTopology(types.EmptyNodeID, 0), types.ErrInvalidNodeID)
		assert.ErrorIs(t, f.mgr.SurveyTopology(target, -time.Second), types.ErrInvalidDuration)
	})
}

func TestManager_SurveySelf(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.mgr.SurveyTopology(f.self.ID(), 0))
	assert.Empty(t, f.overlay.Sent())

	body := f.mgr.Result().Topology[f.self.ID().String()]
	require.NotNil(t, body)
	assert.Len(t, body.InboundPeers, 2)
	assert.Len(t, body.OutboundPeers, 1)
}

func TestManager_Throttle(t *testing.T) {
	f := newFixture(t, func(c *config.SurveyConfig) {
		c.MaxRequestsPerWindow = 2
	})

	require.NoError(t, f.mgr.SurveyTopology(f.target(0), 0))
	require.NoError(t, f.mgr.SurveyTopology(f.target(1), 0))

	err := f.mgr.SurveyTopology(f.target(2), 0)
	require.ErrorIs(t, err, types.ErrThrottled)
	assert.Equal(t, []types.NodeID{f.target(2)}, f.mgr.Backlog())
	assert.Len(t, requestedTargets(f.overlay), 2)

	t.Run("在途目标不进入待发队列", func(t *testing.T) {
		err := f.mgr.SurveyTopology(f.target(0), 0)
		require.ErrorIs(t, err, types.ErrThrottled)
		assert.Len(t, f.mgr.Backlog(), 1)
	})

	t.Run("窗口轮转后补发", func(t *testing.T) {
		f.clock.Add(time.Duration(f.cfg.ThrottleMultiplier) * testCloseTime)
		f.ledger.SetSeq(testLedger + 1)
		f.mgr.OnLedgerClosed(testLedger + 1)

		assert.Empty(t, f.mgr.Backlog())
		assert.Equal(t,
			[]types.NodeID{f.target(0), f.target(1), f.target(2)},
			requestedTargets(f.overlay))
	})
}

func TestManager_StopClearsBacklog(t *testing.T) {
	f := newFixture(t, func(c *config.SurveyConfig) {
		c.MaxRequestsPerWindow = 1
	})

	require.NoError(t, f.mgr.SurveyTopology(f.target(0), 0))
	require.ErrorIs(t, f.mgr.SurveyTopology(f.target(1), 0), types.ErrThrottled)

	f.mgr.StopSurvey()
	assert.Empty(t, f.mgr.Backlog())

	f.clock.Add(time.Hour)
	f.mgr.OnLedgerClosed(testLedger + 1)
	assert.Len(t, requestedTargets(f.overlay), 1)
}

// ============================================================================
// 应答
// ============================================================================

func TestManager_Response(t *testing.T) {
	f := newFixture(t, nil)
	surveyed := f.peers[1]
	body := sampleBody(f.target(0))

	require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))
	f.mgr.HandleMessage(surveyed.ID(), f.response(surveyed, body))

	got := f.mgr.Result().Topology[surveyed.ID().String()]
	require.NotNil(t, got)
	require.Len(t, got.InboundPeers, 1)
	assert.Equal(t, body.InboundPeers[0], got.InboundPeers[0])
	assert.Empty(t, got.OutboundPeers)
	assert.Equal(t, uint32(1), got.TotalInboundPeerCount)

	t.Run("应答后可再次请求", func(t *testing.T) {
		require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))
	})
}

func TestManager_LateResponse(t *testing.T) {
	f := newFixture(t, nil)
	surveyed := f.peers[0]

	require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))
	f.mgr.StopSurvey()

	// 会话结束后到达的应答仍被接受
	f.mgr.HandleMessage(surveyed.ID(), f.response(surveyed, sampleBody(f.target(2))))
	assert.NotNil(t, f.mgr.Result().Topology[surveyed.ID().String()])
}

func TestManager_UnrequestedResponse(t *testing.T) {
	f := newFixture(t, nil)
	surveyed := f.peers[0]

	f.mgr.StartSurvey(0)
	f.mgr.HandleMessage(surveyed.ID(), f.response(surveyed, sampleBody(f.target(2))))
	assert.Empty(t, f.mgr.Result().Topology)
}

func TestManager_BadResponse(t *testing.T) {
	t.Run("密文被篡改", func(t *testing.T) {
		f := newFixture(t, nil)
		surveyed := f.peers[0]
		require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))

		resp := f.response(surveyed, sampleBody(f.target(1)))
		ct := append([]byte(nil), resp.EncryptedBody...)
		ct[len(ct)-1] ^= 0xff

		f.mgr.HandleMessage(surveyed.ID(), f.signResponse(surveyed, ct))

		res := f.mgr.Result()
		assert.Equal(t, []string{surveyed.ID().String()}, res.BadResponseNodes)
		assert.Nil(t, res.Topology[surveyed.ID().String()])
	})

	t.Run("明文无法解码", func(t *testing.T) {
		f := newFixture(t, nil)
		surveyed := f.peers[0]
		require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))

		ct, err := secure.Encrypt(f.self.EncryptionPublicKey(), []byte{0xff, 0xff})
		require.NoError(t, err)
		f.mgr.HandleMessage(surveyed.ID(), f.signResponse(surveyed, ct))

		assert.Equal(t, []string{surveyed.ID().String()}, f.mgr.Result().BadResponseNodes)
	})

	t.Run("有效应答清除错误标记", func(t *testing.T) {
		f := newFixture(t, nil)
		surveyed := f.peers[0]
		require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))

		f.mgr.HandleMessage(surveyed.ID(), f.signResponse(surveyed, []byte("short")))
		require.Len(t, f.mgr.Result().BadResponseNodes, 1)

		f.ledger.SetSeq(testLedger + 1)
		f.mgr.HandleMessage(surveyed.ID(), f.response(surveyed, sampleBody(f.target(1))))
		res := f.mgr.Result()
		assert.Empty(t, res.BadResponseNodes)
		assert.NotNil(t, res.Topology[surveyed.ID().String()])
	})
}

// ============================================================================
// 线上字节、节拍与 JSON
// ============================================================================

func TestManager_HandleWire(t *testing.T) {
	f := newFixture(t, nil)
	surveyed := f.peers[2]
	require.NoError(t, f.mgr.SurveyTopology(surveyed.ID(), 0))

	t.Run("格式错误", func(t *testing.T) {
		err := f.mgr.HandleWire(surveyed.ID(), []byte{0xff, 0xff, 0xff})
		assert.ErrorIs(t, err, types.ErrMalformedPayload)
	})

	t.Run("有效应答", func(t *testing.T) {
		data, err := codec.EncodeMessage(f.response(surveyed, sampleBody(f.target(0))))
		require.NoError(t, err)
		require.NoError(t, f.mgr.HandleWire(surveyed.ID(), data))
		assert.NotNil(t, f.mgr.Result().Topology[surveyed.ID().String()])
	})
}

func TestManager_StartStop(t *testing.T) {
	f := newFixture(t, func(c *config.SurveyConfig) {
		c.MaxRequestsPerWindow = 1
	})
	require.NoError(t, f.mgr.Start(context.Background()))
	defer f.mgr.Stop()

	require.NoError(t, f.mgr.SurveyTopology(f.target(0), 0))
	require.ErrorIs(t, f.mgr.SurveyTopology(f.target(1), 0), types.ErrThrottled)

	// 没有账本事件时由节拍补发
	f.clock.Add(time.Duration(f.cfg.ThrottleMultiplier) * testCloseTime)
	require.Eventually(t, func() bool {
		return len(f.mgr.Backlog()) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Len(t, requestedTargets(f.overlay), 2)

	require.NoError(t, f.mgr.Stop())
	require.NoError(t, f.mgr.Stop())
}

func TestManager_ResultJSON(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.mgr.SurveyTopology(f.target(0), 0))
	require.NoError(t, f.mgr.SurveyTopology(f.self.ID(), 0))

	data, err := f.mgr.ResultJSON()
	require.NoError(t, err)

	var got struct {
		SurveyInProgress bool                       `json:"surveyInProgress"`
		Topology         map[string]json.RawMessage `json:"topology"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.SurveyInProgress)
	assert.Equal(t, "null", string(got.Topology[f.target(0).String()]))
	assert.NotEqual(t, "null", string(got.Topology[f.self.ID().String()]))
}
