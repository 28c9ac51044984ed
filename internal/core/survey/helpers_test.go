package survey

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine/badger"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/history"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/secure"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
	"github.com/dep2p/go-dep2p-survey/tests/mocks"
)

const (
	testLedger    = 100
	testCloseTime = 5 * time.Second
)

// fixture 调查者节点测试环境：本节点连接 3 个对端
type fixture struct {
	t       *testing.T
	self    *identity.Identity
	peers   []*identity.Identity
	cfg     config.SurveyConfig
	overlay *mocks.MockOverlay
	quorum  *mocks.MockQuorum
	ledger  *mocks.MockLedger
	clock   *clock.Mock
	archive *history.Archive
	mgr     *Manager
}

func newIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id
}

func newFixture(t *testing.T, mutate func(*config.SurveyConfig)) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		self:  newIdentity(t),
		cfg:   config.DefaultSurveyConfig(),
		clock: clock.NewMock(),
	}
	f.clock.Set(time.Unix(1_700_000_000, 0))
	if mutate != nil {
		mutate(&f.cfg)
	}

	var conns []types.PeerConnInfo
	for i := 0; i < 3; i++ {
		p := newIdentity(t)
		f.peers = append(f.peers, p)
		conns = append(conns, types.PeerConnInfo{
			ID:             p.ID(),
			Inbound:        i%2 == 0,
			OverlayVersion: f.cfg.OverlayVersion,
			VersionStr:     "v1.0.0",
			ConnectedAt:    f.clock.Now().Add(-time.Minute),
		})
	}
	f.overlay = mocks.NewMockOverlay(conns...)
	f.quorum = mocks.NewMockQuorum(f.self.ID())
	f.ledger = mocks.NewMockLedger(testLedger, testCloseTime)

	eng, err := badger.New(engine.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	f.archive = history.NewArchive(eng, 4)

	sm, err := metrics.NewSurveyMetrics(prometheus.NewRegistry(), "survey")
	require.NoError(t, err)

	f.mgr, err = New(Params{
		Identity: f.self,
		Overlay:  f.overlay,
		Quorum:   f.quorum,
		Ledger:   f.ledger,
		Config:   f.cfg,
		Clock:    f.clock,
		Metrics:  sm,
		Archive:  f.archive,
	})
	require.NoError(t, err)
	return f
}

// target 返回第 i 个对端的 ID
func (f *fixture) target(i int) types.NodeID {
	return f.peers[i].ID()
}

// response 构造 surveyed 对本节点请求的签名应答，body 加密给本节点
func (f *fixture) response(surveyed *identity.Identity, body types.TopologyBody) types.SurveyMessage {
	f.t.Helper()

	plain, err := codec.EncodeTopology(body)
	require.NoError(f.t, err)
	ct, err := secure.Encrypt(f.self.EncryptionPublicKey(), plain)
	require.NoError(f.t, err)

	return f.signResponse(surveyed, ct)
}

// signResponse 以 surveyed 身份签名给定密文的应答
func (f *fixture) signResponse(surveyed *identity.Identity, ciphertext []byte) types.SurveyMessage {
	f.t.Helper()

	msg := types.SurveyMessage{
		Type:          types.MessageResponse,
		Command:       types.CommandTopology,
		SurveyorID:    f.self.ID(),
		SurveyedID:    surveyed.ID(),
		LedgerSeq:     f.ledger.LastClosedLedger(),
		EncryptedBody: ciphertext,
	}
	digest, err := codec.SigningDigest(f.cfg.NetworkID(), msg)
	require.NoError(f.t, err)
	msg.Signature = surveyed.Sign(digest)
	return msg
}

// sampleBody 返回一个入站一条、出站为空的拓扑
func sampleBody(peer types.NodeID) types.TopologyBody {
	body, _ := types.NewTopologyBody([]types.PeerStat{{
		ID:               peer,
		VersionStr:       "v2.1.0",
		MessagesRead:     12,
		SecondsConnected: 30,
	}}, nil)
	return body
}

// requestedTargets 返回已发出请求的被调查者（去重，按首次出现顺序）
func requestedTargets(o *mocks.MockOverlay) []types.NodeID {
	seen := types.NewNodeSet()
	var out []types.NodeID
	for _, c := range o.SentOfType(types.MessageRequest) {
		if !seen.Contains(c.Msg.SurveyedID) {
			seen.Add(c.Msg.SurveyedID)
			out = append(out, c.Msg.SurveyedID)
		}
	}
	return out
}
