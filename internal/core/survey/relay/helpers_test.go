package relay

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/codec"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
	"github.com/dep2p/go-dep2p-survey/tests/mocks"
)

const (
	testLedger    = 100
	testCloseTime = 5 * time.Second
)

// fixture 单节点中继测试环境
type fixture struct {
	t        *testing.T
	self     *identity.Identity
	surveyor *identity.Identity
	peers    []*identity.Identity
	cfg      config.SurveyConfig
	overlay  *mocks.MockOverlay
	quorum   *mocks.MockQuorum
	ledger   *mocks.MockLedger
	clock    *clock.Mock
	engine   *Engine
	sunk     []types.SurveyMessage
}

func newIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id
}

// newFixture 创建测试环境：本节点连接 3 个对端，调查者在仲裁集内
func newFixture(t *testing.T, mutate func(*config.SurveyConfig)) *fixture {
	t.Helper()

	f := &fixture{
		t:        t,
		self:     newIdentity(t),
		surveyor: newIdentity(t),
		cfg:      config.DefaultSurveyConfig(),
		clock:    clock.NewMock(),
	}
	f.clock.Set(time.Unix(1_700_000_000, 0))
	for i := 0; i < 3; i++ {
		f.peers = append(f.peers, newIdentity(t))
	}
	if mutate != nil {
		mutate(&f.cfg)
	}

	var conns []types.PeerConnInfo
	for i, p := range f.peers {
		conns = append(conns, types.PeerConnInfo{
			ID:             p.ID(),
			Inbound:        i%2 == 0,
			OverlayVersion: f.cfg.OverlayVersion,
			VersionStr:     "v1.0.0",
			ConnectedAt:    f.clock.Now().Add(-time.Minute),
		})
	}
	f.overlay = mocks.NewMockOverlay(conns...)
	f.quorum = mocks.NewMockQuorum(f.surveyor.ID())
	f.ledger = mocks.NewMockLedger(testLedger, testCloseTime)

	engine, err := New(Params{
		Identity: f.self,
		Overlay:  f.overlay,
		Quorum:   f.quorum,
		Ledger:   f.ledger,
		Config:   f.cfg,
		Clock:    f.clock,
		Sink:     func(msg types.SurveyMessage) { f.sunk = append(f.sunk, msg) },
	})
	require.NoError(t, err)
	f.engine = engine
	return f
}

// signAs 以 signer 身份签名消息
func (f *fixture) signAs(signer *identity.Identity, msg types.SurveyMessage) types.SurveyMessage {
	f.t.Helper()
	digest, err := codec.SigningDigest(f.cfg.NetworkID(), msg)
	require.NoError(f.t, err)
	msg.Signature = signer.Sign(digest)
	return msg
}

// request 构造由 surveyor 签名、指向 surveyed 的请求
func (f *fixture) request(surveyor *identity.Identity, surveyed types.NodeID) types.SurveyMessage {
	return f.signAs(surveyor, types.SurveyMessage{
		Type:       types.MessageRequest,
		Command:    types.CommandTopology,
		SurveyorID: surveyor.ID(),
		SurveyedID: surveyed,
		LedgerSeq:  testLedger,
	})
}

func (f *fixture) from() types.NodeID {
	return f.peers[0].ID()
}

func recipients(calls []mocks.SendCall) []types.NodeID {
	out := make([]types.NodeID, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.To)
	}
	return out
}
