package simulation

import (
	"bytes"
	"sort"
	"time"

	"github.com/dep2p/go-dep2p-survey/pkg/interfaces"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// link 单向视角的连接状态
type link struct {
	peer        types.NodeID
	inbound     bool
	connectedAt time.Time

	messagesRead    uint64
	messagesWritten uint64
	bytesRead       uint64
	bytesWritten    uint64
}

// loopOverlay 某个节点视角的回环 overlay
type loopOverlay struct {
	sim  *Simulation
	self types.NodeID
}

// Connections 返回本节点的连接快照，按对端 ID 排序
func (o *loopOverlay) Connections() []types.PeerConnInfo {
	s := o.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.PeerConnInfo, 0, len(s.links[o.self]))
	for _, l := range s.links[o.self] {
		peer := s.nodes[l.peer]
		out = append(out, types.PeerConnInfo{
			ID:              l.peer,
			Inbound:         l.inbound,
			OverlayVersion:  peer.version,
			VersionStr:      "survey-sim",
			ConnectedAt:     l.connectedAt,
			MessagesRead:    l.messagesRead,
			MessagesWritten: l.messagesWritten,
			BytesRead:       l.bytesRead,
			BytesWritten:    l.bytesWritten,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

// Send 编码并入队，投递在 Crank 时发生
func (o *loopOverlay) Send(to types.NodeID, msg types.SurveyMessage) error {
	return o.sim.enqueue(o.self, to, msg)
}

// quorumSource 共享仲裁集
type quorumSource struct{ sim *Simulation }

func (q quorumSource) TransitiveQuorum() types.NodeSet {
	q.sim.mu.Lock()
	defer q.sim.mu.Unlock()
	return q.sim.quorum.Clone()
}

// ledgerSource 共享账本进度
type ledgerSource struct{ sim *Simulation }

func (l ledgerSource) LastClosedLedger() uint32 {
	return l.sim.Ledger()
}

func (l ledgerSource) ExpectedCloseTime() time.Duration {
	return l.sim.closeTime
}

// 编译时检查接口实现
var (
	_ interfaces.Overlay      = (*loopOverlay)(nil)
	_ interfaces.QuorumSource = quorumSource{}
	_ interfaces.LedgerSource = ledgerSource{}
)
