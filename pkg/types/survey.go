package types

import "fmt"

// ============================================================================
//                              容量常量
// ============================================================================

const (
	// MaxPeerListLen 每个方向上报的最大连接数
	MaxPeerListLen = 25

	// MaxVersionStrLen 版本字符串最大长度
	MaxVersionStrLen = 100

	// MaxEncryptedBodyLen 加密应答体的固定容量
	MaxEncryptedBodyLen = 64000
)

// ============================================================================
//                              消息类型
// ============================================================================

// MessageType 调查消息类型（标签联合的标签）
type MessageType uint8

const (
	// MessageRequest 调查请求
	MessageRequest MessageType = 1
	// MessageResponse 调查应答
	MessageResponse MessageType = 2
)

// String 返回消息类型名称
func (t MessageType) String() string {
	switch t {
	case MessageRequest:
		return "request"
	case MessageResponse:
		return "response"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// CommandType 调查命令类型
type CommandType uint8

const (
	// CommandTopology 拓扑调查
	CommandTopology CommandType = 0
)

// String 返回命令名称
func (c CommandType) String() string {
	if c == CommandTopology {
		return "topology"
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// ============================================================================
//                              SurveyMessage
// ============================================================================

// SurveyMessage 调查消息
//
// 构造后不可修改，按值在各跳之间传递。
// EncryptedBody 仅应答消息携带。
// Signature 由发起方签名：请求由调查者签名，应答由被调查者签名。
type SurveyMessage struct {
	Type          MessageType
	Command       CommandType
	SurveyorID    NodeID
	SurveyedID    NodeID
	LedgerSeq     uint32
	EncryptedBody []byte
	Signature     []byte
}

// IsRequest 是否为请求
func (m SurveyMessage) IsRequest() bool {
	return m.Type == MessageRequest
}

// IsResponse 是否为应答
func (m SurveyMessage) IsResponse() bool {
	return m.Type == MessageResponse
}

// Signer 返回应当签名此消息的节点
func (m SurveyMessage) Signer() NodeID {
	if m.Type == MessageResponse {
		return m.SurveyedID
	}
	return m.SurveyorID
}

// Key 返回去重键
func (m SurveyMessage) Key() DedupKey {
	return DedupKey{
		Type:       m.Type,
		SurveyorID: m.SurveyorID,
		SurveyedID: m.SurveyedID,
		LedgerSeq:  m.LedgerSeq,
	}
}

// DedupKey 去重键
//
// 消息类型也属于键的一部分，避免应答被当作其请求的重复。
type DedupKey struct {
	Type       MessageType
	SurveyorID NodeID
	SurveyedID NodeID
	LedgerSeq  uint32
}

// String 返回可读形式（日志用）
func (k DedupKey) String() string {
	return fmt.Sprintf("%s/%s->%s@%d", k.Type, k.SurveyorID.ShortString(), k.SurveyedID.ShortString(), k.LedgerSeq)
}

// ============================================================================
//                              PeerStat
// ============================================================================

// PeerStat 单条连接的观测统计
type PeerStat struct {
	ID                        NodeID `json:"nodeId"`
	VersionStr                string `json:"version"`
	MessagesRead              uint64 `json:"messagesRead"`
	MessagesWritten           uint64 `json:"messagesWritten"`
	BytesRead                 uint64 `json:"bytesRead"`
	BytesWritten              uint64 `json:"bytesWritten"`
	SecondsConnected          uint64 `json:"secondsConnected"`
	UniqueFloodBytesRecv      uint64 `json:"uniqueFloodBytesRecv"`
	DuplicateFloodBytesRecv   uint64 `json:"duplicateFloodBytesRecv"`
	UniqueFetchBytesRecv      uint64 `json:"uniqueFetchBytesRecv"`
	DuplicateFetchBytesRecv   uint64 `json:"duplicateFetchBytesRecv"`
	UniqueFloodMessageRecv    uint64 `json:"uniqueFloodMessageRecv"`
	DuplicateFloodMessageRecv uint64 `json:"duplicateFloodMessageRecv"`
	UniqueFetchMessageRecv    uint64 `json:"uniqueFetchMessageRecv"`
	DuplicateFetchMessageRecv uint64 `json:"duplicateFetchMessageRecv"`
}

// Validate 检查版本字符串长度
func (s PeerStat) Validate() error {
	if len(s.VersionStr) > MaxVersionStrLen {
		return fmt.Errorf("%w: version string %d > %d", ErrPayloadTooLarge, len(s.VersionStr), MaxVersionStrLen)
	}
	return nil
}

// ============================================================================
//                              TopologyBody
// ============================================================================

// TopologyBody 拓扑应答体
//
// 每次应答时新建，不持久化。两个列表各自受 MaxPeerListLen 约束，
// Total*PeerCount 记录截断前的真实连接数。
type TopologyBody struct {
	InboundPeers           []PeerStat `json:"inboundPeers"`
	OutboundPeers          []PeerStat `json:"outboundPeers"`
	TotalInboundPeerCount  uint32     `json:"numTotalInboundPeers"`
	TotalOutboundPeerCount uint32     `json:"numTotalOutboundPeers"`
}

// NewTopologyBody 构造拓扑应答体
//
// 超出上限的值直接返回 ErrPayloadTooLarge，绝不静默截断。
func NewTopologyBody(inbound, outbound []PeerStat) (TopologyBody, error) {
	body := TopologyBody{
		InboundPeers:           inbound,
		OutboundPeers:          outbound,
		TotalInboundPeerCount:  uint32(len(inbound)),
		TotalOutboundPeerCount: uint32(len(outbound)),
	}
	if err := body.Validate(); err != nil {
		return TopologyBody{}, err
	}
	return body, nil
}

// Validate 检查列表与字符串上限
func (b TopologyBody) Validate() error {
	if len(b.InboundPeers) > MaxPeerListLen {
		return fmt.Errorf("%w: %d inbound peers > %d", ErrPayloadTooLarge, len(b.InboundPeers), MaxPeerListLen)
	}
	if len(b.OutboundPeers) > MaxPeerListLen {
		return fmt.Errorf("%w: %d outbound peers > %d", ErrPayloadTooLarge, len(b.OutboundPeers), MaxPeerListLen)
	}
	for _, s := range b.InboundPeers {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, s := range b.OutboundPeers {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone 返回深拷贝
func (b TopologyBody) Clone() TopologyBody {
	c := b
	if b.InboundPeers != nil {
		c.InboundPeers = append([]PeerStat(nil), b.InboundPeers...)
	}
	if b.OutboundPeers != nil {
		c.OutboundPeers = append([]PeerStat(nil), b.OutboundPeers...)
	}
	return c
}
