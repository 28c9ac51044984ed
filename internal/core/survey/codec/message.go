package codec

import (
	"crypto/ed25519"

	"golang.org/x/crypto/blake2b"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// SurveyMessage 字段编号
const (
	fieldMsgType      protowire.Number = 1
	fieldMsgCommand   protowire.Number = 2
	fieldMsgSurveyor  protowire.Number = 3
	fieldMsgSurveyed  protowire.Number = 4
	fieldMsgLedgerSeq protowire.Number = 5
	fieldMsgBody      protowire.Number = 6
	fieldMsgSignature protowire.Number = 7
)

// requiredFields 必需字段位图：类型、命令、双方 ID 与账本序号
const requiredFields uint32 = 1<<fieldMsgType | 1<<fieldMsgCommand | 1<<fieldMsgSurveyor |
	1<<fieldMsgSurveyed | 1<<fieldMsgLedgerSeq

// EncodeMessage 编码调查消息信封
func EncodeMessage(msg types.SurveyMessage) ([]byte, error) {
	b, err := appendUnsigned(nil, msg)
	if err != nil {
		return nil, err
	}
	if len(msg.Signature) > 0 {
		if len(msg.Signature) != ed25519.SignatureSize {
			return nil, malformed("signature length %d", len(msg.Signature))
		}
		b = protowire.AppendTag(b, fieldMsgSignature, protowire.BytesType)
		b = protowire.AppendBytes(b, msg.Signature)
	}
	return b, nil
}

// SigningPayload 返回签名覆盖的规范字节（不含签名字段）
func SigningPayload(msg types.SurveyMessage) ([]byte, error) {
	return appendUnsigned(nil, msg)
}

// SigningDigest 返回 BLAKE2b-256(networkID ‖ SigningPayload)
func SigningDigest(networkID [32]byte, msg types.SurveyMessage) ([]byte, error) {
	payload, err := SigningPayload(msg)
	if err != nil {
		return nil, err
	}
	h, _ := blake2b.New256(nil)
	h.Write(networkID[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

func appendUnsigned(b []byte, msg types.SurveyMessage) ([]byte, error) {
	if err := checkEnvelope(msg); err != nil {
		return nil, err
	}

	b = protowire.AppendTag(b, fieldMsgType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.Type))
	b = protowire.AppendTag(b, fieldMsgCommand, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.Command))
	b = protowire.AppendTag(b, fieldMsgSurveyor, protowire.BytesType)
	b = protowire.AppendBytes(b, msg.SurveyorID[:])
	b = protowire.AppendTag(b, fieldMsgSurveyed, protowire.BytesType)
	b = protowire.AppendBytes(b, msg.SurveyedID[:])
	b = protowire.AppendTag(b, fieldMsgLedgerSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.LedgerSeq))

	if msg.IsResponse() {
		b = protowire.AppendTag(b, fieldMsgBody, protowire.BytesType)
		b = protowire.AppendBytes(b, msg.EncryptedBody)
	}
	return b, nil
}

func checkEnvelope(msg types.SurveyMessage) error {
	switch msg.Type {
	case types.MessageRequest:
		if len(msg.EncryptedBody) > 0 {
			return malformed("request carries a body")
		}
	case types.MessageResponse:
		if len(msg.EncryptedBody) > types.MaxEncryptedBodyLen {
			return malformed("body length %d > %d", len(msg.EncryptedBody), types.MaxEncryptedBodyLen)
		}
	default:
		return malformed("message type %d", msg.Type)
	}
	if msg.Command != types.CommandTopology {
		return malformed("command %d", msg.Command)
	}
	return nil
}

// DecodeMessage 解码调查消息信封
func DecodeMessage(b []byte) (types.SurveyMessage, error) {
	var msg types.SurveyMessage
	d := newDecoder(b)
	var seen uint32

	for d.more() {
		num, err := d.field(messageField)
		if err != nil {
			return types.SurveyMessage{}, err
		}
		seen |= 1 << num
		switch num {
		case fieldMsgType:
			v, err := d.uint32()
			if err != nil {
				return types.SurveyMessage{}, err
			}
			msg.Type = types.MessageType(v)
		case fieldMsgCommand:
			v, err := d.uint32()
			if err != nil {
				return types.SurveyMessage{}, err
			}
			msg.Command = types.CommandType(v)
		case fieldMsgSurveyor:
			if msg.SurveyorID, err = d.nodeID(); err != nil {
				return types.SurveyMessage{}, err
			}
		case fieldMsgSurveyed:
			if msg.SurveyedID, err = d.nodeID(); err != nil {
				return types.SurveyMessage{}, err
			}
		case fieldMsgLedgerSeq:
			if msg.LedgerSeq, err = d.uint32(); err != nil {
				return types.SurveyMessage{}, err
			}
		case fieldMsgBody:
			v, err := d.bytes(types.MaxEncryptedBodyLen)
			if err != nil {
				return types.SurveyMessage{}, err
			}
			msg.EncryptedBody = append([]byte(nil), v...)
		case fieldMsgSignature:
			v, err := d.bytes(ed25519.SignatureSize)
			if err != nil {
				return types.SurveyMessage{}, err
			}
			msg.Signature = append([]byte(nil), v...)
		}
	}

	if seen&requiredFields != requiredFields {
		return types.SurveyMessage{}, malformed("missing envelope fields")
	}
	if err := checkEnvelope(msg); err != nil {
		return types.SurveyMessage{}, err
	}
	return msg, nil
}

func messageField(num protowire.Number) (protowire.Type, bool, bool) {
	switch num {
	case fieldMsgType, fieldMsgCommand, fieldMsgLedgerSeq:
		return protowire.VarintType, false, true
	case fieldMsgSurveyor, fieldMsgSurveyed, fieldMsgBody, fieldMsgSignature:
		return protowire.BytesType, false, true
	default:
		return 0, false, false
	}
}
