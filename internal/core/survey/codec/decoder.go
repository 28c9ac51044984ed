package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// decoder 顺序读取 TLV 字段
//
// 字段编号必须严格递增，repeated 字段允许连续重复同一编号。
type decoder struct {
	buf  []byte
	last protowire.Number
}

func newDecoder(b []byte) *decoder {
	return &decoder{buf: b}
}

func (d *decoder) more() bool {
	return len(d.buf) > 0
}

// field 读取下一个标签并检查线类型和顺序
func (d *decoder) field(want func(protowire.Number) (protowire.Type, bool, bool)) (protowire.Number, error) {
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		return 0, malformed("tag: %v", protowire.ParseError(n))
	}
	wantType, repeated, known := want(num)
	if !known {
		return 0, malformed("unknown field %d", num)
	}
	if typ != wantType {
		return 0, malformed("field %d: wire type %d", num, typ)
	}
	if num < d.last || (num == d.last && !repeated) {
		return 0, malformed("field %d out of order", num)
	}
	d.last = num
	d.buf = d.buf[n:]
	return num, nil
}

func (d *decoder) varint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		return 0, malformed("varint: %v", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *decoder) uint32() (uint32, error) {
	v, err := d.varint()
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, malformed("value %d overflows uint32", v)
	}
	return uint32(v), nil
}

// bytes 读取长度前缀字段，max 为允许的最大长度
func (d *decoder) bytes(max int) ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		return nil, malformed("bytes: %v", protowire.ParseError(n))
	}
	if len(v) > max {
		return nil, malformed("length %d > %d", len(v), max)
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *decoder) nodeID() (types.NodeID, error) {
	b, err := d.bytes(types.NodeIDLen)
	if err != nil {
		return types.NodeID{}, err
	}
	id, err := types.NodeIDFromBytes(b)
	if err != nil {
		return types.NodeID{}, malformed("%v", err)
	}
	return id, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{types.ErrMalformedPayload}, args...)...)
}
