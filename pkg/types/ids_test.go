package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func testNodeID(seed byte) NodeID {
	var id NodeID
	for i := range id {
		id[i] = seed + byte(i)
	}
	return id
}

func TestNodeID(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		id := testNodeID(1)
		if id.String() != base58.Encode(id[:]) {
			t.Errorf("NodeID.String() = %q, want Base58", id.String())
		}
	})

	t.Run("ShortString", func(t *testing.T) {
		id := testNodeID(1)
		short := id.ShortString()
		if len(short) != 8 || short != id.String()[:8] {
			t.Errorf("NodeID.ShortString() = %q, want 8-char prefix", short)
		}
	})

	t.Run("空 ID", func(t *testing.T) {
		if !EmptyNodeID.IsEmpty() {
			t.Error("EmptyNodeID.IsEmpty() = false, want true")
		}
		if EmptyNodeID.String() != "" {
			t.Errorf("EmptyNodeID.String() = %q, want empty", EmptyNodeID.String())
		}
		if testNodeID(1).IsEmpty() {
			t.Error("non-zero NodeID reported empty")
		}
	})

	t.Run("PublicKey", func(t *testing.T) {
		id := testNodeID(3)
		if string(id.PublicKey()) != string(id.Bytes()) {
			t.Error("PublicKey() should be the raw id bytes")
		}
	})
}

func TestParseNodeID(t *testing.T) {
	valid := testNodeID(9)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", valid.String(), false},
		{"empty", "", true},
		{"not base58", "0OIl", true},
		{"short", base58.Encode(valid[:31]), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNodeID) {
					t.Errorf("error = %v, want ErrInvalidNodeID", err)
				}
				return
			}
			if id != valid {
				t.Errorf("ParseNodeID() = %v, want %v", id, valid)
			}
		})
	}
}

func TestNodeID_JSONKey(t *testing.T) {
	id := testNodeID(5)
	data, err := json.Marshal(map[NodeID]int{id: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[NodeID]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[id] != 1 {
		t.Errorf("decoded = %v, want key %s", decoded, id)
	}
}

func TestNodeSet(t *testing.T) {
	a, b, c := testNodeID(30), testNodeID(10), testNodeID(20)
	s := NewNodeSet(a, b)

	if !s.Contains(a) || s.Contains(c) {
		t.Error("Contains() mismatch")
	}

	clone := s.Clone()
	clone.Add(c)
	if s.Contains(c) {
		t.Error("Clone() shares storage with original")
	}
	if clone.Len() != 3 {
		t.Errorf("clone.Len() = %d, want 3", clone.Len())
	}

	ids := clone.Slice()
	want := []NodeID{b, c, a}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Slice()[%d] = %s, want %s", i, ids[i].ShortString(), want[i].ShortString())
		}
	}

	var empty NodeSet
	if empty.Contains(a) || empty.Len() != 0 {
		t.Error("nil NodeSet should read as empty")
	}
}

func TestParseNodeSet(t *testing.T) {
	a, b := testNodeID(1), testNodeID(2)

	s, err := ParseNodeSet([]string{a.String(), b.String(), a.String()})
	if err != nil {
		t.Fatalf("ParseNodeSet() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	if _, err := ParseNodeSet([]string{a.String(), "bad"}); err == nil {
		t.Error("expected error for invalid key")
	}
}
