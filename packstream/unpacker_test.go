package packstream

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"testing"
)

func TestUnpackRoundTripIntegers(t *testing.T) {
	values := []int64{0, -1, -16, -17, 127, 128, -128, -129, 32767, 32768,
		2147483647, 2147483648, -9223372036854775808, 9223372036854775807}
	for _, v := range values {
		var buf bytes.Buffer
		if err := NewPacker(&buf).Pack(I64(v)); err != nil {
			t.Fatalf("Pack(%d): %v", v, err)
		}
		got, err := NewUnpacker(&buf).Unpack()
		if err != nil {
			t.Fatalf("Unpack(%d): %v", v, err)
		}
		i64, ok := got.(I64)
		if !ok {
			t.Fatalf("Unpack(%d) returned %T, want I64", v, got)
		}
		if i64.Int64() != v {
			t.Fatalf("round trip %d -> %d", v, i64.Int64())
		}
	}
}

func TestUnpackDisableLosslessIntegers(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(I64(42)); err != nil {
		t.Fatal(err)
	}
	got, err := NewUnpacker(&buf, WithDisableLosslessIntegers(true)).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	f, ok := got.(float64)
	if !ok {
		t.Fatalf("got %T, want float64", got)
	}
	if f != 42 {
		t.Fatalf("got %v, want 42", f)
	}
}

func TestUnpackDisableLosslessIntegersSaturates(t *testing.T) {
	cases := []struct {
		v    int64
		want float64
	}{
		{1 << 53, math.Inf(1)},
		{-(1 << 53), math.Inf(-1)},
		{1<<53 - 1, float64(1<<53 - 1)},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := NewPacker(&buf).Pack(I64(c.v)); err != nil {
			t.Fatalf("Pack(%d): %v", c.v, err)
		}
		got, err := NewUnpacker(&buf, WithDisableLosslessIntegers(true)).Unpack()
		if err != nil {
			t.Fatalf("Unpack(%d): %v", c.v, err)
		}
		f, ok := got.(float64)
		if !ok {
			t.Fatalf("Unpack(%d) returned %T, want float64", c.v, got)
		}
		if f != c.want {
			t.Fatalf("Unpack(%d) = %v, want %v", c.v, f, c.want)
		}
	}
}

func TestUnpackUseBigInteger(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(I64(42)); err != nil {
		t.Fatal(err)
	}
	got, err := NewUnpacker(&buf, WithUseBigInteger(true)).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	bi, ok := got.(*big.Int)
	if !ok {
		t.Fatalf("got %T, want *big.Int", got)
	}
	if bi.Int64() != 42 {
		t.Fatalf("got %v, want 42", bi)
	}
}

func TestUnpackString16Size(t *testing.T) {
	s := make([]byte, 300)
	for i := range s {
		s[i] = 'x'
	}
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(string(s)); err != nil {
		t.Fatal(err)
	}
	wire := buf.Bytes()
	if wire[0] != STRING_16_MARKER {
		t.Fatalf("expected STRING_16_MARKER for 300-byte string, got 0x%02X", wire[0])
	}
	got, err := NewUnpacker(bytes.NewReader(wire)).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	if got.(string) != string(s) {
		t.Fatalf("round trip mismatch for 300-byte string")
	}
}

func TestUnpackMap16SizeNotTruncated(t *testing.T) {
	m := NewOrderedMap()
	for i := 0; i < 300; i++ {
		m.Set(keyName(i), I64(int64(i)))
	}
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(m); err != nil {
		t.Fatal(err)
	}
	wire := buf.Bytes()
	if wire[0] != MAP_16_MARKER {
		t.Fatalf("expected MAP_16_MARKER for 300-entry map, got 0x%02X", wire[0])
	}
	got, err := NewUnpacker(bytes.NewReader(wire)).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	om, ok := got.(*OrderedMap)
	if !ok {
		t.Fatalf("got %T, want *OrderedMap", got)
	}
	if om.Len() != 300 {
		t.Fatalf("expected 300 entries (not truncated by a STRING_16/MAP_16 masking bug), got %d", om.Len())
	}
}

func keyName(i int) string {
	return fmt.Sprintf("k%d", i)
}

func TestUnpackListRoundTrip(t *testing.T) {
	list := []interface{}{I64(1), "two", 3.0, true, nil}
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(list); err != nil {
		t.Fatal(err)
	}
	got, err := NewUnpacker(&buf).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	out, ok := got.([]interface{})
	if !ok {
		t.Fatalf("got %T, want []interface{}", got)
	}
	if len(out) != len(list) {
		t.Fatalf("got %d elements, want %d", len(out), len(list))
	}
}

func TestUnpackStructureHydrateHook(t *testing.T) {
	type point struct{ x, y int64 }
	hooks := &Hooks{
		Dehydrate: func(v interface{}) (interface{}, error) { return v, nil },
		Hydrate: func(s Structure) (interface{}, error) {
			if s.Signature == 0x58 && len(s.Fields) == 2 {
				x := s.Fields[0].(I64).Int64()
				y := s.Fields[1].(I64).Int64()
				return point{x, y}, nil
			}
			return s, nil
		},
	}
	s := NewStructure(0x58, I64(1), I64(2))
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(s); err != nil {
		t.Fatal(err)
	}
	got, err := NewUnpacker(&buf, WithUnpackerHooks(hooks)).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	p, ok := got.(point)
	if !ok {
		t.Fatalf("got %T, want point", got)
	}
	if p.x != 1 || p.y != 2 {
		t.Fatalf("got %+v, want {1 2}", p)
	}
}

func TestUnpackUnknownMarker(t *testing.T) {
	_, err := NewUnpacker(bytes.NewReader([]byte{0xC7})).Unpack()
	if err == nil {
		t.Fatal("expected error for unknown marker 0xC7")
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Fatalf("expected *ProtocolError, got %T", err)
	}
}

func TestUnpackUnexpectedEOF(t *testing.T) {
	_, err := NewUnpacker(bytes.NewReader([]byte{INT_16, 0x00})).Unpack()
	if err == nil {
		t.Fatal("expected error for truncated INT_16 payload")
	}
}

func TestUnpackNonStringMapKeyCoercedAndDecodingContinues(t *testing.T) {
	// Hand-crafted tiny map of two entries whose first key is an
	// integer instead of a string. The malformed key is coerced to its
	// printed form and the well-formed entry after it still decodes.
	wire := []byte{
		TINY_MAP_MARKER_BASE | 0x02,
		0x07, 0x01,
		TINY_STRING_MARKER_BASE | 0x01, 'k', 0x02,
	}
	got, err := NewUnpacker(bytes.NewReader(wire)).Unpack()
	if err != nil {
		t.Fatalf("expected decoding to continue past a non-string key, got %v", err)
	}
	om := got.(*OrderedMap)
	if om.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", om.Len())
	}
	if v, okKey := om.Get("7"); !okKey || v.(I64).Int64() != 1 {
		t.Fatalf("expected coerced key %q -> 1, got %v (present=%v)", "7", v, okKey)
	}
	if v, okKey := om.Get("k"); !okKey || v.(I64).Int64() != 2 {
		t.Fatalf("expected key %q -> 2, got %v (present=%v)", "k", v, okKey)
	}
}

func TestUnpackDuplicateMapKeyLastWriteWins(t *testing.T) {
	// {"k": 1, "k": 2} hand-encoded: tiny map of 2 entries, same key twice.
	wire := []byte{
		TINY_MAP_MARKER_BASE | 0x02,
		TINY_STRING_MARKER_BASE | 0x01, 'k', 0x01,
		TINY_STRING_MARKER_BASE | 0x01, 'k', 0x02,
	}
	got, err := NewUnpacker(bytes.NewReader(wire)).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	om := got.(*OrderedMap)
	if om.Len() != 1 {
		t.Fatalf("expected duplicate key collapsed to 1 entry, got %d", om.Len())
	}
	v, _ := om.Get("k")
	if v.(I64).Int64() != 2 {
		t.Fatalf("expected last write to win (2), got %v", v)
	}
}
