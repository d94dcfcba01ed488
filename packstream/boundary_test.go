package packstream

import (
	"bytes"
	"testing"
)

// packBytesFor packs v with default options and returns the raw wire
// bytes, failing the test on error.
func packBytesFor(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(v); err != nil {
		t.Fatalf("Pack(%v) error: %v", v, err)
	}
	return buf.Bytes()
}

func assertWire(t *testing.T, v interface{}, want ...byte) {
	t.Helper()
	got := packBytesFor(t, v)
	if !bytes.Equal(got, want) {
		t.Fatalf("Pack(%v) = % X, want % X", v, got, want)
	}
}

func TestBoundaryNull(t *testing.T) {
	assertWire(t, nil, 0xC0)
}

func TestBoundaryTinyAndSizedIntegers(t *testing.T) {
	assertWire(t, I64(127), 0x7F)
	assertWire(t, I64(128), 0xC9, 0x00, 0x80)
	assertWire(t, I64(-16), 0xF0)
	assertWire(t, I64(-17), 0xC8, 0xEF)
}

func TestBoundaryMinInt64(t *testing.T) {
	assertWire(t, I64(-9223372036854775808),
		0xCB, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
}

func TestBoundaryStrings(t *testing.T) {
	assertWire(t, "", 0x80)
	assertWire(t, "A", 0x81, 0x41)

	want := append([]byte{STRING_8_MARKER, 0x10}, []byte("abcdefghijklmnop")...)
	assertWire(t, "abcdefghijklmnop", want...)
}

func TestBoundaryMapUndefinedElision(t *testing.T) {
	m := NewOrderedMap()
	m.Set("k1", I64(1))
	m.Set("k2", Undefined)
	m.Set("k3", nil)

	want := []byte{0xA2, 0x82, 0x6B, 0x31, 0x01, 0x82, 0x6B, 0x33, 0xC0}
	assertWire(t, m, want...)
}

func TestBoundaryStructure(t *testing.T) {
	s := NewStructure(0x4E, "a", I64(1))
	want := []byte{0xB2, 0x4E, 0x81, 0x61, 0x01}
	assertWire(t, s, want...)
}

func TestBoundaryListUndefinedSubstitutedWithNull(t *testing.T) {
	list := []interface{}{I64(1), Undefined, I64(3)}
	got := packBytesFor(t, list)
	// tiny list of 3, then 1, then Null (not elided), then 3
	want := []byte{TINY_LIST_MARKER_BASE | 0x03, 0x01, NULL, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("Pack(list with undefined) = % X, want % X", got, want)
	}
}

func TestBoundaryByteArrayGate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPacker(&buf, WithByteArraysSupported(false))
	err := p.Pack([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error packing bytes with byte arrays disabled")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written on gated byte-array pack, got % X", buf.Bytes())
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Fatalf("expected *ProtocolError, got %T", err)
	}
}
