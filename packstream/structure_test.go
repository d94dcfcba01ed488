package packstream

import (
	"bytes"
	"testing"
)

func TestStructureIdentityRoundTrip(t *testing.T) {
	s := NewStructure(0x4E, "a", I64(1), true, nil)
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(s); err != nil {
		t.Fatal(err)
	}
	got, err := NewUnpacker(&buf).Unpack()
	if err != nil {
		t.Fatal(err)
	}
	out, ok := got.(Structure)
	if !ok {
		t.Fatalf("got %T, want Structure", got)
	}
	if out.Signature != s.Signature {
		t.Fatalf("signature mismatch: got 0x%02X, want 0x%02X", out.Signature, s.Signature)
	}
	if len(out.Fields) != len(s.Fields) {
		t.Fatalf("field count mismatch: got %d, want %d", len(out.Fields), len(s.Fields))
	}
}

func TestStructureEmptyFields(t *testing.T) {
	s := NewStructure(0x01)
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(s); err != nil {
		t.Fatal(err)
	}
	want := []byte{TINY_STRUCT_MARKER_BASE, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % X, want % X", buf.Bytes(), want)
	}
}
