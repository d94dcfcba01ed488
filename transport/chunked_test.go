package transport

import (
	"net"
	"testing"

	"github.com/seuros/gopher-packstream/packstream"
)

func TestChannelWriteReadRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientChannel := NewChannel(client, nil)
	serverChannel := NewChannel(server, nil)

	done := make(chan error, 1)
	go func() {
		done <- clientChannel.WriteMessage(packstream.NewStructure(0x4E, "a", packstream.I64(1)))
	}()

	got, err := serverChannel.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if werr := <-done; werr != nil {
		t.Fatalf("WriteMessage: %v", werr)
	}

	s, ok := got.(packstream.Structure)
	if !ok {
		t.Fatalf("got %T, want packstream.Structure", got)
	}
	if s.Signature != 0x4E {
		t.Fatalf("signature = 0x%02X, want 0x4E", s.Signature)
	}
}

func TestChannelSplitsLargePayloadAcrossChunks(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientChannel := NewChannel(client, nil)
	serverChannel := NewChannel(server, nil)

	big := make([]byte, maxChunkSize*2+10)
	for i := range big {
		big[i] = byte(i)
	}

	done := make(chan error, 1)
	go func() {
		done <- clientChannel.WriteMessage(big)
	}()

	got, err := serverChannel.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if werr := <-done; werr != nil {
		t.Fatalf("WriteMessage: %v", werr)
	}

	out, ok := got.([]byte)
	if !ok {
		t.Fatalf("got %T, want []byte", got)
	}
	if len(out) != len(big) {
		t.Fatalf("got %d bytes, want %d", len(out), len(big))
	}
}
