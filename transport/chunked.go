package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/seuros/gopher-packstream/packstream"
)

// DefaultReadTimeout bounds how long ReadMessage waits for a complete
// chunked message before giving up.
const DefaultReadTimeout = 30 * time.Second

// maxChunkSize is the largest payload a single chunk header (a uint16
// byte count) can carry.
const maxChunkSize = 0xFFFF

// Channel is a ByteChannel: it carries whole PackStream-encoded values
// over a net.Conn using the wire's chunked framing (each chunk
// length-prefixed by a big-endian uint16, a message terminated by a
// zero-length chunk). Every WriteMessage/ReadMessage call is one
// complete value; Channel never exposes the caller to partial frames.
type Channel struct {
	conn  net.Conn
	hooks *packstream.Hooks
}

// NewChannel wraps conn in a Channel. hooks may be nil to use
// packstream.DefaultHooks().
func NewChannel(conn net.Conn, hooks *packstream.Hooks) *Channel {
	if hooks == nil {
		hooks = packstream.DefaultHooks()
	}
	return &Channel{conn: conn, hooks: hooks}
}

// WriteMessage encodes v with a Packer and writes it to the connection
// as one or more length-prefixed chunks terminated by a zero-length
// chunk. Large payloads are split across multiple maxChunkSize chunks;
// PackStream itself places no such limit on a single value, so a big
// string or byte array simply spans more chunks.
func (c *Channel) WriteMessage(v interface{}, opts ...packstream.PackerOption) error {
	var buf bytes.Buffer
	allOpts := append([]packstream.PackerOption{packstream.WithPackerHooks(c.hooks)}, opts...)
	if err := packstream.NewPacker(&buf, allOpts...).Pack(v); err != nil {
		return err
	}
	return c.writeChunked(buf.Bytes())
}

func (c *Channel) writeChunked(payload []byte) error {
	for len(payload) > 0 {
		n := len(payload)
		if n > maxChunkSize {
			n = maxChunkSize
		}
		header := make([]byte, 2)
		binary.BigEndian.PutUint16(header, uint16(n))
		if _, err := c.conn.Write(header); err != nil {
			return err
		}
		if _, err := c.conn.Write(payload[:n]); err != nil {
			return err
		}
		payload = payload[n:]
	}
	_, err := c.conn.Write([]byte{0x00, 0x00})
	return err
}

// ReadMessage reads one complete chunked message and decodes it with
// an Unpacker.
func (c *Channel) ReadMessage(opts ...packstream.UnpackerOption) (interface{}, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(DefaultReadTimeout)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()

	var messageData bytes.Buffer
	for {
		sizeBytes := make([]byte, 2)
		if _, err := io.ReadFull(c.conn, sizeBytes); err != nil {
			if err == io.EOF {
				return nil, errors.New("connection closed while reading chunk header")
			}
			return nil, fmt.Errorf("error reading chunk header: %w", err)
		}

		chunkSize := binary.BigEndian.Uint16(sizeBytes)
		if chunkSize == 0 {
			break
		}

		chunk := make([]byte, chunkSize)
		if _, err := io.ReadFull(c.conn, chunk); err != nil {
			return nil, fmt.Errorf("error reading chunk data: %w", err)
		}
		messageData.Write(chunk)
	}

	allOpts := append([]packstream.UnpackerOption{packstream.WithUnpackerHooks(c.hooks)}, opts...)
	return packstream.NewUnpacker(&messageData, allOpts...).Unpack()
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	return c.conn.Close()
}
