// Package transport implements the chunked ByteChannel a PackStream
// Packer/Unpacker pair speaks over a net.Conn: length-prefixed framing,
// pooled TCP/TLS connections, and connection-state tracking. It is
// adapted from the host driver's pooled connection and messaging
// layers.
package transport

import (
	"net"
	"sync"
	"time"
)

// trackedConn wraps a net.Conn with connection state tracking for
// efficient pool management. It tracks handshake status to avoid
// redundant negotiation and provides liveness checking to detect dead
// connections.
type trackedConn struct {
	net.Conn
	mu              sync.RWMutex
	handshakeDone   bool
	protocolVersion [2]byte // [major, minor]
	createdAt       time.Time
	lastUsedAt      time.Time
}

// newTrackedConn wraps a raw connection with state tracking.
func newTrackedConn(conn net.Conn) *trackedConn {
	return &trackedConn{Conn: conn, createdAt: time.Now()}
}

// isAlive checks if the connection is still responsive by attempting a
// non-blocking read with a very short deadline. A timeout indicates the
// connection is alive (no data pending); EOF or another error
// indicates a dead connection.
func (tc *trackedConn) isAlive() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if err := tc.SetReadDeadline(time.Now().Add(1 * time.Millisecond)); err != nil {
		return false
	}
	defer func() { _ = tc.SetReadDeadline(time.Time{}) }()

	one := make([]byte, 1)
	_, err := tc.Read(one)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return true
		}
		return false
	}
	return true
}

// markHandshakeComplete records a successful protocol version
// negotiation.
func (tc *trackedConn) markHandshakeComplete(major, minor byte) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.handshakeDone = true
	tc.protocolVersion = [2]byte{major, minor}
	tc.lastUsedAt = time.Now()
}

// touch updates the last-used timestamp.
func (tc *trackedConn) touch() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.lastUsedAt = time.Now()
}

// needsHandshake reports whether the connection must (re-)negotiate
// before use: never handshaked, or idle longer than maxIdleTime.
func (tc *trackedConn) needsHandshake(maxIdleTime time.Duration) bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if !tc.handshakeDone {
		return true
	}
	if maxIdleTime > 0 && time.Since(tc.lastUsedAt) > maxIdleTime {
		return true
	}
	return false
}

func (tc *trackedConn) isHandshakeDone() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.handshakeDone
}

func (tc *trackedConn) version() (byte, byte) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.protocolVersion[0], tc.protocolVersion[1]
}

func (tc *trackedConn) age() time.Duration {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return time.Since(tc.createdAt)
}

func (tc *trackedConn) idleTime() time.Duration {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if tc.lastUsedAt.IsZero() {
		return time.Since(tc.createdAt)
	}
	return time.Since(tc.lastUsedAt)
}

// markDirty marks the connection as needing a fresh handshake after a
// failure, so it won't be reused in a failed state.
func (tc *trackedConn) markDirty() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.handshakeDone = false
}
