package transport

import (
	"errors"
	"net"
	"time"

	"github.com/seuros/gopher-packstream/addressresolver"
	"github.com/seuros/gopher-packstream/config"
	"github.com/seuros/gopher-packstream/logging"
	"github.com/seuros/gopher-packstream/packstream"
	"github.com/seuros/gopher-packstream/telemetry"
	"github.com/yudhasubki/netpool"
)

// maxAcquireRetries bounds how many times Acquire retries after
// discarding a dead pooled connection; it discards at most
// maxAcquireRetries+1 before giving up.
const maxAcquireRetries = 3

var errConnDead = errors.New("pooled connection failed liveness check")

// Pool manages a set of pooled connections to a single address,
// handing out ready-to-use Channels and returning them (or discarding
// them on error) when the caller is done.
type Pool struct {
	netPool *netpool.Netpool
	cfg     *config.Config
	logger  logging.Logger
	instr   *telemetry.Instruments
	hooks   *packstream.Hooks
}

// NewPool builds a connection pool that dials address, establishing
// TLS per cfg.TLS when useTLS is set.
func NewPool(address, serverName string, useTLS, insecureSkipVerify bool, cfg *config.Config, hooks *packstream.Hooks) (*Pool, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logger := logging.Logger(&logging.NoOpLogger{})
	if cfg.Logging != nil && cfg.Logging.Logger != nil {
		logger = cfg.Logging.Logger
	}

	var instr *telemetry.Instruments
	if cfg.Observability != nil && (cfg.Observability.EnableTracing || cfg.Observability.EnableMetrics) {
		instr = telemetry.New()
	}

	dialFn := func() (net.Conn, error) {
		var tlsCfg *config.TLSConfig
		if useTLS {
			tlsCfg = cfg.TLS
		}
		logger.Debug("opening connection", "address", address, "tls", useTLS)
		conn, err := DialFunc(address, serverName, tlsCfg, insecureSkipVerify)
		if instr != nil {
			instr.RecordConnectionEvent("connect", cfg.Observability, err)
		}
		if err != nil {
			logger.Error("connection failed", "address", address, "error", err)
			return nil, err
		}
		return newTrackedConn(conn), nil
	}

	np, err := netpool.New(dialFn)
	if err != nil {
		return nil, err
	}

	return &Pool{netPool: np, cfg: cfg, logger: logger, instr: instr, hooks: hooks}, nil
}

// NewPoolFromURL resolves rawURL with resolver and builds a Pool dialing
// the resulting address, using the TLS policy (useTLS, insecureSkipVerify)
// the URL's scheme modifiers request.
func NewPoolFromURL(resolver *addressresolver.Resolver, rawURL string, cfg *config.Config, hooks *packstream.Hooks) (*Pool, error) {
	addr, err := resolver.Resolve(rawURL)
	if err != nil {
		return nil, err
	}
	useTLS, insecureSkipVerify := addr.TLSPolicy()
	return NewPool(addr.HostPort(), addr.Host, useTLS, insecureSkipVerify, cfg, hooks)
}

// Acquire checks out a connection from the pool and wraps it in a
// Channel. When the pool's liveness check is enabled, a pooled
// connection that fails its check is discarded and a fresh one is
// dialed in its place.
func (p *Pool) Acquire() (*Channel, net.Conn, error) {
	for attempt := 0; ; attempt++ {
		conn, err := p.netPool.Get()
		if err != nil {
			return nil, nil, err
		}
		tc, tracked := conn.(*trackedConn)
		if tracked && p.livenessCheckEnabled() && !tc.isAlive() {
			p.logger.Debug("discarding dead pooled connection", "age", tc.age())
			p.netPool.Put(conn, errConnDead)
			if attempt < maxAcquireRetries {
				continue
			}
			return nil, nil, errConnDead
		}
		if tracked {
			tc.touch()
		}
		return NewChannel(conn, p.hooks), conn, nil
	}
}

// NeedsHandshake reports whether conn must (re-)negotiate its protocol
// version before carrying messages: it has never handshaked, was marked
// dirty by a failure, or sat idle past the pool's MaxIdleTime.
func (p *Pool) NeedsHandshake(conn net.Conn) bool {
	tc, ok := conn.(*trackedConn)
	if !ok {
		return true
	}
	var maxIdle time.Duration
	if p.cfg.ConnectionPool != nil {
		maxIdle = p.cfg.ConnectionPool.MaxIdleTime
	}
	return tc.needsHandshake(maxIdle)
}

// MarkHandshakeComplete records a successful protocol negotiation on
// conn so NeedsHandshake reports false for it until it is marked dirty
// or sits idle past MaxIdleTime.
func (p *Pool) MarkHandshakeComplete(conn net.Conn, major, minor byte) {
	if tc, ok := conn.(*trackedConn); ok {
		tc.markHandshakeComplete(major, minor)
		if p.instr != nil {
			p.instr.RecordConnectionEvent("handshake", p.cfg.Observability, nil)
		}
	}
}

// Version returns the protocol version negotiated on conn, or (0, 0)
// when no handshake has completed.
func (p *Pool) Version(conn net.Conn) (major, minor byte) {
	if tc, ok := conn.(*trackedConn); ok && tc.isHandshakeDone() {
		return tc.version()
	}
	return 0, 0
}

// Release returns conn to the pool. If err is non-nil, the connection
// is discarded rather than reused.
func (p *Pool) Release(conn net.Conn, err error) {
	if tc, ok := conn.(*trackedConn); ok {
		if err != nil {
			tc.markDirty()
		} else {
			tc.touch()
		}
	}
	p.netPool.Put(conn, err)
}

func (p *Pool) livenessCheckEnabled() bool {
	return p.cfg.ConnectionPool != nil && p.cfg.ConnectionPool.EnableLivenessCheck
}

// Close shuts down the pool, closing every connection it holds.
func (p *Pool) Close() error {
	p.netPool.Close()
	if p.instr != nil {
		p.instr.RecordConnectionEvent("disconnect", p.cfg.Observability, nil)
	}
	return nil
}
