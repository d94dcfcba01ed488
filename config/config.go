// Package config holds the configuration surface for a PackStream
// transport connection: TLS, connection pooling, observability,
// logging, and the codec's own wire policy. It is adapted from the
// driver configuration layer of the codec's host driver, generalized
// so that the codec policy fields (which that driver hard-coded) are
// now first-class and pluggable.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/seuros/gopher-packstream/logging"
	"github.com/seuros/gopher-packstream/telemetry"
)

// Config holds configuration options for a PackStream connection.
type Config struct {
	// TLS holds TLS-specific configuration.
	TLS *TLSConfig

	// ConnectionPool holds connection pool configuration.
	ConnectionPool *PoolConfig

	// Observability holds telemetry configuration.
	Observability *telemetry.Config

	// Logging holds logging configuration.
	Logging *logging.Config

	// Codec holds the PackStream wire policy: whether byte arrays are
	// negotiated on, whether lossless I64 wrapping is disabled, and
	// whether integers decode to *big.Int regardless of magnitude.
	Codec *CodecConfig
}

// CodecConfig records PackStream's negotiated and policy-driven
// behavior. No code in this module reads it: transport.Pool and
// transport.Channel do not apply it, and Channel.WriteMessage and
// ReadMessage take these settings as packstream options instead.
type CodecConfig struct {
	// ByteArraysSupported gates whether []byte values may be packed as
	// BYTES. Some wire contexts never negotiate byte array support.
	ByteArraysSupported bool

	// DisableLosslessIntegers decodes every INTEGER marker to float64
	// instead of the lossless I64 wrapper, saturating to +/-Inf outside
	// the exactly-representable range.
	DisableLosslessIntegers bool

	// UseBigInteger decodes every INTEGER marker to *big.Int regardless
	// of magnitude.
	UseBigInteger bool
}

// TLSConfig provides advanced TLS configuration options.
type TLSConfig struct {
	// Config allows passing a custom tls.Config directly. If provided,
	// this takes precedence over other TLS settings.
	Config *tls.Config

	// InsecureSkipVerify disables certificate verification (equivalent
	// to a "+ssc" address modifier).
	InsecureSkipVerify bool

	// ServerName specifies the expected server name for certificate
	// validation. If empty, it's derived from the connection address.
	ServerName string

	// ClientCertificates holds client certificates for mutual TLS.
	ClientCertificates []tls.Certificate

	// RootCAs specifies the root certificate authorities to trust. If
	// nil, system root CAs are used.
	RootCAs *x509.CertPool

	// ClientCAs specifies certificate authorities for client
	// certificate validation.
	ClientCAs *x509.CertPool

	// MinVersion specifies the minimum TLS version (default: TLS 1.2).
	MinVersion uint16

	// MaxVersion specifies the maximum TLS version (default: latest).
	MaxVersion uint16

	// CipherSuites specifies allowed cipher suites. If empty, Go's
	// default secure cipher suites are used.
	CipherSuites []uint16
}

// PoolConfig provides connection pool configuration options.
type PoolConfig struct {
	// MaxConnections specifies the maximum number of connections in the
	// pool. transport.NewPool does not pass it to the underlying pool.
	MaxConnections int

	// MaxIdleTime specifies how long a connection can be idle before
	// transport.Pool.NeedsHandshake reports that it must renegotiate.
	// Idle connections are not closed.
	MaxIdleTime time.Duration

	// ConnectionLifetime specifies the maximum lifetime of a
	// connection. transport.NewPool does not apply it.
	ConnectionLifetime time.Duration

	// AcquisitionTimeout specifies how long to wait for a connection
	// from the pool. transport.NewPool does not apply it.
	AcquisitionTimeout time.Duration

	// EnableLivenessCheck enables a liveness check on each pooled
	// connection as transport.Pool.Acquire hands it out.
	EnableLivenessCheck bool
}

// DefaultConfig returns a Config with sensible defaults: TLS 1.2
// minimum, a 100-connection pool, byte arrays enabled, lossless
// integers on, no forced big-integer decoding.
func DefaultConfig() *Config {
	return &Config{
		TLS: &TLSConfig{
			MinVersion: tls.VersionTLS12,
			MaxVersion: 0,
		},
		ConnectionPool: &PoolConfig{
			MaxConnections:      100,
			MaxIdleTime:         30 * time.Minute,
			ConnectionLifetime:  1 * time.Hour,
			AcquisitionTimeout:  30 * time.Second,
			EnableLivenessCheck: true,
		},
		Observability: telemetry.DefaultConfig(),
		Logging:       logging.DefaultConfig(),
		Codec: &CodecConfig{
			ByteArraysSupported: true,
		},
	}
}

// NewTLSConfigFromCertFiles creates a TLSConfig from certificate file
// paths.
func NewTLSConfigFromCertFiles(certFile, keyFile, caFile string) (*TLSConfig, error) {
	tlsConfig := &TLSConfig{
		MinVersion: tls.VersionTLS12,
	}

	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.ClientCertificates = []tls.Certificate{cert}
	}

	if caFile != "" {
		caCertData, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file %s: %w", caFile, err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCertData) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", caFile)
		}
		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// BuildTLSConfig creates a *tls.Config from TLSConfig settings, falling
// back to serverName when ServerName is unset.
func (tc *TLSConfig) BuildTLSConfig(serverName string) *tls.Config {
	if tc.Config != nil {
		return tc.Config.Clone()
	}

	cfg := &tls.Config{
		InsecureSkipVerify: tc.InsecureSkipVerify,
		ServerName:         tc.ServerName,
		Certificates:       tc.ClientCertificates,
		RootCAs:            tc.RootCAs,
		ClientCAs:          tc.ClientCAs,
		MinVersion:         tc.MinVersion,
		MaxVersion:         tc.MaxVersion,
		CipherSuites:       tc.CipherSuites,
	}

	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}

	return cfg
}
