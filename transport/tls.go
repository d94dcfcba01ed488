package transport

import (
	"crypto/tls"
	"net"

	"github.com/seuros/gopher-packstream/config"
)

// DialFunc opens a new transport-level connection to address, applying
// TLS when tlsCfg is non-nil. insecureSkipVerify overrides tlsCfg when
// the caller's address explicitly requested it (an "+ssc"-style
// modifier), matching the precedence the host driver's dialer used.
func DialFunc(address string, serverName string, tlsCfg *config.TLSConfig, insecureSkipVerify bool) (net.Conn, error) {
	if tlsCfg == nil {
		return net.Dial("tcp", address)
	}

	built := tlsCfg.BuildTLSConfig(serverName)
	if insecureSkipVerify {
		built.InsecureSkipVerify = true
	}
	return tls.Dial("tcp", address, built)
}
