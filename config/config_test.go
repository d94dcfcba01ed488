package config

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, uint16(tls.VersionTLS12), cfg.TLS.MinVersion)
	require.True(t, cfg.ConnectionPool.EnableLivenessCheck)
	require.Equal(t, 100, cfg.ConnectionPool.MaxConnections)
	require.True(t, cfg.Codec.ByteArraysSupported)
	require.False(t, cfg.Codec.DisableLosslessIntegers)
	require.False(t, cfg.Codec.UseBigInteger)
	require.NotNil(t, cfg.Observability)
	require.NotNil(t, cfg.Logging)
}

func TestBuildTLSConfigFallsBackToServerName(t *testing.T) {
	tc := &TLSConfig{MinVersion: tls.VersionTLS12}
	built := tc.BuildTLSConfig("example.com")
	require.Equal(t, "example.com", built.ServerName)
	require.Equal(t, uint16(tls.VersionTLS12), built.MinVersion)
}

func TestBuildTLSConfigPrefersExplicitServerName(t *testing.T) {
	tc := &TLSConfig{ServerName: "override.example.com"}
	built := tc.BuildTLSConfig("example.com")
	require.Equal(t, "override.example.com", built.ServerName)
}

func TestBuildTLSConfigClonesCustomConfig(t *testing.T) {
	custom := &tls.Config{ServerName: "custom.example.com"}
	tc := &TLSConfig{Config: custom}
	built := tc.BuildTLSConfig("ignored.example.com")
	require.Equal(t, "custom.example.com", built.ServerName)
	require.NotSame(t, custom, built)
}

func TestNewTLSConfigFromCertFiles(t *testing.T) {
	dir := t.TempDir()
	caFile := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caFile, []byte(testCACert), 0o600))

	tc, err := NewTLSConfigFromCertFiles("", "", caFile)
	require.NoError(t, err)
	require.NotNil(t, tc.RootCAs)
}

func TestNewTLSConfigFromCertFilesRejectsBadCA(t *testing.T) {
	dir := t.TempDir()
	caFile := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caFile, []byte("not a cert"), 0o600))

	_, err := NewTLSConfigFromCertFiles("", "", caFile)
	require.Error(t, err)
}

// testCACert is a throwaway self-signed certificate used only to
// exercise the PEM-parsing path; it is not a real trust anchor.
const testCACert = `-----BEGIN CERTIFICATE-----
MIIDBTCCAe2gAwIBAgIUM7vyKUD4FwFm+K/Z7kjgc3NDBv8wDQYJKoZIhvcNAQEL
BQAwEjEQMA4GA1UEAwwHdGVzdC1jYTAeFw0yNjA3MzEwNjM0MTRaFw0zNjA3Mjgw
NjM0MTRaMBIxEDAOBgNVBAMMB3Rlc3QtY2EwggEiMA0GCSqGSIb3DQEBAQUAA4IB
DwAwggEKAoIBAQCoaI/7HlTstKeBfM+p1hUGGZwnKGfB5UlDPzHnCL2dEwwue7fK
rBbLTzM+4DUt1n4AnEUScffIWiEqfTboYayOwaZwydHsJu4nr66mgzBxu6oBpyEX
rxAzRghTlL5NxbBOEe3dZOa5sNpOhsaFXQckNR46Gh1ZvrNc+hA2JOPEbe6gtO77
KFcEYtkUN4CdKvuaDCjn5VGV+jGYSTxdnFd5o44BL2RuOgbP58jPKdoBPVPJCyjj
D5gp2jLLQBEbbMc+1H2qQCTp38mF5VOirI8h2uvI/hSum5DqKRyJ5JTDCtgURIQm
UFv5FWRplRkGKRCbV4fsehZH2El1iX6Tw2MHAgMBAAGjUzBRMB0GA1UdDgQWBBQZ
/7Z+baZys+iBQ8Gj+IilUJjscTAfBgNVHSMEGDAWgBQZ/7Z+baZys+iBQ8Gj+Iil
UJjscTAPBgNVHRMBAf8EBTADAQH/MA0GCSqGSIb3DQEBCwUAA4IBAQCdkuYkFpqE
vA/CRcZIbE2UeO6QAMCaENAmPiocaENfpeyr98xP37ToZvysR8ipj74dpyywiDER
US6+VBEQD2nvw10gXjbUXYQ2c8a2yU8wn86gklulh8zmk5+9mdK1zk3DLH+m4f0i
DETPKqzj5JFrJ6fQuGoYyddibs/VwPc4zCPfZUpw15H8FiY/rAvO838HiHS2bJ7+
IIOouoK4mSmfY/myDJIgtc/PiCmSn5Picc0EtOVfgHMHyLHCbiXnuMRUB0YkFXvd
wUBR9/PjMY7j0aVcxq1h4EUuIvQ1+iF0Quwo+KRuG1EYwjy5AEE9dBCI9IWbNn2J
AN777XQds6eb
-----END CERTIFICATE-----`
