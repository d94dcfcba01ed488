// Package addressresolver parses a PackStream-speaking service's
// connection URL (scheme://[user:pass@]host:port[/database][?opt=val])
// into the pieces transport needs to dial and authenticate: host, port,
// credentials, and a TLS policy. It is adapted from the host driver's
// connection URL resolver, generalized from its two hard-coded adapter
// names (neo4j, memgraph) to any caller-registered scheme so a
// PackStream consumer other than that one driver can reuse it.
package addressresolver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is used when a URL omits an explicit port.
const DefaultPort = 7687

// Address is the normalized result of resolving a connection URL.
type Address struct {
	Scheme   string
	Username string
	Password string
	Host     string
	Port     int
	Database string
	SSL      bool
	SSC      bool
	Options  map[string]string
}

// HostPort formats the dial target for net.Dial / tls.Dial.
func (a *Address) HostPort() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// TLSPolicy reports whether a connection should use TLS and, if so,
// whether the server certificate should be verified. SSC ("self-signed
// certificate") always implies SSL; it just skips verification.
func (a *Address) TLSPolicy() (useTLS, insecureSkipVerify bool) {
	useTLS = a.SSL || a.SSC
	insecureSkipVerify = a.SSC
	return useTLS, insecureSkipVerify
}

// Resolver parses connection URLs restricted to a fixed set of known
// schemes (e.g. "bolt", "neo4j", "memgraph", whatever the caller's
// PackStream service calls itself). Each scheme may carry a "+ssl" or
// "+ssc"/"+s" modifier, matching the host driver's own URL grammar.
type Resolver struct {
	schemes map[string]bool
}

// New returns a Resolver that only accepts the given schemes.
func New(schemes ...string) *Resolver {
	set := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		set[s] = true
	}
	return &Resolver{schemes: set}
}

// Resolve parses rawURL into an Address. It returns an error for a
// malformed URL, an unrecognized scheme, or an unrecognized scheme
// modifier, rather than a nil Address the caller has to check.
func (r *Resolver) Resolve(rawURL string) (*Address, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("addressresolver: empty connection URL")
	}

	schemeParts := strings.SplitN(rawURL, "://", 2)
	if len(schemeParts) != 2 {
		return nil, fmt.Errorf("addressresolver: missing scheme in %q", rawURL)
	}

	scheme, rest := schemeParts[0], schemeParts[1]
	adapter, modifiers, err := r.splitSchemeModifiers(scheme)
	if err != nil {
		return nil, err
	}

	uri, err := url.Parse(fmt.Sprintf("%s://%s", adapter, rest))
	if err != nil {
		return nil, fmt.Errorf("addressresolver: %w", err)
	}

	options := make(map[string]string)
	for key, values := range uri.Query() {
		if key != "" && len(values) > 0 && values[0] != "" {
			options[key] = values[0]
		}
	}

	database := strings.TrimPrefix(uri.Path, "/")

	var username, password string
	if uri.User != nil {
		username = uri.User.Username()
		if pass, ok := uri.User.Password(); ok {
			password = pass
		}
	}

	host := uri.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := DefaultPort
	if uri.Port() != "" {
		p, err := strconv.Atoi(uri.Port())
		if err != nil {
			return nil, fmt.Errorf("addressresolver: invalid port in %q: %w", rawURL, err)
		}
		port = p
	}

	useSSL := contains(modifiers, "ssl")
	useSSC := contains(modifiers, "ssc")
	if useSSC {
		useSSL = true
	}

	return &Address{
		Scheme:   adapter,
		Username: username,
		Password: password,
		Host:     host,
		Port:     port,
		Database: database,
		SSL:      useSSL,
		SSC:      useSSC,
		Options:  options,
	}, nil
}

func (r *Resolver) splitSchemeModifiers(scheme string) (adapter string, modifiers []string, err error) {
	parts := strings.Split(scheme, "+")
	adapter = parts[0]
	if !r.schemes[adapter] {
		return "", nil, fmt.Errorf("addressresolver: unrecognized scheme %q", adapter)
	}

	for _, m := range parts[1:] {
		switch m {
		case "ssl":
			modifiers = append(modifiers, "ssl")
		case "ssc", "s":
			modifiers = append(modifiers, "ssc")
		default:
			return "", nil, fmt.Errorf("addressresolver: unrecognized scheme modifier %q in %q", m, scheme)
		}
	}
	return adapter, modifiers, nil
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
