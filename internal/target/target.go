package target

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

var (
	ErrUnsupportedScheme = errors.New("URL must use http or https scheme")
	ErrMissingHost       = errors.New("URL must have a host")
)

// Target is the endpoint a single invocation probes.
type Target struct {
	raw    string
	scheme string
	host   string
	port   string
	path   string
}

// Parse splits rawURL into a Target.
func Parse(rawURL string) (*Target, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse target %q: %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != SchemeHTTP && scheme != SchemeHTTPS {
		return nil, fmt.Errorf("parse target %q: %w", rawURL, ErrUnsupportedScheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("parse target %q: %w", rawURL, ErrMissingHost)
	}

	port := u.Port()
	if port == "" {
		port = DefaultPort(scheme)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return &Target{
		raw:    rawURL,
		scheme: scheme,
		host:   host,
		port:   port,
		path:   path,
	}, nil
}

// DefaultPort returns the well-known port for scheme.
func DefaultPort(scheme string) string {
	if strings.ToLower(scheme) == SchemeHTTPS {
		return "443"
	}
	return "80"
}

// Scheme returns http or https.
func (t *Target) Scheme() string {
	return t.scheme
}

// IsTLS reports whether the target is reached over TLS.
func (t *Target) IsTLS() bool {
	return t.scheme == SchemeHTTPS
}

// Host returns the host name or IP without the port.
func (t *Target) Host() string {
	return t.host
}

// Port returns the explicit or defaulted port.
func (t *Target) Port() string {
	return t.port
}

// Path returns the request path including any query string.
func (t *Target) Path() string {
	return t.path
}

// Addr returns host:port.
func (t *Target) Addr() string {
	return net.JoinHostPort(t.host, t.port)
}

// URL returns the normalized URL the request is sent to. A default port is
// left out so the Host header carries the bare host name.
func (t *Target) URL() string {
	host := t.Addr()
	if t.port == DefaultPort(t.scheme) {
		host = t.host
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return t.scheme + "://" + host + t.path
}

// String returns the URL as it was given.
func (t *Target) String() string {
	return t.raw
}
