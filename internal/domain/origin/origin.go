// Package origin parses URLs into the pieces the access checks need: scheme,
// host, path and the authority prefix ("pre-path") that names an origin.
package origin

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrNoScheme is returned for strings that are not absolute URLs.
	ErrNoScheme = errors.New("missing scheme")
	// ErrNoHost is returned for network URLs without a host.
	ErrNoHost = errors.New("missing host")
)

// defaultPorts are dropped from the authority prefix so that
// "https://example.com:443" and "https://example.com" name the same origin.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// URI is a parsed absolute URL.
type URI struct {
	Scheme string
	// Host is the lowercased host name without port.
	Host string
	Port string
	// Path is the path for hierarchical URLs and the opaque part otherwise
	// ("addon:id@example.org" has Path "id@example.org").
	Path string
	// PrePath is the authority prefix: scheme://[userinfo@]host[:port], or
	// "scheme:" for URLs without an authority.
	PrePath string
}

// Parse parses raw as an absolute URL.
func Parse(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme == "" {
		return URI{}, fmt.Errorf("parse %q: %w", raw, ErrNoScheme)
	}

	scheme := strings.ToLower(u.Scheme)
	_, network := defaultPorts[scheme]
	uri := URI{Scheme: scheme}

	// "https:example.com/login" has no authority; network schemes need one.
	if u.Opaque != "" && network {
		return URI{}, fmt.Errorf("parse %q: %w", raw, ErrNoHost)
	}

	if u.Opaque != "" {
		uri.Path = u.Opaque
		uri.PrePath = scheme + ":"
		return uri, nil
	}

	uri.Host = strings.ToLower(u.Hostname())
	uri.Port = u.Port()
	uri.Path = u.EscapedPath()

	if u.Host == "" && u.User == nil {
		if network {
			return URI{}, fmt.Errorf("parse %q: %w", raw, ErrNoHost)
		}
		uri.PrePath = scheme + ":"
		if strings.HasPrefix(raw[len(u.Scheme):], "://") {
			uri.PrePath = scheme + "://"
		}
		return uri, nil
	}

	if defaultPorts[scheme] == uri.Port {
		uri.Port = ""
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	switch {
	case uri.Port != "":
		b.WriteString(net.JoinHostPort(uri.Host, uri.Port))
	case strings.Contains(uri.Host, ":"):
		b.WriteString("[" + uri.Host + "]")
	default:
		b.WriteString(uri.Host)
	}
	uri.PrePath = b.String()

	return uri, nil
}
