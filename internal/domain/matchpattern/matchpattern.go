// Package matchpattern implements the host-match patterns extensions declare
// in their permissions, such as "<all_urls>", "*://*.example.com/*" or
// "https://accounts.example.org/login/*".
package matchpattern

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ericfisherdev/logingate/internal/domain/origin"
)

// AllURLs is the pattern granting access to every permitted scheme.
const AllURLs = "<all_urls>"

// ErrInvalidPattern is wrapped by every Parse failure.
var ErrInvalidPattern = errors.New("invalid match pattern")

var (
	permittedSchemes = []string{"http", "https", "ws", "wss", "ftp", "file", "data"}
	wildcardSchemes  = []string{"http", "https", "ws", "wss"}
)

// Pattern is a single parsed host-match pattern.
type Pattern struct {
	raw     string
	schemes []string
	// host is "" for any host, or an exact lowercased host name.
	host       string
	subdomains bool
	path       string
}

// Parse parses a match pattern string.
func Parse(raw string) (Pattern, error) {
	if raw == AllURLs {
		return Pattern{raw: raw, schemes: permittedSchemes, path: "*"}, nil
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Pattern{}, fmt.Errorf("%w %q: missing \"://\"", ErrInvalidPattern, raw)
	}

	p := Pattern{raw: raw}
	switch {
	case scheme == "*":
		p.schemes = wildcardSchemes
	case slices.Contains(permittedSchemes, scheme):
		p.schemes = []string{scheme}
	default:
		return Pattern{}, fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidPattern, raw, scheme)
	}

	host, path, ok := strings.Cut(rest, "/")
	if !ok {
		return Pattern{}, fmt.Errorf("%w %q: missing path", ErrInvalidPattern, raw)
	}
	p.path = "/" + path

	switch {
	case host == "*":
	case strings.HasPrefix(host, "*."):
		p.host = strings.ToLower(host[2:])
		p.subdomains = true
	case strings.Contains(host, "*"):
		return Pattern{}, fmt.Errorf("%w %q: wildcard must lead the host", ErrInvalidPattern, raw)
	case host == "" && scheme != "file":
		return Pattern{}, fmt.Errorf("%w %q: empty host", ErrInvalidPattern, raw)
	default:
		p.host = strings.ToLower(host)
	}

	return p, nil
}

// String returns the pattern as it was declared.
func (p Pattern) String() string {
	return p.raw
}

// Matches reports whether the URL falls inside the pattern.
func (p Pattern) Matches(u origin.URI) bool {
	if !slices.Contains(p.schemes, u.Scheme) {
		return false
	}

	if p.raw == AllURLs {
		return true
	}

	if p.host != "" {
		switch {
		case u.Host == p.host:
		case p.subdomains && strings.HasSuffix(u.Host, "."+p.host):
		default:
			return false
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return glob(p.path, path)
}

// Set is the collection of patterns granted to one caller. The zero Set
// matches nothing.
type Set []Pattern

// ParseSet parses every pattern in raws, failing on the first invalid one.
func ParseSet(raws []string) (Set, error) {
	set := make(Set, 0, len(raws))
	for _, raw := range raws {
		p, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Matches reports whether any pattern in the set matches the URL.
func (s Set) Matches(u origin.URI) bool {
	for _, p := range s {
		if p.Matches(u) {
			return true
		}
	}
	return false
}

// glob matches s against a pattern where '*' stands for any run of
// characters, including '/'. Every other byte matches itself.
func glob(pattern, s string) bool {
	var px, sx int
	starPx, starSx := -1, 0
	for sx < len(s) {
		switch {
		case px < len(pattern) && pattern[px] == '*':
			starPx, starSx = px, sx
			px++
		case px < len(pattern) && pattern[px] == s[sx]:
			px++
			sx++
		case starPx >= 0:
			starSx++
			px, sx = starPx+1, starSx
		default:
			return false
		}
	}
	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}
