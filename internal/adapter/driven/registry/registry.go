// Package registry loads installed extensions and their host permissions
// from a YAML file and serves them as caller contexts.
package registry

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/logingate/internal/domain/matchpattern"
	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ExtensionRegistry = (*Registry)(nil)

// fileFormat is the on-disk layout:
//
//	extensions:
//	  - id: passwords@example.org
//	    uuid: 0f5c6d1e-95f1-4a4c-9a8e-8d3c54a4b7f2
//	    token: 7e1d2c0b9a8f4e3d6c5b4a3f2e1d0c9b
//	    permissions: ["<all_urls>"]
//
// An entry without a token can be used by loginctl but cannot authenticate
// over HTTP.
type fileFormat struct {
	Extensions []extensionEntry `yaml:"extensions"`
}

type extensionEntry struct {
	ID          string   `yaml:"id"`
	UUID        string   `yaml:"uuid"`
	Token       string   `yaml:"token"`
	Permissions []string `yaml:"permissions"`
}

// minTokenLength keeps trivially guessable tokens out of the file.
const minTokenLength = 16

// Registry is an immutable set of installed extensions.
type Registry struct {
	callers []model.Caller
	byID    map[string]int
	// tokens holds the SHA-256 digest of each caller's token, indexed like
	// callers. A nil entry has no token.
	tokens [][]byte
}

// Load reads and parses the registry file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extension registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("extension registry %s: %w", path, err)
	}
	return reg, nil
}

// Parse builds a Registry from YAML. Extensions without a uuid are assigned
// a random instance id, as a fresh installation would be.
func Parse(data []byte) (*Registry, error) {
	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	reg := &Registry{byID: make(map[string]int, 2*len(file.Extensions))}
	for i, entry := range file.Extensions {
		caller, err := entry.caller()
		if err != nil {
			return nil, fmt.Errorf("extension %d: %w", i, err)
		}
		for _, key := range []string{caller.ExtensionID, caller.InstanceID} {
			if _, dup := reg.byID[key]; dup {
				return nil, fmt.Errorf("extension %d: duplicate id %q", i, key)
			}
			reg.byID[key] = len(reg.callers)
		}

		digest, err := entry.tokenDigest()
		if err != nil {
			return nil, fmt.Errorf("extension %d: %w", i, err)
		}
		if digest != nil && reg.matchToken(digest) >= 0 {
			return nil, fmt.Errorf("extension %d: %s: token already assigned to another extension", i, entry.ID)
		}

		reg.callers = append(reg.callers, caller)
		reg.tokens = append(reg.tokens, digest)
	}

	return reg, nil
}

func (e extensionEntry) caller() (model.Caller, error) {
	if e.ID == "" {
		return model.Caller{}, errors.New("missing id")
	}

	// Hosts are compared lowercased, so the instance id is kept in the
	// canonical lowercase form or moz-extension URLs would never match it.
	instanceID := uuid.NewString()
	if e.UUID != "" {
		u, err := uuid.Parse(e.UUID)
		if err != nil {
			return model.Caller{}, fmt.Errorf("%s: invalid uuid %q: %w", e.ID, e.UUID, err)
		}
		instanceID = u.String()
	}

	hosts, err := matchpattern.ParseSet(e.Permissions)
	if err != nil {
		return model.Caller{}, fmt.Errorf("%s: %w", e.ID, err)
	}

	return model.Caller{ExtensionID: e.ID, InstanceID: instanceID, Hosts: hosts}, nil
}

func (e extensionEntry) tokenDigest() ([]byte, error) {
	if e.Token == "" {
		return nil, nil
	}
	if len(e.Token) < minTokenLength {
		return nil, fmt.Errorf("%s: token shorter than %d characters", e.ID, minTokenLength)
	}
	sum := sha256.Sum256([]byte(e.Token))
	return sum[:], nil
}

// matchToken returns the index of the caller holding digest, or -1. Every
// entry is compared so the time taken does not depend on which one matches.
func (r *Registry) matchToken(digest []byte) int {
	found := -1
	for i, candidate := range r.tokens {
		if candidate == nil {
			continue
		}
		if subtle.ConstantTimeCompare(candidate, digest) == 1 {
			found = i
		}
	}
	return found
}

// Lookup resolves an extension id or instance uuid. Instance uuids match in
// any letter case.
func (r *Registry) Lookup(_ context.Context, id string) (model.Caller, error) {
	i, ok := r.byID[id]
	if !ok {
		u, err := uuid.Parse(id)
		if err != nil {
			return model.Caller{}, driven.ErrUnknownExtension
		}
		if i, ok = r.byID[u.String()]; !ok {
			return model.Caller{}, driven.ErrUnknownExtension
		}
	}
	return r.callers[i], nil
}

// Authenticate resolves the extension holding token.
func (r *Registry) Authenticate(_ context.Context, token string) (model.Caller, error) {
	if token == "" {
		return model.Caller{}, driven.ErrUnknownExtension
	}
	sum := sha256.Sum256([]byte(token))
	i := r.matchToken(sum[:])
	if i < 0 {
		return model.Caller{}, driven.ErrUnknownExtension
	}
	return r.callers[i], nil
}

// List returns every registered extension in file order.
func (r *Registry) List(_ context.Context) ([]model.Caller, error) {
	out := make([]model.Caller, len(r.callers))
	copy(out, r.callers)
	return out, nil
}
