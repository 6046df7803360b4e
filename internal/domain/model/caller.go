package model

import "github.com/ericfisherdev/logingate/internal/domain/matchpattern"

// Caller identifies the extension invoking the API and the host
// permissions it was granted at install time.
type Caller struct {
	// ExtensionID is the stable add-on identifier ("passwords@example.org").
	ExtensionID string
	// InstanceID is the per-installation UUID used in moz-extension URLs.
	InstanceID string
	// Hosts holds the host-match patterns from the extension's permissions.
	Hosts matchpattern.Set
}
