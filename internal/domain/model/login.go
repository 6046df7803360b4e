package model

import (
	"errors"
	"time"
)

// Validity errors carry the login manager's own wording so callers see the
// same message whichever store backs the API.
//
//nolint:staticcheck // ST1005: native store messages are capitalized sentences.
var (
	ErrEmptyHostname    = errors.New("Can't add a login with a null or empty hostname.")
	ErrEmptyPassword    = errors.New("Can't add a login with a null or empty password.")
	ErrRealmAndFormURL  = errors.New("Can't add a login with both a httpRealm and formSubmitURL.")
	ErrNoRealmOrFormURL = errors.New("Can't add a login without a httpRealm or formSubmitURL.")
)

// LoginInfo is a credential record in the store's native shape. Hostname is
// the normalized origin (scheme, host and port) the login belongs to.
// Exactly one of FormSubmitURL and HTTPRealm is set, depending on whether
// the login came from an HTML form or an HTTP authentication challenge.
type LoginInfo struct {
	Hostname      string
	FormSubmitURL *string
	HTTPRealm     *string
	Username      string
	Password      string
	UsernameField *string
	PasswordField *string

	// Metadata maintained by the store.
	GUID                string
	TimeCreated         time.Time
	TimePasswordChanged time.Time
}

// Validate checks the invariants a store enforces before accepting a login.
func (l LoginInfo) Validate() error {
	if l.Hostname == "" {
		return ErrEmptyHostname
	}
	if l.Password == "" {
		return ErrEmptyPassword
	}
	if l.FormSubmitURL != nil && l.HTTPRealm != nil {
		return ErrRealmAndFormURL
	}
	if l.FormSubmitURL == nil && l.HTTPRealm == nil {
		return ErrNoRealmOrFormURL
	}
	return nil
}

// SameLogin reports whether two logins identify the same credential: the
// same origin, form action or realm, and username. Passwords are ignored.
func (l LoginInfo) SameLogin(other LoginInfo) bool {
	return l.Hostname == other.Hostname &&
		equalNullable(l.FormSubmitURL, other.FormSubmitURL) &&
		equalNullable(l.HTTPRealm, other.HTTPRealm) &&
		l.Username == other.Username
}

func equalNullable(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StringPtr returns a pointer to s. Handy for filling nullable fields.
func StringPtr(s string) *string {
	return &s
}
