package application

import "fmt"

// RejectionKind classifies why an API call was rejected.
type RejectionKind int

const (
	// KindValidation marks malformed or contradictory input.
	KindValidation RejectionKind = iota + 1
	// KindPermission marks a caller without access to the resolved origin.
	KindPermission
	// KindStore marks a failure reported by the login store.
	KindStore
)

// String returns the lowercase name of the kind.
func (k RejectionKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Rejection is the error returned by LoginAPI operations. Message is the
// exact text shown to the caller; Err holds the store error, if any.
type Rejection struct {
	Kind    RejectionKind
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func validationError(format string, args ...any) *Rejection {
	return &Rejection{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func permissionError(originURL string) *Rejection {
	return &Rejection{Kind: KindPermission, Message: "Permission denied for " + originURL}
}

// storeError passes the store's message through untranslated.
func storeError(err error) *Rejection {
	return &Rejection{Kind: KindStore, Message: err.Error(), Err: err}
}
