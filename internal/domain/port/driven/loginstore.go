package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/logingate/internal/domain/model"
)

// Sentinel errors returned by LoginStore implementations. The messages are
// the login manager's own and reach API callers unchanged.
var (
	// ErrLoginAlreadyExists indicates a login with the same origin, form
	// action or realm, and username is already stored.
	ErrLoginAlreadyExists = errors.New("This login already exists.") //nolint:staticcheck // native store message

	// ErrLoginNotFound indicates the login to remove is no longer stored.
	ErrLoginNotFound = errors.New("No matching logins") //nolint:staticcheck // native store message
)

// LoginStore defines the driven port for credential persistence. The store
// is the source of truth: callers never cache its results.
type LoginStore interface {
	// GetAllLogins enumerates every stored login.
	GetAllLogins(ctx context.Context) ([]model.LoginInfo, error)

	// AddLogin validates and persists a new login. Returns a model validity
	// error or ErrLoginAlreadyExists when the login is rejected.
	AddLogin(ctx context.Context, login model.LoginInfo) error

	// RemoveLogin deletes the stored login identified by login's origin,
	// form action or realm, and username. Returns ErrLoginNotFound if none.
	RemoveLogin(ctx context.Context, login model.LoginInfo) error
}
