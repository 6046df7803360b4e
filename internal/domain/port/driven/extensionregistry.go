package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/logingate/internal/domain/model"
)

// ErrUnknownExtension is returned when no installed extension has the id or
// token.
var ErrUnknownExtension = errors.New("unknown extension")

// ExtensionRegistry supplies the caller context of installed extensions.
type ExtensionRegistry interface {
	// Lookup resolves an extension id or instance UUID to its caller
	// context. Returns ErrUnknownExtension if nothing matches.
	Lookup(ctx context.Context, id string) (model.Caller, error)

	// Authenticate resolves the extension holding the secret token. Returns
	// ErrUnknownExtension if no extension holds it.
	Authenticate(ctx context.Context, token string) (model.Caller, error)

	// List returns every installed extension.
	List(ctx context.Context) ([]model.Caller, error)
}
