package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/origin"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

// LoginAPI exposes the login store to a single extension caller. Every
// operation re-reads the store and drops logins whose origin the caller
// cannot access before doing anything else with them.
type LoginAPI struct {
	store  driven.LoginStore
	caller model.Caller
	logger *slog.Logger
}

// NewLoginAPI creates a LoginAPI scoped to caller.
func NewLoginAPI(store driven.LoginStore, caller model.Caller, logger *slog.Logger) *LoginAPI {
	return &LoginAPI{
		store:  store,
		caller: caller,
		logger: logger.With("extension", caller.ExtensionID),
	}
}

// Search returns the accessible logins matching q in store order. It returns
// an empty, non-nil slice when nothing matches.
func (a *LoginAPI) Search(ctx context.Context, q model.Query) ([]model.Record, error) {
	logins, err := a.visible(ctx, q)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(logins))
	for _, login := range logins {
		records = append(records, ToPublic(login))
	}
	return records, nil
}

// Store adds rec to the login store. The target origin comes from
// rec.Origin or, failing that, from the authority of rec.FormSubmitURL or
// rec.Realm; all that are given must agree.
func (a *LoginAPI) Store(ctx context.Context, rec model.Record) error {
	target, rej := resolveOrigin(rec)
	if rej != nil {
		a.logger.Debug("store rejected", "reason", rej.Message)
		return rej
	}

	if !Accessible(a.caller, target) {
		a.logger.Debug("store denied", "origin", target)
		return permissionError(target)
	}

	login := ToNative(rec)
	login.Hostname = target
	if err := a.store.AddLogin(ctx, login); err != nil {
		a.logger.Warn("add login failed", "error", err)
		return storeError(err)
	}
	return nil
}

// Remove deletes every accessible login matching q, one at a time. The first
// store failure aborts the operation; logins already removed stay removed.
// Matching nothing is not an error.
func (a *LoginAPI) Remove(ctx context.Context, q model.Query) error {
	logins, err := a.visible(ctx, q)
	if err != nil {
		return err
	}

	for i, login := range logins {
		if err := a.store.RemoveLogin(ctx, login); err != nil {
			a.logger.Warn("remove login failed", "removed", i, "remaining", len(logins)-i, "error", err)
			return storeError(err)
		}
	}
	return nil
}

// visible enumerates the store once and keeps the logins the caller may see
// that also match q.
func (a *LoginAPI) visible(ctx context.Context, q model.Query) ([]model.LoginInfo, error) {
	all, err := a.store.GetAllLogins(ctx)
	if err != nil {
		a.logger.Warn("enumerate logins failed", "error", err)
		return nil, storeError(err)
	}

	var out []model.LoginInfo
	for _, login := range all {
		if Accessible(a.caller, login.Hostname) && Match(login, q) {
			out = append(out, login)
		}
	}
	return out, nil
}

// resolveOrigin determines the origin a new record belongs to.
func resolveOrigin(rec model.Record) (string, *Rejection) {
	target := rec.Origin

	fields := []struct {
		name  string
		value *string
	}{
		{"formSubmitURL", rec.FormSubmitURL},
		{"realm", rec.Realm},
	}
	for _, f := range fields {
		if f.value == nil || *f.value == "" {
			continue
		}

		u, err := origin.Parse(*f.value)
		if err != nil {
			return "", validationError("Cannot parse %s as a URL", f.name)
		}

		if target == "" {
			target = u.PrePath
		} else if u.PrePath != target {
			return "", validationError("Origin does not match %s", f.name)
		}
	}

	if target == "" {
		return "", validationError("Must specify origin, formSubmitURL, or realm")
	}
	return target, nil
}
