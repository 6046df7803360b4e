// Package memory provides an in-process LoginStore. Nothing is persisted;
// it backs the ephemeral server mode and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LoginStore = (*LoginStore)(nil)

// LoginStore keeps logins in insertion order behind a mutex.
type LoginStore struct {
	mu     sync.RWMutex
	logins []model.LoginInfo
	now    func() time.Time
}

// NewLoginStore creates an empty LoginStore.
func NewLoginStore() *LoginStore {
	return &LoginStore{now: time.Now}
}

// GetAllLogins returns a copy of every stored login.
func (s *LoginStore) GetAllLogins(_ context.Context) ([]model.LoginInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logins), nil
}

// AddLogin validates login, assigns it a GUID and timestamps, and stores it.
func (s *LoginStore) AddLogin(_ context.Context, login model.LoginInfo) error {
	if err := login.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.logins {
		if existing.SameLogin(login) {
			return driven.ErrLoginAlreadyExists
		}
	}

	now := s.now().UTC()
	if login.GUID == "" {
		login.GUID = "{" + uuid.NewString() + "}"
	}
	login.TimeCreated = now
	login.TimePasswordChanged = now
	s.logins = append(s.logins, login)
	return nil
}

// RemoveLogin deletes the stored login identified by login.
func (s *LoginStore) RemoveLogin(_ context.Context, login model.LoginInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.logins, login.SameLogin)
	if i < 0 {
		return driven.ErrLoginNotFound
	}
	s.logins = slices.Delete(s.logins, i, i+1)
	return nil
}
