package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cortexhq/cortex/internal/storage/local"
)

const (
	collectionCredentials = "credentials"
	credentialID          = "default"
)

// Credential is the persisted bearer token and the identity it was issued
// for. Written 0600; the token is the only secret this client holds.
type Credential struct {
	AccessToken string    `json:"access_token"`
	Email       string    `json:"email"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store owns the persisted credential. It implements api.TokenSource:
// Token feeds outgoing requests, Invalidate is the 401 hook that resets
// the session to signed-out.
type Store struct {
	store *local.Store

	mu    sync.RWMutex
	cred  *Credential
	ready bool
}

// NewStore creates a credential store rooted at basePath (~/.cortex)
func NewStore(basePath string) (*Store, error) {
	store, err := local.NewStore(basePath, local.WithFileMode(0600))
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}
	return &Store{store: store}, nil
}

// Token returns the current bearer token, or "" when signed out
func (s *Store) Token() string {
	cred := s.current()
	if cred == nil {
		return ""
	}
	return cred.AccessToken
}

// current returns the cached credential, reading it from disk on first use
func (s *Store) current() *Credential {
	s.mu.RLock()
	if s.ready {
		cred := s.cred
		s.mu.RUnlock()
		return cred
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.load()
	}
	return s.cred
}

// load reads the persisted credential. Malformed or missing records
// degrade to signed-out; a corrupt credential file is not worth
// surfacing -- the user can simply log in again.
func (s *Store) load() {
	s.ready = true
	var cred Credential
	if err := s.store.Load(collectionCredentials, credentialID, &cred); err != nil {
		if !errors.Is(err, local.ErrNotFound) {
			slog.Warn("discarding unreadable credential", "err", err)
			s.store.Delete(collectionCredentials, credentialID)
		}
		return
	}
	s.cred = &cred
}

// Save persists a fresh credential after login or signup
func (s *Store) Save(token, email string) error {
	cred := &Credential{
		AccessToken: token,
		Email:       email,
		SavedAt:     time.Now(),
	}
	if err := s.store.Save(collectionCredentials, credentialID, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	s.mu.Lock()
	s.cred = cred
	s.ready = true
	s.mu.Unlock()
	return nil
}

// Clear removes the credential (explicit logout)
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cred = nil
	s.ready = true
	s.mu.Unlock()

	if err := s.store.Delete(collectionCredentials, credentialID); err != nil && !errors.Is(err, local.ErrNotFound) {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Invalidate drops the credential after a server-side rejection. Unlike
// Clear, a failure to remove the file is only logged: the in-memory
// session is already signed out and that is what matters.
func (s *Store) Invalidate() {
	slog.Debug("credential rejected by server, signing out")
	if err := s.Clear(); err != nil {
		slog.Warn("clear rejected credential", "err", err)
	}
}

// Email returns the email the credential was issued for, or ""
func (s *Store) Email() string {
	cred := s.current()
	if cred == nil {
		return ""
	}
	return cred.Email
}
