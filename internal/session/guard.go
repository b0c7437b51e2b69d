package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cortexhq/cortex/internal/domain"
)

// State describes where identity resolution stands
type State int

const (
	// StatePending means the session probe has not completed yet
	StatePending State = iota
	// StateAnonymous means there is no usable identity; callers redirect
	// to the login flow and render nothing else
	StateAnonymous
	// StateAuthenticated means the identity resolved and children may render
	StateAuthenticated
)

// IdentityProber resolves the identity behind the stored credential
type IdentityProber interface {
	Me(ctx context.Context) (*domain.User, error)
}

// Guard gates access to sections that require a signed-in identity. It
// probes the session once per process and caches the outcome; it owns no
// business data and performs no retries -- any resolution failure
// degrades to anonymous.
type Guard struct {
	prober IdentityProber
	tokens *Store

	mu    sync.Mutex
	state State
	user  *domain.User
}

// NewGuard creates a guard over the given prober and credential store
func NewGuard(prober IdentityProber, tokens *Store) *Guard {
	return &Guard{prober: prober, tokens: tokens, state: StatePending}
}

// Resolve returns the signed-in user, probing the server on first call.
// A missing credential short-circuits without a network round trip.
// Returns domain.ErrUnauthorized when the session is anonymous.
func (g *Guard) Resolve(ctx context.Context) (*domain.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateAuthenticated {
		return g.user, nil
	}
	if g.state == StateAnonymous {
		return nil, domain.ErrUnauthorized
	}

	if g.tokens.Token() == "" {
		g.state = StateAnonymous
		return nil, domain.ErrNoCredentials
	}

	user, err := g.prober.Me(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Warn("identity probe failed", "err", err)
		}
		g.state = StateAnonymous
		return nil, domain.ErrUnauthorized
	}

	g.state = StateAuthenticated
	g.user = user
	return user, nil
}

// State returns the current resolution state
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reset clears the cached resolution (after login/logout)
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StatePending
	g.user = nil
}
