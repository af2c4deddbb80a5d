// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/model"
	"github.com/jeranaias/gearsync-tui/internal/session"
)

// ErrSessionEnded is returned when an in-flight call resolves after the
// session it belonged to was logged out. The result is discarded.
var ErrSessionEnded = errors.New("auth: session ended before the call completed")

// Provider is the single mutable authentication handle shared across the UI.
//
// It holds a read/write handle to the session store but never a second copy
// of the session it could desync: Role() re-reads in-memory state that is
// updated strictly through Login/Logout/clear, which go through the store
// first.
type Provider struct {
	store  session.Store
	client *api.Client

	mu   sync.Mutex
	role model.Role
	user *model.User

	// generation increments on every logout/clear. In-flight fetches that
	// started under an older generation are discarded on arrival.
	generation uint64
}

// NewProvider creates a Provider and primes its in-memory role from the
// persisted session. It does not talk to the network; call Bootstrap for
// the startup self-heal.
func NewProvider(store session.Store, client *api.Client) (*Provider, error) {
	sess, err := store.Restore()
	if err != nil {
		return nil, fmt.Errorf("auth: failed to restore session: %w", err)
	}
	return &Provider{
		store:  store,
		client: client,
		role:   sess.Role,
	}, nil
}

// Bootstrap validates a restored token against the backend at startup.
//
// A token the backend no longer accepts is cleared (self-healing against
// expiry/revocation). A network failure keeps the session: being offline is
// not evidence the token is bad.
func (p *Provider) Bootstrap(ctx context.Context) error {
	if !p.Authenticated() {
		return nil
	}

	gen := p.currentGeneration()
	user, err := p.client.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			p.clear()
			return nil
		}
		// Transport or server trouble: leave the session alone.
		return fmt.Errorf("auth: startup profile fetch failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return ErrSessionEnded
	}
	p.user = &user
	return nil
}

// Login authenticates, persists the session, and updates the in-memory role
// before returning, so a Role() read immediately after never sees a stale
// value.
func (p *Provider) Login(ctx context.Context, email, password string) (api.LoginResult, error) {
	result, err := p.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return api.LoginResult{}, err
	}

	if err := p.store.Save(result.Token, result.Role); err != nil {
		return api.LoginResult{}, fmt.Errorf("auth: failed to persist session: %w", err)
	}

	p.mu.Lock()
	p.role = result.Role
	p.user = nil
	p.mu.Unlock()

	return result, nil
}

// Register creates an account. It does not log in; the original flow sends
// the user back to the login screen afterwards.
func (p *Provider) Register(ctx context.Context, req api.RegisterRequest) (model.User, error) {
	return p.client.Register(ctx, req)
}

// Logout clears the session. The backend call is best-effort: a network
// failure is logged and the local session is cleared regardless. Calling
// Logout twice is harmless.
func (p *Provider) Logout(ctx context.Context) {
	if p.Authenticated() {
		if err := p.client.Logout(ctx); err != nil {
			log.Printf("auth: backend logout failed (session cleared locally): %v", err)
		}
	}
	p.clear()
}

// HandleUnauthenticated is called by screens when an authenticated call
// returns ErrUnauthenticated mid-session: clear once, then the guard's next
// decision redirects to login. The failed call is not retried.
func (p *Provider) HandleUnauthenticated() {
	p.clear()
}

// Role returns the current role, or "" when unauthenticated.
func (p *Provider) Role() model.Role {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.role
}

// Authenticated reports whether a session is active.
func (p *Provider) Authenticated() bool {
	return p.Role().Valid()
}

// Session re-reads the persisted session. Guard decisions go through this
// rather than a cached snapshot, since a concurrent logout can invalidate a
// snapshot mid-render.
func (p *Provider) Session() model.Session {
	sess, err := p.store.Restore()
	if err != nil {
		return model.Session{}
	}
	return sess
}

// CurrentUser returns the profile, fetching it lazily on first use. A fetch
// that resolves after a logout is discarded.
func (p *Provider) CurrentUser(ctx context.Context) (model.User, error) {
	p.mu.Lock()
	if p.user != nil {
		user := *p.user
		p.mu.Unlock()
		return user, nil
	}
	gen := p.generation
	p.mu.Unlock()

	if !p.Authenticated() {
		return model.User{}, api.ErrUnauthenticated
	}

	user, err := p.client.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			p.clear()
		}
		return model.User{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		// Logged out while the fetch was in flight.
		return model.User{}, ErrSessionEnded
	}
	p.user = &user
	return user, nil
}

// RefreshToken rotates the bearer token, keeping the persisted role.
func (p *Provider) RefreshToken(ctx context.Context) error {
	role := p.Role()
	if !role.Valid() {
		return api.ErrUnauthenticated
	}
	token, err := p.client.RefreshToken(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			p.clear()
		}
		return err
	}
	if err := p.store.Save(token, role); err != nil {
		return fmt.Errorf("auth: failed to persist refreshed session: %w", err)
	}
	return nil
}

// clear wipes store and memory and bumps the generation so stale in-flight
// responses are dropped.
func (p *Provider) clear() {
	if err := p.store.Clear(); err != nil {
		log.Printf("auth: failed to clear persisted session: %v", err)
	}
	p.mu.Lock()
	p.role = ""
	p.user = nil
	p.generation++
	p.mu.Unlock()
}

// currentGeneration snapshots the logout generation.
func (p *Provider) currentGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}
