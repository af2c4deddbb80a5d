// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

// ErrPartialSession is returned by Save when given a token without a valid
// role or vice versa. The store never persists half a session.
var ErrPartialSession = errors.New("session: token and role must be saved together")

// Store holds the current session and notifies subscribers of changes.
//
// Save writes token and role as a single unit: a failure partway must not
// leave one of the two set. Clear is idempotent. Restore never fails on
// malformed persisted state; it returns the empty session instead.
type Store interface {
	Restore() (model.Session, error)
	Save(token string, role model.Role) error
	Clear() error
	Subscribe(fn func(model.Session))
}

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// MemStore is a Store backed by process memory. It is the test double for
// FileStore and also backs `--no-persist` runs.
type MemStore struct {
	mu        sync.Mutex
	current   model.Session
	listeners []func(model.Session)
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Restore returns the current in-memory session.
func (s *MemStore) Restore() (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Normalize(), nil
}

// Save stores both fields as one unit.
func (s *MemStore) Save(token string, role model.Role) error {
	if token == "" || !role.Valid() {
		return ErrPartialSession
	}
	s.mu.Lock()
	s.current = model.Session{Token: token, Role: role}
	listeners, current := s.listeners, s.current
	s.mu.Unlock()

	notify(listeners, current)
	return nil
}

// Clear removes the session. Calling it on an empty store is a no-op.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	wasEmpty := s.current.Empty()
	s.current = model.Session{}
	listeners := s.listeners
	s.mu.Unlock()

	if !wasEmpty {
		notify(listeners, model.Session{})
	}
	return nil
}

// Subscribe registers a change listener. Listeners run synchronously after
// the store has been updated, so a listener that re-reads the store observes
// the new value.
func (s *MemStore) Subscribe(fn func(model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// notify invokes listeners outside the store lock.
func notify(listeners []func(model.Session), sess model.Session) {
	for _, fn := range listeners {
		fn(sess)
	}
}
