// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"bytes"
	"os"
	"testing"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save("tok-123", model.RoleCustomer); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess.Token != "tok-123" || sess.Role != model.RoleCustomer {
		t.Errorf("restored %+v, want token=tok-123 role=CUSTOMER", sess)
	}
}

func TestFileStoreRestoreWithoutFile(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore on empty dir: %v", err)
	}
	if !sess.Empty() {
		t.Errorf("expected empty session, got %+v", sess)
	}
}

func TestFileStoreRejectsPartialSession(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		name  string
		token string
		role  model.Role
	}{
		{"missing token", "", model.RoleAdmin},
		{"missing role", "tok", ""},
		{"unknown role", "tok", model.Role("SUPERUSER")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.Save(tc.token, tc.role); err != ErrPartialSession {
				t.Errorf("Save(%q, %q) = %v, want ErrPartialSession", tc.token, tc.role, err)
			}
		})
	}
}

// A corrupted session file must behave like a signed-out state, never an
// error the app has to special-case.
func TestFileStoreMalformedFileRestoresEmpty(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("tok", model.RoleEmployee); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := os.WriteFile(store.Path(), []byte("not a session"), 0o600); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore of corrupt file: %v", err)
	}
	if !sess.Empty() {
		t.Errorf("expected empty session after corruption, got %+v", sess)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("tok", model.RoleAdmin); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !sess.Empty() {
		t.Errorf("expected empty session after Clear, got %+v", sess)
	}
}

// The on-disk document must not contain the raw token when sealing is on.
func TestFileStoreSealsAtRest(t *testing.T) {
	store := newTestStore(t)
	const token = "secret-bearer-token"

	if err := store.Save(token, model.RoleCustomer); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading session file: %v", err)
	}
	if bytes.Contains(raw, []byte(token)) {
		t.Error("session file contains the plaintext token")
	}
}

func TestFileStoreWithoutSealing(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), WithoutSealing())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Save("tok", model.RoleCustomer); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess.Token != "tok" {
		t.Errorf("restored token %q, want tok", sess.Token)
	}
}

func TestFileStoreNotifiesSubscribers(t *testing.T) {
	store := newTestStore(t)

	var got []model.Session
	store.Subscribe(func(s model.Session) { got = append(got, s) })

	if err := store.Save("tok", model.RoleAdmin); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	if got[0].Token != "tok" {
		t.Errorf("first notification %+v, want saved session", got[0])
	}
	if !got[1].Empty() {
		t.Errorf("second notification %+v, want empty session", got[1])
	}
}

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()

	if err := store.Save("tok", model.RoleEmployee); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess, _ := store.Restore()
	if sess.Token != "tok" || sess.Role != model.RoleEmployee {
		t.Errorf("restored %+v", sess)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	sess, _ = store.Restore()
	if !sess.Empty() {
		t.Errorf("expected empty session, got %+v", sess)
	}
}
