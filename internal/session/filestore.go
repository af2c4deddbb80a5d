// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

const (
	// SessionKeyEnvVar overrides the at-rest sealing key (hex-encoded,
	// 32 bytes). Takes precedence over the key file.
	SessionKeyEnvVar = "GEARSYNC_SESSION_KEY"

	// sessionFileName is the persisted session document.
	sessionFileName = "session.json"

	// sessionKeyFileName holds the generated sealing key next to the
	// session file.
	sessionKeyFileName = ".session_key"

	// storageVersion guards the on-disk format.
	storageVersion = 1
)

// sessionDocument is the on-disk representation. Token and role live in one
// document so they are written and removed as a unit.
type sessionDocument struct {
	Version int    `json:"version"`
	Token   string `json:"token"`
	Role    string `json:"role"`
}

// FileStore persists the session under the user's GearSync directory.
//
// Writes go through a temp file and an atomic rename with 0600 permissions.
// When sealing is enabled the document is encrypted with XChaCha20-Poly1305
// using a key generated on first use; a blob that fails to open restores as
// the empty session rather than an error, matching the malformed-file rule.
type FileStore struct {
	mu        sync.Mutex
	path      string
	key       []byte // nil disables sealing
	listeners []func(model.Session)
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithoutSealing disables at-rest encryption of the session document.
func WithoutSealing() Option {
	return func(s *FileStore) { s.key = nil }
}

// NewFileStore creates a store rooted at dir (typically ~/.gearsync).
// The directory is created with 0700 if missing.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("session: failed to create storage directory: %w", err)
	}

	key, err := loadOrGenerateKey(filepath.Join(dir, sessionKeyFileName))
	if err != nil {
		return nil, err
	}

	s := &FileStore{
		path: filepath.Join(dir, sessionFileName),
		key:  key,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultDir returns the default GearSync state directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".gearsync")
}

// Restore reads the persisted session. Absent, malformed, partial or
// unsealable content yields the empty session without an error.
func (s *FileStore) Restore() (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, nil
		}
		return model.Session{}, fmt.Errorf("session: failed to read session file: %w", err)
	}

	if s.key != nil {
		plain, err := s.open(data)
		if err != nil {
			// Unreadable blob: treat as logged out.
			return model.Session{}, nil
		}
		data = plain
	}

	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Session{}, nil
	}

	role, err := model.ParseRole(doc.Role)
	if err != nil {
		return model.Session{}, nil
	}
	return model.Session{Token: doc.Token, Role: role}.Normalize(), nil
}

// Save persists token and role atomically and notifies subscribers.
func (s *FileStore) Save(token string, role model.Role) error {
	if token == "" || !role.Valid() {
		return ErrPartialSession
	}

	s.mu.Lock()
	doc := sessionDocument{Version: storageVersion, Token: token, Role: role.String()}
	data, err := json.Marshal(doc)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: failed to marshal session: %w", err)
	}

	if s.key != nil {
		data, err = s.seal(data)
		if err != nil {
			s.mu.Unlock()
			return err
		}
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		s.mu.Unlock()
		return err
	}
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, model.Session{Token: token, Role: role})
	return nil
}

// Clear removes the persisted session. Idempotent.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	err := os.Remove(s.path)
	listeners := s.listeners
	s.mu.Unlock()

	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: failed to clear session: %w", err)
	}
	notify(listeners, model.Session{})
	return nil
}

// Subscribe registers a change listener.
func (s *FileStore) Subscribe(fn func(model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Path returns the session file location (for status/diagnostic output).
func (s *FileStore) Path() string {
	return s.path
}

// =============================================================================
// AT-REST SEALING
// =============================================================================

// seal encrypts the document with XChaCha20-Poly1305, nonce prepended.
func (s *FileStore) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("session: failed to initialize sealing: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("session: failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

// open decrypts a sealed document produced by seal.
func (s *FileStore) open(blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("session: sealed blob too short")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}

// loadOrGenerateKey resolves the sealing key. Priority: environment
// variable, key file, then generate-and-save.
func loadOrGenerateKey(keyPath string) ([]byte, error) {
	if envKey := os.Getenv(SessionKeyEnvVar); envKey != "" {
		key, err := hex.DecodeString(envKey)
		if err != nil {
			return nil, fmt.Errorf("session: invalid key in %s: must be hex-encoded: %w", SessionKeyEnvVar, err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("session: key in %s must be %d bytes (got %d)", SessionKeyEnvVar, chacha20poly1305.KeySize, len(key))
		}
		return key, nil
	}

	key, err := os.ReadFile(keyPath)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("session: key file has invalid size: expected %d, got %d", chacha20poly1305.KeySize, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("session: failed to read key file: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("session: failed to generate key: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("session: failed to save key: %w", err)
	}
	return key, nil
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a half-written session.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("session: failed to write session file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("session: failed to rename session file: %w", err)
	}
	return nil
}
