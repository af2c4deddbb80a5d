// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache keeps the last successfully fetched dashboard lists in a
// local SQLite database so a dashboard can still render (clearly labeled as
// stale) when the backend is unreachable.
//
// A network failure must never clear a valid session; this cache is what
// makes that degraded mode useful.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrMiss indicates no cached copy exists for the key.
var ErrMiss = errors.New("cache: no cached copy")

// cacheFileName is the database file under the state directory.
const cacheFileName = "cache.db"

// Store is the offline list cache. Safe for concurrent use (database/sql
// pools connections).
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache under dir.
func Open(dir string) (*Store, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, cacheFileName))
	if err != nil {
		return nil, fmt.Errorf("cache: failed to open database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS lists (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutList stores the latest fetched copy of a list under key
// (e.g. "customer/appointments").
func (s *Store) PutList(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal %s: %w", key, err)
	}

	const upsert = `
	INSERT INTO lists (key, payload, fetched_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`
	if _, err := s.db.ExecContext(ctx, upsert, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("cache: failed to store %s: %w", key, err)
	}
	return nil
}

// GetList loads the cached copy of key into v and reports when it was
// fetched. Returns ErrMiss when nothing is cached.
func (s *Store) GetList(ctx context.Context, key string, v any) (time.Time, error) {
	var payload []byte
	var fetchedAt time.Time

	const query = `SELECT payload, fetched_at FROM lists WHERE key = ?`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		// Corrupt entry: behave like a miss.
		return time.Time{}, ErrMiss
	}
	return fetchedAt, nil
}

// Purge drops every cached list. Called on logout: cached lists belong to
// the user who fetched them.
func (s *Store) Purge(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lists`); err != nil {
		return fmt.Errorf("cache: failed to purge: %w", err)
	}
	return nil
}
