// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

func newTestCache(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCacheRoundTrip(t *testing.T) {
	store := newTestCache(t)
	ctx := context.Background()

	want := []model.Appointment{
		{ID: 1, Status: "PENDING", ScheduledAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		{ID: 2, Status: "COMPLETED", ServiceName: "Oil change"},
	}
	if err := store.PutList(ctx, "customer/appointments", want); err != nil {
		t.Fatalf("PutList: %v", err)
	}

	var got []model.Appointment
	fetchedAt, err := store.GetList(ctx, "customer/appointments", &got)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ServiceName != "Oil change" {
		t.Errorf("got %+v", got)
	}
	if fetchedAt.IsZero() {
		t.Error("fetchedAt is zero")
	}
}

func TestCacheMiss(t *testing.T) {
	store := newTestCache(t)

	var out []model.Project
	if _, err := store.GetList(context.Background(), "never/stored", &out); !errors.Is(err, ErrMiss) {
		t.Errorf("err = %v, want ErrMiss", err)
	}
}

func TestCacheOverwrite(t *testing.T) {
	store := newTestCache(t)
	ctx := context.Background()

	store.PutList(ctx, "k", []model.Project{{ID: 1}})
	store.PutList(ctx, "k", []model.Project{{ID: 2}, {ID: 3}})

	var got []model.Project
	if _, err := store.GetList(ctx, "k", &got); err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 {
		t.Errorf("got %+v, want the newer copy", got)
	}
}

func TestCachePurge(t *testing.T) {
	store := newTestCache(t)
	ctx := context.Background()

	store.PutList(ctx, "a", []model.Project{{ID: 1}})
	store.PutList(ctx, "b", []model.Appointment{{ID: 2}})

	if err := store.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	var out []model.Project
	if _, err := store.GetList(ctx, "a", &out); !errors.Is(err, ErrMiss) {
		t.Errorf("key a survived purge: %v", err)
	}
}
