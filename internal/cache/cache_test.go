// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// failingStore returns errors from every operation, to verify that the Cache
// layer never lets them escape.
type failingStore struct{}

var errStoreDown = errors.New("store unreachable")

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error { return errStoreDown }
func (failingStore) Delete(context.Context, string) error                     { return errStoreDown }
func (failingStore) Exists(context.Context, string) (bool, error)             { return false, errStoreDown }
func (failingStore) Close() error                                             { return nil }

func newMemoryCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return New(store, ttl)
}

func TestCacheSetGetWithinTTL(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit within TTL")
	}
	if string(got) != "v" {
		t.Errorf("got %q, want %q", got, "v")
	}
}

func TestCacheGetAfterTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, 50*time.Millisecond)

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestCacheExplicitTTLOverridesDefault(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, 10*time.Millisecond)

	c.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("expected hit: explicit TTL should outlive default")
	}
}

func TestCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	c.Set(ctx, "k", []byte("v"))
	c.Delete(ctx, "k")

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCacheExists(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	if c.Exists(ctx, "k") {
		t.Error("expected absent before set")
	}
	c.Set(ctx, "k", []byte("v"))
	if !c.Exists(ctx, "k") {
		t.Error("expected present after set")
	}
}

// Store errors must degrade to miss (get/exists) or be swallowed (set/delete);
// no operation may panic or surface an error.
func TestCacheBestEffortOnStoreErrors(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{}, time.Minute)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss when store errors")
	}
	if c.Exists(ctx, "k") {
		t.Error("expected absent when store errors")
	}

	// Must return normally.
	c.Set(ctx, "k", []byte("v"))
	c.SetWithTTL(ctx, "k", []byte("v"), time.Second)
	c.Delete(ctx, "k")
	c.SetJSON(ctx, "k", map[string]string{"a": "b"})
}

func TestCacheJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c.SetJSON(ctx, "k", payload{Name: "widget", Count: 3})

	var got payload
	if !c.GetJSON(ctx, "k", &got) {
		t.Fatal("expected JSON hit")
	}
	if got.Name != "widget" || got.Count != 3 {
		t.Errorf("got %+v, want {widget 3}", got)
	}
}

// An undecodable entry must be reported as a miss with the target untouched,
// never as a corrupt object.
func TestCacheGetJSONUndecodableIsMiss(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	c.Set(ctx, "k", []byte("{not json"))

	var got map[string]string
	if c.GetJSON(ctx, "k", &got) {
		t.Error("expected miss for undecodable entry")
	}
	if got != nil {
		t.Errorf("expected target untouched, got %v", got)
	}
}

func TestCacheSetJSONUnencodableSwallowed(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	// Channels cannot be marshaled; the set must be silently skipped.
	c.SetJSON(ctx, "k", make(chan int))

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected no entry after failed encode")
	}
}

// DeleteByPattern is an explicit no-op; nothing may be removed.
func TestDeleteByPatternIsNoOp(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	c.Set(ctx, "products:list::1::10::nil::nil::nil", []byte("v"))
	c.DeleteByPattern(ctx, "products:list::*")

	if _, ok := c.Get(ctx, "products:list::1::10::nil::nil::nil"); !ok {
		t.Error("pattern delete must not remove entries")
	}
}

func TestMemoryStoreReap(t *testing.T) {
	store := NewMemoryStore()
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	_ = store.Set(ctx, "old", []byte("v"), time.Millisecond)
	_ = store.Set(ctx, "new", []byte("v"), time.Minute)
	time.Sleep(10 * time.Millisecond)

	store.reap()

	if store.Len() != 1 {
		t.Errorf("expected 1 entry after reap, got %d", store.Len())
	}
}

func TestCacheStatsCounters(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	c.Get(ctx, "absent")
	c.Set(ctx, "k", []byte("v"))
	c.Get(ctx, "k")
	c.Delete(ctx, "k")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.Deletes != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.Entries != 0 {
		t.Errorf("expected 0 live entries after delete, got %d", stats.Entries)
	}
}
