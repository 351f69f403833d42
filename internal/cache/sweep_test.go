// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package cache

import (
	"context"
	"testing"
	"time"
)

func TestSweepRemovesEnumeratedKeys(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	inBounds := ListKey(OpProductList, 1, 10, StringPtr("1"), nil, nil)
	outOfBounds := ListKey(OpProductList, 11, 10, nil, nil, nil)

	c.Set(ctx, inBounds, []byte("stale"))
	c.Set(ctx, outOfBounds, []byte("stale"))

	sweeper := NewSweeper(c, DefaultSweepBounds(), OpProductList)
	sweeper.Sweep(ctx, []string{"1", "2"}, []string{"10"})

	if _, ok := c.Get(ctx, inBounds); ok {
		t.Error("entry within sweep bounds should have been removed")
	}
	// Page 11 lies outside the bound; the documented limitation is that it
	// stays stale until TTL expiry.
	if _, ok := c.Get(ctx, outOfBounds); !ok {
		t.Error("entry outside sweep bounds must survive the sweep")
	}
}

func TestSweepCoversUnfilteredAndBothTermForms(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	keys := []string{
		ListKey(OpProductList, 1, 10, nil, nil, nil),
		ListKey(OpProductList, 1, 10, nil, nil, StringPtr("")),
		ListKey(OpProductList, 3, 50, StringPtr("c1"), nil, nil),
		ListKey(OpProductList, 10, 100, nil, StringPtr("l1"), StringPtr("")),
	}
	for _, k := range keys {
		c.Set(ctx, k, []byte("stale"))
	}

	NewSweeper(c, DefaultSweepBounds(), OpProductList).Sweep(ctx, []string{"c1"}, []string{"l1"})

	for _, k := range keys {
		if _, ok := c.Get(ctx, k); ok {
			t.Errorf("key %q should have been swept", k)
		}
	}
}

func TestSweepLeavesArbitraryTermsStale(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	termed := ListKey(OpProductList, 1, 10, nil, nil, StringPtr("widget"))
	c.Set(ctx, termed, []byte("stale"))

	NewSweeper(c, DefaultSweepBounds(), OpProductList).Sweep(ctx, nil, nil)

	if _, ok := c.Get(ctx, termed); !ok {
		t.Error("non-empty search terms are outside the enumerated space and must survive")
	}
}

func TestSweepDeleteCount(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t, time.Minute)

	// Shrunken bounds for a countable enumeration: 2 pages x 2 sizes x
	// (1 unfiltered + 2 categories + 1 location) x 2 term forms = 32.
	bounds := SweepBounds{MaxPage: 2, MinSize: 10, MaxSize: 20, SizeStep: 10}
	got := NewSweeper(c, bounds, OpProductList).Sweep(ctx, []string{"a", "b"}, []string{"x"})

	if got != 32 {
		t.Errorf("sweep issued %d deletes, want 32", got)
	}
}

func TestSweepSurvivesStoreFailure(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{}, time.Minute)

	// Must not panic or error even when every delete fails.
	bounds := SweepBounds{MaxPage: 1, MinSize: 10, MaxSize: 10, SizeStep: 10}
	NewSweeper(c, bounds, OpProductList).Sweep(ctx, []string{"1"}, nil)
}

func TestNewSweeperAppliesDefaultBounds(t *testing.T) {
	c := newMemoryCache(t, time.Minute)
	s := NewSweeper(c, SweepBounds{})

	if s.Bounds() != DefaultSweepBounds() {
		t.Errorf("zero bounds should fall back to defaults, got %+v", s.Bounds())
	}
}
