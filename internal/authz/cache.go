// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package authz

import (
	"strings"
	"sync"
	"time"
)

// decisionCache caches enforcement decisions per (subject, object, action).
type decisionCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]decision
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &decisionCache{
		ttl:   ttl,
		items: make(map[string]decision),
	}
}

func cacheKey(subject, object, action string) string {
	return subject + ":" + object + ":" + action
}

func (c *decisionCache) get(subject, object, action string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.items[cacheKey(subject, object, action)]
	if !ok || time.Now().After(d.expiresAt) {
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistic expiry sweep; the map stays tiny (roles x routes), so
	// a dedicated cleanup goroutine is not worth its shutdown plumbing.
	now := time.Now()
	for key, d := range c.items {
		if now.After(d.expiresAt) {
			delete(c.items, key)
		}
	}

	c.items[cacheKey(subject, object, action)] = decision{
		allowed:   allowed,
		expiresAt: now.Add(c.ttl),
	}
}

// invalidateSubject drops all cached decisions for a subject, called when
// its role assignments change.
func (c *decisionCache) invalidateSubject(subject string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := subject + ":"
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}
