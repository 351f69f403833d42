// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package search implements the secondary full-text index over Bleve.
//
// Three logical collections exist (products, stock-movements,
// product-attributes), each a Bleve index on disk with an edge-n-gram
// index-time analyzer for partial matching. Documents are point-in-time
// copies of primary-store rows: they are stale from the moment their source
// entity (or a joined display name) mutates until the next upsert or
// reindex.
//
// Schemas are created lazily, only if the collection does not yet exist.
// There is no migration path: changing a mapping requires deleting the
// collection and reindexing.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	json "github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/logging"
)

// Engine manages the on-disk Bleve indexes behind the logical collections.
// All methods are safe for concurrent use. Concurrent DeleteCollection and
// EnsureSchema calls (two admins reindexing at once) are not mutually
// excluded beyond per-map locking; interleaved delete/recreate of the same
// collection is an accepted race.
type Engine struct {
	path string

	mu      sync.Mutex
	indexes map[string]bleve.Index
}

// NewEngine creates an engine rooted at path. No index is opened until first
// use.
func NewEngine(path string) *Engine {
	return &Engine{
		path:    path,
		indexes: make(map[string]bleve.Index),
	}
}

// collectionPath returns the on-disk location of a collection.
func (e *Engine) collectionPath(collection string) string {
	return filepath.Join(e.path, collection)
}

// EnsureSchema opens the collection, creating it with its mapping and
// analyzer settings only if it does not yet exist.
func (e *Engine) EnsureSchema(collection string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.indexLocked(collection)
	return err
}

// index returns the open Bleve index for collection, opening or creating it
// on first use.
func (e *Engine) index(collection string) (bleve.Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexLocked(collection)
}

// indexLocked must be called with e.mu held.
func (e *Engine) indexLocked(collection string) (bleve.Index, error) {
	if idx, ok := e.indexes[collection]; ok {
		return idx, nil
	}

	path := e.collectionPath(collection)
	idx, err := bleve.Open(path)
	if err == nil {
		e.indexes[collection] = idx
		return idx, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist {
		return nil, fmt.Errorf("failed to open collection %q: %w", collection, err)
	}

	im, err := buildIndexMapping(collection)
	if err != nil {
		return nil, fmt.Errorf("schema creation failed for %q: %w", collection, err)
	}
	idx, err = bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("schema creation failed for %q: %w", collection, err)
	}

	logging.Info().Str("collection", collection).Msg("search collection created")
	e.indexes[collection] = idx
	return idx, nil
}

// Upsert indexes (or fully overwrites) a document. Callers invoke this
// fire-and-forget relative to the write that triggered it: a failure here is
// logged by the caller and never fails that write.
//
// The document is round-tripped through JSON so that the index sees the
// snake_case wire field names the mappings are keyed on, not Go struct
// field names.
func (e *Engine) Upsert(collection, id string, doc interface{}) error {
	idx, err := e.index(collection)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	if err := idx.Index(id, fields); err != nil {
		return fmt.Errorf("failed to index %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document from a collection. Removing an absent id is not
// an error.
func (e *Engine) Delete(collection, id string) error {
	idx, err := e.index(collection)
	if err != nil {
		return err
	}
	if err := idx.Delete(id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// CountDocuments returns the number of documents in a collection.
func (e *Engine) CountDocuments(collection string) (uint64, error) {
	idx, err := e.index(collection)
	if err != nil {
		return 0, err
	}
	count, err := idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return count, nil
}

// DeleteCollection closes and removes a collection wholesale. The next
// EnsureSchema recreates it empty.
func (e *Engine) DeleteCollection(collection string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx, ok := e.indexes[collection]; ok {
		if err := idx.Close(); err != nil {
			return fmt.Errorf("failed to close collection %q: %w", collection, err)
		}
		delete(e.indexes, collection)
	}

	if err := os.RemoveAll(e.collectionPath(collection)); err != nil {
		return fmt.Errorf("failed to remove collection %q: %w", collection, err)
	}

	logging.Info().Str("collection", collection).Msg("search collection deleted")
	return nil
}

// Close closes all open indexes.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for name, idx := range e.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close collection %q: %w", name, err)
		}
		delete(e.indexes, name)
	}
	return firstErr
}
