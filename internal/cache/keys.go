// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package cache

import (
	"strconv"
	"strings"
)

// KeySeparator delimits cache key segments. Keys are written and later swept
// using the same construction, so the format must stay stable within one
// deployment.
const KeySeparator = "::"

// nilSegment marks an absent (nil) parameter. An empty string is a different
// segment: absent and empty-string search terms have historically produced
// distinct cache keys, and the sweeper enumerates both.
const nilSegment = "nil"

// Operation tags for list cache keys.
const (
	OpProductList   = "products:list"
	OpMovementList  = "movements:list"
	OpAttributeList = "attributes:list"
)

// ListKey builds the deterministic cache key for a paginated list query:
// operation::page::pageSize::categoryID::locationID::term, with nil pointers
// rendered as the nil sentinel.
func ListKey(operation string, page, pageSize int, categoryID, locationID, term *string) string {
	segments := []string{
		operation,
		strconv.Itoa(page),
		strconv.Itoa(pageSize),
		optionalSegment(categoryID),
		optionalSegment(locationID),
		optionalSegment(term),
	}
	return strings.Join(segments, KeySeparator)
}

// optionalSegment renders an optional key parameter.
func optionalSegment(v *string) string {
	if v == nil {
		return nilSegment
	}
	return *v
}

// keyOperation extracts the operation tag from a cache key for metric labels.
func keyOperation(key string) string {
	if idx := strings.Index(key, KeySeparator); idx > 0 {
		return key[:idx]
	}
	return key
}

// StringPtr returns a pointer to s. Convenience for building list keys from
// optional request parameters.
func StringPtr(s string) *string {
	return &s
}
