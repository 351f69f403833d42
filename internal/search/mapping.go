// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/char/asciifolding"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Analyzer names. The index-time analyzer explodes each token into edge
// n-grams (1..20) for prefix/partial matching; the search-time analyzer is
// identical minus the n-gram filter so queries are not themselves
// gram-exploded.
const (
	analyzerPartialIndex  = "partial_index"
	analyzerPartialSearch = "partial_search"

	edgeNgramFilter = "edge_ngram_partial"

	edgeNgramMin = 1
	edgeNgramMax = 20
)

// buildIndexMapping assembles the mapping for one collection, registering the
// custom analyzers first. A failure here (e.g. an analysis component missing
// from the build) is a hard schema-creation error: no index exists afterward
// to degrade into.
func buildIndexMapping(collection string) (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomTokenFilter(edgeNgramFilter, map[string]interface{}{
		"type": edgengram.Name,
		"min":  float64(edgeNgramMin),
		"max":  float64(edgeNgramMax),
	}); err != nil {
		return nil, fmt.Errorf("failed to register edge n-gram filter: %w", err)
	}

	if err := im.AddCustomAnalyzer(analyzerPartialIndex, map[string]interface{}{
		"type":          custom.Name,
		"char_filters":  []string{asciifolding.Name},
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, edgeNgramFilter},
	}); err != nil {
		return nil, fmt.Errorf("failed to register index analyzer: %w", err)
	}

	if err := im.AddCustomAnalyzer(analyzerPartialSearch, map[string]interface{}{
		"type":          custom.Name,
		"char_filters":  []string{asciifolding.Name},
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("failed to register search analyzer: %w", err)
	}

	var doc *mapping.DocumentMapping
	switch collection {
	case CollectionProducts:
		doc = productDocumentMapping()
	case CollectionMovements:
		doc = movementDocumentMapping()
	case CollectionAttributes:
		doc = attributeDocumentMapping()
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	im.DefaultMapping = doc
	im.DefaultAnalyzer = analyzerPartialIndex
	return im, nil
}

// partialTextField is a text field analyzed for partial/prefix matching.
func partialTextField() *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = analyzerPartialIndex
	return f
}

// keywordField is an unanalyzed field for exact filtering.
func keywordField() *mapping.FieldMapping {
	return bleve.NewKeywordFieldMapping()
}

// numericField is an explicitly typed numeric field.
func numericField() *mapping.FieldMapping {
	return bleve.NewNumericFieldMapping()
}

// dateField is an explicitly typed date field.
func dateField() *mapping.FieldMapping {
	return bleve.NewDateTimeFieldMapping()
}

func productDocumentMapping() *mapping.DocumentMapping {
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", keywordField())
	doc.AddFieldMappingsAt("sku", keywordField())
	doc.AddFieldMappingsAt("name", partialTextField())
	doc.AddFieldMappingsAt("description", partialTextField())
	doc.AddFieldMappingsAt("category_id", keywordField())
	doc.AddFieldMappingsAt("category_name", keywordField())
	doc.AddFieldMappingsAt("location_id", keywordField())
	doc.AddFieldMappingsAt("location_name", keywordField())
	doc.AddFieldMappingsAt("quantity", numericField())
	doc.AddFieldMappingsAt("min_quantity", numericField())
	doc.AddFieldMappingsAt("price", numericField())
	doc.AddFieldMappingsAt("created_at", dateField())
	doc.AddFieldMappingsAt("updated_at", dateField())
	doc.AddFieldMappingsAt("sort_ts", numericField())
	return doc
}

func movementDocumentMapping() *mapping.DocumentMapping {
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", keywordField())
	doc.AddFieldMappingsAt("product_id", keywordField())
	doc.AddFieldMappingsAt("product_name", partialTextField())
	doc.AddFieldMappingsAt("product_sku", keywordField())
	doc.AddFieldMappingsAt("type", keywordField())
	doc.AddFieldMappingsAt("quantity", numericField())
	doc.AddFieldMappingsAt("note", partialTextField())
	doc.AddFieldMappingsAt("created_at", dateField())
	doc.AddFieldMappingsAt("sort_ts", numericField())
	return doc
}

func attributeDocumentMapping() *mapping.DocumentMapping {
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", keywordField())
	doc.AddFieldMappingsAt("product_id", keywordField())
	doc.AddFieldMappingsAt("product_name", partialTextField())
	doc.AddFieldMappingsAt("name", partialTextField())
	doc.AddFieldMappingsAt("value", partialTextField())
	doc.AddFieldMappingsAt("created_at", dateField())
	doc.AddFieldMappingsAt("updated_at", dateField())
	doc.AddFieldMappingsAt("sort_ts", numericField())
	return doc
}
