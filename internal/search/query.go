// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/storekeep/storekeep/internal/metrics"
	"github.com/storekeep/storekeep/internal/models"
)

// shortTermLimit is the term length (in runes) at or below which queries use
// zero edit distance and permissive OR semantics. Longer terms get automatic
// fuzziness and a 75% minimum-should-match, biasing toward precision.
const shortTermLimit = 3

// minShouldMatchRatio applies to multi-token queries above the short-term
// limit.
const minShouldMatchRatio = 0.75

// ProductQuery is a free-text product search with optional exact filters.
type ProductQuery struct {
	Term       string
	CategoryID string
	LocationID string
	Page       int
	PageSize   int
}

// boostedField pairs an analyzed text field with its relevance boost.
type boostedField struct {
	name  string
	boost float64
}

// autoFuzziness mirrors the automatic edit-distance policy: very short
// tokens match exactly, tokens up to five characters tolerate one edit,
// longer tokens two.
func autoFuzziness(token string) int {
	switch n := len([]rune(token)); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// textQuery builds the boolean text query for term over the given analyzed
// fields plus exact keyword fields.
//
// Terms of length <= shortTermLimit produce a permissive disjunction: any
// single boosted field matching (zero edit distance, OR within the field) is
// enough. Longer terms split into tokens; within each field at least 75% of
// tokens must match, each token with automatic fuzziness.
func textQuery(term string, textFields []boostedField, keywordFields []boostedField) query.Query {
	term = strings.TrimSpace(term)
	var perField []query.Query

	if len([]rune(term)) <= shortTermLimit {
		for _, f := range textFields {
			mq := bleve.NewMatchQuery(term)
			mq.SetField(f.name)
			mq.SetBoost(f.boost)
			mq.SetFuzziness(0)
			mq.SetOperator(query.MatchQueryOperatorOr)
			mq.Analyzer = analyzerPartialSearch
			perField = append(perField, mq)
		}
	} else {
		tokens := strings.Fields(term)
		required := int(math.Ceil(minShouldMatchRatio * float64(len(tokens))))
		for _, f := range textFields {
			var perToken []query.Query
			for _, token := range tokens {
				mq := bleve.NewMatchQuery(token)
				mq.SetField(f.name)
				mq.SetBoost(f.boost)
				mq.SetFuzziness(autoFuzziness(token))
				mq.Analyzer = analyzerPartialSearch
				perToken = append(perToken, mq)
			}
			fieldQuery := bleve.NewDisjunctionQuery(perToken...)
			fieldQuery.SetMin(float64(required))
			fieldQuery.SetBoost(f.boost)
			perField = append(perField, fieldQuery)
		}
	}

	// Exact code/name fields participate at full term value, unanalyzed.
	for _, f := range keywordFields {
		tq := bleve.NewTermQuery(term)
		tq.SetField(f.name)
		tq.SetBoost(f.boost)
		perField = append(perField, tq)
	}

	dq := bleve.NewDisjunctionQuery(perField...)
	dq.SetMin(1)
	return dq
}

// SearchProducts queries the products collection with boosted multi-field
// matching and exact category/location filters, sorted by most recent
// update-or-creation descending.
func (e *Engine) SearchProducts(ctx context.Context, q ProductQuery) (*models.Page[models.Product], error) {
	full := textQuery(q.Term,
		[]boostedField{
			{name: "name", boost: 4.0},
			{name: "description", boost: 2.0},
		},
		[]boostedField{
			{name: "category_name", boost: 2.0},
			{name: "sku", boost: 1.5},
		},
	)

	var clauses []query.Query
	clauses = append(clauses, full)
	if q.CategoryID != "" {
		tq := bleve.NewTermQuery(q.CategoryID)
		tq.SetField("category_id")
		clauses = append(clauses, tq)
	}
	if q.LocationID != "" {
		tq := bleve.NewTermQuery(q.LocationID)
		tq.SetField("location_id")
		clauses = append(clauses, tq)
	}

	var finalQuery query.Query = clauses[0]
	if len(clauses) > 1 {
		finalQuery = bleve.NewConjunctionQuery(clauses...)
	}

	result, err := e.run(ctx, CollectionProducts, finalQuery, q.Page, q.PageSize)
	if err != nil {
		return nil, err
	}

	items := make([]models.Product, 0, len(result.Hits))
	for _, hit := range result.Hits {
		items = append(items, productFromFields(hit.ID, hit.Fields))
	}
	return models.NewPage(items, q.Page, q.PageSize, int64(result.Total)), nil
}

// SearchMovements queries the stock-movements collection.
func (e *Engine) SearchMovements(ctx context.Context, term string, page, pageSize int) (*models.Page[models.StockMovement], error) {
	full := textQuery(term,
		[]boostedField{
			{name: "product_name", boost: 3.0},
			{name: "note", boost: 2.0},
		},
		[]boostedField{
			{name: "product_sku", boost: 1.5},
		},
	)

	result, err := e.run(ctx, CollectionMovements, full, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]models.StockMovement, 0, len(result.Hits))
	for _, hit := range result.Hits {
		items = append(items, movementFromFields(hit.ID, hit.Fields))
	}
	return models.NewPage(items, page, pageSize, int64(result.Total)), nil
}

// SearchAttributes queries the product-attributes collection.
func (e *Engine) SearchAttributes(ctx context.Context, term string, page, pageSize int) (*models.Page[models.ProductAttribute], error) {
	full := textQuery(term,
		[]boostedField{
			{name: "name", boost: 3.0},
			{name: "value", boost: 2.0},
			{name: "product_name", boost: 2.0},
		},
		nil,
	)

	result, err := e.run(ctx, CollectionAttributes, full, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]models.ProductAttribute, 0, len(result.Hits))
	for _, hit := range result.Hits {
		items = append(items, attributeFromFields(hit.ID, hit.Fields))
	}
	return models.NewPage(items, page, pageSize, int64(result.Total)), nil
}

// run executes a query against a collection with pagination and the standard
// most-recent-first sort.
func (e *Engine) run(ctx context.Context, collection string, q query.Query, page, pageSize int) (*bleve.SearchResult, error) {
	idx, err := e.index(collection)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	req := bleve.NewSearchRequestOptions(q, pageSize, (page-1)*pageSize, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"-sort_ts", "-_score"})

	start := time.Now()
	result, err := idx.SearchInContext(ctx, req)
	metrics.SearchQueryDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchIndexErrors.WithLabelValues(collection, "search").Inc()
		return nil, fmt.Errorf("search %s failed: %w", collection, err)
	}
	return result, nil
}

// Field extraction helpers. Stored bleve fields come back as interface{}
// (strings for text/keyword/date, float64 for numeric).

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldFloat(fields map[string]interface{}, key string) float64 {
	if v, ok := fields[key].(float64); ok {
		return v
	}
	return 0
}

func fieldTime(fields map[string]interface{}, key string) time.Time {
	if v, ok := fields[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func productFromFields(id string, fields map[string]interface{}) models.Product {
	doc := ProductDocument{
		ID:           id,
		SKU:          fieldString(fields, "sku"),
		Name:         fieldString(fields, "name"),
		Description:  fieldString(fields, "description"),
		CategoryID:   fieldString(fields, "category_id"),
		CategoryName: fieldString(fields, "category_name"),
		LocationID:   fieldString(fields, "location_id"),
		LocationName: fieldString(fields, "location_name"),
		Quantity:     fieldFloat(fields, "quantity"),
		MinQuantity:  fieldFloat(fields, "min_quantity"),
		Price:        fieldFloat(fields, "price"),
		CreatedAt:    fieldTime(fields, "created_at"),
		UpdatedAt:    fieldTime(fields, "updated_at"),
	}
	return doc.Product()
}

func movementFromFields(id string, fields map[string]interface{}) models.StockMovement {
	return models.StockMovement{
		ID:          id,
		ProductID:   fieldString(fields, "product_id"),
		ProductName: fieldString(fields, "product_name"),
		ProductSKU:  fieldString(fields, "product_sku"),
		Type:        models.MovementType(fieldString(fields, "type")),
		Quantity:    int64(fieldFloat(fields, "quantity")),
		Note:        fieldString(fields, "note"),
		CreatedAt:   fieldTime(fields, "created_at"),
	}
}

func attributeFromFields(id string, fields map[string]interface{}) models.ProductAttribute {
	return models.ProductAttribute{
		ID:          id,
		ProductID:   fieldString(fields, "product_id"),
		ProductName: fieldString(fields, "product_name"),
		Name:        fieldString(fields, "name"),
		Value:       fieldString(fields, "value"),
		CreatedAt:   fieldTime(fields, "created_at"),
		UpdatedAt:   fieldTime(fields, "updated_at"),
	}
}
