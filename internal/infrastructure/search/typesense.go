// Package search implements entity.SearchClient against Typesense, the
// concrete search engine the query vocabulary in the document and query
// shapes (query_by, filter_by, facet_by, page/per_page, infix matching)
// is modeled on.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/typesense/typesense-go/v3/typesense"
	"github.com/typesense/typesense-go/v3/typesense/api"
	"github.com/typesense/typesense-go/v3/typesense/api/pointer"
)

const collectionName = "events"

// Client wraps a Typesense client scoped to the events collection.
type Client struct {
	ts *typesense.Client
}

// New builds a search client against a Typesense node.
func New(serverURL, apiKey string) *Client {
	return &Client{
		ts: typesense.NewClient(
			typesense.WithServer(serverURL),
			typesense.WithAPIKey(apiKey),
		),
	}
}

var _ entity.SearchClient = (*Client)(nil)

// schema declares the events collection's fields, matching SearchDocument
// field-for-field.
func schema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "slug", Type: "string"},
			{Name: "event_type", Type: "string", Facet: pointer.True()},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "start_date", Type: "int64"},
			{Name: "end_date", Type: "int64", Optional: pointer.True()},
			{Name: "year", Type: "int32", Facet: pointer.True()},
			{Name: "month", Type: "int32", Facet: pointer.True()},
			{Name: "city_id", Type: "string", Facet: pointer.True()},
			{Name: "region_id", Type: "string", Facet: pointer.True()},
			{Name: "city_name", Type: "string", Facet: pointer.True()},
			{Name: "region_name", Type: "string", Facet: pointer.True()},
			{Name: "city_slug", Type: "string"},
			{Name: "region_slug", Type: "string"},
			{Name: "venue_name", Type: "string", Optional: pointer.True()},
			{Name: "venue_slug", Type: "string", Optional: pointer.True()},
			{Name: "geo_location", Type: "geopoint", Optional: pointer.True()},
			{Name: "genres", Type: "string[]", Facet: pointer.True()},
			{Name: "genre_slugs", Type: "string[]"},
			{Name: "artists", Type: "string[]", Facet: pointer.True()},
			{Name: "artist_slugs", Type: "string[]"},
			{Name: "organizer_name", Type: "string", Optional: pointer.True()},
			{Name: "official_website", Type: "string", Optional: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "confidence_score", Type: "float"},
			{Name: "is_verified", Type: "bool", Facet: pointer.True()},
			{Name: "is_pinned", Type: "bool", Facet: pointer.True()},
			{Name: "cultural_significance", Type: "int32"},
			{Name: "has_tickets", Type: "bool", Facet: pointer.True()},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("start_date"),
	}
}

// EnsureSchema creates the events collection if it is not already
// present; an existing collection is left untouched.
func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.ts.Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}
	if _, err := c.ts.Collections().Create(ctx, schema()); err != nil {
		return fmt.Errorf("create events collection: %w", err)
	}
	return nil
}

// RecreateSchema drops and recreates the events collection, for
// full_rebuild.
func (c *Client) RecreateSchema(ctx context.Context) error {
	_, _ = c.ts.Collection(collectionName).Delete(ctx)
	if _, err := c.ts.Collections().Create(ctx, schema()); err != nil {
		return fmt.Errorf("recreate events collection: %w", err)
	}
	return nil
}

// UpsertBatch imports documents with upsert semantics, in batches of up
// to 100 as the caller chunks them; the import itself does not fail as a
// unit — per-document failures are counted and returned.
func (c *Client) UpsertBatch(ctx context.Context, docs []entity.SearchDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	raw := make([]any, len(docs))
	for i, d := range docs {
		raw[i] = d
	}

	action := api.UPSERT
	results, err := c.ts.Collection(collectionName).Documents().Import(ctx, raw, &api.ImportDocumentsParams{Action: &action})
	if err != nil {
		return 0, fmt.Errorf("import batch to events collection: %w", err)
	}

	var failed int
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	return failed, nil
}

// UpsertOne upserts a single document.
func (c *Client) UpsertOne(ctx context.Context, doc entity.SearchDocument) error {
	if _, err := c.ts.Collection(collectionName).Document(doc.ID).Upsert(ctx, doc); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes a document by id. Deleting a missing document is not an
// error.
func (c *Client) Delete(ctx context.Context, id string) error {
	if _, err := c.ts.Collection(collectionName).Document(id).Delete(ctx); err != nil {
		if strings.Contains(err.Error(), "404") {
			return nil
		}
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Query executes a search against the events collection, translating
// SearchQuery's vocabulary directly onto Typesense's parameters.
func (c *Client) Query(ctx context.Context, q entity.SearchQuery) (*entity.SearchResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 20
	}

	params := &api.SearchCollectionParams{
		Q:       &q.Q,
		QueryBy: pointer.String(strings.Join(q.QueryBy, ",")),
		Page:    &page,
		PerPage: &perPage,
	}
	if q.FilterBy != "" {
		params.FilterBy = &q.FilterBy
	}
	if q.SortBy != "" {
		params.SortBy = &q.SortBy
	}
	if len(q.FacetBy) > 0 {
		facetBy := strings.Join(q.FacetBy, ",")
		params.FacetBy = &facetBy
	}

	resp, err := c.ts.Collection(collectionName).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search events collection: %w", err)
	}

	result := &entity.SearchResult{}
	if resp.Found != nil {
		result.Found = *resp.Found
	}
	if resp.Hits == nil {
		return result, nil
	}

	for _, hit := range *resp.Hits {
		if hit.Document == nil {
			continue
		}
		raw, err := json.Marshal(*hit.Document)
		if err != nil {
			continue
		}
		var doc entity.SearchDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		result.Documents = append(result.Documents, doc)
	}
	return result, nil
}

// Health reports whether the Typesense node is reachable and ready.
func (c *Client) Health(ctx context.Context) error {
	health, err := c.ts.Health(ctx, 2000)
	if err != nil {
		return fmt.Errorf("typesense health check: %w", err)
	}
	if health == nil || !health.Ok {
		return fmt.Errorf("typesense reports unhealthy")
	}
	return nil
}
