package entity

import "context"

// GeoPoint is a [lat, lng] pair for the search engine's geopoint field.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// SearchDocument is the read-optimized projection of an Event that backs
// the public search index. Date-like fields are Unix seconds so the
// search engine's int64 field type can sort and range-filter on them
// directly.
type SearchDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	EventType   string `json:"event_type"`
	Description string `json:"description,omitempty"`

	StartDate int64  `json:"start_date"`
	EndDate   *int64 `json:"end_date,omitempty"`
	Year      int32  `json:"year"`
	Month     int32  `json:"month"`

	CityID     string `json:"city_id"`
	RegionID   string `json:"region_id"`
	CityName   string `json:"city_name"`
	RegionName string `json:"region_name"`
	CitySlug   string `json:"city_slug"`
	RegionSlug string `json:"region_slug"`

	VenueName string `json:"venue_name,omitempty"`
	VenueSlug string `json:"venue_slug,omitempty"`

	GeoLocation *GeoPoint `json:"geo_location,omitempty"`

	Genres     []string `json:"genres"`
	GenreSlugs []string `json:"genre_slugs"`
	Artists    []string `json:"artists"`
	ArtistSlugs []string `json:"artist_slugs"`

	OrganizerName   string `json:"organizer_name,omitempty"`
	OfficialWebsite string `json:"official_website,omitempty"`

	Status               string  `json:"status"`
	ConfidenceScore      float64 `json:"confidence_score"`
	IsVerified           bool    `json:"is_verified"`
	IsPinned             bool    `json:"is_pinned"`
	CulturalSignificance int32   `json:"cultural_significance"`
	HasTickets           bool    `json:"has_tickets"`

	UpdatedAt int64 `json:"updated_at"`
}

// SearchQuery carries the parameters the public read API translates into
// a search-engine request; the synchronizer never issues queries itself,
// but owns the schema these fields address.
type SearchQuery struct {
	Q        string
	QueryBy  []string
	FilterBy string
	SortBy   string
	FacetBy  []string
	Page     int
	PerPage  int
}

// SearchResult is the outcome of a query against the events collection.
type SearchResult struct {
	Documents []SearchDocument
	Found     int
}

// SearchClient is the narrow port the search projection synchronizer
// depends on, owned by its consumer (one concrete adapter, here backed by
// Typesense).
type SearchClient interface {
	// EnsureSchema creates the events collection with its declared schema
	// if it does not already exist.
	//
	// # Possible errors
	//
	//  - Unavailable: the search engine is unreachable.
	EnsureSchema(ctx context.Context) error

	// RecreateSchema drops and recreates the events collection, for
	// full_rebuild.
	//
	// # Possible errors
	//
	//  - Unavailable: the search engine is unreachable.
	RecreateSchema(ctx context.Context) error

	// UpsertBatch imports documents with upsert semantics, returning the
	// count of documents that failed individually (the batch itself does
	// not fail as a unit).
	//
	// # Possible errors
	//
	//  - Unavailable: the search engine is unreachable for the whole batch.
	UpsertBatch(ctx context.Context, docs []SearchDocument) (failed int, err error)

	// UpsertOne upserts a single document.
	//
	// # Possible errors
	//
	//  - Unavailable: the search engine is unreachable.
	UpsertOne(ctx context.Context, doc SearchDocument) error

	// Delete removes a document by id. Idempotent: deleting a missing
	// document is not an error.
	//
	// # Possible errors
	//
	//  - Unavailable: the search engine is unreachable.
	Delete(ctx context.Context, id string) error

	// Query executes a search against the events collection.
	//
	// # Possible errors
	//
	//  - Unavailable: the search engine is unreachable.
	Query(ctx context.Context, q SearchQuery) (*SearchResult, error)

	// Health reports whether the search engine is reachable and ready.
	Health(ctx context.Context) error
}
