package entity

import (
	"context"
	"time"
)

// Region is a first-level administrative division. Morocco's twelve
// regions are seeded as a fixed reference table; they are never created
// by ingestion.
type Region struct {
	// ID is the unique identifier for the region.
	ID string
	// Name is the canonical display name (e.g. "Marrakech-Safi").
	Name string
	// Slug is the URL-safe, unique identifier derived from Name.
	Slug string
	// CreateTime is when the region row was seeded.
	CreateTime time.Time
}

// City is a fuzzy-matched reference entity. Cities accumulate name
// variants over time (sources spell the same city inconsistently), but
// the canonical row itself is part of a fixed seed table, not created by
// ingestion.
type City struct {
	// ID is the unique identifier for the city.
	ID string
	// Name is the canonical display name (e.g. "Essaouira").
	Name string
	// Slug is the URL-safe, unique identifier derived from Name.
	Slug string
	// RegionID is the region this city belongs to.
	RegionID string
	// NormalizedName is the diacritic-stripped, lowercased form used for
	// exact-match lookup before falling back to Levenshtein search.
	NormalizedName string
	// Latitude and Longitude locate the city for the search engine's
	// geo_location field. Zero value means unset.
	Latitude  float64
	Longitude float64
	// CreateTime is when the city row was seeded.
	CreateTime time.Time
}

// CityVariant is an alternate spelling of a city name observed from
// ingestion (e.g. "Essaouira", "Mogador", "essaouira ville"). Variants
// widen exact-match coverage so the Levenshtein fallback is needed less
// often.
type CityVariant struct {
	CityID         string
	NormalizedName string
}

// CityRepository defines persistence and lookup operations for the city
// reference table.
type CityRepository interface {
	// Get retrieves a city by ID.
	//
	// # Possible errors
	//
	//  - NotFound: no city exists with the given ID.
	Get(ctx context.Context, id string) (*City, error)

	// FindByNormalizedName performs an exact lookup against the city's
	// canonical normalized name or any registered variant.
	//
	// # Possible errors
	//
	//  - NotFound: no city or variant matches exactly.
	FindByNormalizedName(ctx context.Context, normalized string) (*City, error)

	// ListAll returns every seeded city, for Levenshtein fallback search
	// and for the Text Normalizer's in-process candidate table.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListAll(ctx context.Context) ([]*City, error)

	// AddVariant records a new observed spelling against an existing city,
	// so future exact lookups succeed without a fuzzy match.
	//
	// # Possible errors
	//
	//  - NotFound: the referenced city does not exist.
	//  - AlreadyExists: the variant is already registered (for this or
	//    another city); callers should treat this as a no-op.
	AddVariant(ctx context.Context, variant CityVariant) error
}

// RegionRepository defines persistence operations for the region reference
// table.
type RegionRepository interface {
	// Get retrieves a region by ID.
	//
	// # Possible errors
	//
	//  - NotFound: no region exists with the given ID.
	Get(ctx context.Context, id string) (*Region, error)

	// ListAll returns every seeded region.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListAll(ctx context.Context) ([]*Region, error)
}
