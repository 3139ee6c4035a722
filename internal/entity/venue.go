package entity

import (
	"context"
	"time"
)

// Venue represents a physical location where events are hosted. Venues
// accumulate from ingestion; unlike City and Region they are not a fixed
// seed table.
type Venue struct {
	// ID is the unique identifier for the venue (UUID).
	ID string
	// Name is the canonical display name of the venue.
	Name string
	// Slug is the URL-safe, unique identifier derived from Name.
	Slug string
	// CityID is the city this venue is located in, if known.
	CityID *string
	// Latitude and Longitude locate the venue, if known.
	Latitude  *float64
	Longitude *float64
	// CreateTime is the timestamp when the venue was created.
	CreateTime time.Time
	// UpdateTime is the timestamp when the venue was last updated.
	UpdateTime time.Time
}

// Organizer represents the entity that produces or presents an event.
// Organizers accumulate from ingestion like venues.
type Organizer struct {
	// ID is the unique identifier for the organizer.
	ID string
	// Name is the display name of the organizer.
	Name string
	// Slug is the URL-safe, unique identifier derived from Name.
	Slug string
	// CreateTime is the timestamp when the organizer was created.
	CreateTime time.Time
}

// VenueRepository defines the data access interface for venues.
type VenueRepository interface {
	// Create persists a new venue.
	//
	// # Possible errors
	//
	//  - InvalidArgument: the venue name is empty.
	Create(ctx context.Context, venue *Venue) error

	// Get retrieves a venue by ID.
	//
	// # Possible errors
	//
	//  - NotFound: no venue exists with the given ID.
	Get(ctx context.Context, id string) (*Venue, error)

	// GetByName retrieves a venue by its exact canonical name, used by the
	// merge writer to resolve the venue a candidate refers to.
	//
	// # Possible errors
	//
	//  - NotFound: no venue exists with the given name.
	GetByName(ctx context.Context, name string) (*Venue, error)
}

// OrganizerRepository defines the data access interface for organizers.
type OrganizerRepository interface {
	// Create persists a new organizer.
	//
	// # Possible errors
	//
	//  - InvalidArgument: the organizer name is empty.
	Create(ctx context.Context, organizer *Organizer) error

	// Get retrieves an organizer by ID.
	//
	// # Possible errors
	//
	//  - NotFound: no organizer exists with the given ID.
	Get(ctx context.Context, id string) (*Organizer, error)

	// GetByName retrieves an organizer by its exact canonical name.
	//
	// # Possible errors
	//
	//  - NotFound: no organizer exists with the given name.
	GetByName(ctx context.Context, name string) (*Organizer, error)
}
