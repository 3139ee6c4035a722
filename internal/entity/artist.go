// Package entity defines core domain entities and business logic interfaces.
package entity

import (
	"context"
	"time"
)

// Artist represents a musical artist or group attached to events as a
// many-to-many relation. Unlike City/Region, artists accumulate from
// ingestion; like venues and organizers they are looked up by exact name
// (ArtistRepository.GetByName), with no fuzzy matching.
type Artist struct {
	// ID is the unique internal identifier for the artist.
	ID string
	// Name is the display name of the artist or band.
	Name string
	// Slug is the URL-safe, unique identifier derived from Name.
	Slug string
	// CreateTime is the timestamp when the artist record was first created.
	CreateTime time.Time
}

// Genre is a fixed reference entity that events are tagged with. Genres
// are looked up by exact normalized name only
// (GenreRepository.FindByNormalizedName); unlike City there is no
// Levenshtein fallback.
type Genre struct {
	// ID is the unique identifier for the genre.
	ID string
	// Name is the canonical display name (e.g. "Gnaoua", "Chaabi").
	Name string
	// Slug is the URL-safe, unique identifier derived from Name.
	Slug string
}

// ArtistRepository defines persistence operations for artists and their
// many-to-many linkage to events.
type ArtistRepository interface {
	// Create persists a new artist record.
	//
	// # Possible errors
	//
	//   - InvalidArgument: the artist name is empty.
	Create(ctx context.Context, artist *Artist) error

	// GetByName retrieves an artist by its exact canonical name.
	//
	// # Possible errors
	//
	//   - NotFound: no artist exists with the given name.
	GetByName(ctx context.Context, name string) (*Artist, error)

	// ListByEvent returns all artists linked to an event.
	//
	// # Possible errors
	//
	//   - Internal: database query failure.
	ListByEvent(ctx context.Context, eventID string) ([]*Artist, error)

	// LinkToEvent attaches an artist to an event. Idempotent: linking the
	// same pair twice is a no-op.
	//
	// # Possible errors
	//
	//   - NotFound: the artist or event does not exist.
	LinkToEvent(ctx context.Context, eventID, artistID string) error

	// RelinkEvent moves every artist linkage from one event to another,
	// skipping pairs that would duplicate an existing linkage. Used by the
	// editorial merge command.
	//
	// # Possible errors
	//
	//   - Internal: database execution failure.
	RelinkEvent(ctx context.Context, fromEventID, toEventID string) error
}

// GenreRepository defines persistence and lookup operations for the genre
// reference table.
type GenreRepository interface {
	// FindByNormalizedName performs an exact lookup against a genre's
	// normalized name.
	//
	// # Possible errors
	//
	//   - NotFound: no genre matches.
	FindByNormalizedName(ctx context.Context, normalized string) (*Genre, error)

	// ListByEvent returns all genres linked to an event.
	//
	// # Possible errors
	//
	//   - Internal: database query failure.
	ListByEvent(ctx context.Context, eventID string) ([]*Genre, error)

	// LinkToEvent attaches a genre to an event. Idempotent.
	//
	// # Possible errors
	//
	//   - NotFound: the genre or event does not exist.
	LinkToEvent(ctx context.Context, eventID, genreID string) error
}
