package entity

import (
	"context"
	"time"
)

// SourceType is the fixed set of adapter kinds a Source can be backed by.
type SourceType string

const (
	SourceTypeAPI         SourceType = "api"
	SourceTypeScrape      SourceType = "scrape"
	SourceTypeManual      SourceType = "manual"
	SourceTypeSpreadsheet SourceType = "spreadsheet"
)

// Reliability buckets by source class; manual sources may supply their
// own reliability up to 1.0.
const (
	ReliabilityOfficialWebsite = 1.0
	ReliabilityFirstPartyAPI   = 0.8
	ReliabilityScrapedPage     = 0.5
)

// Source is a named producer of candidate records.
type Source struct {
	// ID is the unique identifier for the source.
	ID string
	// Name is the display name (e.g. "Festival Gnaoua official site").
	Name string
	// Type is the adapter kind this source is fetched through.
	Type SourceType
	// ReliabilityScore is in [0,1] and governs both confidence and
	// overwrite-on-merge precedence.
	ReliabilityScore float64
	// HistoricalAccuracy is an exponential moving average of how often
	// this source's events survive later confirmation without correction,
	// used as the Confidence Scorer's H term. Defaults to 0.5 when unknown.
	HistoricalAccuracy float64
	// IsActive controls whether the orchestrator fetches this source.
	IsActive bool
	// LastFetchAt is the cursor the orchestrator advances after a
	// successful, non-retriable fetch.
	LastFetchAt time.Time
}

// EventSource is the provenance linkage between an event and a source that
// contributed to it.
type EventSource struct {
	ID          string
	EventID     string
	SourceID    string
	ExternalID  string
	SourceURL   string
	RawPayload  []byte
	FetchedAt   time.Time
}

// SourceRepository defines persistence operations for the source registry.
type SourceRepository interface {
	// ListActive returns all active sources, for the orchestrator's fetch
	// stage.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListActive(ctx context.Context) ([]*Source, error)

	// Get retrieves a source by ID.
	//
	// # Possible errors
	//
	//  - NotFound: no source exists with the given ID.
	Get(ctx context.Context, id string) (*Source, error)

	// AdvanceCursor updates last_fetch_at. Called only when a source's
	// fetch stage completed without a retriable error.
	//
	// # Possible errors
	//
	//  - NotFound: no source exists with the given ID.
	AdvanceCursor(ctx context.Context, id string, fetchedAt time.Time) error

	// UpdateHistoricalAccuracy writes the source's recomputed exponential
	// moving average of accuracy.
	//
	// # Possible errors
	//
	//  - NotFound: no source exists with the given ID.
	UpdateHistoricalAccuracy(ctx context.Context, id string, accuracy float64) error
}

// EventSourceRepository defines persistence operations for provenance
// linkages.
type EventSourceRepository interface {
	// Create inserts a new provenance linkage.
	//
	// # Possible errors
	//
	//  - InvalidArgument: event id or source id is empty.
	Create(ctx context.Context, link *EventSource) error

	// ListByEvent returns every source linked to an event, for the
	// Confidence Scorer.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListByEvent(ctx context.Context, eventID string) ([]*EventSource, error)

	// RelinkEvent moves every EventSource row from one event to another,
	// used by the editorial merge command.
	//
	// # Possible errors
	//
	//  - Internal: database execution failure.
	RelinkEvent(ctx context.Context, fromEventID, toEventID string) error

	// CountByEvent reports how many EventSource rows reference an event,
	// used by the provenance-coverage testable property.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	CountByEvent(ctx context.Context, eventID string) (int, error)
}
