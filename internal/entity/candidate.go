package entity

import (
	"context"
	"time"
)

// FingerprintKind is one of the four content-addressed hash kinds the
// deduplication resolver looks up in order.
type FingerprintKind string

const (
	FingerprintKindExact         FingerprintKind = "exact"
	FingerprintKindFuzzyName     FingerprintKind = "fuzzy_name"
	FingerprintKindDateLocation  FingerprintKind = "date_location"
	FingerprintKindWeekLocation  FingerprintKind = "week_location"
)

// Fingerprint is a content-addressed hash tagged by kind and owned by an
// event. An event owns all fingerprints derivable from its current
// canonical attributes; the merge writer maintains this set on every
// mutation.
type Fingerprint struct {
	ID      string
	Kind    FingerprintKind
	Hash    string
	EventID string
}

// Candidate is a staged, normalized inbound record awaiting resolution.
type Candidate struct {
	// ID is the unique identifier for the candidate.
	ID string
	// SourceID is the source that produced this candidate.
	SourceID string
	// ExternalID is the source's own identifier for the record, used for
	// idempotent re-fetch.
	ExternalID string
	// SourceURL is where this record was found.
	SourceURL string
	// RawPayload is the opaque upstream payload, kept for audit and
	// parse_error diagnostics.
	RawPayload []byte

	// NormalizedName, NormalizedCityID (nullable — unknown_city), StartDate,
	// EndDate, NormalizedVenueName are the fields the fingerprint generator
	// and resolver consume.
	NormalizedName      string
	NormalizedCityID    *string
	StartDate           time.Time
	EndDate             *time.Time
	NormalizedVenueName *string

	// RawName, RawCityText, RawVenueText, RawOrganizerName,
	// RawOfficialWebsite, RawDescription carry the non-normalized fields
	// the merge writer copies onto a created or overwritten event.
	RawName            string
	RawCityText        string
	RawVenueText        string
	RawOrganizerName    string
	RawOfficialWebsite  *string
	RawDescription      *string
	RawEventType        EventType

	// Processed is set true once the resolver decision has been applied.
	Processed bool
	// MatchedEventID is set when the resolver decision was merge or
	// create; nil while pending or when routed to review.
	MatchedEventID *string
	// MatchConfidence is the resolver's confidence for the applied
	// decision.
	MatchConfidence float64

	IngestedAt  time.Time
	ProcessedAt *time.Time
}

// CandidateRepository defines persistence operations for the candidate
// staging queue.
type CandidateRepository interface {
	// Insert always appends, even when external_id duplicates an existing
	// row — dedup happens downstream, in the resolver.
	//
	// # Possible errors
	//
	//  - InvalidArgument: required candidate fields are missing.
	Insert(ctx context.Context, candidate *Candidate) error

	// MarkProcessed records the resolver outcome on a candidate.
	//
	// # Possible errors
	//
	//  - NotFound: no candidate exists with the given ID.
	MarkProcessed(ctx context.Context, id string, matchedEventID *string, confidence float64, processedAt time.Time) error

	// ListUnprocessed returns candidates awaiting resolution for a source,
	// in fetch order (insertion order), so per-source processing stays
	// deterministic.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListUnprocessed(ctx context.Context, sourceID string) ([]*Candidate, error)

	// ListReviewPending returns processed candidates whose resolver
	// decision was review, for the editorial review queue.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListReviewPending(ctx context.Context) ([]*Candidate, error)

	// GarbageCollectOlderThan deletes unprocessed candidates ingested
	// before the cutoff, returning the count removed. Run weekly by the
	// orchestrator.
	//
	// # Possible errors
	//
	//  - Internal: database execution failure.
	GarbageCollectOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// FingerprintRepository defines persistence operations for event
// fingerprints.
type FingerprintRepository interface {
	// FindEventsByHash looks up events owning a fingerprint of the given
	// kind and hash, used by the deduplication resolver's ordered lookup.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	FindEventsByHash(ctx context.Context, kind FingerprintKind, hash string) ([]string, error)

	// ReplaceForEvent atomically removes all existing fingerprint rows for
	// an event and inserts the given set. Called by the merge writer on
	// every event mutation.
	//
	// # Possible errors
	//
	//  - Internal: database execution failure.
	ReplaceForEvent(ctx context.Context, eventID string, fingerprints []Fingerprint) error
}
