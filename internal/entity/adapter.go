package entity

import (
	"context"
	"time"
)

// RawRecord is the opaque unit an adapter fetches before normalization.
// Payload shape differs by adapter kind: a JSON object for the api and
// manual adapters, a 0x1F-separated field list for the scrape adapter, and
// a JSON-encoded header-to-cell map for the spreadsheet adapter. No
// adapter produces SpreadsheetRow; the spreadsheet adapter encodes its
// rows into Payload like the others.
type RawRecord struct {
	ExternalID string
	SourceURL  string
	Payload    []byte
	FetchedAt  time.Time
}

// SpreadsheetRow is the RawRecord variant for Google Sheets/Excel style
// ingestion, where a row arrives as an untyped map rather than a byte
// payload. Boolean-looking cell values must be coerced from the literal
// set {TRUE, FALSE, Yes, No, 1, 0, true, false}.
type SpreadsheetRow struct {
	ExternalID string
	SourceURL  string
	Fields     map[string]any
	FetchedAt  time.Time
}

// SourceAdapter is the two-operation contract every source kind
// implements. Adapters must be idempotent on re-fetch: the same upstream
// record, fetched twice, must normalize to an identical Candidate modulo
// FetchedAt.
type SourceAdapter interface {
	// Fetch streams RawRecords produced since the given cursor. The
	// channel is closed when the fetch completes or ctx is cancelled; a
	// non-nil error return means the fetch stage failed outright (the
	// source's cursor must not advance).
	//
	// # Possible errors
	//
	//  - Unavailable: network_timeout, rate_limited, or source_unavailable.
	Fetch(ctx context.Context, since time.Time) (<-chan RawRecord, error)

	// Normalize converts one RawRecord into a Candidate's normalized and
	// raw fields. Returning an error here is always per-record (parse_error
	// or validation_error); it never aborts the run.
	//
	// # Possible errors
	//
	//  - InvalidArgument: parse_error or validation_error.
	Normalize(ctx context.Context, record RawRecord) (*Candidate, error)
}
