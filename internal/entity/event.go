package entity

import (
	"context"
	"time"
)

// EventType is the fixed set of event kinds the catalog recognizes.
type EventType string

const (
	EventTypeFestival   EventType = "festival"
	EventTypeConcert    EventType = "concert"
	EventTypeShowcase   EventType = "showcase"
	EventTypeRitual     EventType = "ritual"
	EventTypeConference EventType = "conference"
)

// EventStatus is the lifecycle state of an event. Archived is terminal:
// an archived event is never un-archived by ingestion.
type EventStatus string

const (
	EventStatusAnnounced EventStatus = "announced"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusPostponed EventStatus = "postponed"
	EventStatusArchived  EventStatus = "archived"
)

// IndexableStatuses are the statuses the search projection synchronizer
// keeps in the collection; every other status is removed from the index.
var IndexableStatuses = []EventStatus{EventStatusAnnounced, EventStatusConfirmed}

// IsIndexable reports whether an event in this status belongs in the
// search projection.
func (s EventStatus) IsIndexable() bool {
	for _, v := range IndexableStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Event is the unit the catalog is built around.
type Event struct {
	// ID is the stable identity of the event.
	ID string
	// Slug is a short URL-safe identifier, unique across non-archived
	// events.
	Slug string
	// Name is the human display name.
	Name string
	// Type is one of the fixed event-type set.
	Type EventType

	// StartDate is the required start date. It carries a date-only value:
	// Location is always time.UTC and the time-of-day components are
	// always zero, so the value survives a round trip through a DATE
	// column without shifting by a day at timezone boundaries.
	StartDate time.Time
	// EndDate is optional; when present it is >= StartDate.
	EndDate *time.Time

	// CityID is required.
	CityID string
	// RegionID is required and derivable from CityID.
	RegionID string
	// VenueID is optional.
	VenueID *string
	// OrganizerID is optional.
	OrganizerID *string
	// Description is optional free text.
	Description *string
	// OfficialWebsite is optional.
	OfficialWebsite *string

	// Status is the lifecycle state.
	Status EventStatus
	// IsVerified is an editorial flag.
	IsVerified bool
	// IsPinned is an editorial flag.
	IsPinned bool
	// CulturalSignificance is an editorial score, 0-10.
	CulturalSignificance int
	// ConfidenceScore is recomputed by the Confidence Scorer, in [0,1].
	ConfidenceScore float64

	CreateTime     time.Time
	UpdateTime     time.Time
	LastVerifiedAt time.Time
}

// RequiredFieldsPresent reports how many of the four required completeness
// fields (name, start_date, city, status) are populated, out of 4. Feeds
// the Confidence Scorer's completeness term.
func (e *Event) RequiredFieldsPresent() int {
	n := 0
	if e.Name != "" {
		n++
	}
	if !e.StartDate.IsZero() {
		n++
	}
	if e.CityID != "" {
		n++
	}
	if e.Status != "" {
		n++
	}
	return n
}

// OptionalFieldsPresent reports how many of the four optional completeness
// fields (end_date, venue, description, official_website) are populated,
// out of 4.
func (e *Event) OptionalFieldsPresent() int {
	n := 0
	if e.EndDate != nil {
		n++
	}
	if e.VenueID != nil {
		n++
	}
	if e.Description != nil {
		n++
	}
	if e.OfficialWebsite != nil {
		n++
	}
	return n
}

// EventSnapshot is an immutable record of an event's full state, written
// by the merge writer before a losing event is deleted.
type EventSnapshot struct {
	ID        string
	EventID   string
	Event     Event
	CreatedAt time.Time
}

// EventRepository defines the data access interface for events.
type EventRepository interface {
	// Create persists a new event.
	//
	// # Possible errors
	//
	//  - InvalidArgument: a required field is missing.
	Create(ctx context.Context, event *Event) error

	// Get retrieves an event by ID.
	//
	// # Possible errors
	//
	//  - NotFound: no event exists with the given ID.
	Get(ctx context.Context, id string) (*Event, error)

	// Update persists changes to an existing event's canonical attributes.
	//
	// # Possible errors
	//
	//  - NotFound: no event exists with the given ID.
	Update(ctx context.Context, event *Event) error

	// Delete permanently removes an event row. Used only by the editorial
	// merge command against the losing event, after it has been
	// snapshotted.
	//
	// # Possible errors
	//
	//  - NotFound: no event exists with the given ID.
	Delete(ctx context.Context, id string) error

	// ListByStatus returns events in any of the given statuses, used by
	// full_rebuild to stream indexable events.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListByStatus(ctx context.Context, statuses ...EventStatus) ([]*Event, error)

	// ListStaleVerification returns events whose last_verified_at is older
	// than the given cutoff, for the daily confidence recomputation sweep.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListStaleVerification(ctx context.Context, olderThan time.Time) ([]*Event, error)

	// ListPastUnarchived returns non-archived events whose end date (or
	// start date, when no end date is set) is before the given cutoff, for
	// the daily archival sweep.
	//
	// # Possible errors
	//
	//  - Internal: database query failure.
	ListPastUnarchived(ctx context.Context, before time.Time) ([]*Event, error)

	// Snapshot writes an immutable copy of the event's current state to the
	// event_snapshots log, ahead of a destructive merge.
	//
	// # Possible errors
	//
	//  - Internal: database execution failure.
	Snapshot(ctx context.Context, event *Event) error
}
