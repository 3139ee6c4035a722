package usecase_test

import (
	"context"
	"time"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// fakeEventStore is a hand-written stand-in satisfying every narrow
// event-reading/writing port the usecase package depends on
// (eventReader, eventUpdater, eventWriter), sufficient to exercise the
// confidence scorer, dedup resolver, merge writer, and archival use case
// without a database.
type fakeEventStore struct {
	byID map[string]*entity.Event
	// pastUnarchived and staleVerification are returned directly by the
	// matching list methods; tests populate them explicitly rather than
	// deriving them from byID, since the real query semantics live in SQL.
	pastUnarchived    []*entity.Event
	staleVerification []*entity.Event
	updates           []*entity.Event
}

func newFakeEventStore(events ...*entity.Event) *fakeEventStore {
	s := &fakeEventStore{byID: map[string]*entity.Event{}}
	for _, e := range events {
		s.byID[e.ID] = e
	}
	return s
}

func (s *fakeEventStore) Get(ctx context.Context, id string) (*entity.Event, error) {
	if e, ok := s.byID[id]; ok {
		return e, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *fakeEventStore) Update(ctx context.Context, event *entity.Event) error {
	s.byID[event.ID] = event
	s.updates = append(s.updates, event)
	return nil
}

func (s *fakeEventStore) ListStaleVerification(ctx context.Context, olderThan time.Time) ([]*entity.Event, error) {
	return s.staleVerification, nil
}

func (s *fakeEventStore) ListPastUnarchived(ctx context.Context, before time.Time) ([]*entity.Event, error) {
	return s.pastUnarchived, nil
}

// fakeSourceStore is a hand-written stand-in for the sourceReader port.
type fakeSourceStore struct {
	byID map[string]*entity.Source
}

func newFakeSourceStore(sources ...*entity.Source) *fakeSourceStore {
	s := &fakeSourceStore{byID: map[string]*entity.Source{}}
	for _, src := range sources {
		s.byID[src.ID] = src
	}
	return s
}

func (s *fakeSourceStore) Get(ctx context.Context, id string) (*entity.Source, error) {
	if src, ok := s.byID[id]; ok {
		return src, nil
	}
	return nil, apperr.ErrNotFound
}

// fakeEventSourceStore is a hand-written stand-in for the
// eventSourceReader port.
type fakeEventSourceStore struct {
	byEvent map[string][]*entity.EventSource
}

func newFakeEventSourceStore() *fakeEventSourceStore {
	return &fakeEventSourceStore{byEvent: map[string][]*entity.EventSource{}}
}

func (s *fakeEventSourceStore) link(eventID string, link *entity.EventSource) {
	s.byEvent[eventID] = append(s.byEvent[eventID], link)
}

func (s *fakeEventSourceStore) ListByEvent(ctx context.Context, eventID string) ([]*entity.EventSource, error) {
	return s.byEvent[eventID], nil
}

// fakeVenueStore is a hand-written stand-in for the venueReader port.
type fakeVenueStore struct {
	byID map[string]*entity.Venue
}

func newFakeVenueStore(venues ...*entity.Venue) *fakeVenueStore {
	s := &fakeVenueStore{byID: map[string]*entity.Venue{}}
	for _, v := range venues {
		s.byID[v.ID] = v
	}
	return s
}

func (s *fakeVenueStore) Get(ctx context.Context, id string) (*entity.Venue, error) {
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return nil, apperr.ErrNotFound
}

// fakeFingerprintStore is a hand-written stand-in for FingerprintReader.
type fakeFingerprintStore struct {
	byHash map[entity.FingerprintKind]map[string][]string
}

func newFakeFingerprintStore() *fakeFingerprintStore {
	return &fakeFingerprintStore{byHash: map[entity.FingerprintKind]map[string][]string{}}
}

func (s *fakeFingerprintStore) index(kind entity.FingerprintKind, hash string, eventIDs ...string) {
	if s.byHash[kind] == nil {
		s.byHash[kind] = map[string][]string{}
	}
	s.byHash[kind][hash] = eventIDs
}

func (s *fakeFingerprintStore) FindEventsByHash(ctx context.Context, kind entity.FingerprintKind, hash string) ([]string, error) {
	return s.byHash[kind][hash], nil
}
