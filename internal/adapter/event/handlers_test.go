package event_test

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-logging/logging"
	adapterevent "github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/event"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearchClient is a hand-written stand-in for entity.SearchClient,
// just enough to exercise the projection synchronizer end to end from the
// event handlers' perspective.
type fakeSearchClient struct {
	upserted        map[string]entity.SearchDocument
	deleted         []string
	schemaRecreated bool
}

func newFakeSearchClient() *fakeSearchClient {
	return &fakeSearchClient{upserted: map[string]entity.SearchDocument{}}
}

func (c *fakeSearchClient) EnsureSchema(ctx context.Context) error { return nil }
func (c *fakeSearchClient) RecreateSchema(ctx context.Context) error {
	c.schemaRecreated = true
	return nil
}
func (c *fakeSearchClient) UpsertBatch(ctx context.Context, docs []entity.SearchDocument) (int, error) {
	for _, d := range docs {
		c.upserted[d.ID] = d
	}
	return 0, nil
}
func (c *fakeSearchClient) UpsertOne(ctx context.Context, doc entity.SearchDocument) error {
	c.upserted[doc.ID] = doc
	return nil
}
func (c *fakeSearchClient) Delete(ctx context.Context, id string) error {
	c.deleted = append(c.deleted, id)
	delete(c.upserted, id)
	return nil
}
func (c *fakeSearchClient) Query(ctx context.Context, q entity.SearchQuery) (*entity.SearchResult, error) {
	return &entity.SearchResult{}, nil
}
func (c *fakeSearchClient) Health(ctx context.Context) error { return nil }

// fakeRelationStore satisfies every relation port the synchronizer needs
// (events, cities, regions, venues, organizers, artists, genres) with one
// struct, since these tests don't need to vary them independently.
type fakeRelationStore struct {
	events  map[string]*entity.Event
	cities  map[string]*entity.City
	regions map[string]*entity.Region
}

func (s *fakeRelationStore) Get(ctx context.Context, id string) (*entity.Event, error) {
	if ev, ok := s.events[id]; ok {
		return ev, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *fakeRelationStore) ListByStatus(ctx context.Context, statuses ...entity.EventStatus) ([]*entity.Event, error) {
	var out []*entity.Event
	for _, ev := range s.events {
		out = append(out, ev)
	}
	return out, nil
}

type cityAdapter struct{ store *fakeRelationStore }

func (a cityAdapter) Get(ctx context.Context, id string) (*entity.City, error) {
	if c, ok := a.store.cities[id]; ok {
		return c, nil
	}
	return nil, apperr.ErrNotFound
}

type regionAdapter struct{ store *fakeRelationStore }

func (a regionAdapter) Get(ctx context.Context, id string) (*entity.Region, error) {
	if r, ok := a.store.regions[id]; ok {
		return r, nil
	}
	return nil, apperr.ErrNotFound
}

type venueAdapter struct{ store *fakeRelationStore }

func (a venueAdapter) Get(ctx context.Context, id string) (*entity.Venue, error) {
	return nil, apperr.ErrNotFound
}

type organizerAdapter struct{ store *fakeRelationStore }

func (a organizerAdapter) Get(ctx context.Context, id string) (*entity.Organizer, error) {
	return nil, apperr.ErrNotFound
}

type artistAdapter struct{ store *fakeRelationStore }

func (a artistAdapter) ListByEvent(ctx context.Context, eventID string) ([]*entity.Artist, error) {
	return nil, nil
}

type genreAdapter struct{ store *fakeRelationStore }

func (a genreAdapter) ListByEvent(ctx context.Context, eventID string) ([]*entity.Genre, error) {
	return nil, nil
}

func newSynchronizer(events ...*entity.Event) (*usecase.ProjectionSynchronizer, *fakeSearchClient) {
	store := &fakeRelationStore{
		events:  map[string]*entity.Event{},
		cities:  map[string]*entity.City{"city-1": {ID: "city-1", Name: "Essaouira", Slug: "essaouira"}},
		regions: map[string]*entity.Region{"region-1": {ID: "region-1", Name: "Marrakesh-Safi", Slug: "marrakesh-safi"}},
	}
	for _, ev := range events {
		store.events[ev.ID] = ev
	}
	client := newFakeSearchClient()
	sync := usecase.NewProjectionSynchronizer(
		client, store, cityAdapter{store}, regionAdapter{store},
		venueAdapter{store}, organizerAdapter{store}, artistAdapter{store}, genreAdapter{store},
	)
	return sync, client
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New()
	require.NoError(t, err)
	return logger
}

func TestRebuildHandler_Handle(t *testing.T) {
	ev := &entity.Event{ID: "ev-1", Status: entity.EventStatusAnnounced, CityID: "city-1", RegionID: "region-1"}
	sync, client := newSynchronizer(ev)
	handler := adapterevent.NewRebuildHandler(sync, testLogger(t))

	msg, err := messaging.NewCloudEvent(messaging.EventTypeRebuildRequested, messaging.RebuildRequestedData{Reason: "daily_maintenance"})
	require.NoError(t, err)

	require.NoError(t, handler.Handle(msg))
	assert.True(t, client.schemaRecreated)
	_, ok := client.upserted["ev-1"]
	assert.True(t, ok)
}

func TestRebuildHandler_Handle_BadPayload(t *testing.T) {
	sync, _ := newSynchronizer()
	handler := adapterevent.NewRebuildHandler(sync, testLogger(t))

	msg := message.NewMessage("bad-id", []byte("not json"))
	assert.Error(t, handler.Handle(msg))
}

func TestProjectionHandler_HandleCreated(t *testing.T) {
	ev := &entity.Event{ID: "ev-1", Status: entity.EventStatusAnnounced, CityID: "city-1", RegionID: "region-1"}
	sync, client := newSynchronizer(ev)
	handler := adapterevent.NewProjectionHandler(sync, testLogger(t))

	msg, err := messaging.NewCloudEvent(messaging.EventTypeEventCreated, messaging.EventCreatedData{EventID: "ev-1", Name: "Festival Gnaoua"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleCreated(msg))
	_, ok := client.upserted["ev-1"]
	assert.True(t, ok)
}

func TestProjectionHandler_HandleMerged(t *testing.T) {
	keep := &entity.Event{ID: "ev-keep", Status: entity.EventStatusAnnounced, CityID: "city-1", RegionID: "region-1"}
	sync, client := newSynchronizer(keep)
	handler := adapterevent.NewProjectionHandler(sync, testLogger(t))
	client.upserted["ev-lose"] = entity.SearchDocument{ID: "ev-lose"}

	msg, err := messaging.NewCloudEvent(messaging.EventTypeEventMerged, messaging.EventMergedData{KeepEventID: "ev-keep", LoseEventID: "ev-lose"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleMerged(msg))
	_, stillThere := client.upserted["ev-lose"]
	assert.False(t, stillThere)
	_, keptIndexed := client.upserted["ev-keep"]
	assert.True(t, keptIndexed)
}

func TestProjectionHandler_HandleArchived(t *testing.T) {
	sync, client := newSynchronizer()
	handler := adapterevent.NewProjectionHandler(sync, testLogger(t))
	client.upserted["ev-1"] = entity.SearchDocument{ID: "ev-1"}

	msg, err := messaging.NewCloudEvent(messaging.EventTypeEventArchived, messaging.EventArchivedData{EventID: "ev-1", Reason: "past_due"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleArchived(msg))
	_, ok := client.upserted["ev-1"]
	assert.False(t, ok)
}
