package usecase

import (
	"context"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

const fullRebuildBatchSize = 100

// projectionEventStore is the narrow read port the synchronizer needs
// over events and their relations.
type projectionEventStore interface {
	Get(ctx context.Context, id string) (*entity.Event, error)
	ListByStatus(ctx context.Context, statuses ...entity.EventStatus) ([]*entity.Event, error)
}

type cityReader interface {
	Get(ctx context.Context, id string) (*entity.City, error)
}

type regionReader interface {
	Get(ctx context.Context, id string) (*entity.Region, error)
}

type organizerReader interface {
	Get(ctx context.Context, id string) (*entity.Organizer, error)
}

type artistLister interface {
	ListByEvent(ctx context.Context, eventID string) ([]*entity.Artist, error)
}

type genreLister interface {
	ListByEvent(ctx context.Context, eventID string) ([]*entity.Genre, error)
}

// ProjectionSynchronizer is the only writer to the search collection; it
// never reads the collection back to make a decision — the relational
// store is always the source of truth.
type ProjectionSynchronizer struct {
	client  entity.SearchClient
	events  projectionEventStore
	cities  cityReader
	regions regionReader
	venues  venueReader
	orgs    organizerReader
	artists artistLister
	genres  genreLister
}

// NewProjectionSynchronizer builds a synchronizer over its dependencies.
func NewProjectionSynchronizer(
	client entity.SearchClient,
	events projectionEventStore,
	cities cityReader,
	regions regionReader,
	venues venueReader,
	orgs organizerReader,
	artists artistLister,
	genres genreLister,
) *ProjectionSynchronizer {
	return &ProjectionSynchronizer{
		client: client, events: events, cities: cities, regions: regions,
		venues: venues, orgs: orgs, artists: artists, genres: genres,
	}
}

// EnsureSchema creates the events collection if it does not already
// exist.
func (s *ProjectionSynchronizer) EnsureSchema(ctx context.Context) error {
	return s.client.EnsureSchema(ctx)
}

// FullRebuild drops and recreates the collection, then streams every
// indexable event into batches of 100, isolating per-document failures
// so one bad transform does not abort the rebuild.
func (s *ProjectionSynchronizer) FullRebuild(ctx context.Context) (indexed, failed int, err error) {
	if err := s.client.RecreateSchema(ctx); err != nil {
		return 0, 0, err
	}

	events, err := s.events.ListByStatus(ctx, entity.IndexableStatuses...)
	if err != nil {
		return 0, 0, err
	}

	var batch []entity.SearchDocument
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		batchFailed, err := s.client.UpsertBatch(ctx, batch)
		if err != nil {
			return err
		}
		failed += batchFailed
		indexed += len(batch) - batchFailed
		batch = batch[:0]
		return nil
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			return indexed, failed, ctx.Err()
		}
		doc, err := s.transform(ctx, ev)
		if err != nil {
			failed++
			continue
		}
		batch = append(batch, *doc)
		if len(batch) >= fullRebuildBatchSize {
			if err := flush(); err != nil {
				return indexed, failed, err
			}
		}
	}
	if err := flush(); err != nil {
		return indexed, failed, err
	}
	return indexed, failed, nil
}

// UpsertEvent re-syncs a single event: removed from the index if it no
// longer exists or is no longer indexable, upserted otherwise.
func (s *ProjectionSynchronizer) UpsertEvent(ctx context.Context, eventID string) error {
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return s.client.Delete(ctx, eventID)
	}
	if !ev.Status.IsIndexable() {
		return s.client.Delete(ctx, eventID)
	}

	doc, err := s.transform(ctx, ev)
	if err != nil {
		return err
	}
	return s.client.UpsertOne(ctx, *doc)
}

// DeleteEvent removes an event from the index. Idempotent.
func (s *ProjectionSynchronizer) DeleteEvent(ctx context.Context, eventID string) error {
	return s.client.Delete(ctx, eventID)
}

// transform converts a relational event and its joined relations into the
// read-optimized SearchDocument shape.
func (s *ProjectionSynchronizer) transform(ctx context.Context, ev *entity.Event) (*entity.SearchDocument, error) {
	city, err := s.cities.Get(ctx, ev.CityID)
	if err != nil {
		return nil, err
	}
	region, err := s.regions.Get(ctx, ev.RegionID)
	if err != nil {
		return nil, err
	}

	doc := &entity.SearchDocument{
		ID:                   ev.ID,
		Name:                 ev.Name,
		Slug:                 ev.Slug,
		EventType:            string(ev.Type),
		StartDate:            ev.StartDate.Unix(),
		Year:                 int32(ev.StartDate.Year()),
		Month:                int32(ev.StartDate.Month()),
		CityID:               city.ID,
		RegionID:             region.ID,
		CityName:             city.Name,
		RegionName:           region.Name,
		CitySlug:             city.Slug,
		RegionSlug:           region.Slug,
		Status:               string(ev.Status),
		ConfidenceScore:      ev.ConfidenceScore,
		IsVerified:           ev.IsVerified,
		IsPinned:             ev.IsPinned,
		CulturalSignificance: int32(ev.CulturalSignificance),
		UpdatedAt:            ev.UpdateTime.Unix(),
	}

	if ev.EndDate != nil {
		unix := ev.EndDate.Unix()
		doc.EndDate = &unix
	}
	if ev.Description != nil {
		doc.Description = *ev.Description
	}
	if ev.OfficialWebsite != nil {
		doc.OfficialWebsite = *ev.OfficialWebsite
	}
	if city.Latitude != 0 || city.Longitude != 0 {
		doc.GeoLocation = &entity.GeoPoint{Lat: city.Latitude, Lng: city.Longitude}
	}

	if ev.VenueID != nil {
		if venue, err := s.venues.Get(ctx, *ev.VenueID); err == nil {
			doc.VenueName = venue.Name
			doc.VenueSlug = venue.Slug
			if venue.Latitude != nil && venue.Longitude != nil {
				doc.GeoLocation = &entity.GeoPoint{Lat: *venue.Latitude, Lng: *venue.Longitude}
			}
		}
	}

	if ev.OrganizerID != nil {
		if org, err := s.orgs.Get(ctx, *ev.OrganizerID); err == nil {
			doc.OrganizerName = org.Name
		}
	}

	if artists, err := s.artists.ListByEvent(ctx, ev.ID); err == nil {
		for _, a := range artists {
			doc.Artists = append(doc.Artists, a.Name)
			doc.ArtistSlugs = append(doc.ArtistSlugs, a.Slug)
		}
	}
	if genres, err := s.genres.ListByEvent(ctx, ev.ID); err == nil {
		for _, g := range genres {
			doc.Genres = append(doc.Genres, g.Name)
			doc.GenreSlugs = append(doc.GenreSlugs, g.Slug)
		}
	}

	return doc, nil
}
