package rdb

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// EventRepository implements entity.EventRepository for PostgreSQL.
type EventRepository struct {
	db *Database
}

// NewEventRepository creates a new event repository instance.
func NewEventRepository(db *Database) *EventRepository {
	return &EventRepository{db: db}
}

var _ entity.EventRepository = (*EventRepository)(nil)

const (
	insertEventQuery = `
		INSERT INTO events (
			id, slug, name, type, start_date, end_date, city_id, region_id, venue_id, organizer_id,
			description, official_website, status, is_verified, is_pinned, cultural_significance,
			confidence_score, last_verified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	getEventQuery = `
		SELECT id, slug, name, type, start_date, end_date, city_id, region_id, venue_id, organizer_id,
			description, official_website, status, is_verified, is_pinned, cultural_significance,
			confidence_score, create_time, update_time, last_verified_at
		FROM events WHERE id = $1
	`
	updateEventQuery = `
		UPDATE events SET
			slug = $2, name = $3, type = $4, start_date = $5, end_date = $6, city_id = $7, region_id = $8,
			venue_id = $9, organizer_id = $10, description = $11, official_website = $12, status = $13,
			is_verified = $14, is_pinned = $15, cultural_significance = $16, confidence_score = $17,
			update_time = NOW(), last_verified_at = $18
		WHERE id = $1
	`
	deleteEventQuery = `DELETE FROM events WHERE id = $1`
	insertSnapshotQuery = `
		INSERT INTO event_snapshots (id, event_id, snapshot, created_at) VALUES ($1, $2, $3, NOW())
	`
)

func scanEvent(row interface{ Scan(...any) error }) (*entity.Event, error) {
	var e entity.Event
	var typ, status string
	if err := row.Scan(
		&e.ID, &e.Slug, &e.Name, &typ, &e.StartDate, &e.EndDate, &e.CityID, &e.RegionID, &e.VenueID, &e.OrganizerID,
		&e.Description, &e.OfficialWebsite, &status, &e.IsVerified, &e.IsPinned, &e.CulturalSignificance,
		&e.ConfidenceScore, &e.CreateTime, &e.UpdateTime, &e.LastVerifiedAt,
	); err != nil {
		return nil, err
	}
	e.Type = entity.EventType(typ)
	e.Status = entity.EventStatus(status)
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	if event.Name == "" || event.CityID == "" {
		return apperr.New(codes.InvalidArgument, "event requires a name and a city")
	}
	_, err := r.db.Pool.Exec(ctx, insertEventQuery,
		event.ID, event.Slug, event.Name, string(event.Type), event.StartDate, event.EndDate, event.CityID, event.RegionID,
		event.VenueID, event.OrganizerID, event.Description, event.OfficialWebsite, string(event.Status),
		event.IsVerified, event.IsPinned, event.CulturalSignificance, event.ConfidenceScore, event.LastVerifiedAt,
	)
	if err != nil {
		return toAppErr(err, "failed to insert event", slog.String("event_id", event.ID))
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*entity.Event, error) {
	e, err := scanEvent(r.db.Pool.QueryRow(ctx, getEventQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get event", slog.String("event_id", id))
	}
	return e, nil
}

func (r *EventRepository) Update(ctx context.Context, event *entity.Event) error {
	tag, err := r.db.Pool.Exec(ctx, updateEventQuery,
		event.ID, event.Slug, event.Name, string(event.Type), event.StartDate, event.EndDate, event.CityID, event.RegionID,
		event.VenueID, event.OrganizerID, event.Description, event.OfficialWebsite, string(event.Status),
		event.IsVerified, event.IsPinned, event.CulturalSignificance, event.ConfidenceScore, event.LastVerifiedAt,
	)
	if err != nil {
		return toAppErr(err, "failed to update event", slog.String("event_id", event.ID))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(codes.NotFound, "event not found", slog.String("event_id", event.ID))
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, deleteEventQuery, id)
	if err != nil {
		return toAppErr(err, "failed to delete event", slog.String("event_id", id))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(codes.NotFound, "event not found", slog.String("event_id", id))
	}
	return nil
}

func (r *EventRepository) ListByStatus(ctx context.Context, statuses ...entity.EventStatus) ([]*entity.Event, error) {
	vals := make([]string, len(statuses))
	for i, s := range statuses {
		vals[i] = string(s)
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, type, start_date, end_date, city_id, region_id, venue_id, organizer_id,
			description, official_website, status, is_verified, is_pinned, cultural_significance,
			confidence_score, create_time, update_time, last_verified_at
		FROM events WHERE status = ANY($1)
	`, vals)
	if err != nil {
		return nil, toAppErr(err, "failed to list events by status")
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan event")
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *EventRepository) ListStaleVerification(ctx context.Context, olderThan time.Time) ([]*entity.Event, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, type, start_date, end_date, city_id, region_id, venue_id, organizer_id,
			description, official_website, status, is_verified, is_pinned, cultural_significance,
			confidence_score, create_time, update_time, last_verified_at
		FROM events WHERE last_verified_at < $1
	`, olderThan)
	if err != nil {
		return nil, toAppErr(err, "failed to list events with stale verification")
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan event")
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *EventRepository) ListPastUnarchived(ctx context.Context, before time.Time) ([]*entity.Event, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, type, start_date, end_date, city_id, region_id, venue_id, organizer_id,
			description, official_website, status, is_verified, is_pinned, cultural_significance,
			confidence_score, create_time, update_time, last_verified_at
		FROM events
		WHERE status != $1 AND COALESCE(end_date, start_date) < $2
	`, string(entity.EventStatusArchived), before)
	if err != nil {
		return nil, toAppErr(err, "failed to list past unarchived events")
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan event")
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *EventRepository) Snapshot(ctx context.Context, event *entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperr.Wrap(err, codes.Internal, "failed to marshal event snapshot", slog.String("event_id", event.ID))
	}
	id := uuid.NewString()
	if _, err := r.db.Pool.Exec(ctx, insertSnapshotQuery, id, event.ID, payload); err != nil {
		return toAppErr(err, "failed to write event snapshot", slog.String("event_id", event.ID))
	}
	return nil
}
