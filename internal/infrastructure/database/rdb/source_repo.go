package rdb

import (
	"context"
	"log/slog"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
)

// SourceRepository implements entity.SourceRepository for PostgreSQL.
type SourceRepository struct {
	db *Database
}

// NewSourceRepository creates a new source repository instance.
func NewSourceRepository(db *Database) *SourceRepository {
	return &SourceRepository{db: db}
}

var _ entity.SourceRepository = (*SourceRepository)(nil)

const (
	listActiveSourcesQuery = `
		SELECT id, name, type, reliability_score, historical_accuracy, is_active, last_fetch_at
		FROM sources WHERE is_active = true
	`
	getSourceQuery = `
		SELECT id, name, type, reliability_score, historical_accuracy, is_active, last_fetch_at
		FROM sources WHERE id = $1
	`
	advanceSourceCursorQuery       = `UPDATE sources SET last_fetch_at = $2 WHERE id = $1`
	updateSourceAccuracyQuery      = `UPDATE sources SET historical_accuracy = $2 WHERE id = $1`
)

func scanSource(row interface{ Scan(...any) error }) (*entity.Source, error) {
	var s entity.Source
	var typ string
	if err := row.Scan(&s.ID, &s.Name, &typ, &s.ReliabilityScore, &s.HistoricalAccuracy, &s.IsActive, &s.LastFetchAt); err != nil {
		return nil, err
	}
	s.Type = entity.SourceType(typ)
	return &s, nil
}

func (r *SourceRepository) ListActive(ctx context.Context) ([]*entity.Source, error) {
	rows, err := r.db.Pool.Query(ctx, listActiveSourcesQuery)
	if err != nil {
		return nil, toAppErr(err, "failed to list active sources")
	}
	defer rows.Close()

	var sources []*entity.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan source")
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SourceRepository) Get(ctx context.Context, id string) (*entity.Source, error) {
	s, err := scanSource(r.db.Pool.QueryRow(ctx, getSourceQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get source", slog.String("source_id", id))
	}
	return s, nil
}

func (r *SourceRepository) AdvanceCursor(ctx context.Context, id string, fetchedAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, advanceSourceCursorQuery, id, fetchedAt)
	if err != nil {
		return toAppErr(err, "failed to advance source cursor", slog.String("source_id", id))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(codes.NotFound, "source not found", slog.String("source_id", id))
	}
	return nil
}

func (r *SourceRepository) UpdateHistoricalAccuracy(ctx context.Context, id string, accuracy float64) error {
	tag, err := r.db.Pool.Exec(ctx, updateSourceAccuracyQuery, id, accuracy)
	if err != nil {
		return toAppErr(err, "failed to update historical accuracy", slog.String("source_id", id))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(codes.NotFound, "source not found", slog.String("source_id", id))
	}
	return nil
}

// EventSourceRepository implements entity.EventSourceRepository for PostgreSQL.
type EventSourceRepository struct {
	db *Database
}

// NewEventSourceRepository creates a new event-source repository instance.
func NewEventSourceRepository(db *Database) *EventSourceRepository {
	return &EventSourceRepository{db: db}
}

var _ entity.EventSourceRepository = (*EventSourceRepository)(nil)

const (
	insertEventSourceQuery = `
		INSERT INTO event_sources (id, event_id, source_id, external_id, source_url, raw_payload, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	listEventSourcesByEventQuery = `
		SELECT id, event_id, source_id, external_id, source_url, raw_payload, fetched_at
		FROM event_sources WHERE event_id = $1
	`
	relinkEventSourceQuery    = `UPDATE event_sources SET event_id = $2 WHERE event_id = $1`
	countEventSourcesQuery    = `SELECT count(*) FROM event_sources WHERE event_id = $1`
)

func (r *EventSourceRepository) Create(ctx context.Context, link *entity.EventSource) error {
	_, err := r.db.Pool.Exec(ctx, insertEventSourceQuery,
		link.ID, link.EventID, link.SourceID, link.ExternalID, link.SourceURL, link.RawPayload, link.FetchedAt,
	)
	if err != nil {
		return toAppErr(err, "failed to insert event source", slog.String("event_id", link.EventID), slog.String("source_id", link.SourceID))
	}
	return nil
}

func (r *EventSourceRepository) ListByEvent(ctx context.Context, eventID string) ([]*entity.EventSource, error) {
	rows, err := r.db.Pool.Query(ctx, listEventSourcesByEventQuery, eventID)
	if err != nil {
		return nil, toAppErr(err, "failed to list event sources", slog.String("event_id", eventID))
	}
	defer rows.Close()

	var links []*entity.EventSource
	for rows.Next() {
		var l entity.EventSource
		if err := rows.Scan(&l.ID, &l.EventID, &l.SourceID, &l.ExternalID, &l.SourceURL, &l.RawPayload, &l.FetchedAt); err != nil {
			return nil, toAppErr(err, "failed to scan event source")
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}

func (r *EventSourceRepository) RelinkEvent(ctx context.Context, fromEventID, toEventID string) error {
	_, err := r.db.Pool.Exec(ctx, relinkEventSourceQuery, fromEventID, toEventID)
	if err != nil {
		return toAppErr(err, "failed to relink event sources", slog.String("from_event_id", fromEventID), slog.String("to_event_id", toEventID))
	}
	return nil
}

func (r *EventSourceRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, countEventSourcesQuery, eventID).Scan(&count); err != nil {
		return 0, toAppErr(err, "failed to count event sources", slog.String("event_id", eventID))
	}
	return count, nil
}
