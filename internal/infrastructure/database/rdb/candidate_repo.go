package rdb

import (
	"context"
	"log/slog"
	"time"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// CandidateRepository implements entity.CandidateRepository for PostgreSQL.
type CandidateRepository struct {
	db *Database
}

// NewCandidateRepository creates a new candidate repository instance.
func NewCandidateRepository(db *Database) *CandidateRepository {
	return &CandidateRepository{db: db}
}

var _ entity.CandidateRepository = (*CandidateRepository)(nil)

const (
	insertCandidateQuery = `
		INSERT INTO candidates (
			id, source_id, external_id, source_url, raw_payload,
			normalized_name, normalized_city_id, start_date, end_date, normalized_venue_name,
			raw_name, raw_city_text, raw_venue_text, raw_organizer_name,
			raw_official_website, raw_description, raw_event_type, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	markCandidateProcessedQuery = `
		UPDATE candidates
		SET processed = true, matched_event_id = $2, match_confidence = $3, processed_at = $4
		WHERE id = $1
	`
	listUnprocessedCandidatesQuery = `
		SELECT id, source_id, external_id, source_url, raw_payload,
			normalized_name, normalized_city_id, start_date, end_date, normalized_venue_name,
			raw_name, raw_city_text, raw_venue_text, raw_organizer_name,
			raw_official_website, raw_description, raw_event_type,
			processed, matched_event_id, match_confidence, ingested_at, processed_at
		FROM candidates
		WHERE source_id = $1 AND processed = false
		ORDER BY ingested_at ASC
	`
	listReviewPendingCandidatesQuery = `
		SELECT id, source_id, external_id, source_url, raw_payload,
			normalized_name, normalized_city_id, start_date, end_date, normalized_venue_name,
			raw_name, raw_city_text, raw_venue_text, raw_organizer_name,
			raw_official_website, raw_description, raw_event_type,
			processed, matched_event_id, match_confidence, ingested_at, processed_at
		FROM candidates
		WHERE processed = true AND matched_event_id IS NULL
		ORDER BY ingested_at ASC
	`
	gcUnprocessedCandidatesQuery = `
		DELETE FROM candidates WHERE processed = false AND ingested_at < $1
	`
)

func scanCandidate(row interface{ Scan(...any) error }) (*entity.Candidate, error) {
	var c entity.Candidate
	var rawEventType string
	if err := row.Scan(
		&c.ID, &c.SourceID, &c.ExternalID, &c.SourceURL, &c.RawPayload,
		&c.NormalizedName, &c.NormalizedCityID, &c.StartDate, &c.EndDate, &c.NormalizedVenueName,
		&c.RawName, &c.RawCityText, &c.RawVenueText, &c.RawOrganizerName,
		&c.RawOfficialWebsite, &c.RawDescription, &rawEventType,
		&c.Processed, &c.MatchedEventID, &c.MatchConfidence, &c.IngestedAt, &c.ProcessedAt,
	); err != nil {
		return nil, err
	}
	c.RawEventType = entity.EventType(rawEventType)
	return &c, nil
}

func (r *CandidateRepository) Insert(ctx context.Context, candidate *entity.Candidate) error {
	if candidate.RawName == "" || candidate.SourceID == "" {
		return apperr.New(codes.InvalidArgument, "candidate requires a source and a raw name")
	}
	_, err := r.db.Pool.Exec(ctx, insertCandidateQuery,
		candidate.ID, candidate.SourceID, candidate.ExternalID, candidate.SourceURL, candidate.RawPayload,
		candidate.NormalizedName, candidate.NormalizedCityID, candidate.StartDate, candidate.EndDate, candidate.NormalizedVenueName,
		candidate.RawName, candidate.RawCityText, candidate.RawVenueText, candidate.RawOrganizerName,
		candidate.RawOfficialWebsite, candidate.RawDescription, string(candidate.RawEventType), candidate.IngestedAt,
	)
	if err != nil {
		return toAppErr(err, "failed to insert candidate", slog.String("source_id", candidate.SourceID))
	}
	return nil
}

func (r *CandidateRepository) MarkProcessed(ctx context.Context, id string, matchedEventID *string, confidence float64, processedAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, markCandidateProcessedQuery, id, matchedEventID, confidence, processedAt)
	if err != nil {
		return toAppErr(err, "failed to mark candidate processed", slog.String("candidate_id", id))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(codes.NotFound, "candidate not found", slog.String("candidate_id", id))
	}
	return nil
}

func (r *CandidateRepository) ListUnprocessed(ctx context.Context, sourceID string) ([]*entity.Candidate, error) {
	rows, err := r.db.Pool.Query(ctx, listUnprocessedCandidatesQuery, sourceID)
	if err != nil {
		return nil, toAppErr(err, "failed to list unprocessed candidates", slog.String("source_id", sourceID))
	}
	defer rows.Close()

	var candidates []*entity.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan candidate")
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *CandidateRepository) ListReviewPending(ctx context.Context) ([]*entity.Candidate, error) {
	rows, err := r.db.Pool.Query(ctx, listReviewPendingCandidatesQuery)
	if err != nil {
		return nil, toAppErr(err, "failed to list review-pending candidates")
	}
	defer rows.Close()

	var candidates []*entity.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan candidate")
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *CandidateRepository) GarbageCollectOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.db.Pool.Exec(ctx, gcUnprocessedCandidatesQuery, cutoff)
	if err != nil {
		return 0, toAppErr(err, "failed to garbage collect candidates")
	}
	return int(tag.RowsAffected()), nil
}

// FingerprintRepository implements entity.FingerprintRepository for PostgreSQL.
type FingerprintRepository struct {
	db *Database
}

// NewFingerprintRepository creates a new fingerprint repository instance.
func NewFingerprintRepository(db *Database) *FingerprintRepository {
	return &FingerprintRepository{db: db}
}

var _ entity.FingerprintRepository = (*FingerprintRepository)(nil)

const (
	findEventsByFingerprintQuery = `
		SELECT event_id FROM fingerprints WHERE kind = $1 AND hash = $2
	`
	deleteFingerprintsForEventQuery = `DELETE FROM fingerprints WHERE event_id = $1`
	insertFingerprintQuery          = `
		INSERT INTO fingerprints (id, kind, hash, event_id) VALUES ($1, $2, $3, $4)
	`
)

func (r *FingerprintRepository) FindEventsByHash(ctx context.Context, kind entity.FingerprintKind, hash string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, findEventsByFingerprintQuery, string(kind), hash)
	if err != nil {
		return nil, toAppErr(err, "failed to find events by fingerprint", slog.String("kind", string(kind)))
	}
	defer rows.Close()

	var eventIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, toAppErr(err, "failed to scan event id")
		}
		eventIDs = append(eventIDs, id)
	}
	return eventIDs, rows.Err()
}

func (r *FingerprintRepository) ReplaceForEvent(ctx context.Context, eventID string, fingerprints []entity.Fingerprint) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return toAppErr(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, deleteFingerprintsForEventQuery, eventID); err != nil {
		return toAppErr(err, "failed to clear fingerprints", slog.String("event_id", eventID))
	}
	for _, fp := range fingerprints {
		if _, err := tx.Exec(ctx, insertFingerprintQuery, fp.ID, string(fp.Kind), fp.Hash, eventID); err != nil {
			return toAppErr(err, "failed to insert fingerprint", slog.String("event_id", eventID), slog.String("kind", string(fp.Kind)))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return toAppErr(err, "failed to commit transaction")
	}
	return nil
}
