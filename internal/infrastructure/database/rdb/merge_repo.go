package rdb

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// MergeRepository runs the merge writer's per-candidate write path: event
// create/overwrite, provenance linkage, fingerprint replacement, and the
// candidate outcome, all inside one transaction. Grounded directly on the
// teacher's VenueRepository.MergeVenues multi-step transaction shape,
// generalized from venues to events.
type MergeRepository struct {
	db *Database
}

// NewMergeRepository creates a new merge repository instance.
func NewMergeRepository(db *Database) *MergeRepository {
	return &MergeRepository{db: db}
}

const (
	mrInsertEventQuery = `
		INSERT INTO events (
			id, slug, name, type, start_date, end_date, city_id, region_id, venue_id, organizer_id,
			description, official_website, status, is_verified, is_pinned, cultural_significance,
			confidence_score, last_verified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	mrInsertEventSourceQuery = `
		INSERT INTO event_sources (id, event_id, source_id, external_id, source_url, raw_payload, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source_id, external_id) DO NOTHING
	`
	mrOverwriteEventQuery = `
		UPDATE events SET
			name = $2, start_date = $3, end_date = $4, venue_id = $5, organizer_id = $6, official_website = $7,
			update_time = NOW()
		WHERE id = $1
	`
	mrTouchEventVerifiedQuery = `UPDATE events SET last_verified_at = NOW() WHERE id = $1`
	mrDeleteFingerprintsQuery = `DELETE FROM fingerprints WHERE event_id = $1`
	mrInsertFingerprintQuery  = `INSERT INTO fingerprints (id, kind, hash, event_id) VALUES ($1, $2, $3, $4)`
	mrMarkCandidateQuery      = `
		UPDATE candidates SET processed = true, matched_event_id = $2, match_confidence = $3, processed_at = NOW()
		WHERE id = $1
	`
)

// CreateEvent inserts a brand-new event for a candidate with no
// satisfactory match, links its originating source, and writes its
// initial fingerprint set.
func (r *MergeRepository) CreateEvent(ctx context.Context, event *entity.Event, source *entity.EventSource, fingerprints []entity.Fingerprint, candidateID string, confidence float64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return toAppErr(err, "failed to begin create-event transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, mrInsertEventQuery,
		event.ID, event.Slug, event.Name, string(event.Type), event.StartDate, event.EndDate, event.CityID, event.RegionID,
		event.VenueID, event.OrganizerID, event.Description, event.OfficialWebsite, string(event.Status),
		event.IsVerified, event.IsPinned, event.CulturalSignificance, event.ConfidenceScore, event.LastVerifiedAt,
	); err != nil {
		return toAppErr(err, "failed to insert event during candidate resolution", slog.String("event_id", event.ID))
	}

	if err := insertEventSourceTx(ctx, tx, source); err != nil {
		return err
	}

	if err := replaceFingerprintsTx(ctx, tx, event.ID, fingerprints); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, mrMarkCandidateQuery, candidateID, event.ID, confidence); err != nil {
		return toAppErr(err, "failed to mark candidate processed", slog.String("candidate_id", candidateID))
	}

	if err := tx.Commit(ctx); err != nil {
		return toAppErr(err, "failed to commit create-event transaction")
	}
	return nil
}

// MergeEvent links a candidate's source to an existing event, optionally
// overwriting the event's canonical attributes (when the new source
// outranks the event's current best source), and always refreshes
// last_verified_at.
func (r *MergeRepository) MergeEvent(ctx context.Context, eventID string, overwrite *entity.Event, source *entity.EventSource, fingerprints []entity.Fingerprint, candidateID string, confidence float64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return toAppErr(err, "failed to begin merge-event transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertEventSourceTx(ctx, tx, source); err != nil {
		return err
	}

	if overwrite != nil {
		if _, err := tx.Exec(ctx, mrOverwriteEventQuery,
			eventID, overwrite.Name, overwrite.StartDate, overwrite.EndDate, overwrite.VenueID, overwrite.OrganizerID, overwrite.OfficialWebsite,
		); err != nil {
			return toAppErr(err, "failed to overwrite event canonical attributes", slog.String("event_id", eventID))
		}
		if err := replaceFingerprintsTx(ctx, tx, eventID, fingerprints); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, mrTouchEventVerifiedQuery, eventID); err != nil {
		return toAppErr(err, "failed to touch last_verified_at", slog.String("event_id", eventID))
	}

	if _, err := tx.Exec(ctx, mrMarkCandidateQuery, candidateID, eventID, confidence); err != nil {
		return toAppErr(err, "failed to mark candidate processed", slog.String("candidate_id", candidateID))
	}

	if err := tx.Commit(ctx); err != nil {
		return toAppErr(err, "failed to commit merge-event transaction")
	}
	return nil
}

// RouteToReview marks a candidate processed with no matched event,
// leaving it for the editorial review queue. No event is mutated.
func (r *MergeRepository) RouteToReview(ctx context.Context, candidateID string, confidence float64) error {
	if _, err := r.db.Pool.Exec(ctx, mrMarkCandidateQuery, candidateID, nil, confidence); err != nil {
		return toAppErr(err, "failed to route candidate to review", slog.String("candidate_id", candidateID))
	}
	return nil
}

// MergeEditorialEvents snapshots the losing event, re-links its
// EventSources and non-duplicate EventArtists to the keeper, deletes the
// losing event, and writes the merge's audit row, all in one
// transaction. Used by the editorial merge command, distinct from
// MergeEvent which merges a resolver candidate into an existing event.
func (r *MergeRepository) MergeEditorialEvents(ctx context.Context, keep, lose *entity.Event, action *entity.EditorialAction) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return toAppErr(err, "failed to begin editorial merge transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	payload, err := json.Marshal(lose)
	if err != nil {
		return apperr.Wrap(err, codes.Internal, "failed to marshal event snapshot", slog.String("event_id", lose.ID))
	}
	snapshotID := uuid.NewString()
	if _, err := tx.Exec(ctx, insertSnapshotQuery, snapshotID, lose.ID, payload); err != nil {
		return toAppErr(err, "failed to snapshot losing event", slog.String("event_id", lose.ID))
	}

	if _, err := tx.Exec(ctx, relinkEventSourcesQuery, lose.ID, keep.ID); err != nil {
		return toAppErr(err, "failed to relink event sources", slog.String("from", lose.ID), slog.String("to", keep.ID))
	}
	if _, err := tx.Exec(ctx, relinkEventArtistsQuery, lose.ID, keep.ID); err != nil {
		return toAppErr(err, "failed to relink event artists", slog.String("from", lose.ID), slog.String("to", keep.ID))
	}

	if _, err := tx.Exec(ctx, deleteEventQuery, lose.ID); err != nil {
		return toAppErr(err, "failed to delete losing event", slog.String("event_id", lose.ID))
	}

	if _, err := tx.Exec(ctx, insertEditorialActionQuery,
		action.ID, string(action.Type), action.EventID, action.Actor, action.Payload,
	); err != nil {
		return toAppErr(err, "failed to insert editorial action", slog.String("event_id", action.EventID))
	}

	if err := tx.Commit(ctx); err != nil {
		return toAppErr(err, "failed to commit editorial merge transaction")
	}
	return nil
}

const (
	relinkEventSourcesQuery = `UPDATE event_sources SET event_id = $2 WHERE event_id = $1`
	relinkEventArtistsQuery = `
		INSERT INTO event_artists (event_id, artist_id)
		SELECT $2, artist_id FROM event_artists WHERE event_id = $1
		ON CONFLICT DO NOTHING
	`
)

func insertEventSourceTx(ctx context.Context, tx pgx.Tx, source *entity.EventSource) error {
	if _, err := tx.Exec(ctx, mrInsertEventSourceQuery,
		source.ID, source.EventID, source.SourceID, source.ExternalID, source.SourceURL, source.RawPayload, source.FetchedAt,
	); err != nil {
		return toAppErr(err, "failed to insert event source", slog.String("event_id", source.EventID), slog.String("source_id", source.SourceID))
	}
	return nil
}

func replaceFingerprintsTx(ctx context.Context, tx pgx.Tx, eventID string, fingerprints []entity.Fingerprint) error {
	if _, err := tx.Exec(ctx, mrDeleteFingerprintsQuery, eventID); err != nil {
		return toAppErr(err, "failed to clear fingerprints", slog.String("event_id", eventID))
	}
	for _, fp := range fingerprints {
		if _, err := tx.Exec(ctx, mrInsertFingerprintQuery, fp.ID, string(fp.Kind), fp.Hash, eventID); err != nil {
			return toAppErr(err, "failed to insert fingerprint", slog.String("event_id", eventID), slog.String("kind", string(fp.Kind)))
		}
	}
	return nil
}
