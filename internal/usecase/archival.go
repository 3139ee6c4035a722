package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pannpers/go-logging/logging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
)

// eventWriter is the narrow write port the daily maintenance sweep needs
// beyond plain reads.
type eventWriter interface {
	eventReader
	eventUpdater
	ListStaleVerification(ctx context.Context, olderThan time.Time) ([]*entity.Event, error)
	ListPastUnarchived(ctx context.Context, before time.Time) ([]*entity.Event, error)
}

// ArchivalUseCase runs the daily maintenance sweep: archiving past-due
// events and recomputing confidence for events whose verification has
// gone stale. publisher and logger are optional; when publisher is nil,
// archival still runs but event.archived.v1 is not emitted and the
// search projection will only catch up on the next full rebuild.
type ArchivalUseCase struct {
	events     eventWriter
	staleAfter time.Duration
	publisher  message.Publisher
	logger     *logging.Logger
}

// NewArchivalUseCase builds an archival use case. staleAfter is the age
// past which an event's last_verified_at triggers recomputation
// (typically the Confidence Scorer's 90-day recency window).
func NewArchivalUseCase(events eventWriter, staleAfter time.Duration, publisher message.Publisher, logger *logging.Logger) *ArchivalUseCase {
	return &ArchivalUseCase{events: events, staleAfter: staleAfter, publisher: publisher, logger: logger}
}

// ArchivePastEvents transitions every non-archived event whose effective
// end date has passed to EventStatusArchived. Archived is terminal:
// ingestion never reverses this.
func (a *ArchivalUseCase) ArchivePastEvents(ctx context.Context) (int, error) {
	past, err := a.events.ListPastUnarchived(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	var archived int
	for _, ev := range past {
		ev.Status = entity.EventStatusArchived
		if err := a.events.Update(ctx, ev); err != nil {
			continue
		}
		archived++
		a.publishArchived(ctx, ev.ID)
	}
	return archived, nil
}

// publishArchived emits event.archived.v1 so the search-projection
// consumer can drop the event without this sweep depending on the
// search client directly. Publish failures are logged and swallowed:
// the event row is already archived, and the next full rebuild will
// reconcile the projection regardless.
func (a *ArchivalUseCase) publishArchived(ctx context.Context, eventID string) {
	if a.publisher == nil {
		return
	}

	msg, err := messaging.NewCloudEvent(messaging.EventTypeEventArchived, messaging.EventArchivedData{
		EventID: eventID,
		Reason:  "past_due",
	})
	if err != nil {
		a.logger.Error(ctx, "failed to build event.archived event", err, slog.String("event_id", eventID))
		return
	}

	if err := a.publisher.Publish(messaging.EventTypeEventArchived, msg); err != nil {
		a.logger.Error(ctx, "failed to publish event.archived event", err, slog.String("event_id", eventID))
	}
}

// RecomputeStaleConfidence re-scores every event whose last_verified_at
// is older than the configured window.
func (a *ArchivalUseCase) RecomputeStaleConfidence(ctx context.Context, scorer *ConfidenceScorer) (int, error) {
	stale, err := a.events.ListStaleVerification(ctx, time.Now().Add(-a.staleAfter))
	if err != nil {
		return 0, err
	}

	var recomputed int
	for _, ev := range stale {
		if _, err := scorer.Score(ctx, ev.ID); err != nil {
			continue
		}
		recomputed++
	}
	return recomputed, nil
}
