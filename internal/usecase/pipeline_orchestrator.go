package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pannpers/go-logging/logging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/fingerprint"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/workerpool"
)

// SourceReport summarizes one source's run within an ingestion pass.
type SourceReport struct {
	SourceID     string
	Fetched      int
	Created      int
	Merged       int
	ReviewNeeded int
	Err          error
}

// IngestionReport aggregates every source's SourceReport for one
// orchestrator run.
type IngestionReport struct {
	Sources []SourceReport
}

// candidateStore is the narrow write port the orchestrator uses to stage
// and later finalize candidates.
type candidateStore interface {
	Insert(ctx context.Context, candidate *entity.Candidate) error
	MarkProcessed(ctx context.Context, id string, matchedEventID *string, confidence float64, processedAt time.Time) error
	ListUnprocessed(ctx context.Context, sourceID string) ([]*entity.Candidate, error)
	GarbageCollectOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// sourceStore is the narrow read/write port over the source registry the
// orchestrator needs.
type sourceStore interface {
	ListActive(ctx context.Context) ([]*entity.Source, error)
	AdvanceCursor(ctx context.Context, id string, fetchedAt time.Time) error
}

// PipelineOrchestrator runs the five-step ingestion pipeline: load active
// sources, bounded-parallel fetch, sequential per-source candidate
// processing, cursor advance, report aggregation. Grounded on the
// teacher's cmd/job/concert-discovery/main.go shape (consecutive-failure
// tolerance, per-unit loop, structured completion log) generalized from
// "one artist at a time" to "one source at a time, N sources in
// parallel".
type PipelineOrchestrator struct {
	sources     sourceStore
	candidates  candidateStore
	adapters    *source.Registry
	resolver    *DedupResolver
	writer      *MergeWriter
	publisher   message.Publisher
	logger      *logging.Logger
	concurrency int
}

// NewPipelineOrchestrator builds an orchestrator over its dependencies.
// concurrency bounds how many sources are fetched at once.
func NewPipelineOrchestrator(
	sources sourceStore,
	candidates candidateStore,
	adapters *source.Registry,
	resolver *DedupResolver,
	writer *MergeWriter,
	publisher message.Publisher,
	logger *logging.Logger,
	concurrency int,
) *PipelineOrchestrator {
	return &PipelineOrchestrator{
		sources:     sources,
		candidates:  candidates,
		adapters:    adapters,
		resolver:    resolver,
		writer:      writer,
		publisher:   publisher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run executes one full ingestion pass over every active source.
func (o *PipelineOrchestrator) Run(ctx context.Context) (*IngestionReport, error) {
	sources, err := o.sources.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]SourceReport, len(sources))
	pool := workerpool.New(o.concurrency)

	for i, src := range sources {
		i, src := i, src
		pool.Go(ctx, func(ctx context.Context) error {
			reports[i] = o.runSource(ctx, src)
			return nil
		}, nil)
	}
	pool.Wait()

	return &IngestionReport{Sources: reports}, nil
}

// runSource fetches, normalizes, and resolves every record for one
// source. A failure in the fetch stage aborts the source's cursor
// advance but never the overall run; a failure normalizing or resolving
// one record is isolated to that record.
func (o *PipelineOrchestrator) runSource(ctx context.Context, src *entity.Source) SourceReport {
	report := SourceReport{SourceID: src.ID}

	adapter, err := o.adapters.Resolve(src.Type)
	if err != nil {
		report.Err = err
		return report
	}

	records, err := adapter.Fetch(ctx, src.LastFetchAt)
	if err != nil {
		o.logger.Error(ctx, "source fetch failed", err, slog.String("source_id", src.ID))
		report.Err = err
		return report
	}

	fetchedAt := time.Now()
	for record := range records {
		report.Fetched++

		candidate, err := adapter.Normalize(ctx, record)
		if err != nil {
			o.logger.Error(ctx, "candidate normalize failed", err, slog.String("source_id", src.ID))
			continue
		}
		candidate.SourceID = src.ID

		if err := o.candidates.Insert(ctx, candidate); err != nil {
			o.logger.Error(ctx, "candidate insert failed", err, slog.String("source_id", src.ID))
			continue
		}

		o.processOne(ctx, candidate, &report)
	}

	if err := o.sources.AdvanceCursor(ctx, src.ID, fetchedAt); err != nil {
		o.logger.Error(ctx, "cursor advance failed", err, slog.String("source_id", src.ID))
		report.Err = err
	}

	o.logger.Info(ctx, "source ingestion complete",
		slog.String("source_id", src.ID),
		slog.Int("fetched", report.Fetched),
		slog.Int("created", report.Created),
		slog.Int("merged", report.Merged),
		slog.Int("review_needed", report.ReviewNeeded),
	)
	return report
}

// processOne resolves and applies the decision for one already-inserted
// candidate, updating the running report and publishing the matching
// CloudEvent.
func (o *PipelineOrchestrator) processOne(ctx context.Context, candidate *entity.Candidate, report *SourceReport) {
	fps := fingerprint.Derive(candidate.NormalizedName, candidate.StartDate, candidate.NormalizedCityID)

	result, err := o.resolver.Resolve(ctx, candidate, fps)
	if err != nil {
		o.logger.Error(ctx, "resolve failed", err, slog.String("candidate_id", candidate.ID))
		return
	}

	eventID, err := o.writer.Apply(ctx, candidate, result)
	if err != nil {
		o.logger.Error(ctx, "apply decision failed", err,
			slog.String("candidate_id", candidate.ID), slog.String("action", string(result.Action)))
		return
	}

	switch result.Action {
	case ResolutionCreate:
		report.Created++
		o.publish(ctx, messaging.EventTypeEventCreated, messaging.EventCreatedData{
			EventID: eventID, SourceID: candidate.SourceID,
		})
	case ResolutionMerge:
		report.Merged++
		o.publish(ctx, messaging.EventTypeEventMerged, messaging.EventMergedData{
			KeepEventID: eventID,
		})
	case ResolutionReview:
		report.ReviewNeeded++
		o.publish(ctx, messaging.EventTypeReviewRequired, messaging.ReviewRequiredData{
			CandidateID:     candidate.ID,
			ExistingEventID: result.ExistingEventID,
			MatchType:       string(result.MatchType),
			MatchConfidence: result.Confidence,
		})
	}
}

func (o *PipelineOrchestrator) publish(ctx context.Context, eventType string, data any) {
	msg, err := messaging.NewCloudEvent(eventType, data)
	if err != nil {
		o.logger.Error(ctx, "failed to build event", err, slog.String("event_type", eventType))
		return
	}
	if err := o.publisher.Publish(eventType, msg); err != nil {
		o.logger.Error(ctx, "failed to publish event", err, slog.String("event_type", eventType))
	}
}

// RunGarbageCollection deletes unprocessed candidates older than the
// fixed 30-day retention window. Scheduled weekly.
func (o *PipelineOrchestrator) RunGarbageCollection(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	return o.candidates.GarbageCollectOlderThan(ctx, cutoff)
}

// RunDailyMaintenance archives past-due events, recomputes stale
// confidence scores, and publishes the rebuild-requested event the
// projection synchronizer consumes. Scheduled daily at 02:00 UTC.
func (o *PipelineOrchestrator) RunDailyMaintenance(ctx context.Context, archiver *ArchivalUseCase, scorer *ConfidenceScorer) error {
	archived, err := archiver.ArchivePastEvents(ctx)
	if err != nil {
		return err
	}
	o.logger.Info(ctx, "daily archival complete", slog.Int("archived", archived))

	recomputed, err := archiver.RecomputeStaleConfidence(ctx, scorer)
	if err != nil {
		return err
	}
	o.logger.Info(ctx, "stale confidence recompute complete", slog.Int("recomputed", recomputed))

	o.publish(ctx, messaging.EventTypePipelineArchival, struct {
		Archived   int `json:"archived"`
		Recomputed int `json:"recomputed"`
	}{Archived: archived, Recomputed: recomputed})

	o.publish(ctx, messaging.EventTypeRebuildRequested, messaging.RebuildRequestedData{
		Reason: "daily maintenance",
	})
	return nil
}
