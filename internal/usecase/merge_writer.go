package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/fingerprint"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
)

// MergeStore is the narrow write port the merge writer depends on, one
// transaction per candidate, mirroring the teacher's
// VenueRepository.MergeVenues transaction shape generalized from venues
// to events.
type MergeStore interface {
	CreateEvent(ctx context.Context, event *entity.Event, source *entity.EventSource, fingerprints []entity.Fingerprint, candidateID string, confidence float64) error
	MergeEvent(ctx context.Context, eventID string, overwrite *entity.Event, source *entity.EventSource, fingerprints []entity.Fingerprint, candidateID string, confidence float64) error
	RouteToReview(ctx context.Context, candidateID string, confidence float64) error
}

// MergeWriter applies a DedupResolver decision for one candidate inside a
// single transaction, then triggers confidence recomputation for the
// affected event.
type MergeWriter struct {
	store        MergeStore
	events       eventReader
	eventSources eventSourceReader
	sources      sourceReader
	scorer       *ConfidenceScorer
}

// NewMergeWriter builds a merge writer over its store and scorer.
func NewMergeWriter(store MergeStore, events eventReader, eventSources eventSourceReader, sources sourceReader, scorer *ConfidenceScorer) *MergeWriter {
	return &MergeWriter{store: store, events: events, eventSources: eventSources, sources: sources, scorer: scorer}
}

// Apply writes the outcome of a DeduplicationResult for one candidate and
// recomputes confidence for whichever event was affected. create and
// merge call the Confidence Scorer; review makes no event mutation and so
// has nothing to score. eventID is the affected event's ID for create and
// merge (populated from the newly generated ID on create, since the
// resolver decision has no event ID to give yet), empty for review.
func (w *MergeWriter) Apply(ctx context.Context, candidate *entity.Candidate, result *DeduplicationResult) (eventID string, err error) {
	source := &entity.EventSource{
		ID:         uuid.NewString(),
		SourceID:   candidate.SourceID,
		ExternalID: candidate.ExternalID,
		SourceURL:  candidate.SourceURL,
		RawPayload: candidate.RawPayload,
		FetchedAt:  candidate.IngestedAt,
	}

	switch result.Action {
	case ResolutionCreate:
		event := eventFromCandidate(candidate)
		source.EventID = event.ID
		fps := fingerprint.DeriveEvent(event).ToRows(event.ID)

		if err := w.store.CreateEvent(ctx, event, source, fps, candidate.ID, result.Confidence); err != nil {
			return "", err
		}
		_, err := w.scorer.Score(ctx, event.ID)
		return event.ID, err

	case ResolutionMerge:
		source.EventID = result.ExistingEventID

		existing, err := w.events.Get(ctx, result.ExistingEventID)
		if err != nil {
			return "", err
		}

		var overwrite *entity.Event
		var fps []entity.Fingerprint
		outranks, err := w.candidateOutranksExisting(ctx, candidate.SourceID, result.ExistingEventID)
		if err != nil {
			return "", err
		}
		if outranks {
			overwrite = overwriteFromCandidate(existing, candidate)
			fps = fingerprint.DeriveEvent(overwrite).ToRows(overwrite.ID)
		}

		if err := w.store.MergeEvent(ctx, result.ExistingEventID, overwrite, source, fps, candidate.ID, result.Confidence); err != nil {
			return "", err
		}
		_, err = w.scorer.Score(ctx, result.ExistingEventID)
		return result.ExistingEventID, err

	case ResolutionReview:
		return "", w.store.RouteToReview(ctx, candidate.ID, result.Confidence)

	default:
		return "", nil
	}
}

// candidateOutranksExisting reports whether the candidate's own source has
// strictly higher reliability than the best of the existing event's
// already-linked sources — the rule that gates whether a merge overwrites
// the event's canonical attributes.
func (w *MergeWriter) candidateOutranksExisting(ctx context.Context, candidateSourceID, existingEventID string) (bool, error) {
	candidateSource, err := w.sources.Get(ctx, candidateSourceID)
	if err != nil {
		return false, err
	}

	links, err := w.eventSources.ListByEvent(ctx, existingEventID)
	if err != nil {
		return false, err
	}
	bestExisting, _ := bestSourceReliability(ctx, w.sources, links)

	return candidateSource.ReliabilityScore > bestExisting, nil
}

func eventFromCandidate(c *entity.Candidate) *entity.Event {
	var cityID string
	if c.NormalizedCityID != nil {
		cityID = *c.NormalizedCityID
	}
	return &entity.Event{
		ID:              uuid.NewString(),
		Slug:            normalize.Text(c.RawName),
		Name:            c.RawName,
		Type:            c.RawEventType,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		CityID:          cityID,
		Description:     c.RawDescription,
		OfficialWebsite: c.RawOfficialWebsite,
		Status:          entity.EventStatusAnnounced,
	}
}

func overwriteFromCandidate(existing *entity.Event, c *entity.Candidate) *entity.Event {
	merged := *existing
	merged.Name = c.RawName
	merged.StartDate = c.StartDate
	merged.EndDate = c.EndDate
	merged.OfficialWebsite = c.RawOfficialWebsite
	return &merged
}
