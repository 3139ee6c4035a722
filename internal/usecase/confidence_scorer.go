package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
)

const (
	weightReliability  = 0.35
	weightCompleteness = 0.25
	weightAgreement    = 0.20
	weightRecency      = 0.10
	weightHistorical   = 0.10

	defaultReliability       = 0.3
	defaultHistoricalAccuracy = 0.5
	recencyWindowDays        = 90
)

// eventUpdater is the subset of EventRepository the scorer needs to write
// back its recomputed score.
type eventUpdater interface {
	Update(ctx context.Context, event *entity.Event) error
}

// ConfidenceScorer recomputes an event's confidence_score from its linked
// sources, using the fixed weighted formula
// 0.35*reliability + 0.25*completeness + 0.20*agreement + 0.10*recency + 0.10*historical.
type ConfidenceScorer struct {
	events       eventReader
	eventUpdates eventUpdater
	eventSources eventSourceReader
	sources      sourceReader
}

// NewConfidenceScorer builds a scorer over its dependencies.
func NewConfidenceScorer(events eventReader, eventUpdates eventUpdater, eventSources eventSourceReader, sources sourceReader) *ConfidenceScorer {
	return &ConfidenceScorer{events: events, eventUpdates: eventUpdates, eventSources: eventSources, sources: sources}
}

// Score recomputes and persists the confidence_score and last_verified_at
// for the given event.
func (s *ConfidenceScorer) Score(ctx context.Context, eventID string) (float64, error) {
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}

	links, err := s.eventSources.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	r, primary := s.reliabilityTerm(ctx, links)
	c := completenessTerm(ev)
	a := agreementTerm(links)
	t := recencyTerm(ev.LastVerifiedAt)
	h := s.historicalTerm(ctx, primary)

	score := weightReliability*r + weightCompleteness*c + weightAgreement*a + weightRecency*t + weightHistorical*h

	now := nowFunc()
	ev.ConfidenceScore = score
	ev.LastVerifiedAt = now
	if err := s.eventUpdates.Update(ctx, ev); err != nil {
		return 0, err
	}
	return score, nil
}

// reliabilityTerm returns the max reliability_score among the event's
// linked sources (0.3 if none), plus the id of the most reliable source
// for the historical-accuracy term.
func (s *ConfidenceScorer) reliabilityTerm(ctx context.Context, links []*entity.EventSource) (float64, string) {
	if len(links) == 0 {
		return defaultReliability, ""
	}
	best := defaultReliability
	var primary string
	var any bool
	for _, l := range links {
		src, err := s.sources.Get(ctx, l.SourceID)
		if err != nil {
			continue
		}
		if !any || src.ReliabilityScore > best {
			best = src.ReliabilityScore
			primary = l.SourceID
			any = true
		}
	}
	if !any {
		best = defaultReliability
	}
	return best, primary
}

// completenessTerm weighs required fields (name, start_date, city, status)
// 0.7 and optional fields (end_date, venue, description, official_website)
// 0.3, each as a fraction present out of 4.
func completenessTerm(ev *entity.Event) float64 {
	required := float64(ev.RequiredFieldsPresent()) / 4.0
	optional := float64(ev.OptionalFieldsPresent()) / 4.0
	return 0.7*required + 0.3*optional
}

// sourcePayload is the subset of a source's raw candidate payload the
// agreement term can compare across sources.
type sourcePayload struct {
	StartDate string `json:"start_date"`
	VenueName string `json:"venue_name"`
}

// agreementTerm compares, per attribute (start date, venue name), whether
// every source that reported a value agrees after normalization. Each
// attribute contributes 1 when all sources with a value agree, 0
// otherwise, averaged over attributes carried by at least two sources.
// Returns 0.5 when only one source exists.
func agreementTerm(links []*entity.EventSource) float64 {
	if len(links) <= 1 {
		return 0.5
	}

	var startDates, venueNames []string
	for _, l := range links {
		var p sourcePayload
		if err := json.Unmarshal(l.RawPayload, &p); err != nil {
			continue
		}
		if p.StartDate != "" {
			startDates = append(startDates, p.StartDate)
		}
		if p.VenueName != "" {
			venueNames = append(venueNames, normalize.Text(p.VenueName))
		}
	}

	var sum float64
	var n int
	if len(startDates) >= 2 {
		sum += agreementScore(startDates)
		n++
	}
	if len(venueNames) >= 2 {
		sum += agreementScore(venueNames)
		n++
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}

func agreementScore(values []string) float64 {
	for _, v := range values[1:] {
		if v != values[0] {
			return 0
		}
	}
	return 1
}

// recencyTerm is max(0, 1 - days_since_last_verified/90).
func recencyTerm(lastVerifiedAt time.Time) float64 {
	if lastVerifiedAt.IsZero() {
		return 0
	}
	days := nowFunc().Sub(lastVerifiedAt).Hours() / 24
	score := 1 - days/recencyWindowDays
	if score < 0 {
		return 0
	}
	return score
}

func (s *ConfidenceScorer) historicalTerm(ctx context.Context, primarySourceID string) float64 {
	if primarySourceID == "" {
		return defaultHistoricalAccuracy
	}
	src, err := s.sources.Get(ctx, primarySourceID)
	if err != nil {
		return defaultHistoricalAccuracy
	}
	return src.HistoricalAccuracy
}

// nowFunc is a seam for deterministic testing.
var nowFunc = time.Now
