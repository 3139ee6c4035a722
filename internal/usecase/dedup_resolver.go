package usecase

import (
	"context"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
)

// Resolution is the fixed set of outcomes the deduplication resolver can
// reach for one candidate.
type Resolution string

const (
	ResolutionCreate Resolution = "create"
	ResolutionMerge  Resolution = "merge"
	ResolutionReview Resolution = "review"
)

// MatchType records which fingerprint bucket (if any) produced the match,
// for audit and test assertions.
type MatchType string

const (
	MatchTypeExact        MatchType = "exact"
	MatchTypeFuzzyName    MatchType = "fuzzy_name"
	MatchTypeDateLocation MatchType = "date_location"
	MatchTypeNone         MatchType = "none"
)

// DeduplicationResult is the read-only decision the resolver hands to the
// merge writer.
type DeduplicationResult struct {
	Action          Resolution
	ExistingEventID string
	Confidence      float64
	MatchType       MatchType
}

const (
	exactMergeConfidence  = 0.95
	fuzzyMergeThreshold   = 0.85
	reviewThreshold       = 0.70
	weightName            = 0.40
	weightDate            = 0.30
	weightLocation        = 0.20
	weightVenue           = 0.10
)

// eventSourceReader is the narrow read port the resolver needs to break
// ties between multiple events in the same fingerprint bucket.
type eventSourceReader interface {
	ListByEvent(ctx context.Context, eventID string) ([]*entity.EventSource, error)
}

type sourceReader interface {
	Get(ctx context.Context, id string) (*entity.Source, error)
}

type venueReader interface {
	Get(ctx context.Context, id string) (*entity.Venue, error)
}

// DedupResolver decides, for a normalized candidate, whether it should
// create a new event, merge into an existing one, or be routed to human
// review. It is read-only — grounded on the teacher's
// venueEnrichmentUseCase.enrichOne shape: try candidates in priority
// order, first satisfactory match wins.
type DedupResolver struct {
	fingerprints FingerprintReader
	events       eventReader
	eventSources eventSourceReader
	sources      sourceReader
	venues       venueReader
}

// FingerprintReader is the subset of FingerprintRepository the resolver needs.
type FingerprintReader interface {
	FindEventsByHash(ctx context.Context, kind entity.FingerprintKind, hash string) ([]string, error)
}

type eventReader interface {
	Get(ctx context.Context, id string) (*entity.Event, error)
}

// NewDedupResolver builds a resolver over its narrow read dependencies.
func NewDedupResolver(
	fingerprints FingerprintReader,
	events eventReader,
	eventSources eventSourceReader,
	sources sourceReader,
	venues venueReader,
) *DedupResolver {
	return &DedupResolver{
		fingerprints: fingerprints,
		events:       events,
		eventSources: eventSources,
		sources:      sources,
		venues:       venues,
	}
}

// Resolve runs the ordered fingerprint lookup against a candidate's
// derived fingerprint set and returns the resolver's decision. It performs
// no writes.
func (r *DedupResolver) Resolve(ctx context.Context, candidate *entity.Candidate, fingerprints map[entity.FingerprintKind]string) (*DeduplicationResult, error) {
	if hash, ok := fingerprints[entity.FingerprintKindExact]; ok {
		eventIDs, err := r.fingerprints.FindEventsByHash(ctx, entity.FingerprintKindExact, hash)
		if err != nil {
			return nil, err
		}
		if len(eventIDs) > 0 {
			winner, err := r.breakTie(ctx, eventIDs)
			if err != nil {
				return nil, err
			}
			return &DeduplicationResult{Action: ResolutionMerge, ExistingEventID: winner, Confidence: exactMergeConfidence, MatchType: MatchTypeExact}, nil
		}
	}

	if hash, ok := fingerprints[entity.FingerprintKindFuzzyName]; ok {
		eventIDs, err := r.fingerprints.FindEventsByHash(ctx, entity.FingerprintKindFuzzyName, hash)
		if err != nil {
			return nil, err
		}
		best, bestScore, err := r.bestWeightedMatch(ctx, candidate, eventIDs)
		if err != nil {
			return nil, err
		}
		if best != "" && bestScore >= fuzzyMergeThreshold {
			return &DeduplicationResult{Action: ResolutionMerge, ExistingEventID: best, Confidence: bestScore, MatchType: MatchTypeFuzzyName}, nil
		}
	}

	if hash, ok := fingerprints[entity.FingerprintKindDateLocation]; ok {
		eventIDs, err := r.fingerprints.FindEventsByHash(ctx, entity.FingerprintKindDateLocation, hash)
		if err != nil {
			return nil, err
		}
		best, bestScore, err := r.bestNameSimilarity(ctx, candidate, eventIDs)
		if err != nil {
			return nil, err
		}
		if best != "" && bestScore >= reviewThreshold {
			return &DeduplicationResult{Action: ResolutionReview, ExistingEventID: best, Confidence: bestScore, MatchType: MatchTypeDateLocation}, nil
		}
	}

	return &DeduplicationResult{Action: ResolutionCreate, Confidence: 1.0, MatchType: MatchTypeNone}, nil
}

// bestWeightedMatch scores every candidate event with the full weighted
// similarity formula (name/date/location/venue) and returns the highest
// scorer, breaking ties the same way breakTie does.
func (r *DedupResolver) bestWeightedMatch(ctx context.Context, candidate *entity.Candidate, eventIDs []string) (string, float64, error) {
	var best string
	var bestScore float64
	var tied []string

	for _, id := range eventIDs {
		ev, err := r.events.Get(ctx, id)
		if err != nil {
			continue
		}
		score, err := r.weightedSimilarity(ctx, candidate, ev)
		if err != nil {
			return "", 0, err
		}
		switch {
		case score > bestScore:
			bestScore = score
			best = id
			tied = []string{id}
		case score == bestScore && score > 0:
			tied = append(tied, id)
		}
	}

	if len(tied) > 1 {
		winner, err := r.breakTie(ctx, tied)
		if err != nil {
			return "", 0, err
		}
		return winner, bestScore, nil
	}
	return best, bestScore, nil
}

// bestNameSimilarity scores candidate events by Jaro-Winkler name
// similarity alone, used for the date_location review bucket.
func (r *DedupResolver) bestNameSimilarity(ctx context.Context, candidate *entity.Candidate, eventIDs []string) (string, float64, error) {
	var best string
	var bestScore float64
	for _, id := range eventIDs {
		ev, err := r.events.Get(ctx, id)
		if err != nil {
			continue
		}
		score := normalize.NameSimilarity(candidate.NormalizedName, normalize.Text(ev.Name))
		if score > bestScore {
			bestScore = score
			best = id
		}
	}
	return best, bestScore, nil
}

// weightedSimilarity computes the fixed-weight similarity between a
// candidate and an existing event: name 0.40, date 0.30, location 0.20,
// venue 0.10.
func (r *DedupResolver) weightedSimilarity(ctx context.Context, candidate *entity.Candidate, ev *entity.Event) (float64, error) {
	nameScore := normalize.NameSimilarity(candidate.NormalizedName, normalize.Text(ev.Name))
	dateScore := dateSimilarity(candidate.StartDate, ev.StartDate)

	locationScore := 0.0
	if candidate.NormalizedCityID != nil && *candidate.NormalizedCityID == ev.CityID {
		locationScore = 1.0
	}

	venueScore, err := r.venueSimilarity(ctx, candidate, ev)
	if err != nil {
		return 0, err
	}

	return weightName*nameScore + weightDate*dateScore + weightLocation*locationScore + weightVenue*venueScore, nil
}

// dateSimilarity scores two dates: 1.0 identical, 0.8 within one day, 0.5
// within seven days, else 0.
func dateSimilarity(a, b time.Time) float64 {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1.0
	case diff <= 24*time.Hour:
		return 0.8
	case diff <= 7*24*time.Hour:
		return 0.5
	default:
		return 0
	}
}

// venueSimilarity scores venue agreement: 1.0 both present and equal, 0
// both present and differ, 0.5 when either side is unknown.
func (r *DedupResolver) venueSimilarity(ctx context.Context, candidate *entity.Candidate, ev *entity.Event) (float64, error) {
	if candidate.NormalizedVenueName == nil || ev.VenueID == nil {
		return 0.5, nil
	}
	venue, err := r.venues.Get(ctx, *ev.VenueID)
	if err != nil {
		return 0.5, nil
	}
	if normalize.Text(venue.Name) == *candidate.NormalizedVenueName {
		return 1.0, nil
	}
	return 0, nil
}

// breakTie picks one event among several in the same fingerprint bucket,
// by highest source reliability then earliest created_at — approximated
// here by earliest fetched_at among the event's linked sources, since
// events do not carry their own creation order relative to a tie.
func (r *DedupResolver) breakTie(ctx context.Context, eventIDs []string) (string, error) {
	if len(eventIDs) == 1 {
		return eventIDs[0], nil
	}

	var winner string
	var winnerReliability float64 = -1
	var winnerFetchedAt time.Time

	for _, id := range eventIDs {
		links, err := r.eventSources.ListByEvent(ctx, id)
		if err != nil {
			continue
		}
		reliability, fetchedAt := bestSourceReliability(ctx, r.sources, links)
		switch {
		case reliability > winnerReliability:
			winnerReliability = reliability
			winner = id
			winnerFetchedAt = fetchedAt
		case reliability == winnerReliability && (winner == "" || fetchedAt.Before(winnerFetchedAt)):
			winner = id
			winnerFetchedAt = fetchedAt
		}
	}

	if winner == "" {
		winner = eventIDs[0]
	}
	return winner, nil
}

func bestSourceReliability(ctx context.Context, sources sourceReader, links []*entity.EventSource) (float64, time.Time) {
	var best float64
	var earliest time.Time
	for _, l := range links {
		s, err := sources.Get(ctx, l.SourceID)
		if err != nil {
			continue
		}
		if s.ReliabilityScore > best {
			best = s.ReliabilityScore
		}
		if earliest.IsZero() || l.FetchedAt.Before(earliest) {
			earliest = l.FetchedAt
		}
	}
	return best, earliest
}
