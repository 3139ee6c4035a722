package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupResolver_Resolve_ExactMatch(t *testing.T) {
	existing := &entity.Event{ID: "ev-1", Name: "Festival Gnaoua", StartDate: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), CityID: "city-essaouira"}
	events := newFakeEventStore(existing)
	fingerprints := newFakeFingerprintStore()
	fingerprints.index(entity.FingerprintKindExact, "hash-exact", "ev-1")

	resolver := usecase.NewDedupResolver(fingerprints, events, newFakeEventSourceStore(), newFakeSourceStore(), newFakeVenueStore())

	candidate := &entity.Candidate{ID: "cand-1", NormalizedName: "festival gnaoua"}
	result, err := resolver.Resolve(context.Background(), candidate, map[entity.FingerprintKind]string{
		entity.FingerprintKindExact: "hash-exact",
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.ResolutionMerge, result.Action)
	assert.Equal(t, "ev-1", result.ExistingEventID)
	assert.Equal(t, usecase.MatchTypeExact, result.MatchType)
	assert.InDelta(t, 0.95, result.Confidence, 0.0001)
}

func TestDedupResolver_Resolve_FuzzyNameMatch(t *testing.T) {
	existing := &entity.Event{
		ID:        "ev-1",
		Name:      "Festival Gnaoua",
		StartDate: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		CityID:    "city-essaouira",
	}
	events := newFakeEventStore(existing)
	fingerprints := newFakeFingerprintStore()
	fingerprints.index(entity.FingerprintKindFuzzyName, "hash-fuzzy", "ev-1")

	resolver := usecase.NewDedupResolver(fingerprints, events, newFakeEventSourceStore(), newFakeSourceStore(), newFakeVenueStore())

	cityID := "city-essaouira"
	candidate := &entity.Candidate{
		ID:               "cand-1",
		NormalizedName:   normalize.Text("Festival Gnaoua"),
		StartDate:        time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		NormalizedCityID: &cityID,
	}
	result, err := resolver.Resolve(context.Background(), candidate, map[entity.FingerprintKind]string{
		entity.FingerprintKindFuzzyName: "hash-fuzzy",
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.ResolutionMerge, result.Action)
	assert.Equal(t, "ev-1", result.ExistingEventID)
	assert.Equal(t, usecase.MatchTypeFuzzyName, result.MatchType)
}

func TestDedupResolver_Resolve_DateLocationRoutesToReview(t *testing.T) {
	existing := &entity.Event{
		ID:        "ev-1",
		Name:      "Festival Gnaoua",
		StartDate: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		CityID:    "city-essaouira",
	}
	events := newFakeEventStore(existing)
	fingerprints := newFakeFingerprintStore()
	fingerprints.index(entity.FingerprintKindDateLocation, "hash-dl", "ev-1")

	resolver := usecase.NewDedupResolver(fingerprints, events, newFakeEventSourceStore(), newFakeSourceStore(), newFakeVenueStore())

	// Same name, routed only through the date_location bucket (the test
	// fingerprint map has no fuzzy_name/exact entry) — bestNameSimilarity
	// alone decides the review threshold here.
	candidate := &entity.Candidate{
		ID:             "cand-1",
		NormalizedName: normalize.Text("Festival Gnaoua"),
		StartDate:      time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
	}
	result, err := resolver.Resolve(context.Background(), candidate, map[entity.FingerprintKind]string{
		entity.FingerprintKindDateLocation: "hash-dl",
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.ResolutionReview, result.Action)
	assert.Equal(t, usecase.MatchTypeDateLocation, result.MatchType)
}

func TestDedupResolver_Resolve_NoMatchCreatesNew(t *testing.T) {
	fingerprints := newFakeFingerprintStore()
	resolver := usecase.NewDedupResolver(fingerprints, newFakeEventStore(), newFakeEventSourceStore(), newFakeSourceStore(), newFakeVenueStore())

	candidate := &entity.Candidate{ID: "cand-1", NormalizedName: "unseen event"}
	result, err := resolver.Resolve(context.Background(), candidate, map[entity.FingerprintKind]string{
		entity.FingerprintKindExact: "hash-missing",
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.ResolutionCreate, result.Action)
	assert.Equal(t, usecase.MatchTypeNone, result.MatchType)
	assert.InDelta(t, 1.0, result.Confidence, 0.0001)
}

func TestDedupResolver_Resolve_ExactMatchTieBreaksByReliability(t *testing.T) {
	eventA := &entity.Event{ID: "ev-a", Name: "Festival Gnaoua", StartDate: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)}
	eventB := &entity.Event{ID: "ev-b", Name: "Festival Gnaoua", StartDate: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)}
	events := newFakeEventStore(eventA, eventB)

	fingerprints := newFakeFingerprintStore()
	fingerprints.index(entity.FingerprintKindExact, "hash-exact", "ev-a", "ev-b")

	weak := &entity.Source{ID: "src-weak", ReliabilityScore: entity.ReliabilityScrapedPage}
	strong := &entity.Source{ID: "src-strong", ReliabilityScore: entity.ReliabilityOfficialWebsite}
	sources := newFakeSourceStore(weak, strong)

	eventSources := newFakeEventSourceStore()
	eventSources.link("ev-a", &entity.EventSource{SourceID: "src-weak"})
	eventSources.link("ev-b", &entity.EventSource{SourceID: "src-strong"})

	resolver := usecase.NewDedupResolver(fingerprints, events, eventSources, sources, newFakeVenueStore())

	candidate := &entity.Candidate{ID: "cand-1", NormalizedName: "festival gnaoua"}
	result, err := resolver.Resolve(context.Background(), candidate, map[entity.FingerprintKind]string{
		entity.FingerprintKindExact: "hash-exact",
	})
	require.NoError(t, err)

	assert.Equal(t, "ev-b", result.ExistingEventID)
}
