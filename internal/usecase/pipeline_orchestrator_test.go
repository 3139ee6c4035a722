package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pannpers/go-logging/logging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSourceAdapter is a hand-written stand-in for entity.SourceAdapter
// that streams one fixed record and normalizes it to one fixed candidate.
type fakeSourceAdapter struct {
	records []entity.RawRecord
}

func (a *fakeSourceAdapter) Fetch(ctx context.Context, since time.Time) (<-chan entity.RawRecord, error) {
	ch := make(chan entity.RawRecord, len(a.records))
	for _, r := range a.records {
		ch <- r
	}
	close(ch)
	return ch, nil
}

func (a *fakeSourceAdapter) Normalize(ctx context.Context, record entity.RawRecord) (*entity.Candidate, error) {
	return &entity.Candidate{
		ID:             uuid.NewString(),
		ExternalID:     record.ExternalID,
		SourceURL:      record.SourceURL,
		NormalizedName: "festival gnaoua",
		RawName:        "Festival Gnaoua",
		StartDate:      time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		RawEventType:   entity.EventTypeFestival,
		IngestedAt:     time.Now(),
	}, nil
}

// fakeCandidateStore is a hand-written stand-in for candidateStore.
type fakeCandidateStore struct {
	inserted  []*entity.Candidate
	collected int
}

func (s *fakeCandidateStore) Insert(ctx context.Context, candidate *entity.Candidate) error {
	s.inserted = append(s.inserted, candidate)
	return nil
}

func (s *fakeCandidateStore) MarkProcessed(ctx context.Context, id string, matchedEventID *string, confidence float64, processedAt time.Time) error {
	return nil
}

func (s *fakeCandidateStore) ListUnprocessed(ctx context.Context, sourceID string) ([]*entity.Candidate, error) {
	return nil, nil
}

func (s *fakeCandidateStore) GarbageCollectOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.collected = 3
	return s.collected, nil
}

// fakeSourceList is a hand-written stand-in for sourceStore.
type fakeSourceList struct {
	active            []*entity.Source
	advancedCursorIDs []string
}

func (s *fakeSourceList) ListActive(ctx context.Context) ([]*entity.Source, error) {
	return s.active, nil
}

func (s *fakeSourceList) AdvanceCursor(ctx context.Context, id string, fetchedAt time.Time) error {
	s.advancedCursorIDs = append(s.advancedCursorIDs, id)
	return nil
}

func newOrchestratorFixture(t *testing.T, sources *fakeSourceList, candidates *fakeCandidateStore) (*usecase.PipelineOrchestrator, *fakePublisher, *fakeMergeStore) {
	t.Helper()

	registry := source.NewRegistry()
	registry.Register(entity.SourceTypeManual, &fakeSourceAdapter{
		records: []entity.RawRecord{{ExternalID: "ext-1", SourceURL: "https://example.com/1"}},
	})

	events := newFakeEventStore()
	eventSources := newFakeEventSourceStore()
	fingerprints := newFakeFingerprintStore()
	sourceReader := newFakeSourceStore(&entity.Source{ID: "src-1", ReliabilityScore: entity.ReliabilityFirstPartyAPI})
	resolver := usecase.NewDedupResolver(fingerprints, events, eventSources, sourceReader, newFakeVenueStore())

	mergeStore := &fakeMergeStore{events: events}
	scorer := usecase.NewConfidenceScorer(events, events, eventSources, sourceReader)
	writer := usecase.NewMergeWriter(mergeStore, events, eventSources, sourceReader, scorer)

	publisher := &fakePublisher{}
	logger, err := logging.New()
	require.NoError(t, err)

	orchestrator := usecase.NewPipelineOrchestrator(sources, candidates, registry, resolver, writer, publisher, logger, 2)
	return orchestrator, publisher, mergeStore
}

func TestPipelineOrchestrator_Run_CreatesNewEvent(t *testing.T) {
	sources := &fakeSourceList{active: []*entity.Source{{ID: "src-1", Type: entity.SourceTypeManual}}}
	candidates := &fakeCandidateStore{}

	orchestrator, publisher, mergeStore := newOrchestratorFixture(t, sources, candidates)
	report, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Sources, 1)
	assert.Equal(t, "src-1", report.Sources[0].SourceID)
	assert.Equal(t, 1, report.Sources[0].Fetched)
	assert.Equal(t, 1, report.Sources[0].Created)
	assert.Equal(t, []string{"src-1"}, sources.advancedCursorIDs)
	require.Len(t, candidates.inserted, 1)
	require.NotNil(t, mergeStore.createdEvent)
	assert.NotEmpty(t, publisher.published)
}

func TestPipelineOrchestrator_Run_UnknownSourceTypeIsolatesFailure(t *testing.T) {
	sources := &fakeSourceList{active: []*entity.Source{{ID: "src-unregistered", Type: entity.SourceTypeAPI}}}
	candidates := &fakeCandidateStore{}

	orchestrator, _, _ := newOrchestratorFixture(t, sources, candidates)
	report, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Sources, 1)
	assert.Error(t, report.Sources[0].Err)
	assert.Empty(t, sources.advancedCursorIDs, "cursor must not advance when the fetch stage never ran")
}

func TestPipelineOrchestrator_RunGarbageCollection(t *testing.T) {
	sources := &fakeSourceList{}
	candidates := &fakeCandidateStore{}
	orchestrator, _, _ := newOrchestratorFixture(t, sources, candidates)

	deleted, err := orchestrator.RunGarbageCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
}

func TestPipelineOrchestrator_RunDailyMaintenance(t *testing.T) {
	sources := &fakeSourceList{}
	candidates := &fakeCandidateStore{}
	orchestrator, publisher, _ := newOrchestratorFixture(t, sources, candidates)

	events := newFakeEventStore()
	archiver := usecase.NewArchivalUseCase(events, 90*24*time.Hour, publisher, nil)
	scorer := usecase.NewConfidenceScorer(events, events, newFakeEventSourceStore(), newFakeSourceStore())

	require.NoError(t, orchestrator.RunDailyMaintenance(context.Background(), archiver, scorer))

	var sawRebuildRequest bool
	for _, m := range publisher.published {
		if m.topic == "events-catalog.pipeline.rebuild_requested.v1" {
			sawRebuildRequest = true
		}
	}
	assert.True(t, sawRebuildRequest)
}
