package usecase_test

import (
	"context"
	"testing"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEditorialStore is a hand-written stand-in for the editorialStore
// port, covering both the plain attribute write (delegated to
// fakeEventStore.Update) and the one-transaction merge write.
type fakeEditorialStore struct {
	*fakeEventStore
	mergedKeep   *entity.Event
	mergedLose   *entity.Event
	mergedAction *entity.EditorialAction
}

func (s *fakeEditorialStore) MergeEditorialEvents(ctx context.Context, keep, lose *entity.Event, action *entity.EditorialAction) error {
	s.mergedKeep = keep
	s.mergedLose = lose
	s.mergedAction = action
	return nil
}

// fakeActionRecorder is a hand-written stand-in for actionRecorder.
type fakeActionRecorder struct {
	recorded []*entity.EditorialAction
}

func (r *fakeActionRecorder) Create(ctx context.Context, action *entity.EditorialAction) error {
	r.recorded = append(r.recorded, action)
	return nil
}

// fakeAuthorizer is a hand-written stand-in for authorizer; allow is
// false by default, so every test sets it explicitly.
type fakeAuthorizer struct {
	allow bool
}

func (a *fakeAuthorizer) CanPerform(ctx context.Context, actor, action string) (bool, error) {
	return a.allow, nil
}

// fakeProjection is a hand-written stand-in for projectionUpserter.
type fakeProjection struct {
	upserted []string
	deleted  []string
}

func (p *fakeProjection) UpsertEvent(ctx context.Context, eventID string) error {
	p.upserted = append(p.upserted, eventID)
	return nil
}

func (p *fakeProjection) DeleteEvent(ctx context.Context, eventID string) error {
	p.deleted = append(p.deleted, eventID)
	return nil
}

func newEditorialFixture(events ...*entity.Event) (*usecase.EditorialUseCase, *fakeEventStore, *fakeActionRecorder, *fakeProjection) {
	store := newFakeEventStore(events...)
	actions := &fakeActionRecorder{}
	projection := &fakeProjection{}
	editorialStore := &fakeEditorialStore{fakeEventStore: store}
	uc := usecase.NewEditorialUseCase(store, editorialStore, actions, &fakeAuthorizer{allow: true}, projection)
	return uc, store, actions, projection
}

func TestEditorialUseCase_Verify(t *testing.T) {
	ev := &entity.Event{ID: "ev-1", Status: entity.EventStatusAnnounced}
	uc, store, actions, projection := newEditorialFixture(ev)

	err := uc.Verify(context.Background(), "ev-1", "editor@example.com")
	require.NoError(t, err)

	assert.True(t, store.byID["ev-1"].IsVerified)
	assert.Len(t, actions.recorded, 1)
	assert.Equal(t, entity.EditorialActionVerify, actions.recorded[0].Type)
	assert.Equal(t, []string{"ev-1"}, projection.upserted)
}

func TestEditorialUseCase_Verify_Unauthorized(t *testing.T) {
	ev := &entity.Event{ID: "ev-1"}
	store := newFakeEventStore(ev)
	editorialStore := &fakeEditorialStore{fakeEventStore: store}
	uc := usecase.NewEditorialUseCase(store, editorialStore, &fakeActionRecorder{}, &fakeAuthorizer{allow: false}, &fakeProjection{})

	err := uc.Verify(context.Background(), "ev-1", "intern@example.com")
	assert.Error(t, err)
	assert.False(t, store.byID["ev-1"].IsVerified)
}

func TestEditorialUseCase_SetSignificance_RejectsOutOfRange(t *testing.T) {
	ev := &entity.Event{ID: "ev-1"}
	uc, _, _, _ := newEditorialFixture(ev)

	err := uc.SetSignificance(context.Background(), "ev-1", "editor@example.com", 11)
	assert.Error(t, err)
}

func TestEditorialUseCase_UpdateStatus_NonIndexableDeletesFromProjection(t *testing.T) {
	ev := &entity.Event{ID: "ev-1", Status: entity.EventStatusAnnounced}
	uc, store, _, projection := newEditorialFixture(ev)

	err := uc.UpdateStatus(context.Background(), "ev-1", "editor@example.com", entity.EventStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, entity.EventStatusCancelled, store.byID["ev-1"].Status)
	assert.Equal(t, []string{"ev-1"}, projection.deleted)
	assert.Empty(t, projection.upserted)
}

func TestEditorialUseCase_UpdateStatus_RejectsArchivedAsSource(t *testing.T) {
	ev := &entity.Event{ID: "ev-1", Status: entity.EventStatusArchived}
	uc, _, _, _ := newEditorialFixture(ev)

	err := uc.UpdateStatus(context.Background(), "ev-1", "editor@example.com", entity.EventStatusConfirmed)
	assert.Error(t, err)
}

func TestEditorialUseCase_Archive(t *testing.T) {
	ev := &entity.Event{ID: "ev-1", Status: entity.EventStatusConfirmed}
	uc, store, actions, projection := newEditorialFixture(ev)

	err := uc.Archive(context.Background(), "ev-1", "editor@example.com", "event cancelled by organizer")
	require.NoError(t, err)

	assert.Equal(t, entity.EventStatusArchived, store.byID["ev-1"].Status)
	assert.Equal(t, []string{"ev-1"}, projection.deleted)
	assert.Len(t, actions.recorded, 1)
}

func TestEditorialUseCase_Merge(t *testing.T) {
	keep := &entity.Event{ID: "ev-keep"}
	lose := &entity.Event{ID: "ev-lose"}
	store := newFakeEventStore(keep, lose)
	editorialStore := &fakeEditorialStore{fakeEventStore: store}
	projection := &fakeProjection{}
	uc := usecase.NewEditorialUseCase(store, editorialStore, &fakeActionRecorder{}, &fakeAuthorizer{allow: true}, projection)

	err := uc.Merge(context.Background(), "ev-keep", "ev-lose", "editor@example.com")
	require.NoError(t, err)

	assert.Equal(t, keep, editorialStore.mergedKeep)
	assert.Equal(t, lose, editorialStore.mergedLose)
	assert.Equal(t, "ev-keep", editorialStore.mergedAction.EventID)
	assert.Equal(t, []string{"ev-keep"}, projection.upserted)
	assert.Equal(t, []string{"ev-lose"}, projection.deleted)
}

func TestEditorialUseCase_Merge_RejectsSelfMerge(t *testing.T) {
	uc, _, _, _ := newEditorialFixture(&entity.Event{ID: "ev-1"})
	err := uc.Merge(context.Background(), "ev-1", "ev-1", "editor@example.com")
	assert.Error(t, err)
}
