package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// editorialStore is the narrow write port the editorial use case needs
// beyond plain event reads: persisting attribute mutations and running
// the merge command's one-transaction snapshot/relink/delete.
type editorialStore interface {
	Update(ctx context.Context, event *entity.Event) error
	MergeEditorialEvents(ctx context.Context, keep, lose *entity.Event, action *entity.EditorialAction) error
}

type actionRecorder interface {
	Create(ctx context.Context, action *entity.EditorialAction) error
}

// authorizer gates which actors may invoke which editorial command.
type authorizer interface {
	CanPerform(ctx context.Context, actor, action string) (bool, error)
}

// projectionUpserter is the narrow port the editorial use case needs to
// trigger a projection sync after every command.
type projectionUpserter interface {
	UpsertEvent(ctx context.Context, eventID string) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// editorialEventReader is the narrow read/write port over events the
// editorial use case needs — just enough to load and persist an event's
// attributes, not the wider maintenance-sweep queries eventWriter adds.
type editorialEventReader interface {
	eventReader
	eventUpdater
}

// EditorialUseCase implements the six editorial commands. Every command
// is one transaction (trivial for the five attribute-mutation commands,
// a real multi-statement transaction for merge), one audit row, and a
// projection sync: one call for the five attribute-mutation commands, two
// for merge (upsert the keeper, delete the loser).
type EditorialUseCase struct {
	events  editorialEventReader
	store   editorialStore
	actions actionRecorder
	authz   authorizer
	search  projectionUpserter
}

// NewEditorialUseCase builds the editorial use case over its
// dependencies.
func NewEditorialUseCase(events editorialEventReader, store editorialStore, actions actionRecorder, authz authorizer, search projectionUpserter) *EditorialUseCase {
	return &EditorialUseCase{events: events, store: store, actions: actions, authz: authz, search: search}
}

func (u *EditorialUseCase) authorize(ctx context.Context, actor string, action entity.EditorialActionType) error {
	allowed, err := u.authz.CanPerform(ctx, actor, string(action))
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("actor %q is not authorized to perform %q", actor, action)
	}
	return nil
}

func (u *EditorialUseCase) record(ctx context.Context, actionType entity.EditorialActionType, eventID, actor string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal editorial action payload: %w", err)
	}
	return u.actions.Create(ctx, &entity.EditorialAction{
		ID:      uuid.NewString(),
		Type:    actionType,
		EventID: eventID,
		Actor:   actor,
		Payload: raw,
	})
}

// Verify marks an event as editorially confirmed.
func (u *EditorialUseCase) Verify(ctx context.Context, eventID, actor string) error {
	if err := u.authorize(ctx, actor, entity.EditorialActionVerify); err != nil {
		return err
	}
	ev, err := u.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	ev.IsVerified = true
	if err := u.events.Update(ctx, ev); err != nil {
		return err
	}
	if err := u.record(ctx, entity.EditorialActionVerify, eventID, actor, nil); err != nil {
		return err
	}
	return u.search.UpsertEvent(ctx, eventID)
}

// Pin sets or clears an event's featured-placement flag.
func (u *EditorialUseCase) Pin(ctx context.Context, eventID, actor string, pinned bool) error {
	if err := u.authorize(ctx, actor, entity.EditorialActionPin); err != nil {
		return err
	}
	ev, err := u.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	ev.IsPinned = pinned
	if err := u.events.Update(ctx, ev); err != nil {
		return err
	}
	if err := u.record(ctx, entity.EditorialActionPin, eventID, actor, map[string]bool{"pinned": pinned}); err != nil {
		return err
	}
	return u.search.UpsertEvent(ctx, eventID)
}

// SetSignificance sets an event's editorial cultural-significance score
// (0-10).
func (u *EditorialUseCase) SetSignificance(ctx context.Context, eventID, actor string, score int) error {
	if err := u.authorize(ctx, actor, entity.EditorialActionSetSignificance); err != nil {
		return err
	}
	if score < 0 || score > 10 {
		return fmt.Errorf("cultural significance must be in [0,10], got %d", score)
	}
	ev, err := u.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	ev.CulturalSignificance = score
	if err := u.events.Update(ctx, ev); err != nil {
		return err
	}
	if err := u.record(ctx, entity.EditorialActionSetSignificance, eventID, actor, map[string]int{"cultural_significance": score}); err != nil {
		return err
	}
	return u.search.UpsertEvent(ctx, eventID)
}

// UpdateStatus transitions an event's lifecycle status. Archived is
// terminal: callers wanting to archive should use Archive instead, which
// also records the archival reason.
func (u *EditorialUseCase) UpdateStatus(ctx context.Context, eventID, actor string, status entity.EventStatus) error {
	if err := u.authorize(ctx, actor, entity.EditorialActionUpdateStatus); err != nil {
		return err
	}
	ev, err := u.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.Status == entity.EventStatusArchived {
		return fmt.Errorf("event %s is archived; status is terminal", eventID)
	}
	ev.Status = status
	if err := u.events.Update(ctx, ev); err != nil {
		return err
	}
	if err := u.record(ctx, entity.EditorialActionUpdateStatus, eventID, actor, map[string]string{"status": string(status)}); err != nil {
		return err
	}
	if !status.IsIndexable() {
		return u.search.DeleteEvent(ctx, eventID)
	}
	return u.search.UpsertEvent(ctx, eventID)
}

// Archive transitions an event to its terminal archived status.
func (u *EditorialUseCase) Archive(ctx context.Context, eventID, actor, reason string) error {
	if err := u.authorize(ctx, actor, entity.EditorialActionArchive); err != nil {
		return err
	}
	ev, err := u.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	ev.Status = entity.EventStatusArchived
	if err := u.events.Update(ctx, ev); err != nil {
		return err
	}
	if err := u.record(ctx, entity.EditorialActionArchive, eventID, actor, map[string]string{"reason": reason}); err != nil {
		return err
	}
	return u.search.DeleteEvent(ctx, eventID)
}

// Merge combines a losing event into a keeper: snapshot, re-link
// provenance and artists, delete the loser, record one audit row against
// the keeper, and re-sync both sides of the projection.
func (u *EditorialUseCase) Merge(ctx context.Context, keepID, loseID, actor string) error {
	if err := u.authorize(ctx, actor, entity.EditorialActionMerge); err != nil {
		return err
	}
	if keepID == loseID {
		return fmt.Errorf("cannot merge event %s into itself", keepID)
	}

	keep, err := u.events.Get(ctx, keepID)
	if err != nil {
		return err
	}
	lose, err := u.events.Get(ctx, loseID)
	if err != nil {
		return err
	}

	action := &entity.EditorialAction{
		ID:      uuid.NewString(),
		Type:    entity.EditorialActionMerge,
		EventID: keepID,
		Actor:   actor,
	}
	payload, err := json.Marshal(map[string]string{"lose_event_id": loseID})
	if err != nil {
		return fmt.Errorf("marshal merge action payload: %w", err)
	}
	action.Payload = payload

	if err := u.store.MergeEditorialEvents(ctx, keep, lose, action); err != nil {
		return err
	}

	if err := u.search.UpsertEvent(ctx, keepID); err != nil {
		return err
	}
	return u.search.DeleteEvent(ctx, loseID)
}
