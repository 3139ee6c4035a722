package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/pannpers/go-logging/logging"
)

// ProjectionHandler keeps the search projection in step with individual
// event mutations, reacting to event.created.v1, event.merged.v1, and
// event.archived.v1 so the pipeline orchestrator and editorial commands
// never need to know about the search collection directly.
type ProjectionHandler struct {
	synchronizer *usecase.ProjectionSynchronizer
	logger       *logging.Logger
}

// NewProjectionHandler creates a new ProjectionHandler.
func NewProjectionHandler(synchronizer *usecase.ProjectionSynchronizer, logger *logging.Logger) *ProjectionHandler {
	return &ProjectionHandler{synchronizer: synchronizer, logger: logger}
}

// HandleCreated upserts the newly created event into the search projection.
func (h *ProjectionHandler) HandleCreated(msg *message.Message) error {
	ctx := context.Background()

	var data messaging.EventCreatedData
	if err := messaging.ParseCloudEventData(msg, &data); err != nil {
		h.logger.Error(ctx, "failed to parse event.created event", err)
		return fmt.Errorf("parse event.created event: %w", err)
	}

	if err := h.synchronizer.UpsertEvent(ctx, data.EventID); err != nil {
		h.logger.Error(ctx, "failed to upsert event into projection", err, slog.String("event_id", data.EventID))
		return fmt.Errorf("upsert event %s: %w", data.EventID, err)
	}

	return nil
}

// HandleMerged removes the losing event from the projection and
// re-upserts the surviving one with its updated source links.
func (h *ProjectionHandler) HandleMerged(msg *message.Message) error {
	ctx := context.Background()

	var data messaging.EventMergedData
	if err := messaging.ParseCloudEventData(msg, &data); err != nil {
		h.logger.Error(ctx, "failed to parse event.merged event", err)
		return fmt.Errorf("parse event.merged event: %w", err)
	}

	if err := h.synchronizer.DeleteEvent(ctx, data.LoseEventID); err != nil {
		h.logger.Error(ctx, "failed to delete merged-away event from projection", err, slog.String("event_id", data.LoseEventID))
		return fmt.Errorf("delete event %s: %w", data.LoseEventID, err)
	}

	if err := h.synchronizer.UpsertEvent(ctx, data.KeepEventID); err != nil {
		h.logger.Error(ctx, "failed to re-upsert merge survivor into projection", err, slog.String("event_id", data.KeepEventID))
		return fmt.Errorf("upsert event %s: %w", data.KeepEventID, err)
	}

	return nil
}

// HandleArchived removes an archived event from the projection; archived
// events are terminal and never indexable again.
func (h *ProjectionHandler) HandleArchived(msg *message.Message) error {
	ctx := context.Background()

	var data messaging.EventArchivedData
	if err := messaging.ParseCloudEventData(msg, &data); err != nil {
		h.logger.Error(ctx, "failed to parse event.archived event", err)
		return fmt.Errorf("parse event.archived event: %w", err)
	}

	if err := h.synchronizer.DeleteEvent(ctx, data.EventID); err != nil {
		h.logger.Error(ctx, "failed to delete archived event from projection", err, slog.String("event_id", data.EventID))
		return fmt.Errorf("delete event %s: %w", data.EventID, err)
	}

	return nil
}
