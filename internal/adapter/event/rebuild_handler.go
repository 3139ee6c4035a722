// Package event provides Watermill event handlers for the consumer process.
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

// RebuildHandler handles pipeline.rebuild_requested.v1 by running a full
// search-projection rebuild. Emitted once daily by the pipeline
// orchestrator's maintenance sweep; reindexing asynchronously here keeps
// the daily job itself from blocking on a full Typesense repopulate.
type RebuildHandler struct {
	synchronizer *usecase.ProjectionSynchronizer
	logger       *logging.Logger
}

// NewRebuildHandler creates a new RebuildHandler.
func NewRebuildHandler(synchronizer *usecase.ProjectionSynchronizer, logger *logging.Logger) *RebuildHandler {
	return &RebuildHandler{synchronizer: synchronizer, logger: logger}
}

// Handle processes a pipeline.rebuild_requested.v1 event.
func (h *RebuildHandler) Handle(msg *message.Message) error {
	ctx := context.Background()

	var data messaging.RebuildRequestedData
	if err := messaging.ParseCloudEventData(msg, &data); err != nil {
		h.logger.Error(ctx, "failed to parse pipeline.rebuild_requested event", err)
		return fmt.Errorf("parse pipeline.rebuild_requested event: %w", err)
	}

	h.logger.Info(ctx, "running full search-projection rebuild", slog.String("reason", data.Reason))

	indexed, failed, err := h.synchronizer.FullRebuild(ctx)
	if err != nil {
		h.logger.Error(ctx, "full rebuild failed", err)
		return fmt.Errorf("full rebuild: %w", err)
	}

	h.logger.Info(ctx, "full rebuild complete",
		slog.Int("indexed", indexed),
		slog.Int("failed", failed),
	)

	return nil
}
