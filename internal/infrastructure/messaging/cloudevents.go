package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	// CloudEvents spec version.
	specVersion = "1.0"

	// CloudEvents source for all events emitted by this service.
	source = "events-catalog/backend"

	// EventTypeCandidateDiscovered names the per-candidate discovery event.
	// No component publishes it; the orchestrator hands candidates to the
	// resolver in-process.
	EventTypeCandidateDiscovered = "events-catalog.candidate.discovered.v1"
	// EventTypeEventCreated is emitted by the pipeline orchestrator after
	// the merge writer applies a resolver create decision.
	EventTypeEventCreated = "events-catalog.event.created.v1"
	// EventTypeEventMerged is emitted by the pipeline orchestrator after
	// the merge writer applies a resolver merge decision. The editorial
	// merge command does not emit it; it syncs the projection directly.
	EventTypeEventMerged = "events-catalog.event.merged.v1"
	// EventTypeEventArchived is emitted by the daily archival sweep for
	// each past event it archives. The editorial archive command does not
	// emit it; it syncs the projection directly.
	EventTypeEventArchived = "events-catalog.event.archived.v1"
	// EventTypeReviewRequired is emitted when the resolver returns a
	// review decision, for editorial-queue notification fan-out.
	EventTypeReviewRequired = "events-catalog.review.required.v1"
	// EventTypePipelineArchival is emitted daily by the orchestrator to
	// trigger past-event archival and stale-confidence recomputation.
	EventTypePipelineArchival = "events-catalog.pipeline.archival.v1"
	// EventTypeRebuildRequested is emitted by the orchestrator's daily
	// maintenance run; the projection synchronizer consumes it to run a
	// full_rebuild.
	EventTypeRebuildRequested = "events-catalog.pipeline.rebuild_requested.v1"
)

// NewCloudEvent creates a Watermill message with CloudEvents v1.0 metadata.
// The data payload is JSON-encoded into the message body.
func NewCloudEvent(eventType string, data any) (*message.Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate event ID: %w", err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}

	msg := message.NewMessage(id.String(), payload)

	// CloudEvents required attributes
	msg.Metadata.Set("ce_specversion", specVersion)
	msg.Metadata.Set("ce_type", eventType)
	msg.Metadata.Set("ce_source", source)
	msg.Metadata.Set("ce_id", id.String())
	msg.Metadata.Set("ce_time", time.Now().UTC().Format(time.RFC3339))

	// CloudEvents optional attributes
	msg.Metadata.Set("ce_datacontenttype", "application/json")

	return msg, nil
}

// ParseCloudEventData extracts and unmarshals the JSON data from a Watermill message
// into the provided target struct.
func ParseCloudEventData(msg *message.Message, target any) error {
	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("unmarshal event data: %w", err)
	}
	return nil
}
