package messaging

// CandidateDiscoveredData is the payload for candidate.discovered.v1.
// It carries one normalized candidate ready for resolution.
type CandidateDiscoveredData struct {
	CandidateID string `json:"candidate_id"`
	SourceID    string `json:"source_id"`
	NormName    string `json:"norm_name"`
}

// EventCreatedData is the payload for event.created.v1.
// Published by the pipeline orchestrator after a resolver create decision.
type EventCreatedData struct {
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	SourceID string `json:"source_id"`
}

// EventMergedData is the payload for event.merged.v1.
// Published by the pipeline orchestrator after a resolver merge decision.
type EventMergedData struct {
	KeepEventID string `json:"keep_event_id"`
	LoseEventID string `json:"lose_event_id"`
}

// EventArchivedData is the payload for event.archived.v1.
type EventArchivedData struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason,omitempty"`
}

// ReviewRequiredData is the payload for review.required.v1, emitted when
// the resolver returns a review decision.
type ReviewRequiredData struct {
	CandidateID     string  `json:"candidate_id"`
	ExistingEventID string  `json:"existing_event_id"`
	MatchType       string  `json:"match_type"`
	MatchConfidence float64 `json:"match_confidence"`
}

// RebuildRequestedData is the payload for pipeline.rebuild_requested.v1.
type RebuildRequestedData struct {
	Reason string `json:"reason"`
}
