// Package manual implements the manual-import source adapter
// (entity.SourceTypeManual, reliability configurable per source):
// editorial staff upload structured JSON payloads directly, validated
// with go-playground/validator/v10 struct tags before normalization.
package manual

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
)

// Payload is the structured shape an editorial upload must conform to.
type Payload struct {
	ExternalID  string `json:"external_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	City        string `json:"city" validate:"required"`
	Venue       string `json:"venue"`
	Organizer   string `json:"organizer"`
	Website     string `json:"website" validate:"omitempty,url"`
	Description string `json:"description"`
	EventType   string `json:"event_type"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date"`
	SourceURL   string `json:"source_url"`
}

// Adapter normalizes manually-uploaded payloads. Unlike the polling
// adapters, Fetch is a no-op: records arrive already staged through the
// editorial upload endpoint, which calls Normalize directly on each
// submission.
type Adapter struct {
	validate *validator.Validate
}

// New builds a manual-import adapter.
func New() *Adapter {
	return &Adapter{validate: validator.New()}
}

var _ entity.SourceAdapter = (*Adapter)(nil)

// Fetch always returns an already-closed empty channel: manual imports
// are pushed, not polled.
func (a *Adapter) Fetch(ctx context.Context, since time.Time) (<-chan entity.RawRecord, error) {
	out := make(chan entity.RawRecord)
	close(out)
	return out, nil
}

// Normalize validates and converts one uploaded Payload into a
// Candidate.
func (a *Adapter) Normalize(ctx context.Context, raw entity.RawRecord) (*entity.Candidate, error) {
	var p Payload
	if err := json.Unmarshal(raw.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode manual payload: %w", err)
	}
	if err := a.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("validate manual payload: %w", err)
	}

	startDate, err := normalize.Date(p.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_date %q: %w", p.StartDate, err)
	}
	var endDate *time.Time
	if p.EndDate != "" {
		if d, err := normalize.Date(p.EndDate); err == nil {
			endDate = &d
		}
	}

	var venueName *string
	if normalized := normalize.Text(p.Venue); normalized != "" {
		venueName = &normalized
	}
	var website, description *string
	if p.Website != "" {
		website = &p.Website
	}
	if p.Description != "" {
		description = &p.Description
	}

	return &entity.Candidate{
		SourceURL:           raw.SourceURL,
		ExternalID:          p.ExternalID,
		RawPayload:          raw.Payload,
		NormalizedName:      normalize.Text(p.Name),
		StartDate:           startDate,
		EndDate:             endDate,
		NormalizedVenueName: venueName,
		RawName:             p.Name,
		RawCityText:         p.City,
		RawVenueText:        p.Venue,
		RawOrganizerName:    p.Organizer,
		RawOfficialWebsite:  website,
		RawDescription:      description,
		RawEventType:        entity.EventType(p.EventType),
		IngestedAt:          raw.FetchedAt,
	}, nil
}
