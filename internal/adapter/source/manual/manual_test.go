package manual_test

import (
	"context"
	"testing"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/manual"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Fetch_ReturnsClosedEmptyChannel(t *testing.T) {
	a := manual.New()

	ch, err := a.Fetch(context.Background(), time.Time{})
	require.NoError(t, err)

	_, ok := <-ch
	assert.False(t, ok, "manual imports are pushed, not polled, so Fetch must yield nothing")
}

func TestAdapter_Normalize(t *testing.T) {
	a := manual.New()
	payload := []byte(`{
		"external_id": "manual-1",
		"name": "Festival Gnaoua",
		"city": "Essaouira",
		"venue": "Place Moulay Hassan",
		"organizer": "Association Yerma Gnaoua",
		"website": "https://festival-gnaoua.net",
		"description": "Annual gnaoua music festival",
		"event_type": "festival",
		"start_date": "2026-06-20",
		"end_date": "2026-06-23",
		"source_url": "https://example.com/upload/1"
	}`)

	candidate, err := a.Normalize(context.Background(), entity.RawRecord{Payload: payload, SourceURL: "https://example.com/upload/1"})
	require.NoError(t, err)

	assert.Equal(t, "manual-1", candidate.ExternalID)
	assert.Equal(t, "Festival Gnaoua", candidate.RawName)
	assert.Equal(t, "Essaouira", candidate.RawCityText)
	assert.Equal(t, entity.EventTypeFestival, candidate.RawEventType)
	require.NotNil(t, candidate.NormalizedVenueName)
	assert.Equal(t, "place moulay hassan", *candidate.NormalizedVenueName)
	require.NotNil(t, candidate.RawOfficialWebsite)
	assert.Equal(t, "https://festival-gnaoua.net", *candidate.RawOfficialWebsite)
	require.NotNil(t, candidate.EndDate)
}

func TestAdapter_Normalize_RejectsMissingRequiredField(t *testing.T) {
	a := manual.New()
	payload := []byte(`{"external_id": "manual-2", "start_date": "2026-06-20"}`)

	_, err := a.Normalize(context.Background(), entity.RawRecord{Payload: payload})
	assert.Error(t, err, "name and city are required validator tags")
}

func TestAdapter_Normalize_RejectsMalformedJSON(t *testing.T) {
	a := manual.New()
	_, err := a.Normalize(context.Background(), entity.RawRecord{Payload: []byte("not json")})
	assert.Error(t, err)
}

func TestAdapter_Normalize_RejectsInvalidStartDate(t *testing.T) {
	a := manual.New()
	payload := []byte(`{"external_id": "manual-3", "name": "X", "city": "Rabat", "start_date": "not-a-date"}`)

	_, err := a.Normalize(context.Background(), entity.RawRecord{Payload: payload})
	assert.Error(t, err)
}
