package spreadsheet_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/spreadsheet"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowPayload(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(fields)
	require.NoError(t, err)
	return b
}

func TestAdapter_Normalize(t *testing.T) {
	adapter := spreadsheet.New(nil, "sheet-1", "Sheet1!A:J")
	payload := rowPayload(t, map[string]any{
		"Name":       "Festival Gnaoua",
		"City":       "Essaouira",
		"Start_Date": "2026-06-20",
		"End_Date":   "2026-06-23",
		"Event_Type": "festival",
	})

	candidate, err := adapter.Normalize(context.Background(), entity.RawRecord{ExternalID: "sheet-1-row-2", Payload: payload})
	require.NoError(t, err)

	assert.Equal(t, "Festival Gnaoua", candidate.RawName)
	assert.Equal(t, "Essaouira", candidate.RawCityText)
	assert.Equal(t, entity.EventType("festival"), candidate.RawEventType)
	require.NotNil(t, candidate.EndDate)
}

func TestAdapter_Normalize_HeaderMatchingIsCaseInsensitive(t *testing.T) {
	adapter := spreadsheet.New(nil, "sheet-1", "Sheet1!A:J")
	payload := rowPayload(t, map[string]any{
		"NAME":       "Mawazine",
		"start_date": "2026-05-15",
	})

	candidate, err := adapter.Normalize(context.Background(), entity.RawRecord{Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "Mawazine", candidate.RawName)
}

func TestAdapter_Normalize_RejectsMissingName(t *testing.T) {
	adapter := spreadsheet.New(nil, "sheet-1", "Sheet1!A:J")
	payload := rowPayload(t, map[string]any{"start_date": "2026-05-15"})

	_, err := adapter.Normalize(context.Background(), entity.RawRecord{ExternalID: "row-3", Payload: payload})
	assert.Error(t, err)
}

func TestAdapter_Normalize_RejectsInvalidStartDate(t *testing.T) {
	adapter := spreadsheet.New(nil, "sheet-1", "Sheet1!A:J")
	payload := rowPayload(t, map[string]any{"name": "X", "start_date": "not-a-date"})

	_, err := adapter.Normalize(context.Background(), entity.RawRecord{Payload: payload})
	assert.Error(t, err)
}
