package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/scrape"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `
<html><body>
<div class="event">
  <span data-field="name">Festival Gnaoua</span>
  <span data-field="city">Essaouira</span>
  <span data-field="venue">Place Moulay Hassan</span>
  <span data-field="start-date">2026-06-20</span>
  <span data-field="end-date">2026-06-23</span>
</div>
<div class="event">
  <span data-field="name">Mawazine</span>
  <span data-field="city">Rabat</span>
  <span data-field="start-date">2026-05-15</span>
</div>
</body></html>
`

func TestAdapter_Fetch_ParsesListingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	adapter := scrape.New(server.URL)
	ch, err := adapter.Fetch(context.Background(), entity.RawRecord{}.FetchedAt)
	require.NoError(t, err)

	var records []entity.RawRecord
	for r := range ch {
		records = append(records, r)
	}
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, server.URL, r.SourceURL)
	}
}

func TestAdapter_Fetch_ServerErrorReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := scrape.New(server.URL)
	_, err := adapter.Fetch(context.Background(), entity.RawRecord{}.FetchedAt)
	assert.Error(t, err)
}

func TestAdapter_FetchThenNormalize_RoundTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	adapter := scrape.New(server.URL)
	ch, err := adapter.Fetch(context.Background(), entity.RawRecord{}.FetchedAt)
	require.NoError(t, err)

	var candidates []*entity.Candidate
	for raw := range ch {
		c, err := adapter.Normalize(context.Background(), raw)
		require.NoError(t, err)
		candidates = append(candidates, c)
	}

	require.Len(t, candidates, 2)
	assert.Equal(t, "Festival Gnaoua", candidates[0].RawName)
	assert.Equal(t, "Essaouira", candidates[0].RawCityText)
	require.NotNil(t, candidates[0].EndDate)
	assert.Equal(t, "Mawazine", candidates[1].RawName)
	assert.Nil(t, candidates[1].EndDate)
}

func TestAdapter_Normalize_RejectsInvalidStartDate(t *testing.T) {
	adapter := scrape.New("https://example.com")
	_, err := adapter.Normalize(context.Background(), entity.RawRecord{Payload: []byte("")})
	assert.Error(t, err)
}
