// Package api implements the first-party JSON API source adapter
// (entity.SourceTypeAPI, reliability 0.8): a polling HTTP client wrapped
// in a circuit breaker so a flaky upstream does not retry forever within
// one ingestion run.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// event is the upstream JSON record shape this adapter expects.
type event struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	City            string `json:"city"`
	Venue           string `json:"venue"`
	Organizer       string `json:"organizer"`
	Website         string `json:"website"`
	Description     string `json:"description"`
	EventType       string `json:"event_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	SourceURL       string `json:"source_url"`
}

// Adapter fetches and normalizes records from a first-party JSON API.
type Adapter struct {
	baseURL     string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	limiter     *rate.Limiter
	cityMatcher *normalize.CityMatcher
}

// Config configures the adapter's HTTP behavior.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration // default 30s
	RatePerSecond  float64       // default 5 req/s
}

// New builds an api adapter for one source, bound to its own circuit
// breaker and rate limiter so one flaky source cannot exhaust the shared
// HTTP client's connection pool.
func New(cfg Config, cityMatcher *normalize.CityMatcher) *Adapter {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond == 0 {
		ratePerSecond = 5
	}

	breakerSettings := gobreaker.Settings{
		Name:        "api-adapter:" + cfg.BaseURL,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Adapter{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: timeout},
		breaker:     gobreaker.NewCircuitBreaker[*http.Response](breakerSettings),
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		cityMatcher: cityMatcher,
	}
}

var _ entity.SourceAdapter = (*Adapter)(nil)

// Fetch polls the API for records updated since the given cursor.
func (a *Adapter) Fetch(ctx context.Context, since time.Time) (<-chan entity.RawRecord, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?since=%s", a.baseURL, since.UTC().Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.breaker.Execute(func() (*http.Response, error) {
		resp, err := a.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", a.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var events []event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	out := make(chan entity.RawRecord, len(events))
	fetchedAt := time.Now()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			continue
		}
		out <- entity.RawRecord{
			ExternalID: e.ID,
			SourceURL:  e.SourceURL,
			Payload:    payload,
			FetchedAt:  fetchedAt,
		}
	}
	close(out)
	return out, nil
}

// Normalize converts one RawRecord into a Candidate.
func (a *Adapter) Normalize(ctx context.Context, record entity.RawRecord) (*entity.Candidate, error) {
	var e event
	if err := json.Unmarshal(record.Payload, &e); err != nil {
		return nil, fmt.Errorf("decode raw record: %w", err)
	}

	startDate, err := normalize.Date(e.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_date %q: %w", e.StartDate, err)
	}

	var endDate *time.Time
	if e.EndDate != "" {
		d, err := normalize.Date(e.EndDate)
		if err == nil {
			endDate = &d
		}
	}

	var cityID *string
	if city, err := a.cityMatcher.Match(ctx, e.City); err == nil && city != nil {
		cityID = &city.ID
	}

	var venueName *string
	if normalized := normalize.Text(e.Venue); normalized != "" {
		venueName = &normalized
	}

	var website, description *string
	if e.Website != "" {
		website = &e.Website
	}
	if e.Description != "" {
		description = &e.Description
	}

	return &entity.Candidate{
		SourceURL:           record.SourceURL,
		ExternalID:          record.ExternalID,
		RawPayload:          record.Payload,
		NormalizedName:      normalize.Text(e.Name),
		NormalizedCityID:    cityID,
		StartDate:           startDate,
		EndDate:             endDate,
		NormalizedVenueName: venueName,
		RawName:             e.Name,
		RawCityText:         e.City,
		RawVenueText:        e.Venue,
		RawOrganizerName:    e.Organizer,
		RawOfficialWebsite:  website,
		RawDescription:      description,
		RawEventType:        entity.EventType(e.EventType),
		IngestedAt:          record.FetchedAt,
	}, nil
}
