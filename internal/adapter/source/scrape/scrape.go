// Package scrape implements the HTML scraping source adapter
// (entity.SourceTypeScrape, reliability 0.5): records are extracted from
// a listing page's markup rather than a structured feed, so it carries
// the lowest reliability of the four adapter kinds.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
	"golang.org/x/net/html"
)

// Adapter fetches and normalizes records scraped from an HTML listing
// page. Each listing entry is expected to be wrapped in an element
// carrying data-field attributes (data-field="name", "city", "venue",
// "start-date", "end-date", "organizer", "website", "description"),
// the shape a teacher-style scraper would be built against once the
// target page's markup is known.
type Adapter struct {
	listURL    string
	httpClient *http.Client
}

// New builds a scrape adapter for one listing page.
func New(listURL string) *Adapter {
	return &Adapter{
		listURL:    listURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ entity.SourceAdapter = (*Adapter)(nil)

// record is one parsed listing entry, still in raw scraped text form.
type record struct {
	externalID  string
	name        string
	city        string
	venue       string
	organizer   string
	website     string
	description string
	startDate   string
	endDate     string
}

// Fetch downloads and parses the listing page. since is not honored by
// the scrape kind: the upstream page has no cursor, so every run
// re-fetches the full listing and relies on the dedup resolver's exact
// fingerprint match to skip records already ingested.
func (a *Adapter) Fetch(ctx context.Context, since time.Time) (<-chan entity.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page %s: %w", a.listURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("listing page %s returned status %d", a.listURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listing page body: %w", err)
	}

	records := parseListing(body)
	out := make(chan entity.RawRecord, len(records))
	fetchedAt := time.Now()
	for _, rec := range records {
		out <- entity.RawRecord{
			ExternalID: rec.externalID,
			SourceURL:  a.listURL,
			Payload:    encodeRecord(rec),
			FetchedAt:  fetchedAt,
		}
	}
	close(out)
	return out, nil
}

// Normalize converts one scraped RawRecord into a Candidate.
func (a *Adapter) Normalize(ctx context.Context, raw entity.RawRecord) (*entity.Candidate, error) {
	rec := decodeRecord(raw.Payload)

	startDate, err := normalize.Date(rec.startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", rec.startDate, err)
	}

	var endDate *time.Time
	if rec.endDate != "" {
		if d, err := normalize.Date(rec.endDate); err == nil {
			endDate = &d
		}
	}

	var venueName *string
	if normalized := normalize.Text(rec.venue); normalized != "" {
		venueName = &normalized
	}
	var website, description *string
	if rec.website != "" {
		website = &rec.website
	}
	if rec.description != "" {
		description = &rec.description
	}

	return &entity.Candidate{
		SourceURL:           raw.SourceURL,
		ExternalID:          raw.ExternalID,
		RawPayload:          raw.Payload,
		NormalizedName:      normalize.Text(rec.name),
		StartDate:           startDate,
		EndDate:             endDate,
		NormalizedVenueName: venueName,
		RawName:             rec.name,
		RawCityText:         rec.city,
		RawVenueText:        rec.venue,
		RawOrganizerName:    rec.organizer,
		RawOfficialWebsite:  website,
		RawDescription:      description,
		IngestedAt:          raw.FetchedAt,
	}, nil
}

// parseListing walks the tokenized document collecting every element
// annotated with data-field attributes into one record per listing
// entry, delimited by an element carrying data-field="name".
func parseListing(body []byte) []record {
	tokenizer := html.NewTokenizer(strings.NewReader(string(body)))
	var records []record
	var current *record
	var currentField string
	var externalCounter int

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			if tt == html.TextToken && current != nil && currentField != "" {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					setField(current, currentField, text)
				}
				currentField = ""
			}
			continue
		}

		token := tokenizer.Token()
		field := attr(token, "data-field")
		if field == "" {
			continue
		}
		if field == "name" {
			if current != nil {
				records = append(records, *current)
			}
			externalCounter++
			current = &record{externalID: fmt.Sprintf("scrape-%d", externalCounter)}
		}
		if current == nil {
			continue
		}
		currentField = field
	}
	if current != nil {
		records = append(records, *current)
	}
	return records
}

func attr(token html.Token, name string) string {
	for _, a := range token.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setField(rec *record, field, value string) {
	switch field {
	case "name":
		rec.name = value
	case "city":
		rec.city = value
	case "venue":
		rec.venue = value
	case "organizer":
		rec.organizer = value
	case "website":
		rec.website = value
	case "description":
		rec.description = value
	case "start-date":
		rec.startDate = value
	case "end-date":
		rec.endDate = value
	}
}

const recordFieldSep = "\x1f"

func encodeRecord(rec record) []byte {
	fields := []string{
		rec.externalID, rec.name, rec.city, rec.venue, rec.organizer,
		rec.website, rec.description, rec.startDate, rec.endDate,
	}
	return []byte(strings.Join(fields, recordFieldSep))
}

func decodeRecord(payload []byte) record {
	parts := strings.Split(string(payload), recordFieldSep)
	for len(parts) < 9 {
		parts = append(parts, "")
	}
	return record{
		externalID:  parts[0],
		name:        parts[1],
		city:        parts[2],
		venue:       parts[3],
		organizer:   parts[4],
		website:     parts[5],
		description: parts[6],
		startDate:   parts[7],
		endDate:     parts[8],
	}
}
