// Package fingerprint derives the content-addressed hashes the
// deduplication resolver uses to find candidate matches among existing
// events, cheaply and without a full table scan.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
)

// separator is the ASCII Unit Separator (0x1F), chosen because it cannot
// appear in any normalized component and so never introduces an
// accidental collision the way a printable delimiter like "|" could.
const separator = "\x1f"

// fuzzyNameTokenCount is how many leading tokens of the normalized name
// feed the fuzzy_name fingerprint.
const fuzzyNameTokenCount = 3

// Set is the collection of fingerprints derivable from a candidate's (or
// event's) current normalized attributes. A kind is absent from the map
// whenever one of its required components is missing — an unknown city,
// most commonly — rather than hashed with an empty placeholder, so it can
// never collide with a record that genuinely has an empty component.
type Set map[entity.FingerprintKind]string

// Derive computes every fingerprint kind derivable from the given
// normalized fields. cityID is nil for an unknown city, in which case
// every kind that depends on location is omitted entirely.
func Derive(normalizedName string, startDate time.Time, cityID *string) Set {
	set := Set{}
	if normalizedName == "" || startDate.IsZero() {
		return set
	}

	if cityID != nil {
		set[entity.FingerprintKindExact] = hash(normalizedName, isoDate(startDate), *cityID)
		set[entity.FingerprintKindDateLocation] = hash(isoDate(startDate), *cityID)
		set[entity.FingerprintKindWeekLocation] = hash(isoWeekStart(startDate), *cityID)
	}

	fuzzyName := normalize.FirstTokens(normalizedName, fuzzyNameTokenCount)
	if cityID != nil && fuzzyName != "" {
		set[entity.FingerprintKindFuzzyName] = hash(fuzzyName, isoDate(startDate), *cityID)
	}

	return set
}

// DeriveEvent computes the fingerprint set for an existing event's
// canonical attributes, using the same normalization the candidate
// pipeline applies so an event's own fingerprints stay comparable against
// freshly ingested candidates.
func DeriveEvent(e *entity.Event) Set {
	var cityID *string
	if e.CityID != "" {
		cityID = &e.CityID
	}
	return Derive(normalize.Text(e.Name), e.StartDate, cityID)
}

// ToRows flattens a Set into the row shape FingerprintRepository.ReplaceForEvent
// persists.
func (s Set) ToRows(eventID string) []entity.Fingerprint {
	rows := make([]entity.Fingerprint, 0, len(s))
	for kind, h := range s {
		rows = append(rows, entity.Fingerprint{Kind: kind, Hash: h, EventID: eventID})
	}
	return rows
}

func hash(components ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(components, separator)))
	return hex.EncodeToString(sum[:])
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// isoWeekStart returns the Monday that begins t's ISO 8601 week, as a date
// string, so two events in the same calendar week collapse onto the same
// week_location fingerprint regardless of which day each actually falls
// on.
func isoWeekStart(t time.Time) string {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO: Sunday is day 7, not day 0
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return isoDate(monday)
}
