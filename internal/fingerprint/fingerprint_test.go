package fingerprint_test

import (
	"testing"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/fingerprint"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestDerive_AllKindsPresent(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	set := fingerprint.Derive("gnaoua music festival", start, ptr("city-essaouira"))

	assert.Len(t, set, 4)
	assert.Contains(t, set, entity.FingerprintKindExact)
	assert.Contains(t, set, entity.FingerprintKindFuzzyName)
	assert.Contains(t, set, entity.FingerprintKindDateLocation)
	assert.Contains(t, set, entity.FingerprintKindWeekLocation)
}

func TestDerive_UnknownCitySuppressesLocationDependentKinds(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	set := fingerprint.Derive("gnaoua music festival", start, nil)

	assert.Empty(t, set)
}

func TestDerive_MissingNameOrDateYieldsEmptySet(t *testing.T) {
	assert.Empty(t, fingerprint.Derive("", time.Now(), ptr("city-1")))
	assert.Empty(t, fingerprint.Derive("gnaoua", time.Time{}, ptr("city-1")))
}

func TestDerive_Deterministic(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	a := fingerprint.Derive("gnaoua music festival", start, ptr("city-essaouira"))
	b := fingerprint.Derive("gnaoua music festival", start, ptr("city-essaouira"))
	assert.Equal(t, a, b)
}

func TestDerive_DifferentCityChangesHash(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	a := fingerprint.Derive("gnaoua music festival", start, ptr("city-essaouira"))
	b := fingerprint.Derive("gnaoua music festival", start, ptr("city-marrakesh"))
	assert.NotEqual(t, a[entity.FingerprintKindExact], b[entity.FingerprintKindExact])
}

func TestDerive_WeekLocationCollapsesAcrossWeekdays(t *testing.T) {
	monday := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)
	city := ptr("city-essaouira")

	a := fingerprint.Derive("gnaoua music festival", monday, city)
	b := fingerprint.Derive("gnaoua music festival", friday, city)

	assert.Equal(t, a[entity.FingerprintKindWeekLocation], b[entity.FingerprintKindWeekLocation])
	assert.NotEqual(t, a[entity.FingerprintKindExact], b[entity.FingerprintKindExact])
}

func TestDerive_FuzzyNameUsesFirstThreeTokens(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	city := ptr("city-essaouira")

	a := fingerprint.Derive("gnaoua music festival de essaouira", start, city)
	b := fingerprint.Derive("gnaoua music festival", start, city)

	assert.Equal(t, a[entity.FingerprintKindFuzzyName], b[entity.FingerprintKindFuzzyName])
}

func TestSet_ToRows(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	set := fingerprint.Derive("gnaoua music festival", start, ptr("city-essaouira"))

	rows := set.ToRows("event-1")
	assert.Len(t, rows, len(set))
	for _, row := range rows {
		assert.Equal(t, "event-1", row.EventID)
		assert.Equal(t, set[row.Kind], row.Hash)
	}
}

func TestDeriveEvent_MatchesDeriveOnNormalizedName(t *testing.T) {
	start := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	e := &entity.Event{Name: "Gnaoua Music Festival", StartDate: start, CityID: "city-essaouira"}

	fromEvent := fingerprint.DeriveEvent(e)
	fromCandidate := fingerprint.Derive(normalize.Text(e.Name), start, ptr("city-essaouira"))

	assert.Equal(t, fromCandidate, fromEvent)
}
