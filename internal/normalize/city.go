package normalize

import (
	"context"
	"errors"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/pannpers/go-apperr/apperr"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// levenshteinCeiling is the maximum edit distance accepted for a fuzzy
// city match.
const levenshteinCeiling = 2

// CityMatcher resolves free-text city mentions against the canonical city
// reference table: an exact normalized-name lookup first, then a
// Levenshtein nearest-match fallback. It never guesses — no match within
// the ceiling returns nil.
type CityMatcher struct {
	cities entity.CityRepository
}

// NewCityMatcher builds a matcher over the given city repository.
func NewCityMatcher(cities entity.CityRepository) *CityMatcher {
	return &CityMatcher{cities: cities}
}

// Match resolves raw city text to a City, or nil when nothing is within
// the Levenshtein ceiling. The caller treats nil as an unknown city: the
// candidate is retained with a null city rather than rejected outright.
func (m *CityMatcher) Match(ctx context.Context, rawCityText string) (*entity.City, error) {
	normalized := Text(rawCityText)
	if normalized == "" {
		return nil, nil
	}

	exact, err := m.cities.FindByNormalizedName(ctx, normalized)
	if err == nil {
		return exact, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	candidates, err := m.cities.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var best *entity.City
	bestDistance := levenshteinCeiling + 1
	for _, c := range candidates {
		d := levenshteinDistance(normalized, c.NormalizedName)
		if d < bestDistance {
			bestDistance = d
			best = c
		}
	}

	if best == nil || bestDistance > levenshteinCeiling {
		return nil, nil
	}
	return best, nil
}

// NameSimilarity scores the Jaro-Winkler similarity between two already
// normalized names, used by the deduplication resolver's weighted
// similarity computation and by the confidence scorer's agreement term.
func NameSimilarity(a, b string) float64 {
	return strutil.Similarity(a, b, metrics.NewJaroWinkler())
}

// levenshteinDistance computes the raw edit distance between two strings.
// strutil's bundled Levenshtein metric reports a normalized similarity
// score rather than a raw edit count, and the city matcher needs the
// latter to apply a fixed ceiling of 2 — so the classic two-row DP is
// implemented directly here instead of bending that metric to the task.
func levenshteinDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
