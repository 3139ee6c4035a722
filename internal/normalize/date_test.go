package normalize_test

import (
	"testing"
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{
			name: "ISO 8601",
			raw:  "2025-06-26",
			want: time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "RFC3339 with time component truncated",
			raw:  "2025-06-26T14:00:00Z",
			want: time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "French long form",
			raw:  "2 janvier 2025",
			want: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "French long form with accent",
			raw:  "14 février 2025",
			want: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unambiguous DD/MM",
			raw:  "26/06/2025",
			want: time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unambiguous MM/DD",
			raw:  "06/26/2025",
			want: time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "ambiguous ordering fails closed",
			raw:     "03/04/2025",
			wantErr: true,
		},
		{
			name:    "unrecognized garbage",
			raw:     "not a date",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.Date(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDate_AmbiguousReturnsSentinel(t *testing.T) {
	_, err := normalize.Date("01/02/2025")
	require.ErrorIs(t, err, normalize.ErrAmbiguousDate)
}
