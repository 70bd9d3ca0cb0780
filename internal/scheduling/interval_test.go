package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"partial overlap", "09:00", "09:30", "09:25", "09:55", true},
		{"containment", "09:00", "10:00", "09:15", "09:45", true},
		{"identical", "09:00", "09:30", "09:00", "09:30", true},
		{"touching end to start", "09:00", "09:30", "09:30", "10:00", false},
		{"touching start to end", "09:30", "10:00", "09:00", "09:30", false},
		{"disjoint", "09:00", "09:30", "11:00", "11:30", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := overlaps(at(tc.s1), at(tc.e1), at(tc.s2), at(tc.e2))
			assert.Equal(t, tc.want, got)

			// the predicate is symmetric in its two intervals
			assert.Equal(t, tc.want, overlaps(at(tc.s2), at(tc.e2), at(tc.s1), at(tc.e1)))
		})
	}
}

func TestParseBusinessHours(t *testing.T) {
	hours, err := ParseBusinessHours("08:30", "17:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 8, Minute: 30}, hours.Open)
	assert.Equal(t, ClockTime{Hour: 17}, hours.Close)

	_, err = ParseBusinessHours("18:00", "08:00", time.UTC)
	assert.Error(t, err)

	_, err = ParseBusinessHours("8 am", "18:00", time.UTC)
	assert.Error(t, err)
}

func TestBusinessHours_OpenCloseAt(t *testing.T) {
	hours := testHours()
	noon := at("12:00")

	assert.Equal(t, at("08:00"), hours.OpenAt(noon))
	assert.Equal(t, at("18:00"), hours.CloseAt(noon))
}
