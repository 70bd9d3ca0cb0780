package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

func TestPolicyTable_KnownTypes(t *testing.T) {
	table := DefaultPolicyTable()

	cases := []struct {
		typ      appointment.Type
		duration time.Duration
		buffer   time.Duration
	}{
		{appointment.TypeConsultation, 30 * time.Minute, 5 * time.Minute},
		{appointment.TypeFollowUp, 20 * time.Minute, 5 * time.Minute},
		{appointment.TypeComprehensiveExam, 60 * time.Minute, 15 * time.Minute},
		{appointment.TypeOCTScan, 15 * time.Minute, 5 * time.Minute},
		{appointment.TypeSurgery, 120 * time.Minute, 30 * time.Minute},
		{appointment.TypeLaser, 45 * time.Minute, 15 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			assert.Equal(t, tc.duration, table.DurationFor(tc.typ))
			assert.Equal(t, tc.buffer, table.BufferFor(tc.typ))
		})
	}
}

func TestPolicyTable_UnknownTypeFallsBack(t *testing.T) {
	table := DefaultPolicyTable()

	assert.Equal(t, 30*time.Minute, table.DurationFor("telepathy_session"))
	assert.Equal(t, 5*time.Minute, table.BufferFor("telepathy_session"))
	assert.Equal(t, 30*time.Minute, table.DurationFor(""))
}

func TestPolicyTable_ImmutableAfterConstruction(t *testing.T) {
	entries := map[appointment.Type]Policy{
		appointment.TypeConsultation: {DurationMins: 30, BufferMins: 5},
	}
	table := NewPolicyTable(entries, Policy{DurationMins: 30, BufferMins: 5})

	entries[appointment.TypeConsultation] = Policy{DurationMins: 99, BufferMins: 99}

	require.Equal(t, 30*time.Minute, table.DurationFor(appointment.TypeConsultation))
	require.Equal(t, 5*time.Minute, table.BufferFor(appointment.TypeConsultation))
}
