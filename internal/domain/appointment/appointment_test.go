package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusBlocks(t *testing.T) {
	assert.True(t, StatusScheduled.Blocks())
	assert.True(t, StatusConfirmed.Blocks())
	assert.True(t, StatusInProgress.Blocks())
	assert.True(t, StatusCompleted.Blocks())
	assert.False(t, StatusCancelled.Blocks())
	assert.False(t, StatusNoShow.Blocks())

	for _, s := range BlockingStatuses() {
		assert.True(t, s.Blocks())
	}
}

func TestTypeIsKnown(t *testing.T) {
	assert.True(t, TypeConsultation.IsKnown())
	assert.True(t, TypeIVT.IsKnown())
	assert.False(t, Type("telepathy_session").IsKnown())
	assert.False(t, Type("").IsKnown())
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusConfirmed, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			a := &Appointment{Status: tc.from}
			assert.Equal(t, tc.allowed, a.CanTransitionTo(tc.to))
		})
	}
}

func TestCancel(t *testing.T) {
	by := uuid.New()
	a := &Appointment{Status: StatusScheduled}

	require.NoError(t, a.Cancel("patient request", by))
	assert.Equal(t, StatusCancelled, a.Status)
	assert.Equal(t, "patient request", a.CancellationReason)
	require.NotNil(t, a.CancelledBy)
	assert.Equal(t, by, *a.CancelledBy)
	assert.NotNil(t, a.CancelledAt)

	assert.ErrorIs(t, a.Cancel("again", by), ErrInvalidStatusTransition)
}

func TestCompleteRequiresInProgress(t *testing.T) {
	a := &Appointment{Status: StatusScheduled}
	assert.ErrorIs(t, a.Complete(), ErrInvalidStatusTransition)

	a.Status = StatusInProgress
	require.NoError(t, a.Complete())
	assert.Equal(t, StatusCompleted, a.Status)
	assert.NotNil(t, a.CompletedAt)
}

func TestMarkNoShowFreesSlot(t *testing.T) {
	a := &Appointment{Status: StatusConfirmed}
	require.NoError(t, a.MarkNoShow())
	assert.Equal(t, StatusNoShow, a.Status)
	assert.False(t, a.Status.Blocks())
}

func TestDurationAndEquipmentIDs(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	eq := uuid.New()
	a := &Appointment{
		StartsAt:  start,
		EndsAt:    start.Add(45 * time.Minute),
		Equipment: []EquipmentBooking{{EquipmentID: eq}},
	}

	assert.Equal(t, 45*time.Minute, a.Duration())
	assert.Equal(t, []uuid.UUID{eq}, a.EquipmentIDs())

	var empty Appointment
	assert.Nil(t, empty.EquipmentIDs())
}
