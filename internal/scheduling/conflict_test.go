package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

func TestCheckProviderConflicts_OverlapDetected(t *testing.T) {
	providerID := uuid.New()
	store := &memStore{appts: []storedAppt{
		blocking(providerID, "09:00", "09:30", appointment.TypeConsultation),
	}}
	engine := newTestEngine(store)

	res, err := engine.CheckProviderConflicts(context.Background(), providerID, at("09:25"), at("09:55"), nil)
	require.NoError(t, err)

	assert.True(t, res.HasConflict)
	assert.False(t, res.Degraded)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ResourceProvider, res.Conflicts[0].Resource)
	assert.Equal(t, appointment.TypeConsultation, res.Conflicts[0].Type)
	assert.Equal(t, at("09:00"), res.Conflicts[0].StartsAt)
}

func TestCheckProviderConflicts_TouchingIntervalsDoNotConflict(t *testing.T) {
	providerID := uuid.New()
	store := &memStore{appts: []storedAppt{
		blocking(providerID, "09:00", "09:30", appointment.TypeConsultation),
	}}
	engine := newTestEngine(store)

	res, err := engine.CheckProviderConflicts(context.Background(), providerID, at("09:30"), at("10:00"), nil)
	require.NoError(t, err)

	assert.False(t, res.HasConflict)
	assert.Empty(t, res.Conflicts)
}

func TestCheckProviderConflicts_ExcludedStatusesNeverConflict(t *testing.T) {
	providerID := uuid.New()
	cancelled := blocking(providerID, "09:00", "09:30", appointment.TypeConsultation)
	cancelled.status = appointment.StatusCancelled
	noShow := blocking(providerID, "09:00", "09:30", appointment.TypeConsultation)
	noShow.status = appointment.StatusNoShow

	engine := newTestEngine(&memStore{appts: []storedAppt{cancelled, noShow}})

	res, err := engine.CheckProviderConflicts(context.Background(), providerID, at("09:00"), at("09:30"), nil)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckProviderConflicts_ExcludeIDSkipsOwnBooking(t *testing.T) {
	providerID := uuid.New()
	existing := blocking(providerID, "09:00", "09:30", appointment.TypeConsultation)
	engine := newTestEngine(&memStore{appts: []storedAppt{existing}})

	// revalidating the appointment against its own current time must pass
	res, err := engine.CheckProviderConflicts(context.Background(), providerID, at("09:00"), at("09:30"), &existing.id)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)

	other := uuid.New()
	res, err = engine.CheckProviderConflicts(context.Background(), providerID, at("09:00"), at("09:30"), &other)
	require.NoError(t, err)
	assert.True(t, res.HasConflict)
}

func TestCheckProviderConflicts_InputErrors(t *testing.T) {
	engine := newTestEngine(&memStore{})

	_, err := engine.CheckProviderConflicts(context.Background(), uuid.Nil, at("09:00"), at("09:30"), nil)
	assert.ErrorIs(t, err, ErrMissingProvider)

	_, err = engine.CheckProviderConflicts(context.Background(), uuid.New(), at("09:30"), at("09:00"), nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCheckProviderConflicts_StoreFailureDegradesFailOpen(t *testing.T) {
	engine := newTestEngine(&memStore{err: errors.New("connection refused")})

	res, err := engine.CheckProviderConflicts(context.Background(), uuid.New(), at("09:00"), at("09:30"), nil)
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	assert.False(t, res.HasConflict)
}

func TestCheckRoomConflicts(t *testing.T) {
	providerID := uuid.New()
	roomID := uuid.New()
	occupied := blocking(providerID, "10:00", "10:45", appointment.TypeProcedure)
	occupied.roomID = &roomID
	engine := newTestEngine(&memStore{appts: []storedAppt{occupied}})

	res, err := engine.CheckRoomConflicts(context.Background(), &roomID, at("10:30"), at("11:00"), nil)
	require.NoError(t, err)
	assert.True(t, res.HasConflict)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ResourceRoom, res.Conflicts[0].Resource)

	otherRoom := uuid.New()
	res, err = engine.CheckRoomConflicts(context.Background(), &otherRoom, at("10:30"), at("11:00"), nil)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckRoomConflicts_NilRoomShortCircuits(t *testing.T) {
	engine := newTestEngine(&memStore{err: errors.New("unreachable")})

	// no room requested: the store must not even be queried
	res, err := engine.CheckRoomConflicts(context.Background(), nil, at("10:00"), at("10:30"), nil)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
	assert.False(t, res.Degraded)
}

func TestCheckEquipmentConflicts_SharedItemConflicts(t *testing.T) {
	providerID := uuid.New()
	oct := uuid.New()
	fundus := uuid.New()
	inUse := blocking(providerID, "11:00", "11:15", appointment.TypeOCTScan)
	inUse.equipmentIDs = []uuid.UUID{oct}
	engine := newTestEngine(&memStore{appts: []storedAppt{inUse}})

	res, err := engine.CheckEquipmentConflicts(context.Background(), []uuid.UUID{oct, fundus}, at("11:10"), at("11:40"), nil)
	require.NoError(t, err)
	assert.True(t, res.HasConflict)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ResourceEquipment, res.Conflicts[0].Resource)

	res, err = engine.CheckEquipmentConflicts(context.Background(), []uuid.UUID{fundus}, at("11:10"), at("11:40"), nil)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckEquipmentConflicts_EmptySetShortCircuits(t *testing.T) {
	engine := newTestEngine(&memStore{err: errors.New("unreachable")})

	res, err := engine.CheckEquipmentConflicts(context.Background(), nil, at("11:00"), at("11:30"), nil)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
	assert.False(t, res.Degraded)
}
