package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CheckProviderConflicts reports every blocking appointment of the provider
// whose interval intersects [start, end).
func (e *Engine) CheckProviderConflicts(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (ConflictResult, error) {
	if providerID == uuid.Nil {
		return ConflictResult{}, ErrMissingProvider
	}
	if err := validateInterval(start, end); err != nil {
		return ConflictResult{}, err
	}

	bookings, err := e.store.ProviderBookings(ctx, providerID, start, end, excludeID)
	if err != nil {
		e.degrade("provider_conflicts", err)
		return ConflictResult{Degraded: true}, nil
	}

	return e.collectConflicts(ResourceProvider, bookings, start, end), nil
}

// CheckRoomConflicts short-circuits to no-conflict when roomID is nil: a room
// is optional and an unassigned one cannot collide.
func (e *Engine) CheckRoomConflicts(ctx context.Context, roomID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (ConflictResult, error) {
	if roomID == nil || *roomID == uuid.Nil {
		return ConflictResult{}, nil
	}
	if err := validateInterval(start, end); err != nil {
		return ConflictResult{}, err
	}

	bookings, err := e.store.RoomBookings(ctx, *roomID, start, end, excludeID)
	if err != nil {
		e.degrade("room_conflicts", err)
		return ConflictResult{Degraded: true}, nil
	}

	return e.collectConflicts(ResourceRoom, bookings, start, end), nil
}

// CheckEquipmentConflicts treats the candidate's equipment as a set: any
// booking sharing any of the requested items and overlapping in time is a
// conflict. An empty set short-circuits to no-conflict.
func (e *Engine) CheckEquipmentConflicts(ctx context.Context, equipmentIDs []uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (ConflictResult, error) {
	if len(equipmentIDs) == 0 {
		return ConflictResult{}, nil
	}
	if err := validateInterval(start, end); err != nil {
		return ConflictResult{}, err
	}

	bookings, err := e.store.EquipmentBookings(ctx, equipmentIDs, start, end, excludeID)
	if err != nil {
		e.degrade("equipment_conflicts", err)
		return ConflictResult{Degraded: true}, nil
	}

	return e.collectConflicts(ResourceEquipment, bookings, start, end), nil
}

// collectConflicts re-applies the canonical overlap predicate on top of the
// store's range query, so a store that returns adjacent (touching) bookings
// still yields correct half-open semantics.
func (e *Engine) collectConflicts(kind ResourceKind, bookings []Booking, start, end time.Time) ConflictResult {
	var conflicts []Conflict
	for _, b := range bookings {
		if !overlaps(start, end, b.StartsAt, b.EndsAt) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Resource:      kind,
			AppointmentID: b.ID,
			DisplayName:   b.DisplayName,
			StartsAt:      b.StartsAt,
			EndsAt:        b.EndsAt,
			Type:          b.Type,
		})
	}

	if len(conflicts) > 0 && e.metrics != nil {
		e.metrics.ConflictsDetectedTotal.WithLabelValues(string(kind)).Add(float64(len(conflicts)))
	}

	return ConflictResult{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}
}
