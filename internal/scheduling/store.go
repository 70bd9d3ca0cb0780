package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

// Booking is the lightweight appointment summary the engine reasons over. The
// engine never loads full appointment aggregates; the store projects just
// enough to decide overlaps and render a conflict message.
type Booking struct {
	ID          uuid.UUID
	StartsAt    time.Time
	EndsAt      time.Time
	Type        appointment.Type
	DisplayName string
}

// Store is the appointment store the engine validates against. Every query
// must return only blocking-status bookings (cancelled and no-show excluded)
// whose [StartsAt, EndsAt) intersects [start, end), sorted by start time.
// excludeID, when non-nil, removes one appointment from the result; edit flows
// need it so an appointment does not conflict with itself.
type Store interface {
	ProviderBookings(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Booking, error)
	RoomBookings(ctx context.Context, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Booking, error)
	EquipmentBookings(ctx context.Context, equipmentIDs []uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Booking, error)
}
