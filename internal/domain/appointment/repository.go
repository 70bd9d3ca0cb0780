package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// Reschedule moves an appointment to a new time range and, when given,
	// replaces its room and equipment assignments.
	Reschedule(ctx context.Context, id uuid.UUID, cmd *RescheduleAppointmentCommand) (*Appointment, error)

	// UpdateStatus persists a status transition already applied to a.
	UpdateStatus(ctx context.Context, a *Appointment) error
}
