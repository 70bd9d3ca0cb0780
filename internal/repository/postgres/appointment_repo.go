package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if err != nil {
		if isExclusionViolation(err) {
			return appointment.ErrAppointmentConflict
		}
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, cmd *appointment.RescheduleAppointmentCommand) (*appointment.Appointment, error) {
	var updated *appointment.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a appointment.Appointment
		if err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appointment.ErrAppointmentNotFound
			}
			return err
		}

		duration := a.Duration()
		a.StartsAt = cmd.StartsAt
		a.EndsAt = cmd.StartsAt.Add(duration)
		if cmd.RoomID != nil {
			a.RoomID = cmd.RoomID
		}

		if err := tx.Model(&a).Updates(map[string]any{
			"starts_at": a.StartsAt,
			"ends_at":   a.EndsAt,
			"room_id":   a.RoomID,
		}).Error; err != nil {
			return err
		}

		if cmd.EquipmentIDs != nil {
			if err := tx.Where("appointment_id = ?", a.ID).Delete(&appointment.EquipmentBooking{}).Error; err != nil {
				return err
			}
			for _, eqID := range cmd.EquipmentIDs {
				if err := tx.Create(&appointment.EquipmentBooking{AppointmentID: a.ID, EquipmentID: eqID}).Error; err != nil {
					return err
				}
			}
		}

		updated = &a
		return nil
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, appointment.ErrAppointmentConflict
		}
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("rescheduling appointment: %w", err)
	}

	return r.GetByID(ctx, updated.ID)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	err := r.db.WithContext(ctx).Model(a).Updates(map[string]any{
		"status":              a.Status,
		"cancelled_at":        a.CancelledAt,
		"cancellation_reason": a.CancellationReason,
		"cancelled_by":        a.CancelledBy,
		"completed_at":        a.CompletedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("updating appointment status: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	query := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("deleted_at IS NULL")

	if q.PatientID != nil {
		query = query.Where("patient_id = ?", *q.PatientID)
	}
	if q.ProviderID != nil {
		query = query.Where("provider_id = ?", *q.ProviderID)
	}
	if q.RoomID != nil {
		query = query.Where("room_id = ?", *q.RoomID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.Type != nil {
		query = query.Where("type = ?", *q.Type)
	}
	if q.DateFrom != nil {
		query = query.Where("starts_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("starts_at < ?", *q.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var items []*appointment.Appointment
	err := query.
		Preload("Equipment").
		Order("starts_at ASC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &appointment.PagedAppointments{
		Appointments: items,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages,
	}, nil
}

// isExclusionViolation matches the provider/time-range exclusion constraint,
// which backs the engine's snapshot verdict at write time.
func isExclusionViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "appointments_provider_no_overlap")
}
