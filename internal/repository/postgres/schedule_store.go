package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/scheduling"
)

// ScheduleStore answers the engine's time-range queries. Each query returns
// only blocking-status appointments intersecting [start, end), sorted by
// start time, projected down to the summary the engine needs.
type ScheduleStore struct {
	db *gorm.DB
}

func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

type bookingRow struct {
	ID          uuid.UUID
	StartsAt    time.Time
	EndsAt      time.Time
	Type        appointment.Type
	PatientName string
}

func (s *ScheduleStore) ProviderBookings(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]scheduling.Booking, error) {
	q := s.baseQuery(ctx, start, end, excludeID).
		Where("a.provider_id = ?", providerID)
	return s.scan(q)
}

func (s *ScheduleStore) RoomBookings(ctx context.Context, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]scheduling.Booking, error) {
	q := s.baseQuery(ctx, start, end, excludeID).
		Where("a.room_id = ?", roomID)
	return s.scan(q)
}

func (s *ScheduleStore) EquipmentBookings(ctx context.Context, equipmentIDs []uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]scheduling.Booking, error) {
	q := s.baseQuery(ctx, start, end, excludeID).
		Joins("JOIN clinical.appointment_equipment ae ON ae.appointment_id = a.id").
		Where("ae.equipment_id IN ?", equipmentIDs).
		Distinct()
	return s.scan(q)
}

// baseQuery applies the shared predicates: soft-delete, status exclusion,
// half-open range intersection, optional self-exclusion for edit flows.
func (s *ScheduleStore) baseQuery(ctx context.Context, start, end time.Time, excludeID *uuid.UUID) *gorm.DB {
	q := s.db.WithContext(ctx).
		Table("clinical.appointments AS a").
		Select("a.id, a.starts_at, a.ends_at, a.type, p.first_name || ' ' || p.last_name AS patient_name").
		Joins("LEFT JOIN clinical.patients p ON p.id = a.patient_id").
		Where("a.deleted_at IS NULL").
		Where("a.status IN ?", appointment.BlockingStatuses()).
		Where("a.starts_at < ? AND a.ends_at > ?", end, start)

	if excludeID != nil {
		q = q.Where("a.id <> ?", *excludeID)
	}

	return q.Order("a.starts_at ASC")
}

func (s *ScheduleStore) scan(q *gorm.DB) ([]scheduling.Booking, error) {
	var rows []bookingRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}

	bookings := make([]scheduling.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, scheduling.Booking{
			ID:          r.ID,
			StartsAt:    r.StartsAt,
			EndsAt:      r.EndsAt,
			Type:        r.Type,
			DisplayName: r.PatientName,
		})
	}
	return bookings, nil
}
