package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/domain/patient"
	"github.com/lumora-health/visionflow/internal/domain/resource"
	"github.com/lumora-health/visionflow/internal/scheduling"
	"github.com/lumora-health/visionflow/pkg/metrics"
)

type AppointmentService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	resources   resource.Repository
	engine      *scheduling.Engine
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	patientRepo patient.Repository,
	resources resource.Repository,
	engine *scheduling.Engine,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:        repo,
		patientRepo: patientRepo,
		resources:   resources,
		engine:      engine,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
	}
}

// BookingResult pairs the persisted appointment with the engine's verdict so
// callers can surface buffer warnings and suggestions alongside the booking.
type BookingResult struct {
	Appointment *appointment.Appointment
	Validation  *scheduling.ValidationResult
}

func (s *AppointmentService) Book(
	ctx context.Context,
	cmd *appointment.CreateAppointmentCommand,
	callerID uuid.UUID,
	callerRole string,
	ip string,
) (*BookingResult, error) {
	if cmd.StartsAt.IsZero() {
		return nil, appointment.ErrMissingStartTime
	}
	if cmd.StartsAt.Before(time.Now()) {
		return nil, appointment.ErrScheduledInPast
	}

	// ── Verify patient is active ──────────────────────────────────────────
	p, err := s.patientRepo.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}
	if !p.IsActive() {
		return nil, patient.ErrPatientInactive
	}

	if err := s.verifyResources(ctx, cmd.ProviderID, cmd.RoomID, cmd.EquipmentIDs); err != nil {
		return nil, err
	}

	// Duration comes from the policy table; unknown types get the default
	// length instead of an error.
	if !cmd.Type.IsKnown() {
		s.log.Warn("unknown appointment type, applying default policy",
			zap.String("type", string(cmd.Type)),
		)
	}
	endsAt := cmd.StartsAt.Add(s.engine.Policy().DurationFor(cmd.Type))

	validation, err := s.engine.Validate(ctx, scheduling.Candidate{
		ProviderID:   cmd.ProviderID,
		RoomID:       cmd.RoomID,
		EquipmentIDs: cmd.EquipmentIDs,
		StartsAt:     cmd.StartsAt,
		EndsAt:       endsAt,
		Type:         cmd.Type,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("validating appointment: %w", err)
	}

	if !validation.Valid {
		return &BookingResult{Validation: validation}, appointment.ErrAppointmentConflict
	}
	if validation.Degraded {
		// fail open: the store blinked during validation, booking proceeds,
		// and the write-time exclusion constraint is the backstop
		s.log.Warn("booking with degraded validation",
			zap.String("provider_id", cmd.ProviderID.String()),
			zap.Time("starts_at", cmd.StartsAt),
		)
	}

	a := &appointment.Appointment{
		PatientID:  cmd.PatientID,
		ProviderID: cmd.ProviderID,
		RoomID:     cmd.RoomID,
		StartsAt:   cmd.StartsAt,
		EndsAt:     endsAt,
		Type:       cmd.Type,
		Status:     appointment.StatusScheduled,
		Reason:     cmd.Reason,
		Notes:      cmd.Notes,
		CreatedBy:  cmd.CreatedBy,
	}
	for _, eqID := range cmd.EquipmentIDs {
		a.Equipment = append(a.Equipment, appointment.EquipmentBooking{EquipmentID: eqID})
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusScheduled)).Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	return &BookingResult{Appointment: a, Validation: validation}, nil
}

// Reschedule revalidates the appointment at its new time with the
// appointment's own id excluded, or it would always collide with itself.
func (s *AppointmentService) Reschedule(
	ctx context.Context,
	id uuid.UUID,
	cmd *appointment.RescheduleAppointmentCommand,
	callerID uuid.UUID,
	callerRole string,
	ip string,
) (*BookingResult, error) {
	if cmd.StartsAt.IsZero() {
		return nil, appointment.ErrMissingStartTime
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roomID := a.RoomID
	if cmd.RoomID != nil {
		roomID = cmd.RoomID
	}
	equipmentIDs := a.EquipmentIDs()
	if cmd.EquipmentIDs != nil {
		equipmentIDs = cmd.EquipmentIDs
	}

	if err := s.verifyResources(ctx, a.ProviderID, roomID, equipmentIDs); err != nil {
		return nil, err
	}

	endsAt := cmd.StartsAt.Add(a.Duration())
	excludeID := a.ID

	validation, err := s.engine.Validate(ctx, scheduling.Candidate{
		ProviderID:   a.ProviderID,
		RoomID:       roomID,
		EquipmentIDs: equipmentIDs,
		StartsAt:     cmd.StartsAt,
		EndsAt:       endsAt,
		Type:         a.Type,
	}, &excludeID)
	if err != nil {
		return nil, fmt.Errorf("validating reschedule: %w", err)
	}

	if !validation.Valid {
		return &BookingResult{Validation: validation}, appointment.ErrAppointmentConflict
	}

	updated, err := s.repo.Reschedule(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"starts_at":%q}`, cmd.StartsAt.Format(time.RFC3339)),
	})

	return &BookingResult{Appointment: updated, Validation: validation}, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "read", ResourceType: "appointment", ResourceID: id.String(), IPAddress: ip,
	})

	return a, nil
}

func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, cmd *appointment.CancelAppointmentCommand, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := a.Cancel(cmd.Reason, cmd.CancelledBy); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusCancelled)).Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "appointment", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"status":"cancelled","reason":"%s"}`, cmd.Reason),
	})

	return a, nil
}

func (s *AppointmentService) Confirm(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransitionTo(appointment.StatusConfirmed) {
		return nil, appointment.ErrInvalidStatusTransition
	}
	a.Status = appointment.StatusConfirmed
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) Complete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Complete(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusCompleted)).Inc()
	}
	return a, nil
}

// MarkNoShow frees the slot: no-show appointments stop participating in
// conflict and buffer reasoning.
func (s *AppointmentService) MarkNoShow(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.MarkNoShow(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusNoShow)).Inc()
	}
	return a, nil
}

func (s *AppointmentService) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *AppointmentService) verifyResources(ctx context.Context, providerID uuid.UUID, roomID *uuid.UUID, equipmentIDs []uuid.UUID) error {
	prov, err := s.resources.GetProviderByID(ctx, providerID)
	if err != nil {
		return fmt.Errorf("verifying provider: %w", err)
	}
	if !prov.IsActive {
		return resource.ErrProviderInactive
	}

	if roomID != nil {
		if _, err := s.resources.GetRoomByID(ctx, *roomID); err != nil {
			return fmt.Errorf("verifying room: %w", err)
		}
	}

	if len(equipmentIDs) > 0 {
		if _, err := s.resources.GetEquipmentByIDs(ctx, equipmentIDs); err != nil {
			return fmt.Errorf("verifying equipment: %w", err)
		}
	}

	return nil
}
