package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lumora-health/visionflow/internal/domain"
	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/domain/patient"
	"github.com/lumora-health/visionflow/internal/domain/resource"
	"github.com/lumora-health/visionflow/internal/scheduling"
)

type apptRepoStub struct {
	created []*appointment.Appointment
	byID    map[uuid.UUID]*appointment.Appointment
}

func (r *apptRepoStub) Create(_ context.Context, a *appointment.Appointment) error {
	a.ID = uuid.New()
	r.created = append(r.created, a)
	return nil
}

func (r *apptRepoStub) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if a, ok := r.byID[id]; ok {
		return a, nil
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (r *apptRepoStub) List(_ context.Context, _ *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	return &appointment.PagedAppointments{}, nil
}

func (r *apptRepoStub) Reschedule(_ context.Context, id uuid.UUID, cmd *appointment.RescheduleAppointmentCommand) (*appointment.Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	moved := *a
	moved.EndsAt = cmd.StartsAt.Add(a.Duration())
	moved.StartsAt = cmd.StartsAt
	return &moved, nil
}

func (r *apptRepoStub) UpdateStatus(_ context.Context, _ *appointment.Appointment) error {
	return nil
}

type patientRepoStub struct {
	p *patient.Patient
}

func (r *patientRepoStub) Create(_ context.Context, _ *patient.Patient) error { return nil }

func (r *patientRepoStub) GetByID(_ context.Context, _ uuid.UUID) (*patient.Patient, error) {
	if r.p == nil {
		return nil, patient.ErrPatientNotFound
	}
	return r.p, nil
}

func (r *patientRepoStub) List(_ context.Context, _ *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	return &patient.PagedPatients{}, nil
}

type resourceRepoStub struct {
	providerActive bool
}

func (r *resourceRepoStub) GetProviderByID(_ context.Context, id uuid.UUID) (*resource.Provider, error) {
	return &resource.Provider{ID: id, FirstName: "Maya", LastName: "Okafor", IsActive: r.providerActive}, nil
}

func (r *resourceRepoStub) GetRoomByID(_ context.Context, id uuid.UUID) (*resource.Room, error) {
	return &resource.Room{ID: id}, nil
}

func (r *resourceRepoStub) GetEquipmentByIDs(_ context.Context, ids []uuid.UUID) ([]*resource.Equipment, error) {
	out := make([]*resource.Equipment, 0, len(ids))
	for _, id := range ids {
		out = append(out, &resource.Equipment{ID: id})
	}
	return out, nil
}

func (r *resourceRepoStub) ListProviders(_ context.Context, _ bool) ([]*resource.Provider, error) {
	return nil, nil
}
func (r *resourceRepoStub) ListRooms(_ context.Context, _ bool) ([]*resource.Room, error) {
	return nil, nil
}
func (r *resourceRepoStub) ListEquipment(_ context.Context, _ bool) ([]*resource.Equipment, error) {
	return nil, nil
}

type auditRepoStub struct{}

func (auditRepoStub) Create(_ context.Context, _ *domain.AuditLog) error { return nil }

// fixedStore serves a static set of bookings, honoring the exclude filter.
type fixedStore struct {
	bookings []scheduling.Booking
}

func (s *fixedStore) ProviderBookings(_ context.Context, _ uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]scheduling.Booking, error) {
	var out []scheduling.Booking
	for _, b := range s.bookings {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if !b.StartsAt.Before(end) || !b.EndsAt.After(start) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fixedStore) RoomBookings(_ context.Context, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) ([]scheduling.Booking, error) {
	return nil, nil
}

func (s *fixedStore) EquipmentBookings(_ context.Context, _ []uuid.UUID, _, _ time.Time, _ *uuid.UUID) ([]scheduling.Booking, error) {
	return nil, nil
}

func activePatient() *patient.Patient {
	return &patient.Patient{ID: uuid.New(), FirstName: "Ines", LastName: "Moreira", Status: patient.StatusActive}
}

func newBookingService(t *testing.T, store scheduling.Store, p *patient.Patient) (*AppointmentService, *apptRepoStub) {
	t.Helper()
	log := zap.NewNop()
	engine := scheduling.NewEngine(store, scheduling.Config{}, log)
	auditSvc := NewAuditService(auditRepoStub{}, log, nil)
	t.Cleanup(auditSvc.Shutdown)

	repo := &apptRepoStub{byID: map[uuid.UUID]*appointment.Appointment{}}
	svc := NewAppointmentService(repo, &patientRepoStub{p: p}, &resourceRepoStub{providerActive: true}, engine, auditSvc, nil, log)
	return svc, repo
}

// bookingTime is a stable slot comfortably in the future and inside business
// hours on that day.
func bookingTime(t *testing.T) time.Time {
	t.Helper()
	d := time.Now().AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.UTC)
}

func TestBook_PersistsWithPolicyDuration(t *testing.T) {
	svc, repo := newBookingService(t, &fixedStore{}, activePatient())
	startsAt := bookingTime(t)

	res, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartsAt:   startsAt,
		Type:       appointment.TypeConsultation,
	}, uuid.New(), string(domain.RoleReceptionist), "10.0.0.1")
	require.NoError(t, err)

	require.NotNil(t, res.Appointment)
	assert.Equal(t, appointment.StatusScheduled, res.Appointment.Status)
	assert.Equal(t, startsAt.Add(30*time.Minute), res.Appointment.EndsAt)
	assert.True(t, res.Validation.Valid)
	require.Len(t, repo.created, 1)
}

func TestBook_ConflictRefusedWithSuggestion(t *testing.T) {
	startsAt := bookingTime(t)
	store := &fixedStore{bookings: []scheduling.Booking{{
		ID:       uuid.New(),
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(30 * time.Minute),
		Type:     appointment.TypeConsultation,
	}}}
	svc, repo := newBookingService(t, store, activePatient())

	res, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartsAt:   startsAt,
		Type:       appointment.TypeConsultation,
	}, uuid.New(), string(domain.RoleReceptionist), "10.0.0.1")

	require.ErrorIs(t, err, appointment.ErrAppointmentConflict)
	require.NotNil(t, res)
	assert.Nil(t, res.Appointment)
	assert.False(t, res.Validation.Valid)
	assert.NotNil(t, res.Validation.Suggestion)
	assert.Empty(t, repo.created, "a conflicting booking must never be persisted")
}

func TestBook_InactivePatientRefused(t *testing.T) {
	inactive := activePatient()
	inactive.Status = patient.StatusInactive
	svc, _ := newBookingService(t, &fixedStore{}, inactive)

	_, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartsAt:   bookingTime(t),
		Type:       appointment.TypeConsultation,
	}, uuid.New(), string(domain.RoleReceptionist), "10.0.0.1")

	assert.ErrorIs(t, err, patient.ErrPatientInactive)
}

func TestBook_PastStartRefused(t *testing.T) {
	svc, _ := newBookingService(t, &fixedStore{}, activePatient())

	_, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartsAt:   time.Now().Add(-time.Hour),
		Type:       appointment.TypeConsultation,
	}, uuid.New(), string(domain.RoleReceptionist), "10.0.0.1")

	assert.ErrorIs(t, err, appointment.ErrScheduledInPast)
}

func TestReschedule_OwnSlotDoesNotConflictWithItself(t *testing.T) {
	startsAt := bookingTime(t)
	existing := &appointment.Appointment{
		ID:         uuid.New(),
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartsAt:   startsAt,
		EndsAt:     startsAt.Add(30 * time.Minute),
		Type:       appointment.TypeConsultation,
		Status:     appointment.StatusScheduled,
	}
	store := &fixedStore{bookings: []scheduling.Booking{{
		ID:       existing.ID,
		StartsAt: existing.StartsAt,
		EndsAt:   existing.EndsAt,
		Type:     existing.Type,
	}}}
	svc, repo := newBookingService(t, store, activePatient())
	repo.byID[existing.ID] = existing

	// move by 10 minutes: still overlapping its old slot, which must be ignored
	res, err := svc.Reschedule(context.Background(), existing.ID, &appointment.RescheduleAppointmentCommand{
		StartsAt: startsAt.Add(10 * time.Minute),
	}, uuid.New(), string(domain.RoleReceptionist), "10.0.0.1")
	require.NoError(t, err)

	assert.True(t, res.Validation.Valid)
	assert.Equal(t, startsAt.Add(10*time.Minute), res.Appointment.StartsAt)
	assert.Equal(t, 30*time.Minute, res.Appointment.Duration())
}
