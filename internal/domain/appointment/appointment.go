package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Type is open-ended on purpose: the policy table knows the types below, and
// anything else resolves to default duration/buffer instead of being rejected,
// so a new exam type in the front-end never blocks booking.
type Type string

const (
	TypeConsultation       Type = "consultation"
	TypeFollowUp           Type = "follow_up"
	TypeEyeExam            Type = "eye_exam"
	TypeComprehensiveExam  Type = "comprehensive_exam"
	TypeContactLensFitting Type = "contact_lens_fitting"
	TypeGlaucomaWorkup     Type = "glaucoma_workup"
	TypeRetinalExam        Type = "retinal_exam"
	TypeOCTScan            Type = "oct_scan"
	TypeVisualField        Type = "visual_field"
	TypeProcedure          Type = "procedure"
	TypeMinorProcedure     Type = "minor_procedure"
	TypeSurgery            Type = "surgery"
	TypeInjection          Type = "injection"
	TypeIVT                Type = "ivt"
	TypeLaser              Type = "laser"
)

func (t Type) IsKnown() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeEyeExam, TypeComprehensiveExam,
		TypeContactLensFitting, TypeGlaucomaWorkup, TypeRetinalExam, TypeOCTScan,
		TypeVisualField, TypeProcedure, TypeMinorProcedure, TypeSurgery,
		TypeInjection, TypeIVT, TypeLaser:
		return true
	}
	return false
}

// State transitions possibilities:
//
//	scheduled → confirmed → in_progress → completed
//	scheduled → cancelled
//	confirmed → cancelled
//	confirmed → no_show (if patient doesn't arrive)
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// BlockingStatuses lists every status that occupies the provider's, room's and
// equipment's time. Cancelled and no-show appointments free their slot.
func BlockingStatuses() []Status {
	return []Status{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted}
}

func (s Status) Blocks() bool {
	return s != StatusCancelled && s != StatusNoShow
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PatientID  uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	ProviderID uuid.UUID  `gorm:"column:provider_id;type:uuid;not null;index"`
	RoomID     *uuid.UUID `gorm:"column:room_id;type:uuid;index"`

	// EndsAt is always StartsAt + duration; both are stored so the store can
	// run pure range-intersection queries and back the exclusion constraint.
	StartsAt time.Time `gorm:"column:starts_at;not null;index"`
	EndsAt   time.Time `gorm:"column:ends_at;not null;index"`

	Type   Type   `gorm:"column:type;type:varchar(50);not null;index"`
	Status Status `gorm:"column:status;type:varchar(30);not null;default:'scheduled';index"`

	Equipment []EquipmentBooking `gorm:"foreignKey:AppointmentID"`

	Reason string `gorm:"column:reason;type:text"`
	Notes  string `gorm:"column:notes;type:text"`

	// Cancellation tracking
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text"`
	CancelledBy        *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`

	CompletedAt *time.Time `gorm:"column:completed_at"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// EquipmentBooking ties one piece of equipment to an appointment. Kept as an
// explicit join table so the store can index and query by equipment id.
type EquipmentBooking struct {
	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;primaryKey"`
	EquipmentID   uuid.UUID `gorm:"column:equipment_id;type:uuid;primaryKey;index"`
}

func (EquipmentBooking) TableName() string {
	return "clinical.appointment_equipment"
}

func (a *Appointment) Duration() time.Duration {
	return a.EndsAt.Sub(a.StartsAt)
}

func (a *Appointment) EquipmentIDs() []uuid.UUID {
	if len(a.Equipment) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(a.Equipment))
	for _, eq := range a.Equipment {
		ids = append(ids, eq.EquipmentID)
	}
	return ids
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusScheduled:  {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusInProgress, StatusNoShow, StatusCancelled},
		StatusInProgress: {StatusCompleted},
		StatusCompleted:  {},
		StatusCancelled:  {},
		StatusNoShow:     {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (a *Appointment) Cancel(reason string, cancelledBy uuid.UUID) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	a.CancelledBy = &cancelledBy
	return nil
}

func (a *Appointment) Complete() error {
	if !a.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.CompletedAt = &now
	return nil
}

func (a *Appointment) MarkNoShow() error {
	if !a.CanTransitionTo(StatusNoShow) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusNoShow
	return nil
}

type CreateAppointmentCommand struct {
	PatientID    uuid.UUID
	ProviderID   uuid.UUID
	RoomID       *uuid.UUID
	EquipmentIDs []uuid.UUID
	StartsAt     time.Time
	Type         Type
	Reason       string
	Notes        string
	CreatedBy    uuid.UUID
}

type RescheduleAppointmentCommand struct {
	StartsAt     time.Time
	RoomID       *uuid.UUID
	EquipmentIDs []uuid.UUID
	UpdatedBy    uuid.UUID
}

type CancelAppointmentCommand struct {
	Reason      string
	CancelledBy uuid.UUID
}

type ListAppointmentsQuery struct {
	PatientID  *uuid.UUID
	ProviderID *uuid.UUID
	RoomID     *uuid.UUID
	Status     *Status
	Type       *Type
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
