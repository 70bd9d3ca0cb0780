package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/pkg/metrics"
)

// Input errors. Dependency failures never surface here: a failed store query
// degrades the affected check fail-open (see ConflictResult.Degraded) instead
// of aborting the booking flow.
var (
	ErrMissingProvider  = errors.New("provider id is required")
	ErrMissingStartTime = errors.New("start time is required")
	ErrInvalidInterval  = errors.New("start time must be before end time")
	ErrInvalidDuration  = errors.New("duration must be positive")
)

type ResourceKind string

const (
	ResourceProvider  ResourceKind = "provider"
	ResourceRoom      ResourceKind = "room"
	ResourceEquipment ResourceKind = "equipment"
)

// Conflict is a hard overlap on one resource dimension. It carries enough
// context to render a human message; the message itself is a presentation
// concern and lives with the callers.
type Conflict struct {
	Resource      ResourceKind     `json:"resource"`
	AppointmentID uuid.UUID        `json:"appointment_id"`
	DisplayName   string           `json:"display_name"`
	StartsAt      time.Time        `json:"starts_at"`
	EndsAt        time.Time        `json:"ends_at"`
	Type          appointment.Type `json:"type"`
}

// ConflictResult reports hard conflicts on one resource dimension. Degraded
// means the store query failed and the (empty) result is inconclusive rather
// than a verified all-clear.
type ConflictResult struct {
	HasConflict bool       `json:"has_conflict"`
	Conflicts   []Conflict `json:"conflicts,omitempty"`
	Degraded    bool       `json:"degraded,omitempty"`
}

type ViolationSide string

const (
	SideBefore ViolationSide = "before"
	SideAfter  ViolationSide = "after"
)

// BufferViolation is a soft shortfall of the required clearance between the
// candidate and one neighboring appointment. It warns, it never blocks.
type BufferViolation struct {
	Side         ViolationSide `json:"side"`
	Neighbor     Conflict      `json:"neighbor"`
	RequiredMins int           `json:"required_mins"`
	ActualMins   int           `json:"actual_mins"`
}

type BufferResult struct {
	HasViolations bool              `json:"has_violations"`
	Violations    []BufferViolation `json:"violations,omitempty"`
	Degraded      bool              `json:"degraded,omitempty"`
}

// SlotResult carries the outcome of a next-slot search. A nil Slot with
// Degraded false means the calendar is genuinely full for the whole horizon.
type SlotResult struct {
	Slot     *Slot `json:"slot"`
	Degraded bool  `json:"degraded,omitempty"`
}

type SlotsResult struct {
	Slots    []Slot `json:"slots"`
	Degraded bool   `json:"degraded,omitempty"`
}

// ValidationResult is the orchestrator's combined verdict. Errors block,
// Warnings do not, Suggestion is the next free slot when the requested one is
// taken, and Degraded marks a verdict built on at least one failed store
// query.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Errors     []Conflict        `json:"errors,omitempty"`
	Warnings   []BufferViolation `json:"warnings,omitempty"`
	Suggestion *Slot             `json:"suggestion,omitempty"`
	Degraded   bool              `json:"degraded,omitempty"`
}

// Candidate is a proposed appointment to validate. EndsAt must equal
// StartsAt plus the intended duration.
type Candidate struct {
	ProviderID   uuid.UUID
	RoomID       *uuid.UUID
	EquipmentIDs []uuid.UUID
	StartsAt     time.Time
	EndsAt       time.Time
	Type         appointment.Type
}

// Config tunes the engine. Zero values fall back to the clinic defaults.
type Config struct {
	Policy      *PolicyTable
	Hours       BusinessHours
	HorizonDays int
	Metrics     *metrics.Collector
}

// Engine decides whether a proposed appointment can be booked against the
// provider's, room's and equipment's existing commitments. It owns no mutable
// state: the policy table is read-only and every appointment snapshot comes
// from the store per call, so a single Engine is safe for concurrent use.
//
// The engine's verdict reflects the store at query time only; preventing a
// concurrent booking from landing between validation and persistence is the
// storage layer's job (see the provider/time-range exclusion constraint in
// pkg/database).
type Engine struct {
	store       Store
	policy      *PolicyTable
	hours       BusinessHours
	horizonDays int
	log         *zap.Logger
	metrics     *metrics.Collector
}

func NewEngine(store Store, cfg Config, log *zap.Logger) *Engine {
	if cfg.Policy == nil {
		cfg.Policy = DefaultPolicyTable()
	}
	if cfg.Hours.Close == (ClockTime{}) {
		cfg.Hours = DefaultBusinessHours()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 7
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:       store,
		policy:      cfg.Policy,
		hours:       cfg.Hours,
		horizonDays: cfg.HorizonDays,
		log:         log,
		metrics:     cfg.Metrics,
	}
}

func (e *Engine) Policy() *PolicyTable {
	return e.policy
}

func (e *Engine) BusinessHours() BusinessHours {
	return e.hours
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() {
		return ErrMissingStartTime
	}
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	return nil
}

// degrade records a failed store query and makes the failure observable
// instead of crashing the booking flow.
func (e *Engine) degrade(check string, err error) {
	e.log.Warn("scheduling check degraded, failing open",
		zap.String("check", check),
		zap.Error(err),
	)
	if e.metrics != nil {
		e.metrics.DegradedChecksTotal.WithLabelValues(check).Inc()
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
