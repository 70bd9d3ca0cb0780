package scheduling

import (
	"time"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

// Policy maps an appointment type to its default length and the minimum
// clearance required between it and the provider's neighboring appointments.
type Policy struct {
	DurationMins int
	BufferMins   int
}

// PolicyTable is immutable once constructed. Unknown types resolve to the
// fallback entry instead of failing, so enumeration drift between clients and
// this service never blocks a booking.
type PolicyTable struct {
	entries  map[appointment.Type]Policy
	fallback Policy
}

func NewPolicyTable(entries map[appointment.Type]Policy, fallback Policy) *PolicyTable {
	copied := make(map[appointment.Type]Policy, len(entries))
	for t, p := range entries {
		copied[t] = p
	}
	return &PolicyTable{entries: copied, fallback: fallback}
}

// DefaultPolicyTable returns the clinic's standing schedule policy.
func DefaultPolicyTable() *PolicyTable {
	return NewPolicyTable(map[appointment.Type]Policy{
		appointment.TypeConsultation:       {DurationMins: 30, BufferMins: 5},
		appointment.TypeFollowUp:           {DurationMins: 20, BufferMins: 5},
		appointment.TypeEyeExam:            {DurationMins: 30, BufferMins: 10},
		appointment.TypeComprehensiveExam:  {DurationMins: 60, BufferMins: 15},
		appointment.TypeContactLensFitting: {DurationMins: 45, BufferMins: 10},
		appointment.TypeGlaucomaWorkup:     {DurationMins: 45, BufferMins: 10},
		appointment.TypeRetinalExam:        {DurationMins: 30, BufferMins: 10},
		appointment.TypeOCTScan:            {DurationMins: 15, BufferMins: 5},
		appointment.TypeVisualField:        {DurationMins: 20, BufferMins: 5},
		appointment.TypeProcedure:          {DurationMins: 45, BufferMins: 15},
		appointment.TypeMinorProcedure:     {DurationMins: 30, BufferMins: 10},
		appointment.TypeSurgery:            {DurationMins: 120, BufferMins: 30},
		appointment.TypeInjection:          {DurationMins: 15, BufferMins: 5},
		appointment.TypeIVT:                {DurationMins: 30, BufferMins: 10},
		appointment.TypeLaser:              {DurationMins: 45, BufferMins: 15},
	}, Policy{DurationMins: 30, BufferMins: 5})
}

func (t *PolicyTable) policyFor(typ appointment.Type) Policy {
	if p, ok := t.entries[typ]; ok {
		return p
	}
	return t.fallback
}

func (t *PolicyTable) DurationFor(typ appointment.Type) time.Duration {
	return time.Duration(t.policyFor(typ).DurationMins) * time.Minute
}

func (t *PolicyTable) BufferFor(typ appointment.Type) time.Duration {
	return time.Duration(t.policyFor(typ).BufferMins) * time.Minute
}
