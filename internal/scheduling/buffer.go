package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

// CheckBufferViolations reports neighbors of [start, end) on the provider's
// calendar that sit closer than the required clearance. The binding buffer
// between two adjacent appointments is the maximum of both sides' own
// type-buffers: a surgery demands its 30 minutes of clearance even next to a
// follow-up that would settle for 5.
//
// Violations are advisory. Callers decide whether to surface or block.
func (e *Engine) CheckBufferViolations(ctx context.Context, providerID uuid.UUID, start, end time.Time, typ appointment.Type, excludeID *uuid.UUID) (BufferResult, error) {
	if providerID == uuid.Nil {
		return BufferResult{}, ErrMissingProvider
	}
	if err := validateInterval(start, end); err != nil {
		return BufferResult{}, err
	}

	required := e.policy.BufferFor(typ)
	windowStart := start.Add(-required)
	windowEnd := end.Add(required)

	neighbors, err := e.store.ProviderBookings(ctx, providerID, windowStart, windowEnd, excludeID)
	if err != nil {
		e.degrade("buffer_violations", err)
		return BufferResult{Degraded: true}, nil
	}

	var violations []BufferViolation
	for _, n := range neighbors {
		// Overlapping appointments are the conflict checker's territory;
		// buffers only apply across an actual gap.
		if overlaps(start, end, n.StartsAt, n.EndsAt) {
			continue
		}

		var (
			side ViolationSide
			gap  time.Duration
		)
		switch {
		case !n.EndsAt.After(start):
			side = SideBefore
			gap = start.Sub(n.EndsAt)
		case !n.StartsAt.Before(end):
			side = SideAfter
			gap = n.StartsAt.Sub(end)
		default:
			continue
		}

		effective := maxDuration(required, e.policy.BufferFor(n.Type))
		if gap >= effective {
			continue
		}

		violations = append(violations, BufferViolation{
			Side: side,
			Neighbor: Conflict{
				Resource:      ResourceProvider,
				AppointmentID: n.ID,
				DisplayName:   n.DisplayName,
				StartsAt:      n.StartsAt,
				EndsAt:        n.EndsAt,
				Type:          n.Type,
			},
			RequiredMins: int(effective.Minutes()),
			ActualMins:   int(gap.Minutes()),
		})
	}

	if len(violations) > 0 && e.metrics != nil {
		e.metrics.BufferViolationsTotal.Add(float64(len(violations)))
	}

	return BufferResult{
		HasViolations: len(violations) > 0,
		Violations:    violations,
	}, nil
}
