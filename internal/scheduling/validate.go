package scheduling

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Validate is the single entry point booking and rescheduling flows call
// before persisting. It runs the three resource conflict checks (hard) and
// the buffer check (soft) concurrently, each being an independent pure read,
// and, when the requested time is taken, attaches the next free slot as a
// suggestion. excludeID must be set to the appointment's own id when
// revalidating an edit, or the appointment would conflict with itself.
func (e *Engine) Validate(ctx context.Context, c Candidate, excludeID *uuid.UUID) (*ValidationResult, error) {
	if c.ProviderID == uuid.Nil {
		return nil, ErrMissingProvider
	}
	if err := validateInterval(c.StartsAt, c.EndsAt); err != nil {
		return nil, err
	}

	var (
		provider  ConflictResult
		room      ConflictResult
		equipment ConflictResult
		buffer    BufferResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		provider, err = e.CheckProviderConflicts(gctx, c.ProviderID, c.StartsAt, c.EndsAt, excludeID)
		return err
	})
	g.Go(func() error {
		var err error
		room, err = e.CheckRoomConflicts(gctx, c.RoomID, c.StartsAt, c.EndsAt, excludeID)
		return err
	})
	g.Go(func() error {
		var err error
		equipment, err = e.CheckEquipmentConflicts(gctx, c.EquipmentIDs, c.StartsAt, c.EndsAt, excludeID)
		return err
	})
	g.Go(func() error {
		var err error
		buffer, err = e.CheckBufferViolations(gctx, c.ProviderID, c.StartsAt, c.EndsAt, c.Type, excludeID)
		return err
	})
	if err := g.Wait(); err != nil {
		// sub-checks only fail on malformed input, which is validated above
		return nil, err
	}

	result := &ValidationResult{Valid: true}
	for _, cr := range []ConflictResult{provider, room, equipment} {
		if cr.HasConflict {
			result.Valid = false
			result.Errors = append(result.Errors, cr.Conflicts...)
		}
		if cr.Degraded {
			result.Degraded = true
		}
	}

	result.Warnings = buffer.Violations
	if buffer.Degraded {
		result.Degraded = true
	}

	if !result.Valid {
		suggestion, err := e.FindNextAvailableSlot(ctx, c.ProviderID, c.StartsAt, c.EndsAt.Sub(c.StartsAt), c.Type)
		if err == nil {
			result.Suggestion = suggestion.Slot
			if suggestion.Degraded {
				result.Degraded = true
			}
		}
	}

	if result.Degraded {
		e.log.Warn("validation verdict is degraded; treat a clean result as inconclusive",
			zap.String("provider_id", c.ProviderID.String()),
			zap.Time("starts_at", c.StartsAt),
		)
	}

	if e.metrics != nil {
		e.metrics.ValidationsTotal.WithLabelValues(validationOutcome(result)).Inc()
	}

	return result, nil
}

func validationOutcome(r *ValidationResult) string {
	switch {
	case r.Degraded:
		return "degraded"
	case !r.Valid:
		return "conflict"
	case len(r.Warnings) > 0:
		return "valid_with_warnings"
	default:
		return "valid"
	}
}
