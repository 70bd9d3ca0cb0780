package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/domain/resource"
	"github.com/lumora-health/visionflow/internal/scheduling"
)

// ScheduleService exposes the engine's availability queries to the transport
// layer, with resource existence checks and policy-derived defaults applied.
type ScheduleService struct {
	engine    *scheduling.Engine
	resources resource.Repository
	log       *zap.Logger
}

func NewScheduleService(engine *scheduling.Engine, resources resource.Repository, log *zap.Logger) *ScheduleService {
	return &ScheduleService{engine: engine, resources: resources, log: log}
}

// NextAvailableSlot returns the first open slot for the provider after the
// given time. A zero after defaults to now; a zero duration defaults to the
// policy duration for the type.
func (s *ScheduleService) NextAvailableSlot(ctx context.Context, providerID uuid.UUID, after time.Time, typ appointment.Type, duration time.Duration) (scheduling.SlotResult, error) {
	if _, err := s.resources.GetProviderByID(ctx, providerID); err != nil {
		return scheduling.SlotResult{}, fmt.Errorf("verifying provider: %w", err)
	}

	if after.IsZero() {
		after = time.Now()
	}
	if duration <= 0 {
		duration = s.engine.Policy().DurationFor(typ)
	}

	return s.engine.FindNextAvailableSlot(ctx, providerID, after, duration, typ)
}

// DaySlots enumerates every open slot for the provider on the given day.
func (s *ScheduleService) DaySlots(ctx context.Context, providerID uuid.UUID, date time.Time, typ appointment.Type, duration time.Duration) (scheduling.SlotsResult, error) {
	if _, err := s.resources.GetProviderByID(ctx, providerID); err != nil {
		return scheduling.SlotsResult{}, fmt.Errorf("verifying provider: %w", err)
	}

	if duration <= 0 {
		duration = s.engine.Policy().DurationFor(typ)
	}

	return s.engine.GetAvailableSlots(ctx, providerID, date, duration, typ)
}

// Validate runs the full orchestrated check for a proposed appointment
// without persisting anything. Used by front-ends to pre-flight a booking.
func (s *ScheduleService) Validate(ctx context.Context, c scheduling.Candidate, excludeID *uuid.UUID) (*scheduling.ValidationResult, error) {
	if c.EndsAt.IsZero() && !c.StartsAt.IsZero() {
		c.EndsAt = c.StartsAt.Add(s.engine.Policy().DurationFor(c.Type))
	}
	return s.engine.Validate(ctx, c, excludeID)
}
