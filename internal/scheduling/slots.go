package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

// FindNextAvailableSlot scans forward from after, day by day within business
// hours, and returns the first interval of the requested duration that clears
// every existing appointment of the provider with the max-rule buffer. The
// search is greedy first-fit, bounded by the configured horizon; an exhausted
// horizon yields a nil slot, which is a legitimate outcome and not an error.
func (e *Engine) FindNextAvailableSlot(ctx context.Context, providerID uuid.UUID, after time.Time, duration time.Duration, typ appointment.Type) (SlotResult, error) {
	if providerID == uuid.Nil {
		return SlotResult{}, ErrMissingProvider
	}
	if after.IsZero() {
		return SlotResult{}, ErrMissingStartTime
	}
	if duration <= 0 {
		return SlotResult{}, ErrInvalidDuration
	}

	started := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.SlotSearchDuration.Observe(time.Since(started).Seconds())
		}
	}()

	requestedBuffer := e.policy.BufferFor(typ)
	start := after.In(e.hours.location())

	for day := 0; day < e.horizonDays; day++ {
		dayRef := start.AddDate(0, 0, day)
		open := e.hours.OpenAt(dayRef)
		closing := e.hours.CloseAt(dayRef)

		cursor := open
		if day == 0 {
			cursor = start
			if cursor.Before(open) {
				cursor = open
			}
			if !cursor.Before(closing) {
				// requested after closing; roll to the next day's opening
				continue
			}
		}

		bookings, err := e.store.ProviderBookings(ctx, providerID, open, closing, nil)
		if err != nil {
			e.degrade("next_slot", err)
			return SlotResult{Degraded: true}, nil
		}

		for _, g := range e.freeGaps(bookings, cursor, closing, requestedBuffer) {
			if g.end.Sub(g.start) >= duration {
				return SlotResult{Slot: &Slot{StartsAt: g.start, EndsAt: g.start.Add(duration)}}, nil
			}
		}
	}

	return SlotResult{}, nil
}

// GetAvailableSlots enumerates every open interval of the requested duration
// within one calendar day's business hours, in chronological order. Free gaps
// are tiled back-to-back, so an empty day yields a dense sequence starting at
// opening time.
func (e *Engine) GetAvailableSlots(ctx context.Context, providerID uuid.UUID, date time.Time, duration time.Duration, typ appointment.Type) (SlotsResult, error) {
	if providerID == uuid.Nil {
		return SlotsResult{}, ErrMissingProvider
	}
	if date.IsZero() {
		return SlotsResult{}, ErrMissingStartTime
	}
	if duration <= 0 {
		return SlotsResult{}, ErrInvalidDuration
	}

	open := e.hours.OpenAt(date)
	closing := e.hours.CloseAt(date)
	requestedBuffer := e.policy.BufferFor(typ)

	bookings, err := e.store.ProviderBookings(ctx, providerID, open, closing, nil)
	if err != nil {
		e.degrade("day_slots", err)
		return SlotsResult{Degraded: true}, nil
	}

	slots := []Slot{}
	for _, g := range e.freeGaps(bookings, open, closing, requestedBuffer) {
		for t := g.start; !t.Add(duration).After(g.end); t = t.Add(duration) {
			slots = append(slots, Slot{StartsAt: t, EndsAt: t.Add(duration)})
		}
	}

	return SlotsResult{Slots: slots}, nil
}

type freeGap struct {
	start time.Time
	end   time.Time
}

// freeGaps carves the bookings and their buffer clearance out of
// [from, until) and returns the remaining maximal windows in order. The
// clearance around each booking is the max of the requested buffer and the
// booking's own type-buffer.
func (e *Engine) freeGaps(bookings []Booking, from, until time.Time, requestedBuffer time.Duration) []freeGap {
	sorted := make([]Booking, len(bookings))
	copy(sorted, bookings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})

	var gaps []freeGap
	cursor := from
	for _, b := range sorted {
		if !cursor.Before(until) {
			return gaps
		}

		buffer := maxDuration(requestedBuffer, e.policy.BufferFor(b.Type))

		gapEnd := b.StartsAt.Add(-buffer)
		if gapEnd.After(until) {
			gapEnd = until
		}
		if gapEnd.After(cursor) {
			gaps = append(gaps, freeGap{start: cursor, end: gapEnd})
		}

		if next := b.EndsAt.Add(buffer); next.After(cursor) {
			cursor = next
		}
	}

	if cursor.Before(until) {
		gaps = append(gaps, freeGap{start: cursor, end: until})
	}

	return gaps
}
