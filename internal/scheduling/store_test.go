package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
)

// memStore is an in-memory Store for engine tests. It applies the same
// contract the Postgres store does: blocking statuses only, half-open range
// intersection, optional id exclusion, sorted by start time.
type memStore struct {
	appts []storedAppt
	err   error
}

type storedAppt struct {
	id           uuid.UUID
	providerID   uuid.UUID
	roomID       *uuid.UUID
	equipmentIDs []uuid.UUID
	startsAt     time.Time
	endsAt       time.Time
	typ          appointment.Type
	status       appointment.Status
	name         string
}

func (m *memStore) ProviderBookings(_ context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(start, end, excludeID, func(a storedAppt) bool {
		return a.providerID == providerID
	}), nil
}

func (m *memStore) RoomBookings(_ context.Context, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(start, end, excludeID, func(a storedAppt) bool {
		return a.roomID != nil && *a.roomID == roomID
	}), nil
}

func (m *memStore) EquipmentBookings(_ context.Context, equipmentIDs []uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(start, end, excludeID, func(a storedAppt) bool {
		for _, want := range equipmentIDs {
			for _, have := range a.equipmentIDs {
				if want == have {
					return true
				}
			}
		}
		return false
	}), nil
}

func (m *memStore) filter(start, end time.Time, excludeID *uuid.UUID, match func(storedAppt) bool) []Booking {
	var out []Booking
	for _, a := range m.appts {
		if !a.status.Blocks() {
			continue
		}
		if excludeID != nil && a.id == *excludeID {
			continue
		}
		if !a.startsAt.Before(end) || !a.endsAt.After(start) {
			continue
		}
		if !match(a) {
			continue
		}
		out = append(out, Booking{
			ID:          a.id,
			StartsAt:    a.startsAt,
			EndsAt:      a.endsAt,
			Type:        a.typ,
			DisplayName: a.name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}

// day is the fixed reference day all engine tests schedule on.
var day = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

// at returns a clock time on the reference day.
func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func testHours() BusinessHours {
	return BusinessHours{
		Open:     ClockTime{Hour: 8},
		Close:    ClockTime{Hour: 18},
		Location: time.UTC,
	}
}

func newTestEngine(store Store) *Engine {
	return NewEngine(store, Config{
		Policy:      DefaultPolicyTable(),
		Hours:       testHours(),
		HorizonDays: 7,
	}, nil)
}

func blocking(providerID uuid.UUID, start, end string, typ appointment.Type) storedAppt {
	return storedAppt{
		id:         uuid.New(),
		providerID: providerID,
		startsAt:   at(start),
		endsAt:     at(end),
		typ:        typ,
		status:     appointment.StatusScheduled,
		name:       "Jane Doe",
	}
}
