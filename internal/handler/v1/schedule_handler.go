package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/scheduling"
	"github.com/lumora-health/visionflow/internal/service"
)

type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// NextSlot handles GET /schedule/next-slot?provider_id=...&after=...&type=...&duration_mins=...
func (h *ScheduleHandler) NextSlot(c *gin.Context) {
	providerID, ok := parseQueryUUID(c, "provider_id")
	if !ok {
		return
	}

	var after time.Time
	if raw := c.Query("after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid after: must be RFC3339")
			return
		}
		after = t
	}

	typ := appointment.Type(c.Query("type"))
	duration := time.Duration(parseQueryInt(c, "duration_mins", 0)) * time.Minute

	result, err := h.svc.NextAvailableSlot(c.Request.Context(), providerID, after, typ, duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}

// DaySlots handles GET /schedule/day-slots?provider_id=...&date=2026-09-01&type=...
func (h *ScheduleHandler) DaySlots(c *gin.Context) {
	providerID, ok := parseQueryUUID(c, "provider_id")
	if !ok {
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
		return
	}

	typ := appointment.Type(c.Query("type"))
	duration := time.Duration(parseQueryInt(c, "duration_mins", 0)) * time.Minute

	result, err := h.svc.DaySlots(c.Request.Context(), providerID, date, typ, duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}

type validateRequest struct {
	ProviderID   uuid.UUID   `json:"provider_id" binding:"required"`
	RoomID       *uuid.UUID  `json:"room_id"`
	EquipmentIDs []uuid.UUID `json:"equipment_ids"`
	StartsAt     time.Time   `json:"starts_at" binding:"required"`
	EndsAt       time.Time   `json:"ends_at"`
	Type         string      `json:"type" binding:"required"`
	ExcludeID    *uuid.UUID  `json:"exclude_id"`
}

// Validate handles POST /schedule/validate: the full orchestrated check
// without persisting anything, for pre-flighting a booking form.
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req validateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Validate(c.Request.Context(), scheduling.Candidate{
		ProviderID:   req.ProviderID,
		RoomID:       req.RoomID,
		EquipmentIDs: req.EquipmentIDs,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Type:         appointment.Type(req.Type),
	}, req.ExcludeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}
