package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Authentication is terminated upstream at the API gateway, which forwards
// the verified caller identity in these headers.
func callerIdentity(c *gin.Context) (uuid.UUID, string) {
	id, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		id = uuid.Nil
	}
	role := c.GetHeader("X-User-Role")
	if role == "" {
		role = "system"
	}
	return id, role
}

type createAppointmentRequest struct {
	PatientID    uuid.UUID   `json:"patient_id" binding:"required"`
	ProviderID   uuid.UUID   `json:"provider_id" binding:"required"`
	RoomID       *uuid.UUID  `json:"room_id"`
	EquipmentIDs []uuid.UUID `json:"equipment_ids"`
	StartsAt     time.Time   `json:"starts_at" binding:"required"`
	Type         string      `json:"type" binding:"required"`
	Reason       string      `json:"reason"`
	Notes        string      `json:"notes"`
}

type bookingResponse struct {
	Appointment *appointment.Appointment `json:"appointment,omitempty"`
	Validation  any                      `json:"validation,omitempty"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, callerRole := callerIdentity(c)

	result, err := h.svc.Book(c.Request.Context(), &appointment.CreateAppointmentCommand{
		PatientID:    req.PatientID,
		ProviderID:   req.ProviderID,
		RoomID:       req.RoomID,
		EquipmentIDs: req.EquipmentIDs,
		StartsAt:     req.StartsAt,
		Type:         appointment.Type(req.Type),
		Reason:       req.Reason,
		Notes:        req.Notes,
		CreatedBy:    callerID,
	}, callerID, callerRole, c.ClientIP())
	if err != nil {
		// a conflict rejection carries the engine's verdict, incl. the
		// suggested alternative slot
		if errors.Is(err, appointment.ErrAppointmentConflict) && result != nil {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   err.Error(),
				Code:    "SCHEDULING_CONFLICT",
				Details: result.Validation,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	respondCreated(c, bookingResponse{Appointment: result.Appointment, Validation: result.Validation})
}

type rescheduleRequest struct {
	StartsAt     time.Time   `json:"starts_at" binding:"required"`
	RoomID       *uuid.UUID  `json:"room_id"`
	EquipmentIDs []uuid.UUID `json:"equipment_ids"`
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, callerRole := callerIdentity(c)

	result, err := h.svc.Reschedule(c.Request.Context(), id, &appointment.RescheduleAppointmentCommand{
		StartsAt:     req.StartsAt,
		RoomID:       req.RoomID,
		EquipmentIDs: req.EquipmentIDs,
		UpdatedBy:    callerID,
	}, callerID, callerRole, c.ClientIP())
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentConflict) && result != nil {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   err.Error(),
				Code:    "SCHEDULING_CONFLICT",
				Details: result.Validation,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, bookingResponse{Appointment: result.Appointment, Validation: result.Validation})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, callerRole := callerIdentity(c)

	a, err := h.svc.Get(c.Request.Context(), id, callerID, callerRole, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, callerRole := callerIdentity(c)

	a, err := h.svc.Cancel(c.Request.Context(), id, &appointment.CancelAppointmentCommand{
		Reason:      req.Reason,
		CancelledBy: callerID,
	}, callerID, callerRole, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.svc.Confirm)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.svc.Complete)
}

func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.svc.MarkNoShow)
}

func (h *AppointmentHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error)) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, callerRole := callerIdentity(c)

	a, err := fn(c.Request.Context(), id, callerID, callerRole, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListAppointmentsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}

	if raw := c.Query("provider_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid provider_id")
			return
		}
		q.ProviderID = &id
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid patient_id")
			return
		}
		q.PatientID = &id
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		q.Status = &st
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid from: must be RFC3339")
			return
		}
		q.DateFrom = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid to: must be RFC3339")
			return
		}
		q.DateTo = &t
	}

	page, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, page)
}
