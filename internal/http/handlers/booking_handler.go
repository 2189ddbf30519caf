// README: Booking review handlers for get/approve/reject.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"secrethouse/internal/modules/booking"
	"secrethouse/internal/types"
)

type Bookings interface {
	Get(ctx context.Context, id types.ID) (*booking.Record, error)
	Approve(ctx context.Context, id types.ID, actorID string) (*booking.Record, error)
	Reject(ctx context.Context, id types.ID, actorID string) (*booking.Record, error)
}

type BookingHandler struct {
	booking Bookings
}

func NewBookingHandler(svc Bookings) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type reviewReq struct {
	ActorID string `json:"actor_id"`
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	rec, err := h.booking.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bookingResponse(rec))
}

func (h *BookingHandler) Approve(c *gin.Context) {
	h.review(c, h.booking.Approve)
}

func (h *BookingHandler) Reject(c *gin.Context) {
	h.review(c, h.booking.Reject)
}

func (h *BookingHandler) review(c *gin.Context, decide func(context.Context, types.ID, string) (*booking.Record, error)) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req reviewReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if req.ActorID == "" {
		req.ActorID = "api"
	}
	rec, err := decide(c.Request.Context(), types.ID(id), req.ActorID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bookingResponse(rec))
}

func bookingResponse(r *booking.Record) map[string]any {
	return map[string]any{
		"booking_id":      r.ID,
		"conversation_id": r.ConversationID,
		"status":          r.Status,
		"tariff":          r.Context.TariffName(),
		"start_date":      r.Context.StartDate,
		"finish_date":     r.Context.FinishDate,
		"guests":          r.Context.NumberGuests,
		"contact":         r.Context.Contact,
		"total":           r.Total.String(),
		"created_at":      r.CreatedAt,
	}
}
