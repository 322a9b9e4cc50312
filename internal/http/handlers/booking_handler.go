// README: Booking handlers for create, read, list and status transitions.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roadbook/internal/modules/booking"
	"roadbook/internal/types"
)

type Bookings interface {
	Create(ctx context.Context, cmd booking.CreateCommand) (*booking.Booking, error)
	Transition(ctx context.Context, cmd booking.TransitionCommand) (*booking.Booking, error)
	Get(ctx context.Context, id types.ID, actor booking.Actor) (*booking.Booking, error)
	List(ctx context.Context, actor booking.Actor, status booking.Status, limit int) ([]booking.Booking, error)
	Events(ctx context.Context, id types.ID, actor booking.Actor) ([]booking.Event, error)
}

type BookingHandler struct {
	bookings Bookings
}

func NewBookingHandler(svc Bookings) *BookingHandler {
	return &BookingHandler{bookings: svc}
}

type bookingResponse struct {
	*booking.Booking
	DisplayPrice int64 `json:"display_price"`
}

func respond(b *booking.Booking) bookingResponse {
	return bookingResponse{Booking: b, DisplayPrice: b.DisplayPrice()}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var cmd booking.CreateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if a := actor(c); a.Role == booking.RolePassenger {
		cmd.PassengerID = a.ID
	}
	b, err := h.bookings.Create(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, respond(b))
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), types.ID(c.Param("id")), actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, respond(b))
}

func (h *BookingHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.bookings.List(c.Request.Context(), actor(c), booking.Status(c.Query("status")), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, respond(&list[i]))
	}
	writeJSON(c, http.StatusOK, map[string]any{"bookings": out})
}

type transitionReq struct {
	Action booking.Action `json:"action"`
	Reason string         `json:"reason"`
}

func (h *BookingHandler) Transition(c *gin.Context) {
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.bookings.Transition(c.Request.Context(), booking.TransitionCommand{
		BookingID: types.ID(c.Param("id")),
		Action:    req.Action,
		Reason:    req.Reason,
		Actor:     actor(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, respond(b))
}

func (h *BookingHandler) Events(c *gin.Context) {
	events, err := h.bookings.Events(c.Request.Context(), types.ID(c.Param("id")), actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"events": events})
}
