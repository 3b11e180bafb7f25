package api

import (
	"context"
	"net/http"

	"staybnb/internal/auth"
	"staybnb/internal/entities"
)

type BookingService interface {
	ListTrips(ctx context.Context, guestID int) (*entities.BookingList, error)
	ListHostBookings(ctx context.Context, hostID int, status string) (*entities.BookingList, error)
	Get(ctx context.Context, userID, id int) (*entities.BookingDetails, error)
	Accept(ctx context.Context, hostID, id int) (*entities.BookingDetails, error)
	Decline(ctx context.Context, hostID, id int) (*entities.BookingDetails, error)
	Cancel(ctx context.Context, userID, id int) (*entities.BookingDetails, error)
}

type BookingHandler struct {
	Service BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) Trips(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListTrips(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HostBookings accepts an optional ?status= filter.
func (h *BookingHandler) HostBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListHostBookings(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.Service.Get)
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.Service.Accept)
}

func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.Service.Decline)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.Service.Cancel)
}

func (h *BookingHandler) byID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, id int) (*entities.BookingDetails, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := fn(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
