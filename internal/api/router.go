package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"staybnb/internal/auth"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Property *PropertyHandler
	Booking  *BookingHandler
	Payment  *PaymentHandler
	Tokens   auth.TokenParser
	Users    auth.UserLookup
}

// NewRouter mounts the REST API under /api.
func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	required := auth.Required(h.Tokens)
	host := func(fn http.HandlerFunc) http.Handler {
		return required(auth.RequireHost(h.Users)(fn))
	}
	optional := auth.Optional(h.Tokens)

	// Auth
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.Handle("/auth/me", required(http.HandlerFunc(h.Auth.Me))).Methods(http.MethodGet)
	api.Handle("/auth/profile", required(http.HandlerFunc(h.Auth.UpdateProfile))).Methods(http.MethodPut)
	api.Handle("/auth/change-password", required(http.HandlerFunc(h.Auth.ChangePassword))).Methods(http.MethodPut)
	api.Handle("/auth/logout", required(http.HandlerFunc(h.Auth.Logout))).Methods(http.MethodPost)
	api.Handle("/auth/become-host", required(http.HandlerFunc(h.Auth.BecomeHost))).Methods(http.MethodPost)

	// Properties
	api.Handle("/properties", optional(http.HandlerFunc(h.Property.Search))).Methods(http.MethodGet)
	api.Handle("/properties", host(h.Property.Create)).Methods(http.MethodPost)
	api.Handle("/properties/my-properties", host(h.Property.MyProperties)).Methods(http.MethodGet)
	api.Handle("/properties/{id:[0-9]+}", optional(http.HandlerFunc(h.Property.Get))).Methods(http.MethodGet)
	api.Handle("/properties/{id:[0-9]+}", required(http.HandlerFunc(h.Property.Update))).Methods(http.MethodPut)
	api.Handle("/properties/{id:[0-9]+}", required(http.HandlerFunc(h.Property.Delete))).Methods(http.MethodDelete)
	api.Handle("/properties/{id:[0-9]+}/favorite", required(http.HandlerFunc(h.Property.AddFavorite))).Methods(http.MethodPost)
	api.Handle("/properties/{id:[0-9]+}/favorite", required(http.HandlerFunc(h.Property.RemoveFavorite))).Methods(http.MethodDelete)

	// Payments
	api.HandleFunc("/payments/calculate", h.Payment.Calculate).Methods(http.MethodPost)
	api.Handle("/payments/create-intent", required(http.HandlerFunc(h.Payment.CreateIntent))).Methods(http.MethodPost)
	api.Handle("/payments/confirm", required(http.HandlerFunc(h.Payment.Confirm))).Methods(http.MethodPost)
	api.Handle("/payments/refund", required(http.HandlerFunc(h.Payment.Refund))).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", h.Payment.Webhook).Methods(http.MethodPost)

	// Bookings
	api.Handle("/bookings/host", host(h.Booking.HostBookings)).Methods(http.MethodGet)
	api.Handle("/bookings/trips", required(http.HandlerFunc(h.Booking.Trips))).Methods(http.MethodGet)
	api.Handle("/bookings/{id:[0-9]+}", required(http.HandlerFunc(h.Booking.Get))).Methods(http.MethodGet)
	api.Handle("/bookings/{id:[0-9]+}/accept", required(http.HandlerFunc(h.Booking.Accept))).Methods(http.MethodPut)
	api.Handle("/bookings/{id:[0-9]+}/decline", required(http.HandlerFunc(h.Booking.Decline))).Methods(http.MethodPut)
	api.Handle("/bookings/{id:[0-9]+}/cancel", required(http.HandlerFunc(h.Booking.Cancel))).Methods(http.MethodPut)

	return r
}
