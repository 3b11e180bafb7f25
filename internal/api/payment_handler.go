package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"staybnb/internal/auth"
	"staybnb/internal/entities"
	"staybnb/internal/service"
)

type PaymentService interface {
	Calculate(ctx context.Context, req entities.PriceRequest) (*entities.PriceBreakdown, error)
	CreateIntent(ctx context.Context, guestID int, req entities.CreateIntentRequest) (*entities.CreateIntentResponse, error)
	Confirm(ctx context.Context, guestID int, req entities.ConfirmPaymentRequest) (*entities.ConfirmPaymentResponse, error)
	Refund(ctx context.Context, userID int, req entities.RefundRequest) (*entities.BookingDetails, error)
	HandleEvent(ctx context.Context, eventType, intentID string) error
}

type PaymentHandler struct {
	Service       PaymentService
	WebhookSecret string
}

func NewPaymentHandler(svc PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{Service: svc, WebhookSecret: webhookSecret}
}

func (h *PaymentHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req entities.PriceRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Service.Calculate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateIntentRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.Service.CreateIntent(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req entities.ConfirmPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.Service.Confirm(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req entities.RefundRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Service.Refund(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Webhook verifies the Stripe signature and applies payment intent and refund events.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	const maxWebhookBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Warn("reading webhook body")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.WithError(err).Warn("webhook signature verification failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var intentID string
	switch string(event.Type) {
	case service.EventIntentSucceeded, service.EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.WithError(err).Warn("parsing payment_intent")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		intentID = pi.ID
	case service.EventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			log.WithError(err).Warn("parsing charge")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent != nil {
			intentID = charge.PaymentIntent.ID
		}
	default:
		log.WithField("event", event.Type).Debug("unhandled webhook event")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.Service.HandleEvent(r.Context(), string(event.Type), intentID); err != nil {
		log.WithError(err).WithField("event", event.Type).Error("applying webhook event")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
