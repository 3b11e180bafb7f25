package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/repository"
	"staybnb/internal/utils"
)

// Stripe payment intent statuses and webhook events the flow reacts to.
const (
	intentSucceeded = "succeeded"

	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded  = "charge.refunded"
)

type PaymentService struct {
	pricing  *PricingService
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	booking  *BookingService
	gateway  PaymentGateway
}

func NewPaymentService(
	pricing *PricingService,
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	booking *BookingService,
	gateway PaymentGateway,
) *PaymentService {
	return &PaymentService{
		pricing:  pricing,
		bookings: bookings,
		payments: payments,
		booking:  booking,
		gateway:  gateway,
	}
}

func (s *PaymentService) Calculate(ctx context.Context, req entities.PriceRequest) (*entities.PriceBreakdown, error) {
	return s.pricing.Calculate(ctx, req)
}

// CreateIntent holds the dates with a pending, unpaid booking and opens a payment
// intent for its total.
func (s *PaymentService) CreateIntent(ctx context.Context, guestID int, req entities.CreateIntentRequest) (*entities.CreateIntentResponse, error) {
	p, err := s.pricing.bookableProperty(ctx, req.PriceRequest)
	if err != nil {
		return nil, err
	}
	if p.HostID == guestID {
		return nil, apperrors.ErrForbidden("hosts cannot book their own property")
	}
	overlap, err := s.bookings.HasOverlap(ctx, p.ID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.ErrConflict("the property is not available for these dates")
	}

	quote := Quote(*p, req.CheckIn, req.CheckOut, s.pricing.rates)
	b := &db.Booking{
		Code:            newBookingCode(),
		PropertyID:      p.ID,
		GuestID:         guestID,
		CheckIn:         utils.StartOfDay(req.CheckIn),
		CheckOut:        utils.StartOfDay(req.CheckOut),
		Guests:          req.Guests,
		Nights:          quote.Nights,
		NightlyRate:     quote.NightlyRate,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		CleaningFee:     quote.CleaningFee,
		ServiceFee:      quote.ServiceFee,
		Tax:             quote.Tax,
		Total:           quote.Total,
		Status:          db.BookingStatusPending,
		PaymentStatus:   db.PaymentStatusUnpaid,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"booking_id": b.ID, "booking_code": b.Code})
	intentID, secret, err := s.gateway.CreateIntent(ctx, utils.ToMinorUnits(quote.Total), quote.Currency,
		fmt.Sprintf("Staybnb booking %s", b.Code),
		map[string]string{"booking_id": strconv.Itoa(b.ID), "booking_code": b.Code})
	if err != nil {
		logger.WithError(err).Error("payment intent creation failed")
		s.release(ctx, logger, b.ID)
		return nil, apperrors.ErrBadGateway("the payment could not be started, try again later")
	}
	if err := s.payments.SetPaymentIntent(ctx, b.ID, intentID); err != nil {
		// the client never gets the secret, so the intent cannot be paid
		logger.WithError(err).WithField("payment_intent", intentID).Error("could not store payment intent")
		s.release(ctx, logger, b.ID)
		return nil, err
	}
	logger.Info("booking created, awaiting payment")

	return &entities.CreateIntentResponse{
		BookingID:       b.ID,
		BookingCode:     b.Code,
		PaymentIntentID: intentID,
		ClientSecret:    secret,
		Pricing:         quote,
	}, nil
}

// Confirm confirms the guest's payment intent. A succeeded payment confirms
// instant-book stays right away; other stays wait for the host.
func (s *PaymentService) Confirm(ctx context.Context, guestID int, req entities.ConfirmPaymentRequest) (*entities.ConfirmPaymentResponse, error) {
	b, err := s.booking.find(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guestID {
		return nil, apperrors.ErrForbidden("not your booking")
	}
	if req.PaymentIntentID != "" && req.PaymentIntentID != b.PaymentIntentID {
		return nil, apperrors.ErrBadRequest("payment intent does not belong to this booking")
	}
	if b.PaymentStatus == db.PaymentStatusPaid {
		return confirmResponse(b), nil
	}
	if b.Status != db.BookingStatusPending {
		return nil, apperrors.ErrConflict(fmt.Sprintf("cannot pay for a %s booking", b.Status))
	}

	status, err := s.gateway.ConfirmIntent(ctx, b.PaymentIntentID, req.PaymentMethodID)
	if err != nil {
		log.WithError(err).WithField("booking_id", b.ID).Warn("payment confirmation failed")
		return nil, apperrors.ErrBadGateway("the payment was not accepted")
	}
	if status == intentSucceeded {
		if err := s.markPaid(ctx, b); err != nil {
			return nil, err
		}
	}
	return confirmResponse(b), nil
}

// Refund cancels the booking, which refunds it when it was paid.
func (s *PaymentService) Refund(ctx context.Context, userID int, req entities.RefundRequest) (*entities.BookingDetails, error) {
	return s.booking.Cancel(ctx, userID, req.BookingID)
}

// HandleEvent applies a verified gateway webhook event.
func (s *PaymentService) HandleEvent(ctx context.Context, eventType, intentID string) error {
	logger := log.WithFields(log.Fields{"event": eventType, "payment_intent": intentID})
	if intentID == "" {
		logger.Warn("webhook event without payment intent")
		return nil
	}
	b, err := s.payments.GetBookingByPaymentIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if b == nil {
		logger.Warn("no booking for payment intent")
		return nil
	}

	switch eventType {
	case EventIntentSucceeded:
		if b.PaymentStatus != db.PaymentStatusUnpaid {
			break
		}
		switch b.Status {
		case db.BookingStatusPending:
			return s.markPaid(ctx, b)
		case db.BookingStatusCancelled:
			return s.refundLatePayment(ctx, b)
		}
	case EventChargeRefunded:
		if b.PaymentStatus != db.PaymentStatusRefunded {
			return s.payments.UpdatePayment(ctx, b.ID, db.BookingStatusCancelled, db.PaymentStatusRefunded)
		}
	case EventIntentFailed:
		logger.WithField("booking_id", b.ID).Info("payment failed, booking stays unpaid")
	default:
		logger.Debug("unhandled webhook event")
	}
	return nil
}

// release cancels a hold that never got a usable payment intent.
func (s *PaymentService) release(ctx context.Context, logger *log.Entry, bookingID int) {
	if err := s.bookings.UpdateStatus(ctx, bookingID, db.BookingStatusCancelled); err != nil {
		logger.WithError(err).Error("could not release the held dates")
	}
}

// refundLatePayment returns a payment that arrived after its hold had expired.
// The dates may already belong to someone else, so the booking stays cancelled.
func (s *PaymentService) refundLatePayment(ctx context.Context, b *entities.BookingDetails) error {
	logger := log.WithFields(log.Fields{"booking_id": b.ID, "payment_intent": b.PaymentIntentID})
	if err := s.gateway.Refund(ctx, b.PaymentIntentID); err != nil {
		logger.WithError(err).Error("refund of late payment failed")
		return fmt.Errorf("refunding late payment for booking %d: %w", b.ID, err)
	}
	if err := s.payments.UpdatePayment(ctx, b.ID, db.BookingStatusCancelled, db.PaymentStatusRefunded); err != nil {
		return err
	}
	logger.Warn("payment arrived for a cancelled booking and was refunded")
	return nil
}

func (s *PaymentService) markPaid(ctx context.Context, b *entities.BookingDetails) error {
	status := db.BookingStatusPending
	if b.Property.InstantBook {
		status = db.BookingStatusConfirmed
	}
	if err := s.payments.UpdatePayment(ctx, b.ID, status, db.PaymentStatusPaid); err != nil {
		return err
	}
	b.Status = status
	b.PaymentStatus = db.PaymentStatusPaid
	log.WithFields(log.Fields{"booking_id": b.ID, "status": status}).Info("booking paid")
	s.booking.notify(ctx, *b)
	return nil
}

func confirmResponse(b *entities.BookingDetails) *entities.ConfirmPaymentResponse {
	return &entities.ConfirmPaymentResponse{BookingID: b.ID, Status: b.Status, PaymentStatus: b.PaymentStatus}
}

func newBookingCode() string {
	return "SB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
