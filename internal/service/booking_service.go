package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/repository"
)

type BookingService struct {
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	gateway  PaymentGateway
	notifier Notifier
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	gateway PaymentGateway,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		payments: payments,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
	}
}

func (s *BookingService) ListTrips(ctx context.Context, guestID int) (*entities.BookingList, error) {
	bookings, err := s.bookings.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	return &entities.BookingList{Total: len(bookings), Bookings: bookings}, nil
}

func (s *BookingService) ListHostBookings(ctx context.Context, hostID int, status string) (*entities.BookingList, error) {
	switch status {
	case "", db.BookingStatusPending, db.BookingStatusConfirmed, db.BookingStatusCompleted, db.BookingStatusCancelled:
	default:
		return nil, apperrors.ErrBadRequest("unknown booking status " + status)
	}
	bookings, err := s.bookings.ListByHost(ctx, hostID, status)
	if err != nil {
		return nil, err
	}
	return &entities.BookingList{Total: len(bookings), Bookings: bookings}, nil
}

// Get returns a booking to its guest or to the host of its property.
func (s *BookingService) Get(ctx context.Context, userID, id int) (*entities.BookingDetails, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.GuestID != userID && b.Property.HostID != userID {
		return nil, apperrors.ErrForbidden("not your booking")
	}
	return b, nil
}

// Accept confirms a paid booking that waits for the host.
func (s *BookingService) Accept(ctx context.Context, hostID, id int) (*entities.BookingDetails, error) {
	b, err := s.hostBooking(ctx, hostID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != db.BookingStatusPending {
		return nil, apperrors.ErrConflict(fmt.Sprintf("cannot accept a %s booking", b.Status))
	}
	if b.PaymentStatus != db.PaymentStatusPaid {
		return nil, apperrors.ErrConflict("the guest has not completed payment")
	}
	if err := s.bookings.UpdateStatus(ctx, id, db.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	b.Status = db.BookingStatusConfirmed
	s.notify(ctx, *b)
	return b, nil
}

// Decline rejects a pending booking, refunding it when already paid.
func (s *BookingService) Decline(ctx context.Context, hostID, id int) (*entities.BookingDetails, error) {
	b, err := s.hostBooking(ctx, hostID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != db.BookingStatusPending {
		return nil, apperrors.ErrConflict(fmt.Sprintf("cannot decline a %s booking", b.Status))
	}
	return s.cancel(ctx, b)
}

// Cancel lets the guest or the host cancel a pending or confirmed booking.
func (s *BookingService) Cancel(ctx context.Context, userID, id int) (*entities.BookingDetails, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != db.BookingStatusPending && b.Status != db.BookingStatusConfirmed {
		return nil, apperrors.ErrConflict(fmt.Sprintf("cannot cancel a %s booking", b.Status))
	}
	return s.cancel(ctx, b)
}

func (s *BookingService) cancel(ctx context.Context, b *entities.BookingDetails) (*entities.BookingDetails, error) {
	paymentStatus := b.PaymentStatus
	if paymentStatus == db.PaymentStatusPaid {
		if err := s.gateway.Refund(ctx, b.PaymentIntentID); err != nil {
			log.WithError(err).WithField("booking_id", b.ID).Error("refund failed")
			return nil, apperrors.ErrBadGateway("the refund could not be processed, try again later")
		}
		paymentStatus = db.PaymentStatusRefunded
	}
	if err := s.payments.UpdatePayment(ctx, b.ID, db.BookingStatusCancelled, paymentStatus); err != nil {
		return nil, err
	}
	b.Status = db.BookingStatusCancelled
	b.PaymentStatus = paymentStatus
	log.WithFields(log.Fields{"booking_id": b.ID, "payment_status": paymentStatus}).Info("booking cancelled")
	s.notify(ctx, *b)
	return b, nil
}

func (s *BookingService) find(ctx context.Context, id int) (*entities.BookingDetails, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperrors.ErrNotFound("booking not found")
	}
	return b, nil
}

func (s *BookingService) hostBooking(ctx context.Context, hostID, id int) (*entities.BookingDetails, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Property.HostID != hostID {
		return nil, apperrors.ErrForbidden("only the host can do this")
	}
	return b, nil
}

func (s *BookingService) notify(ctx context.Context, b entities.BookingDetails) {
	guest, err := s.users.GetByID(ctx, b.GuestID)
	if err != nil || guest == nil {
		log.WithField("booking_id", b.ID).Warn("guest not found, skipping notification")
		return
	}
	s.notifier.BookingStatusChanged(b, *guest)
}
