package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"staybnb/internal/entities"
)

type PaymentRepository interface {
	SetPaymentIntent(ctx context.Context, bookingID int, paymentIntentID string) error
	UpdatePayment(ctx context.Context, bookingID int, status, paymentStatus string) error
	GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*entities.BookingDetails, error)
}

type PaymentRepositoryImpl struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{DB: db}
}

func (r *PaymentRepositoryImpl) SetPaymentIntent(ctx context.Context, bookingID int, paymentIntentID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET payment_intent_id = $2, updated_at = NOW() WHERE id = $1`, bookingID, paymentIntentID)
	if err != nil {
		return fmt.Errorf("error saving payment intent for booking %d: %w", bookingID, err)
	}
	return nil
}

// UpdatePayment sets the booking and payment status together.
func (r *PaymentRepositoryImpl) UpdatePayment(ctx context.Context, bookingID int, status, paymentStatus string) error {
	query := `
		UPDATE bookings
		SET
			status = $2,
			payment_status = $3,
			updated_at = NOW()
		WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, bookingID, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("error updating payment of booking %d: %w", bookingID, err)
	}
	return nil
}

// GetBookingByPaymentIntent returns nil, nil when no booking carries the intent.
func (r *PaymentRepositoryImpl) GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*entities.BookingDetails, error) {
	d, err := scanBookingDetails(r.DB.QueryRowContext(ctx, bookingDetailsSelect+" WHERE b.payment_intent_id = $1", paymentIntentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking by payment intent: %w", err)
	}
	return d, nil
}
