package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staybnb/internal/db"
	"staybnb/internal/entities"
)

type BookingRepository interface {
	Create(ctx context.Context, b *db.Booking) error
	GetByID(ctx context.Context, id int) (*entities.BookingDetails, error)
	ListByGuest(ctx context.Context, guestID int) ([]entities.BookingDetails, error)
	ListByHost(ctx context.Context, hostID int, status string) ([]entities.BookingDetails, error)
	HasOverlap(ctx context.Context, propertyID int, checkIn, checkOut time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

type BookingRepositoryImpl struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{DB: db}
}

const bookingColumns = `b.id, b.code, b.property_id, b.guest_id, b.check_in, b.check_out, b.guests, b.nights,
	b.nightly_rate, b.subtotal, b.discount, b.cleaning_fee, b.service_fee, b.tax, b.total, b.status,
	b.payment_status, b.payment_intent_id, b.special_requests, b.created_at, b.updated_at`

func scanBookingDetails(row rowScanner) (*entities.BookingDetails, error) {
	var d entities.BookingDetails
	b := &d.Booking
	p := &d.Property
	err := row.Scan(&b.ID, &b.Code, &b.PropertyID, &b.GuestID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.Nights,
		&b.NightlyRate, &b.Subtotal, &b.Discount, &b.CleaningFee, &b.ServiceFee, &b.Tax, &b.Total, &b.Status,
		&b.PaymentStatus, &b.PaymentIntentID, &b.SpecialRequests, &b.CreatedAt, &b.UpdatedAt,
		&p.ID, &p.HostID, &p.Title, &p.City, &p.Country, &p.PricePerNight, &p.InstantBook)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const bookingDetailsSelect = `
	SELECT ` + bookingColumns + `,
		p.id, p.host_id, p.title, p.city, p.country, p.price_per_night, p.instant_book
	FROM bookings b
	JOIN properties p ON p.id = b.property_id`

func (r *BookingRepositoryImpl) Create(ctx context.Context, b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(code, property_id, guest_id, check_in, check_out, guests, nights, nightly_rate, subtotal, discount,
		 cleaning_fee, service_fee, tax, total, status, payment_status, payment_intent_id, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRowContext(ctx, query,
		b.Code,
		b.PropertyID,
		b.GuestID,
		b.CheckIn,
		b.CheckOut,
		b.Guests,
		b.Nights,
		b.NightlyRate,
		b.Subtotal,
		b.Discount,
		b.CleaningFee,
		b.ServiceFee,
		b.Tax,
		b.Total,
		b.Status,
		b.PaymentStatus,
		b.PaymentIntentID,
		b.SpecialRequests,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns nil, nil when the booking does not exist.
func (r *BookingRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.BookingDetails, error) {
	d, err := scanBookingDetails(r.DB.QueryRowContext(ctx, bookingDetailsSelect+" WHERE b.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking %d: %w", id, err)
	}
	return d, nil
}

func (r *BookingRepositoryImpl) ListByGuest(ctx context.Context, guestID int) ([]entities.BookingDetails, error) {
	return r.list(ctx, bookingDetailsSelect+" WHERE b.guest_id = $1 ORDER BY b.check_in DESC", guestID)
}

// ListByHost lists bookings on the host's properties, optionally by status.
func (r *BookingRepositoryImpl) ListByHost(ctx context.Context, hostID int, status string) ([]entities.BookingDetails, error) {
	if status != "" {
		return r.list(ctx, bookingDetailsSelect+" WHERE p.host_id = $1 AND b.status = $2 ORDER BY b.check_in DESC", hostID, status)
	}
	return r.list(ctx, bookingDetailsSelect+" WHERE p.host_id = $1 ORDER BY b.check_in DESC", hostID)
}

func (r *BookingRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]entities.BookingDetails, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	bookings := []entities.BookingDetails{}
	for rows.Next() {
		d, err := scanBookingDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

// HasOverlap reports whether a pending or confirmed booking on the property
// intersects [checkIn, checkOut).
func (r *BookingRepositoryImpl) HasOverlap(ctx context.Context, propertyID int, checkIn, checkOut time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE property_id = $1
			AND status IN ('pending', 'confirmed')
			AND check_in < $3
			AND check_out > $2
		)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, propertyID, checkIn, checkOut).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking booking overlap: %w", err)
	}
	return exists, nil
}

func (r *BookingRepositoryImpl) UpdateStatus(ctx context.Context, id int, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating booking %d status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %d not found: %w", id, sql.ErrNoRows)
	}
	return nil
}
