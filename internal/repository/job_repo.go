package repository

import (
	"fmt"
	"time"

	"database/sql"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetConfirmedBookingIDsPastCheckOut finds confirmed bookings whose stay has ended.
func (r *JobRepository) GetConfirmedBookingIDsPastCheckOut(now time.Time) ([]int, error) {
	return r.ids(`SELECT id FROM bookings WHERE status = 'confirmed' AND check_out <= $1`, now)
}

// GetUnpaidPendingBookingIDs finds pending bookings that were never paid and were
// created before the given time.
func (r *JobRepository) GetUnpaidPendingBookingIDs(before time.Time) ([]int, error) {
	return r.ids(`SELECT id FROM bookings WHERE status = 'pending' AND payment_status = 'unpaid' AND created_at < $1`, before)
}

func (r *JobRepository) ids(query string, args ...interface{}) ([]int, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying booking ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// CompleteBookings marks the listed bookings completed. Only rows still confirmed
// are touched, and the ids actually changed are returned.
func (r *JobRepository) CompleteBookings(ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = ANY($2) AND status = $3
		RETURNING id`
	return r.updateStatuses(db.BookingStatusCompleted, query,
		db.BookingStatusCompleted, pq.Array(ids), db.BookingStatusConfirmed)
}

// ExpireBookings cancels the listed bookings if they are still pending and unpaid.
// A hold paid after it was selected keeps its dates.
func (r *JobRepository) ExpireBookings(ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = ANY($2) AND status = $3 AND payment_status = $4
		RETURNING id`
	return r.updateStatuses(db.BookingStatusCancelled, query,
		db.BookingStatusCancelled, pq.Array(ids), db.BookingStatusPending, db.PaymentStatusUnpaid)
}

func (r *JobRepository) updateStatuses(newStatus, query string, args ...interface{}) ([]int, error) {
	updated, err := r.ids(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating booking statuses: %w", err)
	}
	log.WithFields(log.Fields{"count": len(updated), "status": newStatus}).Info("updated booking statuses")
	return updated, nil
}
