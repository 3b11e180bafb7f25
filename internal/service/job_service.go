package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// BookingJobStore is what the scheduled jobs need from storage.
type BookingJobStore interface {
	GetConfirmedBookingIDsPastCheckOut(now time.Time) ([]int, error)
	GetUnpaidPendingBookingIDs(before time.Time) ([]int, error)
	CompleteBookings(ids []int) ([]int, error)
	ExpireBookings(ids []int) ([]int, error)
}

type JobService struct {
	Repo           BookingJobStore
	PendingTimeout time.Duration
	now            func() time.Time
}

func NewJobService(repo BookingJobStore, pendingTimeout time.Duration) *JobService {
	return &JobService{Repo: repo, PendingTimeout: pendingTimeout, now: time.Now}
}

// CompleteFinishedBookings marks confirmed bookings whose check-out has passed as completed.
func (s *JobService) CompleteFinishedBookings() error {
	ids, err := s.Repo.GetConfirmedBookingIDsPastCheckOut(s.now())
	if err != nil {
		return fmt.Errorf("cron job: failed to get finished bookings: %w", err)
	}
	if len(ids) == 0 {
		log.Debug("cron job: no finished bookings")
		return nil
	}
	done, err := s.Repo.CompleteBookings(ids)
	if err != nil {
		return fmt.Errorf("cron job: failed to complete bookings: %w", err)
	}
	log.WithField("ids", done).Info("cron job: bookings completed")
	return nil
}

// ExpireUnpaidBookings releases the dates held by pending bookings that were never paid.
func (s *JobService) ExpireUnpaidBookings() error {
	ids, err := s.Repo.GetUnpaidPendingBookingIDs(s.now().Add(-s.PendingTimeout))
	if err != nil {
		return fmt.Errorf("cron job: failed to get unpaid bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	expired, err := s.Repo.ExpireBookings(ids)
	if err != nil {
		return fmt.Errorf("cron job: failed to expire bookings: %w", err)
	}
	log.WithField("ids", expired).Info("cron job: unpaid bookings expired")
	return nil
}

// Schedule registers both jobs on a new cron and returns it unstarted.
func (s *JobService) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	run := func(name string, job func() error) func() {
		return func() {
			if err := job(); err != nil {
				log.WithError(err).WithField("job", name).Error("scheduled job failed")
			}
		}
	}
	if _, err := c.AddFunc(spec, run("complete-bookings", s.CompleteFinishedBookings)); err != nil {
		return nil, fmt.Errorf("scheduling booking completion: %w", err)
	}
	if _, err := c.AddFunc(spec, run("expire-unpaid", s.ExpireUnpaidBookings)); err != nil {
		return nil, fmt.Errorf("scheduling unpaid expiry: %w", err)
	}
	return c, nil
}
