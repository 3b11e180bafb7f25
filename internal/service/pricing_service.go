package service

import (
	"context"
	"time"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/repository"
	"staybnb/internal/utils"
)

const (
	weeklyNights  = 7
	monthlyNights = 28
)

// Rates are the platform-wide charges applied on top of the host's price.
type Rates struct {
	ServiceFee float64
	Tax        float64
	Currency   string
}

type PricingService struct {
	properties repository.PropertyRepository
	rates      Rates
	now        func() time.Time
}

func NewPricingService(properties repository.PropertyRepository, rates Rates) *PricingService {
	return &PricingService{properties: properties, rates: rates, now: time.Now}
}

// Calculate prices a stay at a bookable property.
func (s *PricingService) Calculate(ctx context.Context, req entities.PriceRequest) (*entities.PriceBreakdown, error) {
	p, err := s.bookableProperty(ctx, req)
	if err != nil {
		return nil, err
	}
	b := Quote(*p, req.CheckIn, req.CheckOut, s.rates)
	return &b, nil
}

// bookableProperty checks the request against the property's rules and returns it.
func (s *PricingService) bookableProperty(ctx context.Context, req entities.PriceRequest) (*db.Property, error) {
	fields := apperrors.FieldErrors{}
	if req.CheckIn.IsZero() {
		fields["checkIn"] = "is required"
	}
	if req.CheckOut.IsZero() {
		fields["checkOut"] = "is required"
	}
	if !req.CheckIn.IsZero() && !req.CheckOut.IsZero() && !req.CheckOut.After(req.CheckIn) {
		fields["checkOut"] = "must be after check-in"
	}
	if !req.CheckIn.IsZero() && req.CheckIn.Before(utils.StartOfDay(s.now().In(req.CheckIn.Location()))) {
		fields["checkIn"] = "cannot be in the past"
	}
	if req.Guests < 1 {
		fields["guests"] = "must be at least 1"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	p, err := s.properties.GetByID(ctx, req.PropertyID, 0)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status != db.PropertyStatusActive {
		return nil, apperrors.ErrNotFound("property not found")
	}
	if req.Guests > p.MaxGuests {
		return nil, apperrors.NewValidationError(apperrors.FieldErrors{"guests": "exceeds the property's capacity"})
	}
	return p, nil
}

// Quote computes the price breakdown. The monthly discount wins over the weekly one
// when both apply. Service fee and tax are charged on the discounted stay plus
// cleaning.
func Quote(p db.Property, checkIn, checkOut time.Time, rates Rates) entities.PriceBreakdown {
	nights := utils.Nights(checkIn, checkOut)
	subtotal := utils.RoundCents(float64(nights) * p.PricePerNight)

	var pct float64
	switch {
	case nights >= monthlyNights && p.MonthlyDiscount > 0:
		pct = p.MonthlyDiscount
	case nights >= weeklyNights && p.WeeklyDiscount > 0:
		pct = p.WeeklyDiscount
	}
	discount := utils.RoundCents(subtotal * pct / 100)

	base := subtotal - discount + p.CleaningFee
	serviceFee := utils.RoundCents(base * rates.ServiceFee)
	tax := utils.RoundCents(base * rates.Tax)

	return entities.PriceBreakdown{
		Nights:      nights,
		NightlyRate: p.PricePerNight,
		Subtotal:    subtotal,
		Discount:    discount,
		CleaningFee: p.CleaningFee,
		ServiceFee:  serviceFee,
		Tax:         tax,
		Total:       utils.RoundCents(base + serviceFee + tax),
		Currency:    rates.Currency,
	}
}
