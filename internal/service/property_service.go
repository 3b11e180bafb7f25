package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/listing"
	"staybnb/internal/repository"
	"staybnb/internal/search"
	"staybnb/internal/utils"
)

// farFuture bounds the "any upcoming booking" overlap check.
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

type PropertyService struct {
	properties repository.PropertyRepository
	bookings   repository.BookingRepository
	cache      repository.SearchCache
	now        func() time.Time
}

func NewPropertyService(properties repository.PropertyRepository, bookings repository.BookingRepository, cache repository.SearchCache) *PropertyService {
	return &PropertyService{properties: properties, bookings: bookings, cache: cache, now: time.Now}
}

// Search runs the location, date and guest part of the criteria in SQL and the rest
// through search.Apply. Undated results are cached per query and viewer. Dated
// results depend on bookings, which change on every hold, payment and expiry, so
// they always come from the database.
func (s *PropertyService) Search(ctx context.Context, c search.Criteria, viewerID int) ([]db.Property, error) {
	dated := c.HasDates() && c.CheckOut.After(c.CheckIn)
	key := c.Query().Encode()
	if !dated {
		if cached, ok := s.cache.Get(key, viewerID); ok {
			return cached, nil
		}
	}

	q := repository.PropertyQuery{Location: c.Location, Guests: c.Guests, ViewerID: viewerID}
	if dated {
		q.CheckIn, q.CheckOut = c.CheckIn, c.CheckOut
	}
	rows, err := s.properties.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	result := search.Apply(rows, c)
	if !dated {
		s.cache.Set(key, viewerID, result)
	}
	return result, nil
}

// Get returns a property. Listings that are not active are visible only to their host.
func (s *PropertyService) Get(ctx context.Context, id, viewerID int) (*db.Property, error) {
	p, err := s.properties.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if p == nil || (p.Status != db.PropertyStatusActive && p.HostID != viewerID) {
		return nil, apperrors.ErrNotFound("property not found")
	}
	return p, nil
}

func (s *PropertyService) ListByHost(ctx context.Context, hostID int) ([]db.Property, error) {
	return s.properties.ListByHost(ctx, hostID)
}

func (s *PropertyService) Create(ctx context.Context, hostID int, in listing.Input) (*db.Property, error) {
	in = in.Trimmed()
	if err := listing.ValidateInput(in); err != nil {
		return nil, err
	}
	status, err := propertyStatus(in.Status, db.PropertyStatusActive)
	if err != nil {
		return nil, err
	}
	p := &db.Property{HostID: hostID, Status: status}
	applyInput(p, in)
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	log.WithFields(log.Fields{"property_id": p.ID, "host_id": hostID}).Info("property created")
	return p, nil
}

func (s *PropertyService) Update(ctx context.Context, userID, id int, in listing.Input) (*db.Property, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	in = in.Trimmed()
	if err := listing.ValidateInput(in); err != nil {
		return nil, err
	}
	status, err := propertyStatus(in.Status, p.Status)
	if err != nil {
		return nil, err
	}
	p.Status = status
	applyInput(p, in)
	if err := s.properties.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return p, nil
}

// Delete removes a listing. Listings with upcoming pending or confirmed bookings
// must be deactivated instead.
func (s *PropertyService) Delete(ctx context.Context, userID, id int) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	upcoming, err := s.bookings.HasOverlap(ctx, id, utils.StartOfDay(s.now()), farFuture)
	if err != nil {
		return err
	}
	if upcoming {
		return apperrors.ErrConflict("property has upcoming bookings; deactivate it instead")
	}
	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate()
	log.WithFields(log.Fields{"property_id": id, "host_id": userID}).Info("property deleted")
	return nil
}

func (s *PropertyService) AddFavorite(ctx context.Context, userID, propertyID int) error {
	if _, err := s.Get(ctx, propertyID, userID); err != nil {
		return err
	}
	if err := s.properties.AddFavorite(ctx, userID, propertyID); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

func (s *PropertyService) RemoveFavorite(ctx context.Context, userID, propertyID int) error {
	if err := s.properties.RemoveFavorite(ctx, userID, propertyID); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

func (s *PropertyService) owned(ctx context.Context, userID, id int) (*db.Property, error) {
	p, err := s.properties.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFound("property not found")
	}
	if p.HostID != userID {
		return nil, apperrors.ErrForbidden("only the host can change this property")
	}
	return p, nil
}

func propertyStatus(requested, fallback string) (string, error) {
	switch requested {
	case "":
		return fallback, nil
	case db.PropertyStatusDraft, db.PropertyStatusActive, db.PropertyStatusInactive:
		return requested, nil
	}
	return "", apperrors.NewValidationError(apperrors.FieldErrors{"status": "must be one of: draft active inactive"})
}

func applyInput(p *db.Property, in listing.Input) {
	p.Title = in.Title
	p.Description = in.Description
	p.PropertyType = in.PropertyType
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.Country = in.Country
	p.ZipCode = in.ZipCode
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	p.MaxGuests = in.MaxGuests
	p.Bedrooms = in.Bedrooms
	p.Beds = in.Beds
	p.Bathrooms = in.Bathrooms
	p.PricePerNight = in.PricePerNight
	p.CleaningFee = in.CleaningFee
	p.SecurityDeposit = in.SecurityDeposit
	p.WeeklyDiscount = in.WeeklyDiscount
	p.MonthlyDiscount = in.MonthlyDiscount
	p.Amenities = in.Amenities
	p.HouseRules = in.HouseRules
	p.Images = in.Images
	p.InstantBook = in.InstantBook
}
