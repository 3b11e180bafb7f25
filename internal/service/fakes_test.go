package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	"staybnb/internal/repository"
)

type fakeUsers struct {
	users map[int]*db.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int]*db.User{}}
}

func (f *fakeUsers) add(u db.User) *db.User {
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUsers) Create(_ context.Context, user *db.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	user.ID = len(f.users) + 1
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*db.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user *db.User) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int, hash string) error {
	f.users[id].PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetHost(_ context.Context, id int, bio, experience string, languages []string) error {
	u, ok := f.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.IsHost, u.Bio, u.Experience, u.Languages = true, bio, experience, languages
	return nil
}

type fakeProperties struct {
	props     map[int]*db.Property
	favorites map[[2]int]bool
	searches  int
	// booked reports a hold on the dates, as the SQL NOT EXISTS does
	booked func(propertyID int, checkIn, checkOut time.Time) bool
}

func newFakeProperties(ps ...db.Property) *fakeProperties {
	f := &fakeProperties{props: map[int]*db.Property{}, favorites: map[[2]int]bool{}}
	for _, p := range ps {
		cp := p
		f.props[p.ID] = &cp
	}
	return f
}

func (f *fakeProperties) Create(_ context.Context, p *db.Property) error {
	p.ID = len(f.props) + 100
	cp := *p
	f.props[p.ID] = &cp
	return nil
}

func (f *fakeProperties) Update(_ context.Context, p *db.Property) error {
	cp := *p
	f.props[p.ID] = &cp
	return nil
}

func (f *fakeProperties) Delete(_ context.Context, id int) error {
	delete(f.props, id)
	return nil
}

func (f *fakeProperties) GetByID(_ context.Context, id, viewerID int) (*db.Property, error) {
	p, ok := f.props[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.IsFavorite = f.favorites[[2]int{viewerID, id}]
	return &cp, nil
}

func (f *fakeProperties) ListByHost(_ context.Context, hostID int) ([]db.Property, error) {
	var out []db.Property
	for _, p := range f.props {
		if p.HostID == hostID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProperties) Search(_ context.Context, q repository.PropertyQuery) ([]db.Property, error) {
	f.searches++
	var out []db.Property
	for id := 1; id <= 1000; id++ {
		p, ok := f.props[id]
		if !ok || p.Status != db.PropertyStatusActive || p.MaxGuests < q.Guests {
			continue
		}
		if q.Location != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(q.Location)) {
			continue
		}
		if !q.CheckIn.IsZero() && f.booked != nil && f.booked(id, q.CheckIn, q.CheckOut) {
			continue
		}
		cp := *p
		cp.IsFavorite = f.favorites[[2]int{q.ViewerID, id}]
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeProperties) AddFavorite(_ context.Context, userID, propertyID int) error {
	f.favorites[[2]int{userID, propertyID}] = true
	return nil
}

func (f *fakeProperties) RemoveFavorite(_ context.Context, userID, propertyID int) error {
	delete(f.favorites, [2]int{userID, propertyID})
	return nil
}

// fakeBookings backs both the booking and the payment repository.
type fakeBookings struct {
	props        *fakeProperties
	bookings     map[int]*db.Booking
	overlap      bool
	setIntentErr error
}

func newFakeBookings(props *fakeProperties) *fakeBookings {
	f := &fakeBookings{props: props, bookings: map[int]*db.Booking{}}
	props.booked = f.holds
	return f
}

func (f *fakeBookings) add(b db.Booking) {
	f.bookings[b.ID] = &b
}

func (f *fakeBookings) details(b *db.Booking) entities.BookingDetails {
	d := entities.BookingDetails{Booking: *b}
	if p, ok := f.props.props[b.PropertyID]; ok {
		d.Property = *p
	}
	return d
}

func (f *fakeBookings) Create(_ context.Context, b *db.Booking) error {
	b.ID = len(f.bookings) + 1
	b.CreatedAt = time.Now()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id int) (*entities.BookingDetails, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	d := f.details(b)
	return &d, nil
}

func (f *fakeBookings) ListByGuest(_ context.Context, guestID int) ([]entities.BookingDetails, error) {
	out := []entities.BookingDetails{}
	for _, b := range f.bookings {
		if b.GuestID == guestID {
			out = append(out, f.details(b))
		}
	}
	return out, nil
}

func (f *fakeBookings) ListByHost(_ context.Context, hostID int, status string) ([]entities.BookingDetails, error) {
	out := []entities.BookingDetails{}
	for _, b := range f.bookings {
		d := f.details(b)
		if d.Property.HostID == hostID && (status == "" || b.Status == status) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeBookings) HasOverlap(_ context.Context, propertyID int, checkIn, checkOut time.Time) (bool, error) {
	return f.overlap || f.holds(propertyID, checkIn, checkOut), nil
}

func (f *fakeBookings) holds(propertyID int, checkIn, checkOut time.Time) bool {
	for _, b := range f.bookings {
		if b.PropertyID != propertyID || (b.Status != db.BookingStatusPending && b.Status != db.BookingStatusConfirmed) {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			return true
		}
	}
	return false
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id int, status string) error {
	f.bookings[id].Status = status
	return nil
}

func (f *fakeBookings) SetPaymentIntent(_ context.Context, id int, intentID string) error {
	if f.setIntentErr != nil {
		return f.setIntentErr
	}
	f.bookings[id].PaymentIntentID = intentID
	return nil
}

func (f *fakeBookings) UpdatePayment(_ context.Context, id int, status, paymentStatus string) error {
	f.bookings[id].Status = status
	f.bookings[id].PaymentStatus = paymentStatus
	return nil
}

func (f *fakeBookings) GetBookingByPaymentIntent(_ context.Context, intentID string) (*entities.BookingDetails, error) {
	for _, b := range f.bookings {
		if b.PaymentIntentID == intentID {
			d := f.details(b)
			return &d, nil
		}
	}
	return nil, nil
}

type fakeGateway struct {
	createErr     error
	confirmStatus string
	confirmErr    error
	refundErr     error
	refunded      []string
	amounts       []int64
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, _, _ string, _ map[string]string) (string, string, error) {
	if g.createErr != nil {
		return "", "", g.createErr
	}
	g.amounts = append(g.amounts, amount)
	return "pi_test", "pi_test_secret", nil
}

func (g *fakeGateway) ConfirmIntent(_ context.Context, _, _ string) (string, error) {
	if g.confirmErr != nil {
		return "", g.confirmErr
	}
	if g.confirmStatus == "" {
		return "succeeded", nil
	}
	return g.confirmStatus, nil
}

func (g *fakeGateway) Refund(_ context.Context, intentID string) error {
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunded = append(g.refunded, intentID)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	statuses []string
}

func (n *fakeNotifier) BookingStatusChanged(b entities.BookingDetails, _ db.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, b.Status)
}
