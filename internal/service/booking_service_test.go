package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybnb/internal/db"
	"staybnb/internal/entities"
)

const (
	hostID  = 10
	guestID = 20
)

type bookingFixture struct {
	props    *fakeProperties
	bookings *fakeBookings
	gateway  *fakeGateway
	notifier *fakeNotifier
	booking  *BookingService
	payment  *PaymentService
}

func newBookingFixture(ps ...db.Property) *bookingFixture {
	if len(ps) == 0 {
		ps = []db.Property{beachHouse()}
	}
	f := &bookingFixture{
		props:    newFakeProperties(ps...),
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
	}
	f.bookings = newFakeBookings(f.props)
	users := newFakeUsers()
	users.add(db.User{ID: hostID, Name: "Host", Email: "host@example.com", IsHost: true})
	users.add(db.User{ID: guestID, Name: "Guest", Email: "guest@example.com"})

	pricing := NewPricingService(f.props, testRates)
	pricing.now = func() time.Time { return day(time.June, 1) }
	f.booking = NewBookingService(f.bookings, f.bookings, users, f.gateway, f.notifier)
	f.payment = NewPaymentService(pricing, f.bookings, f.bookings, f.booking, f.gateway)
	return f
}

func (f *bookingFixture) seed(status, paymentStatus string) {
	f.bookings.add(db.Booking{
		ID: 1, Code: "SB-TEST", PropertyID: 1, GuestID: guestID,
		CheckIn: day(time.July, 1), CheckOut: day(time.July, 4),
		Status: status, PaymentStatus: paymentStatus, PaymentIntentID: "pi_seed",
	})
}

func TestAcceptRequiresHostAndPayment(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)
	ctx := context.Background()

	_, err := f.booking.Accept(ctx, guestID, 1)
	assert.Equal(t, 403, httpCode(t, err))

	_, err = f.booking.Accept(ctx, hostID, 1)
	assert.Equal(t, 409, httpCode(t, err))

	f.bookings.bookings[1].PaymentStatus = db.PaymentStatusPaid
	b, err := f.booking.Accept(ctx, hostID, 1)
	require.NoError(t, err)
	assert.Equal(t, db.BookingStatusConfirmed, b.Status)
	assert.Equal(t, []string{db.BookingStatusConfirmed}, f.notifier.statuses)

	_, err = f.booking.Accept(ctx, hostID, 1)
	assert.Equal(t, 409, httpCode(t, err), "only pending bookings can be accepted")
}

func TestDeclineRefundsPaidBooking(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusPaid)

	b, err := f.booking.Decline(context.Background(), hostID, 1)
	require.NoError(t, err)
	assert.Equal(t, db.BookingStatusCancelled, b.Status)
	assert.Equal(t, db.PaymentStatusRefunded, b.PaymentStatus)
	assert.Equal(t, []string{"pi_seed"}, f.gateway.refunded)
}

func TestCancelByGuestOrHost(t *testing.T) {
	for _, who := range []int{guestID, hostID} {
		f := newBookingFixture()
		f.seed(db.BookingStatusConfirmed, db.PaymentStatusUnpaid)

		b, err := f.booking.Cancel(context.Background(), who, 1)
		require.NoError(t, err)
		assert.Equal(t, db.BookingStatusCancelled, b.Status)
		assert.Equal(t, db.PaymentStatusUnpaid, b.PaymentStatus)
		assert.Empty(t, f.gateway.refunded)
	}

	f := newBookingFixture()
	f.seed(db.BookingStatusConfirmed, db.PaymentStatusPaid)
	_, err := f.booking.Cancel(context.Background(), 77, 1)
	assert.Equal(t, 403, httpCode(t, err))
}

func TestCancelCompletedBookingIsRejected(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusCompleted, db.PaymentStatusPaid)

	_, err := f.booking.Cancel(context.Background(), guestID, 1)
	assert.Equal(t, 409, httpCode(t, err))
}

func TestCancelKeepsStateWhenRefundFails(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusConfirmed, db.PaymentStatusPaid)
	f.gateway.refundErr = errors.New("stripe down")

	_, err := f.booking.Cancel(context.Background(), guestID, 1)
	assert.Equal(t, 502, httpCode(t, err))
	assert.Equal(t, db.BookingStatusConfirmed, f.bookings.bookings[1].Status)
}

func TestListHostBookingsRejectsUnknownStatus(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)

	_, err := f.booking.ListHostBookings(context.Background(), hostID, "archived")
	assert.Equal(t, 400, httpCode(t, err))

	list, err := f.booking.ListHostBookings(context.Background(), hostID, db.BookingStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	trips, err := f.booking.ListTrips(context.Background(), guestID)
	require.NoError(t, err)
	assert.Equal(t, 1, trips.Total)
}

func intentRequest(in, out time.Time, guests int) entities.CreateIntentRequest {
	return entities.CreateIntentRequest{PriceRequest: entities.PriceRequest{PropertyID: 1, CheckIn: in, CheckOut: out, Guests: guests}}
}

func TestCreateIntentHoldsDates(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	resp, err := f.payment.CreateIntent(ctx, guestID, intentRequest(day(time.June, 10), day(time.June, 13), 2))
	require.NoError(t, err)
	assert.Equal(t, "pi_test", resp.PaymentIntentID)
	assert.Equal(t, []int64{42700}, f.gateway.amounts)

	stored := f.bookings.bookings[resp.BookingID]
	assert.Equal(t, db.BookingStatusPending, stored.Status)
	assert.Equal(t, db.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.Equal(t, "pi_test", stored.PaymentIntentID)

	_, err = f.payment.CreateIntent(ctx, guestID, intentRequest(day(time.June, 12), day(time.June, 15), 2))
	assert.Equal(t, 409, httpCode(t, err), "overlapping stay")
}

func TestCreateIntentRejectsOwnProperty(t *testing.T) {
	f := newBookingFixture()
	_, err := f.payment.CreateIntent(context.Background(), hostID, intentRequest(day(time.June, 10), day(time.June, 13), 2))
	assert.Equal(t, 403, httpCode(t, err))
}

func TestCreateIntentReleasesDatesWhenGatewayFails(t *testing.T) {
	f := newBookingFixture()
	f.gateway.createErr = errors.New("stripe down")

	_, err := f.payment.CreateIntent(context.Background(), guestID, intentRequest(day(time.June, 10), day(time.June, 13), 2))
	assert.Equal(t, 502, httpCode(t, err))
	assert.Equal(t, db.BookingStatusCancelled, f.bookings.bookings[1].Status)
}

func TestCreateIntentReleasesDatesWhenIntentCannotBeStored(t *testing.T) {
	f := newBookingFixture()
	f.bookings.setIntentErr = errors.New("connection reset")

	_, err := f.payment.CreateIntent(context.Background(), guestID, intentRequest(day(time.June, 10), day(time.June, 13), 2))
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, db.BookingStatusCancelled, f.bookings.bookings[1].Status)

	f.bookings.setIntentErr = nil
	_, err = f.payment.CreateIntent(context.Background(), guestID, intentRequest(day(time.June, 10), day(time.June, 13), 2))
	assert.NoError(t, err, "the dates are free again")
}

func TestConfirmInstantBookConfirms(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)

	resp, err := f.payment.Confirm(context.Background(), guestID, entities.ConfirmPaymentRequest{BookingID: 1, PaymentMethodID: "pm_card_visa"})
	require.NoError(t, err)
	assert.Equal(t, db.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, db.PaymentStatusPaid, resp.PaymentStatus)
}

func TestConfirmRequestToBookWaitsForHost(t *testing.T) {
	p := beachHouse()
	p.InstantBook = false
	f := newBookingFixture(p)
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)

	resp, err := f.payment.Confirm(context.Background(), guestID, entities.ConfirmPaymentRequest{BookingID: 1})
	require.NoError(t, err)
	assert.Equal(t, db.BookingStatusPending, resp.Status)
	assert.Equal(t, db.PaymentStatusPaid, resp.PaymentStatus)
}

func TestConfirmNotYetSucceeded(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)
	f.gateway.confirmStatus = "requires_action"

	resp, err := f.payment.Confirm(context.Background(), guestID, entities.ConfirmPaymentRequest{BookingID: 1})
	require.NoError(t, err)
	assert.Equal(t, db.PaymentStatusUnpaid, resp.PaymentStatus)
}

func TestConfirmForeignIntent(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)

	_, err := f.payment.Confirm(context.Background(), guestID, entities.ConfirmPaymentRequest{BookingID: 1, PaymentIntentID: "pi_other"})
	assert.Equal(t, 400, httpCode(t, err))
}

func TestHandleEvent(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusPending, db.PaymentStatusUnpaid)
	ctx := context.Background()

	require.NoError(t, f.payment.HandleEvent(ctx, EventIntentSucceeded, "pi_seed"))
	assert.Equal(t, db.BookingStatusConfirmed, f.bookings.bookings[1].Status)
	assert.Equal(t, db.PaymentStatusPaid, f.bookings.bookings[1].PaymentStatus)

	require.NoError(t, f.payment.HandleEvent(ctx, EventChargeRefunded, "pi_seed"))
	assert.Equal(t, db.BookingStatusCancelled, f.bookings.bookings[1].Status)
	assert.Equal(t, db.PaymentStatusRefunded, f.bookings.bookings[1].PaymentStatus)

	assert.NoError(t, f.payment.HandleEvent(ctx, EventIntentSucceeded, "pi_unknown"))
}

func TestHandleEventRefundsPaymentForExpiredHold(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusCancelled, db.PaymentStatusUnpaid)

	require.NoError(t, f.payment.HandleEvent(context.Background(), EventIntentSucceeded, "pi_seed"))
	assert.Equal(t, []string{"pi_seed"}, f.gateway.refunded)
	assert.Equal(t, db.BookingStatusCancelled, f.bookings.bookings[1].Status)
	assert.Equal(t, db.PaymentStatusRefunded, f.bookings.bookings[1].PaymentStatus)
	assert.Empty(t, f.notifier.statuses)
}

func TestHandleEventLateRefundFailureIsReported(t *testing.T) {
	f := newBookingFixture()
	f.seed(db.BookingStatusCancelled, db.PaymentStatusUnpaid)
	f.gateway.refundErr = errors.New("stripe down")

	err := f.payment.HandleEvent(context.Background(), EventIntentSucceeded, "pi_seed")
	assert.ErrorContains(t, err, "stripe down")
	assert.Equal(t, db.PaymentStatusUnpaid, f.bookings.bookings[1].PaymentStatus)
}
