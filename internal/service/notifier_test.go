package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"staybnb/internal/db"
	"staybnb/internal/entities"
)

type recordingChannels struct {
	emails []string
	html   string
	sms    []string
	smsErr error
}

func (r *recordingChannels) SendEmail(toEmail, _, _, _, html string) error {
	r.emails = append(r.emails, toEmail)
	r.html = html
	return nil
}

func (r *recordingChannels) SendSMS(toNumber, body string) error {
	r.sms = append(r.sms, toNumber+": "+body)
	return r.smsErr
}

func testBooking() entities.BookingDetails {
	return entities.BookingDetails{
		Booking: db.Booking{
			Code: "SB-ABC", CheckIn: day(time.July, 1), CheckOut: day(time.July, 4),
			Nights: 3, Total: 427, Status: db.BookingStatusConfirmed,
		},
		Property: db.Property{Title: "Beach house"},
	}
}

func TestNotifierSendsEmailAndSMS(t *testing.T) {
	ch := &recordingChannels{}
	n := NewBookingNotifier(ch, ch)
	n.async = false

	n.BookingStatusChanged(testBooking(), db.User{Name: "Ana", Email: "ana@example.com", Phone: "+351912345678"})

	assert.Equal(t, []string{"ana@example.com"}, ch.emails)
	assert.Contains(t, ch.html, "SB-ABC")
	assert.Contains(t, ch.html, "Beach house")
	assert.Contains(t, ch.html, "427.00")
	if assert.Len(t, ch.sms, 1) {
		assert.Contains(t, ch.sms[0], "SB-ABC is confirmed")
	}
}

func TestNotifierSkipsSMSWithoutPhone(t *testing.T) {
	ch := &recordingChannels{smsErr: errors.New("should not be called")}
	n := NewBookingNotifier(ch, ch)
	n.async = false

	n.BookingStatusChanged(testBooking(), db.User{Name: "Ana", Email: "ana@example.com"})

	assert.Len(t, ch.emails, 1)
	assert.Empty(t, ch.sms)
}

func TestTwilioSenderRequiresE164(t *testing.T) {
	s := NewTwilioSender("AC123", "token", "+15550000000")
	assert.ErrorContains(t, s.SendSMS("912345678", "hi"), "E.164")

	assert.ErrorIs(t, NewTwilioSender("", "", "").SendSMS("+15550000001", "hi"), errChannelDisabled)
	assert.ErrorIs(t, NewSendGridSender("", "", "Staybnb").SendEmail("a@b.c", "A", "s", "p", "h"), errChannelDisabled)
}
