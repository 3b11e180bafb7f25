package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
	"staybnb/internal/entities"
)

//go:embed templates/booking_email.html
var templateFS embed.FS

var bookingEmailTmpl = template.Must(template.ParseFS(templateFS, "templates/booking_email.html"))

// Notifier tells the guest about booking status changes.
type Notifier interface {
	BookingStatusChanged(booking entities.BookingDetails, guest db.User)
}

type BookingNotifier struct {
	email EmailSender
	sms   SMSSender
	now   func() time.Time
	// async sends on a separate goroutine.
	async bool
}

func NewBookingNotifier(email EmailSender, sms SMSSender) *BookingNotifier {
	return &BookingNotifier{email: email, sms: sms, now: time.Now, async: true}
}

func (n *BookingNotifier) BookingStatusChanged(booking entities.BookingDetails, guest db.User) {
	data := entities.BookingNotification{
		GuestName:     guest.Name,
		GuestEmail:    guest.Email,
		GuestPhone:    guest.Phone,
		BookingCode:   booking.Code,
		PropertyTitle: booking.Property.Title,
		CheckIn:       booking.CheckIn.Format("Mon 02 Jan 2006"),
		CheckOut:      booking.CheckOut.Format("Mon 02 Jan 2006"),
		Nights:        booking.Nights,
		Total:         fmt.Sprintf("%.2f", booking.Total),
		Status:        booking.Status,
		CurrentYear:   n.now().Year(),
	}
	if n.async {
		go n.send(data)
		return
	}
	n.send(data)
}

func (n *BookingNotifier) send(data entities.BookingNotification) {
	logger := log.WithFields(log.Fields{"booking_code": data.BookingCode, "status": data.Status})

	subject := fmt.Sprintf("Your Staybnb booking is %s - %s", data.Status, data.BookingCode)
	plain := fmt.Sprintf(
		"Hi %s,\n\nYour booking %s at %s is %s.\n\nCheck-in: %s\nCheck-out: %s\nNights: %d\nTotal: %s\n",
		data.GuestName, data.BookingCode, data.PropertyTitle, data.Status, data.CheckIn, data.CheckOut, data.Nights, data.Total,
	)
	var html bytes.Buffer
	if err := bookingEmailTmpl.Execute(&html, data); err != nil {
		logger.WithError(err).Error("rendering booking email")
	}
	if err := n.email.SendEmail(data.GuestEmail, data.GuestName, subject, plain, html.String()); err != nil && err != errChannelDisabled {
		logger.WithError(err).Warn("booking email not sent")
	}

	if strings.TrimSpace(data.GuestPhone) == "" {
		return
	}
	sms := fmt.Sprintf("Staybnb: booking %s is %s. Check-in %s.", data.BookingCode, data.Status, data.CheckIn)
	if err := n.sms.SendSMS(data.GuestPhone, sms); err != nil && err != errChannelDisabled {
		logger.WithError(err).Warn("booking SMS not sent")
	}
}
