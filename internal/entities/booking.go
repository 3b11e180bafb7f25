package entities

import "staybnb/internal/db"

// BookingDetails is a booking with the property it belongs to.
type BookingDetails struct {
	db.Booking
	Property db.Property `json:"property"`
}

type BookingList struct {
	Total    int              `json:"total"`
	Bookings []BookingDetails `json:"bookings"`
}

// BookingNotification is what the email and SMS templates render.
type BookingNotification struct {
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	BookingCode   string
	PropertyTitle string
	CheckIn       string
	CheckOut      string
	Nights        int
	Total         string
	Status        string
	CurrentYear   int
}
