package db

import "time"

const (
	PropertyStatusDraft    = "draft"
	PropertyStatusActive   = "active"
	PropertyStatusInactive = "inactive"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	Address      string     `json:"address"`
	IsHost       bool       `json:"isHost"`
	Bio          string     `json:"bio,omitempty"`
	Experience   string     `json:"experience,omitempty"`
	Languages    []string   `json:"languages,omitempty"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Property struct {
	ID              int       `json:"id"`
	HostID          int       `json:"hostId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PropertyType    string    `json:"propertyType"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Country         string    `json:"country"`
	ZipCode         string    `json:"zipCode"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	MaxGuests       int       `json:"maxGuests"`
	Bedrooms        int       `json:"bedrooms"`
	Beds            int       `json:"beds"`
	Bathrooms       float64   `json:"bathrooms"`
	PricePerNight   float64   `json:"pricePerNight"`
	CleaningFee     float64   `json:"cleaningFee"`
	SecurityDeposit float64   `json:"securityDeposit"`
	WeeklyDiscount  float64   `json:"weeklyDiscount"`
	MonthlyDiscount float64   `json:"monthlyDiscount"`
	Amenities       []string  `json:"amenities"`
	HouseRules      string    `json:"houseRules"`
	Images          []string  `json:"images"`
	InstantBook     bool      `json:"instantBook"`
	Status          string    `json:"status"`
	IsFavorite      bool      `json:"isFavorite"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Booking struct {
	ID              int       `json:"id"`
	Code            string    `json:"code"`
	PropertyID      int       `json:"propertyId"`
	GuestID         int       `json:"guestId"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	Guests          int       `json:"guests"`
	Nights          int       `json:"nights"`
	NightlyRate     float64   `json:"nightlyRate"`
	Subtotal        float64   `json:"subtotal"`
	Discount        float64   `json:"discount"`
	CleaningFee     float64   `json:"cleaningFee"`
	ServiceFee      float64   `json:"serviceFee"`
	Tax             float64   `json:"tax"`
	Total           float64   `json:"total"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	PaymentIntentID string    `json:"paymentIntentId,omitempty"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
