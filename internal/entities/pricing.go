package entities

import "time"

// PriceRequest asks for the price of a stay.
type PriceRequest struct {
	PropertyID int       `json:"propertyId"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	Guests     int       `json:"guests"`
}

// PriceBreakdown is the authoritative price of a stay.
type PriceBreakdown struct {
	Nights      int     `json:"nights"`
	NightlyRate float64 `json:"nightlyRate"`
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	CleaningFee float64 `json:"cleaningFee"`
	ServiceFee  float64 `json:"serviceFee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}
