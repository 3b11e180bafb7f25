package entities

type CreateIntentRequest struct {
	PriceRequest
	SpecialRequests string `json:"specialRequests"`
}

type CreateIntentResponse struct {
	BookingID       int            `json:"bookingId"`
	BookingCode     string         `json:"bookingCode"`
	PaymentIntentID string         `json:"paymentIntentId"`
	ClientSecret    string         `json:"clientSecret"`
	Pricing         PriceBreakdown `json:"pricing"`
}

// ConfirmPaymentRequest carries the payment-method handle returned by the card widget.
type ConfirmPaymentRequest struct {
	BookingID       int    `json:"bookingId"`
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type ConfirmPaymentResponse struct {
	BookingID     int    `json:"bookingId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

type RefundRequest struct {
	BookingID int    `json:"bookingId"`
	Reason    string `json:"reason,omitempty"`
}
