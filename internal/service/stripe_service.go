package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// PaymentGateway is the card processor behind the payment flow.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, description string, metadata map[string]string) (id, clientSecret string, err error)
	ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (status string, err error)
	Refund(ctx context.Context, intentID string) error
}

// StripeService talks to Stripe. stripe.Key must be set before use.
type StripeService struct{}

func NewStripeService() *StripeService {
	return &StripeService{}
}

func (s *StripeService) CreateIntent(ctx context.Context, amount int64, currency, description string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("creating payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (s *StripeService) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (string, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	params.Context = ctx
	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return "", fmt.Errorf("confirming payment intent %s: %w", intentID, err)
	}
	return string(pi.Status), nil
}

func (s *StripeService) Refund(ctx context.Context, intentID string) error {
	if intentID == "" {
		return fmt.Errorf("no payment intent to refund")
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	_, err := refund.New(params)
	return err
}
