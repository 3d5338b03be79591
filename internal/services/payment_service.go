// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/transfer"

	"github.com/javajoker/rights-backend/internal/config"
)

var ErrPaymentsDisabled = errors.New("payments are not configured")

// PayoutProvider moves money to a partner's connected account and returns
// the provider's reference for the transfer.
type PayoutProvider interface {
	Transfer(ctx context.Context, req PayoutRequest) (string, error)
}

type PayoutRequest struct {
	Amount      float64
	Destination string
	Description string
	Metadata    map[string]string
}

type PaymentService struct {
	config *config.Config
}

func NewPaymentService(config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		config: config,
	}
}

func (s *PaymentService) Enabled() bool {
	return s.config.Payment.StripeSecretKey != ""
}

func (s *PaymentService) Transfer(ctx context.Context, req PayoutRequest) (string, error) {
	if !s.Enabled() {
		return "", ErrPaymentsDisabled
	}

	currency := s.config.Payment.Currency
	if currency == "" {
		currency = "usd"
	}

	// Convert amount to cents for Stripe
	amountInCents := int64(math.Round(req.Amount * 100))
	if amountInCents <= 0 {
		return "", fmt.Errorf("payout amount must be positive")
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amountInCents),
		Currency:    stripe.String(currency),
		Destination: stripe.String(req.Destination),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	tr, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create transfer: %w", err)
	}

	return tr.ID, nil
}
