// Package payments adapts the Stripe API to ports.PaymentGateway.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/ports"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrGatewayFailure wraps every error returned by Stripe.
var ErrGatewayFailure = errors.New("payment gateway failure")

// StripeGateway verifies payment intents, finds their charge and pays the
// merchant's connected account.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway on the default Stripe backends.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	return &StripeGateway{api: client.New(secretKey, nil)}, nil
}

// NewStripeGatewayWithBackends is used to point the client at a different API host.
func NewStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, backends)}
}

func (g *StripeGateway) VerifySucceeded(ctx context.Context, paymentIntentID string) (ports.PaymentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return ports.PaymentStatus{}, fmt.Errorf("%w: retrieve payment intent %s: %w", ErrGatewayFailure, paymentIntentID, err)
	}

	return ports.PaymentStatus{
		Succeeded: pi.Status == stripe.PaymentIntentStatusSucceeded,
		Status:    string(pi.Status),
	}, nil
}

func (g *StripeGateway) FindCharge(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.ChargeListParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	params.Single = true

	it := g.api.Charges.List(params)
	for it.Next() {
		return it.Charge().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("%w: list charges for %s: %w", ErrGatewayFailure, paymentIntentID, err)
	}
	return "", nil
}

func (g *StripeGateway) Transfer(ctx context.Context, req ports.TransferRequest) (ports.TransferReceipt, error) {
	if req.AmountMinor <= 0 {
		return ports.TransferReceipt{}, fmt.Errorf("stripe: transfer amount must be positive, got %d", req.AmountMinor)
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(req.Currency),
		Destination: stripe.String(req.Destination),
	}
	params.Context = ctx
	if req.SourceChargeID != "" {
		params.SourceTransaction = stripe.String(req.SourceChargeID)
	}
	if req.TransferGroup != "" {
		params.TransferGroup = stripe.String(req.TransferGroup)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("%w: transfer to %s: %w", ErrGatewayFailure, req.Destination, err)
	}

	receipt := ports.TransferReceipt{TransferID: tr.ID}
	if tr.DestinationPayment != nil {
		receipt.DestinationPaymentID = tr.DestinationPayment.ID
	}
	return receipt, nil
}
