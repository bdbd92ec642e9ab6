package ports

import "context"

type PaymentStatus struct {
	Succeeded bool
	Status    string
}

type TransferRequest struct {
	AmountMinor    int64
	Currency       string
	Destination    string
	SourceChargeID string
	TransferGroup  string
	Metadata       map[string]string
}

type TransferReceipt struct {
	TransferID           string
	DestinationPaymentID string
}

// PaymentGateway is the payment processor that captured the customer's money.
type PaymentGateway interface {
	// VerifySucceeded reports the state of a payment intent.
	VerifySucceeded(ctx context.Context, paymentIntentID string) (PaymentStatus, error)

	// FindCharge returns the first charge of a payment intent, or "" if there is none.
	FindCharge(ctx context.Context, paymentIntentID string) (string, error)

	// Transfer moves funds to a connected merchant account.
	Transfer(ctx context.Context, req TransferRequest) (TransferReceipt, error)
}
