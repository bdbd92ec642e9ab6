package orderrepo

import (
	"encoding/json"
	"fmt"

	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// metadataV0 holds the fields of unversioned documents that moved in version 1.
// The courier job lived under delivery, the device token under push or
// notifications, and Stripe references under stripe.
type metadataV0 struct {
	Delivery struct {
		Provider string `json:"provider"`
		ID       string `json:"id"`
	} `json:"delivery"`
	Push struct {
		FcmToken string `json:"fcmToken"`
	} `json:"push"`
	Notifications struct {
		FcmToken string `json:"fcmToken"`
	} `json:"notifications"`
	Stripe struct {
		ChargeID string `json:"chargeId"`
		Transfer *struct {
			ID                   string          `json:"id"`
			DestinationPaymentID string          `json:"destinationPaymentId"`
			SplitPercent         decimal.Decimal `json:"splitPercent"`
		} `json:"transfer"`
	} `json:"stripe"`
	StripePaymentIntentID string `json:"stripePaymentIntentId"`
}

func decodeMetadata(raw []byte) (order.Metadata, error) {
	var md order.Metadata
	if len(raw) == 0 {
		md.Version = order.MetadataVersion
		return md, nil
	}
	if err := json.Unmarshal(raw, &md); err != nil {
		return order.Metadata{}, fmt.Errorf("decode order metadata: %w", err)
	}
	if md.Version >= order.MetadataVersion {
		return md, nil
	}
	return migrateV0(raw, md)
}

func migrateV0(raw []byte, md order.Metadata) (order.Metadata, error) {
	var old metadataV0
	if err := json.Unmarshal(raw, &old); err != nil {
		return order.Metadata{}, fmt.Errorf("decode v0 order metadata: %w", err)
	}

	md.Dispatch = order.DispatchRef{Provider: order.ProviderPending, Status: order.DispatchPending}
	switch {
	case old.Delivery.ID != "" && old.Delivery.Provider != "" && old.Delivery.Provider != order.ProviderPending:
		md.Dispatch.Provider = old.Delivery.Provider
		md.Dispatch.ID = old.Delivery.ID
		md.Dispatch.Status = order.DispatchDispatched
	case !md.Delivery.RequestsDispatch():
		md.Dispatch.Status = order.DispatchSkipped
	}

	if md.Notifications.PushToken == "" {
		md.Notifications.PushToken = old.Push.FcmToken
	}
	if md.Notifications.PushToken == "" {
		md.Notifications.PushToken = old.Notifications.FcmToken
	}

	if md.Payment.PaymentIntentID == "" {
		md.Payment.PaymentIntentID = old.StripePaymentIntentID
	}
	if md.Payment.ChargeID == "" {
		md.Payment.ChargeID = old.Stripe.ChargeID
	}
	if md.Transfer == nil && old.Stripe.Transfer != nil && old.Stripe.Transfer.ID != "" {
		md.Transfer = &order.TransferRef{
			ID:                   old.Stripe.Transfer.ID,
			DestinationPaymentID: old.Stripe.Transfer.DestinationPaymentID,
			SplitPercent:         old.Stripe.Transfer.SplitPercent,
		}
	}

	md.Version = order.MetadataVersion
	return md, nil
}
