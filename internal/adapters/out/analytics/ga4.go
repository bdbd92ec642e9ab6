// Package analytics records purchases in Google Analytics 4 and on the order
// events queue.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/core/ports"
)

const DefaultGA4Endpoint = "https://www.google-analytics.com/mp/collect"

type GA4Config struct {
	Endpoint      string
	MeasurementID string
	APISecret     string
	Timeout       time.Duration
}

// GA4 sends purchase events with the Measurement Protocol.
type GA4 struct {
	endpoint string
	client   *http.Client
}

func NewGA4(cfg GA4Config, client *http.Client) (*GA4, error) {
	if cfg.MeasurementID == "" || cfg.APISecret == "" {
		return nil, errors.New("ga4: measurement id and api secret are required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultGA4Endpoint
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	q := url.Values{}
	q.Set("measurement_id", cfg.MeasurementID)
	q.Set("api_secret", cfg.APISecret)

	return &GA4{endpoint: endpoint + "?" + q.Encode(), client: client}, nil
}

type ga4Item struct {
	ItemID   string  `json:"item_id"`
	ItemName string  `json:"item_name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type ga4Params struct {
	TransactionID string    `json:"transaction_id"`
	Currency      string    `json:"currency"`
	Value         float64   `json:"value"`
	Shipping      float64   `json:"shipping"`
	Items         []ga4Item `json:"items"`
}

type ga4Event struct {
	Name   string    `json:"name"`
	Params ga4Params `json:"params"`
}

type ga4Payload struct {
	ClientID        string     `json:"client_id"`
	TimestampMicros int64      `json:"timestamp_micros,omitempty"`
	Events          []ga4Event `json:"events"`
}

func purchasePayload(e ports.PurchaseEvent) ga4Payload {
	items := make([]ga4Item, 0, len(e.Items))
	for _, line := range e.Items {
		name := line.Name
		if name == "" {
			name = line.ProductID
		}
		items = append(items, ga4Item{
			ItemID:   line.ProductID,
			ItemName: name,
			Quantity: line.Quantity,
			Price:    line.UnitPrice.InexactFloat64(),
		})
	}

	currency := strings.ToUpper(e.Currency)
	if currency == "" {
		currency = "GBP"
	}

	p := ga4Payload{
		ClientID: e.ClientID,
		Events: []ga4Event{{
			Name: "purchase",
			Params: ga4Params{
				TransactionID: strconv.FormatInt(e.OrderID, 10),
				Currency:      currency,
				Value:         e.Value.InexactFloat64(),
				Shipping:      e.Shipping.InexactFloat64(),
				Items:         items,
			},
		}},
	}
	if !e.OccurredAt.IsZero() {
		p.TimestampMicros = e.OccurredAt.UnixMicro()
	}
	return p
}

func (g *GA4) TrackPurchase(ctx context.Context, event ports.PurchaseEvent) error {
	if event.ClientID == "" {
		event.ClientID = strconv.FormatInt(event.OrderID, 10)
	}

	body, err := json.Marshal(purchasePayload(event))
	if err != nil {
		return fmt.Errorf("ga4: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ga4: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ga4: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
