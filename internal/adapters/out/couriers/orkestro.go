package couriers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/delivery"
)

const (
	OrkestroName           = "orkestro"
	DefaultOrkestroBaseURL = "https://api.orkestro.io"

	orkestroWindow     = 15 * time.Minute
	orkestroTimeLayout = "2006-01-02T15:04:05Z"
	jsonContentType    = "application/json"
)

// OrkestroConfig configures the nighttime courier.
type OrkestroConfig struct {
	BaseURL     string
	APIKey      string
	City        string
	Country     string
	Currency    string
	CallbackURL string
	Timeout     time.Duration
}

// Orkestro books jobs through the Orkestro orders API with JSON bodies and an
// api-key header.
type Orkestro struct {
	cfg       OrkestroConfig
	transport *transport
}

func NewOrkestro(cfg OrkestroConfig, client *http.Client) (*Orkestro, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("orkestro: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOrkestroBaseURL
	}
	if cfg.City == "" {
		cfg.City = "London"
	}
	if cfg.Country == "" {
		cfg.Country = "United Kingdom"
	}
	if cfg.Currency == "" {
		cfg.Currency = "gbp"
	}

	t := newTransport(OrkestroName, cfg.BaseURL, client, cfg.Timeout)
	t.headers["api-key"] = cfg.APIKey
	return &Orkestro{cfg: cfg, transport: t}, nil
}

func (o *Orkestro) Name() string {
	return OrkestroName
}

type orkestroLocation struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type orkestroStop struct {
	Name         string           `json:"name"`
	CompanyName  string           `json:"companyName,omitempty"`
	AddressLine1 string           `json:"addressLine1"`
	City         string           `json:"city"`
	PostCode     string           `json:"postCode"`
	Country      string           `json:"country"`
	Phone        string           `json:"phone"`
	Email        string           `json:"email,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
	Location     orkestroLocation `json:"location"`
}

type orkestroItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type orkestroMoney struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type orkestroParcel struct {
	HandlingInstructions []string       `json:"handlingInstructions"`
	Items                []orkestroItem `json:"items"`
	Reference            string         `json:"reference"`
	Value                orkestroMoney  `json:"value"`
}

type orkestroWindowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type orkestroSchedule struct {
	Type          string             `json:"type"`
	PickupWindow  orkestroWindowJSON `json:"pickupWindow"`
	DropoffWindow orkestroWindowJSON `json:"dropoffWindow"`
}

type orkestroOrder struct {
	Pickup              orkestroStop     `json:"pickup"`
	Dropoff             orkestroStop     `json:"dropoff"`
	Parcel              orkestroParcel   `json:"parcel"`
	Schedule            orkestroSchedule `json:"schedule"`
	CallbackURL         string           `json:"callbackUrl,omitempty"`
	MessagesCallbackURL string           `json:"messagesCallbackUrl,omitempty"`
}

// Create books a scheduled order with 15 minute pickup and drop-off windows in UTC.
func (o *Orkestro) Create(ctx context.Context, req delivery.JobRequest) (delivery.JobResult, error) {
	if err := req.Validate(); err != nil {
		return delivery.JobResult{}, err
	}

	payload, err := json.Marshal(o.order(req))
	if err != nil {
		return delivery.JobResult{}, fmt.Errorf("orkestro: encode order: %w", err)
	}

	httpReq, err := o.transport.newRequest(ctx, http.MethodPost, "/orders", jsonContentType, bytes.NewReader(payload))
	if err != nil {
		return delivery.JobResult{}, err
	}

	body, err := o.transport.do(httpReq)
	if err != nil {
		return delivery.JobResult{}, o.transport.rejected(err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err = json.Unmarshal(body, &resp); err != nil {
		return delivery.JobResult{}, delivery.NewProviderRejectedError(OrkestroName, 0, "unreadable response: "+err.Error())
	}
	if strings.TrimSpace(resp.ID) == "" {
		return delivery.JobResult{}, delivery.NewProviderRejectedError(OrkestroName, 0, "missing id")
	}

	return delivery.JobResult{Provider: OrkestroName, DeliveryID: resp.ID}, nil
}

// Cancel calls POST /orders/{id}/cancel.
func (o *Orkestro) Cancel(ctx context.Context, deliveryID string) error {
	if strings.TrimSpace(deliveryID) == "" {
		return errors.New("orkestro: delivery id is required")
	}

	httpReq, err := o.transport.newRequest(ctx, http.MethodPost, "/orders/"+url.PathEscape(deliveryID)+"/cancel", "", nil)
	if err != nil {
		return err
	}
	if _, err = o.transport.do(httpReq); err != nil {
		return fmt.Errorf("orkestro: cancel %s: %w", deliveryID, o.transport.rejected(err))
	}
	return nil
}

func (o *Orkestro) order(req delivery.JobRequest) orkestroOrder {
	pickupStart := req.Schedule.Pickup.UTC()
	dropoffStart := req.Schedule.Target.UTC()

	items := max(req.ItemCount, 1)

	return orkestroOrder{
		Pickup: orkestroStop{
			Name:         orDefault(req.Pickup.Name, "Counter"),
			CompanyName:  req.Pickup.Name,
			AddressLine1: req.Pickup.Address,
			City:         o.cfg.City,
			PostCode:     req.Pickup.Postcode,
			Country:      o.cfg.Country,
			Phone:        req.Pickup.Phone,
			Email:        req.Pickup.Email,
			Instructions: "Pick up package from counter",
			Location:     orkestroLocation{Lat: req.Pickup.Location.Lat(), Long: req.Pickup.Location.Lng()},
		},
		Dropoff: orkestroStop{
			Name:         orDefault(req.Dropoff.Name, "Customer"),
			AddressLine1: req.Dropoff.Address,
			City:         o.cfg.City,
			PostCode:     req.Dropoff.Postcode,
			Country:      o.cfg.Country,
			Phone:        req.Dropoff.Phone,
			Email:        req.Dropoff.Email,
			Instructions: req.Notes,
			Location:     orkestroLocation{Lat: req.Dropoff.Location.Lat(), Long: req.Dropoff.Location.Lng()},
		},
		Parcel: orkestroParcel{
			HandlingInstructions: []string{},
			Items:                []orkestroItem{{Name: "Order #" + req.Reference + " Items", Quantity: items}},
			Reference:            req.Reference,
			Value:                orkestroMoney{Amount: req.Value.Round(2).InexactFloat64(), Currency: o.cfg.Currency},
		},
		Schedule: orkestroSchedule{
			Type: "scheduled",
			PickupWindow: orkestroWindowJSON{
				Start: pickupStart.Format(orkestroTimeLayout),
				End:   pickupStart.Add(orkestroWindow).Format(orkestroTimeLayout),
			},
			DropoffWindow: orkestroWindowJSON{
				Start: dropoffStart.Format(orkestroTimeLayout),
				End:   dropoffStart.Add(orkestroWindow).Format(orkestroTimeLayout),
			},
		},
		CallbackURL:         o.cfg.CallbackURL,
		MessagesCallbackURL: o.cfg.CallbackURL,
	}
}
