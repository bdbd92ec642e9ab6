package couriers

import (
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
	GophrName           = "gophr"
	DefaultGophrBaseURL = "https://api.gophr.com"

	gophrCreatePath = "/v1/commercial-api/create-confirm-job"
	gophrCancelPath = "/v1/commercial-api/cancel-job"
	formContentType = "application/x-www-form-urlencoded"
)

// GophrConfig configures the daytime courier.
type GophrConfig struct {
	BaseURL string
	APIKey  string
	City    string
	Timeout time.Duration
}

// Gophr books jobs through the Gophr commercial API, which takes form-encoded
// requests and answers {"success": bool, "data": {"job_id": ...}}.
type Gophr struct {
	cfg       GophrConfig
	transport *transport
}

func NewGophr(cfg GophrConfig, client *http.Client) (*Gophr, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gophr: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGophrBaseURL
	}
	if cfg.City == "" {
		cfg.City = "London"
	}
	return &Gophr{cfg: cfg, transport: newTransport(GophrName, cfg.BaseURL, client, cfg.Timeout)}, nil
}

func (g *Gophr) Name() string {
	return GophrName
}

type gophrResponse struct {
	Success bool `json:"success"`
	Data    struct {
		JobID string `json:"job_id"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Create books a confirmed job. Urgent jobs omit earliest_pickup_time so the
// courier collects as soon as possible.
func (g *Gophr) Create(ctx context.Context, req delivery.JobRequest) (delivery.JobResult, error) {
	if err := req.Validate(); err != nil {
		return delivery.JobResult{}, err
	}

	form := g.createForm(req)
	httpReq, err := g.transport.newRequest(ctx, http.MethodPost, gophrCreatePath, formContentType,
		strings.NewReader(form.Encode()))
	if err != nil {
		return delivery.JobResult{}, err
	}

	body, err := g.transport.do(httpReq)
	if err != nil {
		return delivery.JobResult{}, g.transport.rejected(err)
	}

	var resp gophrResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return delivery.JobResult{}, delivery.NewProviderRejectedError(GophrName, 0, "unreadable response: "+err.Error())
	}
	if !resp.Success {
		reason := "success=false"
		if resp.Error != nil && resp.Error.Message != "" {
			reason = resp.Error.Message
		}
		return delivery.JobResult{}, delivery.NewProviderRejectedError(GophrName, 0, reason)
	}
	if strings.TrimSpace(resp.Data.JobID) == "" {
		return delivery.JobResult{}, delivery.NewProviderRejectedError(GophrName, 0, "missing job_id")
	}

	return delivery.JobResult{Provider: GophrName, DeliveryID: resp.Data.JobID}, nil
}

// Cancel asks Gophr to cancel the job. A job Gophr no longer knows is treated as cancelled.
func (g *Gophr) Cancel(ctx context.Context, deliveryID string) error {
	if strings.TrimSpace(deliveryID) == "" {
		return errors.New("gophr: delivery id is required")
	}

	form := url.Values{}
	form.Set("api_key", g.cfg.APIKey)
	form.Set("job_id", deliveryID)

	httpReq, err := g.transport.newRequest(ctx, http.MethodPost, gophrCancelPath, formContentType,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	if _, err = g.transport.do(httpReq); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("gophr: cancel %s: %w", deliveryID, g.transport.rejected(err))
	}
	return nil
}

func (g *Gophr) createForm(req delivery.JobRequest) url.Values {
	form := url.Values{}
	form.Set("api_key", g.cfg.APIKey)

	form.Set("pickup_address1", req.Pickup.Address)
	form.Set("pickup_postcode", req.Pickup.Postcode)
	form.Set("pickup_city", g.cfg.City)
	form.Set("pickup_company_name", req.Pickup.Name)
	form.Set("pickup_person_name", orDefault(req.Pickup.Name, "Counter"))
	form.Set("pickup_mobile_number", req.Pickup.Phone)

	form.Set("delivery_address1", req.Dropoff.Address)
	form.Set("delivery_postcode", req.Dropoff.Postcode)
	form.Set("delivery_city", g.cfg.City)
	form.Set("delivery_mobile_number", req.Dropoff.Phone)
	form.Set("delivery_person_name", orDefault(req.Dropoff.Name, "Customer"))
	if req.Notes != "" {
		form.Set("delivery_instructions", req.Notes)
	}

	form.Set("reference_number", req.Reference)
	form.Set("external_id", req.Reference)

	form.Set("size_x", "10.0")
	form.Set("size_y", "10.0")
	form.Set("size_z", "10.0")
	form.Set("weight", "0.5")

	if !req.Schedule.IsUrgent {
		form.Set("earliest_pickup_time", req.Schedule.Pickup.Format(time.RFC3339))
	}
	return form
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
