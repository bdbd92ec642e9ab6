package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultUltraMsgBaseURL = "https://api.ultramsg.com"

type UltraMsgConfig struct {
	BaseURL  string
	Instance string
	Token    string
	To       string
	Timeout  time.Duration
}

// UltraMsgChat posts operator chat messages to a WhatsApp number through UltraMsg.
type UltraMsgChat struct {
	endpoint string
	token    string
	to       string
	client   *http.Client
}

func NewUltraMsgChat(cfg UltraMsgConfig, client *http.Client) (*UltraMsgChat, error) {
	if cfg.Instance == "" || cfg.Token == "" || cfg.To == "" {
		return nil, errors.New("ultramsg: instance, token and recipient are required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultUltraMsgBaseURL
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &UltraMsgChat{
		endpoint: fmt.Sprintf("%s/%s/messages/chat", base, url.PathEscape(cfg.Instance)),
		token:    cfg.Token,
		to:       cfg.To,
		client:   client,
	}, nil
}

func (c *UltraMsgChat) SendChatMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("token", c.token)
	form.Set("to", c.to)
	form.Set("body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ultramsg: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ultramsg: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
