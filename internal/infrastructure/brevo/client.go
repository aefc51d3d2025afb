package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"ColdMailer/internal/config"
	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// Client sends transactional emails through the Brevo SMTP API.
type Client struct {
	endpoint    string
	apiKey      string
	senderName  string
	senderEmail string
	limiter     *rate.Limiter
	client      *http.Client
}

var _ ports.Mailer = (*Client)(nil)

// NewClient registers API key and sender identity.
func NewClient(cfg config.MailConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		limiter:     limiter,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      contact   `json:"sender"`
	To          []contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// Send posts the message; Brevo answers 201 on success.
func (c *Client) Send(ctx context.Context, email domain.Email) (domain.SendReceipt, error) {
	if c.apiKey == "" || c.endpoint == "" || c.client == nil {
		return domain.SendReceipt{}, fmt.Errorf("brevo client misconfigured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.SendReceipt{}, fmt.Errorf("wait for send slot: %w", err)
		}
	}

	body, err := json.Marshal(sendRequest{
		Sender:      contact{Name: c.senderName, Email: c.senderEmail},
		To:          []contact{{Email: email.To}},
		Subject:     email.Subject,
		HTMLContent: email.HTML,
	})
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("read response: %w", err)
	}

	return domain.SendReceipt{StatusCode: resp.StatusCode, Body: string(payload)}, nil
}
