package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZapResell/ZapAdmin/app/models"
)

// Client relays events to the configured n8n automation webhook.
type Client struct {
	WebhookURL string
	AuthHeader string

	HTTPClient *http.Client
}

// NewClient builds a relay client from the stored integration config.
func NewClient(cfg *models.N8NConfig) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil, errors.New("n8n integration is not configured")
	}
	return &Client{
		WebhookURL: strings.TrimSpace(cfg.WebhookURL),
		AuthHeader: strings.TrimSpace(cfg.AuthHeader),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Relay posts the payload to the n8n webhook and returns the response body
// and status code for the automation log.
func (c *Client) Relay(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AuthHeader != "" {
		req.Header.Set("Authorization", c.AuthHeader)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, fmt.Errorf("n8n relay failed: status=%d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}
