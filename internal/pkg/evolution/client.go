package evolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZapResell/ZapAdmin/app/models"
)

// Client talks to the Evolution API server that hosts the resold WhatsApp
// instances. Base URL and key come from the stored EvolutionConfig row.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

// NewClient builds a client from the stored integration config.
func NewClient(cfg *models.EvolutionConfig) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("evolution integration is not configured")
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		APIKey:  strings.TrimSpace(cfg.APIKey),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// ConnectionState fetches the live state the Evolution server reports for an
// instance.
func (c *Client) ConnectionState(ctx context.Context, instanceName string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/instance/connectionState/"+instanceName, nil)
	if err != nil {
		return "", err
	}

	var out struct {
		Instance struct {
			State string `json:"state"`
		} `json:"instance"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	state := out.Instance.State
	if state == "" {
		state = out.State
	}
	return state, nil
}

// Logout asks the Evolution server to disconnect an instance. Used by the
// housekeeping job when a subscription's credits expire.
func (c *Client) Logout(ctx context.Context, instanceName string) error {
	_, err := c.do(ctx, http.MethodDelete, "/instance/logout/"+instanceName, nil)
	return err
}

// FetchQRCode retrieves the pairing QR payload for an instance.
func (c *Client) FetchQRCode(ctx context.Context, instanceName string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/instance/connect/"+instanceName, nil)
	if err != nil {
		return "", err
	}

	var out struct {
		Base64 string `json:"base64"`
		QRCode struct {
			Base64 string `json:"base64"`
		} `json:"qrcode"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.Base64 != "" {
		return out.Base64, nil
	}
	return out.QRCode.Base64, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("evolution request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}
