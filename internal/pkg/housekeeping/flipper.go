package housekeeping

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZapResell/ZapAdmin/internal/pkg/env"
)

// httpFlipper calls the internal suspend endpoint with the elevated service
// token, so the housekeeping flip runs through the same handler as every
// other status change.
type httpFlipper struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPFlipper builds the production status flipper from the environment.
// INTERNAL_API_TOKEN is required; the base URL defaults to the local server.
func NewHTTPFlipper() StatusFlipper {
	base := strings.TrimRight(env.GetEnv("INTERNAL_BASE_URL", fmt.Sprintf("http://localhost:%s", env.GetEnv("APP_PORT", "4000"))), "/")
	return &httpFlipper{
		baseURL: base,
		token:   env.MustGetEnv("INTERNAL_API_TOKEN"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (f *httpFlipper) Suspend(ctx context.Context, subscriptionID uint) error {
	url := fmt.Sprintf("%s/internal/subscriptions/%d/suspend", f.baseURL, subscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Internal-Token", f.token)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("suspend call failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
