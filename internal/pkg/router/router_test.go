package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutedApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	InstallRouter(app)
	return app
}

// OPTIONS requests must be answered without credentials, whether or not the
// client sends the CORS preflight headers.
func TestOptionsRequestsSkipAuth(t *testing.T) {
	app := newRoutedApp(t)

	tests := []struct {
		name   string
		target string
	}{
		{name: "config endpoint", target: "/api/v1/config/mercadopago"},
		{name: "collection endpoint", target: "/api/v1/plans"},
		{name: "nested endpoint", target: "/api/v1/admin/clients"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodOptions, tt.target, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		})
	}
}

func TestOptionsPreflightCarriesCORSHeaders(t *testing.T) {
	app := newRoutedApp(t)

	req := httptest.NewRequest(fiber.MethodOptions, "/api/v1/config/evolution", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", fiber.MethodPut)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// Non-OPTIONS methods on the same routes still go through the token check.
func TestAuthenticatedRoutesStillRejectAnonymous(t *testing.T) {
	app := newRoutedApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/config/mercadopago", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
