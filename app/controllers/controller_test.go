package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/middleware"
	"github.com/ZapResell/ZapAdmin/internal/pkg/security"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testInternalToken = "test-internal-token"
)

// setupTestApp wires an in-memory database, the repository factory and a
// fiber app carrying the same route layout as production.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("INTERNAL_API_TOKEN", testInternalToken)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.FinancialEntry{},
		&models.MercadoPagoConfig{},
		&models.PagBankConfig{},
		&models.EvolutionConfig{},
		&models.N8NConfig{},
		&models.Instance{},
		&models.WebhookEvent{},
		&models.AutomationLog{},
	))
	repository.InitializeFactory(db)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	app := fiber.New()
	app.Post("/api/v1/auth/login", HandleLogin)
	app.Post("/webhook/evolution", HandleEvolutionWebhook)
	app.Post("/webhook/n8n", HandleN8NWebhook)

	auth := app.Group("/api/v1", middleware.TokenAuthMiddleware())
	auth.All("/config/mercadopago", HandleMercadoPagoConfig)
	auth.All("/config/evolution", HandleEvolutionConfig)
	auth.Get("/history/webhooks", HandleListWebhookEvents)
	auth.Get("/history/automation", HandleListAutomationLogs)
	auth.Get("/plans", HandleListPlans)
	auth.Get("/instances/:id/qrcode", HandleInstanceQRCode)
	auth.Post("/instances/:id/refresh-status", HandleRefreshInstanceStatus)

	admin := auth.Group("/admin", middleware.RequireAdmin)
	admin.Put("/clients/:id/role", HandleAssignRole)

	internal := app.Group("/internal", middleware.InternalTokenMiddleware())
	internal.Post("/subscriptions/:id/suspend", HandleInternalSuspend)

	return app
}

// seedUser stores an active user with the given role and returns it with a
// valid bearer token.
func seedUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()

	user, err := models.CreateUser("Test User", email, "s3cret-pw")
	require.NoError(t, err)
	user.Role = role
	require.NoError(t, repository.GetGlobalFactory().GetUserRepository().Create(user))

	token, err := security.GenerateToken(user.ID, role, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHandleLogin(t *testing.T) {
	app := setupTestApp(t)
	user, _ := seedUser(t, "login@example.com", models.ROLE_USER)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "login@example.com", "password": "s3cret-pw",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	// The issued token authenticates follow-up requests.
	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/plans", body["token"].(string), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "login@example.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "nobody@example.com", "password": "s3cret-pw",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Inactive accounts authenticate but are rejected.
	user.Status = models.STATUS_DISABLED
	require.NoError(t, repository.GetGlobalFactory().GetUserRepository().Update(user))
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "login@example.com", "password": "s3cret-pw",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTokenAuthRejections(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/plans", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/plans", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Token for a user row that no longer exists.
	ghost, err := security.GenerateToken(4242, models.ROLE_ADMIN, testJWTSecret, time.Hour)
	require.NoError(t, err)
	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/plans", ghost, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Inactive user with a valid token.
	user, token := seedUser(t, "inactive@example.com", models.ROLE_USER)
	user.Status = models.STATUS_INACTIVE
	require.NoError(t, repository.GetGlobalFactory().GetUserRepository().Update(user))
	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/plans", token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTokenAuthFailsClosedWithoutSecret(t *testing.T) {
	app := setupTestApp(t)
	seedUser(t, "victim@example.com", models.ROLE_ADMIN)

	// Server misconfigured with no signing secret: a token signed with the
	// empty key must still be rejected.
	t.Setenv("JWT_SECRET", "")

	claims := security.Claims{
		UserID: 1,
		Role:   models.ROLE_ADMIN,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/plans", forged, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestConfigEndpointPolicy(t *testing.T) {
	app := setupTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", models.ROLE_ADMIN)
	_, userToken := seedUser(t, "user@example.com", models.ROLE_USER)

	// Absent config reads as null for admins, not 404.
	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/config/mercadopago", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body)

	// Gateway secrets are admin-only.
	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/config/mercadopago", userToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The Evolution endpoint is readable by any logged-in client.
	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/config/evolution", userToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Non-admins cannot write any config.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/config/evolution", userToken, fiber.Map{
		"base_url": "https://evo.local", "api_key": "k",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Incomplete payloads are rejected and nothing is stored.
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/config/mercadopago", adminToken, fiber.Map{
		"public_key": "pk-only",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "access_token")

	cfg, err := repository.GetGlobalFactory().GetConfigRepository().GetMercadoPago()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	// A complete payload is stored and read back.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/config/mercadopago", adminToken, fiber.Map{
		"access_token": "APP_USR-1", "public_key": "pk-1", "enabled": true,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/config/mercadopago", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "APP_USR-1", body["access_token"])

	// Unsupported methods are 405.
	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/config/mercadopago", adminToken, nil)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}

func TestEvolutionWebhookFlow(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := seedUser(t, "owner@example.com", models.ROLE_USER)

	instanceRepo := repository.GetGlobalFactory().GetInstanceRepository()
	require.NoError(t, instanceRepo.Create(&models.Instance{
		UUID: "7b7f0f2e-0000-4000-8000-000000000001", Name: "zap-01", UserID: owner.ID,
	}))

	// A connect flips the status and stamps the connection time.
	resp, body := doJSON(t, app, fiber.MethodPost, "/webhook/evolution", "", fiber.Map{
		"event": "connection.update", "instance": fiber.Map{"instanceName": "zap-01", "state": "open"},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected", body["status"])
	assert.Equal(t, true, body["audited"])

	row, err := instanceRepo.GetByName("zap-01")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusConnected, row.ConnectionStatus)
	require.NotNil(t, row.LastConnectedAt)
	connectedAt := *row.LastConnectedAt

	// A disconnect flips the status but keeps the last connection time.
	resp, body = doJSON(t, app, fiber.MethodPost, "/webhook/evolution", "", fiber.Map{
		"event": "connection.update", "instance": fiber.Map{"instanceName": "zap-01", "state": "close"},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "disconnected", body["status"])

	row, err = instanceRepo.GetByName("zap-01")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusDisconnected, row.ConnectionStatus)
	require.NotNil(t, row.LastConnectedAt)
	assert.Equal(t, connectedAt.Unix(), row.LastConnectedAt.Unix())

	// Both deliveries were audited.
	events, err := repository.GetGlobalFactory().GetHistoryRepository().ListWebhookEvents(repository.HistoryFilter{IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// Events for untracked instances are audited and acknowledged.
	resp, body = doJSON(t, app, fiber.MethodPost, "/webhook/evolution", "", fiber.Map{
		"event": "connection.update", "instance": fiber.Map{"instanceName": "ghost", "state": "open"},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ignored"])

	// Payloads with no resolvable instance name are rejected.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/webhook/evolution", "", fiber.Map{"state": "open"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHistoryEndpointScopingAndTags(t *testing.T) {
	app := setupTestApp(t)
	me, myToken := seedUser(t, "me@example.com", models.ROLE_USER)
	_, adminToken := seedUser(t, "boss@example.com", models.ROLE_ADMIN)

	history := repository.GetGlobalFactory().GetHistoryRepository()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, history.CreateWebhookEvent(&models.WebhookEvent{
		UserID: me.ID, InstanceName: "zap-01", EventType: "connection.update", CreatedAt: base,
	}))
	require.NoError(t, history.CreateWebhookEvent(&models.WebhookEvent{
		UserID: me.ID, InstanceName: "zap-01", EventType: "qrcode.updated", CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, history.CreateWebhookEvent(&models.WebhookEvent{
		UserID: me.ID + 100, InstanceName: "zap-99", EventType: "connection.update", CreatedAt: base.Add(2 * time.Minute),
	}))

	// Owner sees only their rows, newest first.
	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/history/webhooks", myToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["count"])
	events := body["events"].([]any)
	assert.Equal(t, "qrcode.updated", events[0].(map[string]any)["event_type"])

	// Admin sees everything.
	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/history/webhooks", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["count"])

	// Tag filter narrows by event type.
	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/history/webhooks?events=qrcode.updated", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])
}

func TestAssignRoleEndpoint(t *testing.T) {
	app := setupTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", models.ROLE_ADMIN)
	target, userToken := seedUser(t, "target@example.com", models.ROLE_USER)

	// Non-admins cannot assign roles.
	resp, _ := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/admin/clients/%d/role", target.ID), userToken, fiber.Map{"role": models.ROLE_RESELLER})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Unknown role tags are rejected.
	resp, _ = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/admin/clients/%d/role", target.ID), adminToken, fiber.Map{"role": "root"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/admin/clients/%d/role", target.ID), adminToken, fiber.Map{"role": models.ROLE_RESELLER})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ROLE_RESELLER, body["role"])

	reloaded, err := repository.GetGlobalFactory().GetUserRepository().GetByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_RESELLER, reloaded.Role)

	resp, _ = doJSON(t, app, fiber.MethodPut, "/api/v1/admin/clients/9999/role", adminToken, fiber.Map{"role": models.ROLE_USER})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInternalSuspendEndpoint(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := seedUser(t, "owner@example.com", models.ROLE_USER)

	subRepo := repository.GetGlobalFactory().GetSubscriptionRepository()
	sub := &models.Subscription{UserID: owner.ID, Status: models.SubscriptionStatusActive}
	require.NoError(t, subRepo.Create(sub))

	// Wrong token: rejected and nothing written.
	req := httptest.NewRequest(fiber.MethodPost, fmt.Sprintf("/internal/subscriptions/%d/suspend", sub.ID), nil)
	req.Header.Set("X-Internal-Token", "wrong")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	row, err := subRepo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, row.Status)

	// Correct token flips the row.
	req = httptest.NewRequest(fiber.MethodPost, fmt.Sprintf("/internal/subscriptions/%d/suspend", sub.ID), nil)
	req.Header.Set("X-Internal-Token", testInternalToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	row, err = subRepo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusSuspended, row.Status)

	req = httptest.NewRequest(fiber.MethodPost, "/internal/subscriptions/9999/suspend", nil)
	req.Header.Set("X-Internal-Token", testInternalToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// The QR endpoint proxies the Evolution server, persists the returned code on
// the instance row and treats an unavailable cache as a plain miss.
func TestInstanceQRCodeEndpoint(t *testing.T) {
	app := setupTestApp(t)
	user, token := seedUser(t, "qr@example.com", models.ROLE_USER)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/instance/connect/"):
			fmt.Fprint(w, `{"base64":"data:image/png;base64,QR"}`)
		case strings.HasPrefix(r.URL.Path, "/instance/connectionState/"):
			fmt.Fprint(w, `{"instance":{"state":"open"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	_, err := repository.GetGlobalFactory().GetConfigRepository().UpsertEvolution(&models.EvolutionConfig{
		BaseURL: upstream.URL,
		APIKey:  "test-key",
		Enabled: true,
	})
	require.NoError(t, err)

	instance := &models.Instance{
		UUID:             "7b7f0f2e-0000-4000-8000-0000000000aa",
		Name:             "zap-qr-01",
		UserID:           user.ID,
		ConnectionStatus: models.ConnectionStatusDisconnected,
	}
	require.NoError(t, repository.GetGlobalFactory().GetInstanceRepository().Create(instance))

	resp, body := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/instances/%d/qrcode", instance.ID), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "data:image/png;base64,QR", body["qr_code"])

	row, err := repository.GetGlobalFactory().GetInstanceRepository().GetByName("zap-qr-01")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QR", row.QRCode)

	// Polling the live state twice in a row keeps succeeding even when the
	// second write stores the status the row already has.
	for i := 0; i < 2; i++ {
		resp, body = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/instances/%d/refresh-status", instance.ID), token, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, models.ConnectionStatusConnected, body["status"])
	}
}
