package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sneakerstore/sneakerstore/internal/analytics"
	"github.com/sneakerstore/sneakerstore/internal/auth"
	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/export"
	"github.com/sneakerstore/sneakerstore/internal/observability"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/settings"
	"github.com/sneakerstore/sneakerstore/internal/shared"
	_ "github.com/sneakerstore/sneakerstore/internal/testing/guard"
	"github.com/sneakerstore/sneakerstore/jobs"
)

type recordingNotifier struct {
	orders []string
}

func (n *recordingNotifier) OrderPlaced(ctx context.Context, orderID string) error {
	n.orders = append(n.orders, orderID)
	return nil
}

// client keeps the session cookie and CSRF token between requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	token   string
}

func (c *client) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(shared.CSRFHeader, c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *client) refreshToken() {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/auth/session", "")
	require.Equal(c.t, http.StatusOK, rec.Code)
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &body))
	c.token = body.CSRFToken
}

func newTestServer(t *testing.T) (*client, *recordingNotifier) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		SessionTTL:        time.Hour,
		CartTTL:           time.Hour,
		IdempotencyTTL:    time.Hour,
		AdminEmail:        "admin@sneakerstore.com",
		AdminName:         "Administrateur",
		AdminPasswordHash: string(hash),
		OrderPhone:        "+221 77 000 00 00",
		LowStockThreshold: 5,
		AnalyticsCacheTTL: time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	notifier := &recordingNotifier{}
	metrics := observability.NewMetrics()
	services, err := NewServices(context.Background(), cfg, logger, redisClient, MemoryBackends(time.Now()), ServiceOptions{
		Notifier: notifier,
		Recorder: metrics,
	})
	require.NoError(t, err)

	sessions := shared.NewSessionManager(redisClient, "sneakerstore_session", "secret", cfg.SessionTTL, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	exporter := export.NewXLSX()

	router := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessions,
		CSRFManager:      csrf,
		AuthService:      services.Auth,
		AuthHandler:      auth.NewHandler(logger, services.Auth, sessions, csrf),
		CatalogHandler:   catalog.NewHandler(logger, services.Catalog, services.Linker, exporter),
		CartHandler:      cart.NewHandler(logger, services.Cart),
		OrdersHandler:    orders.NewHandler(logger, services.Orders, exporter),
		CustomersHandler: customers.NewHandler(logger, services.Customers),
		SettingsHandler:  settings.NewHandler(logger, services.Settings),
		AnalyticsHandler: analytics.NewHandler(logger, services.Analytics),
		JobHandler:       jobs.NewHandler(nil, logger),
		Metrics:          metrics,
	})
	return &client{t: t, handler: router, cookies: map[string]*http.Cookie{}}, notifier
}

func TestHealthz(t *testing.T) {
	c, _ := newTestServer(t)
	rec := c.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStorefrontListing(t *testing.T) {
	c, _ := newTestServer(t)
	rec := c.do(http.MethodGet, "/api/catalog/products?q=nike&category=chaussures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nike Air Max 270")
	assert.NotContains(t, rec.Body.String(), "Adidas Ultraboost")
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	c, _ := newTestServer(t)
	c.do(http.MethodGet, "/auth/session", "")

	rec := c.do(http.MethodPost, "/api/cart/items", `{"productId":1,"size":"42"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c.token = "forged"
	rec = c.do(http.MethodPost, "/api/cart/items", `{"productId":1,"size":"42"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCartCheckoutFlow(t *testing.T) {
	c, notifier := newTestServer(t)
	c.refreshToken()

	for range 2 {
		rec := c.do(http.MethodPost, "/api/cart/items", `{"productId":1,"size":"42"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := c.do(http.MethodPost, "/api/cart/items", `{"productId":8,"size":"Taille 5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cartBody struct {
		Items []cart.Line `json:"items"`
		Total int64       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartBody))
	require.Len(t, cartBody.Items, 2)
	assert.Equal(t, int64(2*45000+15000), cartBody.Total)

	rec = c.do(http.MethodGet, "/api/cart/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://wa.me/221770000000?text=")

	checkout := `{"name":"Awa Ndiaye","phone":"+221 77 123 45 67","address":"Dakar, Plateau"}`
	rec = c.do(http.MethodPost, "/api/cart/checkout", checkout, cart.IdempotencyHeader, "key-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt cart.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, int64(105000), receipt.Total)
	assert.Equal(t, []string{receipt.OrderID}, notifier.orders)

	rec = c.do(http.MethodPost, "/api/cart/checkout", checkout, cart.IdempotencyHeader, "key-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), receipt.OrderID)

	rec = c.do(http.MethodGet, "/api/cart", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartBody))
	assert.Empty(t, cartBody.Items)
	assert.Zero(t, cartBody.Total)
}

func TestAdminRequiresLogin(t *testing.T) {
	c, _ := newTestServer(t)
	for _, target := range []string{"/admin/products", "/admin/orders", "/admin/dashboard", "/admin/settings", "/admin/customers", "/admin/jobs/health"} {
		rec := c.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	c.refreshToken()
	rec := c.do(http.MethodPost, "/auth/login", `{"email":"admin@sneakerstore.com","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminSession(t *testing.T) {
	c, _ := newTestServer(t)
	c.refreshToken()

	rec := c.do(http.MethodPost, "/auth/login", `{"email":"admin@sneakerstore.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	c.token = login.CSRFToken

	for _, target := range []string{"/admin/products", "/admin/orders", "/admin/dashboard", "/admin/settings", "/admin/customers", "/admin/jobs/health"} {
		rec := c.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	rec = c.do(http.MethodPost, "/admin/products/1/stock", `{"input":"42*7, 99, 43*2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"rejected":["99"]`)

	rec = c.do(http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, "/admin/products", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	c, _ := newTestServer(t)
	c.do(http.MethodGet, "/api/catalog/meta", "")
	rec := c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sneakerstore_http_requests_total{code="200",route="/api/catalog/meta"}`)
}
