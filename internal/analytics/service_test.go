package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/settings"
)

var fixedNow = time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	orders *orders.Service
	cache  *Cache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCache(client, time.Minute)
	goalStore := settings.NewRedisStore(client)
	require.NoError(t, goalStore.SeedGoals(context.Background(), settings.SeedGoals()))

	// The order service is built without an invalidator so cache tests can
	// observe stale snapshots.
	orderSvc := orders.NewService(orders.NewMemoryRepository(orders.SeedOrders()), nil, nil, nil)
	svc := NewService(Sources{
		Products:  catalog.NewService(catalog.NewMemoryRepository(catalog.SeedProducts(fixedNow)), nil, nil),
		Orders:    orderSvc,
		Customers: customers.NewService(customers.NewMemoryRepository(customers.SeedCustomers())),
		Goals:     settings.NewService(goalStore, nil, nil),
	}, cache, 10)
	svc.now = func() time.Time { return fixedNow }
	return fixture{svc: svc, orders: orderSvc, cache: cache}
}

func TestDashboardAggregates(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Counts{Products: 9, Orders: 4, Customers: 4}, d.Counts)
	assert.Equal(t, int64(45000+104000+68000), d.Revenue)
	assert.Equal(t, int64(217000/3), d.AverageOrder)
	require.Len(t, d.OrdersByStatus, 4)
	for _, sc := range d.OrdersByStatus {
		assert.Equal(t, 1, sc.Count, string(sc.Status))
	}

	require.Len(t, d.RecentOrders, 4)
	assert.Equal(t, "CMD-001", d.RecentOrders[0].ID)

	require.Len(t, d.TopProducts, 5)
	assert.Equal(t, "Converse Chuck Taylor", d.TopProducts[0].Name)
	assert.Equal(t, int64(25000*64), d.TopProducts[0].Revenue)

	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "New Balance 990v5", d.LowStock[0].Name)
	assert.Equal(t, 8, d.LowStock[0].TotalStock)

	assert.Equal(t, "Janvier", d.Goal.Month)
	assert.Equal(t, int64(2000000), d.Goal.Target)
	assert.InDelta(t, 90.0, d.Goal.Percent, 0.001)

	require.Len(t, d.MonthlyRevenue, 6)
	last := d.MonthlyRevenue[5]
	assert.Equal(t, "Janvier", last.Month)
	assert.Equal(t, 2024, last.Year)
	assert.Equal(t, int64(217000), last.Revenue)
	assert.Equal(t, 3, last.Orders)
	assert.Equal(t, "Août", d.MonthlyRevenue[0].Month)
	assert.Equal(t, 2023, d.MonthlyRevenue[0].Year)

	require.Len(t, d.SalesByCategory, 4)
	assert.Equal(t, catalog.CategoryShoes, d.SalesByCategory[0].Category)
	assert.Equal(t, 237, d.SalesByCategory[0].Sales)
	var percent float64
	for _, c := range d.SalesByCategory {
		percent += c.Percent
	}
	assert.InDelta(t, 100.0, percent, 0.001)

	assert.Equal(t, 1, d.CustomerSummary.VIP)
}

func TestDashboardCachedUntilBump(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, cart.Checkout{
		Customer: cart.Customer{Name: "Aïcha", Phone: "1"},
		Lines:    []cart.Line{{ProductID: 9, Name: "Casquette Adidas", Price: 8000, Size: "unique", Quantity: 1}},
	})
	require.NoError(t, err)

	cached, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Counts.Orders, cached.Counts.Orders)

	require.NoError(t, f.svc.Invalidate(ctx))
	fresh, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Counts.Orders+1, fresh.Counts.Orders)
}

func TestCacheVersioning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v1, err := f.cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	key, err := f.cache.BuildKey(ctx, "dashboard", "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:2024-01:1", key)

	require.NoError(t, f.cache.Bump(ctx))
	key, err = f.cache.BuildKey(ctx, "dashboard", "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:2024-01:2", key)
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	var out int
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return 7, nil
	}
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	assert.Equal(t, 7, out)
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Bump(ctx))
}

func TestGoalsChart(t *testing.T) {
	doc, err := GoalsChart(settings.YearGoals{
		Year:  2024,
		Goals: settings.BuildGoals(2024, map[string]int64{"Janvier": 2000000}, map[string]int64{"Janvier": 1800000}),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "<svg"))
	assert.Contains(t, doc, "Objectifs 2024")
	assert.Equal(t, 24, strings.Count(doc, "<rect")-2)
	assert.Contains(t, doc, ">Jan.<")
	assert.Contains(t, doc, ">Mai<")

	_, err = GoalsChart(settings.YearGoals{Year: 2024})
	assert.Error(t, err)
}

func TestCompactAmount(t *testing.T) {
	assert.Equal(t, "2M", compactAmount(2000000))
	assert.Equal(t, "1.5M", compactAmount(1500000))
	assert.Equal(t, "800k", compactAmount(800000))
	assert.Equal(t, "0", compactAmount(0))
}

func TestHandlerDashboardAndChart(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(nil, f.svc)
	h.now = func() time.Time { return fixedNow }
	r := chi.NewRouter()
	r.Route("/admin/dashboard", h.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 9, d.Counts.Products)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/dashboard/refresh", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard/goals.svg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard/goals.svg?year=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
