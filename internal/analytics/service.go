package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/settings"
)

// ProductSource lists catalog products.
type ProductSource interface {
	List(ctx context.Context, filters catalog.SearchFilters) ([]catalog.Product, error)
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

// OrderSource lists orders.
type OrderSource interface {
	List(ctx context.Context, filter orders.ListFilter) ([]orders.Order, error)
}

// CustomerSource lists customers with their counters.
type CustomerSource interface {
	List(ctx context.Context, term string) ([]customers.Customer, customers.Summary, error)
}

// GoalSource returns the goals of a year.
type GoalSource interface {
	Goals(ctx context.Context, year int) (settings.YearGoals, error)
}

// Sources groups the dashboard inputs.
type Sources struct {
	Products  ProductSource
	Orders    OrderSource
	Customers CustomerSource
	Goals     GoalSource
}

// Service builds cached dashboards.
type Service struct {
	sources           Sources
	cache             *Cache
	lowStockThreshold int
	group             singleflight.Group
	now               func() time.Time
}

// NewService wires the sources with a cache. cache may be nil.
func NewService(sources Sources, cache *Cache, lowStockThreshold int) *Service {
	return &Service{sources: sources, cache: cache, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// Dashboard returns the cached dashboard for the current month, rebuilding it
// on a miss. Concurrent misses share one rebuild.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now().UTC()
	key, err := s.cache.BuildKey(ctx, "dashboard", now.Format("2006-01"), strconv.Itoa(s.lowStockThreshold))
	if err != nil {
		return Dashboard{}, fmt.Errorf("analytics: cache key: %w", err)
	}
	ch := s.group.DoChan(key, func() (any, error) {
		var d Dashboard
		err := s.cache.FetchJSON(ctx, key, &d, func(ctx context.Context) (any, error) {
			return s.build(ctx, now)
		})
		return d, err
	})
	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Dashboard{}, res.Err
		}
		return res.Val.(Dashboard), nil
	}
}

// Goals returns the goals of year straight from the source.
func (s *Service) Goals(ctx context.Context, year int) (settings.YearGoals, error) {
	return s.sources.Goals.Goals(ctx, year)
}

// Invalidate drops every cached dashboard.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) build(ctx context.Context, now time.Time) (Dashboard, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := s.sources.Products.List(ctx, catalog.NewSearchFilters())
		if err != nil {
			return fmt.Errorf("analytics: products: %w", err)
		}
		snap.products = products
		return nil
	})
	g.Go(func() error {
		low, err := s.sources.Products.LowStock(ctx, s.lowStockThreshold)
		if err != nil {
			return fmt.Errorf("analytics: low stock: %w", err)
		}
		snap.lowStock = low
		return nil
	})
	g.Go(func() error {
		list, err := s.sources.Orders.List(ctx, orders.ListFilter{})
		if err != nil {
			return fmt.Errorf("analytics: orders: %w", err)
		}
		snap.orders = list
		return nil
	})
	g.Go(func() error {
		_, summary, err := s.sources.Customers.List(ctx, "")
		if err != nil {
			return fmt.Errorf("analytics: customers: %w", err)
		}
		snap.customers = summary
		return nil
	})
	g.Go(func() error {
		goals, err := s.sources.Goals.Goals(ctx, now.Year())
		if err != nil {
			return fmt.Errorf("analytics: goals: %w", err)
		}
		snap.goals = goals
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return buildDashboard(now, snap), nil
}
