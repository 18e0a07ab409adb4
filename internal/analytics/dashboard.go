// Package analytics builds the back-office dashboard from the catalog,
// orders, customers and goals, and caches it in Redis.
package analytics

import (
	"sort"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/settings"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
	revenueWindow     = 6
)

// Counts are the headline totals.
type Counts struct {
	Products  int `json:"products"`
	Orders    int `json:"orders"`
	Customers int `json:"customers"`
}

type StatusCount struct {
	Status orders.Status `json:"status"`
	Count  int           `json:"count"`
}

// TopProduct ranks a product by units sold.
type TopProduct struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Sales    int              `json:"sales"`
	Revenue  int64            `json:"revenue"`
}

type LowStockItem struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	TotalStock int            `json:"totalStock"`
	Status     catalog.Status `json:"status"`
}

// GoalProgress compares the current month with its goal.
type GoalProgress struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	Target       int64   `json:"target"`
	Achieved     int64   `json:"achieved"`
	Percent      float64 `json:"percent"`
	YearTarget   int64   `json:"yearTarget"`
	YearAchieved int64   `json:"yearAchieved"`
}

type MonthRevenue struct {
	Month   string `json:"month"`
	Year    int    `json:"year"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// CategorySales is the share of units sold per category.
type CategorySales struct {
	Category catalog.Category `json:"category"`
	Sales    int              `json:"sales"`
	Percent  float64          `json:"percent"`
}

// Dashboard is the aggregated back-office overview.
type Dashboard struct {
	GeneratedAt     time.Time         `json:"generatedAt"`
	Counts          Counts            `json:"counts"`
	Revenue         int64             `json:"revenue"`
	AverageOrder    int64             `json:"averageOrder"`
	OrdersByStatus  []StatusCount     `json:"ordersByStatus"`
	RecentOrders    []orders.Order    `json:"recentOrders"`
	TopProducts     []TopProduct      `json:"topProducts"`
	LowStock        []LowStockItem    `json:"lowStock"`
	Goal            GoalProgress      `json:"goal"`
	MonthlyRevenue  []MonthRevenue    `json:"monthlyRevenue"`
	SalesByCategory []CategorySales   `json:"salesByCategory"`
	CustomerSummary customers.Summary `json:"customerSummary"`
}

// snapshot is the raw data a dashboard is computed from.
type snapshot struct {
	products  []catalog.Product
	lowStock  []catalog.Product
	orders    []orders.Order
	customers customers.Summary
	goals     settings.YearGoals
}

func buildDashboard(now time.Time, s snapshot) Dashboard {
	d := Dashboard{
		GeneratedAt: now,
		Counts: Counts{
			Products:  len(s.products),
			Orders:    len(s.orders),
			Customers: s.customers.Total,
		},
		CustomerSummary: s.customers,
	}

	byStatus := make(map[orders.Status]int, len(orders.Statuses))
	billable := 0
	for _, o := range s.orders {
		byStatus[o.Status]++
		d.Revenue += o.Revenue()
		if o.Status != orders.StatusCancelled {
			billable++
		}
	}
	if billable > 0 {
		d.AverageOrder = d.Revenue / int64(billable)
	}
	for _, status := range orders.Statuses {
		d.OrdersByStatus = append(d.OrdersByStatus, StatusCount{Status: status, Count: byStatus[status]})
	}

	d.RecentOrders = recentOrders(s.orders, recentOrdersLimit)
	d.TopProducts = topProducts(s.products, topProductsLimit)
	d.LowStock = make([]LowStockItem, 0, len(s.lowStock))
	for _, p := range s.lowStock {
		d.LowStock = append(d.LowStock, LowStockItem{ID: p.ID, Name: p.Name, TotalStock: p.TotalStock(), Status: p.Status})
	}
	d.Goal = goalProgress(now, s.goals)
	d.MonthlyRevenue = monthlyRevenue(now, s.orders, revenueWindow)
	d.SalesByCategory = salesByCategory(s.products)
	return d
}

func recentOrders(list []orders.Order, limit int) []orders.Order {
	sorted := append([]orders.Order(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func topProducts(products []catalog.Product, limit int) []TopProduct {
	ranked := make([]TopProduct, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, TopProduct{
			ID: p.ID, Name: p.Name, Category: p.Category, Sales: p.Sales, Revenue: p.Price * int64(p.Sales),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Sales > ranked[j].Sales })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func goalProgress(now time.Time, year settings.YearGoals) GoalProgress {
	progress := GoalProgress{Month: settings.MonthName(now.Month()), Year: now.Year()}
	progress.YearTarget, progress.YearAchieved = year.YearTarget, year.YearAchieved
	for _, g := range year.Goals {
		if g.Month == progress.Month {
			progress.Target = g.Target
			progress.Achieved = g.Achieved
			progress.Percent = g.Achievement()
			break
		}
	}
	return progress
}

// monthlyRevenue buckets non-cancelled revenue over the window months ending
// with the month of now, oldest first.
func monthlyRevenue(now time.Time, list []orders.Order, window int) []MonthRevenue {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(window - 1), 0)
	buckets := make([]MonthRevenue, window)
	for i := range buckets {
		m := first.AddDate(0, i, 0)
		buckets[i] = MonthRevenue{Month: settings.MonthName(m.Month()), Year: m.Year()}
	}
	for _, o := range list {
		if o.Status == orders.StatusCancelled {
			continue
		}
		d := o.Date.UTC()
		idx := (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())
		if idx < 0 || idx >= window {
			continue
		}
		buckets[idx].Revenue += o.Total
		buckets[idx].Orders++
	}
	return buckets
}

func salesByCategory(products []catalog.Product) []CategorySales {
	totals := make(map[catalog.Category]int, len(catalog.Categories))
	all := 0
	for _, p := range products {
		totals[p.Category] += p.Sales
		all += p.Sales
	}
	out := make([]CategorySales, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		share := CategorySales{Category: c, Sales: totals[c]}
		if all > 0 {
			share.Percent = float64(totals[c]) / float64(all) * 100
		}
		out = append(out, share)
	}
	return out
}
