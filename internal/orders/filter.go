package orders

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// ListFilter narrows the order list in the back-office.
type ListFilter struct {
	// Query matches the order id, customer name or any product name.
	Query string `json:"query"`
	// Status is a concrete status or "all".
	Status string `json:"status"`
}

// FilterFromQuery reads the q and status parameters.
func FilterFromQuery(values url.Values) ListFilter {
	f := ListFilter{Query: strings.TrimSpace(values.Get("q")), Status: "all"}
	if v := values.Get("status"); v != "" {
		f.Status = v
	}
	return f
}

// Apply returns matching orders in input order; never nil.
func (f ListFilter) Apply(orders []Order) []Order {
	fold := cases.Fold()
	query := fold.String(f.Query)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.Status != "" && f.Status != "all" && string(o.Status) != f.Status {
			continue
		}
		if query != "" && !matchesQuery(fold, o, query) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesQuery(fold cases.Caser, o Order, query string) bool {
	if strings.Contains(fold.String(o.ID), query) || strings.Contains(fold.String(o.Customer.Name), query) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(fold.String(item.ProductName), query) {
			return true
		}
	}
	return false
}
