package catalog

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// All is the sentinel meaning "no constraint" for a filter dimension.
const All = "all"

// SearchFilters narrows a product collection. Every dimension is either a
// concrete value or All; an empty string is treated as All.
type SearchFilters struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Size     string `json:"size"`
	Status   string `json:"status"`
}

// NewSearchFilters returns filters with every dimension unconstrained.
func NewSearchFilters() SearchFilters {
	return SearchFilters{Category: All, Brand: All, Size: All, Status: All}
}

// FiltersFromQuery reads filters from URL query parameters.
func FiltersFromQuery(values url.Values) SearchFilters {
	f := NewSearchFilters()
	f.Query = strings.TrimSpace(values.Get("q"))
	if v := values.Get("category"); v != "" {
		f.Category = v
	}
	if v := values.Get("brand"); v != "" {
		f.Brand = v
	}
	if v := values.Get("size"); v != "" {
		f.Size = v
	}
	if v := values.Get("status"); v != "" {
		f.Status = v
	}
	return f
}

// Reset restores every dimension to All.
func (f *SearchFilters) Reset() {
	*f = NewSearchFilters()
}

// HasActive reports whether at least one dimension is constrained.
func (f SearchFilters) HasActive() bool {
	return f.Query != "" || constrained(f.Category) || constrained(f.Brand) || constrained(f.Size) || constrained(f.Status)
}

func constrained(v string) bool {
	return v != "" && v != All
}

// Filter returns the products satisfying every constrained dimension, in
// input order. The result is never nil.
func Filter(products []Product, f SearchFilters) []Product {
	m := newMatcher(f)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether a single product satisfies the filters.
func (f SearchFilters) Matches(p Product) bool {
	return newMatcher(f).match(p)
}

type matcher struct {
	filters SearchFilters
	fold    cases.Caser
	query   string
}

func newMatcher(f SearchFilters) *matcher {
	// Casers keep state, so each matcher owns one.
	m := &matcher{filters: f, fold: cases.Fold()}
	if f.Query != "" {
		m.query = m.fold.String(f.Query)
	}
	return m
}

func (m *matcher) match(p Product) bool {
	f := m.filters
	if m.query != "" {
		if !strings.Contains(m.fold.String(p.Name), m.query) && !strings.Contains(m.fold.String(p.Brand.Name()), m.query) {
			return false
		}
	}
	if constrained(f.Category) && string(p.Category) != f.Category {
		return false
	}
	if constrained(f.Brand) && p.Brand.Name() != f.Brand {
		return false
	}
	if constrained(f.Size) && !p.HasSize(f.Size) {
		return false
	}
	if constrained(f.Status) && string(p.Status) != f.Status {
		return false
	}
	return true
}
