// Package customers keeps the customer book used by the back-office and
// updated when orders are placed.
package customers

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Status classifies a customer.
type Status string

const (
	StatusVIP      Status = "VIP"
	StatusActive   Status = "Actif"
	StatusNew      Status = "Nouveau"
	StatusInactive Status = "Inactif"
)

// Customer is a buyer with order aggregates.
type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	TotalOrders int       `json:"totalOrders"`
	TotalSpent  int64     `json:"totalSpent"`
	LastOrder   time.Time `json:"lastOrder"`
	Status      Status    `json:"status"`
	JoinDate    time.Time `json:"joinDate"`
	Notes       string    `json:"notes,omitempty"`
}

// Search returns customers whose name or email contains term ignoring case,
// or whose phone contains term as typed. An empty term matches everyone.
func Search(customers []Customer, term string) []Customer {
	term = strings.TrimSpace(term)
	out := make([]Customer, 0, len(customers))
	if term == "" {
		return append(out, customers...)
	}
	fold := cases.Fold()
	folded := fold.String(term)
	for _, c := range customers {
		if strings.Contains(fold.String(c.Name), folded) ||
			strings.Contains(fold.String(c.Email), folded) ||
			strings.Contains(c.Phone, term) {
			out = append(out, c)
		}
	}
	return out
}

// Summary holds the counters shown above the customer list.
type Summary struct {
	Total      int   `json:"total"`
	VIP        int   `json:"vip"`
	New        int   `json:"new"`
	TotalSpent int64 `json:"totalSpent"`
}

// Summarize computes counters over customers.
func Summarize(customers []Customer) Summary {
	s := Summary{Total: len(customers)}
	for _, c := range customers {
		switch c.Status {
		case StatusVIP:
			s.VIP++
		case StatusNew:
			s.New++
		}
		s.TotalSpent += c.TotalSpent
	}
	return s
}

func seedDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedCustomers returns the demonstration customer book.
func SeedCustomers() []Customer {
	return []Customer{
		{
			ID: 1, Name: "Jean Dupont", Email: "jean.dupont@email.com", Phone: "+237 690 123 456", Address: "Douala, Akwa",
			TotalOrders: 5, TotalSpent: 225000, LastOrder: seedDate(2024, time.January, 15), Status: StatusActive,
			JoinDate: seedDate(2023, time.August, 15),
		},
		{
			ID: 2, Name: "Marie Kouam", Email: "marie.kouam@email.com", Phone: "+237 691 234 567", Address: "Yaoundé, Bastos",
			TotalOrders: 8, TotalSpent: 416000, LastOrder: seedDate(2024, time.January, 14), Status: StatusVIP,
			JoinDate: seedDate(2023, time.May, 20),
		},
		{
			ID: 3, Name: "Paul Mbarga", Email: "paul.mbarga@email.com", Phone: "+237 692 345 678", Address: "Douala, Bonanjo",
			TotalOrders: 3, TotalSpent: 204000, LastOrder: seedDate(2024, time.January, 13), Status: StatusActive,
			JoinDate: seedDate(2023, time.November, 10),
		},
		{
			ID: 4, Name: "Sophie Nkomo", Email: "sophie.nkomo@email.com", Phone: "+237 693 456 789", Address: "Yaoundé, Melen",
			TotalOrders: 1, TotalSpent: 25000, LastOrder: seedDate(2024, time.January, 12), Status: StatusNew,
			JoinDate: seedDate(2024, time.January, 12),
		},
	}
}
