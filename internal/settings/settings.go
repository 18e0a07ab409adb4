// Package settings stores the shop settings record and the monthly sales
// goals.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// StoreSettings is the single shop configuration record.
type StoreSettings struct {
	StoreName          string `json:"storeName"`
	StoreDescription   string `json:"storeDescription"`
	StoreEmail         string `json:"storeEmail"`
	StorePhone         string `json:"storePhone"`
	StoreAddress       string `json:"storeAddress"`
	Currency           string `json:"currency"`
	Language           string `json:"language"`
	EmailNotifications bool   `json:"emailNotifications"`
	SMSNotifications   bool   `json:"smsNotifications"`
	OrderNotifications bool   `json:"orderNotifications"`
	LowStockAlerts     bool   `json:"lowStockAlerts"`
	MaintenanceMode    bool   `json:"maintenanceMode"`
	AllowRegistration  bool   `json:"allowRegistration"`
}

// Defaults is the record used until an operator saves one.
func Defaults() StoreSettings {
	return StoreSettings{
		StoreName:          "SneakerStore",
		StoreDescription:   "Boutique de chaussures premium au Cameroun",
		StoreEmail:         "contact@sneakerstore.com",
		StorePhone:         "+237 656 533 960",
		StoreAddress:       "Douala, Cameroun",
		Currency:           "FCFA",
		Language:           "fr",
		EmailNotifications: true,
		OrderNotifications: true,
		LowStockAlerts:     true,
		AllowRegistration:  true,
	}
}

// Currencies and Languages list the accepted values.
var (
	Currencies = []string{"FCFA", "EUR", "USD"}
	Languages  = []string{"fr", "en"}
)

func (s StoreSettings) validate() error {
	if strings.TrimSpace(s.StoreName) == "" {
		return fmt.Errorf("%w: store name is required", httpx.ErrValidation)
	}
	if !contains(Currencies, s.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", httpx.ErrValidation, s.Currency)
	}
	if !contains(Languages, s.Language) {
		return fmt.Errorf("%w: unsupported language %q", httpx.ErrValidation, s.Language)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Months are the French month names goals are keyed by, January first.
var Months = []string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthName returns the French name of m.
func MonthName(m time.Month) string {
	return Months[m-1]
}

func knownMonth(name string) bool {
	return contains(Months, name)
}

// MonthlyGoal is the sales target and amount achieved for one month.
type MonthlyGoal struct {
	Month    string `json:"month"`
	Year     int    `json:"year"`
	Target   int64  `json:"target"`
	Achieved int64  `json:"achieved"`
}

// Achievement is achieved as a percentage of target, 0 without a target.
func (g MonthlyGoal) Achievement() float64 {
	if g.Target <= 0 {
		return 0
	}
	return float64(g.Achieved) / float64(g.Target) * 100
}

// BuildGoals lays out the twelve months of year. Months missing from
// targets get 0; achieved amounts are carried over as recorded.
func BuildGoals(year int, targets, achieved map[string]int64) []MonthlyGoal {
	goals := make([]MonthlyGoal, 0, len(Months))
	for _, month := range Months {
		goals = append(goals, MonthlyGoal{
			Month:    month,
			Year:     year,
			Target:   targets[month],
			Achieved: achieved[month],
		})
	}
	return goals
}

// YearTotals sums targets and achieved amounts.
func YearTotals(goals []MonthlyGoal) (target, achieved int64) {
	for _, g := range goals {
		target += g.Target
		achieved += g.Achieved
	}
	return target, achieved
}

// SeedGoals returns the demonstration goals for the first half of 2024.
func SeedGoals() []MonthlyGoal {
	return []MonthlyGoal{
		{Month: "Janvier", Year: 2024, Target: 2000000, Achieved: 1800000},
		{Month: "Février", Year: 2024, Target: 1500000, Achieved: 1650000},
		{Month: "Mars", Year: 2024, Target: 2200000, Achieved: 2100000},
		{Month: "Avril", Year: 2024, Target: 1800000, Achieved: 1900000},
		{Month: "Mai", Year: 2024, Target: 2500000, Achieved: 2300000},
		{Month: "Juin", Year: 2024, Target: 2800000, Achieved: 2600000},
	}
}
