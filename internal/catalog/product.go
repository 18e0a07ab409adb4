// Package catalog holds the product model, the storefront/back-office search
// filter and the product repository.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category groups products for navigation and size tables.
type Category string

const (
	CategoryShoes       Category = "chaussures"
	CategoryBalls       Category = "ballons"
	CategoryApparel     Category = "vêtements"
	CategoryAccessories Category = "accessoires"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryShoes, CategoryApparel, CategoryBalls, CategoryAccessories}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is set by the operator. It is never derived from stock.
type Status string

const (
	StatusActive     Status = "Actif"
	StatusInactive   Status = "Inactif"
	StatusLowStock   Status = "Stock faible"
	StatusOutOfStock Status = "Rupture"
)

// Statuses lists every product status.
var Statuses = []Status{StatusActive, StatusInactive, StatusLowStock, StatusOutOfStock}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Brands is the closed list of brands offered in the brand selector.
var Brands = []string{"Nike", "Adidas", "Jordan", "Puma", "Converse", "New Balance", "Vans", "Reebok"}

var (
	// ErrUnknownBrand is returned when a known brand is not part of Brands.
	ErrUnknownBrand = errors.New("catalog: unknown brand")
	// ErrEmptyBrand is returned for a blank custom brand.
	ErrEmptyBrand = errors.New("catalog: brand name required")
)

// Brand is either one of Brands or a free-text custom name, never both.
type Brand struct {
	name   string
	custom bool
}

// KnownBrand returns the brand from Brands matching name.
func KnownBrand(name string) (Brand, error) {
	name = strings.TrimSpace(name)
	for _, b := range Brands {
		if b == name {
			return Brand{name: b}, nil
		}
	}
	return Brand{}, fmt.Errorf("%w: %q", ErrUnknownBrand, name)
}

// CustomBrand returns a free-text brand.
func CustomBrand(name string) (Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Brand{}, ErrEmptyBrand
	}
	return Brand{name: name, custom: true}, nil
}

// Name is the display name of the brand.
func (b Brand) Name() string { return b.name }

// IsCustom reports whether the brand was entered as free text.
func (b Brand) IsCustom() bool { return b.custom }

// IsZero reports whether the brand was never set.
func (b Brand) IsZero() bool { return b.name == "" }

type brandJSON struct {
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// MarshalJSON encodes the brand as {"name":..., "custom":...}.
func (b Brand) MarshalJSON() ([]byte, error) {
	return json.Marshal(brandJSON{Name: b.name, Custom: b.custom})
}

// UnmarshalJSON decodes and validates the brand variant.
func (b *Brand) UnmarshalJSON(data []byte) error {
	var raw brandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		parsed Brand
		err    error
	)
	if raw.Custom {
		parsed, err = CustomBrand(raw.Name)
	} else {
		parsed, err = KnownBrand(raw.Name)
	}
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Images carries the main picture and up to two secondary pictures.
type Images struct {
	Main      string   `json:"main"`
	Secondary []string `json:"secondary"`
}

// MaxSecondaryImages bounds Images.Secondary.
const MaxSecondaryImages = 2

// SizeStock pairs a size label with its displayed stock.
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Product is a catalog entry.
type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Price       int64       `json:"price"`
	Images      Images      `json:"images"`
	Category    Category    `json:"category"`
	Brand       Brand       `json:"brand"`
	Description string      `json:"description"`
	Sizes       []SizeStock `json:"sizes"`
	Status      Status      `json:"status"`
	Sales       int         `json:"sales"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TotalStock sums the stock of every size.
func (p Product) TotalStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

// HasSize reports whether the product offers the size label, regardless of stock.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s.Size == size {
			return true
		}
	}
	return false
}

// clone returns a deep copy so repositories never share slices with callers.
func (p Product) clone() Product {
	out := p
	out.Sizes = append([]SizeStock(nil), p.Sizes...)
	out.Images.Secondary = append([]string(nil), p.Images.Secondary...)
	return out
}
