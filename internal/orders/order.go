// Package orders stores customer orders, searches them for the back-office
// and places new ones from checked-out carts.
package orders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// STATUS
// ============================================================================

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "En attente"
	StatusProcessing Status = "En cours"
	StatusDelivered  Status = "Livré"
	StatusCancelled  Status = "Annulé"
)

// Statuses lists every order status in workflow order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ErrInvalidTransition indicates a status change the workflow forbids.
var ErrInvalidTransition = errors.New("order status transition invalid")

// ValidateTransition checks a status change. Setting the current status again
// is accepted.
func ValidateTransition(current, target Status) error {
	if !target.Valid() {
		return fmt.Errorf("unknown order status %q", target)
	}
	if current == target {
		return nil
	}
	switch current {
	case StatusPending:
		// Orders handed over on the spot skip processing.
		return nil
	case StatusProcessing:
		if target == StatusDelivered || target == StatusCancelled {
			return nil
		}
	}
	return ErrInvalidTransition
}

// ============================================================================
// ORDER
// ============================================================================

// CustomerRef is the customer snapshot carried by an order.
type CustomerRef struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

// Item is one ordered product variant at its unit price.
type Item struct {
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage"`
	Size         string `json:"size"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
}

func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Order is a placed order. ID follows the CMD-NNN pattern.
type Order struct {
	ID              string      `json:"id"`
	Customer        CustomerRef `json:"customer"`
	Items           []Item      `json:"items"`
	Total           int64       `json:"total"`
	Status          Status      `json:"status"`
	Date            time.Time   `json:"date"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	Notes           string      `json:"notes,omitempty"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// ItemCount sums item quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Revenue is the order total, or zero for a cancelled order.
func (o Order) Revenue() int64 {
	if o.Status == StatusCancelled {
		return 0
	}
	return o.Total
}

func (o Order) clone() Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}

// FormatID renders a sequence number as an order code.
func FormatID(seq int64) string {
	return fmt.Sprintf("CMD-%03d", seq)
}

// ParseID extracts the sequence number from an order code.
func ParseID(id string) (int64, bool) {
	digits, ok := strings.CutPrefix(id, "CMD-")
	if !ok {
		return 0, false
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}
