package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// CustomerRegistry links placed orders to customer records.
type CustomerRegistry interface {
	// RecordOrder finds or creates the customer and books the order
	// against it, returning the customer id.
	RecordOrder(ctx context.Context, ref CustomerRef, address string, total int64, at time.Time) (int64, error)
}

// Invalidator is notified after orders change.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service implements order workflows.
type Service struct {
	repo        Repository
	customers   CustomerRegistry
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a Service. customers and invalidator may be nil.
func NewService(repo Repository, customers CustomerRegistry, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, customers: customers, invalidator: invalidator, logger: logger, now: time.Now}
}

// List returns orders matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	return filter.Apply(all), nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if _, ok := ParseID(id); !ok {
		return Order{}, fmt.Errorf("%w: invalid order id %q", httpx.ErrValidation, id)
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves an order along the fulfilment workflow.
func (s *Service) UpdateStatus(ctx context.Context, id string, target Status) (Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !target.Valid() {
		return Order{}, fmt.Errorf("%w: unknown order status %q", httpx.ErrValidation, target)
	}
	if err := ValidateTransition(order.Status, target); err != nil {
		return Order{}, fmt.Errorf("%w: %s -> %s: %w", httpx.ErrConflict, order.Status, target, err)
	}
	if order.Status == target {
		return order, nil
	}
	at := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, target, at); err != nil {
		return Order{}, fmt.Errorf("orders: update status: %w", err)
	}
	order.Status = target
	order.UpdatedAt = at
	s.invalidate(ctx)
	return order, nil
}

// PlaceOrder stores a pending order for a checked-out cart.
func (s *Service) PlaceOrder(ctx context.Context, checkout cart.Checkout) (string, error) {
	name := strings.TrimSpace(checkout.Customer.Name)
	if name == "" {
		return "", fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}
	if len(checkout.Lines) == 0 {
		return "", fmt.Errorf("%w: order has no items", httpx.ErrValidation)
	}
	if strings.TrimSpace(checkout.Customer.Email) == "" && strings.TrimSpace(checkout.Customer.Phone) == "" {
		return "", fmt.Errorf("%w: customer email or phone is required", httpx.ErrValidation)
	}

	now := s.now().UTC()
	order := Order{
		Customer: CustomerRef{
			Name:  name,
			Email: strings.TrimSpace(checkout.Customer.Email),
			Phone: strings.TrimSpace(checkout.Customer.Phone),
		},
		Items:           make([]Item, 0, len(checkout.Lines)),
		Status:          StatusPending,
		Date:            now,
		ShippingAddress: strings.TrimSpace(checkout.Customer.Address),
		PaymentMethod:   checkout.PaymentMethod,
		Notes:           checkout.Notes,
		UpdatedAt:       now,
	}
	for _, line := range checkout.Lines {
		item := Item{
			ProductID:    line.ProductID,
			ProductName:  line.Name,
			ProductImage: line.Image,
			Size:         line.Size,
			Quantity:     line.Quantity,
			Price:        line.Price,
		}
		order.Items = append(order.Items, item)
		order.Total += item.Subtotal()
	}

	// The customer is booked only once the order exists.
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return "", fmt.Errorf("orders: create: %w", err)
	}
	if s.customers != nil {
		s.linkCustomer(ctx, &created, now)
	}
	s.logger.Info("order placed", slog.String("order_id", created.ID), slog.Int64("total", created.Total), slog.Int("items", created.ItemCount()))
	s.invalidate(ctx)
	return created.ID, nil
}

// linkCustomer books created against its customer. The order is already
// stored, so failures are logged rather than returned.
func (s *Service) linkCustomer(ctx context.Context, created *Order, at time.Time) {
	logger := s.logger.With(slog.String("order_id", created.ID))
	customerID, err := s.customers.RecordOrder(ctx, created.Customer, created.ShippingAddress, created.Total, at)
	if err != nil {
		logger.Warn("record order customer", slog.Any("error", err))
		return
	}
	if err := s.repo.AttachCustomer(ctx, created.ID, customerID); err != nil {
		logger.Warn("attach order customer", slog.Any("error", err))
		return
	}
	created.Customer.ID = customerID
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

var _ cart.OrderPlacer = (*Service)(nil)
