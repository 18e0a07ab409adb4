package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
	"github.com/sneakerstore/sneakerstore/internal/shared"
)

const (
	checkoutModule = "checkout"
	orderRefPrefix = "order:"
)

// ProductLookup resolves products for price and image snapshots.
type ProductLookup interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// Customer identifies the person checking out.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Checkout is the order request built from a cart.
type Checkout struct {
	Customer      Customer
	PaymentMethod string
	Notes         string
	Lines         []Line
	Total         int64
}

// OrderPlacer turns a checkout into a stored order and returns its code.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, checkout Checkout) (string, error)
}

// Notifier is told about placed orders, typically by enqueueing a job.
type Notifier interface {
	OrderPlaced(ctx context.Context, orderID string) error
}

// Recorder counts cart activity.
type Recorder interface {
	CartOperation(op string)
	OrderPlaced(total int64)
}

// Summary is the cart together with its hand-off message.
type Summary struct {
	Cart      *Cart  `json:"cart"`
	ItemCount int    `json:"itemCount"`
	Message   string `json:"message"`
	Link      string `json:"link"`
}

// Receipt describes a completed checkout.
type Receipt struct {
	OrderID  string `json:"orderId"`
	Total    int64  `json:"total"`
	Link     string `json:"link"`
	Replayed bool   `json:"replayed"`
}

// Service applies cart operations to per-session snapshots.
type Service struct {
	store       Store
	products    ProductLookup
	linker      Linker
	placer      OrderPlacer
	notifier    Notifier
	recorder    Recorder
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// Options carries the optional collaborators of Service.
type Options struct {
	Placer      OrderPlacer
	Notifier    Notifier
	Recorder    Recorder
	Idempotency *shared.IdempotencyStore
	Logger      *slog.Logger
}

// NewService constructs a Service. Checkout is unavailable without a placer.
func NewService(store Store, products ProductLookup, linker Linker, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:       store,
		products:    products,
		linker:      linker,
		placer:      opts.Placer,
		notifier:    opts.Notifier,
		recorder:    opts.Recorder,
		idempotency: opts.Idempotency,
		logger:      logger,
	}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.store.Load(ctx, sessionID)
}

// Add puts one unit of the product in the given size into the cart.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64, size string) (*Cart, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return nil, fmt.Errorf("%w: size is required", httpx.ErrValidation)
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("cart: resolve product: %w", err)
	}
	if product.Status == catalog.StatusInactive {
		return nil, fmt.Errorf("cart: product %d: %w", productID, httpx.ErrNotFound)
	}
	if !product.HasSize(size) {
		return nil, fmt.Errorf("%w: size %s not offered", httpx.ErrValidation, size)
	}
	return s.mutate(ctx, sessionID, "add", func(c *Cart) error {
		if c.Quantity(product.ID, size) >= MaxLineQuantity {
			return fmt.Errorf("%w: at most %d per line", httpx.ErrValidation, MaxLineQuantity)
		}
		c.Add(Item{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Images.Main,
			Size:      size,
		})
		return nil
	})
}

// UpdateQuantity sets a line quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, size string, quantity int) (*Cart, error) {
	if quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%w: at most %d per line", httpx.ErrValidation, MaxLineQuantity)
	}
	return s.mutate(ctx, sessionID, "update", func(c *Cart) error {
		c.UpdateQuantity(productID, size, quantity)
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID int64, size string) (*Cart, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *Cart) error {
		c.RemoveItem(productID, size)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.record("clear")
	return nil
}

// Summary renders the order message and deep link for the current cart.
func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Cart: c, ItemCount: c.ItemCount()}
	if !c.IsEmpty() {
		summary.Message = OrderMessage(c)
		summary.Link = s.linker.CartLink(c)
	}
	return summary, nil
}

// Checkout places an order for the session cart and empties it. A repeated
// idempotency key replays the order created by the first request.
func (s *Service) Checkout(ctx context.Context, sessionID, idempotencyKey string, customer Customer, paymentMethod, notes string) (Receipt, error) {
	if s.placer == nil {
		return Receipt{}, errors.New("cart: checkout not configured")
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, checkoutModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return s.replay(ctx, idempotencyKey)
			}
			return Receipt{}, fmt.Errorf("cart: idempotency: %w", err)
		}
	}

	receipt, err := s.place(ctx, sessionID, customer, paymentMethod, notes)
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			if delErr := s.idempotency.Delete(ctx, idempotencyKey, checkoutModule); delErr != nil {
				s.logger.Warn("release idempotency key", slog.String("key", idempotencyKey), slog.Any("error", delErr))
			}
		}
		return Receipt{}, err
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(ctx, idempotencyKey, checkoutModule, orderRefPrefix+receipt.OrderID); err != nil {
			s.logger.Warn("remember checkout", slog.String("order_id", receipt.OrderID), slog.Any("error", err))
		}
	}
	return receipt, nil
}

func (s *Service) place(ctx context.Context, sessionID string, customer Customer, paymentMethod, notes string) (Receipt, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Receipt{}, err
	}
	if c.IsEmpty() {
		return Receipt{}, fmt.Errorf("%w: cart is empty", httpx.ErrValidation)
	}
	orderID, err := s.placer.PlaceOrder(ctx, Checkout{
		Customer:      customer,
		PaymentMethod: paymentMethod,
		Notes:         notes,
		Lines:         append([]Line(nil), c.Items...),
		Total:         c.Total,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("cart: place order: %w", err)
	}
	receipt := Receipt{OrderID: orderID, Total: c.Total, Link: s.linker.CartLink(c)}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("clear cart after checkout", slog.String("order_id", orderID), slog.Any("error", err))
	}
	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, orderID); err != nil {
			s.logger.Warn("notify order placed", slog.String("order_id", orderID), slog.Any("error", err))
		}
	}
	s.record("checkout")
	if s.recorder != nil {
		s.recorder.OrderPlaced(c.Total)
	}
	return receipt, nil
}

func (s *Service) replay(ctx context.Context, key string) (Receipt, error) {
	ref, err := s.idempotency.Lookup(ctx, key, checkoutModule)
	if err != nil {
		return Receipt{}, fmt.Errorf("cart: idempotency lookup: %w", err)
	}
	// A claimed key without an order reference belongs to a checkout still running.
	orderID, ok := strings.CutPrefix(ref, orderRefPrefix)
	if !ok || orderID == "" {
		return Receipt{}, fmt.Errorf("%w: checkout already in progress", httpx.ErrConflict)
	}
	return Receipt{OrderID: orderID, Replayed: true}, nil
}

func (s *Service) mutate(ctx context.Context, sessionID, op string, fn func(*Cart) error) (*Cart, error) {
	c, err := s.store.Update(ctx, sessionID, fn)
	if err != nil {
		return nil, err
	}
	s.record(op)
	return c, nil
}

func (s *Service) record(op string) {
	if s.recorder != nil {
		s.recorder.CartOperation(op)
	}
}
