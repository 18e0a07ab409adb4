package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

type stubRegistry struct {
	calls []CustomerRef
}

func (r *stubRegistry) RecordOrder(ctx context.Context, ref CustomerRef, address string, total int64, at time.Time) (int64, error) {
	r.calls = append(r.calls, ref)
	return 42, nil
}

type countingInvalidator struct {
	bumps int
}

func (c *countingInvalidator) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func newTestService(t *testing.T) (*Service, *stubRegistry, *countingInvalidator) {
	t.Helper()
	registry := &stubRegistry{}
	inv := &countingInvalidator{}
	svc := NewService(NewMemoryRepository(SeedOrders()), registry, inv, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc, registry, inv
}

func TestServiceListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	orders, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, "CMD-001", orders[0].ID)
	assert.Equal(t, "CMD-004", orders[3].ID)
}

func TestServiceGetValidatesID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Get(ctx, "CMD-999")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestServiceUpdateStatus(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, "CMD-003", StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)
	assert.Equal(t, svc.now().UTC(), updated.UpdatedAt)
	assert.Equal(t, 1, inv.bumps)

	stored, err := svc.Get(ctx, "CMD-003")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, stored.Status)

	_, err = svc.UpdateStatus(ctx, "CMD-002", StatusPending)
	assert.ErrorIs(t, err, httpx.ErrConflict)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, "CMD-003", Status("Perdu"))
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServicePlaceOrder(t *testing.T) {
	svc, registry, inv := newTestService(t)
	ctx := context.Background()

	id, err := svc.PlaceOrder(ctx, cart.Checkout{
		Customer:      cart.Customer{Name: " Aïcha Bello ", Phone: "+237 650 00 00 00", Address: "Douala, Bonapriso"},
		PaymentMethod: "Mobile Money",
		Lines: []cart.Line{
			{ProductID: 1, Name: "Nike Air Max 270", Price: 45000, Size: "41", Quantity: 2},
			{ProductID: 9, Name: "Casquette Adidas", Price: 8000, Size: "unique", Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "CMD-005", id)
	require.Len(t, registry.calls, 1)
	assert.Equal(t, "Aïcha Bello", registry.calls[0].Name)
	assert.Equal(t, 1, inv.bumps)

	order, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(98000), order.Total)
	assert.Equal(t, int64(42), order.Customer.ID)
	assert.Equal(t, "Douala, Bonapriso", order.ShippingAddress)
	assert.Equal(t, 3, order.ItemCount())
}

func TestServicePlaceOrderValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, cart.Checkout{Customer: cart.Customer{Name: "A"}})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.PlaceOrder(ctx, cart.Checkout{Lines: []cart.Line{{ProductID: 1, Quantity: 1, Price: 1}}})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

type failingCreateRepo struct {
	*MemoryRepository
}

func (r failingCreateRepo) Create(ctx context.Context, order Order) (Order, error) {
	return Order{}, errors.New("connection reset")
}

func TestServicePlaceOrderCreateFailureLeavesCustomerUntouched(t *testing.T) {
	registry := &stubRegistry{}
	svc := NewService(failingCreateRepo{NewMemoryRepository(nil)}, registry, nil, nil)

	_, err := svc.PlaceOrder(context.Background(), cart.Checkout{
		Customer: cart.Customer{Name: "Awa Ndiaye", Phone: "+221 77 123 45 67"},
		Lines:    []cart.Line{{ProductID: 1, Name: "Nike Air Max 270", Price: 45000, Size: "42", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Empty(t, registry.calls)
}

type failingRegistry struct{}

func (failingRegistry) RecordOrder(ctx context.Context, ref CustomerRef, address string, total int64, at time.Time) (int64, error) {
	return 0, errors.New("customers unavailable")
}

func TestServicePlaceOrderKeepsOrderWhenCustomerBookingFails(t *testing.T) {
	svc := NewService(NewMemoryRepository(nil), failingRegistry{}, nil, nil)
	ctx := context.Background()

	id, err := svc.PlaceOrder(ctx, cart.Checkout{
		Customer: cart.Customer{Name: "Awa Ndiaye", Phone: "+221 77 123 45 67"},
		Lines:    []cart.Line{{ProductID: 1, Name: "Nike Air Max 270", Price: 45000, Size: "42", Quantity: 1}},
	})
	require.NoError(t, err)

	order, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, order.Customer.ID)
}

func TestServicePlaceOrderRequiresContact(t *testing.T) {
	svc, registry, _ := newTestService(t)
	_, err := svc.PlaceOrder(context.Background(), cart.Checkout{
		Customer: cart.Customer{Name: "Awa Ndiaye"},
		Lines:    []cart.Line{{ProductID: 1, Price: 45000, Size: "42", Quantity: 1}},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, registry.calls)

	orders, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 4)
}

func TestServiceUpdateStatusPendingToDelivered(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.PlaceOrder(ctx, cart.Checkout{
		Customer: cart.Customer{Name: "Awa Ndiaye", Phone: "+221 77 123 45 67"},
		Lines:    []cart.Line{{ProductID: 1, Price: 45000, Size: "42", Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, id, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, updated.Status)
}
