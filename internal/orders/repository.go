package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Repository persists orders.
type Repository interface {
	// List returns orders newest first.
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	// Create assigns the next order code and stores the order.
	Create(ctx context.Context, order Order) (Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	// AttachCustomer links a stored order to its customer record.
	AttachCustomer(ctx context.Context, id string, customerID int64) error
}

// MemoryRepository keeps orders in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	orders  map[string]Order
	lastSeq int64
}

// NewMemoryRepository returns a repository preloaded with seed. Codes are
// allocated after the highest seeded sequence number.
func NewMemoryRepository(seed []Order) *MemoryRepository {
	repo := &MemoryRepository{orders: make(map[string]Order, len(seed))}
	for _, o := range seed {
		repo.orders[o.ID] = o.clone()
		if seq, ok := ParseID(o.ID); ok && seq > repo.lastSeq {
			repo.lastSeq = seq
		}
	}
	return repo
}

func (r *MemoryRepository) List(ctx context.Context) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("orders: order %s: %w", id, httpx.ErrNotFound)
	}
	return o.clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, order Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeq++
	order.ID = FormatID(r.lastSeq)
	r.orders[order.ID] = order.clone()
	return order, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("orders: order %s: %w", id, httpx.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = at
	r.orders[id] = o
	return nil
}

func (r *MemoryRepository) AttachCustomer(ctx context.Context, id string, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("orders: order %s: %w", id, httpx.ErrNotFound)
	}
	o.Customer.ID = customerID
	r.orders[id] = o
	return nil
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Date.Equal(orders[j].Date) {
			return orders[i].Date.After(orders[j].Date)
		}
		return orders[i].ID > orders[j].ID
	})
}

var _ Repository = (*MemoryRepository)(nil)
