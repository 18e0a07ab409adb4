package customers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Repository persists customers.
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	Get(ctx context.Context, id int64) (Customer, error)
	// Upsert books an order against the customer matching email or phone,
	// creating a new customer when none matches.
	Upsert(ctx context.Context, c Customer, total int64, at time.Time) (Customer, error)
}

// MemoryRepository keeps customers in process memory.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[int64]Customer
	nextID    int64
}

func NewMemoryRepository(seed []Customer) *MemoryRepository {
	repo := &MemoryRepository{customers: make(map[int64]Customer, len(seed))}
	for _, c := range seed {
		repo.customers[c.ID] = c
		if c.ID > repo.nextID {
			repo.nextID = c.ID
		}
	}
	return repo
}

// List returns customers ordered by id.
func (r *MemoryRepository) List(ctx context.Context) ([]Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("customers: customer %d: %w", id, httpx.ErrNotFound)
	}
	return c, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, c Customer, total int64, at time.Time) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.customers {
		if !sameContact(existing, c) {
			continue
		}
		existing.TotalOrders++
		existing.TotalSpent += total
		existing.LastOrder = at
		if c.Address != "" {
			existing.Address = c.Address
		}
		r.customers[id] = existing
		return existing, nil
	}

	r.nextID++
	c.ID = r.nextID
	c.TotalOrders = 1
	c.TotalSpent = total
	c.LastOrder = at
	c.JoinDate = at
	c.Status = StatusNew
	r.customers[c.ID] = c
	return c, nil
}

func sameContact(a, b Customer) bool {
	if a.Email != "" && b.Email != "" && strings.EqualFold(a.Email, b.Email) {
		return true
	}
	return a.Phone != "" && normalizePhone(a.Phone) == normalizePhone(b.Phone)
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

var _ Repository = (*MemoryRepository)(nil)
