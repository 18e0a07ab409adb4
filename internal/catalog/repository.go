package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Repository persists products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	// Modify applies fn to the stored product and saves it with no other
	// write in between. An error from fn aborts the change.
	Modify(ctx context.Context, id int64, fn func(*Product) error) (Product, error)
	Delete(ctx context.Context, id int64) error
}

// MemoryRepository keeps products in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewMemoryRepository returns a repository preloaded with seed.
func NewMemoryRepository(seed []Product) *MemoryRepository {
	repo := &MemoryRepository{products: make(map[int64]Product, len(seed))}
	for _, p := range seed {
		repo.products[p.ID] = p.clone()
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	return repo
}

// List returns products ordered by id.
func (r *MemoryRepository) List(ctx context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
	}
	return p.clone(), nil
}

// Create assigns the next id and stores the product.
func (r *MemoryRepository) Create(ctx context.Context, product Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product.clone()
	return product, nil
}

func (r *MemoryRepository) Update(ctx context.Context, product Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("catalog: product %d: %w", product.ID, httpx.ErrNotFound)
	}
	r.products[product.ID] = product.clone()
	return nil
}

func (r *MemoryRepository) Modify(ctx context.Context, id int64, fn func(*Product) error) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
	}
	p := stored.clone()
	if err := fn(&p); err != nil {
		return Product{}, err
	}
	r.products[id] = p.clone()
	return p, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
