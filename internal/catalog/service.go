package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Invalidator is notified after the catalog changes.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// ProductInput carries the operator editable fields of a product.
type ProductInput struct {
	Name        string
	Price       int64
	Images      Images
	Category    Category
	Brand       Brand
	Description string
	Sizes       []SizeStock
	Status      Status
}

// Service implements catalog business rules.
type Service struct {
	repo        Repository
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a Service. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger, now: time.Now}
}

// List returns every product matching the filters.
func (s *Service) List(ctx context.Context, filters SearchFilters) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return Filter(products, filters), nil
}

// ListVisible is List without inactive products, for the storefront.
func (s *Service) ListVisible(ctx context.Context, filters SearchFilters) ([]Product, error) {
	products, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := products[:0]
	for _, p := range products {
		if p.Status != StatusInactive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create stores a new product with zero sales.
func (s *Service) Create(ctx context.Context, input ProductInput) (Product, error) {
	if err := validateInput(&input); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	product := Product{CreatedAt: now, UpdatedAt: now}
	applyInput(&product, input)
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: create: %w", err)
	}
	s.changed(ctx)
	return created, nil
}

// Update replaces the editable fields. The id, sales and creation time of
// the stored product are kept.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (Product, error) {
	if err := validateInput(&input); err != nil {
		return Product{}, err
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	applyInput(&product, input)
	product.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, fmt.Errorf("catalog: update: %w", err)
	}
	s.changed(ctx)
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ApplyQuickStock parses a quick entry and merges it into the product sizes.
func (s *Service) ApplyQuickStock(ctx context.Context, id int64, input string) (Product, QuickStockResult, error) {
	result := ParseQuickStock(input)
	if len(result.Entries) == 0 {
		product, err := s.Get(ctx, id)
		return product, result, err
	}
	product, err := s.repo.Modify(ctx, id, func(p *Product) error {
		p.Sizes = MergeSizes(p.Sizes, result.Entries)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Product{}, result, fmt.Errorf("catalog: quick stock: %w", err)
	}
	s.changed(ctx)
	return product, result, nil
}

// SetSizeStock sets the stock of one size; zero removes the size.
func (s *Service) SetSizeStock(ctx context.Context, id int64, size string, stock int) (Product, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return Product{}, fmt.Errorf("%w: size is required", httpx.ErrValidation)
	}
	if stock < 0 {
		return Product{}, fmt.Errorf("%w: stock must not be negative", httpx.ErrValidation)
	}
	product, err := s.repo.Modify(ctx, id, func(p *Product) error {
		p.Sizes = SetSizeStock(p.Sizes, size, stock)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("catalog: set stock: %w", err)
	}
	s.changed(ctx)
	return product, nil
}

// LowStock returns active products whose aggregate stock is at or below
// threshold, in catalog order.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: low stock: %w", err)
	}
	out := make([]Product, 0)
	for _, p := range products {
		if p.Status == StatusInactive {
			continue
		}
		if p.TotalStock() <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) changed(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

func applyInput(p *Product, in ProductInput) {
	p.Name = in.Name
	p.Price = in.Price
	p.Images = Images{Main: in.Images.Main, Secondary: append([]string(nil), in.Images.Secondary...)}
	p.Category = in.Category
	p.Brand = in.Brand
	p.Description = in.Description
	p.Sizes = append([]SizeStock(nil), in.Sizes...)
	p.Status = in.Status
}

func validateInput(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Images.Main = strings.TrimSpace(in.Images.Main)
	if in.Status == "" {
		in.Status = StatusActive
	}
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	case in.Brand.IsZero():
		return fmt.Errorf("%w: brand is required", httpx.ErrValidation)
	case in.Price <= 0:
		return fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
	case !in.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", httpx.ErrValidation, in.Category)
	case !in.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, in.Status)
	case in.Images.Main == "":
		return fmt.Errorf("%w: main image is required", httpx.ErrValidation)
	case len(in.Images.Secondary) > MaxSecondaryImages:
		return fmt.Errorf("%w: at most %d secondary images", httpx.ErrValidation, MaxSecondaryImages)
	case len(in.Sizes) == 0:
		return fmt.Errorf("%w: at least one size is required", httpx.ErrValidation)
	}
	seen := make(map[string]struct{}, len(in.Sizes))
	for i := range in.Sizes {
		in.Sizes[i].Size = strings.TrimSpace(in.Sizes[i].Size)
		size := in.Sizes[i]
		if size.Size == "" {
			return fmt.Errorf("%w: size label is required", httpx.ErrValidation)
		}
		if size.Stock < 0 {
			return fmt.Errorf("%w: stock for size %s must not be negative", httpx.ErrValidation, size.Size)
		}
		if _, dup := seen[size.Size]; dup {
			return fmt.Errorf("%w: duplicate size %s", httpx.ErrValidation, size.Size)
		}
		seen[size.Size] = struct{}{}
	}
	return nil
}
