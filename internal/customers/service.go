package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Service serves the customer book.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns customers matching term together with counters over the
// whole book.
func (s *Service) List(ctx context.Context, term string) ([]Customer, Summary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("customers: list: %w", err)
	}
	return Search(all, term), Summarize(all), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, fmt.Errorf("%w: invalid customer id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// RecordOrder books a placed order against its customer.
func (s *Service) RecordOrder(ctx context.Context, ref orders.CustomerRef, address string, total int64, at time.Time) (int64, error) {
	if strings.TrimSpace(ref.Email) == "" && strings.TrimSpace(ref.Phone) == "" {
		return 0, fmt.Errorf("%w: customer email or phone is required", httpx.ErrValidation)
	}
	c, err := s.repo.Upsert(ctx, Customer{
		Name:    ref.Name,
		Email:   ref.Email,
		Phone:   ref.Phone,
		Address: address,
	}, total, at)
	if err != nil {
		return 0, fmt.Errorf("customers: record order: %w", err)
	}
	return c.ID, nil
}

var _ orders.CustomerRegistry = (*Service)(nil)
