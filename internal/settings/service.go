package settings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

const (
	minYear = 2000
	maxYear = 2100
)

// Invalidator is notified after goals change.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// YearGoals is the twelve month view of a year.
type YearGoals struct {
	Year         int           `json:"year"`
	Goals        []MonthlyGoal `json:"goals"`
	YearTarget   int64         `json:"yearTarget"`
	YearAchieved int64         `json:"yearAchieved"`
}

// Service validates and stores settings and goals.
type Service struct {
	store       Store
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService constructs a Service. invalidator may be nil.
func NewService(store Store, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, invalidator: invalidator, logger: logger}
}

func (s *Service) Settings(ctx context.Context) (StoreSettings, error) {
	return s.store.Settings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, record StoreSettings) (StoreSettings, error) {
	if err := record.validate(); err != nil {
		return StoreSettings{}, err
	}
	if err := s.store.SaveSettings(ctx, record); err != nil {
		return StoreSettings{}, fmt.Errorf("settings: save: %w", err)
	}
	return record, nil
}

// Goals returns the twelve goals of year.
func (s *Service) Goals(ctx context.Context, year int) (YearGoals, error) {
	if err := validYear(year); err != nil {
		return YearGoals{}, err
	}
	targets, err := s.store.Targets(ctx, year)
	if err != nil {
		return YearGoals{}, err
	}
	achieved, err := s.store.Achieved(ctx, year)
	if err != nil {
		return YearGoals{}, err
	}
	goals := BuildGoals(year, targets, achieved)
	target, done := YearTotals(goals)
	return YearGoals{Year: year, Goals: goals, YearTarget: target, YearAchieved: done}, nil
}

// SaveGoals replaces the targets of year. Achieved amounts are untouched and
// months left out get a zero target.
func (s *Service) SaveGoals(ctx context.Context, year int, targets map[string]int64) (YearGoals, error) {
	if err := validYear(year); err != nil {
		return YearGoals{}, err
	}
	clean := make(map[string]int64, len(Months))
	for month, target := range targets {
		if !knownMonth(month) {
			return YearGoals{}, fmt.Errorf("%w: unknown month %q", httpx.ErrValidation, month)
		}
		if target < 0 {
			return YearGoals{}, fmt.Errorf("%w: negative target for %s", httpx.ErrValidation, month)
		}
		clean[month] = target
	}
	for _, month := range Months {
		if _, ok := clean[month]; !ok {
			clean[month] = 0
		}
	}
	if err := s.store.SaveTargets(ctx, year, clean); err != nil {
		return YearGoals{}, err
	}
	s.invalidate(ctx)
	return s.Goals(ctx, year)
}

// RecordSale adds amount to the achieved total of the month containing at.
func (s *Service) RecordSale(ctx context.Context, at time.Time, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if err := s.store.AddAchieved(ctx, at.Year(), MonthName(at.Month()), amount); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

func validYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: year %d out of range", httpx.ErrValidation, year)
	}
	return nil
}
