package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	jobmetrics "github.com/sneakerstore/sneakerstore/internal/jobs"
)

// LowStockSource lists products at or below a stock threshold.
type LowStockSource interface {
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

// LowStockScanJob reports low stock products. Product status stays
// operator-set; the scan never changes it.
type LowStockScanJob struct {
	Catalog LowStockSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Catalog: source, Logger: logger, Metrics: metrics}
}

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.Threshold < 0 {
		return asynq.SkipRetry
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskLowStockScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.Int("threshold", payload.Threshold))

	products, err := j.Catalog.LowStock(ctx, payload.Threshold)
	if err != nil {
		resultErr = err
		logger.Error("low stock scan", slog.Any("error", err))
		return resultErr
	}
	metrics.SetLowStock(len(products))
	for _, p := range products {
		logger.Warn("low stock",
			slog.Int64("product_id", p.ID),
			slog.String("name", p.Name),
			slog.Int("stock", p.TotalStock()),
			slog.String("status", string(p.Status)),
		)
	}
	logger.Info("completed low stock scan", slog.Int("products", len(products)))
	return resultErr
}
