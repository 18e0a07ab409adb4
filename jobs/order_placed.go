package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sneakerstore/sneakerstore/internal/jobs"
	"github.com/sneakerstore/sneakerstore/internal/orders"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OrderLookup loads orders by code.
type OrderLookup interface {
	Get(ctx context.Context, id string) (orders.Order, error)
}

// SalesRecorder books revenue against the monthly goals.
type SalesRecorder interface {
	RecordSale(ctx context.Context, at time.Time, amount int64) error
}

// OrderPlacedJob books a placed order against the monthly goal and logs the
// shop notification.
type OrderPlacedJob struct {
	Orders  OrderLookup
	Sales   SalesRecorder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewOrderPlacedJob wires dependencies for the order follow-up handler.
func NewOrderPlacedJob(lookup OrderLookup, sales SalesRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *OrderPlacedJob {
	return &OrderPlacedJob{Orders: lookup, Sales: sales, Logger: logger, Metrics: metrics}
}

// Handle processes TaskOrderPlaced tasks.
func (j *OrderPlacedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Orders == nil {
		return errors.New("order placed: handler not configured")
	}
	var payload OrderPlacedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.OrderID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskOrderPlaced)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("order_id", payload.OrderID))
	order, err := j.Orders.Get(ctx, payload.OrderID)
	if err != nil {
		resultErr = err
		logger.Error("load placed order", slog.Any("error", err))
		return resultErr
	}
	if order.Status == orders.StatusCancelled {
		logger.Info("order cancelled before follow-up")
		return resultErr
	}

	if j.Sales != nil {
		if err := j.Sales.RecordSale(ctx, order.Date, order.Total); err != nil {
			resultErr = err
			logger.Error("record sale", slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("new order",
		slog.String("customer", order.Customer.Name),
		slog.String("phone", order.Customer.Phone),
		slog.Int("items", order.ItemCount()),
		slog.Int64("total", order.Total),
	)
	return resultErr
}

func (j *OrderPlacedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *OrderPlacedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
