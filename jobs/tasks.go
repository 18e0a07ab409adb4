package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrderPlaced follows up a checkout: sales goal booking and shop notification.
	TaskOrderPlaced = "orders:placed"
	// TaskLowStockScan reports active products running out of stock.
	TaskLowStockScan = "catalog:low_stock_scan"
)

// OrderPlacedPayload identifies the placed order.
type OrderPlacedPayload struct {
	OrderID string `json:"order_id"`
}

// LowStockScanPayload carries the aggregate stock threshold.
type LowStockScanPayload struct {
	Threshold int `json:"threshold"`
}

// NewOrderPlacedTask constructs an Asynq task for orderID.
func NewOrderPlacedTask(orderID string) (*asynq.Task, error) {
	if orderID == "" {
		return nil, fmt.Errorf("jobs: order id required")
	}
	data, err := json.Marshal(OrderPlacedPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPlaced, data), nil
}

// NewLowStockScanTask constructs an Asynq task for the given threshold.
func NewLowStockScanTask(threshold int) (*asynq.Task, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("jobs: negative low stock threshold")
	}
	data, err := json.Marshal(LowStockScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
