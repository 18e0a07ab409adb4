package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	jobmetrics "github.com/sneakerstore/sneakerstore/internal/jobs"
	"github.com/sneakerstore/sneakerstore/internal/orders"
)

type stubOrders map[string]orders.Order

func (s stubOrders) Get(ctx context.Context, id string) (orders.Order, error) {
	o, ok := s[id]
	if !ok {
		return orders.Order{}, errors.New("not found")
	}
	return o, nil
}

type sale struct {
	at     time.Time
	amount int64
}

type stubSales struct {
	sales []sale
	err   error
}

func (s *stubSales) RecordSale(ctx context.Context, at time.Time, amount int64) error {
	if s.err != nil {
		return s.err
	}
	s.sales = append(s.sales, sale{at: at, amount: amount})
	return nil
}

type stubLowStock struct {
	products  []catalog.Product
	threshold int
}

func (s *stubLowStock) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	s.threshold = threshold
	return s.products, nil
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestOrderPlacedTaskPayload(t *testing.T) {
	task, err := NewOrderPlacedTask("CMD-007")
	require.NoError(t, err)
	assert.Equal(t, TaskOrderPlaced, task.Type())

	var payload OrderPlacedPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "CMD-007", payload.OrderID)

	_, err = NewOrderPlacedTask("")
	assert.Error(t, err)
	_, err = NewLowStockScanTask(-1)
	assert.Error(t, err)
}

func TestOrderPlacedJobRecordsSale(t *testing.T) {
	placed := time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC)
	lookup := stubOrders{"CMD-007": {ID: "CMD-007", Total: 95000, Date: placed, Status: orders.StatusPending}}
	sales := &stubSales{}
	job := NewOrderPlacedJob(lookup, sales, nil, testMetrics())

	task, err := NewOrderPlacedTask("CMD-007")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, sales.sales, 1)
	assert.Equal(t, placed, sales.sales[0].at)
	assert.Equal(t, int64(95000), sales.sales[0].amount)
}

func TestOrderPlacedJobSkipsCancelled(t *testing.T) {
	lookup := stubOrders{"CMD-008": {ID: "CMD-008", Total: 1000, Status: orders.StatusCancelled}}
	sales := &stubSales{}
	job := NewOrderPlacedJob(lookup, sales, nil, testMetrics())

	task, err := NewOrderPlacedTask("CMD-008")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Empty(t, sales.sales)
}

func TestOrderPlacedJobErrors(t *testing.T) {
	job := NewOrderPlacedJob(stubOrders{}, &stubSales{}, nil, testMetrics())

	err := job.Handle(context.Background(), asynq.NewTask(TaskOrderPlaced, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewOrderPlacedTask("CMD-404")
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))

	failing := NewOrderPlacedJob(stubOrders{"CMD-001": {ID: "CMD-001", Total: 10}}, &stubSales{err: errors.New("redis down")}, nil, testMetrics())
	task, err = NewOrderPlacedTask("CMD-001")
	require.NoError(t, err)
	assert.Error(t, failing.Handle(context.Background(), task))
}

func TestLowStockScanJob(t *testing.T) {
	source := &stubLowStock{products: []catalog.Product{
		{ID: 1, Name: "Nike Air Max 270", Status: catalog.StatusActive, Sizes: []catalog.SizeStock{{Size: "42", Stock: 1}}},
	}}
	job := NewLowStockScanJob(source, nil, testMetrics())

	task, err := NewLowStockScanTask(5)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 5, source.threshold)
	assert.Equal(t, catalog.StatusActive, source.products[0].Status)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthHandler(t *testing.T) {
	serve := func(inspector QueueInspector) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Route("/admin/jobs", NewHandler(inspector, nil).MountRoutes)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/jobs/health", nil))
		return rec
	}

	rec := serve(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pending)
	assert.Equal(t, 1, body.Retry)

	rec = serve(stubInspector{err: errors.New("dial tcp")})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
