package app

import (
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	jobmetrics "github.com/sneakerstore/sneakerstore/internal/jobs"
	"github.com/sneakerstore/sneakerstore/jobs"
)

// NewWorker registers the order follow-up and low stock handlers over
// services, and schedules the low stock scan on cfg.LowStockCron.
func NewWorker(cfg *Config, logger *slog.Logger, services *Services, registerer prometheus.Registerer) (*jobs.Worker, error) {
	metrics := jobmetrics.NewMetrics(registerer)
	orderJob := jobs.NewOrderPlacedJob(services.Orders, services.Settings, logger, metrics)
	scanJob := jobs.NewLowStockScanJob(services.Catalog, logger, metrics)

	var cron []jobs.CronRegistration
	if cfg.LowStockCron != "" {
		task, err := jobs.NewLowStockScanTask(cfg.LowStockThreshold)
		if err != nil {
			return nil, err
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.LowStockCron,
			Task:    task,
			Options: []asynq.Option{asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3)},
		})
	}

	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOrderPlaced, Handler: orderJob.Handle},
			{Type: jobs.TaskLowStockScan, Handler: scanJob.Handle},
		},
		Cron: cron,
	})
}
