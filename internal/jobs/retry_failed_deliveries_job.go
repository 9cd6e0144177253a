package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const retryFailedDeliveriesJobName = "retry_failed_deliveries"

type FailedDeliveriesReader interface {
	Handle(ctx context.Context, q queries.GetOrdersWithFailedDeliveriesQuery) ([]kernel.UUID, error)
}

// RetryFailedDeliveriesJob re-dispatches orders with documents in ERROR, or stuck in
// PENDING longer than stalePending. Re-dispatch never re-packs and skips documents that
// are already uploaded, so only the failed files are sent again.
type RetryFailedDeliveriesJob struct {
	reader       FailedDeliveriesReader
	dispatcher   OrderDispatcher
	batchSize    int
	stalePending time.Duration
	schedule     string
	cron         *cron.Cron
	cancel       context.CancelFunc
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewRetryFailedDeliveriesJob(
	reader FailedDeliveriesReader,
	dispatcher OrderDispatcher,
	schedule string,
	batchSize int,
	stalePending time.Duration,
	logger *slog.Logger,
	m *metrics.Metrics,
) *RetryFailedDeliveriesJob {
	return &RetryFailedDeliveriesJob{
		reader:       reader,
		dispatcher:   dispatcher,
		batchSize:    batchSize,
		stalePending: stalePending,
		schedule:     schedule,
		cron:         newCron(),
		logger:       logger.With("component", retryFailedDeliveriesJobName+"_job"),
		metrics:      m,
	}
}

func (j *RetryFailedDeliveriesJob) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := j.cron.AddFunc(j.schedule, func() { _, _ = j.Run(ctx) }); err != nil {
		cancel()
		return err
	}
	j.cancel = cancel

	j.cron.Start()
	j.logger.Info("Retry failed deliveries job started", "schedule", j.schedule)
	return nil
}

func (j *RetryFailedDeliveriesJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	<-j.cron.Stop().Done()
	j.logger.Info("Retry failed deliveries job stopped")
}

func (j *RetryFailedDeliveriesJob) Run(ctx context.Context) (SweepReport, error) {
	query, err := queries.NewGetOrdersWithFailedDeliveriesQuery(j.batchSize, j.stalePending)
	if err != nil {
		return SweepReport{}, err
	}
	ids, err := j.reader.Handle(ctx, query)
	if err != nil {
		j.metrics.RecordJobRun(retryFailedDeliveriesJobName, outcomeFailed)
		j.logger.ErrorContext(ctx, "Retry failed deliveries job failed", "error", err)
		return SweepReport{}, err
	}
	return sweep(ctx, retryFailedDeliveriesJobName, ids, j.dispatcher, j.logger, j.metrics), nil
}
