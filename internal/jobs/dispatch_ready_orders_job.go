package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const dispatchReadyOrdersJobName = "dispatch_ready_orders"

type AwaitingDispatchReader interface {
	Handle(ctx context.Context, q queries.GetOrdersAwaitingDispatchQuery) ([]kernel.UUID, error)
}

// DispatchReadyOrdersJob picks up orders that were stored but never dispatched, e.g.
// ingested over HTTP without a trigger or missed while the broker was down.
type DispatchReadyOrdersJob struct {
	reader     AwaitingDispatchReader
	dispatcher OrderDispatcher
	batchSize  int
	schedule   string
	cron       *cron.Cron
	cancel     context.CancelFunc
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewDispatchReadyOrdersJob(
	reader AwaitingDispatchReader,
	dispatcher OrderDispatcher,
	schedule string,
	batchSize int,
	logger *slog.Logger,
	m *metrics.Metrics,
) *DispatchReadyOrdersJob {
	return &DispatchReadyOrdersJob{
		reader:     reader,
		dispatcher: dispatcher,
		batchSize:  batchSize,
		schedule:   schedule,
		cron:       newCron(),
		logger:     logger.With("component", dispatchReadyOrdersJobName+"_job"),
		metrics:    m,
	}
}

// Start schedules the sweep. Runs never overlap: a tick is skipped while the previous
// sweep is still going.
func (j *DispatchReadyOrdersJob) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := j.cron.AddFunc(j.schedule, func() { _, _ = j.Run(ctx) }); err != nil {
		cancel()
		return err
	}
	j.cancel = cancel

	j.cron.Start()
	j.logger.Info("Dispatch ready orders job started", "schedule", j.schedule)
	return nil
}

// Stop cancels a running sweep and waits for it to return.
func (j *DispatchReadyOrdersJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	<-j.cron.Stop().Done()
	j.logger.Info("Dispatch ready orders job stopped")
}

func (j *DispatchReadyOrdersJob) Run(ctx context.Context) (SweepReport, error) {
	query, err := queries.NewGetOrdersAwaitingDispatchQuery(j.batchSize)
	if err != nil {
		return SweepReport{}, err
	}
	ids, err := j.reader.Handle(ctx, query)
	if err != nil {
		j.metrics.RecordJobRun(dispatchReadyOrdersJobName, outcomeFailed)
		j.logger.ErrorContext(ctx, "Dispatch ready orders job failed", "error", err)
		return SweepReport{}, err
	}
	return sweep(ctx, dispatchReadyOrdersJobName, ids, j.dispatcher, j.logger, j.metrics), nil
}
