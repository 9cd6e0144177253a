package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dispatchReadyOrdersJob   *DispatchReadyOrdersJob
	retryFailedDeliveriesJob *RetryFailedDeliveriesJob
}

func NewJobManager(
	dispatchReadyOrdersJob *DispatchReadyOrdersJob,
	retryFailedDeliveriesJob *RetryFailedDeliveriesJob,
) *JobManager {
	return &JobManager{
		dispatchReadyOrdersJob:   dispatchReadyOrdersJob,
		retryFailedDeliveriesJob: retryFailedDeliveriesJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchReadyOrdersJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch ready orders job: %w", err)
	}

	if err := jm.retryFailedDeliveriesJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.dispatchReadyOrdersJob.Stop()
		return fmt.Errorf("failed to start retry failed deliveries job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.retryFailedDeliveriesJob.Stop()
	jm.dispatchReadyOrdersJob.Stop()
}

func newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}
