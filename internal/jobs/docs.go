// Package jobs provides scheduled background tasks for the fulfillment pipeline.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to catch the orders that the synchronous triggers did not finish.
//
// # Available Jobs
//
// 1. DispatchReadyOrdersJob - dispatches stored orders that have no delivery record yet
// 2. RetryFailedDeliveriesJob - re-dispatches orders whose documents failed or were interrupted
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	dispatchJob := jobs.NewDispatchReadyOrdersJob(awaitingHandler, dispatcher, "0 */1 * * * *", 50, logger, m)
//	retryJob := jobs.NewRetryFailedDeliveriesJob(failedHandler, dispatcher, "30 */5 * * * *", 50, 10*time.Minute, logger, m)
//	jobManager := jobs.NewJobManager(dispatchJob, retryJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six-field cron format with seconds. A tick that fires while the
// previous run of the same job is still going is skipped.
//
// # Error Handling
//
// - A failing order is logged and counted; the rest of the batch still runs
// - Validation and exhaustion failures are logged at ERROR, everything else at WARN
// - Failed job starts will stop any already running jobs
package jobs
