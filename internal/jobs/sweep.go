package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

const (
	outcomeOK      = "ok"
	outcomePartial = "partial"
	outcomeFailed  = "failed"
)

type OrderDispatcher interface {
	Handle(ctx context.Context, cmd commands.DispatchOrderCommand) ([]commands.ShipmentResult, error)
}

// SweepReport summarizes one run over a batch of orders.
type SweepReport struct {
	Orders     int
	Dispatched int
	Pending    int
	Failed     int
}

func (r SweepReport) outcome() string {
	switch {
	case r.Failed > 0 && r.Failed == r.Orders:
		return outcomeFailed
	case r.Failed > 0 || r.Pending > 0:
		return outcomePartial
	default:
		return outcomeOK
	}
}

// sweep dispatches each order with the configured defaults, never forced. One order's
// failure does not stop the batch.
func sweep(
	ctx context.Context,
	job string,
	ids []kernel.UUID,
	dispatcher OrderDispatcher,
	logger *slog.Logger,
	m *metrics.Metrics,
) SweepReport {
	report := SweepReport{Orders: len(ids)}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		cmd, err := commands.NewDispatchOrderCommand(id, nil, nil, "", false)
		if err != nil {
			report.Failed++
			logger.ErrorContext(ctx, "cannot build dispatch command", "order_id", id.String(), "error", err)
			continue
		}

		results, err := dispatcher.Handle(ctx, cmd)
		if err != nil {
			report.Failed++
			if errs.IsFatal(err) {
				logger.ErrorContext(ctx, "order cannot be dispatched", "order_id", id.String(), "error", err)
			} else {
				logger.WarnContext(ctx, "order dispatch failed", "order_id", id.String(), "error", err)
			}
			continue
		}

		done := true
		for _, r := range results {
			done = done && r.Done()
		}
		if done {
			report.Dispatched++
		} else {
			report.Pending++
		}
	}

	m.RecordJobRun(job, report.outcome())
	if report.Orders > 0 {
		logger.InfoContext(ctx, "sweep finished",
			"orders", report.Orders,
			"dispatched", report.Dispatched,
			"pending", report.Pending,
			"failed", report.Failed,
		)
	}
	return report
}
