package queries

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrdersWithFailedDeliveriesQueryIsNotConstructed = errors.New(
	"GetOrdersWithFailedDeliveriesQuery must be created via NewGetOrdersWithFailedDeliveriesQuery constructor",
)

// GetOrdersWithFailedDeliveriesQuery finds orders with a document in ERROR, or left in
// PENDING for longer than stalePending (a process died mid-transfer).
type GetOrdersWithFailedDeliveriesQuery struct {
	limit        int
	stalePending time.Duration

	guard guard.ConstructorGuard
}

func NewGetOrdersWithFailedDeliveriesQuery(limit int, stalePending time.Duration) (GetOrdersWithFailedDeliveriesQuery, error) {
	if limit < 1 {
		return GetOrdersWithFailedDeliveriesQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	if stalePending <= 0 {
		return GetOrdersWithFailedDeliveriesQuery{}, errs.NewValueIsOutOfRangeError("stalePending", stalePending, "1ns", "unbounded")
	}
	return GetOrdersWithFailedDeliveriesQuery{
		limit:        limit,
		stalePending: stalePending,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrdersWithFailedDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersWithFailedDeliveriesQueryIsNotConstructed)
}

func (q GetOrdersWithFailedDeliveriesQuery) Limit() int                  { return q.limit }
func (q GetOrdersWithFailedDeliveriesQuery) StalePending() time.Duration { return q.stalePending }
