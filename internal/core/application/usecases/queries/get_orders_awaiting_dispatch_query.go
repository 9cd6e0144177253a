package queries

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrdersAwaitingDispatchQueryIsNotConstructed = errors.New(
	"GetOrdersAwaitingDispatchQuery must be created via NewGetOrdersAwaitingDispatchQuery constructor",
)

// GetOrdersAwaitingDispatchQuery finds orders that never reached the transfer step: not
// dispatched, not rejected and without any delivery record. Oldest orders come first.
type GetOrdersAwaitingDispatchQuery struct {
	limit int

	guard guard.ConstructorGuard
}

func NewGetOrdersAwaitingDispatchQuery(limit int) (GetOrdersAwaitingDispatchQuery, error) {
	if limit < 1 {
		return GetOrdersAwaitingDispatchQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return GetOrdersAwaitingDispatchQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrdersAwaitingDispatchQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersAwaitingDispatchQueryIsNotConstructed)
}

func (q GetOrdersAwaitingDispatchQuery) Limit() int {
	return q.limit
}
