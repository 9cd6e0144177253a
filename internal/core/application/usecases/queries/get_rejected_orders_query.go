package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const MaxRejectedOrdersLimit = 500

var ErrGetRejectedOrdersQueryIsNotConstructed = errors.New(
	"GetRejectedOrdersQuery must be created via NewGetRejectedOrdersQuery constructor",
)

// GetRejectedOrdersQuery lists undispatched orders whose last dispatch failed for a reason
// retrying cannot fix. They wait for a corrected order or an explicit trigger.
type GetRejectedOrdersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

func NewGetRejectedOrdersQuery(limit int) (GetRejectedOrdersQuery, error) {
	if limit < 1 || limit > MaxRejectedOrdersLimit {
		return GetRejectedOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxRejectedOrdersLimit)
	}
	return GetRejectedOrdersQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRejectedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetRejectedOrdersQueryIsNotConstructed)
}

func (q GetRejectedOrdersQuery) Limit() int {
	return q.limit
}

type GetRejectedOrdersQueryResponse struct {
	OrderID     kernel.UUID
	ExternalRef string
	RejectedAt  time.Time
	Reason      string
}
