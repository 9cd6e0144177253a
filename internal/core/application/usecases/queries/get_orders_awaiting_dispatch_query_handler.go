package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

type GetOrdersAwaitingDispatchQueryHandler struct {
	db *gorm.DB
}

func NewGetOrdersAwaitingDispatchQueryHandler(db *gorm.DB) GetOrdersAwaitingDispatchQueryHandler {
	return GetOrdersAwaitingDispatchQueryHandler{db: db}
}

func (h GetOrdersAwaitingDispatchQueryHandler) Handle(
	ctx context.Context,
	query GetOrdersAwaitingDispatchQuery,
) ([]kernel.UUID, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return scanOrderIDs(h.db.WithContext(ctx).Raw(`
		SELECT o.id
		FROM orders o
		WHERE o.dispatched_at IS NULL
		  AND o.rejected_at IS NULL
		  AND NOT EXISTS (SELECT 1 FROM outbound_documents d WHERE d.order_id = o.id)
		ORDER BY o.ordered_at, o.id
		LIMIT ?
	`, query.Limit()))
}
