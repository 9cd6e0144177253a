package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/document"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrdersWithFailedDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewGetOrdersWithFailedDeliveriesQueryHandler(db *gorm.DB) GetOrdersWithFailedDeliveriesQueryHandler {
	return GetOrdersWithFailedDeliveriesQueryHandler{db: db}
}

// Handle returns each order once, least recently attempted first.
func (h GetOrdersWithFailedDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetOrdersWithFailedDeliveriesQuery,
) ([]kernel.UUID, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	staleBefore := time.Now().Add(-query.StalePending()).UTC()
	return scanOrderIDs(h.db.WithContext(ctx).Raw(`
		SELECT order_id
		FROM outbound_documents
		WHERE status = ?
		   OR (status = ? AND updated_at < ?)
		GROUP BY order_id
		ORDER BY MIN(updated_at), order_id
		LIMIT ?
	`, document.Error.String(), document.Pending.String(), staleBefore, query.Limit()))
}

func scanOrderIDs(q *gorm.DB) ([]kernel.UUID, error) {
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]kernel.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, orderID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
