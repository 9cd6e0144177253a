package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetRejectedOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetRejectedOrdersQueryHandler(db *gorm.DB) GetRejectedOrdersQueryHandler {
	return GetRejectedOrdersQueryHandler{db: db}
}

// Handle returns the oldest rejections first.
func (h GetRejectedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetRejectedOrdersQuery,
) ([]GetRejectedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rejected := make([]GetRejectedOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, external_ref, rejected_at, rejection_reason
		FROM orders
		WHERE rejected_at IS NOT NULL
		  AND dispatched_at IS NULL
		ORDER BY rejected_at, id
		LIMIT ?
	`, query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetRejectedOrdersQueryResponse
		var id uuid.UUID
		if err = rows.Scan(&id, &resp.ExternalRef, &resp.RejectedAt, &resp.Reason); err != nil {
			return nil, err
		}
		if resp.OrderID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		rejected = append(rejected, resp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return rejected, nil
}
