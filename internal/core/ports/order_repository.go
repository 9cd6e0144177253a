package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository persists orders. Add is used by ingestion; the pipeline only reads
// orders and updates their lifecycle timestamps and rejection marker.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes lifecycle timestamps and the rejection marker only.
	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get holding a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
