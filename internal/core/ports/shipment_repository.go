package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
)

type ShipmentRepository interface {
	// Add inserts a shipment with its items. A second shipment with the same
	// (order, sequence index) violates a unique constraint.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update writes the tracking number.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// ListByOrder returns the order's shipments ordered by sequence index.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*shipment.Shipment, error)
}
