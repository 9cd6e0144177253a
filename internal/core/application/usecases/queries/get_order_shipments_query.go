// Package queries contains the read side: shipment and delivery views for one order and
// the order-id sweeps used by the scheduled jobs. Handlers read straight from the database.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderShipmentsQueryIsNotConstructed = errors.New(
	"GetOrderShipmentsQuery must be created via NewGetOrderShipmentsQuery constructor",
)

// GetOrderShipmentsQuery lists an order's shipments with their label descriptions.
//
// Example:
//
//	query, _ := NewGetOrderShipmentsQuery(orderID)
//	shipments, err := handler.Handle(ctx, query)
//	for _, s := range shipments {
//	    fmt.Println(s.Label.HumanReadable)
//	}
type GetOrderShipmentsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderShipmentsQuery(orderID kernel.UUID) (GetOrderShipmentsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderShipmentsQuery{}, err
	}
	return GetOrderShipmentsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderShipmentsQueryIsNotConstructed)
}

func (q GetOrderShipmentsQuery) OrderID() kernel.UUID {
	return q.orderID
}

type ShipmentItemResponse struct {
	LineNumber     int
	SupplierItemID string
	GTIN           string
	Quantity       int
}

type GetOrderShipmentsQueryResponse struct {
	ID             kernel.UUID
	SequenceIndex  int
	ContainerID    string
	DocumentNumber int64
	Carrier        string
	TrackingNumber *string
	PackageType    string
	CreatedAt      time.Time
	TotalQuantity  int
	Items          []ShipmentItemResponse
	Label          services.Label
}
