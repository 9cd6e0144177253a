package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrDeliverShipmentCommandIsNotConstructed = errors.New(
	"DeliverShipmentCommand must be created via NewDeliverShipmentCommand constructor",
)

// DeliverShipmentCommand sends the dispatch document of one packed shipment. With force an
// already uploaded document is sent again under the same filename.
type DeliverShipmentCommand struct { //nolint:recvcheck //using for validation
	order    *order.Order
	shipment *shipment.Shipment
	force    bool

	guard guard.ConstructorGuard
}

func NewDeliverShipmentCommand(o *order.Order, s *shipment.Shipment, force bool) (DeliverShipmentCommand, error) {
	if o == nil {
		return DeliverShipmentCommand{}, errs.NewValueIsRequiredError("order")
	}
	if s == nil {
		return DeliverShipmentCommand{}, errs.NewValueIsRequiredError("shipment")
	}
	if err := errors.Join(o.Validate(), s.Validate()); err != nil {
		return DeliverShipmentCommand{}, err
	}
	if !s.OrderID().IsEqual(o.ID()) {
		return DeliverShipmentCommand{}, errs.NewValidationError("shipment", "belongs to another order")
	}

	return DeliverShipmentCommand{
		order:    o,
		shipment: s,
		force:    force,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c DeliverShipmentCommand) Validate() error {
	return c.guard.Validate(ErrDeliverShipmentCommandIsNotConstructed)
}

func (c DeliverShipmentCommand) Order() *order.Order          { return c.order }
func (c DeliverShipmentCommand) Shipment() *shipment.Shipment { return c.shipment }
func (c DeliverShipmentCommand) Force() bool                  { return c.force }
