package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrPackOrderCommandIsNotConstructed = errors.New(
	"PackOrderCommand must be created via NewPackOrderCommand constructor",
)

// PackOrderCommand asks for an order to be partitioned into shipments. The carrier must
// already be normalized against the carrier allow-list.
type PackOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	capacity    int
	allowSplit  bool
	carrier     string
	packageType shipment.PackageType

	guard guard.ConstructorGuard
}

func NewPackOrderCommand(
	orderID kernel.UUID,
	capacity int,
	allowSplit bool,
	carrier string,
	packageType shipment.PackageType,
) (PackOrderCommand, error) {
	cmd := PackOrderCommand{
		allowSplit: allowSplit,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCapacity(capacity),
		cmd.setCarrier(carrier),
		cmd.setPackageType(packageType),
	); err != nil {
		return PackOrderCommand{}, err
	}

	return cmd, nil
}

func (c PackOrderCommand) Validate() error {
	return c.guard.Validate(ErrPackOrderCommandIsNotConstructed)
}

func (c PackOrderCommand) OrderID() kernel.UUID              { return c.orderID }
func (c PackOrderCommand) Capacity() int                     { return c.capacity }
func (c PackOrderCommand) AllowSplit() bool                  { return c.allowSplit }
func (c PackOrderCommand) Carrier() string                   { return c.carrier }
func (c PackOrderCommand) PackageType() shipment.PackageType { return c.packageType }

func (c *PackOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *PackOrderCommand) setCapacity(capacity int) error {
	if capacity < 1 {
		return errs.NewValidationError("capacity", fmt.Sprintf("must be positive, got %d", capacity))
	}
	c.capacity = capacity
	return nil
}

func (c *PackOrderCommand) setCarrier(carrier string) error {
	carrier = strings.TrimSpace(carrier)
	if carrier == "" {
		return errs.NewValidationError("carrier", "is required")
	}
	c.carrier = carrier
	return nil
}

func (c *PackOrderCommand) setPackageType(p shipment.PackageType) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.packageType = p
	return nil
}
