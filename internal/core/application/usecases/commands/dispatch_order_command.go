package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrDispatchOrderCommandIsNotConstructed = errors.New(
	"DispatchOrderCommand must be created via NewDispatchOrderCommand constructor",
)

// DispatchOrderCommand is the pipeline trigger (orderId, capacity?, allowSplit?, carrier?, force?).
// Nil capacity and allowSplit and an empty carrier fall back to the configured defaults.
type DispatchOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	capacity   *int
	allowSplit *bool
	carrier    string
	force      bool

	guard guard.ConstructorGuard
}

func NewDispatchOrderCommand(
	orderID kernel.UUID,
	capacity *int,
	allowSplit *bool,
	carrier string,
	force bool,
) (DispatchOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return DispatchOrderCommand{}, err
	}
	if capacity != nil && *capacity < 1 {
		return DispatchOrderCommand{}, errs.NewValidationError("capacity", fmt.Sprintf("must be positive, got %d", *capacity))
	}

	cmd := DispatchOrderCommand{
		orderID: orderID,
		carrier: carrier,
		force:   force,
		guard:   guard.NewConstructorGuard(),
	}
	if capacity != nil {
		c := *capacity
		cmd.capacity = &c
	}
	if allowSplit != nil {
		a := *allowSplit
		cmd.allowSplit = &a
	}
	return cmd, nil
}

func (c DispatchOrderCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOrderCommandIsNotConstructed)
}

func (c DispatchOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c DispatchOrderCommand) Carrier() string      { return c.carrier }
func (c DispatchOrderCommand) Force() bool          { return c.force }

// Capacity returns the requested capacity or fallback.
func (c DispatchOrderCommand) Capacity(fallback int) int {
	if c.capacity == nil {
		return fallback
	}
	return *c.capacity
}

// AllowSplit returns the requested split policy or fallback.
func (c DispatchOrderCommand) AllowSplit(fallback bool) bool {
	if c.allowSplit == nil {
		return fallback
	}
	return *c.allowSplit
}
