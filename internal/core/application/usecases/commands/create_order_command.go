package commands

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// RecipientInput is the ship-to address as received from the storefront.
type RecipientInput struct {
	Name        string
	Street      string
	City        string
	PostalCode  string
	CountryCode string
}

// OrderLineInput is one ordered article as received from the storefront. GTIN and
// supplier item id may be missing; such orders are stored but refused by packing.
type OrderLineInput struct {
	LineNumber     int
	SupplierItemID string
	GTIN           string
	Quantity       int
	UnitPrice      int64
}

// CreateOrderCommand ingests a purchased order so the pipeline can pack and dispatch it.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "PO-1001",
//	    RecipientInput{Name: "Jane Roe", Street: "Main St 1", City: "Berlin", PostalCode: "10115", CountryCode: "DE"},
//	    "EUR", time.Now(),
//	    []OrderLineInput{{LineNumber: 1, SupplierItemID: "SKU-1", GTIN: "4006381333931", Quantity: 14, UnitPrice: 1299}},
//	)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	externalRef string
	recipient   order.Address
	currency    string
	orderedAt   time.Time
	lines       []order.Line

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand checks every field it can without the store and reports all
// problems at once.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	externalRef string,
	recipient RecipientInput,
	currency string,
	orderedAt time.Time,
	lines []OrderLineInput,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		orderID:     orderID,
		externalRef: externalRef,
		currency:    currency,
		orderedAt:   orderedAt,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRecipient(recipient),
		cmd.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	// aggregate invariants
	if _, err := cmd.build(); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CreateOrderCommand) ExternalRef() string  { return c.externalRef }

func (c CreateOrderCommand) Lines() []order.Line {
	out := make([]order.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c CreateOrderCommand) build() (*order.Order, error) {
	return order.NewOrder(c.orderID, c.externalRef, c.recipient, c.currency, c.orderedAt, c.lines)
}

func (c *CreateOrderCommand) setRecipient(in RecipientInput) error {
	a, err := order.NewAddress(in.Name, in.Street, in.City, in.PostalCode, in.CountryCode)
	if err != nil {
		return err
	}
	c.recipient = a
	return nil
}

func (c *CreateOrderCommand) setLines(in []OrderLineInput) error {
	lines := make([]order.Line, 0, len(in))
	var problems []error
	for i, l := range in {
		line, err := order.NewLine(l.LineNumber, l.SupplierItemID, l.GTIN, l.Quantity, l.UnitPrice)
		if err != nil {
			problems = append(problems, fmt.Errorf("lines[%d]: %w", i, err))
			continue
		}
		lines = append(lines, line)
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}
	c.lines = lines
	return nil
}
