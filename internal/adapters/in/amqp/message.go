package amqp

import (
	"encoding/json"
	"fmt"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
)

// OrderReadyMessage is published by the storefront once an order can be fulfilled.
// Omitted fields fall back to the configured dispatch defaults.
type OrderReadyMessage struct {
	OrderID    string  `json:"orderId"              validate:"required,uuid"`
	Capacity   *int    `json:"capacity,omitempty"   validate:"omitempty,min=1"`
	AllowSplit *bool   `json:"allowSplit,omitempty"`
	Carrier    *string `json:"carrier,omitempty"    validate:"omitempty,max=35"`
	Force      *bool   `json:"force,omitempty"`
}

func decodeMessage(validate *validator.Validate, body []byte) (commands.DispatchOrderCommand, error) {
	var msg OrderReadyMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return commands.DispatchOrderCommand{}, errs.NewValidationError("body", fmt.Sprintf("malformed json: %s", err))
	}
	if err := validate.Struct(msg); err != nil {
		return commands.DispatchOrderCommand{}, errs.NewValidationError("body", err.Error())
	}

	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return commands.DispatchOrderCommand{}, errs.NewValidationError("orderId", err.Error())
	}

	carrier := ""
	if msg.Carrier != nil {
		carrier = *msg.Carrier
	}
	force := msg.Force != nil && *msg.Force

	return commands.NewDispatchOrderCommand(orderID, msg.Capacity, msg.AllowSplit, carrier, force)
}
