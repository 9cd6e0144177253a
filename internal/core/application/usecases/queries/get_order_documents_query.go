package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderDocumentsQueryIsNotConstructed = errors.New(
	"GetOrderDocumentsQuery must be created via NewGetOrderDocumentsQuery constructor",
)

// GetOrderDocumentsQuery lists the delivery records of an order's documents.
type GetOrderDocumentsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderDocumentsQuery(orderID kernel.UUID) (GetOrderDocumentsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderDocumentsQuery{}, err
	}
	return GetOrderDocumentsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderDocumentsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderDocumentsQueryIsNotConstructed)
}

func (q GetOrderDocumentsQuery) OrderID() kernel.UUID {
	return q.orderID
}

type GetOrderDocumentsQueryResponse struct {
	Filename     string
	DocType      string
	ShipmentID   kernel.UUID
	ContainerIDs []string
	Status       string
	SentAt       *time.Time
	ErrorMessage string
	Attempts     int
	UpdatedAt    time.Time
}
