package shipment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment constructor")

// Shipment is one physical container produced by packing an order. Identity, container id
// and items are fixed at creation; only the tracking number can be set later.
type Shipment struct {
	id             kernel.UUID
	orderID        kernel.UUID
	sequenceIndex  int
	containerID    string
	documentNumber int64
	carrier        string
	trackingNumber *string
	packageType    PackageType
	items          []Item
	createdAt      time.Time

	guard guard.ConstructorGuard
}

// NewShipment is used right after packing and allocation.
func NewShipment(
	id, orderID kernel.UUID,
	sequenceIndex int,
	containerID string,
	documentNumber int64,
	carrier string,
	packageType PackageType,
	items []Item,
	createdAt time.Time,
) (*Shipment, error) {
	return RestoreShipment(id, orderID, sequenceIndex, containerID, documentNumber, carrier, nil, packageType, items, createdAt)
}

func RestoreShipment(
	id, orderID kernel.UUID,
	sequenceIndex int,
	containerID string,
	documentNumber int64,
	carrier string,
	trackingNumber *string,
	packageType PackageType,
	items []Item,
	createdAt time.Time,
) (*Shipment, error) {
	s := &Shipment{
		sequenceIndex:  sequenceIndex,
		documentNumber: documentNumber,
		carrier:        strings.TrimSpace(carrier),
		createdAt:      createdAt.UTC(),
		guard:          guard.NewConstructorGuard(),
	}

	var problems []error
	if err := id.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("shipment id: %w", err))
	}
	if err := orderID.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("order id: %w", err))
	}
	if sequenceIndex < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("sequenceIndex", sequenceIndex, 0, "unbounded"))
	}
	if documentNumber < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("documentNumber", documentNumber, 1, "unbounded"))
	}
	if s.carrier == "" {
		problems = append(problems, errs.NewValueIsRequiredError("carrier"))
	}
	if err := packageType.Validate(); err != nil {
		problems = append(problems, err)
	}
	if len(items) == 0 {
		problems = append(problems, errs.NewValueIsRequiredError("items"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	s.id = id
	s.orderID = orderID
	s.containerID = strings.TrimSpace(containerID)
	s.packageType = packageType
	s.items = make([]Item, len(items))
	copy(s.items, items)
	if trackingNumber != nil {
		tn := *trackingNumber
		s.trackingNumber = &tn
	}

	return s, nil
}

func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

func (s *Shipment) IsEqual(other *Shipment) bool {
	return other != nil && s.id.IsEqual(other.id)
}

func (s *Shipment) ID() kernel.UUID          { return s.id }
func (s *Shipment) OrderID() kernel.UUID     { return s.orderID }
func (s *Shipment) SequenceIndex() int       { return s.sequenceIndex }
func (s *Shipment) ContainerID() string      { return s.containerID }
func (s *Shipment) DocumentNumber() int64    { return s.documentNumber }
func (s *Shipment) Carrier() string          { return s.carrier }
func (s *Shipment) PackageType() PackageType { return s.packageType }
func (s *Shipment) CreatedAt() time.Time     { return s.createdAt }

func (s *Shipment) TrackingNumber() *string {
	if s.trackingNumber == nil {
		return nil
	}
	tn := *s.trackingNumber
	return &tn
}

// Items returns a copy in packing order.
func (s *Shipment) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Shipment) TotalQuantity() int {
	total := 0
	for _, it := range s.items {
		total += it.quantity
	}
	return total
}

// SetTrackingNumber stores the carrier's tracking number once the parcel is handed over.
func (s *Shipment) SetTrackingNumber(tn string) error {
	tn = strings.TrimSpace(tn)
	if tn == "" {
		return errs.NewValueIsRequiredError("trackingNumber")
	}
	s.trackingNumber = &tn
	return nil
}
