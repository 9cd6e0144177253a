package shipmentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/google/uuid"
)

type ShipmentDTO struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_shipments_order_sequence,priority:1"`
	SequenceIndex  int               `gorm:"not null;uniqueIndex:ux_shipments_order_sequence,priority:2"`
	ContainerID    string            `gorm:"type:char(18);not null;uniqueIndex"`
	DocumentNumber int64             `gorm:"not null;uniqueIndex"`
	Carrier        string            `gorm:"type:varchar(32);not null"`
	TrackingNumber *string           `gorm:"type:varchar(64)"`
	PackageType    string            `gorm:"type:varchar(16);not null"`
	CreatedAt      time.Time         `gorm:"not null"`
	Items          []ShipmentItemDTO `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

type ShipmentItemDTO struct {
	ShipmentID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position       int       `gorm:"primaryKey;autoIncrement:false"`
	LineNumber     int       `gorm:"not null"`
	SupplierItemID string    `gorm:"type:varchar(64);not null"`
	GTIN           string    `gorm:"column:gtin;type:varchar(14);not null"`
	Quantity       int       `gorm:"not null"`
}

func (ShipmentItemDTO) TableName() string {
	return "shipment_items"
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	id := s.ID().Bytes()

	items := make([]ShipmentItemDTO, 0, len(s.Items()))
	for i, it := range s.Items() {
		items = append(items, ShipmentItemDTO{
			ShipmentID:     id,
			Position:       i,
			LineNumber:     it.LineNumber(),
			SupplierItemID: it.SupplierItemID(),
			GTIN:           it.GTIN(),
			Quantity:       it.Quantity(),
		})
	}

	return ShipmentDTO{
		ID:             id,
		OrderID:        s.OrderID().Bytes(),
		SequenceIndex:  s.SequenceIndex(),
		ContainerID:    s.ContainerID(),
		DocumentNumber: s.DocumentNumber(),
		Carrier:        s.Carrier(),
		TrackingNumber: s.TrackingNumber(),
		PackageType:    s.PackageType().String(),
		CreatedAt:      s.CreatedAt(),
		Items:          items,
	}
}

func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	items := make([]shipment.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, itemErr := shipment.NewItem(it.LineNumber, it.SupplierItemID, it.GTIN, it.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return shipment.RestoreShipment(id, orderID, dto.SequenceIndex, dto.ContainerID, dto.DocumentNumber,
		dto.Carrier, dto.TrackingNumber, shipment.PackageType(dto.PackageType), items, dto.CreatedAt)
}
