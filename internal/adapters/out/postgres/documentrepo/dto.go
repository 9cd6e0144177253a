package documentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/document"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type DocumentDTO struct {
	Filename     string         `gorm:"type:varchar(255);primaryKey"`
	DocType      string         `gorm:"type:varchar(16);not null"`
	OrderID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderRef     string         `gorm:"type:varchar(64);not null"`
	ShipmentID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	ContainerIDs pq.StringArray `gorm:"type:text[]"`
	Status       string         `gorm:"type:varchar(16);not null;index"`
	SentAt       *time.Time
	ErrorMessage string `gorm:"type:text"`
	Attempts     int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DocumentDTO) TableName() string {
	return "outbound_documents"
}

func fromDomain(d *document.Document) DocumentDTO {
	return DocumentDTO{
		Filename:     d.Filename(),
		DocType:      d.DocType(),
		OrderID:      d.OrderID().Bytes(),
		OrderRef:     d.OrderRef(),
		ShipmentID:   d.ShipmentID().Bytes(),
		ContainerIDs: pq.StringArray(d.ContainerIDs()),
		Status:       d.Status().String(),
		SentAt:       d.SentAt(),
		ErrorMessage: d.ErrorMessage(),
		Attempts:     d.Attempts(),
		UpdatedAt:    d.UpdatedAt(),
	}
}

func toDomain(dto DocumentDTO) (*document.Document, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	shipmentID, err := kernel.UUIDFromBytes(dto.ShipmentID[:])
	if err != nil {
		return nil, err
	}
	status, err := document.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return document.RestoreDocument(dto.Filename, dto.DocType, orderID, dto.OrderRef, shipmentID,
		[]string(dto.ContainerIDs), status, dto.SentAt, dto.ErrorMessage, dto.Attempts, dto.UpdatedAt)
}
