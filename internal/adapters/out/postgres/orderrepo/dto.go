package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

type OrderDTO struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ExternalRef     string         `gorm:"type:varchar(64);not null;index"`
	Recipient       AddressDTO     `gorm:"embedded;embeddedPrefix:recipient_"`
	Currency        string         `gorm:"type:char(3);not null"`
	OrderedAt       time.Time      `gorm:"not null"`
	PackedAt        *time.Time     `gorm:"index"`
	DispatchedAt    *time.Time     `gorm:"index"`
	RejectedAt      *time.Time     `gorm:"index"`
	RejectionReason string         `gorm:"type:varchar(1024)"`
	Lines           []OrderLineDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type AddressDTO struct {
	Name        string `gorm:"type:varchar(255);not null"`
	Street      string `gorm:"type:varchar(255)"`
	City        string `gorm:"type:varchar(128);not null"`
	PostalCode  string `gorm:"type:varchar(32)"`
	CountryCode string `gorm:"type:char(2);not null"`
}

type OrderLineDTO struct {
	OrderID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	LineNumber     int       `gorm:"primaryKey;autoIncrement:false"`
	SupplierItemID string    `gorm:"type:varchar(64)"`
	GTIN           string    `gorm:"column:gtin;type:varchar(14)"`
	Quantity       int       `gorm:"not null"`
	UnitPrice      int64     `gorm:"not null;default:0"`
}

func (OrderLineDTO) TableName() string {
	return "order_lines"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()
	r := o.Recipient()

	lines := make([]OrderLineDTO, 0, o.LineCount())
	for _, l := range o.Lines() {
		lines = append(lines, OrderLineDTO{
			OrderID:        id,
			LineNumber:     l.LineNumber(),
			SupplierItemID: l.SupplierItemID(),
			GTIN:           l.GTIN(),
			Quantity:       l.Quantity(),
			UnitPrice:      l.UnitPrice(),
		})
	}

	dto := OrderDTO{
		ID:          id,
		ExternalRef: o.ExternalRef(),
		Recipient: AddressDTO{
			Name:        r.Name(),
			Street:      r.Street(),
			City:        r.City(),
			PostalCode:  r.PostalCode(),
			CountryCode: r.CountryCode(),
		},
		Currency:     o.Currency(),
		OrderedAt:    o.OrderedAt(),
		PackedAt:     o.PackedAt(),
		DispatchedAt: o.DispatchedAt(),
		Lines:        lines,
	}
	if rej := o.Rejection(); rej != nil {
		dto.RejectedAt = &rej.At
		dto.RejectionReason = rej.Reason
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	recipient, err := order.NewAddress(dto.Recipient.Name, dto.Recipient.Street, dto.Recipient.City,
		dto.Recipient.PostalCode, dto.Recipient.CountryCode)
	if err != nil {
		return nil, err
	}

	lines := make([]order.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		line, lineErr := order.NewLine(l.LineNumber, l.SupplierItemID, l.GTIN, l.Quantity, l.UnitPrice)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	var rejection *order.Rejection
	if dto.RejectedAt != nil {
		rejection = &order.Rejection{Reason: dto.RejectionReason, At: *dto.RejectedAt}
	}

	return order.RestoreOrder(id, dto.ExternalRef, recipient, dto.Currency, dto.OrderedAt, lines,
		dto.PackedAt, dto.DispatchedAt, rejection)
}
