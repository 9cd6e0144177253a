// Package servers holds the HTTP API surface described by openapi.json. types.go and
// server.go are produced by oapi-codegen from that document; see spec.go.
package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for ShipmentResultStatus.
const (
	ShipmentResultStatusError    ShipmentResultStatus = "error"
	ShipmentResultStatusSkipped  ShipmentResultStatus = "skipped"
	ShipmentResultStatusUploaded ShipmentResultStatus = "uploaded"
)

// Address defines model for Address.
type Address struct {
	City        string `json:"city" validate:"required,max=128"`
	CountryCode string `json:"countryCode" validate:"required,len=2"`
	Name        string `json:"name" validate:"required,max=255"`
	PostalCode  string `json:"postalCode" validate:"required,max=32"`
	Street      string `json:"street" validate:"required,max=255"`
}

// CreatedOrder defines model for CreatedOrder.
type CreatedOrder struct {
	Id openapi_types.UUID `json:"id"`
}

// DispatchRequest defines model for DispatchRequest.
type DispatchRequest struct {
	AllowSplit *bool   `json:"allowSplit,omitempty"`
	Capacity   *int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Carrier    *string `json:"carrier,omitempty" validate:"omitempty,max=35"`
	Force      *bool   `json:"force,omitempty"`
}

// DispatchResponse defines model for DispatchResponse.
type DispatchResponse struct {
	OrderId openapi_types.UUID `json:"orderId"`
	Results []ShipmentResult   `json:"results"`
}

// Document defines model for Document.
type Document struct {
	Attempts     int                `json:"attempts"`
	ContainerIds []string           `json:"containerIds"`
	DocType      string             `json:"docType"`
	ErrorMessage *string            `json:"errorMessage,omitempty"`
	Filename     string             `json:"filename"`
	SentAt       *time.Time         `json:"sentAt,omitempty"`
	ShipmentId   openapi_types.UUID `json:"shipmentId"`
	Status       string             `json:"status"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Error defines model for Error.
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// Label defines model for Label.
type Label struct {
	ContainerId    string `json:"containerId"`
	HumanReadable  string `json:"humanReadable"`
	PrinterPayload string `json:"printerPayload"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Currency    string              `json:"currency" validate:"required,len=3"`
	ExternalRef string              `json:"externalRef" validate:"required,max=64"`
	Id          *openapi_types.UUID `json:"id,omitempty"`
	Lines       []OrderLine         `json:"lines" validate:"required,min=1,dive"`
	OrderedAt   *time.Time          `json:"orderedAt,omitempty"`
	Recipient   Address             `json:"recipient"`
}

// OrderLine defines model for OrderLine.
type OrderLine struct {
	Gtin           *string `json:"gtin,omitempty" validate:"omitempty,max=14"`
	LineNumber     int     `json:"lineNumber" validate:"min=1"`
	Quantity       int     `json:"quantity"`
	SupplierItemId *string `json:"supplierItemId,omitempty" validate:"omitempty,max=64"`
	UnitPrice      *int64  `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
}

// RejectedOrder defines model for RejectedOrder.
type RejectedOrder struct {
	ExternalRef string             `json:"externalRef"`
	OrderId     openapi_types.UUID `json:"orderId"`
	Reason      string             `json:"reason"`
	RejectedAt  time.Time          `json:"rejectedAt"`
}

// Shipment defines model for Shipment.
type Shipment struct {
	Carrier        string             `json:"carrier"`
	ContainerId    string             `json:"containerId"`
	CreatedAt      *time.Time         `json:"createdAt,omitempty"`
	DocumentNumber int64              `json:"documentNumber"`
	Id             openapi_types.UUID `json:"id"`
	Items          []ShipmentItem     `json:"items"`
	Label          Label              `json:"label"`
	PackageType    string             `json:"packageType"`
	SequenceIndex  int                `json:"sequenceIndex"`
	TotalQuantity  int                `json:"totalQuantity"`
	TrackingNumber *string            `json:"trackingNumber,omitempty"`
}

// ShipmentItem defines model for ShipmentItem.
type ShipmentItem struct {
	Gtin           string `json:"gtin"`
	LineNumber     int    `json:"lineNumber"`
	Quantity       int    `json:"quantity"`
	SupplierItemId string `json:"supplierItemId"`
}

// ShipmentResult defines model for ShipmentResult.
type ShipmentResult struct {
	ContainerId string               `json:"containerId"`
	Filename    string               `json:"filename"`
	Message     *string              `json:"message,omitempty"`
	ShipmentId  openapi_types.UUID   `json:"shipmentId"`
	Status      ShipmentResultStatus `json:"status"`
}

// ShipmentResultStatus defines model for ShipmentResult.Status.
type ShipmentResultStatus string

// OrderId defines model for OrderId.
type OrderId = openapi_types.UUID

// GetRejectedOrdersParams defines parameters for GetRejectedOrders.
type GetRejectedOrdersParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// CreateOrderJSONRequestBody defines body for CreateOrder for application/json ContentType.
type CreateOrderJSONRequestBody = NewOrder

// DispatchOrderJSONRequestBody defines body for DispatchOrder for application/json ContentType.
type DispatchOrderJSONRequestBody = DispatchRequest
