package commands

import "fulfillment/internal/core/domain/model/kernel"

// DeliveryStatus is the per-shipment outcome reported by the dispatch trigger.
type DeliveryStatus string

const (
	DeliveryUploaded DeliveryStatus = "uploaded"
	DeliveryError    DeliveryStatus = "error"
	// DeliverySkipped means the document was already uploaded and force was not set.
	DeliverySkipped DeliveryStatus = "skipped"
)

// ShipmentResult reports what happened to one shipment's document. Message carries the
// transport failure for DeliveryError and the skip reason for DeliverySkipped.
type ShipmentResult struct {
	ShipmentID  kernel.UUID
	ContainerID string
	Status      DeliveryStatus
	Filename    string
	Message     string
}

// Done reports whether the partner has the document.
func (r ShipmentResult) Done() bool {
	return r.Status == DeliveryUploaded || r.Status == DeliverySkipped
}
