package shipment

import (
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Item is the part of one order line packed into a shipment.
type Item struct {
	lineNumber     int
	supplierItemID string
	gtin           string
	quantity       int
}

func NewItem(lineNumber int, supplierItemID, gtin string, quantity int) (Item, error) {
	if lineNumber < 1 {
		return Item{}, errs.NewValueIsOutOfRangeError("lineNumber", lineNumber, 1, "unbounded")
	}
	if quantity < 1 {
		return Item{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	return Item{
		lineNumber:     lineNumber,
		supplierItemID: strings.TrimSpace(supplierItemID),
		gtin:           strings.TrimSpace(gtin),
		quantity:       quantity,
	}, nil
}

func (i Item) LineNumber() int        { return i.lineNumber }
func (i Item) SupplierItemID() string { return i.supplierItemID }
func (i Item) GTIN() string           { return i.gtin }
func (i Item) Quantity() int          { return i.quantity }
