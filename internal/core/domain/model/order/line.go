package order

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Line is one ordered article. Upstream ingestion may deliver lines without a GTIN or a
// supplier item id; such lines exist but cannot be packed.
type Line struct {
	lineNumber     int
	supplierItemID string
	gtin           string
	quantity       int
	unitPrice      int64
}

const (
	MaxSupplierItemIDLength = 64
	MaxGTINLength           = 14
)

// NewLine enforces lineNumber >= 1, quantity > 0 and the stored length of the article
// references. unitPrice is in minor currency units.
func NewLine(lineNumber int, supplierItemID, gtin string, quantity int, unitPrice int64) (Line, error) {
	supplierItemID = strings.TrimSpace(supplierItemID)
	gtin = strings.TrimSpace(gtin)

	var problems []error
	problems = append(problems,
		checkLength("supplierItemId", supplierItemID, MaxSupplierItemIDLength),
		checkLength("gtin", gtin, MaxGTINLength),
	)
	if lineNumber < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("lineNumber", lineNumber, 1, "unbounded"))
	}
	if quantity < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded"))
	}
	if unitPrice < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("unitPrice", unitPrice, 0, "unbounded"))
	}
	if err := errors.Join(problems...); err != nil {
		return Line{}, err
	}

	return Line{
		lineNumber:     lineNumber,
		supplierItemID: supplierItemID,
		gtin:           gtin,
		quantity:       quantity,
		unitPrice:      unitPrice,
	}, nil
}

func (l Line) LineNumber() int        { return l.lineNumber }
func (l Line) SupplierItemID() string { return l.supplierItemID }
func (l Line) GTIN() string           { return l.gtin }
func (l Line) Quantity() int          { return l.quantity }
func (l Line) UnitPrice() int64       { return l.unitPrice }

// ValidateForPacking returns a ValidationError naming this line when it cannot be shipped.
func (l Line) ValidateForPacking() error {
	switch {
	case l.quantity <= 0:
		return errs.NewLineValidationError(l.lineNumber, "quantity", "must be positive")
	case l.supplierItemID == "":
		return errs.NewLineValidationError(l.lineNumber, "supplierItemId", "is required")
	case l.gtin == "":
		return errs.NewLineValidationError(l.lineNumber, "gtin", "is required")
	case !isGTIN(l.gtin):
		return errs.NewLineValidationError(l.lineNumber, "gtin", "must be 8, 12, 13 or 14 digits")
	}
	return nil
}

func isGTIN(s string) bool {
	switch len(s) {
	case 8, 12, 13, 14:
		return kernel.IsDigits(s)
	}
	return false
}

// checkLength counts characters, like the varchar columns the values end up in.
func checkLength(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return errs.NewValueIsInvalidErrorWithCause(field, fmt.Errorf("%d characters exceed the limit of %d", n, limit))
	}
	return nil
}
