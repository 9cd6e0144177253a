package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
)

const (
	// DispatchAdviceDocType is the document type code of dispatch advice messages.
	DispatchAdviceDocType = "DESADV"

	dispatchDocumentExtension = ".edi"
	messageIdentifier         = "DESADV:D:96A:UN"
)

// DispatchDocument is a rendered outbound file.
type DispatchDocument struct {
	Filename string
	DocType  string
	Content  []byte
}

// DispatchDocumentBuilder renders dispatch advice documents. Equal inputs give
// byte-identical output, so re-generation after a crash targets the same filename.
type DispatchDocumentBuilder struct{}

func NewDispatchDocumentBuilder() DispatchDocumentBuilder {
	return DispatchDocumentBuilder{}
}

// BuildDispatchDocument validates the shipment against the order and renders its document.
// Missing data is reported as *errs.ValidationError naming the offending line.
func (DispatchDocumentBuilder) BuildDispatchDocument(o *order.Order, s *shipment.Shipment, supplierID string) (DispatchDocument, error) {
	if err := o.Validate(); err != nil {
		return DispatchDocument{}, err
	}
	if err := s.Validate(); err != nil {
		return DispatchDocument{}, err
	}
	if !s.OrderID().IsEqual(o.ID()) {
		return DispatchDocument{}, errs.NewValidationError("shipment", "belongs to another order")
	}

	supplierID = strings.TrimSpace(supplierID)
	if supplierID == "" {
		return DispatchDocument{}, errs.NewValidationError("supplierId", "is required")
	}
	if s.ContainerID() == "" {
		return DispatchDocument{}, errs.NewValidationError("containerId", "is required")
	}
	if len(s.ContainerID()) != ContainerIDLength || !kernel.HasValidCheckDigit(s.ContainerID()) {
		return DispatchDocument{}, errs.NewValidationError("containerId", s.ContainerID()+" is not a valid 18-digit container id")
	}

	items := s.Items()
	if len(items) == 0 {
		return DispatchDocument{}, errs.NewValidationError("items", "shipment has no items")
	}
	for _, it := range items {
		switch {
		case it.SupplierItemID() == "":
			return DispatchDocument{}, errs.NewLineValidationError(it.LineNumber(), "supplierItemId", "is required")
		case it.GTIN() == "":
			return DispatchDocument{}, errs.NewLineValidationError(it.LineNumber(), "gtin", "is required")
		case it.Quantity() <= 0:
			return DispatchDocument{}, errs.NewLineValidationError(it.LineNumber(), "quantity", "must be positive")
		}
	}

	filename, err := DispatchFilename(s.DocumentNumber(), DispatchAdviceDocType, o.ExternalRef(), s.SequenceIndex())
	if err != nil {
		return DispatchDocument{}, err
	}

	return DispatchDocument{
		Filename: filename,
		DocType:  DispatchAdviceDocType,
		Content:  renderDispatchAdvice(o, s, items, supplierID),
	}, nil
}

// DispatchFilename is {documentNumber}_{docType}-{normalizedOrderRef}-P{sequenceIndex+1}.edi
// with an eight digit zero-padded document number.
func DispatchFilename(documentNumber int64, docType, orderRef string, sequenceIndex int) (string, error) {
	if documentNumber < 1 || documentNumber > MaxDocumentNumber {
		return "", errs.NewValidationError("documentNumber", fmt.Sprintf("%d is outside 1..%d", documentNumber, MaxDocumentNumber))
	}
	if sequenceIndex < 0 {
		return "", errs.NewValidationError("sequenceIndex", "must not be negative")
	}
	ref := NormalizeOrderRef(orderRef)
	if ref == "" {
		return "", errs.NewValidationError("orderRef", fmt.Sprintf("%q has no letters or digits", orderRef))
	}
	return fmt.Sprintf("%08d_%s-%s-P%d%s", documentNumber, docType, ref, sequenceIndex+1, dispatchDocumentExtension), nil
}

// NormalizeOrderRef keeps ASCII letters and digits, upper-cased.
func NormalizeOrderRef(ref string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(ref) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func renderDispatchAdvice(o *order.Order, s *shipment.Shipment, items []shipment.Item, supplierID string) []byte {
	w := &segmentWriter{}
	msgRef := fmt.Sprintf("%08d", s.DocumentNumber())
	recipient := o.Recipient()

	w.segment("UNH", msgRef, messageIdentifier)
	w.segment("BGM", "351", msgRef, "9")
	w.segment("DTM", composite("137", o.OrderedAt().Format("20060102"), "102"))
	w.segment("RFF", composite("ON", o.ExternalRef()))
	w.segment("NAD", "SU", composite(supplierID, "", "9"))
	w.segment("NAD", "DP", "", "", release(recipient.Name()), release(recipient.Street()),
		release(recipient.City()), "", release(recipient.PostalCode()), release(recipient.CountryCode()))
	w.segment("CUX", composite("2", o.Currency(), "9"))
	w.segment("TDT", "20", "", "", "", release(s.Carrier()))
	if tn := s.TrackingNumber(); tn != nil {
		w.segment("RFF", composite("CN", *tn))
	}
	w.segment("CPS", "1")
	w.segment("PAC", "1", "", s.PackageType().EDICode())
	w.segment("GIN", "BJ", s.ContainerID())

	for i, it := range items {
		w.segment("LIN", strconv.Itoa(i+1), "", composite(it.GTIN(), "SRV"))
		w.segment("PIA", "1", composite(it.SupplierItemID(), "SA"))
		w.segment("QTY", composite("12", strconv.Itoa(it.Quantity())))
		w.segment("RFF", composite("LI", strconv.Itoa(it.LineNumber())))
	}

	w.segment("CNT", composite("2", strconv.Itoa(len(items))))
	w.segment("UNT", strconv.Itoa(w.count+1), msgRef)

	return w.buf.Bytes()
}

// segmentWriter writes one segment per line, elements separated by '+'.
type segmentWriter struct {
	buf   bytes.Buffer
	count int
}

func (w *segmentWriter) segment(tag string, elements ...string) {
	w.buf.WriteString(tag)
	for _, e := range elements {
		w.buf.WriteByte('+')
		w.buf.WriteString(e)
	}
	w.buf.WriteString("'\n")
	w.count++
}

// composite joins released components with ':' and drops trailing empty components.
func composite(parts ...string) string {
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = release(p)
	}
	return strings.Join(out, ":")
}

var releaser = strings.NewReplacer(
	"?", "??",
	"+", "?+",
	":", "?:",
	"'", "?'",
	"\r", " ",
	"\n", " ",
)

// release escapes EDIFACT service characters with the '?' release character.
func release(s string) string {
	return releaser.Replace(s)
}
