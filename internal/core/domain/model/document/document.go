package document

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrDocumentIsNotConstructed = errors.New("Document must be created via NewDocument constructor")

	// ErrAlreadyUploaded is returned by BeginAttempt when the document was delivered and
	// force is not set. Callers report it as a skipped delivery.
	ErrAlreadyUploaded = errors.New("document already uploaded")
)

// maxErrorMessageLength bounds what is stored from transport failures.
const maxErrorMessageLength = 1024

// Document is the delivery record of one outbound trading-partner file, keyed by filename.
type Document struct {
	filename     string
	docType      string
	orderID      kernel.UUID
	orderRef     string
	shipmentID   kernel.UUID
	containerIDs []string
	status       Status
	sentAt       *time.Time
	errorMessage string
	attempts     int
	updatedAt    time.Time

	guard guard.ConstructorGuard
}

// NewDocument starts tracking a file that has never been attempted.
func NewDocument(filename, docType string, orderID kernel.UUID, orderRef string, shipmentID kernel.UUID, containerIDs []string) (*Document, error) {
	d := &Document{status: Unknown, guard: guard.NewConstructorGuard()}
	if err := d.setIdentity(filename, docType, orderID, orderRef, shipmentID, containerIDs); err != nil {
		return nil, err
	}
	return d, nil
}

func RestoreDocument(
	filename, docType string,
	orderID kernel.UUID,
	orderRef string,
	shipmentID kernel.UUID,
	containerIDs []string,
	status Status,
	sentAt *time.Time,
	errorMessage string,
	attempts int,
	updatedAt time.Time,
) (*Document, error) {
	d := &Document{guard: guard.NewConstructorGuard()}
	if err := errors.Join(
		d.setIdentity(filename, docType, orderID, orderRef, shipmentID, containerIDs),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	d.status = status
	if sentAt != nil {
		t := sentAt.UTC()
		d.sentAt = &t
	}
	d.errorMessage = errorMessage
	d.attempts = attempts
	d.updatedAt = updatedAt.UTC()
	return d, nil
}

func (d *Document) Validate() error {
	if d == nil {
		return ErrDocumentIsNotConstructed
	}
	return d.guard.Validate(ErrDocumentIsNotConstructed)
}

func (d *Document) Filename() string        { return d.filename }
func (d *Document) DocType() string         { return d.docType }
func (d *Document) OrderID() kernel.UUID    { return d.orderID }
func (d *Document) OrderRef() string        { return d.orderRef }
func (d *Document) ShipmentID() kernel.UUID { return d.shipmentID }
func (d *Document) Status() Status          { return d.status }
func (d *Document) ErrorMessage() string    { return d.errorMessage }
func (d *Document) Attempts() int           { return d.attempts }
func (d *Document) UpdatedAt() time.Time    { return d.updatedAt }

func (d *Document) ContainerIDs() []string {
	out := make([]string, len(d.containerIDs))
	copy(out, d.containerIDs)
	return out
}

func (d *Document) SentAt() *time.Time {
	if d.sentAt == nil {
		return nil
	}
	t := *d.sentAt
	return &t
}

// BeginAttempt moves the record to PENDING and counts the attempt.
// It returns ErrAlreadyUploaded, leaving the record untouched, for an uploaded
// document without force.
func (d *Document) BeginAttempt(force bool, at time.Time) error {
	next, err := d.status.Begin(force)
	if err != nil {
		return err
	}
	d.status = next
	d.attempts++
	d.updatedAt = at.UTC()
	return nil
}

// MarkUploaded records a successful transfer and clears any earlier error.
func (d *Document) MarkUploaded(at time.Time) error {
	next, err := d.status.Succeed()
	if err != nil {
		return err
	}
	t := at.UTC()
	d.status = next
	d.sentAt = &t
	d.errorMessage = ""
	d.updatedAt = t
	return nil
}

// MarkFailed records a failed transfer. The document stays eligible for retry.
func (d *Document) MarkFailed(message string, at time.Time) error {
	next, err := d.status.Fail()
	if err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown transfer failure"
	}
	message = kernel.TruncateUTF8(message, maxErrorMessageLength)
	d.status = next
	d.errorMessage = message
	d.updatedAt = at.UTC()
	return nil
}

func (d *Document) setIdentity(filename, docType string, orderID kernel.UUID, orderRef string, shipmentID kernel.UUID, containerIDs []string) error {
	var problems []error
	if strings.TrimSpace(filename) == "" || strings.ContainsAny(filename, `/\`) {
		problems = append(problems, errs.NewValueIsInvalidError("filename"))
	}
	if strings.TrimSpace(docType) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("docType"))
	}
	if err := orderID.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("order id: %w", err))
	}
	if err := shipmentID.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("shipment id: %w", err))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	d.filename = filename
	d.docType = docType
	d.orderID = orderID
	d.orderRef = orderRef
	d.shipmentID = shipmentID
	d.containerIDs = make([]string, len(containerIDs))
	copy(d.containerIDs, containerIDs)
	return nil
}
