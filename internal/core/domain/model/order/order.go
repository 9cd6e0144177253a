package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	MaxExternalRefLength = 64

	// MaxRejectionReasonLength bounds the stored reason in bytes.
	MaxRejectionReasonLength = 1024
)

var (
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderIsNotPacked is returned when dispatch is recorded before packing.
	ErrOrderIsNotPacked = errors.New("order is not packed")
)

// Order is a purchased order as ingested from the storefront. Only its lifecycle
// timestamps and rejection marker change after ingestion.
type Order struct {
	id          kernel.UUID
	externalRef string
	recipient   Address
	currency    string
	orderedAt   time.Time
	lines       []Line

	packedAt     *time.Time
	dispatchedAt *time.Time
	rejection    *Rejection

	guard guard.ConstructorGuard
}

// Rejection is the last non-retryable dispatch failure of an order, such as a line that
// cannot be packed or an exhausted identifier space.
type Rejection struct {
	Reason string
	At     time.Time
}

// NewOrder builds a freshly ingested order.
func NewOrder(id kernel.UUID, externalRef string, recipient Address, currency string, orderedAt time.Time, lines []Line) (*Order, error) {
	return RestoreOrder(id, externalRef, recipient, currency, orderedAt, lines, nil, nil, nil)
}

// RestoreOrder rebuilds an order from storage including its lifecycle timestamps.
func RestoreOrder(
	id kernel.UUID,
	externalRef string,
	recipient Address,
	currency string,
	orderedAt time.Time,
	lines []Line,
	packedAt, dispatchedAt *time.Time,
	rejection *Rejection,
) (*Order, error) {
	o := &Order{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		o.setID(id),
		o.setExternalRef(externalRef),
		o.setRecipient(recipient),
		o.setCurrency(currency),
		o.setOrderedAt(orderedAt),
		o.setLines(lines),
	); err != nil {
		return nil, err
	}

	o.packedAt = copyTime(packedAt)
	o.dispatchedAt = copyTime(dispatchedAt)
	if rejection != nil {
		o.Reject(rejection.Reason, rejection.At)
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID      { return o.id }
func (o *Order) ExternalRef() string  { return o.externalRef }
func (o *Order) Recipient() Address   { return o.recipient }
func (o *Order) Currency() string     { return o.currency }
func (o *Order) OrderedAt() time.Time { return o.orderedAt }
func (o *Order) LineCount() int       { return len(o.lines) }

// Lines returns a copy in ingestion order.
func (o *Order) Lines() []Line {
	out := make([]Line, len(o.lines))
	copy(out, o.lines)
	return out
}

func (o *Order) PackedAt() *time.Time     { return copyTime(o.packedAt) }
func (o *Order) DispatchedAt() *time.Time { return copyTime(o.dispatchedAt) }
func (o *Order) IsPacked() bool           { return o.packedAt != nil }
func (o *Order) IsDispatched() bool       { return o.dispatchedAt != nil }
func (o *Order) IsRejected() bool         { return o.rejection != nil }

func (o *Order) Rejection() *Rejection {
	if o.rejection == nil {
		return nil
	}
	r := *o.rejection
	return &r
}

// ValidateForPacking reports the first line that cannot be packed. Line numbers must be unique.
func (o *Order) ValidateForPacking() error {
	if len(o.lines) == 0 {
		return errs.NewValidationError("lines", "order has no lines")
	}

	seen := make(map[int]struct{}, len(o.lines))
	for _, l := range o.lines {
		if _, dup := seen[l.LineNumber()]; dup {
			return errs.NewLineValidationError(l.LineNumber(), "lineNumber", "is duplicated")
		}
		seen[l.LineNumber()] = struct{}{}

		if err := l.ValidateForPacking(); err != nil {
			return err
		}
	}
	return nil
}

// Reject records a failure that retrying cannot fix. Scheduled sweeps skip rejected orders,
// an explicit trigger still tries them again. The latest reason replaces earlier ones.
func (o *Order) Reject(reason string, at time.Time) {
	reason = kernel.TruncateUTF8(strings.TrimSpace(reason), MaxRejectionReasonLength)
	if reason == "" {
		reason = "rejected"
	}
	o.rejection = &Rejection{Reason: reason, At: at.UTC()}
}

// MarkPacked records the first packing and clears an earlier rejection; later calls keep
// the original timestamp.
func (o *Order) MarkPacked(at time.Time) {
	o.rejection = nil
	if o.packedAt == nil {
		t := at.UTC()
		o.packedAt = &t
	}
}

// MarkDispatched records the moment every shipment document reached the partner.
func (o *Order) MarkDispatched(at time.Time) error {
	if o.packedAt == nil {
		return ErrOrderIsNotPacked
	}
	if o.dispatchedAt == nil {
		t := at.UTC()
		o.dispatchedAt = &t
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	o.id = id
	return nil
}

func (o *Order) setExternalRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errs.NewValueIsRequiredError("externalRef")
	}
	if err := checkLength("externalRef", ref, MaxExternalRefLength); err != nil {
		return err
	}
	o.externalRef = ref
	return nil
}

func (o *Order) setRecipient(a Address) error {
	if err := a.Validate(); err != nil {
		return err
	}
	o.recipient = a
	return nil
}

func (o *Order) setCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}
	o.currency = currency
	return nil
}

func (o *Order) setOrderedAt(t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError("orderedAt")
	}
	o.orderedAt = t.UTC()
	return nil
}

func (o *Order) setLines(lines []Line) error {
	o.lines = make([]Line, len(lines))
	copy(o.lines, lines)
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
