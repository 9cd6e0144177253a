package document

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the delivery state of an outbound document.
type Status int

const (
	// Unknown is the zero value and marks a record that has never been attempted.
	Unknown Status = iota

	// Pending means a transfer attempt is in progress or was interrupted.
	Pending

	// Uploaded is reached after the partner directory holds the file under its final name.
	Uploaded

	// Error records a failed attempt. It is not terminal.
	Error
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:  "UNKNOWN",
		Pending:  "PENDING",
		Uploaded: "UPLOADED",
		Error:    "ERROR",
	}
}

// ParseStatus accepts the persisted string form.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	switch s {
	case Pending, Uploaded, Error:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Begin moves to Pending for a new attempt. An Uploaded document only moves with force.
func (s Status) Begin(force bool) (Status, error) {
	if s == Uploaded && !force {
		return s, ErrAlreadyUploaded
	}
	return Pending, nil
}

// Succeed is only valid from Pending.
func (s Status) Succeed() (Status, error) {
	if s != Pending {
		return s, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s cannot become UPLOADED", s))
	}
	return Uploaded, nil
}

// Fail is only valid from Pending.
func (s Status) Fail() (Status, error) {
	if s != Pending {
		return s, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s cannot become ERROR", s))
	}
	return Error, nil
}
