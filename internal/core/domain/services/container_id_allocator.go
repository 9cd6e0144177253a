package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	// containerIDBaseLength is the SSCC length without its check digit.
	containerIDBaseLength = 17

	// ContainerIDLength is the full SSCC length.
	ContainerIDLength = containerIDBaseLength + 1

	// DocumentNumberScope is the counter scope for dispatch document numbers.
	DocumentNumberScope = "document"

	// MaxDocumentNumber keeps document numbers within their eight filename digits.
	MaxDocumentNumber int64 = 99_999_999
)

var ErrContainerIDSchemeIsNotConstructed = errors.New("ContainerIDScheme must be created via NewContainerIDScheme constructor")

// ContainerIDScheme is the validated SSCC layout: extension digit, company prefix and
// as many serial digits as remain of the 17 base digits.
type ContainerIDScheme struct {
	extensionDigit string
	companyPrefix  string
	serialLength   int
	maxSerial      int64
}

// NewContainerIDScheme fails with a ConfigurationError for anything but one extension
// digit and a 1..15 digit company prefix. There is no fallback value.
func NewContainerIDScheme(extensionDigit, companyPrefix string) (ContainerIDScheme, error) {
	extensionDigit = strings.TrimSpace(extensionDigit)
	companyPrefix = strings.TrimSpace(companyPrefix)

	if len(extensionDigit) != 1 || !kernel.IsDigits(extensionDigit) {
		return ContainerIDScheme{}, errs.NewConfigurationError("SSCC_EXTENSION_DIGIT",
			fmt.Sprintf("must be a single digit, got %q", extensionDigit))
	}
	if !kernel.IsDigits(companyPrefix) {
		return ContainerIDScheme{}, errs.NewConfigurationError("SSCC_COMPANY_PREFIX",
			fmt.Sprintf("must contain digits only, got %q", companyPrefix))
	}

	serialLength := containerIDBaseLength - 1 - len(companyPrefix)
	if serialLength < 1 {
		return ContainerIDScheme{}, errs.NewConfigurationError("SSCC_COMPANY_PREFIX",
			fmt.Sprintf("%d digits leave no room for a serial", len(companyPrefix)))
	}

	maxSerial := int64(1)
	for range serialLength {
		maxSerial *= 10
	}

	return ContainerIDScheme{
		extensionDigit: extensionDigit,
		companyPrefix:  companyPrefix,
		serialLength:   serialLength,
		maxSerial:      maxSerial - 1,
	}, nil
}

func (s ContainerIDScheme) Validate() error {
	if s.serialLength == 0 {
		return ErrContainerIDSchemeIsNotConstructed
	}
	return nil
}

func (s ContainerIDScheme) SerialLength() int { return s.serialLength }
func (s ContainerIDScheme) MaxSerial() int64  { return s.maxSerial }

// Scope names the durable counter backing this scheme. Changing prefix or extension digit
// starts a new counter.
func (s ContainerIDScheme) Scope() string {
	return "sscc:" + s.extensionDigit + ":" + s.companyPrefix
}

// Compose renders serial as an 18-digit container id.
func (s ContainerIDScheme) Compose(serial int64) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if serial < 0 {
		return "", errs.NewValueIsOutOfRangeError("serial", serial, 0, s.maxSerial)
	}
	if serial > s.maxSerial {
		return "", errs.NewExhaustionError(s.Scope(), serial, s.maxSerial)
	}

	base := s.extensionDigit + s.companyPrefix + fmt.Sprintf("%0*d", s.serialLength, serial)
	check, err := kernel.CheckDigit(base)
	if err != nil {
		return "", err
	}
	return base + strconv.Itoa(check), nil
}

// ContainerIDAllocator hands out container ids from a durable counter.
type ContainerIDAllocator struct {
	scheme  ContainerIDScheme
	counter ports.SerialCounter
}

func NewContainerIDAllocator(scheme ContainerIDScheme, counter ports.SerialCounter) (*ContainerIDAllocator, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	if counter == nil {
		return nil, errs.NewValueIsRequiredError("counter")
	}
	return &ContainerIDAllocator{scheme: scheme, counter: counter}, nil
}

// AllocateContainerID increments the scheme's counter and composes the id. An exhausted
// serial space returns *errs.ExhaustionError; the burned serial is not reused.
func (a *ContainerIDAllocator) AllocateContainerID(ctx context.Context) (string, error) {
	serial, err := a.counter.Next(ctx, a.scheme.Scope())
	if err != nil {
		return "", fmt.Errorf("increment container serial: %w", err)
	}
	return a.scheme.Compose(serial)
}

// AllocateDocumentNumber draws the next dispatch document number.
func (a *ContainerIDAllocator) AllocateDocumentNumber(ctx context.Context) (int64, error) {
	n, err := a.counter.Next(ctx, DocumentNumberScope)
	if err != nil {
		return 0, fmt.Errorf("increment document number: %w", err)
	}
	if n > MaxDocumentNumber {
		return 0, errs.NewExhaustionError(DocumentNumberScope, n, MaxDocumentNumber)
	}
	return n, nil
}
