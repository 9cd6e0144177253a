package shipment

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

type PackageType string

const (
	PackageTypeBox      PackageType = "box"
	PackageTypeEnvelope PackageType = "envelope"
	PackageTypeBag      PackageType = "bag"
	PackageTypePallet   PackageType = "pallet"
)

// ParsePackageType accepts the names case-insensitively.
func ParsePackageType(s string) (PackageType, error) {
	pt := PackageType(strings.ToLower(strings.TrimSpace(s)))
	if err := pt.Validate(); err != nil {
		return "", err
	}
	return pt, nil
}

func (p PackageType) Validate() error {
	switch p {
	case PackageTypeBox, PackageTypeEnvelope, PackageTypeBag, PackageTypePallet:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("packageType", fmt.Errorf("%q is not a known package type", string(p)))
}

// EDICode is the UN/ECE recommendation 21 package code written into dispatch documents.
func (p PackageType) EDICode() string {
	switch p {
	case PackageTypeEnvelope:
		return "EN"
	case PackageTypeBag:
		return "BG"
	case PackageTypePallet:
		return "PX"
	default:
		return "CT"
	}
}

func (p PackageType) String() string {
	return string(p)
}
