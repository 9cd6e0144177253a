package order

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Address is the ship-to party of an order.
type Address struct {
	name        string
	street      string
	city        string
	postalCode  string
	countryCode string

	guard guard.ConstructorGuard
}

const (
	MaxNameLength       = 255
	MaxStreetLength     = 255
	MaxCityLength       = 128
	MaxPostalCodeLength = 32
)

// NewAddress requires a recipient name, a city and an ISO 3166-1 alpha-2 country code.
func NewAddress(name, street, city, postalCode, countryCode string) (Address, error) {
	a := Address{
		name:        strings.TrimSpace(name),
		street:      strings.TrimSpace(street),
		city:        strings.TrimSpace(city),
		postalCode:  strings.TrimSpace(postalCode),
		countryCode: strings.ToUpper(strings.TrimSpace(countryCode)),
		guard:       guard.NewConstructorGuard(),
	}

	var problems []error
	if a.name == "" {
		problems = append(problems, errs.NewValueIsRequiredError("recipient name"))
	}
	if a.city == "" {
		problems = append(problems, errs.NewValueIsRequiredError("recipient city"))
	}
	if len(a.countryCode) != 2 {
		problems = append(problems, errs.NewValueIsInvalidError("recipient country code"))
	}
	problems = append(problems,
		checkLength("recipient name", a.name, MaxNameLength),
		checkLength("recipient street", a.street, MaxStreetLength),
		checkLength("recipient city", a.city, MaxCityLength),
		checkLength("recipient postal code", a.postalCode, MaxPostalCodeLength),
	)
	if err := errors.Join(problems...); err != nil {
		return Address{}, err
	}

	return a, nil
}

func (a Address) Name() string        { return a.name }
func (a Address) Street() string      { return a.street }
func (a Address) City() string        { return a.city }
func (a Address) PostalCode() string  { return a.postalCode }
func (a Address) CountryCode() string { return a.countryCode }

func (a Address) Validate() error {
	return a.guard.Validate(errs.NewValueIsRequiredError("recipient address"))
}
