package shipment

import (
	"strings"

	"fulfillment/internal/pkg/errs"
)

// CarrierPolicy is the configured carrier allow-list. The first entry is the default.
type CarrierPolicy struct {
	allowed []string
}

// NewCarrierPolicy normalizes and de-duplicates codes, keeping their order.
func NewCarrierPolicy(codes []string) (CarrierPolicy, error) {
	seen := make(map[string]struct{}, len(codes))
	allowed := make([]string, 0, len(codes))
	for _, c := range codes {
		c = normalizeCarrier(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		allowed = append(allowed, c)
	}
	if len(allowed) == 0 {
		return CarrierPolicy{}, errs.NewConfigurationError("CARRIERS", "at least one carrier is required")
	}
	return CarrierPolicy{allowed: allowed}, nil
}

// Default is the carrier used when the trigger names none.
func (p CarrierPolicy) Default() string {
	if len(p.allowed) == 0 {
		return ""
	}
	return p.allowed[0]
}

func (p CarrierPolicy) Allowed() []string {
	out := make([]string, len(p.allowed))
	copy(out, p.allowed)
	return out
}

// Normalize maps raw input to an allow-listed code. Blank input yields the default carrier.
func (p CarrierPolicy) Normalize(raw string) (string, error) {
	c := normalizeCarrier(raw)
	if c == "" {
		c = p.Default()
	}
	for _, a := range p.allowed {
		if a == c {
			return c, nil
		}
	}
	return "", errs.NewValidationError("carrier", c+" is not in the carrier allow-list")
}

func normalizeCarrier(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
