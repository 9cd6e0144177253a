package kernel

import "fulfillment/internal/pkg/errs"

// CheckDigit computes the GS1 Mod-10 check digit for a string of decimal digits.
// Weights alternate 3,1,3,... starting from the rightmost digit.
func CheckDigit(base string) (int, error) {
	if base == "" {
		return 0, errs.NewValueIsRequiredError("check digit base")
	}

	sum := 0
	weight := 3
	for i := len(base) - 1; i >= 0; i-- {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, errs.NewValueIsInvalidError("check digit base: " + base)
		}
		sum += int(c-'0') * weight
		weight = 4 - weight
	}

	return (10 - sum%10) % 10, nil
}

// HasValidCheckDigit reports whether the last digit of code is the GS1 check digit of the rest.
func HasValidCheckDigit(code string) bool {
	if len(code) < 2 {
		return false
	}
	want, err := CheckDigit(code[:len(code)-1])
	if err != nil {
		return false
	}
	last := code[len(code)-1]
	return last >= '0' && last <= '9' && int(last-'0') == want
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
