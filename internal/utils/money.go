package utils

import (
	"errors"  // Error values
	"strconv" // String to integer conversion
	"strings" // String manipulation
)

// ErrBadAmount is returned for amounts that cannot be represented exactly
var ErrBadAmount = errors.New("invalid amount")

// ParseAmount converts a gateway decimal amount string ("5000.00") into
// minor currency units. exponent is the number of decimal places of the
// ledger currency (0 for UGX, 2 for cent-based currencies). Digits beyond
// the exponent must be zero; lossy amounts are rejected, never rounded.
func ParseAmount(s string, exponent int) (int64, error) {
	s = strings.TrimSpace(s) // Tolerate surrounding whitespace
	// Reject empty and negative amounts outright
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, ErrBadAmount
	}
	intPart, fracPart := s, "" // Split into integer and fraction parts
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:] // Split at the decimal point
	}
	// Integer part must be plain digits
	if intPart == "" || !isDigits(intPart) {
		return 0, ErrBadAmount
	}
	// Fraction part, when present, must be plain digits too
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrBadAmount
	}
	// Pad or validate the fraction against the currency exponent
	if len(fracPart) > exponent {
		// Digits beyond the exponent are only acceptable when zero
		if strings.Trim(fracPart[exponent:], "0") != "" {
			return 0, ErrBadAmount
		}
		fracPart = fracPart[:exponent] // Drop the trailing zeros
	}
	// Right-pad the fraction up to the exponent with zeros
	for len(fracPart) < exponent {
		fracPart += "0"
	}
	v, err := strconv.ParseInt(intPart+fracPart, 10, 64) // Combine into minor units
	if err != nil {
		return 0, ErrBadAmount // Overflow or malformed digits
	}
	return v, nil
}

// isDigits reports whether s consists solely of ASCII digits
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		// Any non-digit byte disqualifies the string
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
