// Package core holds the expense domain model: records, money and date
// parsing, filters, aggregation results, and the error taxonomy shared by
// every embedding of the record store.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns a ValidationError for invalid formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "amount", Reason: "must not be empty"}
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, &ValidationError{Field: "amount", Reason: "must be a positive amount"}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, &ValidationError{Field: "amount", Reason: "is too large"}
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, &ValidationError{Field: "amount", Reason: "must be a positive amount"}
	}
	return cents, nil
}

// CentsFromFloat converts a float amount (as received from JSON tool
// arguments) to cents, rounding half-up on the third decimal.
func CentsFromFloat(amount float64) (int64, error) {
	return ParseDecimalToCents(strconv.FormatFloat(amount, 'f', -1, 64))
}

// Units returns the whole-currency value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount as a plain decimal, e.g. "12.34".
func (m Money) String() string {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	s := strconv.FormatInt(c/100, 10) + "." + pad2(c%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
