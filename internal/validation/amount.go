package validation

import (
	"math"    // Non-finite checks
	"strings" // Input trimming

	"github.com/shopspring/decimal" // Exact decimal parsing
)

// MaxAmount is the largest amount a single form may carry
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// ParseAmount converts a form amount such as "49.99" into the numeric value
// sent to the backend. Amounts must be positive with at most two decimals.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, &Error{Field: "amount", Message: "is required"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &Error{Field: "amount", Message: "must be a number"}
	}
	if !d.IsPositive() {
		return 0, &Error{Field: "amount", Message: "must be greater than 0"}
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, &Error{Field: "amount", Message: "must have at most 2 decimal places"}
	}
	if d.GreaterThan(MaxAmount) {
		return 0, &Error{Field: "amount", Message: "is too large"}
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &Error{Field: "amount", Message: "must be a number"}
	}
	return f, nil
}
