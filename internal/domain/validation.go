package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AmountFromFloat converts a caller-supplied amount to a decimal, rejecting
// non-finite values before any state is touched.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: amount must be finite", ErrValidation)
	}
	return decimal.NewFromFloat(f), nil
}

// ValidateDateRange rejects inverted ranges.
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
