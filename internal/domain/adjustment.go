package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Adjustment is an append-only audit record of a manual correction applied
// to a match. A match may accumulate multiple adjustments; only the latest
// is active. History is never mutated in place.
type Adjustment struct {
	ID             string
	MatchID        string
	AdjustedAmount decimal.Decimal
	Reason         string
	AdjustedBy     string
	AdjustedAt     time.Time
}

// Validate validates the adjustment before it is appended.
func (a *Adjustment) Validate() error {
	if strings.TrimSpace(a.Reason) == "" {
		return fmt.Errorf("%w: adjustment reason is required", ErrValidation)
	}
	if strings.TrimSpace(a.AdjustedBy) == "" {
		return fmt.Errorf("%w: adjustment actor is required", ErrValidation)
	}
	return nil
}
