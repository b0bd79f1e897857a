// Package matcher implements the reconciliation core: candidate scoring,
// rule evaluation and discrepancy detection.
//
// Matching is a greedy, line-order-dependent bipartite assignment. It is not
// globally optimal, but it is deterministic and every decision carries an
// explanation, which is what audit review needs.
package matcher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Weights are the relative importance of each scoring component. They should
// sum to approximately 1.0.
type Weights struct {
	Amount      float64
	Date        float64
	Reference   float64
	Description float64
}

// Config holds the tolerances and thresholds that drive matching. Tolerance
// constants are deliberately explicit configuration rather than scattered
// literals.
type Config struct {
	// DateWindowDays is the candidate window around a statement line's date.
	DateWindowDays int

	// AmountTolerancePercent is the relative amount tolerance (1.0 = 1%).
	AmountTolerancePercent float64

	// AmountToleranceAbs is the absolute tolerance floor. The effective
	// tolerance for a line is the larger of the two.
	AmountToleranceAbs decimal.Decimal

	// AcceptThreshold is the minimum confidence score (0-100) for a
	// candidate to be accepted as a match.
	AcceptThreshold int

	Weights Weights
}

// DefaultConfig returns the documented defaults: a ±5 day window, an amount
// tolerance of max(1%, 0.50), an acceptance threshold of 50 and weights
// 0.4/0.25/0.2/0.15 for amount/date/reference/description.
func DefaultConfig() *Config {
	return &Config{
		DateWindowDays:         5,
		AmountTolerancePercent: 1.0,
		AmountToleranceAbs:     decimal.RequireFromString("0.50"),
		AcceptThreshold:        50,
		Weights: Weights{
			Amount:      0.40,
			Date:        0.25,
			Reference:   0.20,
			Description: 0.15,
		},
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.DateWindowDays < 0 {
		return fmt.Errorf("date window days must not be negative: %d", c.DateWindowDays)
	}
	if c.AmountTolerancePercent < 0 || c.AmountTolerancePercent > 100 {
		return fmt.Errorf("amount tolerance percent must be between 0 and 100: %f", c.AmountTolerancePercent)
	}
	if c.AmountToleranceAbs.IsNegative() {
		return fmt.Errorf("absolute amount tolerance must not be negative: %s", c.AmountToleranceAbs)
	}
	if c.AcceptThreshold < 0 || c.AcceptThreshold > 100 {
		return fmt.Errorf("accept threshold must be between 0 and 100: %d", c.AcceptThreshold)
	}
	total := c.Weights.Amount + c.Weights.Date + c.Weights.Reference + c.Weights.Description
	if total < 0.9 || total > 1.1 {
		return fmt.Errorf("weights should sum to approximately 1.0, got %f", total)
	}
	return nil
}

// AmountTolerance returns the effective tolerance for a line amount: the
// larger of the percentage tolerance and the absolute floor.
func (c *Config) AmountTolerance(amount decimal.Decimal) decimal.Decimal {
	pct := amount.Abs().Mul(decimal.NewFromFloat(c.AmountTolerancePercent / 100.0))
	if pct.GreaterThan(c.AmountToleranceAbs) {
		return pct
	}
	return c.AmountToleranceAbs
}

// DateWindow returns the candidate window duration.
func (c *Config) DateWindow() time.Duration {
	return time.Duration(c.DateWindowDays) * 24 * time.Hour
}

// WithinDateWindow reports whether two dates are within the window.
func (c *Config) WithinDateWindow(a, b time.Time) bool {
	delta := a.Sub(b)
	if delta < 0 {
		delta = -delta
	}
	return delta <= c.DateWindow()
}
