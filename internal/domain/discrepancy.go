package domain

import (
	"fmt"
	"strings"
	"time"
)

// DiscrepancyType categorizes a detected inconsistency.
type DiscrepancyType string

const (
	DiscrepancyAmountMismatch      DiscrepancyType = "amount_mismatch"
	DiscrepancyDateMismatch        DiscrepancyType = "date_mismatch"
	DiscrepancyDescriptionMismatch DiscrepancyType = "description_mismatch"
	DiscrepancyMissingTransaction  DiscrepancyType = "missing_transaction"
	DiscrepancyDuplicate           DiscrepancyType = "duplicate_transaction"
	DiscrepancyOther               DiscrepancyType = "other"
)

// Severity grades how urgently a discrepancy needs review.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Escalate raises a severity by one level, capped at critical.
func (s Severity) Escalate() Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// DiscrepancyStatus is the review workflow state.
type DiscrepancyStatus string

const (
	DiscrepancyOpen          DiscrepancyStatus = "open"
	DiscrepancyInvestigating DiscrepancyStatus = "investigating"
	DiscrepancyResolved      DiscrepancyStatus = "resolved"
	DiscrepancyDismissed     DiscrepancyStatus = "dismissed"
)

// DiscrepancySide tags which side of the reconciliation a missing
// transaction was detected on.
type DiscrepancySide string

const (
	SideStatement DiscrepancySide = "statement"
	SideBook      DiscrepancySide = "book"
)

// Discrepancy is a detected inconsistency requiring review. MatchID is set
// when the discrepancy was derived from a specific match.
type Discrepancy struct {
	ID            string
	SessionID     string
	MatchID       *string
	Type          DiscrepancyType
	Severity      Severity
	Side          DiscrepancySide
	ExpectedValue string
	ActualValue   string
	Difference    string
	Status        DiscrepancyStatus
	Resolution    string
	ResolvedBy    string
	DetectedAt    time.Time
	ResolvedAt    *time.Time
}

// Resolve transitions the discrepancy to resolved. A non-empty resolution is
// required.
func (d *Discrepancy) Resolve(resolution, actor string, at time.Time) error {
	if strings.TrimSpace(resolution) == "" {
		return fmt.Errorf("%w: resolution is required", ErrValidation)
	}
	if d.Status != DiscrepancyOpen && d.Status != DiscrepancyInvestigating {
		return fmt.Errorf("%w: cannot resolve a %s discrepancy", ErrValidation, d.Status)
	}
	d.Status = DiscrepancyResolved
	d.Resolution = resolution
	d.ResolvedBy = actor
	d.ResolvedAt = &at
	return nil
}

// Dismiss transitions the discrepancy to dismissed. No resolution text is
// needed but an actor reference is.
func (d *Discrepancy) Dismiss(actor string, at time.Time) error {
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("%w: actor is required to dismiss", ErrValidation)
	}
	if d.Status.TerminalReview() {
		return fmt.Errorf("%w: cannot dismiss a %s discrepancy", ErrValidation, d.Status)
	}
	d.Status = DiscrepancyDismissed
	d.ResolvedBy = actor
	d.ResolvedAt = &at
	return nil
}

// Investigate moves an open discrepancy into the investigating state.
func (d *Discrepancy) Investigate() error {
	if d.Status != DiscrepancyOpen {
		return fmt.Errorf("%w: cannot investigate a %s discrepancy", ErrValidation, d.Status)
	}
	d.Status = DiscrepancyInvestigating
	return nil
}

// TerminalReview reports whether the review workflow has ended.
func (s DiscrepancyStatus) TerminalReview() bool {
	return s == DiscrepancyResolved || s == DiscrepancyDismissed
}
