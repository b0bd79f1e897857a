package domain

import (
	"fmt"
	"time"
)

// MatchStatus is the review state of a pairing outcome.
type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusUnmatched MatchStatus = "unmatched"
	MatchStatusDisputed  MatchStatus = "disputed"
	MatchStatusResolved  MatchStatus = "resolved"
)

// Confidence buckets a confidence score for review triage.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidence score bucket thresholds.
const (
	HighConfidenceScore   = 85
	MediumConfidenceScore = 50
)

// ConfidenceForScore maps a 0-100 score to its bucket.
func ConfidenceForScore(score int) Confidence {
	switch {
	case score >= HighConfidenceScore:
		return ConfidenceHigh
	case score >= MediumConfidenceScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Match is the outcome of pairing (or failing to pair) a statement line with
// a book transaction. BookTransactionID is nil for unmatched lines.
type Match struct {
	ID                string
	SessionID         string
	StatementLineID   string
	BookTransactionID *string
	Status            MatchStatus
	Confidence        Confidence
	ConfidenceScore   int
	MatchCriteria     []string
	MatchReason       string
	Note              string
	Adjustment        *Adjustment
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks score range and bucket consistency.
func (m *Match) Validate() error {
	if m.ConfidenceScore < 0 || m.ConfidenceScore > 100 {
		return fmt.Errorf("%w: confidence score %d out of range", ErrValidation, m.ConfidenceScore)
	}
	if m.Confidence != ConfidenceForScore(m.ConfidenceScore) {
		return fmt.Errorf("%w: confidence %q inconsistent with score %d", ErrValidation, m.Confidence, m.ConfidenceScore)
	}
	if m.Status == MatchStatusMatched && m.BookTransactionID == nil {
		return fmt.Errorf("%w: matched match requires a book transaction", ErrValidation)
	}
	if m.Status == MatchStatusUnmatched && m.BookTransactionID != nil {
		return fmt.Errorf("%w: unmatched match must not reference a book transaction", ErrValidation)
	}
	return nil
}

// CanDispute reports whether the match may enter review.
func (m *Match) CanDispute() bool {
	return m.Status == MatchStatusMatched
}

// CanResolve reports whether a disputed match may be resolved.
func (m *Match) CanResolve() bool {
	return m.Status == MatchStatusDisputed
}
