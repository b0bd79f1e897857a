package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a reconciliation session.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusFailed, SessionStatusCancelled:
		return true
	}
	return false
}

// SessionType identifies the source being reconciled against.
type SessionType string

const (
	SessionTypeBank       SessionType = "bank"
	SessionTypeCreditCard SessionType = "credit_card"
	SessionTypeManual     SessionType = "manual"
)

var validSessionTypes = map[SessionType]bool{
	SessionTypeBank:       true,
	SessionTypeCreditCard: true,
	SessionTypeManual:     true,
}

// SessionTotals aggregates the outcome of a completed run.
type SessionTotals struct {
	StatementBalance decimal.Decimal
	BookBalance      decimal.Decimal
	Difference       decimal.Decimal
	TotalLines       int
	Matched          int
	Unmatched        int
	Discrepancies    int
}

// Session represents one reconciliation run for an account over a period.
// At most one session per account may be in_progress at a time.
type Session struct {
	ID            string
	AccountRef    string
	Type          SessionType
	Status        SessionStatus
	StartDate     time.Time
	EndDate       time.Time
	Totals        SessionTotals
	FailureReason string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Validate validates a session request before creation.
func (s *Session) Validate() error {
	if s.AccountRef == "" {
		return ErrValidation
	}
	if !validSessionTypes[s.Type] {
		return ErrValidation
	}
	if s.EndDate.Before(s.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// CanRun reports whether the session may transition to in_progress.
func (s *Session) CanRun() bool {
	return s.Status == SessionStatusPending
}

// CanCancel reports whether the session may transition to cancelled.
func (s *Session) CanCancel() bool {
	return s.Status == SessionStatusPending || s.Status == SessionStatusInProgress
}
