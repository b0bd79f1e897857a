package domain

import "time"

// Event types
const (
	EventTypeSessionCompleted = "reconciliation.session.completed"
	EventTypeSessionFailed    = "reconciliation.session.failed"
	EventTypeSessionCancelled = "reconciliation.session.cancelled"
)

// Aggregate types
const (
	AggregateTypeSession = "reconciliation_session"
)

// OutboxEvent represents an event to be published to downstream consumers.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// SessionOutcomeEvent is the notification payload emitted when a session
// reaches a terminal status. Delivery is fire-and-forget.
type SessionOutcomeEvent struct {
	SessionID        string `json:"session_id"`
	AccountRef       string `json:"account_ref"`
	Status           string `json:"status"`
	StatementBalance string `json:"statement_balance"`
	BookBalance      string `json:"book_balance"`
	Difference       string `json:"difference"`
	TotalLines       int    `json:"total_lines"`
	Matched          int    `json:"matched"`
	Unmatched        int    `json:"unmatched"`
	Discrepancies    int    `json:"discrepancies"`
}

// SessionOutcomePayload builds the outbox payload for a terminal session.
func SessionOutcomePayload(s *Session) map[string]any {
	return map[string]any{
		"session_id":        s.ID,
		"account_ref":       s.AccountRef,
		"status":            string(s.Status),
		"statement_balance": s.Totals.StatementBalance.String(),
		"book_balance":      s.Totals.BookBalance.String(),
		"difference":        s.Totals.Difference.String(),
		"total_lines":       s.Totals.TotalLines,
		"matched":           s.Totals.Matched,
		"unmatched":         s.Totals.Unmatched,
		"discrepancies":     s.Totals.Discrepancies,
	}
}
