package usecase

import (
	"context"
	"time"

	"github.com/financbase/reconcile/internal/domain"
)

// SessionRepository defines data access for reconciliation sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// GetInProgressByAccount returns ErrSessionNotFound when the account has
	// no in_progress session.
	GetInProgressByAccount(ctx context.Context, accountRef string) (*domain.Session, error)
	// UpdateStatus transitions the session; tx may be nil for standalone
	// transitions. A unique-violation on the single-active-session index is
	// surfaced as ErrSessionAlreadyActive.
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.SessionStatus, failureReason string, completedAt *time.Time) error
	// UpdateProgress persists incremental per-batch progress so a crash
	// mid-run leaves auditable state.
	UpdateProgress(ctx context.Context, id string, matched, unmatched int) error
	UpdateTotals(ctx context.Context, tx Transaction, id string, totals domain.SessionTotals) error
	ListByAccount(ctx context.Context, accountRef string, limit, offset int) ([]*domain.Session, error)
}

// StatementLineRepository stores session-owned statement line copies.
type StatementLineRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, lines []*domain.StatementLine) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.StatementLine, error)
}

// MatchRepository defines data access for matches.
type MatchRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, matches []*domain.Match) error
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Match, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.MatchStatus, updatedAt time.Time) error
	// SetActiveAdjustment updates the match's effective fields from the
	// latest adjustment.
	SetActiveAdjustment(ctx context.Context, tx Transaction, matchID string, adjustment *domain.Adjustment) error
	// AnnotateSession attaches a note to every match of a session, used to
	// mark matches left behind by a cancellation.
	AnnotateSession(ctx context.Context, sessionID, note string) error
}

// DiscrepancyRepository defines data access for discrepancies.
type DiscrepancyRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, discrepancies []*domain.Discrepancy) error
	GetByID(ctx context.Context, id string) (*domain.Discrepancy, error)
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Discrepancy, error)
	UpdateReview(ctx context.Context, d *domain.Discrepancy) error
}

// AdjustmentRepository stores the append-only adjustment audit trail.
type AdjustmentRepository interface {
	Create(ctx context.Context, tx Transaction, adjustment *domain.Adjustment) error
	ListByMatch(ctx context.Context, matchID string) ([]*domain.Adjustment, error)
}

// RuleRepository defines data access for user-managed matching rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.Rule) error
	Update(ctx context.Context, rule *domain.Rule) error
	GetByID(ctx context.Context, id string) (*domain.Rule, error)
	ListActive(ctx context.Context) ([]*domain.Rule, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Rule, error)
	SetActive(ctx context.Context, id string, active bool) error
	// RecordUsage folds a session's accumulated counters into the rule's
	// lifetime statistics.
	RecordUsage(ctx context.Context, id string, evaluated, hits int64) error
}

// LedgerStore is the read-only source of book transactions, plus the
// per-session claim used to mark a transaction consumed.
type LedgerStore interface {
	GetTransactions(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error)
	// Claim atomically marks the transaction consumed for the session.
	// Returns ErrConcurrentModification when another line got there first.
	Claim(ctx context.Context, sessionID, transactionID string) error
	// ListUnclaimed returns transactions in the window the session never
	// consumed.
	ListUnclaimed(ctx context.Context, sessionID, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error)
}

// StatementFeed supplies normalized statement lines for a period.
type StatementFeed interface {
	GetStatementLines(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.StatementLine, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// SessionLock guards against two runners reconciling the same account at
// once across instances.
type SessionLock interface {
	Acquire(ctx context.Context, accountRef string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, accountRef string) error
}

// RuleCache caches the active rule set between sessions.
type RuleCache interface {
	Get(ctx context.Context) ([]*domain.Rule, error)
	Set(ctx context.Context, rules []*domain.Rule, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
