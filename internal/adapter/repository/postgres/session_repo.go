package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
)

// uniqueInProgressIndex backs the one-session-per-account invariant. The
// partial unique index only covers rows with status in_progress.
const uniqueInProgressIndex = "reconciliation_sessions_account_in_progress_idx"

const sessionColumns = `
	id, account_ref, session_type, status,
	start_date, end_date,
	statement_balance, book_balance, difference,
	total_lines, matched_count, unmatched_count, discrepancy_count,
	failure_reason, created_at, completed_at
`

// SessionRepository implements usecase.SessionRepository.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO reconciliation_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.AccountRef,
		string(session.Type),
		string(session.Status),
		session.StartDate,
		session.EndDate,
		session.Totals.StatementBalance,
		session.Totals.BookBalance,
		session.Totals.Difference,
		session.Totals.TotalLines,
		session.Totals.Matched,
		session.Totals.Unmatched,
		session.Totals.Discrepancies,
		session.FailureReason,
		session.CreatedAt,
		session.CompletedAt,
	)
	if isUniqueViolation(err, uniqueInProgressIndex) {
		return domain.ErrSessionAlreadyActive
	}
	return err
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM reconciliation_sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// GetInProgressByAccount retrieves the account's in-progress session, if any.
func (r *SessionRepository) GetInProgressByAccount(ctx context.Context, accountRef string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM reconciliation_sessions
		WHERE account_ref = $1 AND status = $2
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, accountRef, string(domain.SessionStatusInProgress)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// UpdateStatus transitions a session. The partial unique index rejects a
// second in_progress session for the same account.
func (r *SessionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SessionStatus, failureReason string, completedAt *time.Time) error {
	query := `
		UPDATE reconciliation_sessions
		SET status = $2, failure_reason = $3, completed_at = $4
		WHERE id = $1
	`

	tag, err := queryTarget(r.pool, tx).Exec(ctx, query, id, string(status), failureReason, completedAt)
	if isUniqueViolation(err, uniqueInProgressIndex) {
		return domain.ErrSessionAlreadyActive
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// UpdateProgress persists per-batch counters while a run is in flight.
func (r *SessionRepository) UpdateProgress(ctx context.Context, id string, matched, unmatched int) error {
	query := `
		UPDATE reconciliation_sessions
		SET matched_count = $2, unmatched_count = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, matched, unmatched)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// UpdateTotals stores the final balances and counts.
func (r *SessionRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, totals domain.SessionTotals) error {
	query := `
		UPDATE reconciliation_sessions
		SET statement_balance = $2, book_balance = $3, difference = $4,
		    total_lines = $5, matched_count = $6, unmatched_count = $7,
		    discrepancy_count = $8
		WHERE id = $1
	`

	tag, err := queryTarget(r.pool, tx).Exec(ctx, query,
		id,
		totals.StatementBalance,
		totals.BookBalance,
		totals.Difference,
		totals.TotalLines,
		totals.Matched,
		totals.Unmatched,
		totals.Discrepancies,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// ListByAccount lists an account's sessions, newest first.
func (r *SessionRepository) ListByAccount(ctx context.Context, accountRef string, limit, offset int) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM reconciliation_sessions
		WHERE account_ref = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountRef, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		s           domain.Session
		sessionType string
		status      string
	)
	err := row.Scan(
		&s.ID,
		&s.AccountRef,
		&sessionType,
		&status,
		&s.StartDate,
		&s.EndDate,
		&s.Totals.StatementBalance,
		&s.Totals.BookBalance,
		&s.Totals.Difference,
		&s.Totals.TotalLines,
		&s.Totals.Matched,
		&s.Totals.Unmatched,
		&s.Totals.Discrepancies,
		&s.FailureReason,
		&s.CreatedAt,
		&s.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Type = domain.SessionType(sessionType)
	s.Status = domain.SessionStatus(status)
	return &s, nil
}
