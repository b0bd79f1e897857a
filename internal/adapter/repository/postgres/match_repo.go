package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
)

const matchColumns = `
	m.id, m.session_id, m.statement_line_id, m.book_transaction_id,
	m.status, m.confidence, m.confidence_score,
	m.match_criteria, m.match_reason, m.note,
	m.created_at, m.updated_at,
	a.id, a.adjusted_amount, a.reason, a.adjusted_by, a.adjusted_at
`

const matchFrom = `
	FROM matches m
	LEFT JOIN adjustments a ON a.id = m.adjustment_id
`

// MatchRepository implements usecase.MatchRepository.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// CreateBatch inserts a batch of matches in one round trip.
func (r *MatchRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, matches []*domain.Match) error {
	if len(matches) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO matches (
			id, session_id, statement_line_id, book_transaction_id,
			status, confidence, confidence_score,
			match_criteria, match_reason, note,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, m := range matches {
		batch.Queue(query,
			m.ID,
			m.SessionID,
			m.StatementLineID,
			m.BookTransactionID,
			string(m.Status),
			string(m.Confidence),
			m.ConfidenceScore,
			m.MatchCriteria,
			m.MatchReason,
			m.Note,
			m.CreatedAt,
			m.UpdatedAt,
		)
	}

	results := queryTarget(r.pool, tx).SendBatch(ctx, batch)
	defer results.Close()

	for range matches {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

// GetByID retrieves a match with its effective adjustment, if any.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + matchFrom + ` WHERE m.id = $1`

	match, err := scanMatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// ListBySession lists a session's matches in statement line order.
func (r *MatchRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + matchFrom + `
		WHERE m.session_id = $1
		ORDER BY m.statement_line_id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// UpdateStatus transitions a match.
func (r *MatchRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.MatchStatus, updatedAt time.Time) error {
	query := `UPDATE matches SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := queryTarget(r.pool, tx).Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

// SetActiveAdjustment points the match at its newest adjustment.
func (r *MatchRepository) SetActiveAdjustment(ctx context.Context, tx usecase.Transaction, matchID string, adjustment *domain.Adjustment) error {
	query := `UPDATE matches SET adjustment_id = $2, updated_at = $3 WHERE id = $1`

	tag, err := queryTarget(r.pool, tx).Exec(ctx, query, matchID, adjustment.ID, adjustment.AdjustedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

// AnnotateSession attaches a note to every match of a session.
func (r *MatchRepository) AnnotateSession(ctx context.Context, sessionID, note string) error {
	query := `UPDATE matches SET note = $2 WHERE session_id = $1`

	_, err := r.pool.Exec(ctx, query, sessionID, note)
	return err
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var (
		m              domain.Match
		status         string
		confidence     string
		adjustmentID   *string
		adjustedAmount *decimal.Decimal
		reason         *string
		adjustedBy     *string
		adjustedAt     *time.Time
	)
	err := row.Scan(
		&m.ID,
		&m.SessionID,
		&m.StatementLineID,
		&m.BookTransactionID,
		&status,
		&confidence,
		&m.ConfidenceScore,
		&m.MatchCriteria,
		&m.MatchReason,
		&m.Note,
		&m.CreatedAt,
		&m.UpdatedAt,
		&adjustmentID,
		&adjustedAmount,
		&reason,
		&adjustedBy,
		&adjustedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MatchStatus(status)
	m.Confidence = domain.Confidence(confidence)
	if adjustmentID != nil {
		m.Adjustment = &domain.Adjustment{
			ID:             *adjustmentID,
			MatchID:        m.ID,
			AdjustedAmount: *adjustedAmount,
			Reason:         *reason,
			AdjustedBy:     *adjustedBy,
			AdjustedAt:     *adjustedAt,
		}
	}
	return &m, nil
}
