package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
)

// StatementLineRepository implements usecase.StatementLineRepository.
type StatementLineRepository struct {
	pool *pgxpool.Pool
}

// NewStatementLineRepository creates a new StatementLineRepository.
func NewStatementLineRepository(pool *pgxpool.Pool) *StatementLineRepository {
	return &StatementLineRepository{pool: pool}
}

// CreateBatch inserts a session's imported lines in one round trip.
func (r *StatementLineRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, lines []*domain.StatementLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO statement_lines (id, session_id, line_date, amount, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range lines {
		batch.Queue(query,
			line.ID,
			line.SessionID,
			line.Date,
			line.Amount,
			line.Description,
			line.Reference,
		)
	}

	results := queryTarget(r.pool, tx).SendBatch(ctx, batch)
	defer results.Close()

	for range lines {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

// ListBySession returns a session's lines in date order.
func (r *StatementLineRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.StatementLine, error) {
	query := `
		SELECT id, session_id, line_date, amount, description, reference
		FROM statement_lines
		WHERE session_id = $1
		ORDER BY line_date, id
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.StatementLine
	for rows.Next() {
		var line domain.StatementLine
		if err := rows.Scan(&line.ID, &line.SessionID, &line.Date, &line.Amount, &line.Description, &line.Reference); err != nil {
			return nil, err
		}
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}
