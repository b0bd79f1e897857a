package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financbase/reconcile/internal/domain"
)

// StatementFeedRepository implements usecase.StatementFeed against the
// statement_feed staging table, where imported bank files land after
// normalization. Feed rows are shared input; the session copies them into
// its own statement_lines, so lines leave here without ids.
type StatementFeedRepository struct {
	pool *pgxpool.Pool
}

// NewStatementFeedRepository creates a new StatementFeedRepository.
func NewStatementFeedRepository(pool *pgxpool.Pool) *StatementFeedRepository {
	return &StatementFeedRepository{pool: pool}
}

// GetStatementLines returns the account's feed rows for the period.
func (r *StatementFeedRepository) GetStatementLines(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.StatementLine, error) {
	query := `
		SELECT line_date, amount, description, reference
		FROM statement_feed
		WHERE account_ref = $1 AND line_date >= $2 AND line_date <= $3
		ORDER BY line_date, id
	`

	rows, err := r.pool.Query(ctx, query, accountRef, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.StatementLine
	for rows.Next() {
		var line domain.StatementLine
		if err := rows.Scan(&line.Date, &line.Amount, &line.Description, &line.Reference); err != nil {
			return nil, err
		}
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}
