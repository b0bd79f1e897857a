package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
)

// AdjustmentRepository implements usecase.AdjustmentRepository. Rows are
// only ever inserted; the table is the audit trail.
type AdjustmentRepository struct {
	pool *pgxpool.Pool
}

// NewAdjustmentRepository creates a new AdjustmentRepository.
func NewAdjustmentRepository(pool *pgxpool.Pool) *AdjustmentRepository {
	return &AdjustmentRepository{pool: pool}
}

// Create inserts a new adjustment record.
func (r *AdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adjustment *domain.Adjustment) error {
	query := `
		INSERT INTO adjustments (id, match_id, adjusted_amount, reason, adjusted_by, adjusted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := queryTarget(r.pool, tx).Exec(ctx, query,
		adjustment.ID,
		adjustment.MatchID,
		adjustment.AdjustedAmount,
		adjustment.Reason,
		adjustment.AdjustedBy,
		adjustment.AdjustedAt,
	)
	return err
}

// ListByMatch returns a match's adjustment history, oldest first.
func (r *AdjustmentRepository) ListByMatch(ctx context.Context, matchID string) ([]*domain.Adjustment, error) {
	query := `
		SELECT id, match_id, adjusted_amount, reason, adjusted_by, adjusted_at
		FROM adjustments
		WHERE match_id = $1
		ORDER BY adjusted_at, id
	`

	rows, err := r.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Adjustment
	for rows.Next() {
		var a domain.Adjustment
		if err := rows.Scan(&a.ID, &a.MatchID, &a.AdjustedAmount, &a.Reason, &a.AdjustedBy, &a.AdjustedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
