package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
)

const discrepancyColumns = `
	id, session_id, match_id, discrepancy_type, severity, side,
	expected_value, actual_value, difference,
	status, resolution, resolved_by, detected_at, resolved_at
`

// DiscrepancyRepository implements usecase.DiscrepancyRepository.
type DiscrepancyRepository struct {
	pool *pgxpool.Pool
}

// NewDiscrepancyRepository creates a new DiscrepancyRepository.
func NewDiscrepancyRepository(pool *pgxpool.Pool) *DiscrepancyRepository {
	return &DiscrepancyRepository{pool: pool}
}

// CreateBatch inserts detected discrepancies in one round trip.
func (r *DiscrepancyRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, discrepancies []*domain.Discrepancy) error {
	if len(discrepancies) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO discrepancies (` + discrepancyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	for _, d := range discrepancies {
		batch.Queue(query,
			d.ID,
			d.SessionID,
			d.MatchID,
			string(d.Type),
			string(d.Severity),
			string(d.Side),
			d.ExpectedValue,
			d.ActualValue,
			d.Difference,
			string(d.Status),
			d.Resolution,
			d.ResolvedBy,
			d.DetectedAt,
			d.ResolvedAt,
		)
	}

	results := queryTarget(r.pool, tx).SendBatch(ctx, batch)
	defer results.Close()

	for range discrepancies {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

// GetByID retrieves a discrepancy by ID.
func (r *DiscrepancyRepository) GetByID(ctx context.Context, id string) (*domain.Discrepancy, error) {
	query := `SELECT ` + discrepancyColumns + ` FROM discrepancies WHERE id = $1`

	d, err := scanDiscrepancy(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDiscrepancyNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListBySession lists a session's discrepancies, most urgent first.
func (r *DiscrepancyRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Discrepancy, error) {
	query := `
		SELECT ` + discrepancyColumns + `
		FROM discrepancies
		WHERE session_id = $1
		ORDER BY
			CASE severity
				WHEN 'critical' THEN 0
				WHEN 'high' THEN 1
				WHEN 'medium' THEN 2
				ELSE 3
			END,
			id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Discrepancy
	for rows.Next() {
		d, err := scanDiscrepancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateReview persists a review transition.
func (r *DiscrepancyRepository) UpdateReview(ctx context.Context, d *domain.Discrepancy) error {
	query := `
		UPDATE discrepancies
		SET status = $2, resolution = $3, resolved_by = $4, resolved_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, d.ID, string(d.Status), d.Resolution, d.ResolvedBy, d.ResolvedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDiscrepancyNotFound
	}
	return nil
}

func scanDiscrepancy(row pgx.Row) (*domain.Discrepancy, error) {
	var (
		d        domain.Discrepancy
		dtype    string
		severity string
		side     string
		status   string
	)
	err := row.Scan(
		&d.ID,
		&d.SessionID,
		&d.MatchID,
		&dtype,
		&severity,
		&side,
		&d.ExpectedValue,
		&d.ActualValue,
		&d.Difference,
		&status,
		&d.Resolution,
		&d.ResolvedBy,
		&d.DetectedAt,
		&d.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Type = domain.DiscrepancyType(dtype)
	d.Severity = domain.Severity(severity)
	d.Side = domain.DiscrepancySide(side)
	d.Status = domain.DiscrepancyStatus(status)
	return &d, nil
}
