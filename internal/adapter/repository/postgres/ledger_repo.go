package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financbase/reconcile/internal/domain"
)

// LedgerRepository implements usecase.LedgerStore against the
// book_transactions table. Transactions are read-only here; the claims
// table is the only thing this side writes.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// GetTransactions returns an account's book transactions in the window,
// inclusive on both ends.
func (r *LedgerRepository) GetTransactions(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error) {
	query := `
		SELECT id, account_ref, tx_date, amount, description, reference
		FROM book_transactions
		WHERE account_ref = $1 AND tx_date >= $2 AND tx_date <= $3
		ORDER BY tx_date, id
	`

	return r.queryTransactions(ctx, query, accountRef, start, end)
}

// Claim marks a transaction consumed for the session. The primary key on
// (session_id, transaction_id) makes the insert race-free: whoever gets the
// row wins, everyone else sees zero rows affected.
func (r *LedgerRepository) Claim(ctx context.Context, sessionID, transactionID string) error {
	query := `
		INSERT INTO book_transaction_claims (session_id, transaction_id, claimed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id, transaction_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, sessionID, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// ListUnclaimed returns window transactions the session never consumed.
func (r *LedgerRepository) ListUnclaimed(ctx context.Context, sessionID, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error) {
	query := `
		SELECT t.id, t.account_ref, t.tx_date, t.amount, t.description, t.reference
		FROM book_transactions t
		WHERE t.account_ref = $2 AND t.tx_date >= $3 AND t.tx_date <= $4
		  AND NOT EXISTS (
			SELECT 1 FROM book_transaction_claims c
			WHERE c.session_id = $1 AND c.transaction_id = t.id
		  )
		ORDER BY t.tx_date, t.id
	`

	return r.queryTransactions(ctx, query, sessionID, accountRef, start, end)
}

func (r *LedgerRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.BookTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.BookTransaction
	for rows.Next() {
		var tx domain.BookTransaction
		if err := rows.Scan(&tx.ID, &tx.AccountRef, &tx.Date, &tx.Amount, &tx.Description, &tx.Reference); err != nil {
			return nil, err
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}
