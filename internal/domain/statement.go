package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is a single transaction record from an external statement.
// Lines are immutable and owned by the session that imported them.
type StatementLine struct {
	ID          string
	SessionID   string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// BookTransaction is a reference into the ledger store. It is read-only from
// the reconciliation side; a session may claim it for at most one match.
type BookTransaction struct {
	ID          string
	AccountRef  string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// SameDay reports whether the transaction and the line fall on the same
// calendar day (UTC).
func (b *BookTransaction) SameDay(line *StatementLine) bool {
	by, bm, bd := b.Date.UTC().Date()
	ly, lm, ld := line.Date.UTC().Date()
	return by == ly && bm == lm && bd == ld
}

// DuplicateKey groups book transactions that are indistinguishable by
// amount, day and description.
func (b *BookTransaction) DuplicateKey() string {
	return b.Date.UTC().Format(time.DateOnly) + "|" + b.Amount.String() + "|" + b.Description
}
