package matcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financbase/reconcile/internal/domain"
)

func newTestDetector() *Detector {
	var n int
	newID := func() string {
		n++
		return fmt.Sprintf("d-%d", n)
	}
	now := func() time.Time { return time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC) }
	return NewDetector(DefaultConfig(), newID, now)
}

func matchedPair(l *domain.StatementLine, tx *domain.BookTransaction) DetectInput {
	m := &domain.Match{
		ID:                "m-1",
		SessionID:         "sess-1",
		StatementLineID:   l.ID,
		BookTransactionID: &tx.ID,
		Status:            domain.MatchStatusMatched,
	}
	return DetectInput{
		SessionID: "sess-1",
		Matches:   []*domain.Match{m},
		Lines:     map[string]*domain.StatementLine{l.ID: l},
		Txs:       map[string]*domain.BookTransaction{tx.ID: tx},
	}
}

func TestDetect_AmountMismatchSeverity(t *testing.T) {
	tests := []struct {
		name     string
		txAmount string
		want     domain.Severity
	}{
		{"under one percent is low", "100.50", domain.SeverityLow},
		{"under ten percent is medium", "105.00", domain.SeverityMedium},
		{"over ten percent is high", "115.00", domain.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := line("line-1", 10, "100.00", "Vendor X", "")
			tx := bookTx("tx-1", 10, tt.txAmount, "Vendor X", "")

			got := newTestDetector().Detect(matchedPair(l, tx))
			require.Len(t, got, 1)
			assert.Equal(t, domain.DiscrepancyAmountMismatch, got[0].Type)
			assert.Equal(t, tt.want, got[0].Severity)
			assert.Equal(t, "100", got[0].ExpectedValue)
			assert.Equal(t, domain.DiscrepancyOpen, got[0].Status)
			require.NotNil(t, got[0].MatchID)
			assert.Equal(t, "m-1", *got[0].MatchID)
		})
	}
}

func TestDetect_DateMismatchAndEscalation(t *testing.T) {
	l := line("line-1", 10, "100.00", "Vendor X", "")
	tx := bookTx("tx-1", 13, "100.00", "Vendor X", "")

	got := newTestDetector().Detect(matchedPair(l, tx))
	require.Len(t, got, 1)
	assert.Equal(t, domain.DiscrepancyDateMismatch, got[0].Type)
	assert.Equal(t, domain.SeverityLow, got[0].Severity)
	assert.Equal(t, "3d", got[0].Difference)

	// A gap beyond a week escalates every finding for the pair.
	tx = bookTx("tx-1", 18, "99.00", "Vendor X", "")
	got = newTestDetector().Detect(matchedPair(l, tx))
	require.Len(t, got, 2)
	assert.Equal(t, domain.DiscrepancyAmountMismatch, got[0].Type)
	assert.Equal(t, domain.SeverityMedium, got[0].Severity)
	assert.Equal(t, domain.DiscrepancyDateMismatch, got[1].Type)
	assert.Equal(t, domain.SeverityMedium, got[1].Severity)
}

func TestDetect_DescriptionMismatch(t *testing.T) {
	l := line("line-1", 10, "100.00", "ACME supplies", "")
	tx := bookTx("tx-1", 10, "100.00", "payroll run 7", "")

	got := newTestDetector().Detect(matchedPair(l, tx))
	require.Len(t, got, 1)
	assert.Equal(t, domain.DiscrepancyDescriptionMismatch, got[0].Type)
	assert.Equal(t, domain.SeverityLow, got[0].Severity)
	assert.Equal(t, "ACME supplies", got[0].ExpectedValue)
	assert.Equal(t, "payroll run 7", got[0].ActualValue)
}

func TestDetect_MissingFromBook(t *testing.T) {
	l := line("line-1", 10, "75.00", "Vendor X", "")
	m := &domain.Match{
		ID:              "m-1",
		SessionID:       "sess-1",
		StatementLineID: l.ID,
		Status:          domain.MatchStatusUnmatched,
	}

	got := newTestDetector().Detect(DetectInput{
		SessionID: "sess-1",
		Matches:   []*domain.Match{m},
		Lines:     map[string]*domain.StatementLine{l.ID: l},
	})

	require.Len(t, got, 1)
	assert.Equal(t, domain.DiscrepancyMissingTransaction, got[0].Type)
	assert.Equal(t, domain.SideStatement, got[0].Side)
	assert.Equal(t, domain.SeverityMedium, got[0].Severity)
	assert.Equal(t, "75", got[0].ExpectedValue)
}

func TestDetect_MissingFromStatement(t *testing.T) {
	tx := bookTx("tx-1", 10, "20.00", "bank fee", "")

	got := newTestDetector().Detect(DetectInput{
		SessionID: "sess-1",
		Unclaimed: []*domain.BookTransaction{tx},
	})

	require.Len(t, got, 1)
	assert.Equal(t, domain.DiscrepancyMissingTransaction, got[0].Type)
	assert.Equal(t, domain.SideBook, got[0].Side)
	assert.Nil(t, got[0].MatchID)
	assert.Equal(t, "20", got[0].ActualValue)
}

func TestDetect_PartiallyClaimedDuplicates(t *testing.T) {
	l := line("line-1", 10, "50.00", "ACME supplies", "")
	claimed := bookTx("tx-1", 10, "50.00", "ACME supplies", "")
	twin := bookTx("tx-2", 10, "50.00", "ACME supplies", "")

	in := matchedPair(l, claimed)
	in.Txs[twin.ID] = twin

	got := newTestDetector().Detect(in)
	require.Len(t, got, 1)
	assert.Equal(t, domain.DiscrepancyDuplicate, got[0].Type)
	assert.Equal(t, domain.SideBook, got[0].Side)
	assert.Equal(t, "50", got[0].ActualValue)
}

func TestDetect_FullyUnclaimedGroupIsNotDuplicate(t *testing.T) {
	a := bookTx("tx-1", 10, "50.00", "ACME supplies", "")
	b := bookTx("tx-2", 10, "50.00", "ACME supplies", "")

	got := newTestDetector().Detect(DetectInput{
		SessionID: "sess-1",
		Txs:       map[string]*domain.BookTransaction{a.ID: a, b.ID: b},
	})

	assert.Empty(t, got)
}

func TestDetect_CleanMatchEmitsNothing(t *testing.T) {
	l := line("line-1", 10, "100.00", "Vendor X", "INV-1")
	tx := bookTx("tx-1", 10, "100.00", "Vendor X", "INV-1")

	got := newTestDetector().Detect(matchedPair(l, tx))
	assert.Empty(t, got)
}

func TestFlagDiscrepancy(t *testing.T) {
	m := &domain.Match{ID: "m-1"}

	got := newTestDetector().FlagDiscrepancy("sess-1", m, "rule-9")
	assert.Equal(t, domain.DiscrepancyOther, got.Type)
	assert.Equal(t, domain.SeverityLow, got.Severity)
	require.NotNil(t, got.MatchID)
	assert.Equal(t, "m-1", *got.MatchID)
	assert.Contains(t, got.ActualValue, "rule-9")
}
