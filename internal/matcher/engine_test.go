package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financbase/reconcile/internal/domain"
)

func engineDay(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func line(id string, d int, amount, description, reference string) *domain.StatementLine {
	return &domain.StatementLine{
		ID:          id,
		Date:        engineDay(d),
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Reference:   reference,
	}
}

func bookTx(id string, d int, amount, description, reference string) *domain.BookTransaction {
	return &domain.BookTransaction{
		ID:          id,
		Date:        engineDay(d),
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Reference:   reference,
	}
}

func newEngine(rules ...*domain.Rule) *Engine {
	return NewEngine(DefaultConfig(), NewRuleEngine(rules))
}

func TestScoreCandidates_CompositeScoring(t *testing.T) {
	// Exact amount, one day apart, no references, contained description.
	l := line("line-1", 10, "100.00", "Vendor X", "")
	tx := bookTx("tx-1", 11, "100.00", "Vendor X Inc", "")

	got := newEngine().ScoreCandidates(l, []*domain.BookTransaction{tx}, NewStatsAccumulator())
	require.Len(t, got, 1)

	// amount 1.0, date 0.8, reference neutral 1.0, description 1.0
	// composite 0.40 + 0.20 + 0.20 + 0.15 = 0.95
	assert.Equal(t, 95, got[0].Score)
	assert.Equal(t, []string{"amount", "reference", "description"}, got[0].Criteria)
	assert.NotEmpty(t, got[0].Reason)
	assert.False(t, got[0].ForcedByRule)
}

func TestScoreCandidates_Filters(t *testing.T) {
	l := line("line-1", 10, "100.00", "Vendor X", "")

	tests := []struct {
		name string
		tx   *domain.BookTransaction
	}{
		{"outside date window", bookTx("tx-1", 16, "100.00", "Vendor X", "")},
		{"outside amount tolerance", bookTx("tx-2", 10, "102.00", "Vendor X", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEngine().ScoreCandidates(l, []*domain.BookTransaction{tt.tx}, NewStatsAccumulator())
			assert.Empty(t, got)
		})
	}
}

func TestScoreCandidates_Ranking(t *testing.T) {
	l := line("line-1", 10, "100.00", "Vendor X", "")
	txs := []*domain.BookTransaction{
		bookTx("tx-c", 12, "100.00", "Vendor X", ""),
		bookTx("tx-b", 11, "100.00", "Vendor X", ""),
		bookTx("tx-a", 11, "100.00", "Vendor X", ""),
	}

	got := newEngine().ScoreCandidates(l, txs, NewStatsAccumulator())
	require.Len(t, got, 3)

	// Smaller date delta first, ties broken by transaction id.
	assert.Equal(t, "tx-a", got[0].Tx.ID)
	assert.Equal(t, "tx-b", got[1].Tx.ID)
	assert.Equal(t, "tx-c", got[2].Tx.ID)

	// Rerunning on the same input yields the same order.
	again := newEngine().ScoreCandidates(l, txs, NewStatsAccumulator())
	for i := range got {
		assert.Equal(t, got[i].Tx.ID, again[i].Tx.ID)
	}
}

func TestScoreCandidates_ExactPairScoresFull(t *testing.T) {
	l := line("line-1", 10, "250.00", "payroll run 7", "PR-7")
	tx := bookTx("tx-1", 10, "250.00", "payroll run 7", "PR-7")

	got := newEngine().ScoreCandidates(l, []*domain.BookTransaction{tx}, NewStatsAccumulator())
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, []string{"amount", "date", "reference", "description"}, got[0].Criteria)
}

func TestAccepted(t *testing.T) {
	e := newEngine()
	assert.True(t, e.Accepted(Candidate{Score: 50}))
	assert.True(t, e.Accepted(Candidate{Score: 100}))
	assert.False(t, e.Accepted(Candidate{Score: 49}))
}

func TestScoreCandidates_AutoMatchRule(t *testing.T) {
	rule := &domain.Rule{
		ID:       "rule-1",
		Name:     "same reference",
		IsActive: true,
		Action:   domain.RuleActionAutoMatch,
		Conditions: []domain.RuleCondition{
			{Field: domain.FieldReference, Operator: domain.OperatorEquals},
		},
	}

	l := line("line-1", 10, "42.00", "card payment", "INV-9")
	tx := bookTx("tx-1", 13, "42.10", "september invoice", "inv-9")

	got := newEngine(rule).ScoreCandidates(l, []*domain.BookTransaction{tx}, NewStatsAccumulator())
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Score)
	assert.True(t, got[0].ForcedByRule)
	assert.Equal(t, []string{"rule"}, got[0].Criteria)
	assert.Contains(t, got[0].Reason, "rule-1")
}

func TestScoreCandidates_IgnoreRule(t *testing.T) {
	rule := &domain.Rule{
		ID:       "rule-1",
		Name:     "skip internal sweeps",
		IsActive: true,
		Action:   domain.RuleActionIgnore,
		Conditions: []domain.RuleCondition{
			{Field: domain.FieldDescription, Operator: domain.OperatorContains, Value: "sweep"},
		},
	}

	l := line("line-1", 10, "100.00", "transfer", "")
	tx := bookTx("tx-1", 10, "100.00", "overnight sweep", "")

	got := newEngine(rule).ScoreCandidates(l, []*domain.BookTransaction{tx}, NewStatsAccumulator())
	assert.Empty(t, got)
}

func TestScoreCandidates_FlagRule(t *testing.T) {
	rule := &domain.Rule{
		ID:       "rule-1",
		Name:     "flag round amounts",
		IsActive: true,
		Action:   domain.RuleActionFlag,
		Conditions: []domain.RuleCondition{
			{Field: domain.FieldAmount, Operator: domain.OperatorEquals},
		},
	}

	l := line("line-1", 10, "500.00", "Vendor X", "")
	tx := bookTx("tx-1", 10, "500.00", "Vendor X", "")

	got := newEngine(rule).ScoreCandidates(l, []*domain.BookTransaction{tx}, NewStatsAccumulator())
	require.Len(t, got, 1)
	assert.Equal(t, "rule-1", got[0].FlaggedByRuleID)
	assert.False(t, got[0].ForcedByRule)
	assert.Contains(t, got[0].Reason, "rule-1")
}
