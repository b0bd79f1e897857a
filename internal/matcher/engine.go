package matcher

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/financbase/reconcile/internal/domain"
)

// Candidate is a scored book transaction for one statement line.
type Candidate struct {
	Tx              *domain.BookTransaction
	Score           int
	DateDelta       time.Duration
	Criteria        []string
	Reason          string
	ForcedByRule    bool
	FlaggedByRuleID string
}

// Engine scores candidate book transactions against statement lines.
type Engine struct {
	cfg   *Config
	rules *RuleEngine
}

// NewEngine creates a scoring engine. rules may cover zero rules, in which
// case every pair falls through to composite scoring.
func NewEngine(cfg *Config, rules *RuleEngine) *Engine {
	return &Engine{cfg: cfg, rules: rules}
}

// ScoreCandidates filters and scores candidates for a line, returning them
// ranked best-first: score descending, then smallest date delta, then lowest
// transaction id. The ranking is total, so identical inputs always produce
// identical orderings.
func (e *Engine) ScoreCandidates(line *domain.StatementLine, txs []*domain.BookTransaction, acc *StatsAccumulator) []Candidate {
	tolerance := e.cfg.AmountTolerance(line.Amount)

	candidates := make([]Candidate, 0, len(txs))
	for _, tx := range txs {
		if !e.cfg.WithinDateWindow(line.Date, tx.Date) {
			continue
		}
		if line.Amount.Sub(tx.Amount).Abs().GreaterThan(tolerance) {
			continue
		}

		outcome := e.rules.Evaluate(line, tx, acc)
		switch outcome.Action {
		case domain.RuleActionIgnore:
			continue
		case domain.RuleActionAutoMatch:
			candidates = append(candidates, Candidate{
				Tx:           tx,
				Score:        100,
				DateDelta:    dateDelta(line.Date, tx.Date),
				Criteria:     []string{"rule"},
				Reason:       outcome.Explanation,
				ForcedByRule: true,
			})
			continue
		}

		cand := e.scorePair(line, tx)
		if outcome.Action == domain.RuleActionFlag {
			cand.FlaggedByRuleID = outcome.Rule.ID
			cand.Reason = cand.Reason + "; " + outcome.Explanation
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].DateDelta != candidates[j].DateDelta {
			return candidates[i].DateDelta < candidates[j].DateDelta
		}
		return candidates[i].Tx.ID < candidates[j].Tx.ID
	})

	return candidates
}

// Accepted reports whether the candidate clears the acceptance threshold.
func (e *Engine) Accepted(c Candidate) bool {
	return c.Score >= e.cfg.AcceptThreshold
}

// scorePair computes the weighted composite score for a pair. Each component
// is normalized to [0,1]; the composite maps to an integer 0-100.
func (e *Engine) scorePair(line *domain.StatementLine, tx *domain.BookTransaction) Candidate {
	amountScore := e.amountScore(line, tx)
	dateScore := e.dateScore(line, tx)
	referenceScore := referenceScore(line, tx)
	descriptionScore := DescriptionSimilarity(line.Description, tx.Description)

	w := e.cfg.Weights
	composite := w.Amount*amountScore +
		w.Date*dateScore +
		w.Reference*referenceScore +
		w.Description*descriptionScore

	score := int(math.Round(composite * 100))
	if score > 100 {
		score = 100
	}

	var criteria []string
	if amountScore == 1 {
		criteria = append(criteria, "amount")
	}
	if dateScore == 1 {
		criteria = append(criteria, "date")
	}
	if referenceScore == 1 {
		criteria = append(criteria, "reference")
	}
	if descriptionScore >= 0.8 {
		criteria = append(criteria, "description")
	}

	return Candidate{
		Tx:        tx,
		Score:     score,
		DateDelta: dateDelta(line.Date, tx.Date),
		Criteria:  criteria,
		Reason: fmt.Sprintf("amount=%.2f date=%.2f reference=%.2f description=%.2f",
			amountScore, dateScore, referenceScore, descriptionScore),
	}
}

// amountScore decays linearly from 1 at an exact match to 0 at the tolerance
// boundary.
func (e *Engine) amountScore(line *domain.StatementLine, tx *domain.BookTransaction) float64 {
	if line.Amount.Equal(tx.Amount) {
		return 1
	}

	tolerance := e.cfg.AmountTolerance(line.Amount)
	if tolerance.IsZero() {
		return 0
	}

	diff := line.Amount.Sub(tx.Amount).Abs()
	ratio, _ := diff.Div(tolerance).Float64()
	return math.Max(0, 1-ratio)
}

// dateScore decays linearly from 1 on the same day to 0 at the window edge.
func (e *Engine) dateScore(line *domain.StatementLine, tx *domain.BookTransaction) float64 {
	if tx.SameDay(line) {
		return 1
	}
	window := e.cfg.DateWindow()
	if window == 0 {
		return 0
	}
	ratio := float64(dateDelta(line.Date, tx.Date)) / float64(window)
	return math.Max(0, 1-ratio)
}

// referenceScore is neutral when neither side carries a reference; an
// unpopulated feed field should not drag otherwise identical pairs below
// the acceptance threshold.
func referenceScore(line *domain.StatementLine, tx *domain.BookTransaction) float64 {
	lr := strings.TrimSpace(line.Reference)
	tr := strings.TrimSpace(tx.Reference)
	if lr == "" && tr == "" {
		return 1
	}
	if lr == "" || tr == "" {
		return 0
	}
	if strings.EqualFold(lr, tr) {
		return 1
	}
	if strings.Contains(strings.ToLower(tr), strings.ToLower(lr)) ||
		strings.Contains(strings.ToLower(lr), strings.ToLower(tr)) {
		return 0.5
	}
	return 0
}

func dateDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d
}
