package matcher

import (
	"fmt"
	"sort"
	"sync"

	"github.com/financbase/reconcile/internal/domain"
)

// Outcome is the result of evaluating the rule set against a pair. Rule is
// nil when no rule matched and the pair falls through to default scoring.
type Outcome struct {
	Action      domain.RuleAction
	Rule        *domain.Rule
	Explanation string
}

// None reports whether no rule determined an action.
func (o Outcome) None() bool {
	return o.Rule == nil
}

// RuleEngine evaluates an ordered rule set. Rules are scanned in descending
// priority, ties broken by ascending rule id; the first rule whose
// conditions all hold wins.
type RuleEngine struct {
	rules []*domain.Rule
}

// NewRuleEngine builds an engine over the active rules. Inactive rules are
// dropped; the remainder is sorted once so evaluation order is deterministic.
func NewRuleEngine(rules []*domain.Rule) *RuleEngine {
	active := make([]*domain.Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})

	return &RuleEngine{rules: active}
}

// Evaluate scans the rule set for the pair. Usage counters go into the
// accumulator, never into shared state, so concurrent sessions cannot
// cross-contaminate each other's statistics.
func (e *RuleEngine) Evaluate(line *domain.StatementLine, tx *domain.BookTransaction, acc *StatsAccumulator) Outcome {
	for _, rule := range e.rules {
		hit := rule.Matches(line, tx)
		acc.record(rule.ID, hit)
		if !hit {
			continue
		}
		return Outcome{
			Action:      rule.Action,
			Rule:        rule,
			Explanation: fmt.Sprintf("rule %s (%s) matched with action %s", rule.ID, rule.Name, rule.Action),
		}
	}
	return Outcome{}
}

// RuleUsage accumulates per-rule counters for one session.
type RuleUsage struct {
	Evaluated int64
	Hits      int64
}

// StatsAccumulator collects rule usage for a single session run. It is safe
// for concurrent use by the scoring workers.
type StatsAccumulator struct {
	mu     sync.Mutex
	byRule map[string]*RuleUsage
}

// NewStatsAccumulator returns an empty accumulator.
func NewStatsAccumulator() *StatsAccumulator {
	return &StatsAccumulator{byRule: make(map[string]*RuleUsage)}
}

func (a *StatsAccumulator) record(ruleID string, hit bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	usage, ok := a.byRule[ruleID]
	if !ok {
		usage = &RuleUsage{}
		a.byRule[ruleID] = usage
	}
	usage.Evaluated++
	if hit {
		usage.Hits++
	}
}

// Snapshot returns a copy of the accumulated usage keyed by rule id.
func (a *StatsAccumulator) Snapshot() map[string]RuleUsage {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]RuleUsage, len(a.byRule))
	for id, usage := range a.byRule {
		out[id] = *usage
	}
	return out
}
