package matcher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financbase/reconcile/internal/domain"
)

// Detection severity thresholds.
const (
	highAmountDeltaPercent   = 10.0
	mediumAmountDeltaPercent = 1.0
	escalationDateDelta      = 7 * 24 * time.Hour
	descriptionMismatchBelow = 0.5
)

// Detector inspects completed matches and unmatched items and emits
// categorized discrepancies.
type Detector struct {
	cfg   *Config
	newID func() string
	now   func() time.Time
}

// NewDetector creates a detector. newID supplies ids for emitted records.
func NewDetector(cfg *Config, newID func() string, now func() time.Time) *Detector {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Detector{cfg: cfg, newID: newID, now: now}
}

// DetectInput is everything the detector needs about a finished session.
type DetectInput struct {
	SessionID string
	Matches   []*domain.Match
	Lines     map[string]*domain.StatementLine
	Txs       map[string]*domain.BookTransaction
	// Unclaimed are book transactions inside the session window that no
	// match consumed.
	Unclaimed []*domain.BookTransaction
}

// Detect runs all checks and returns the discrepancies, all in status open.
func (d *Detector) Detect(in DetectInput) []*domain.Discrepancy {
	var out []*domain.Discrepancy

	for _, m := range in.Matches {
		switch m.Status {
		case domain.MatchStatusMatched:
			out = append(out, d.inspectMatch(in, m)...)
		case domain.MatchStatusUnmatched:
			if line, ok := in.Lines[m.StatementLineID]; ok {
				out = append(out, d.missingFromBook(in.SessionID, m, line))
			}
		}
	}

	for _, tx := range in.Unclaimed {
		out = append(out, d.missingFromStatement(in.SessionID, tx))
	}

	out = append(out, d.detectDuplicates(in)...)

	return out
}

func (d *Detector) inspectMatch(in DetectInput, m *domain.Match) []*domain.Discrepancy {
	line, ok := in.Lines[m.StatementLineID]
	if !ok || m.BookTransactionID == nil {
		return nil
	}
	tx, ok := in.Txs[*m.BookTransactionID]
	if !ok {
		return nil
	}

	var out []*domain.Discrepancy
	dateEscalate := dateDelta(line.Date, tx.Date) > escalationDateDelta

	if !line.Amount.Equal(tx.Amount) {
		diff := line.Amount.Sub(tx.Amount)
		sev := amountSeverity(line.Amount, diff)
		if dateEscalate {
			sev = sev.Escalate()
		}
		out = append(out, &domain.Discrepancy{
			ID:            d.newID(),
			SessionID:     in.SessionID,
			MatchID:       &m.ID,
			Type:          domain.DiscrepancyAmountMismatch,
			Severity:      sev,
			ExpectedValue: line.Amount.String(),
			ActualValue:   tx.Amount.String(),
			Difference:    diff.String(),
			Status:        domain.DiscrepancyOpen,
			DetectedAt:    d.now(),
		})
	}

	if !tx.SameDay(line) {
		sev := domain.SeverityLow
		if dateEscalate {
			sev = sev.Escalate()
		}
		out = append(out, &domain.Discrepancy{
			ID:            d.newID(),
			SessionID:     in.SessionID,
			MatchID:       &m.ID,
			Type:          domain.DiscrepancyDateMismatch,
			Severity:      sev,
			ExpectedValue: line.Date.UTC().Format(time.DateOnly),
			ActualValue:   tx.Date.UTC().Format(time.DateOnly),
			Difference:    fmt.Sprintf("%dd", int(dateDelta(line.Date, tx.Date).Hours()/24)),
			Status:        domain.DiscrepancyOpen,
			DetectedAt:    d.now(),
		})
	}

	if DescriptionSimilarity(line.Description, tx.Description) < descriptionMismatchBelow {
		out = append(out, &domain.Discrepancy{
			ID:            d.newID(),
			SessionID:     in.SessionID,
			MatchID:       &m.ID,
			Type:          domain.DiscrepancyDescriptionMismatch,
			Severity:      domain.SeverityLow,
			ExpectedValue: line.Description,
			ActualValue:   tx.Description,
			Status:        domain.DiscrepancyOpen,
			DetectedAt:    d.now(),
		})
	}

	return out
}

func (d *Detector) missingFromBook(sessionID string, m *domain.Match, line *domain.StatementLine) *domain.Discrepancy {
	return &domain.Discrepancy{
		ID:            d.newID(),
		SessionID:     sessionID,
		MatchID:       &m.ID,
		Type:          domain.DiscrepancyMissingTransaction,
		Severity:      domain.SeverityMedium,
		Side:          domain.SideStatement,
		ExpectedValue: line.Amount.String(),
		ActualValue:   "",
		Difference:    line.Amount.String(),
		Status:        domain.DiscrepancyOpen,
		DetectedAt:    d.now(),
	}
}

func (d *Detector) missingFromStatement(sessionID string, tx *domain.BookTransaction) *domain.Discrepancy {
	return &domain.Discrepancy{
		ID:            d.newID(),
		SessionID:     sessionID,
		Type:          domain.DiscrepancyMissingTransaction,
		Severity:      domain.SeverityMedium,
		Side:          domain.SideBook,
		ExpectedValue: "",
		ActualValue:   tx.Amount.String(),
		Difference:    tx.Amount.String(),
		Status:        domain.DiscrepancyOpen,
		DetectedAt:    d.now(),
	}
}

// detectDuplicates flags book transactions that are identical by
// amount+date+description where only part of the group was consumed.
func (d *Detector) detectDuplicates(in DetectInput) []*domain.Discrepancy {
	claimed := make(map[string]bool, len(in.Matches))
	for _, m := range in.Matches {
		if m.BookTransactionID != nil {
			claimed[*m.BookTransactionID] = true
		}
	}

	groups := make(map[string][]*domain.BookTransaction)
	for _, tx := range in.Txs {
		groups[tx.DuplicateKey()] = append(groups[tx.DuplicateKey()], tx)
	}

	var out []*domain.Discrepancy
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		var claimedCount int
		for _, tx := range group {
			if claimed[tx.ID] {
				claimedCount++
			}
		}
		if claimedCount == 0 || claimedCount == len(group) {
			continue
		}
		for _, tx := range group {
			if claimed[tx.ID] {
				continue
			}
			out = append(out, &domain.Discrepancy{
				ID:          d.newID(),
				SessionID:   in.SessionID,
				Type:        domain.DiscrepancyDuplicate,
				Severity:    domain.SeverityMedium,
				Side:        domain.SideBook,
				ActualValue: tx.Amount.String(),
				Status:      domain.DiscrepancyOpen,
				DetectedAt:  d.now(),
			})
		}
	}
	return out
}

// FlagDiscrepancy builds the record emitted when a rule with the flag action
// matched the winning candidate.
func (d *Detector) FlagDiscrepancy(sessionID string, m *domain.Match, ruleID string) *domain.Discrepancy {
	return &domain.Discrepancy{
		ID:          d.newID(),
		SessionID:   sessionID,
		MatchID:     &m.ID,
		Type:        domain.DiscrepancyOther,
		Severity:    domain.SeverityLow,
		Status:      domain.DiscrepancyOpen,
		ActualValue: fmt.Sprintf("flagged by rule %s", ruleID),
		DetectedAt:  d.now(),
	}
}

func amountSeverity(base, diff decimal.Decimal) domain.Severity {
	if base.IsZero() {
		return domain.SeverityHigh
	}
	pct := diff.Abs().Div(base.Abs()).Mul(decimal.NewFromInt(100))
	switch {
	case pct.GreaterThan(decimal.NewFromFloat(highAmountDeltaPercent)):
		return domain.SeverityHigh
	case pct.GreaterThan(decimal.NewFromFloat(mediumAmountDeltaPercent)):
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
