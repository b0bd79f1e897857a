package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RuleAction is what a matching rule does when all conditions hold.
type RuleAction string

const (
	RuleActionAutoMatch RuleAction = "auto_match"
	RuleActionFlag      RuleAction = "flag"
	RuleActionIgnore    RuleAction = "ignore"
)

// ConditionField selects which pair attribute a condition inspects.
type ConditionField string

const (
	FieldAmount      ConditionField = "amount"
	FieldDate        ConditionField = "date"
	FieldDescription ConditionField = "description"
	FieldReference   ConditionField = "reference"
)

// ConditionOperator is the comparison a condition applies.
type ConditionOperator string

const (
	OperatorEquals          ConditionOperator = "equals"
	OperatorWithinTolerance ConditionOperator = "within_tolerance"
	OperatorContains        ConditionOperator = "contains"
)

// RuleCondition is one typed condition of a rule. The operator determines
// which payload field is meaningful:
//
//   - equals: compares the statement-line field to the candidate field, or to
//     Value when Value is set.
//   - within_tolerance: amount uses AmountTolerance, date uses
//     DateToleranceDays.
//   - contains: description only; the candidate description must contain
//     Value, or the line description when Value is empty.
//
// Conditions are validated at rule creation so evaluation never has to deal
// with malformed payloads.
type RuleCondition struct {
	Field             ConditionField
	Operator          ConditionOperator
	Value             string
	AmountTolerance   decimal.Decimal
	DateToleranceDays int
}

// Validate checks operator/field/payload consistency.
func (c *RuleCondition) Validate() error {
	switch c.Field {
	case FieldAmount, FieldDate, FieldDescription, FieldReference:
	default:
		return fmt.Errorf("%w: unknown condition field %q", ErrValidation, c.Field)
	}

	switch c.Operator {
	case OperatorEquals:
		// Applies to every field.
	case OperatorWithinTolerance:
		switch c.Field {
		case FieldAmount:
			if c.AmountTolerance.IsNegative() {
				return fmt.Errorf("%w: amount tolerance must not be negative", ErrValidation)
			}
		case FieldDate:
			if c.DateToleranceDays < 0 {
				return fmt.Errorf("%w: date tolerance must not be negative", ErrValidation)
			}
		default:
			return fmt.Errorf("%w: within_tolerance applies to amount or date, not %q", ErrValidation, c.Field)
		}
	case OperatorContains:
		if c.Field != FieldDescription {
			return fmt.Errorf("%w: contains applies to description, not %q", ErrValidation, c.Field)
		}
	default:
		return fmt.Errorf("%w: unknown condition operator %q", ErrValidation, c.Operator)
	}

	return nil
}

// Satisfied evaluates the condition against a statement-line/candidate pair.
func (c *RuleCondition) Satisfied(line *StatementLine, tx *BookTransaction) bool {
	switch c.Operator {
	case OperatorEquals:
		return c.equalsSatisfied(line, tx)
	case OperatorWithinTolerance:
		if c.Field == FieldAmount {
			return line.Amount.Sub(tx.Amount).Abs().LessThanOrEqual(c.AmountTolerance)
		}
		delta := line.Date.Sub(tx.Date)
		if delta < 0 {
			delta = -delta
		}
		return delta <= time.Duration(c.DateToleranceDays)*24*time.Hour
	case OperatorContains:
		needle := c.Value
		if needle == "" {
			needle = line.Description
		}
		return strings.Contains(strings.ToLower(tx.Description), strings.ToLower(needle))
	}
	return false
}

func (c *RuleCondition) equalsSatisfied(line *StatementLine, tx *BookTransaction) bool {
	switch c.Field {
	case FieldAmount:
		if c.Value != "" {
			want, err := decimal.NewFromString(c.Value)
			if err != nil {
				return false
			}
			return line.Amount.Equal(want) && tx.Amount.Equal(want)
		}
		return line.Amount.Equal(tx.Amount)
	case FieldDate:
		return tx.SameDay(line)
	case FieldDescription:
		if c.Value != "" {
			return strings.EqualFold(tx.Description, c.Value)
		}
		return strings.EqualFold(line.Description, tx.Description)
	case FieldReference:
		if c.Value != "" {
			return strings.EqualFold(tx.Reference, c.Value)
		}
		return line.Reference != "" && strings.EqualFold(line.Reference, tx.Reference)
	}
	return false
}

// RuleStats is lifetime usage bookkeeping for rule tuning. TimesUsed counts
// evaluations where the rule's conditions all held; SuccessRate is
// TimesUsed over total evaluations.
type RuleStats struct {
	TimesUsed      int64
	TimesEvaluated int64
}

// SuccessRate returns the hit ratio over all evaluations.
func (s RuleStats) SuccessRate() float64 {
	if s.TimesEvaluated == 0 {
		return 0
	}
	return float64(s.TimesUsed) / float64(s.TimesEvaluated)
}

// Rule is a user-defined matching/classification rule. Rules persist across
// sessions and are scanned in descending priority, ties broken by ascending
// rule id.
type Rule struct {
	ID         string
	Name       string
	Priority   int
	IsActive   bool
	Conditions []RuleCondition
	Action     RuleAction
	Stats      RuleStats
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate validates the rule at creation time.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: rule name is required", ErrValidation)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: at least one condition is required", ErrValidation)
	}
	switch r.Action {
	case RuleActionAutoMatch, RuleActionFlag, RuleActionIgnore:
	default:
		return fmt.Errorf("%w: unknown rule action %q", ErrValidation, r.Action)
	}
	for i := range r.Conditions {
		if err := r.Conditions[i].Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return nil
}

// Matches reports whether every condition holds for the pair.
func (r *Rule) Matches(line *StatementLine, tx *BookTransaction) bool {
	for i := range r.Conditions {
		if !r.Conditions[i].Satisfied(line, tx) {
			return false
		}
	}
	return true
}
