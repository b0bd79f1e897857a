package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRuleCondition_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cond        RuleCondition
		expectError bool
	}{
		{
			name: "equals on reference",
			cond: RuleCondition{Field: FieldReference, Operator: OperatorEquals},
		},
		{
			name: "amount within tolerance",
			cond: RuleCondition{Field: FieldAmount, Operator: OperatorWithinTolerance, AmountTolerance: decimal.RequireFromString("0.05")},
		},
		{
			name: "date within tolerance",
			cond: RuleCondition{Field: FieldDate, Operator: OperatorWithinTolerance, DateToleranceDays: 3},
		},
		{
			name: "contains on description",
			cond: RuleCondition{Field: FieldDescription, Operator: OperatorContains, Value: "fee"},
		},
		{
			name:        "unknown field",
			cond:        RuleCondition{Field: "memo", Operator: OperatorEquals},
			expectError: true,
		},
		{
			name:        "unknown operator",
			cond:        RuleCondition{Field: FieldAmount, Operator: "regex"},
			expectError: true,
		},
		{
			name:        "contains on amount",
			cond:        RuleCondition{Field: FieldAmount, Operator: OperatorContains},
			expectError: true,
		},
		{
			name:        "tolerance on reference",
			cond:        RuleCondition{Field: FieldReference, Operator: OperatorWithinTolerance},
			expectError: true,
		},
		{
			name:        "negative amount tolerance",
			cond:        RuleCondition{Field: FieldAmount, Operator: OperatorWithinTolerance, AmountTolerance: decimal.RequireFromString("-1")},
			expectError: true,
		},
		{
			name:        "negative date tolerance",
			cond:        RuleCondition{Field: FieldDate, Operator: OperatorWithinTolerance, DateToleranceDays: -1},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cond.Validate()

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRuleCondition_Satisfied(t *testing.T) {
	line := &StatementLine{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("100.00"),
		Description: "Vendor X payment",
		Reference:   "INV-42",
	}
	tx := &BookTransaction{
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("100.04"),
		Description: "Vendor X Inc payment received",
		Reference:   "inv-42",
	}

	tests := []struct {
		name string
		cond RuleCondition
		want bool
	}{
		{
			name: "reference equals ignores case",
			cond: RuleCondition{Field: FieldReference, Operator: OperatorEquals},
			want: true,
		},
		{
			name: "amount equals fails on different amounts",
			cond: RuleCondition{Field: FieldAmount, Operator: OperatorEquals},
			want: false,
		},
		{
			name: "amount within tolerance",
			cond: RuleCondition{Field: FieldAmount, Operator: OperatorWithinTolerance, AmountTolerance: decimal.RequireFromString("0.05")},
			want: true,
		},
		{
			name: "amount outside tolerance",
			cond: RuleCondition{Field: FieldAmount, Operator: OperatorWithinTolerance, AmountTolerance: decimal.RequireFromString("0.01")},
			want: false,
		},
		{
			name: "date within tolerance",
			cond: RuleCondition{Field: FieldDate, Operator: OperatorWithinTolerance, DateToleranceDays: 2},
			want: true,
		},
		{
			name: "date outside tolerance",
			cond: RuleCondition{Field: FieldDate, Operator: OperatorWithinTolerance, DateToleranceDays: 1},
			want: false,
		},
		{
			name: "date equals fails across days",
			cond: RuleCondition{Field: FieldDate, Operator: OperatorEquals},
			want: false,
		},
		{
			name: "contains explicit value",
			cond: RuleCondition{Field: FieldDescription, Operator: OperatorContains, Value: "vendor x"},
			want: true,
		},
		{
			name: "contains falls back to line description",
			cond: RuleCondition{Field: FieldDescription, Operator: OperatorContains},
			want: false,
		},
		{
			name: "equals against fixed amount value",
			cond: RuleCondition{Field: FieldAmount, Operator: OperatorEquals, Value: "100.00"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Satisfied(line, tx); got != tt.want {
				t.Errorf("Satisfied() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRule_MatchesRequiresAllConditions(t *testing.T) {
	line := &StatementLine{
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("100.00"),
		Reference: "INV-42",
	}
	tx := &BookTransaction{
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("100.00"),
		Reference: "INV-42",
	}

	rule := &Rule{
		Name:   "same ref and amount",
		Action: RuleActionAutoMatch,
		Conditions: []RuleCondition{
			{Field: FieldReference, Operator: OperatorEquals},
			{Field: FieldAmount, Operator: OperatorEquals},
		},
	}

	if !rule.Matches(line, tx) {
		t.Fatal("expected rule to match when all conditions hold")
	}

	tx.Amount = decimal.RequireFromString("200.00")
	if rule.Matches(line, tx) {
		t.Fatal("expected rule to fail when one condition fails")
	}
}

func TestRule_Validate(t *testing.T) {
	valid := Rule{
		Name:       "fees",
		Action:     RuleActionFlag,
		Conditions: []RuleCondition{{Field: FieldDescription, Operator: OperatorContains, Value: "fee"}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noName := valid
	noName.Name = "  "
	if err := noName.Validate(); err == nil {
		t.Error("expected error for blank name")
	}

	noConditions := valid
	noConditions.Conditions = nil
	if err := noConditions.Validate(); err == nil {
		t.Error("expected error for empty conditions")
	}

	badAction := valid
	badAction.Action = "reject"
	if err := badAction.Validate(); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestRuleStats_SuccessRate(t *testing.T) {
	if got := (RuleStats{}).SuccessRate(); got != 0 {
		t.Errorf("expected zero rate with no evaluations, got %f", got)
	}
	if got := (RuleStats{TimesUsed: 3, TimesEvaluated: 4}).SuccessRate(); got != 0.75 {
		t.Errorf("expected 0.75, got %f", got)
	}
}
