package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
	"github.com/financbase/reconcile/internal/usecase/mocks"
)

func validConditions() []domain.RuleCondition {
	return []domain.RuleCondition{
		{Field: domain.FieldAmount, Operator: domain.OperatorWithinTolerance, AmountTolerance: amount("0.05")},
	}
}

func TestRuleUseCase_CreateRule(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.CreateRuleInput
		errorType error
	}{
		{
			name: "creates active rule",
			input: usecase.CreateRuleInput{
				Name:       "small amount drift",
				Priority:   5,
				Conditions: validConditions(),
				Action:     domain.RuleActionAutoMatch,
			},
		},
		{
			name: "rejects empty name",
			input: usecase.CreateRuleInput{
				Conditions: validConditions(),
				Action:     domain.RuleActionFlag,
			},
			errorType: domain.ErrValidation,
		},
		{
			name: "rejects rule without conditions",
			input: usecase.CreateRuleInput{
				Name:   "no conditions",
				Action: domain.RuleActionFlag,
			},
			errorType: domain.ErrValidation,
		},
		{
			name: "rejects unknown action",
			input: usecase.CreateRuleInput{
				Name:       "bad action",
				Conditions: validConditions(),
				Action:     domain.RuleAction("explode"),
			},
			errorType: domain.ErrValidation,
		},
		{
			name: "rejects contains on amount",
			input: usecase.CreateRuleInput{
				Name: "bad condition",
				Conditions: []domain.RuleCondition{
					{Field: domain.FieldAmount, Operator: domain.OperatorContains, Value: "12"},
				},
				Action: domain.RuleActionIgnore,
			},
			errorType: domain.ErrValidation,
		},
		{
			name: "rejects negative amount tolerance",
			input: usecase.CreateRuleInput{
				Name: "bad tolerance",
				Conditions: []domain.RuleCondition{
					{Field: domain.FieldAmount, Operator: domain.OperatorWithinTolerance, AmountTolerance: amount("-1")},
				},
				Action: domain.RuleActionAutoMatch,
			},
			errorType: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRuleRepository()
			uc := usecase.NewRuleUseCase(repo, nil, mocks.NewMockIDGenerator())

			rule, err := uc.CreateRule(context.Background(), tt.input)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !rule.IsActive {
				t.Error("new rules should start active")
			}

			active, err := repo.ListActive(context.Background())
			if err != nil {
				t.Fatalf("ListActive: %v", err)
			}
			if len(active) != 1 {
				t.Errorf("expected 1 active rule, got %d", len(active))
			}
		})
	}
}

func TestRuleUseCase_UpdateRule(t *testing.T) {
	repo := mocks.NewMockRuleRepository()
	cache := mocks.NewMockRuleCache()
	uc := usecase.NewRuleUseCase(repo, cache, mocks.NewMockIDGenerator())
	ctx := context.Background()

	rule, err := uc.CreateRule(ctx, usecase.CreateRuleInput{
		Name:       "original",
		Priority:   1,
		Conditions: validConditions(),
		Action:     domain.RuleActionFlag,
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	updated, err := uc.UpdateRule(ctx, usecase.UpdateRuleInput{
		ID:         rule.ID,
		Name:       "renamed",
		Priority:   9,
		Conditions: validConditions(),
		Action:     domain.RuleActionAutoMatch,
	})
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}
	if updated.Name != "renamed" || updated.Priority != 9 {
		t.Errorf("update not applied: %+v", updated)
	}

	// Malformed updates never reach the store.
	_, err = uc.UpdateRule(ctx, usecase.UpdateRuleInput{
		ID:     rule.ID,
		Name:   "bad",
		Action: domain.RuleActionFlag,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	stored, _ := repo.GetByID(ctx, rule.ID)
	if stored.Name != "renamed" {
		t.Errorf("failed update leaked into store: %q", stored.Name)
	}

	if _, err := uc.UpdateRule(ctx, usecase.UpdateRuleInput{ID: "nope", Name: "x", Conditions: validConditions(), Action: domain.RuleActionFlag}); !errors.Is(err, domain.ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}

	if cache.Invalidations == 0 {
		t.Error("rule changes should invalidate the cache")
	}
}

func TestRuleUseCase_DeactivateAndActivate(t *testing.T) {
	repo := mocks.NewMockRuleRepository()
	uc := usecase.NewRuleUseCase(repo, nil, mocks.NewMockIDGenerator())
	ctx := context.Background()

	rule, err := uc.CreateRule(ctx, usecase.CreateRuleInput{
		Name:       "seasonal",
		Conditions: validConditions(),
		Action:     domain.RuleActionIgnore,
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	if err := uc.DeactivateRule(ctx, rule.ID); err != nil {
		t.Fatalf("DeactivateRule: %v", err)
	}
	active, _ := repo.ListActive(ctx)
	if len(active) != 0 {
		t.Errorf("deactivated rule still active")
	}

	// Deactivation keeps the rule and its history around.
	stored, err := uc.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("GetRule: %v", err)
	}
	if stored.IsActive {
		t.Error("rule should be inactive")
	}

	if err := uc.ActivateRule(ctx, rule.ID); err != nil {
		t.Fatalf("ActivateRule: %v", err)
	}
	active, _ = repo.ListActive(ctx)
	if len(active) != 1 {
		t.Errorf("reactivated rule not active")
	}

	if err := uc.DeactivateRule(ctx, "nope"); !errors.Is(err, domain.ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}
}
