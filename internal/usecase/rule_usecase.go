package usecase

import (
	"context"
	"time"

	"github.com/financbase/reconcile/internal/domain"
)

// RuleUseCase handles management of user-defined matching rules.
type RuleUseCase struct {
	ruleRepo  RuleRepository
	ruleCache RuleCache
	idGen     IDGenerator
}

// NewRuleUseCase creates a new RuleUseCase. ruleCache may be nil.
func NewRuleUseCase(ruleRepo RuleRepository, ruleCache RuleCache, idGen IDGenerator) *RuleUseCase {
	return &RuleUseCase{
		ruleRepo:  ruleRepo,
		ruleCache: ruleCache,
		idGen:     idGen,
	}
}

// CreateRuleInput represents input for creating a rule.
type CreateRuleInput struct {
	Name       string
	Priority   int
	Conditions []domain.RuleCondition
	Action     domain.RuleAction
}

// CreateRule validates and stores a new rule. Validation happens here, at
// creation time, so a malformed condition can never reach a session run.
func (uc *RuleUseCase) CreateRule(ctx context.Context, input CreateRuleInput) (*domain.Rule, error) {
	now := time.Now().UTC()
	rule := &domain.Rule{
		ID:         uc.idGen.Generate(),
		Name:       input.Name,
		Priority:   input.Priority,
		IsActive:   true,
		Conditions: input.Conditions,
		Action:     input.Action,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	uc.invalidate(ctx)

	return rule, nil
}

// UpdateRuleInput represents input for updating a rule.
type UpdateRuleInput struct {
	ID         string
	Name       string
	Priority   int
	Conditions []domain.RuleCondition
	Action     domain.RuleAction
}

// UpdateRule replaces a rule's definition. Lifetime usage statistics are
// kept.
func (uc *RuleUseCase) UpdateRule(ctx context.Context, input UpdateRuleInput) (*domain.Rule, error) {
	rule, err := uc.ruleRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	rule.Name = input.Name
	rule.Priority = input.Priority
	rule.Conditions = input.Conditions
	rule.Action = input.Action
	rule.UpdatedAt = time.Now().UTC()

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}

	uc.invalidate(ctx)

	return rule, nil
}

// ActivateRule re-enables a rule for new sessions.
func (uc *RuleUseCase) ActivateRule(ctx context.Context, id string) error {
	return uc.setActive(ctx, id, true)
}

// DeactivateRule excludes a rule from new sessions without losing it.
func (uc *RuleUseCase) DeactivateRule(ctx context.Context, id string) error {
	return uc.setActive(ctx, id, false)
}

func (uc *RuleUseCase) setActive(ctx context.Context, id string, active bool) error {
	if _, err := uc.ruleRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.ruleRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	uc.invalidate(ctx)

	return nil
}

// GetRule returns a rule by id.
func (uc *RuleUseCase) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	return uc.ruleRepo.GetByID(ctx, id)
}

// ListRules returns rules ordered by priority, highest first.
func (uc *RuleUseCase) ListRules(ctx context.Context, limit, offset int) ([]*domain.Rule, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.ruleRepo.List(ctx, limit, offset)
}

// invalidate drops the cached active rule set. Cache misses fall back to
// the repository, so failures here are not fatal.
func (uc *RuleUseCase) invalidate(ctx context.Context) {
	if uc.ruleCache != nil {
		_ = uc.ruleCache.Invalidate(ctx)
	}
}
