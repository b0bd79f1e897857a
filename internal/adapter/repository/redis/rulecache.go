package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/financbase/reconcile/internal/domain"
)

const ruleCacheKey = "reconcile:rules:active"

// RuleCache implements usecase.RuleCache. The active rule set is read once
// per session run, so a short TTL keeps rule edits visible without hitting
// the database for every run.
type RuleCache struct {
	client *redis.Client
}

// NewRuleCache creates a new RuleCache.
func NewRuleCache(client *redis.Client) *RuleCache {
	return &RuleCache{client: client}
}

type cachedCondition struct {
	Field             string          `json:"field"`
	Operator          string          `json:"operator"`
	Value             string          `json:"value,omitempty"`
	AmountTolerance   decimal.Decimal `json:"amount_tolerance"`
	DateToleranceDays int             `json:"date_tolerance_days,omitempty"`
}

type cachedRule struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Priority   int               `json:"priority"`
	IsActive   bool              `json:"is_active"`
	Conditions []cachedCondition `json:"conditions"`
	Action     string            `json:"action"`
}

// Get returns the cached active rules, or nil on a miss.
func (c *RuleCache) Get(ctx context.Context) ([]*domain.Rule, error) {
	data, err := c.client.Get(ctx, ruleCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached []cachedRule
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	rules := make([]*domain.Rule, 0, len(cached))
	for _, cr := range cached {
		rules = append(rules, fromCached(cr))
	}
	return rules, nil
}

// Set stores the active rule set with a TTL.
func (c *RuleCache) Set(ctx context.Context, rules []*domain.Rule, ttl time.Duration) error {
	cached := make([]cachedRule, 0, len(rules))
	for _, rule := range rules {
		cached = append(cached, toCached(rule))
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, ruleCacheKey, data, ttl).Err()
}

// Invalidate drops the cached rule set.
func (c *RuleCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, ruleCacheKey).Err()
}

func toCached(rule *domain.Rule) cachedRule {
	conditions := make([]cachedCondition, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		conditions = append(conditions, cachedCondition{
			Field:             string(c.Field),
			Operator:          string(c.Operator),
			Value:             c.Value,
			AmountTolerance:   c.AmountTolerance,
			DateToleranceDays: c.DateToleranceDays,
		})
	}
	return cachedRule{
		ID:         rule.ID,
		Name:       rule.Name,
		Priority:   rule.Priority,
		IsActive:   rule.IsActive,
		Conditions: conditions,
		Action:     string(rule.Action),
	}
}

func fromCached(cr cachedRule) *domain.Rule {
	conditions := make([]domain.RuleCondition, 0, len(cr.Conditions))
	for _, c := range cr.Conditions {
		conditions = append(conditions, domain.RuleCondition{
			Field:             domain.ConditionField(c.Field),
			Operator:          domain.ConditionOperator(c.Operator),
			Value:             c.Value,
			AmountTolerance:   c.AmountTolerance,
			DateToleranceDays: c.DateToleranceDays,
		})
	}
	return &domain.Rule{
		ID:         cr.ID,
		Name:       cr.Name,
		Priority:   cr.Priority,
		IsActive:   cr.IsActive,
		Conditions: conditions,
		Action:     domain.RuleAction(cr.Action),
	}
}
