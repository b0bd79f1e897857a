package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/financbase/reconcile/internal/domain"
)

const ruleColumns = `
	id, name, priority, is_active, conditions, action,
	times_used, times_evaluated, created_at, updated_at
`

// conditionRow is the JSONB shape of one rule condition.
type conditionRow struct {
	Field             string          `json:"field"`
	Operator          string          `json:"operator"`
	Value             string          `json:"value,omitempty"`
	AmountTolerance   decimal.Decimal `json:"amount_tolerance"`
	DateToleranceDays int             `json:"date_tolerance_days,omitempty"`
}

// RuleRepository implements usecase.RuleRepository.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// Create inserts a new rule.
func (r *RuleRepository) Create(ctx context.Context, rule *domain.Rule) error {
	conditions, err := marshalConditions(rule.Conditions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		rule.ID,
		rule.Name,
		rule.Priority,
		rule.IsActive,
		conditions,
		string(rule.Action),
		rule.Stats.TimesUsed,
		rule.Stats.TimesEvaluated,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	return err
}

// Update replaces a rule's definition, keeping its usage counters.
func (r *RuleRepository) Update(ctx context.Context, rule *domain.Rule) error {
	conditions, err := marshalConditions(rule.Conditions)
	if err != nil {
		return err
	}

	query := `
		UPDATE rules
		SET name = $2, priority = $3, conditions = $4, action = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.Name,
		rule.Priority,
		conditions,
		string(rule.Action),
		rule.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// GetByID retrieves a rule by ID.
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE id = $1`

	rule, err := scanRule(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// ListActive returns all active rules.
func (r *RuleRepository) ListActive(ctx context.Context) ([]*domain.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE is_active
		ORDER BY priority DESC, id
	`

	return r.list(ctx, query)
}

// List returns a page of rules ordered by priority.
func (r *RuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		ORDER BY priority DESC, id
		LIMIT $1 OFFSET $2
	`

	return r.list(ctx, query, limit, offset)
}

// SetActive toggles a rule without touching its definition.
func (r *RuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE rules SET is_active = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// RecordUsage folds a session's counters into lifetime stats.
func (r *RuleRepository) RecordUsage(ctx context.Context, id string, evaluated, hits int64) error {
	query := `
		UPDATE rules
		SET times_evaluated = times_evaluated + $2, times_used = times_used + $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, evaluated, hits)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

func (r *RuleRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Rule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func scanRule(row pgx.Row) (*domain.Rule, error) {
	var (
		rule       domain.Rule
		conditions []byte
		action     string
	)
	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Priority,
		&rule.IsActive,
		&conditions,
		&action,
		&rule.Stats.TimesUsed,
		&rule.Stats.TimesEvaluated,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Action = domain.RuleAction(action)
	rule.Conditions, err = unmarshalConditions(conditions)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func marshalConditions(conditions []domain.RuleCondition) ([]byte, error) {
	rows := make([]conditionRow, 0, len(conditions))
	for _, c := range conditions {
		rows = append(rows, conditionRow{
			Field:             string(c.Field),
			Operator:          string(c.Operator),
			Value:             c.Value,
			AmountTolerance:   c.AmountTolerance,
			DateToleranceDays: c.DateToleranceDays,
		})
	}
	return json.Marshal(rows)
}

func unmarshalConditions(data []byte) ([]domain.RuleCondition, error) {
	var rows []conditionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	conditions := make([]domain.RuleCondition, 0, len(rows))
	for _, row := range rows {
		conditions = append(conditions, domain.RuleCondition{
			Field:             domain.ConditionField(row.Field),
			Operator:          domain.ConditionOperator(row.Operator),
			Value:             row.Value,
			AmountTolerance:   row.AmountTolerance,
			DateToleranceDays: row.DateToleranceDays,
		})
	}
	return conditions, nil
}
