package usecase

import (
	"context"
	"time"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/infrastructure/metrics"
)

// AdjustmentUseCase handles manual corrections to matches: adjustments,
// disputes, and resolutions.
type AdjustmentUseCase struct {
	txManager      TransactionManager
	matchRepo      MatchRepository
	adjustmentRepo AdjustmentRepository
	idGen          IDGenerator
	metrics        *metrics.Metrics
}

// NewAdjustmentUseCase creates a new AdjustmentUseCase.
func NewAdjustmentUseCase(
	txManager TransactionManager,
	matchRepo MatchRepository,
	adjustmentRepo AdjustmentRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txManager:      txManager,
		matchRepo:      matchRepo,
		adjustmentRepo: adjustmentRepo,
		idGen:          idGen,
		metrics:        metrics,
	}
}

// ApplyAdjustmentInput represents input for adjusting a match. The amount
// arrives as a float from the surrounding application and is validated
// before it becomes a decimal.
type ApplyAdjustmentInput struct {
	MatchID        string
	AdjustedAmount float64
	Reason         string
	AdjustedBy     string
}

// ApplyAdjustment records a manual correction against a match. The audit
// trail is append-only: adjusting an already-adjusted match adds a new
// record, and the latest one becomes the match's effective adjustment.
func (uc *AdjustmentUseCase) ApplyAdjustment(ctx context.Context, input ApplyAdjustmentInput) (*domain.Adjustment, error) {
	match, err := uc.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return nil, err
	}

	adjustedAmount, err := domain.AmountFromFloat(input.AdjustedAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	adjustment := &domain.Adjustment{
		ID:             uc.idGen.Generate(),
		MatchID:        match.ID,
		AdjustedAmount: adjustedAmount,
		Reason:         input.Reason,
		AdjustedBy:     input.AdjustedBy,
		AdjustedAt:     now,
	}
	if err := adjustment.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.adjustmentRepo.Create(ctx, tx, adjustment); err != nil {
		return nil, err
	}
	if err := uc.matchRepo.SetActiveAdjustment(ctx, tx, match.ID, adjustment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AdjustmentsApplied.Inc()
	}

	return adjustment, nil
}

// ListAdjustments returns a match's full adjustment history, oldest first.
func (uc *AdjustmentUseCase) ListAdjustments(ctx context.Context, matchID string) ([]*domain.Adjustment, error) {
	if _, err := uc.matchRepo.GetByID(ctx, matchID); err != nil {
		return nil, err
	}
	return uc.adjustmentRepo.ListByMatch(ctx, matchID)
}

// DisputeMatch flags a matched pair for review.
func (uc *AdjustmentUseCase) DisputeMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	return uc.transition(ctx, matchID, domain.MatchStatusDisputed, func(m *domain.Match) bool { return m.CanDispute() })
}

// ResolveMatch closes a disputed match.
func (uc *AdjustmentUseCase) ResolveMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	return uc.transition(ctx, matchID, domain.MatchStatusResolved, func(m *domain.Match) bool { return m.CanResolve() })
}

func (uc *AdjustmentUseCase) transition(ctx context.Context, matchID string, to domain.MatchStatus, allowed func(*domain.Match) bool) (*domain.Match, error) {
	match, err := uc.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !allowed(match) {
		return nil, domain.ErrValidation
	}

	now := time.Now().UTC()
	if err := uc.matchRepo.UpdateStatus(ctx, nil, match.ID, to, now); err != nil {
		return nil, err
	}

	match.Status = to
	match.UpdatedAt = now

	return match, nil
}
