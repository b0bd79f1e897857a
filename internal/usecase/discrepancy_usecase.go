package usecase

import (
	"context"
	"time"

	"github.com/financbase/reconcile/internal/domain"
)

// DiscrepancyUseCase handles the review workflow for detected
// discrepancies.
type DiscrepancyUseCase struct {
	discrepancyRepo DiscrepancyRepository
}

// NewDiscrepancyUseCase creates a new DiscrepancyUseCase.
func NewDiscrepancyUseCase(discrepancyRepo DiscrepancyRepository) *DiscrepancyUseCase {
	return &DiscrepancyUseCase{discrepancyRepo: discrepancyRepo}
}

// GetDiscrepancy returns a discrepancy by id.
func (uc *DiscrepancyUseCase) GetDiscrepancy(ctx context.Context, id string) (*domain.Discrepancy, error) {
	return uc.discrepancyRepo.GetByID(ctx, id)
}

// Investigate moves an open discrepancy into review.
func (uc *DiscrepancyUseCase) Investigate(ctx context.Context, id string) (*domain.Discrepancy, error) {
	d, err := uc.discrepancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Investigate(); err != nil {
		return nil, err
	}
	if err := uc.discrepancyRepo.UpdateReview(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve closes a discrepancy with an explanation of what was found.
func (uc *DiscrepancyUseCase) Resolve(ctx context.Context, id, resolution, actor string) (*domain.Discrepancy, error) {
	d, err := uc.discrepancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Resolve(resolution, actor, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.discrepancyRepo.UpdateReview(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Dismiss closes a discrepancy as not actionable.
func (uc *DiscrepancyUseCase) Dismiss(ctx context.Context, id, actor string) (*domain.Discrepancy, error) {
	d, err := uc.discrepancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Dismiss(actor, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.discrepancyRepo.UpdateReview(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
