package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
	"github.com/financbase/reconcile/internal/usecase/mocks"
)

func newDiscrepancyFixture(t *testing.T) (*usecase.DiscrepancyUseCase, *mocks.MockDiscrepancyRepository) {
	t.Helper()
	repo := mocks.NewMockDiscrepancyRepository()
	err := repo.CreateBatch(context.Background(), nil, []*domain.Discrepancy{
		{
			ID:        "d-1",
			SessionID: "sess-1",
			Type:      domain.DiscrepancyAmountMismatch,
			Severity:  domain.SeverityMedium,
			Status:    domain.DiscrepancyOpen,
		},
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	return usecase.NewDiscrepancyUseCase(repo), repo
}

func TestDiscrepancyUseCase_ReviewWorkflow(t *testing.T) {
	uc, repo := newDiscrepancyFixture(t)
	ctx := context.Background()

	d, err := uc.Investigate(ctx, "d-1")
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}
	if d.Status != domain.DiscrepancyInvestigating {
		t.Fatalf("expected investigating, got %s", d.Status)
	}

	// Investigating twice is not a valid transition.
	if _, err := uc.Investigate(ctx, "d-1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	d, err = uc.Resolve(ctx, "d-1", "timing difference, cleared next day", "sam")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Status != domain.DiscrepancyResolved {
		t.Fatalf("expected resolved, got %s", d.Status)
	}
	if d.ResolvedAt == nil || d.ResolvedBy != "sam" {
		t.Error("resolution metadata missing")
	}

	stored, err := repo.GetByID(ctx, "d-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.DiscrepancyResolved || stored.Resolution == "" {
		t.Error("resolution should be persisted")
	}

	// Terminal discrepancies stay terminal.
	if _, err := uc.Dismiss(ctx, "d-1", "sam"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestDiscrepancyUseCase_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		resolution string
		actor      string
		errorType  error
	}{
		{
			name:       "resolves open discrepancy",
			id:         "d-1",
			resolution: "duplicate statement import",
			actor:      "sam",
		},
		{
			name:      "requires a resolution note",
			id:        "d-1",
			actor:     "sam",
			errorType: domain.ErrValidation,
		},
		{
			name:       "unknown discrepancy",
			id:         "nope",
			resolution: "whatever",
			actor:      "sam",
			errorType:  domain.ErrDiscrepancyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newDiscrepancyFixture(t)

			_, err := uc.Resolve(context.Background(), tt.id, tt.resolution, tt.actor)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDiscrepancyUseCase_Dismiss(t *testing.T) {
	uc, repo := newDiscrepancyFixture(t)
	ctx := context.Background()

	d, err := uc.Dismiss(ctx, "d-1", "sam")
	if err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if d.Status != domain.DiscrepancyDismissed {
		t.Fatalf("expected dismissed, got %s", d.Status)
	}

	stored, _ := repo.GetByID(ctx, "d-1")
	if stored.Status != domain.DiscrepancyDismissed {
		t.Errorf("persisted status = %s, want dismissed", stored.Status)
	}
}
