package domain

import (
	"errors"
	"testing"
	"time"
)

func TestSeverity_Escalate(t *testing.T) {
	tests := []struct {
		from Severity
		want Severity
	}{
		{SeverityLow, SeverityMedium},
		{SeverityMedium, SeverityHigh},
		{SeverityHigh, SeverityCritical},
		{SeverityCritical, SeverityCritical},
	}

	for _, tt := range tests {
		if got := tt.from.Escalate(); got != tt.want {
			t.Errorf("Escalate(%s) = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestDiscrepancy_ReviewWorkflow(t *testing.T) {
	now := time.Now().UTC()
	d := &Discrepancy{Status: DiscrepancyOpen}

	if err := d.Investigate(); err != nil {
		t.Fatalf("Investigate failed: %v", err)
	}
	if d.Status != DiscrepancyInvestigating {
		t.Fatalf("expected investigating, got %s", d.Status)
	}

	// Investigate is only valid from open.
	if err := d.Investigate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := d.Resolve("bank posted late", "sam", now); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Status != DiscrepancyResolved || d.Resolution != "bank posted late" || d.ResolvedBy != "sam" {
		t.Fatalf("resolution not recorded: %+v", d)
	}
	if d.ResolvedAt == nil || !d.ResolvedAt.Equal(now) {
		t.Fatal("expected resolved timestamp to be set")
	}

	// Terminal states reject further transitions.
	if err := d.Dismiss("sam", now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error dismissing resolved, got %v", err)
	}
}

func TestDiscrepancy_ResolveRequiresResolution(t *testing.T) {
	d := &Discrepancy{Status: DiscrepancyOpen}
	if err := d.Resolve("  ", "sam", time.Now()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if d.Status != DiscrepancyOpen {
		t.Fatal("failed resolve must not change status")
	}
}

func TestDiscrepancy_DismissRequiresActor(t *testing.T) {
	now := time.Now().UTC()

	d := &Discrepancy{Status: DiscrepancyOpen}
	if err := d.Dismiss("", now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := d.Dismiss("lee", now); err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	if d.Status != DiscrepancyDismissed || d.ResolvedBy != "lee" {
		t.Fatalf("dismissal not recorded: %+v", d)
	}
}
