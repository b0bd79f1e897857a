package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative date window", func(c *Config) { c.DateWindowDays = -1 }},
		{"percent above 100", func(c *Config) { c.AmountTolerancePercent = 101 }},
		{"negative absolute tolerance", func(c *Config) { c.AmountToleranceAbs = decimal.RequireFromString("-0.50") }},
		{"threshold above 100", func(c *Config) { c.AcceptThreshold = 101 }},
		{"weights far from 1", func(c *Config) { c.Weights.Amount = 0.9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestAmountTolerance(t *testing.T) {
	cfg := DefaultConfig()

	// 1% of 100.00 beats the 0.50 floor.
	got := cfg.AmountTolerance(decimal.RequireFromString("100.00"))
	if !got.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("expected tolerance 1.00, got %s", got)
	}

	// For small amounts the absolute floor applies.
	got = cfg.AmountTolerance(decimal.RequireFromString("10.00"))
	if !got.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("expected tolerance 0.50, got %s", got)
	}

	// Sign of the amount is irrelevant.
	got = cfg.AmountTolerance(decimal.RequireFromString("-200.00"))
	if !got.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("expected tolerance 2.00, got %s", got)
	}
}

func TestWithinDateWindow(t *testing.T) {
	cfg := DefaultConfig()
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	if !cfg.WithinDateWindow(base, base.AddDate(0, 0, 5)) {
		t.Error("expected a 5 day gap to be inside the window")
	}
	if !cfg.WithinDateWindow(base, base.AddDate(0, 0, -5)) {
		t.Error("window must be symmetric")
	}
	if cfg.WithinDateWindow(base, base.AddDate(0, 0, 6)) {
		t.Error("expected a 6 day gap to be outside the window")
	}
}
