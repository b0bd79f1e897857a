package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func decimalMustParse(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabaseMaxConns != 25 {
		t.Errorf("expected DatabaseMaxConns 25, got %d", cfg.DatabaseMaxConns)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected HTTPPort 8080, got %s", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel info, got %s", cfg.LogLevel)
	}
	if cfg.SessionBatchSize != 100 {
		t.Errorf("expected SessionBatchSize 100, got %d", cfg.SessionBatchSize)
	}
	if cfg.SessionTimeout != 5*time.Minute {
		t.Errorf("expected SessionTimeout 5m, got %s", cfg.SessionTimeout)
	}
	if cfg.DateWindowDays != 5 {
		t.Errorf("expected DateWindowDays 5, got %d", cfg.DateWindowDays)
	}
	if cfg.AcceptThreshold != 50 {
		t.Errorf("expected AcceptThreshold 50, got %d", cfg.AcceptThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "50")
	t.Setenv("RECON_BATCH_SIZE", "250")
	t.Setenv("RECON_SESSION_TIMEOUT", "90s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabaseMaxConns != 50 {
		t.Errorf("expected DatabaseMaxConns 50, got %d", cfg.DatabaseMaxConns)
	}
	if cfg.SessionBatchSize != 250 {
		t.Errorf("expected SessionBatchSize 250, got %d", cfg.SessionBatchSize)
	}
	if cfg.SessionTimeout != 90*time.Second {
		t.Errorf("expected SessionTimeout 90s, got %s", cfg.SessionTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel debug, got %s", cfg.LogLevel)
	}
}

func TestMatcherConfigDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	mc, err := cfg.MatcherConfig()
	if err != nil {
		t.Fatalf("MatcherConfig failed: %v", err)
	}

	if mc.DateWindowDays != 5 {
		t.Errorf("expected DateWindowDays 5, got %d", mc.DateWindowDays)
	}
	if !mc.AmountToleranceAbs.Equal(decimalMustParse(t, "0.50")) {
		t.Errorf("expected AmountToleranceAbs 0.50, got %s", mc.AmountToleranceAbs)
	}

	sum := mc.Weights.Amount + mc.Weights.Date + mc.Weights.Reference + mc.Weights.Description
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("expected weights to sum to 1, got %f", sum)
	}
}

func TestMatcherConfigRejectsBadTolerance(t *testing.T) {
	t.Setenv("RECON_AMOUNT_TOLERANCE_ABS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := cfg.MatcherConfig(); err == nil {
		t.Fatal("expected error for invalid tolerance")
	}
}

func TestMatcherConfigRejectsBadWeights(t *testing.T) {
	t.Setenv("RECON_WEIGHT_AMOUNT", "0.9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := cfg.MatcherConfig(); err == nil {
		t.Fatal("expected error when weights do not sum to 1")
	}
}
