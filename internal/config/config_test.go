package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ferranmarti/scoutdesk/internal/player"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 8000 {
		t.Errorf("port = %d", cfg.APIPort)
	}
	if cfg.FetchWorkers != 6 {
		t.Errorf("fetch workers = %d", cfg.FetchWorkers)
	}
	if cfg.MinQueryLen != 3 {
		t.Errorf("min query len = %d", cfg.MinQueryLen)
	}
	if err := cfg.Analysis.Validate(); err != nil {
		t.Errorf("default analysis policy invalid: %v", err)
	}
}

func TestLoadOverridesDistribution(t *testing.T) {
	t.Setenv("IDEAL_AGE_DISTRIBUTION", "u21:0.2,21_25:0.3,26_29:0.3,30_plus:0.2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Analysis.IdealAge[player.AgeU21]; got != 0.2 {
		t.Errorf("u21 share = %f, want 0.2", got)
	}
}

func TestLoadRejectsNonNormalizedDistribution(t *testing.T) {
	t.Setenv("IDEAL_AGE_DISTRIBUTION", "u21:0.5,21_25:0.3,26_29:0.3,30_plus:0.2")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for shares summing past 1")
	}
}

func TestLoadRejectsBadWeights(t *testing.T) {
	t.Setenv("BALANCE_AGE_WEIGHT", "0.9")
	t.Setenv("BALANCE_PHASE_WEIGHT", "0.9")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for weights")
	}
}

func TestMalformedDistributionFallsBack(t *testing.T) {
	t.Setenv("IDEAL_PHASE_DISTRIBUTION", "not-a-distribution")

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Analysis.IdealPhase[player.PhasePeak]; got != 0.35 {
		t.Errorf("peak share = %f, want default 0.35", got)
	}
	if !strings.Contains(buf.String(), "IDEAL_PHASE_DISTRIBUTION") {
		t.Errorf("expected a warning naming the malformed key, got %q", buf.String())
	}
}

func TestEnvList(t *testing.T) {
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORSAllowOrigins)
	}
}
