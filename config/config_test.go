package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TickRate != 30.0 || !cfg.Audio.Enabled || cfg.Audio.SampleRate != 44100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Difficulty.Initial != 0 {
		t.Fatalf("difficulty overrides should default to zero (scaler fills them): %+v", cfg.Difficulty)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housebound.yaml")
	content := strings.Join([]string{
		"tick_rate: 60",
		"auto_pilot: true",
		"audio:",
		"  enabled: false",
		"difficulty:",
		"  initial: 0.5",
		"  expected_idle_ratio: 0.4",
		"  metric_window: 8",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TickRate != 60 || !cfg.AutoPilot || cfg.Audio.Enabled {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Difficulty.Initial != 0.5 || cfg.Difficulty.ExpectedIdleRatio != 0.4 || cfg.Difficulty.MetricWindow != 8 {
		t.Fatalf("difficulty overrides not applied: %+v", cfg.Difficulty)
	}

	sc := cfg.Difficulty.ScalerConfig()
	if sc.Initial != 0.5 || sc.ExpectedIdleRatio != 0.4 || sc.MetricWindow != 8 {
		t.Fatalf("scaler config conversion wrong: %+v", sc)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housebound.yaml")
	if err := os.WriteFile(path, []byte("tick_rate: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOUSEBOUND_TICK_RATE", "120")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TickRate != 120 {
		t.Fatalf("env override not applied: %v", cfg.TickRate)
	}
}

func TestLoad_InvalidTickRateFails(t *testing.T) {
	t.Setenv("HOUSEBOUND_TICK_RATE", "-5")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-positive tick rate")
	}
}
