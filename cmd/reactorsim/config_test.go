package main

import (
	"flag"
	"testing"
)

func TestRunConfigEnvAndFlags(t *testing.T) {
	t.Setenv("CYTO_PORT", "9090")
	t.Setenv("CYTO_SEED", "77")
	t.Setenv("CYTO_DB", "")
	t.Setenv("CYTO_SHOP", "items.yaml")

	cfg := newRunConfig()
	if cfg.Port != 9090 || cfg.Seed != 77 {
		t.Fatalf("env not applied: port %d seed %d", cfg.Port, cfg.Seed)
	}
	if cfg.DBPath != "data/cytogenesis.db" {
		t.Fatalf("empty CYTO_DB should fall back to the default, got %q", cfg.DBPath)
	}
	if cfg.ShopPath != "items.yaml" {
		t.Fatalf("CYTO_SHOP not applied, got %q", cfg.ShopPath)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-port", "0", "-fast", "-workers", "4", "-player", "ada", "-shop", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != 0 || !cfg.Fast || cfg.Workers != 4 || cfg.Player != "ada" || cfg.ShopPath != "" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestEnvIntFallback(t *testing.T) {
	t.Setenv("CYTO_PORT", "not-a-number")
	if got := envIntOrDefault("CYTO_PORT", 8080); got != 8080 {
		t.Fatalf("envIntOrDefault = %d, want 8080", got)
	}
}
