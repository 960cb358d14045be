package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/buddingfriendships/season"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Start.Map != "farm" {
		t.Fatalf("expected start map farm, got %q", cfg.Start.Map)
	}
	if !cfg.Debug.ShowFPS || cfg.Debug.Collision {
		t.Fatalf("unexpected default debug flags: %+v", cfg.Debug)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	body := "season: winter\ndebug:\n  collision: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CurrentSeason() != season.Winter {
		t.Fatalf("expected winter, got %v", cfg.CurrentSeason())
	}
	if !cfg.Debug.Collision {
		t.Fatalf("expected collision debug enabled")
	}
	if cfg.Window.Width != 800 {
		t.Fatalf("expected default window width to survive, got %d", cfg.Window.Width)
	}
}

func TestLoadRejectsBadSeason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte("season: monsoon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown season")
	}
}
