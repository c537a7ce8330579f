package main

import (
	"strings"
	"testing"

	"tether/config"
)

func TestSettingsSetListReset(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, _, err := runCLI(t, "settings", "set", "theme", "ink"); err != nil {
		t.Fatalf("set: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Theme != "ink" {
		t.Fatalf("expected ink, got %q", cfg.Theme)
	}

	stdout, _, err := runCLI(t, "settings", "list", "--no-color")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout, "theme") || !strings.Contains(stdout, "ink") {
		t.Fatalf("expected the list to show the stored theme, got %q", stdout)
	}

	if _, _, err := runCLI(t, "settings", "reset", "theme"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if cfg.Theme != config.Default().Theme {
		t.Fatalf("expected default theme, got %q", cfg.Theme)
	}
}

func TestSettingsResetAllRestoresDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, _, err := runCLI(t, "settings", "set", "anchor_length", "8"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := runCLI(t, "settings", "set", "link_style", "markdown"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := runCLI(t, "settings", "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := config.Default()
	if cfg.AnchorLength != def.AnchorLength || cfg.LinkStyle != def.LinkStyle {
		t.Fatalf("expected defaults, got length %d style %q", cfg.AnchorLength, cfg.LinkStyle)
	}
}

func TestSettingsSetWarnsOnBadPattern(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, stderr, err := runCLI(t, "settings", "set", "line_format_from", "(", "--no-color")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(stderr, "line_format_from") {
		t.Fatalf("expected a warning naming the field, got %q", stderr)
	}

	stdout, _, err := runCLI(t, "settings", "list", "--no-color")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout, "invalid") {
		t.Fatalf("expected the list to flag the bad pattern, got %q", stdout)
	}
}

func TestSettingsSetRejectsUnknownField(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, _, err := runCLI(t, "settings", "set", "no_such_field", "x"); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}
