package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.CopiedLinkText != "{{LINK}}" || cfg.AnchorLength != 5 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "tether")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	content := `{"link_text": "origin", "unknown_key": 42}`
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LinkText != "origin" {
		t.Fatalf("expected stored value, got %q", cfg.LinkText)
	}
	if cfg.LineFormatFrom != `\s*$` {
		t.Fatalf("expected default pattern for missing key, got %q", cfg.LineFormatFrom)
	}
	if !cfg.RemoveLeadingWhitespace {
		t.Fatalf("expected default toggle for missing key")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.LinkText = "from"
	cfg.AnchorLength = 7
	cfg.LinkStyle = "markdown"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.LinkText != "from" || loaded.AnchorLength != 7 || loaded.LinkStyle != "markdown" {
		t.Fatalf("expected saved values back, got %+v", loaded)
	}
}

func TestSavedFileIsFlatJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := Default().Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(home, ".config", "tether", "settings.json"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("settings file is not a JSON object: %v", err)
	}
	if _, ok := flat["line_format_from"]; !ok {
		t.Fatalf("expected line_format_from key, got %v", flat)
	}
}

func TestDefaultForGivesEditableForms(t *testing.T) {
	if got := DefaultFor("anchor_length"); got != "5" {
		t.Fatalf("expected default anchor length 5, got %q", got)
	}
	if got := DefaultFor("line_format_from"); got != `\s*$` {
		t.Fatalf("expected default pattern, got %q", got)
	}
	if got := DefaultFor("no_such_field"); got != "" {
		t.Fatalf("expected empty string for unknown field, got %q", got)
	}
}

func TestSetRestoresDefaultOnEmpty(t *testing.T) {
	cfg := Default()
	cfg.LineFormatFrom = "custom"
	if err := cfg.Set("line_format_from", ""); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if cfg.LineFormatFrom != `\s*$` {
		t.Fatalf("expected default restored, got %q", cfg.LineFormatFrom)
	}

	cfg.AnchorLength = 9
	if err := cfg.Set("anchor_length", ""); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if cfg.AnchorLength != 5 {
		t.Fatalf("expected default anchor length, got %d", cfg.AnchorLength)
	}
}

func TestSetParsesFieldKinds(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("remove_leading_whitespace", "off"); err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	if cfg.RemoveLeadingWhitespace {
		t.Fatalf("expected toggle off")
	}
	if err := cfg.Set("image_preview", "on"); err != nil {
		t.Fatalf("toggle on failed: %v", err)
	}
	if !cfg.ImagePreview {
		t.Fatalf("expected toggle on")
	}

	if err := cfg.Set("notice_seconds", "8"); err != nil {
		t.Fatalf("int set failed: %v", err)
	}
	if cfg.NoticeSeconds != 8 {
		t.Fatalf("expected 8, got %d", cfg.NoticeSeconds)
	}
	if err := cfg.Set("anchor_length", "many"); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}

	if err := cfg.Set("ignore_globs", "a/**, b.md"); err != nil {
		t.Fatalf("list set failed: %v", err)
	}
	if len(cfg.IgnoreGlobs) != 2 || cfg.IgnoreGlobs[0] != "a/**" || cfg.IgnoreGlobs[1] != "b.md" {
		t.Fatalf("expected split globs, got %v", cfg.IgnoreGlobs)
	}

	if err := cfg.Set("no_such_field", "x"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestValidateFlagsProblems(t *testing.T) {
	cfg := Default()
	cfg.LineFormatFrom = "[abc"
	cfg.CopiedLinkText = "no placeholder"
	cfg.AnchorLength = 1
	cfg.LinkStyle = "html"
	cfg.Theme = "neon"
	cfg.IgnoreGlobs = []string{"[\\]"}

	problems := cfg.Validate()
	for _, field := range []string{"line_format_from", "copied_link_text", "anchor_length", "link_style", "theme", "ignore_globs"} {
		if problems[field] == "" {
			t.Fatalf("expected a problem for %s, got %v", field, problems)
		}
	}

	if got := Default().Validate(); len(got) != 0 {
		t.Fatalf("expected defaults to validate clean, got %v", got)
	}
}

func TestFieldsRoundTripThroughValueOfAndSet(t *testing.T) {
	cfg := Default()
	for _, f := range Fields() {
		val := cfg.ValueOf(f.Name)
		other := Default()
		if err := other.Set(f.Name, val); err != nil {
			t.Fatalf("set %s to its own value failed: %v", f.Name, err)
		}
		if got := other.ValueOf(f.Name); got != val {
			t.Fatalf("%s: expected %q after round trip, got %q", f.Name, val, got)
		}
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Theme = "does-not-exist"
	if got := cfg.GetTheme(); got != Themes["slate"] {
		t.Fatalf("expected slate fallback, got %v", got.Name)
	}
}
