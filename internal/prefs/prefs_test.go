package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != "" {
		t.Fatalf("Theme = %q, want empty", p.Theme)
	}
	if got := p.ThemeOr("Kanagawa"); got != "Kanagawa" {
		t.Fatalf("ThemeOr = %q, want fallback", got)
	}
}

func TestSaveThenLoad_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := Save("", Prefs{Theme: "Slate"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "cadence", "prefs.toml")); err != nil {
		t.Fatalf("prefs file not written under HOME: %v", err)
	}
	if got := Load("").ThemeOr("Nightfox"); got != "Slate" {
		t.Fatalf("ThemeOr = %q, want Slate", got)
	}
}

func TestLoad_InvalidTOMLIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if p := Load(path); p.Theme != "" {
		t.Fatalf("Theme = %q, want empty on parse error", p.Theme)
	}
}
