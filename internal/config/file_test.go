package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile_Missing(t *testing.T) {
	fc, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if fc != nil {
		t.Error("LoadFromFile() should return nil for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("output: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should fail on malformed YAML")
	}
}

func TestFileConfig_ApplyToConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagecompressor.yaml")
	content := `
output:
  dir: ./out
  format: jpg
  quality: 140
  preserve_metadata: false
resize:
  enabled: true
  width: 800
  maintain_aspect: false
rename:
  enabled: true
  pattern: "{date}_{number}"
  start: 10
paths:
  profiles: /tmp/profiles.json
  vips_timeout: 90s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatalf("ApplyToConfig() error = %v", err)
	}

	if cfg.OutputDir != "./out" {
		t.Errorf("OutputDir = %q, want ./out", cfg.OutputDir)
	}
	if cfg.Settings.Format != FormatJPEG {
		t.Errorf("Format = %q, want jpeg", cfg.Settings.Format)
	}
	if cfg.Settings.Quality != 100 {
		t.Errorf("Quality = %d, want clamped 100", cfg.Settings.Quality)
	}
	if cfg.Settings.PreserveMetadata {
		t.Error("PreserveMetadata should be false")
	}
	if !cfg.Settings.Resize || cfg.Settings.Width != 800 {
		t.Errorf("resize = %v width = %d, want true 800", cfg.Settings.Resize, cfg.Settings.Width)
	}
	if cfg.Settings.MaintainAspect {
		t.Error("MaintainAspect should be false")
	}
	if !cfg.RenameEnabled || cfg.RenamePattern != "{date}_{number}" || cfg.StartNumber != 10 {
		t.Errorf("rename = %v %q %d", cfg.RenameEnabled, cfg.RenamePattern, cfg.StartNumber)
	}
	if cfg.ProfilesPath != "/tmp/profiles.json" {
		t.Errorf("ProfilesPath = %q", cfg.ProfilesPath)
	}
	if cfg.VipsTimeout != 90*time.Second {
		t.Errorf("VipsTimeout = %s, want 90s", cfg.VipsTimeout)
	}
}

func TestFileConfig_ApplyToConfigBadTimeout(t *testing.T) {
	fc := &FileConfig{Paths: &PathsConfig{VipsTimeout: "soon"}}

	if err := fc.ApplyToConfig(DefaultConfig()); err == nil {
		t.Error("ApplyToConfig() should reject bad vips_timeout")
	}
}

func TestFileConfig_ApplyToConfigBadFormat(t *testing.T) {
	fc := &FileConfig{Output: &OutputConfig{Format: "tga"}}

	if err := fc.ApplyToConfig(DefaultConfig()); err == nil {
		t.Error("ApplyToConfig() should reject unknown format")
	}
}

func TestFindAndLoadConfig_Explicit(t *testing.T) {
	if _, _, err := FindAndLoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("FindAndLoadConfig() should fail when explicit file is missing")
	}
}

func TestGenerateExampleConfig_Parses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	if err := os.WriteFile(path, []byte(GenerateExampleConfig()), 0644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}

	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatalf("ApplyToConfig() error = %v", err)
	}
	if cfg.Settings.Format != FormatWebP {
		t.Errorf("Format = %q, want webp", cfg.Settings.Format)
	}
}
