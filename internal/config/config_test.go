package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Проверяем значения по умолчанию
	if cfg.Settings.Format != FormatWebP {
		t.Errorf("Format = %v, want %v", cfg.Settings.Format, FormatWebP)
	}

	if cfg.Settings.Quality != 85 {
		t.Errorf("Quality = %d, want 85", cfg.Settings.Quality)
	}

	if !cfg.Settings.MaintainAspect {
		t.Error("MaintainAspect should be true by default")
	}

	if !cfg.Settings.PreserveMetadata {
		t.Error("PreserveMetadata should be true by default")
	}

	if cfg.RenamePattern != "{original_name}" {
		t.Errorf("RenamePattern = %q, want {original_name}", cfg.RenamePattern)
	}

	if cfg.StartNumber != 1 {
		t.Errorf("StartNumber = %d, want 1", cfg.StartNumber)
	}

	if len(cfg.InputExtensions) == 0 {
		t.Error("InputExtensions should not be empty by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg", "png"},
				Settings:        Settings{Format: FormatWebP, Quality: 85},
			},
			wantErr: false,
		},
		{
			name: "missing output dir",
			cfg: &Config{
				InputExtensions: []string{"jpg"},
				Settings:        Settings{Format: FormatWebP, Quality: 85},
			},
			wantErr: true,
		},
		{
			name: "missing extensions",
			cfg: &Config{
				OutputDir: "/output",
				Settings:  Settings{Format: FormatWebP, Quality: 85},
			},
			wantErr: true,
		},
		{
			name: "unknown format",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				Settings:        Settings{Format: "bmp", Quality: 85},
			},
			wantErr: true,
		},
		{
			name: "negative width",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				Settings:        Settings{Format: FormatPNG, Quality: 85, Width: -1},
			},
			wantErr: true,
		},
		{
			name: "width above limit",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				Settings:        Settings{Format: FormatPNG, Quality: 85, Resize: true, Width: MaxDimension + 1},
			},
			wantErr: true,
		},
		{
			name: "area above limit",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				Settings:        Settings{Format: FormatPNG, Quality: 85, Resize: true, Width: 20000, Height: 20000},
			},
			wantErr: true,
		},
		{
			name: "rename without pattern",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				Settings:        Settings{Format: FormatPNG, Quality: 85},
				RenameEnabled:   true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDefaultsDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = "/output"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := filepath.Join("/output", ".imagecompressor", "history.sqlite")
	if cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
}

func TestSettings_ValidateClampsQuality(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-20, 1},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, 100},
		{1000, 100},
	}

	for _, tt := range tests {
		s := Settings{Format: FormatJPEG, Quality: tt.in}
		if err := s.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if s.Quality != tt.want {
			t.Errorf("Quality %d clamped to %d, want %d", tt.in, s.Quality, tt.want)
		}
	}
}

func TestSettings_SetQuality(t *testing.T) {
	s := DefaultSettings()

	s.SetQuality(150)
	if s.Quality != 100 {
		t.Errorf("SetQuality(150) = %d, want 100", s.Quality)
	}

	s.SetQuality(0)
	if s.Quality != 1 {
		t.Errorf("SetQuality(0) = %d, want 1", s.Quality)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"jpeg", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"JPEG", FormatJPEG, false},
		{"png", FormatPNG, false},
		{"WebP", FormatWebP, false},
		{"ICO", FormatICO, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputFormat_Extension(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatJPEG, "jpg"},
		{FormatPNG, "png"},
		{FormatWebP, "webp"},
		{FormatICO, "ico"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.Extension(); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputFormat_SupportsAlpha(t *testing.T) {
	if FormatJPEG.SupportsAlpha() {
		t.Error("JPEG should not support alpha")
	}
	for _, f := range []OutputFormat{FormatPNG, FormatWebP, FormatICO} {
		if !f.SupportsAlpha() {
			t.Errorf("%s should support alpha", f)
		}
	}
}

func TestSettings_Params(t *testing.T) {
	s := DefaultSettings()

	if s.Params() == "" {
		t.Error("Params() returned empty string")
	}
}
