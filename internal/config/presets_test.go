package config

import (
	"testing"
)

func TestApplyResizePreset(t *testing.T) {
	tests := []struct {
		name       string
		preset     string
		wantOK     bool
		wantWidth  int
		wantHeight int
	}{
		{"hd preset", "hd", true, 1920, 1080},
		{"4k preset", "4k", true, 3840, 2160},
		{"thumbnail preset", "thumbnail", true, 300, 300},
		{"social preset", "social", true, 1200, 1200},
		{"unknown preset", "unknown", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			ok := s.ApplyResizePreset(tt.preset)

			if ok != tt.wantOK {
				t.Errorf("ApplyResizePreset() = %v, want %v", ok, tt.wantOK)
			}

			if tt.wantOK {
				if s.Width != tt.wantWidth || s.Height != tt.wantHeight {
					t.Errorf("size = %dx%d, want %dx%d", s.Width, s.Height, tt.wantWidth, tt.wantHeight)
				}
				if !s.Resize {
					t.Error("preset should enable resize")
				}
			} else if s.Resize {
				t.Error("unknown preset should not enable resize")
			}
		})
	}
}

func TestApplyResizePresetCustom(t *testing.T) {
	s := DefaultSettings()
	s.Width = 640

	if !s.ApplyResizePreset("custom") {
		t.Fatal("custom preset should be accepted")
	}

	// custom ничего не меняет
	if s.Width != 640 || s.Resize {
		t.Errorf("custom preset changed settings: %+v", s)
	}
}

func TestValidResizePresets(t *testing.T) {
	presets := ValidResizePresets()

	expected := []string{"custom", "hd", "4k", "thumbnail", "social"}
	if len(presets) != len(expected) {
		t.Fatalf("ValidResizePresets() returned %d presets, want %d", len(presets), len(expected))
	}

	for i, exp := range expected {
		if presets[i] != exp {
			t.Errorf("ValidResizePresets()[%d] = %q, want %q", i, presets[i], exp)
		}
	}
}

func TestResizePresetValues(t *testing.T) {
	// Проверяем, что все пресеты имеют валидные значения
	for name, p := range ResizePresets {
		t.Run(string(name), func(t *testing.T) {
			if p.Width <= 0 || p.Height <= 0 {
				t.Errorf("Preset %s has invalid size: %dx%d", name, p.Width, p.Height)
			}
		})
	}
}
