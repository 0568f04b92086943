// Package config содержит конфигурацию приложения.
package config

// ResizePreset определяет пресет размера.
type ResizePreset string

const (
	// PresetCustom - размеры не меняются.
	PresetCustom ResizePreset = "custom"
	// PresetHD - 1920x1080.
	PresetHD ResizePreset = "hd"
	// Preset4K - 3840x2160.
	Preset4K ResizePreset = "4k"
	// PresetThumbnail - превью 300x300.
	PresetThumbnail ResizePreset = "thumbnail"
	// PresetSocial - квадрат для соцсетей 1200x1200.
	PresetSocial ResizePreset = "social"
)

// PresetSize содержит размеры пресета.
type PresetSize struct {
	// Width - ширина.
	Width int
	// Height - высота.
	Height int
}

// ResizePresets содержит все пресеты размеров, кроме custom.
var ResizePresets = map[ResizePreset]PresetSize{
	PresetHD:        {Width: 1920, Height: 1080},
	Preset4K:        {Width: 3840, Height: 2160},
	PresetThumbnail: {Width: 300, Height: 300},
	PresetSocial:    {Width: 1200, Height: 1200},
}

// ApplyResizePreset применяет пресет размера к настройкам и включает resize.
// Возвращает true, если пресет известен. Пресет custom ничего не меняет.
func (s *Settings) ApplyResizePreset(preset string) bool {
	if ResizePreset(preset) == PresetCustom {
		return true
	}

	p, ok := ResizePresets[ResizePreset(preset)]
	if !ok {
		return false
	}

	s.Width = p.Width
	s.Height = p.Height
	s.Resize = true

	return true
}

// ValidResizePresets возвращает список доступных пресетов размера.
func ValidResizePresets() []string {
	return []string{
		string(PresetCustom),
		string(PresetHD),
		string(Preset4K),
		string(PresetThumbnail),
		string(PresetSocial),
	}
}
