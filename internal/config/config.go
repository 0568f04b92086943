// Package config содержит конфигурацию приложения.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// OutputFormat определяет выходной формат изображения.
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpeg"
	FormatPNG  OutputFormat = "png"
	FormatWebP OutputFormat = "webp"
	FormatICO  OutputFormat = "ico"
)

// Предельные размеры результата. 65535 - предел JPEG по стороне, площадь
// ограничена так, чтобы буфер пикселей помещался в память.
const (
	MaxDimension = 65535
	MaxPixels    = 1 << 27
)

// ErrInvalidDimensions - отрицательные или слишком большие размеры.
var ErrInvalidDimensions = errors.New("некорректные размеры")

// CheckDimensions проверяет целевые размеры. 0 означает "из исходника".
func CheckDimensions(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: размеры не могут быть отрицательными: %dx%d", ErrInvalidDimensions, w, h)
	}
	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d, сторона не больше %d", ErrInvalidDimensions, w, h, MaxDimension)
	}
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("%w: %dx%d, не больше %d пикселей", ErrInvalidDimensions, w, h, MaxPixels)
	}
	return nil
}

// DefaultVipsTimeout - сколько vips может кодировать один файл.
const DefaultVipsTimeout = 5 * time.Minute

// Границы качества.
const (
	MinQuality = 1
	MaxQuality = 100
)

// ParseFormat разбирает имя формата без учёта регистра.
// "jpg" считается синонимом "jpeg".
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "ico":
		return FormatICO, nil
	}
	return "", fmt.Errorf("неизвестный формат: %q (доступны: jpeg, png, webp, ico)", s)
}

// ValidFormats возвращает список поддерживаемых выходных форматов.
func ValidFormats() []string {
	return []string{
		string(FormatJPEG),
		string(FormatPNG),
		string(FormatWebP),
		string(FormatICO),
	}
}

// Valid сообщает, поддерживается ли формат.
func (f OutputFormat) Valid() bool {
	_, err := ParseFormat(string(f))
	return err == nil
}

// Extension возвращает расширение выходного файла (lowercase, без точки).
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	case FormatICO:
		return "ico"
	}
	return strings.ToLower(string(f))
}

// SupportsAlpha сообщает, умеет ли формат хранить альфа-канал.
func (f OutputFormat) SupportsAlpha() bool {
	return f != FormatJPEG
}

// ClampQuality приводит качество к диапазону [1, 100].
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// Settings - живые настройки сжатия, которые меняются пользователем.
type Settings struct {
	// Format - выходной формат.
	Format OutputFormat

	// Quality - качество (1-100).
	Quality int

	// Resize - включено ли изменение размера.
	Resize bool

	// Width - целевая ширина (0 = из исходника / по пропорциям).
	Width int

	// Height - целевая высота (0 = из исходника / по пропорциям).
	Height int

	// MaintainAspect - сохранять пропорции при resize.
	MaintainAspect bool

	// PreserveMetadata - переносить EXIF и ICC профиль из исходника.
	PreserveMetadata bool
}

// DefaultSettings возвращает настройки сжатия по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		Format:           FormatWebP,
		Quality:          85,
		MaintainAspect:   true,
		PreserveMetadata: true,
	}
}

// SetQuality устанавливает качество с ограничением диапазона.
func (s *Settings) SetQuality(q int) {
	s.Quality = ClampQuality(q)
}

// Validate проверяет настройки сжатия. Качество при этом ограничивается
// диапазоном, а не считается ошибкой.
func (s *Settings) Validate() error {
	format, err := ParseFormat(string(s.Format))
	if err != nil {
		return err
	}
	s.Format = format
	s.Quality = ClampQuality(s.Quality)

	return CheckDimensions(s.Width, s.Height)
}

// Params возвращает параметры выхода в виде JSON.
func (s *Settings) Params() string {
	params := map[string]interface{}{
		"format":            s.Format,
		"quality":           s.Quality,
		"resize":            s.Resize,
		"width":             s.Width,
		"height":            s.Height,
		"maintain_aspect":   s.MaintainAspect,
		"preserve_metadata": s.PreserveMetadata,
	}
	b, _ := json.Marshal(params)
	return string(b)
}

// Config содержит все настройки запуска.
type Config struct {
	// OutputDir - директория для сохранения результатов.
	OutputDir string

	// InputExtensions - список расширений входных файлов (без точки, lowercase).
	InputExtensions []string

	// Settings - живые настройки сжатия.
	Settings Settings

	// RenameEnabled - включено ли пакетное переименование.
	RenameEnabled bool

	// RenamePattern - шаблон имени файла.
	RenamePattern string

	// StartNumber - начальный номер для {number}.
	StartNumber int

	// Profile - имя профиля, применяемого перед запуском.
	Profile string

	// ResizePreset - пресет размера (hd, 4k, thumbnail, social).
	ResizePreset string

	// ProfilesPath - путь к JSON файлу профилей.
	ProfilesPath string

	// DBPath - путь к SQLite журналу запусков.
	DBPath string

	// NoHistory - не вести журнал запусков.
	NoHistory bool

	// VipsPath - путь к vips бинарнику (нужен для WebP).
	VipsPath string

	// VipsTimeout - предел времени vips на один файл.
	VipsTimeout time.Duration

	// LogFile - путь к файлу лога.
	LogFile string

	// Verbose - подробный вывод.
	Verbose bool

	// NoProgress - отключить прогресс-бар.
	NoProgress bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		InputExtensions: []string{"png", "jpg", "jpeg", "webp", "ico"},
		Settings:        DefaultSettings(),
		RenamePattern:   "{original_name}",
		StartNumber:     1,
		ProfilesPath:    "compression_profiles.json",
		VipsTimeout:     DefaultVipsTimeout,
	}
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("выходная директория не указана (--out)")
	}
	if len(c.InputExtensions) == 0 {
		return fmt.Errorf("не указаны расширения входных файлов (--in-ext)")
	}
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if c.VipsTimeout < 0 {
		return fmt.Errorf("таймаут vips не может быть отрицательным: %s", c.VipsTimeout)
	}
	if c.VipsTimeout == 0 {
		c.VipsTimeout = DefaultVipsTimeout
	}
	if c.RenameEnabled && c.RenamePattern == "" {
		return fmt.Errorf("шаблон переименования пуст (--pattern)")
	}

	// Устанавливаем путь к БД по умолчанию
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.OutputDir, ".imagecompressor", "history.sqlite")
	}

	return nil
}

/*
Возможные расширения:
- Добавить AVIF и TIFF как выходные форматы
- Добавить настройку цвета фона при удалении альфа-канала
*/
