// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig представляет структуру конфигурационного файла YAML.
// Все поля опциональны - если не указаны, используются значения по умолчанию.
type FileConfig struct {
	// Input - настройки входных данных.
	Input *InputConfig `yaml:"input,omitempty"`

	// Output - настройки выходных данных.
	Output *OutputConfig `yaml:"output,omitempty"`

	// Resize - настройки изменения размера.
	Resize *ResizeConfig `yaml:"resize,omitempty"`

	// Rename - настройки пакетного переименования.
	Rename *RenameConfig `yaml:"rename,omitempty"`

	// Paths - настройки путей.
	Paths *PathsConfig `yaml:"paths,omitempty"`
}

// InputConfig содержит настройки входных данных.
type InputConfig struct {
	// Extensions - список расширений входных файлов.
	Extensions []string `yaml:"extensions,omitempty"`
}

// OutputConfig содержит настройки выходных данных.
type OutputConfig struct {
	// Dir - директория для сохранения результатов.
	Dir string `yaml:"dir,omitempty"`

	// Format - выходной формат (jpeg, png, webp, ico).
	Format string `yaml:"format,omitempty"`

	// Quality - качество (1-100).
	Quality int `yaml:"quality,omitempty"`

	// PreserveMetadata - переносить EXIF и ICC.
	PreserveMetadata *bool `yaml:"preserve_metadata,omitempty"`

	// Profile - профиль по умолчанию.
	Profile string `yaml:"profile,omitempty"`
}

// ResizeConfig содержит настройки изменения размера.
type ResizeConfig struct {
	// Enabled - включить resize.
	Enabled bool `yaml:"enabled,omitempty"`

	// Width - целевая ширина.
	Width int `yaml:"width,omitempty"`

	// Height - целевая высота.
	Height int `yaml:"height,omitempty"`

	// MaintainAspect - сохранять пропорции.
	MaintainAspect *bool `yaml:"maintain_aspect,omitempty"`

	// Preset - пресет размера (hd, 4k, thumbnail, social).
	Preset string `yaml:"preset,omitempty"`
}

// RenameConfig содержит настройки пакетного переименования.
type RenameConfig struct {
	// Enabled - включить переименование.
	Enabled bool `yaml:"enabled,omitempty"`

	// Pattern - шаблон имени.
	Pattern string `yaml:"pattern,omitempty"`

	// Start - начальный номер.
	Start int `yaml:"start,omitempty"`
}

// PathsConfig содержит настройки путей.
type PathsConfig struct {
	// Profiles - путь к JSON файлу профилей.
	Profiles string `yaml:"profiles,omitempty"`

	// DB - путь к SQLite журналу.
	DB string `yaml:"db,omitempty"`

	// VipsPath - путь к бинарнику vips.
	VipsPath string `yaml:"vips_path,omitempty"`

	// VipsTimeout - предел времени vips на файл ("90s", "5m").
	VipsTimeout string `yaml:"vips_timeout,omitempty"`

	// LogFile - путь к файлу лога.
	LogFile string `yaml:"log_file,omitempty"`
}

// DefaultConfigPaths возвращает список путей для поиска конфигурационного файла.
// Поиск выполняется в следующем порядке:
// 1. ./imagecompressor.yaml (текущая директория)
// 2. ./imagecompressor.yml
// 3. ~/.config/imagecompressor/config.yaml
// 4. ~/.config/imagecompressor/config.yml
func DefaultConfigPaths() []string {
	paths := []string{
		"imagecompressor.yaml",
		"imagecompressor.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "imagecompressor", "config.yaml"),
			filepath.Join(home, ".config", "imagecompressor", "config.yml"),
		)
	}

	return paths
}

// LoadFromFile загружает конфигурацию из указанного файла.
// Возвращает nil, nil если файл не существует.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML в %s: %w", path, err)
	}

	return &fc, nil
}

// FindAndLoadConfig ищет и загружает конфигурационный файл из стандартных путей.
// Если configPath указан явно, использует только его.
// Возвращает nil, "", nil если файл не найден.
func FindAndLoadConfig(configPath string) (*FileConfig, string, error) {
	if configPath != "" {
		fc, err := LoadFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		if fc == nil {
			return nil, "", fmt.Errorf("файл конфигурации не найден: %s", configPath)
		}
		return fc, configPath, nil
	}

	for _, path := range DefaultConfigPaths() {
		fc, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		if fc != nil {
			return fc, path, nil
		}
	}

	return nil, "", nil
}

// ApplyToConfig применяет настройки из файла к основной конфигурации.
// CLI флаги имеют приоритет над файлом конфигурации, поэтому
// эта функция должна вызываться до применения CLI флагов.
func (fc *FileConfig) ApplyToConfig(cfg *Config) error {
	if fc == nil {
		return nil
	}

	// Input
	if fc.Input != nil && len(fc.Input.Extensions) > 0 {
		cfg.InputExtensions = fc.Input.Extensions
	}

	// Output
	if fc.Output != nil {
		if fc.Output.Dir != "" {
			cfg.OutputDir = fc.Output.Dir
		}
		if fc.Output.Format != "" {
			format, err := ParseFormat(fc.Output.Format)
			if err != nil {
				return err
			}
			cfg.Settings.Format = format
		}
		if fc.Output.Quality > 0 {
			cfg.Settings.SetQuality(fc.Output.Quality)
		}
		if fc.Output.PreserveMetadata != nil {
			cfg.Settings.PreserveMetadata = *fc.Output.PreserveMetadata
		}
		if fc.Output.Profile != "" {
			cfg.Profile = fc.Output.Profile
		}
	}

	// Resize
	if fc.Resize != nil {
		if fc.Resize.Enabled {
			cfg.Settings.Resize = true
		}
		if fc.Resize.Width > 0 {
			cfg.Settings.Width = fc.Resize.Width
		}
		if fc.Resize.Height > 0 {
			cfg.Settings.Height = fc.Resize.Height
		}
		if fc.Resize.MaintainAspect != nil {
			cfg.Settings.MaintainAspect = *fc.Resize.MaintainAspect
		}
		if fc.Resize.Preset != "" {
			cfg.ResizePreset = fc.Resize.Preset
		}
	}

	// Rename
	if fc.Rename != nil {
		if fc.Rename.Enabled {
			cfg.RenameEnabled = true
		}
		if fc.Rename.Pattern != "" {
			cfg.RenamePattern = fc.Rename.Pattern
		}
		if fc.Rename.Start != 0 {
			cfg.StartNumber = fc.Rename.Start
		}
	}

	// Paths
	if fc.Paths != nil {
		if fc.Paths.Profiles != "" {
			cfg.ProfilesPath = fc.Paths.Profiles
		}
		if fc.Paths.DB != "" {
			cfg.DBPath = fc.Paths.DB
		}
		if fc.Paths.VipsPath != "" {
			cfg.VipsPath = fc.Paths.VipsPath
		}
		if fc.Paths.VipsTimeout != "" {
			d, err := time.ParseDuration(fc.Paths.VipsTimeout)
			if err != nil {
				return fmt.Errorf("paths.vips_timeout: %w", err)
			}
			cfg.VipsTimeout = d
		}
		if fc.Paths.LogFile != "" {
			cfg.LogFile = fc.Paths.LogFile
		}
	}

	return nil
}

// GenerateExampleConfig генерирует пример конфигурационного файла.
func GenerateExampleConfig() string {
	return `# ImageCompressor Configuration File
# Все параметры опциональны - если не указаны, используются значения по умолчанию.
# CLI флаги имеют приоритет над этим файлом.

input:
  # Расширения входных файлов (без точки)
  extensions:
    - png
    - jpg
    - jpeg
    - webp
    - ico

output:
  # Директория для результатов
  dir: "./compressed"
  # Выходной формат: jpeg, png, webp, ico
  format: webp
  # Качество (1-100)
  quality: 85
  # Переносить EXIF и ICC профиль
  preserve_metadata: true
  # Профиль, применяемый перед запуском (пусто = Custom)
  profile: ""

resize:
  enabled: false
  width: 0
  height: 0
  maintain_aspect: true
  # Пресет размера: custom, hd, 4k, thumbnail, social
  preset: ""

rename:
  enabled: false
  # Переменные: {original_name}, {number}, {date}, {width}, {height}
  pattern: "{original_name}"
  start: 1

paths:
  # JSON файл с профилями сжатия
  profiles: "compression_profiles.json"
  # Путь к SQLite журналу (по умолчанию <out>/.imagecompressor/history.sqlite)
  db: ""
  # Путь к бинарнику vips (нужен для WebP, по умолчанию автопоиск)
  vips_path: ""

  # Предел времени vips на один файл
  vips_timeout: 5m
  # Файл лога (по умолчанию ~/.imagecompressor/app.log)
  log_file: ""
`
}

/*
Возможные расширения:
- Добавить поддержку TOML формата
- Добавить поддержку переменных окружения в конфиге
*/
