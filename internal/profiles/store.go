// Package profiles хранит именованные наборы настроек сжатия в JSON файле.
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// Custom - зарезервированное имя: "использовать текущие настройки".
// Никогда не сохраняется в файл.
const Custom = "Custom"

// DefaultPath - путь к файлу профилей по умолчанию (относительно рабочей директории).
const DefaultPath = "compression_profiles.json"

var (
	// ErrReservedName - попытка сохранить профиль под зарезервированным именем.
	ErrReservedName = errors.New("имя профиля зарезервировано")

	// ErrNotFound - профиль не найден.
	ErrNotFound = errors.New("профиль не найден")
)

// Profile - сохранённый снимок части настроек сжатия.
type Profile struct {
	Format  config.OutputFormat `json:"format"`
	Quality int                 `json:"quality"`
	Resize  bool                `json:"resize"`
	Width   int                 `json:"width"`
	Height  int                 `json:"height"`
}

// FromSettings делает снимок текущих настроек.
func FromSettings(s *config.Settings) Profile {
	return Profile{
		Format:  s.Format,
		Quality: s.Quality,
		Resize:  s.Resize,
		Width:   s.Width,
		Height:  s.Height,
	}
}

// Builtin возвращает встроенные профили.
func Builtin() map[string]Profile {
	return map[string]Profile{
		"Web Optimized": {Format: config.FormatWebP, Quality: 75, Resize: true, Width: 1920, Height: 1080},
		"Social Media":  {Format: config.FormatJPEG, Quality: 85, Resize: true, Width: 1200, Height: 1200},
		"High Quality":  {Format: config.FormatPNG, Quality: 95},
	}
}

// Store - набор профилей и файл, в котором они хранятся.
type Store struct {
	path     string
	profiles map[string]Profile
	log      *slog.Logger
}

// NewStore создаёт хранилище со встроенными профилями. Файл не читается до Load.
func NewStore(path string, log *slog.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, profiles: Builtin(), log: log}
}

// Path возвращает путь к файлу профилей.
func (s *Store) Path() string { return s.path }

// Load читает файл и накладывает его записи поверх встроенных профилей.
// Отсутствующий или повреждённый файл не ошибка: пишем в журнал и
// остаёмся на текущих профилях.
func (s *Store) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("файл профилей не найден, используются встроенные", "path", s.path)
		} else {
			s.log.Warn("не удалось прочитать файл профилей", "path", s.path, "error", err)
		}
		return
	}

	var stored map[string]Profile
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("повреждённый файл профилей, используются встроенные", "path", s.path, "error", err)
		return
	}

	for name, p := range stored {
		if name == Custom || name == "" {
			s.log.Warn("пропущен профиль с зарезервированным именем", "name", name)
			continue
		}
		s.profiles[name] = p
	}
	s.log.Debug("профили загружены", "path", s.path, "count", len(stored))
}

// Save сохраняет текущие настройки под именем name и перезаписывает файл целиком.
func (s *Store) Save(name string, settings *config.Settings) error {
	if name == "" || name == Custom {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}

	s.profiles[name] = FromSettings(settings)
	if err := s.write(); err != nil {
		return err
	}
	s.log.Info("профиль сохранён", "name", name, "path", s.path)
	return nil
}

// Delete удаляет профиль и перезаписывает файл.
func (s *Store) Delete(name string) error {
	if _, ok := s.profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.profiles, name)
	return s.write()
}

// write сериализует все профили атомарно через временный файл.
func (s *Store) write() error {
	data, err := json.MarshalIndent(s.profiles, "", "    ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации профилей: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать профили: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("не удалось сохранить профили: %w", err)
	}
	return nil
}

// Apply копирует поля профиля в настройки. Для Custom и неизвестных имён
// ничего не делает и возвращает false. Ширина и высота копируются только
// если у профиля включено масштабирование.
func (s *Store) Apply(name string, settings *config.Settings) bool {
	if name == Custom {
		return false
	}
	p, ok := s.profiles[name]
	if !ok {
		return false
	}

	if f, err := config.ParseFormat(string(p.Format)); err == nil {
		settings.Format = f
	}
	settings.SetQuality(p.Quality)
	settings.Resize = p.Resize
	if p.Resize {
		settings.Width = p.Width
		settings.Height = p.Height
	}
	return true
}

// Get возвращает профиль по имени.
func (s *Store) Get(name string) (Profile, bool) {
	p, ok := s.profiles[name]
	return p, ok
}

// Names возвращает имена профилей: Custom первым, остальные по алфавиту.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles)+1)
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{Custom}, names...)
}
