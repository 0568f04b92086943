// Package selection собирает список файлов для пакетной обработки.
package selection

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/artemshloyda/imagecompressor/internal/codec"
)

// DefaultExtensions - расширения, которые принимаются на вход.
var DefaultExtensions = []string{"png", "jpg", "jpeg", "webp", "ico"}

// IsImagePath проверяет расширение файла по DefaultExtensions.
func IsImagePath(path string) bool {
	return hasExtension(DefaultExtensions, path)
}

func hasExtension(exts []string, path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// isTempName отсекает служебные файлы: macOS метаданные (._*) и
// промежуточные файлы кодировщиков.
func isTempName(name string) bool {
	return strings.HasPrefix(name, "._") || strings.Contains(name, codec.TempMarker)
}

// absPath возвращает абсолютный путь, а при ошибке - исходный.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// underAny сообщает, лежит ли path в одной из директорий dirs (или совпадает с ней).
func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// List - упорядоченный список файлов, ожидающих обработки.
// Порядок добавления сохраняется, повторы игнорируются.
type List struct {
	exts   []string
	paths  []string
	seen   map[string]struct{}
	ignore []string
}

// NewList создаёт пустой список с фильтром по расширениям.
// Пустой exts означает DefaultExtensions.
func NewList(exts []string) *List {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &List{exts: exts, seen: make(map[string]struct{})}
}

// Add добавляет файлы и директории (рекурсивно).
// Возвращает количество добавленных файлов и пути, которые были отклонены.
func (l *List) Add(paths ...string) (added int, rejected []string) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			rejected = append(rejected, p)
			continue
		}

		if !info.IsDir() {
			if !l.Accepts(p) {
				rejected = append(rejected, p)
				continue
			}
			if l.push(p) {
				added++
			}
			continue
		}

		n, err := l.addDir(p)
		added += n
		if err != nil {
			rejected = append(rejected, p)
		}
	}
	return added, rejected
}

// Ignore исключает поддиректорию из обхода (например, выходную).
func (l *List) Ignore(dir string) {
	l.ignore = append(l.ignore, absPath(dir))
}

// Accepts сообщает, подходит ли файл под фильтр списка.
func (l *List) Accepts(path string) bool {
	return !isTempName(filepath.Base(path)) && hasExtension(l.exts, path)
}

// addDir обходит директорию, пропуская скрытые поддиректории.
func (l *List) addDir(root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Нечитаемые поддиректории пропускаем, корень - ошибка
			if path == root {
				return err
			}
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || underAny(absPath(path), l.ignore)) {
				return filepath.SkipDir
			}
			return nil
		}

		if l.Accepts(path) && l.push(path) {
			added++
		}
		return nil
	})
	if err != nil {
		return added, fmt.Errorf("не удалось обойти %s: %w", root, err)
	}
	return added, nil
}

// push добавляет абсолютный путь, если его ещё нет.
func (l *List) push(path string) bool {
	abs := absPath(path)
	if _, ok := l.seen[abs]; ok {
		return false
	}
	l.seen[abs] = struct{}{}
	l.paths = append(l.paths, abs)
	return true
}

// Remove удаляет файл по индексу.
func (l *List) Remove(i int) error {
	if i < 0 || i >= len(l.paths) {
		return fmt.Errorf("индекс %d вне диапазона [0, %d)", i, len(l.paths))
	}
	delete(l.seen, l.paths[i])
	l.paths = slices.Delete(l.paths, i, i+1)
	return nil
}

// Retain оставляет только перечисленные файлы, сохраняя порядок.
func (l *List) Retain(keep []string) {
	want := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		want[p] = struct{}{}
	}
	l.paths = slices.DeleteFunc(l.paths, func(p string) bool {
		if _, ok := want[p]; ok {
			return false
		}
		delete(l.seen, p)
		return true
	})
}

// Clear очищает список.
func (l *List) Clear() {
	l.paths = nil
	l.seen = make(map[string]struct{})
}

// Paths возвращает копию списка.
func (l *List) Paths() []string {
	return slices.Clone(l.paths)
}

// Len возвращает количество файлов.
func (l *List) Len() int {
	return len(l.paths)
}

/*
Возможные расширения:
- Проверять содержимое файла (magic bytes), а не только расширение
- Добавить exclude-паттерны
*/
