package selection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher следит за "папкой для сброса" и отдаёт новые изображения пачками.
type Watcher struct {
	dir    string
	accept func(path string) bool
	log    *slog.Logger

	// watcher - fsnotify watcher.
	watcher *fsnotify.Watcher

	// debounceTime - время тишины после последней записи в файл.
	// Нужно для того, чтобы файл успел полностью записаться.
	debounceTime time.Duration

	// ignore - директории, события из которых пропускаются (например, выходная).
	ignore []string
}

// NewWatcher создаёт Watcher для директории dir.
// accept решает, подходит ли файл (обычно List.Accepts).
func NewWatcher(dir string, accept func(string) bool, log *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("не удалось создать watcher: %w", err)
	}
	if accept == nil {
		accept = IsImagePath
	}
	if log == nil {
		log = slog.Default()
	}

	return &Watcher{
		dir:          dir,
		accept:       accept,
		log:          log,
		watcher:      w,
		debounceTime: 500 * time.Millisecond,
	}, nil
}

// SetDebounceTime устанавливает время debounce.
func (w *Watcher) SetDebounceTime(d time.Duration) {
	w.debounceTime = d
}

// Ignore исключает директорию (и всё внутри неё) из слежения.
func (w *Watcher) Ignore(dir string) {
	w.ignore = append(w.ignore, absPath(dir))
}

func (w *Watcher) ignored(path string) bool {
	return underAny(path, w.ignore)
}

// Watch запускает слежение. Канал закрывается при отмене ctx.
// Каждая пачка отсортирована по пути.
func (w *Watcher) Watch(ctx context.Context) (<-chan []string, error) {
	if err := w.addRecursive(w.dir); err != nil {
		_ = w.watcher.Close()
		return nil, err
	}

	batches := make(chan []string, 16)
	go w.loop(ctx, batches)
	return batches, nil
}

// addRecursive добавляет директорию и все нескрытые поддиректории.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		abs, _ := filepath.Abs(path)
		if path != dir && (strings.HasPrefix(d.Name(), ".") || w.ignored(abs)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("не удалось добавить директорию %s: %w", path, err)
		}
		return nil
	})
}

// loop - единственная горутина: читает события и по таймеру отдаёт
// файлы, в которые давно не писали. Канал закрывается только здесь.
func (w *Watcher) loop(ctx context.Context, batches chan<- []string) {
	defer close(batches)
	defer func() { _ = w.watcher.Close() }()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(w.debounceTime/5, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event, pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("ошибка watcher", "error", err)

		case <-ticker.C:
			batch := w.ready(pending)
			if len(batch) == 0 {
				continue
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, pending map[string]time.Time) {
	// Обрабатываем только создание и запись файлов
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		path = event.Name
	}
	if w.ignored(path) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		// Новая директория - следим и за ней
		if event.Has(fsnotify.Create) && !strings.HasPrefix(info.Name(), ".") {
			if err := w.addRecursive(path); err != nil {
				w.log.Warn("не удалось следить за директорией", "path", path, "error", err)
			}
		}
		return
	}

	if !w.accept(path) {
		return
	}
	pending[path] = time.Now()
}

// ready забирает из pending файлы, которые не менялись debounceTime.
func (w *Watcher) ready(pending map[string]time.Time) []string {
	now := time.Now()
	var batch []string
	for path, touched := range pending {
		if now.Sub(touched) < w.debounceTime {
			continue
		}
		delete(pending, path)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		batch = append(batch, path)
	}
	sort.Strings(batch)
	return batch
}

// Close останавливает fsnotify. Нужен, только если Watch не вызывался.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

/*
Возможные расширения:
- Обрабатывать переименование файлов в папку (fsnotify.Rename)
- Ограничивать размер пачки
*/
