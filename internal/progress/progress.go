// Package progress показывает ход пакетной обработки в терминале.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/artemshloyda/imagecompressor/internal/pipeline"
	"github.com/artemshloyda/imagecompressor/internal/preview"
)

// Bar - прогресс-бар с ETA. Реализует pipeline.Reporter.
type Bar struct {
	// bar - внутренний progressbar (nil, если отключён).
	bar *progressbar.ProgressBar

	// mu защищает доступ к bar и счётчикам.
	mu sync.Mutex

	// disabled - флаг отключения прогресс-бара (только текстовый вывод).
	disabled bool

	// verbose - печатать строку на каждый успешный файл.
	verbose bool

	done     int
	failed   int
	warnings int

	startTime time.Time

	// writer - куда выводить (по умолчанию os.Stderr).
	writer io.Writer
}

// Options содержит настройки для прогресс-бара.
type Options struct {
	// Total - общее количество файлов.
	Total int

	// Description - описание задачи.
	Description string

	// Disabled - отключить прогресс-бар.
	Disabled bool

	// Verbose - сообщать о каждом записанном файле.
	Verbose bool

	// Writer - куда выводить (по умолчанию os.Stderr).
	Writer io.Writer
}

// New создаёт новый прогресс-бар.
func New(opts Options) *Bar {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	b := &Bar{
		disabled:  opts.Disabled,
		verbose:   opts.Verbose,
		startTime: time.Now(),
		writer:    writer,
	}

	if !opts.Disabled && opts.Total > 0 {
		description := opts.Description
		if description == "" {
			description = "Сжатие"
		}

		b.bar = progressbar.NewOptions(
			opts.Total,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("файл"),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]█[reset]",
				SaucerHead:    "[green]▓[reset]",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(writer)
			}),
			progressbar.OptionSetPredictTime(true),
		)
	}

	return b
}

// Progress выставляет бар в положение current из total.
func (b *Bar) Progress(current, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		if b.disabled {
			return
		}
		fmt.Fprintf(b.writer, "%d/%d\n", current, total)
		return
	}
	if b.bar.GetMax() != total {
		b.bar.ChangeMax(total)
	}
	_ = b.bar.Set(current)
}

// FileDone учитывает записанный файл.
func (b *Bar) FileDone(out pipeline.Output) {
	b.mu.Lock()
	b.done++
	b.mu.Unlock()

	if b.verbose {
		b.WriteMessage("✅ %s -> %s (%s, %.2fs)\n",
			filepath.Base(out.Source), filepath.Base(out.Path),
			preview.FormatBytes(out.OutputSize), out.Duration.Seconds())
	}
}

// FileFailed печатает ошибку файла.
func (b *Bar) FileFailed(err *pipeline.FileError) {
	b.mu.Lock()
	b.failed++
	b.mu.Unlock()

	b.WriteMessage("❌ %s: %v\n", filepath.Base(err.Path), err.Err)
}

// Warning печатает предупреждение.
func (b *Bar) Warning(w pipeline.Warning) {
	b.mu.Lock()
	b.warnings++
	b.mu.Unlock()

	b.WriteMessage("⚠️  %s: %v\n", filepath.Base(w.Path), w.Err)
}

// Finish завершает прогресс-бар.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Stats возвращает текущую статистику.
func (b *Bar) Stats() (done, failed, warnings int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done, b.failed, b.warnings
}

// Duration возвращает время с начала обработки.
func (b *Bar) Duration() time.Duration {
	return time.Since(b.startTime)
}

// WriteMessage выводит сообщение, временно скрывая прогресс-бар.
func (b *Bar) WriteMessage(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}

	fmt.Fprintf(b.writer, format, args...)

	if b.bar != nil {
		_ = b.bar.RenderBlank()
	}
}

/*
Возможные расширения:
- Показывать экономию байт прямо в описании бара
- Добавить поддержку pause/resume
*/
