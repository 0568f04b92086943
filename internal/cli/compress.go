package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/codec"
	"github.com/artemshloyda/imagecompressor/internal/config"
	"github.com/artemshloyda/imagecompressor/internal/logger"
	"github.com/artemshloyda/imagecompressor/internal/naming"
	"github.com/artemshloyda/imagecompressor/internal/pipeline"
	"github.com/artemshloyda/imagecompressor/internal/preview"
	"github.com/artemshloyda/imagecompressor/internal/progress"
	"github.com/artemshloyda/imagecompressor/internal/selection"
	"github.com/artemshloyda/imagecompressor/internal/storage"
	"github.com/artemshloyda/imagecompressor/internal/vipsfinder"
)

// ErrBatchFailures - пакет завершён, но часть файлов не обработана.
var ErrBatchFailures = errors.New("часть файлов не обработана")

// runCompress выполняет основную логику: один пакет из аргументов.
func (a *app) runCompress(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	list := selection.NewList(a.cfg.InputExtensions)
	added, rejected := list.Add(args...)
	for _, p := range rejected {
		fmt.Fprintf(a.stdout, "⏭️  Пропущен: %s (не изображение или недоступен)\n", p)
	}
	if added == 0 {
		return errors.New("не найдено ни одного изображения")
	}

	enc, err := a.newCodec()
	if err != nil {
		return err
	}

	res, err := a.runBatch(cmd.Context(), enc, list)
	if err != nil {
		return err
	}
	if len(res.Failures) > 0 {
		return fmt.Errorf("%w: %d из %d", ErrBatchFailures, len(res.Failures), res.Total)
	}
	return nil
}

// newCodec создаёт кодеки. vips ищется только когда нужен WebP.
func (a *app) newCodec() (*codec.Codec, error) {
	if a.cfg.Settings.Format != config.FormatWebP {
		return codec.New(""), nil
	}

	info, err := vipsfinder.NewFinder(a.cfg.VipsPath).FindWebP()
	switch {
	case errors.Is(err, vipsfinder.ErrNotFound):
		return nil, fmt.Errorf("WebP требует vips: %w\n"+
			"  установите libvips (apt install libvips-tools / brew install vips),\n"+
			"  укажите путь через --vips-path или %s,\n"+
			"  либо выберите другой формат (-f jpeg, -f png)", err, vipsfinder.EnvVar)
	case errors.Is(err, vipsfinder.ErrNoWebP):
		return nil, fmt.Errorf("%w\n  установите сборку libvips с libwebp или выберите другой формат", err)
	case err != nil:
		return nil, err
	}

	logger.Debug("найден vips", "path", info.Path, "version", info.Version)
	if a.cfg.Verbose {
		fmt.Fprintf(a.stdout, "📦 Найден vips %s: %s\n", info.Version, info.Path)
	}

	c := codec.New(info.Path)
	webp := codec.NewWebPEncoder(info.Path)
	webp.SetTimeout(a.cfg.VipsTimeout)
	c.Register(webp)
	return c, nil
}

// runBatch обрабатывает список файлов: журнал, прогресс, итоги.
func (a *app) runBatch(ctx context.Context, enc *codec.Codec, list *selection.List) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg
	startTime := time.Now()

	session := &pipeline.Session{
		Pending:  list,
		Settings: &cfg.Settings,
		Rename: naming.Spec{
			Enabled: cfg.RenameEnabled,
			Pattern: cfg.RenamePattern,
			Start:   cfg.StartNumber,
		},
		OutputDir: cfg.OutputDir,
	}

	total := list.Len()
	bar := progress.New(progress.Options{
		Total:    total,
		Disabled: cfg.NoProgress,
		Verbose:  cfg.Verbose,
		Writer:   a.stdout,
	})
	reporters := pipeline.Reporters{bar}

	var recorder *storage.Recorder
	if !cfg.NoHistory {
		rec, closeJournal, err := a.openJournal(total)
		if err != nil {
			// Журнал вспомогательный: без него пакет всё равно выполняется
			logger.Warn("журнал пакетов недоступен", "error", err)
		} else {
			defer closeJournal()
			recorder = rec
			reporters = append(reporters, rec)
		}
	}

	fmt.Fprintf(a.stdout, "🚀 Запуск сжатия:\n")
	fmt.Fprintf(a.stdout, "   Файлов: %d\n", total)
	fmt.Fprintf(a.stdout, "   Выход: %s\n", cfg.OutputDir)
	fmt.Fprintf(a.stdout, "   Формат: %s (качество: %d)\n", cfg.Settings.Format, cfg.Settings.Quality)
	if cfg.Settings.Resize {
		fmt.Fprintf(a.stdout, "   Размер: %dx%d (пропорции: %v)\n",
			cfg.Settings.Width, cfg.Settings.Height, cfg.Settings.MaintainAspect)
	}
	if cfg.RenameEnabled {
		fmt.Fprintf(a.stdout, "   Шаблон: %s (с %d)\n", cfg.RenamePattern, cfg.StartNumber)
	}
	fmt.Fprintln(a.stdout)

	p := pipeline.New(enc, naming.New(), reporters, logger.L())
	res, err := p.Run(ctx, session)
	bar.Finish()

	// Пакет закрывается в журнале и тогда, когда Run не смог начать работу
	if recorder != nil {
		if ferr := recorder.Finish(); ferr != nil {
			logger.Warn("не удалось закрыть пакет в журнале", "error", ferr)
		}
	}
	if err != nil {
		return nil, err
	}

	a.printSummary(res, time.Since(startTime))
	if recorder != nil {
		fmt.Fprintf(a.stdout, "   Журнал: пакет %s (imagecompressor history --run %s)\n", recorder.RunID(), recorder.RunID())
	}
	return res, nil
}

// openJournal открывает журнал и регистрирует новый пакет.
func (a *app) openJournal(total int) (*storage.Recorder, func(), error) {
	dbPath := a.cfg.DBPath
	if dbPath == "" {
		dbPath = storage.DefaultPath(a.cfg.OutputDir)
	}

	store, err := storage.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось инициализировать БД: %w", err)
	}

	if cleaned, err := store.CleanupInterrupted(); err != nil {
		logger.Warn("не удалось очистить прерванные пакеты", "error", err)
	} else if cleaned > 0 {
		fmt.Fprintf(a.stdout, "🧹 Отмечено %d прерванных пакетов\n", cleaned)
	}

	outDir, _ := filepath.Abs(a.cfg.OutputDir)
	runID, err := store.BeginRun(outDir, string(a.cfg.Settings.Format), a.cfg.Settings.Params(), total)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	logger.Debug("пакет открыт в журнале", "run", runID, "db", dbPath)

	return storage.NewRecorder(store, runID, logger.L()), func() { _ = store.Close() }, nil
}

func (a *app) printSummary(res *pipeline.Result, duration time.Duration) {
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "📊 Результаты:\n")
	fmt.Fprintf(a.stdout, "   Записано: %d из %d\n", len(res.Outputs), res.Total)
	fmt.Fprintf(a.stdout, "   Ошибок: %d\n", len(res.Failures))
	if len(res.Warnings) > 0 {
		fmt.Fprintf(a.stdout, "   Предупреждений: %d\n", len(res.Warnings))
	}
	if len(res.Outputs) > 0 {
		fmt.Fprintf(a.stdout, "   Размер: %s -> %s (%.1f%% экономии)\n",
			preview.FormatBytes(res.InputBytes()), preview.FormatBytes(res.OutputBytes()), res.SavedPercent())
	}
	fmt.Fprintf(a.stdout, "   Время: %s\n", duration.Round(time.Millisecond))

	for _, f := range res.Failures {
		fmt.Fprintf(a.stdout, "   ❌ %s [%s]: %v\n", filepath.Base(f.Path), f.Kind, f.Err)
	}
}
