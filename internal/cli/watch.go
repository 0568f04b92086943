package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/codec"
	"github.com/artemshloyda/imagecompressor/internal/logger"
	"github.com/artemshloyda/imagecompressor/internal/selection"
)

// newWatchCmd создаёт команду watch: папка для сброса файлов.
func newWatchCmd(a *app) *cobra.Command {
	var (
		debounce time.Duration
		initial  bool
	)

	cmd := &cobra.Command{
		Use:   "watch <директория>",
		Short: "Сжимать изображения по мере появления в директории",
		Long: `Следит за директорией и обрабатывает каждую пачку новых файлов
текущими настройками. Выходная директория из слежения исключается.
Остановка: Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), args[0], debounce, initial)
		},
	}

	addSettingsFlags(cmd, &a.opts)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Пауза после последней записи в файл")
	cmd.Flags().BoolVar(&initial, "initial", false, "Сначала обработать уже лежащие в директории файлы")
	return cmd
}

func (a *app) runWatch(ctx context.Context, dir string, debounce time.Duration, initial bool) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("не директория: %s", dir)
	}

	enc, err := a.newCodec()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	accept := selection.NewList(a.cfg.InputExtensions).Accepts
	w, err := selection.NewWatcher(dir, accept, logger.L())
	if err != nil {
		return err
	}
	w.SetDebounceTime(debounce)
	w.Ignore(a.cfg.OutputDir)

	batches, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	if initial {
		if list := a.existingFiles(dir); list.Len() > 0 {
			a.watchBatch(ctx, enc, list)
		}
	}

	fmt.Fprintf(a.stdout, "👀 Слежение за %s (выход: %s). Ctrl+C для остановки\n", dir, a.cfg.OutputDir)

	for batch := range batches {
		list := selection.NewList(a.cfg.InputExtensions)
		if added, _ := list.Add(batch...); added == 0 {
			continue
		}
		a.watchBatch(ctx, enc, list)
	}

	fmt.Fprintln(a.stdout, "\n👋 Слежение остановлено")
	return nil
}

// existingFiles собирает уже лежащие в dir изображения, кроме выходной директории.
func (a *app) existingFiles(dir string) *selection.List {
	list := selection.NewList(a.cfg.InputExtensions)
	list.Ignore(a.cfg.OutputDir)
	list.Add(dir)
	return list
}

// watchBatch обрабатывает одну пачку. Ошибки пачки не останавливают слежение.
func (a *app) watchBatch(ctx context.Context, enc *codec.Codec, list *selection.List) {
	res, err := a.runBatch(ctx, enc, list)
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		return
	case err != nil:
		logger.Error("пачка не обработана", "error", err)
	case len(res.Failures) > 0:
		logger.Warn("пачка обработана с ошибками", "failed", len(res.Failures), "total", res.Total)
	}
}
