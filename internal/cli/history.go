package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/preview"
	"github.com/artemshloyda/imagecompressor/internal/storage"
)

// newHistoryCmd создаёт команду history: журнал пакетов из SQLite.
func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Показать журнал пакетов",
		Long: `Выводит последние пакеты и общую статистику из журнала.
Журнал ищется в <out>/.imagecompressor/history.sqlite или по пути --db.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if runID != "" {
				return a.printRunJobs(store, runID)
			}
			return a.printRuns(store, limit)
		},
	}

	cmd.Flags().StringVarP(&a.opts.out, "out", "o", "", "Директория результатов, в которой лежит журнал")
	cmd.Flags().StringVar(&a.opts.dbPath, "db", "", "Путь к SQLite журналу")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Сколько последних пакетов показать")
	cmd.Flags().StringVar(&runID, "run", "", "Показать файлы одного пакета")
	return cmd
}

func (a *app) openHistory() (*storage.Storage, error) {
	dbPath := a.cfg.DBPath
	if dbPath == "" {
		if a.cfg.OutputDir == "" {
			return nil, errors.New("укажите --out или --db")
		}
		dbPath = storage.DefaultPath(a.cfg.OutputDir)
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("журнал не найден: %s", dbPath)
	}
	return storage.New(dbPath)
}

func (a *app) printRuns(store *storage.Storage, limit int) error {
	stats, err := store.GetStats()
	if err != nil {
		return err
	}
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, titleStyle.Render("📊 Всего"))
	rows := []kv{
		{"Пакетов", fmt.Sprint(stats.Runs)},
		{"Записано", fmt.Sprint(stats.OK)},
		{"Ошибок", fmt.Sprint(stats.Failed)},
	}
	if stats.OK > 0 {
		rows = append(rows, kv{"Размер", preview.FormatBytes(stats.InputBytes) + " -> " + preview.FormatBytes(stats.OutputBytes)})
	}
	writeTable(a.stdout, rows)

	if len(runs) == 0 {
		return nil
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, titleStyle.Render("🕘 Последние пакеты"))
	for _, r := range runs {
		status := okStyle.Render(string(r.Status))
		switch {
		case r.Status == storage.RunInterrupted:
			status = warnStyle.Render(string(r.Status))
		case r.Failed > 0:
			status = errStyle.Render(string(r.Status))
		}
		fmt.Fprintf(a.stdout, "  %s  %s  %s  %d/%d  %s\n",
			keyStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04")),
			valueStyle.Render(r.ID),
			r.OutFormat, r.OK, r.Total, status)
	}
	return nil
}

func (a *app) printRunJobs(store *storage.Storage, runID string) error {
	jobs, err := store.RunJobs(runID)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("пакет %s не найден или пуст", runID)
	}

	fmt.Fprintln(a.stdout, titleStyle.Render("📄 Пакет "+runID))
	for _, j := range jobs {
		if j.Status == storage.StatusFailed {
			fmt.Fprintf(a.stdout, "  %s %s %s\n", errStyle.Render("❌"), j.SrcPath,
				keyStyle.Render("["+j.ErrorKind+"] "+j.Error))
			continue
		}
		fmt.Fprintf(a.stdout, "  %s %s -> %s %s\n", okStyle.Render("✅"), j.SrcPath, j.DstPath,
			keyStyle.Render(fmt.Sprintf("%dx%d, %s", j.Width, j.Height, preview.FormatBytes(j.DstSize))))
	}
	return nil
}
