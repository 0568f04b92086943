// Package cli содержит CLI интерфейс приложения.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/config"
	"github.com/artemshloyda/imagecompressor/internal/logger"
	"github.com/artemshloyda/imagecompressor/internal/profiles"
)

var (
	// Version будет установлена при сборке.
	Version = "dev"

	// BuildTime будет установлена при сборке.
	BuildTime = "unknown"
)

// options - значения флагов. В конфигурацию попадают только явно заданные.
type options struct {
	configPath   string
	out          string
	inExt        []string
	format       string
	quality      int
	resize       bool
	width        int
	height       int
	keepAspect   bool
	preserveMeta bool
	rename       bool
	pattern      string
	start        int
	profile      string
	resizePreset string
	profilesPath string
	dbPath       string
	noHistory    bool
	vipsPath     string
	vipsTimeout  time.Duration
	logFile      string
	verbose      bool
	noProgress   bool
}

// app - состояние одного запуска CLI.
type app struct {
	opts    options
	cfg     *config.Config
	logFile io.Closer
	stdout  io.Writer
}

// NewRootCmd создаёт корневую команду CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{cfg: config.DefaultConfig(), stdout: os.Stdout})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imagecompressor [файлы или директории...]",
		Short: "Пакетное сжатие и конвертация изображений",
		Long: `ImageCompressor - пакетное сжатие и конвертация изображений в JPEG, PNG, WebP и ICO.

Файлы обрабатываются по очереди; ошибка одного файла не останавливает пакет.
Настройки берутся из imagecompressor.yaml, затем из профиля (--profile),
затем из флагов командной строки.

Примеры:
  # Сжать все изображения из директории в WebP
  imagecompressor ./photos --out ./compressed

  # JPEG с качеством 80, вписать в 1920x1080
  imagecompressor ./photos -o ./web -f jpeg -q 80 --resize-preset hd

  # Профиль и переименование
  imagecompressor a.png b.png -o ./out --profile "Social Media" --rename --pattern "post_{number}"`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.teardown() },
		RunE:              a.runCompress,
	}

	// Флаги, общие для всех команд
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.opts.configPath, "config", "", "Путь к YAML файлу конфигурации")
	pf.StringVar(&a.opts.profilesPath, "profiles-file", profiles.DefaultPath, "JSON файл профилей сжатия")
	pf.StringVar(&a.opts.logFile, "log-file", "", "Файл журнала (по умолчанию ~/.imagecompressor/app.log)")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Подробный вывод")

	addSettingsFlags(rootCmd, &a.opts)

	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newPreviewCmd(a))
	rootCmd.AddCommand(newProfilesCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// addSettingsFlags добавляет флаги настроек сжатия (корень и watch).
func addSettingsFlags(cmd *cobra.Command, o *options) {
	flags := cmd.Flags()
	def := config.DefaultConfig()

	flags.StringVarP(&o.out, "out", "o", "", "Директория для результатов")
	flags.StringSliceVar(&o.inExt, "in-ext", def.InputExtensions, "Расширения входных файлов через запятую")

	flags.StringVarP(&o.format, "format", "f", string(def.Settings.Format),
		"Выходной формат: "+strings.Join(config.ValidFormats(), ", "))
	flags.IntVarP(&o.quality, "quality", "q", def.Settings.Quality, "Качество (1-100)")
	flags.BoolVar(&o.preserveMeta, "preserve-metadata", def.Settings.PreserveMetadata, "Переносить EXIF и ICC профиль")

	flags.BoolVar(&o.resize, "resize", false, "Изменять размер")
	flags.IntVar(&o.width, "width", 0, "Целевая ширина (0 = из исходника)")
	flags.IntVar(&o.height, "height", 0, "Целевая высота (0 = из исходника)")
	flags.BoolVar(&o.keepAspect, "keep-aspect", def.Settings.MaintainAspect, "Сохранять пропорции")
	flags.StringVar(&o.resizePreset, "resize-preset", "",
		"Пресет размера: "+strings.Join(config.ValidResizePresets(), ", "))

	flags.BoolVar(&o.rename, "rename", false, "Переименовывать по шаблону")
	flags.StringVar(&o.pattern, "pattern", def.RenamePattern,
		"Шаблон имени: {original_name}, {number}, {date}, {width}, {height}")
	flags.IntVar(&o.start, "start", def.StartNumber, "Начальный номер для {number}")

	flags.StringVarP(&o.profile, "profile", "p", "", "Профиль сжатия (см. profiles list)")
	flags.StringVar(&o.dbPath, "db", "", "Путь к SQLite журналу (по умолчанию <out>/.imagecompressor/history.sqlite)")
	flags.BoolVar(&o.noHistory, "no-history", false, "Не вести журнал пакетов")
	flags.StringVar(&o.vipsPath, "vips-path", "", "Путь к бинарнику vips (нужен для WebP)")
	flags.DurationVar(&o.vipsTimeout, "vips-timeout", def.VipsTimeout, "Предел времени vips на один файл")
	flags.BoolVar(&o.noProgress, "no-progress", false, "Отключить прогресс-бар")
}

// setup настраивает логирование и собирает конфигурацию.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Путь к журналу может прийти из конфигурации, поэтому записи,
	// сделанные при её сборке, копятся и попадают в журнал после открытия
	flush := logger.Capture()
	err := a.buildConfig(cmd)
	if err != nil {
		// Журнал открываем и с неудачной конфигурацией: путь берём из флагов
		a.cfg = config.DefaultConfig()
		a.cfg.LogFile = a.opts.logFile
		a.cfg.Verbose = a.opts.verbose
	}
	a.setupLogging()
	flush()
	if err != nil {
		return err
	}
	logger.Debug("запуск", "command", cmd.CommandPath(), "version", Version)
	return nil
}

func (a *app) setupLogging() {
	level := logger.LevelWarn
	if a.cfg.Verbose {
		level = logger.LevelDebug
	}

	path := a.cfg.LogFile
	if path == "" {
		path = logger.DefaultLogPath()
	}
	f, err := logger.OpenLogFile(path)
	if err != nil {
		// Без файла журнала работать можно
		logger.Init(level, nil)
		logger.Warn("журнал недоступен", "error", err)
		return
	}
	a.logFile = f
	logger.Init(level, f)
}

func (a *app) teardown() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// buildConfig собирает конфигурацию: значения по умолчанию, YAML файл,
// профиль, пресет размера и, наконец, явно заданные флаги.
func (a *app) buildConfig(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()

	fc, path, err := config.FindAndLoadConfig(a.opts.configPath)
	if err != nil {
		return err
	}
	if fc != nil {
		logger.Debug("загружен файл конфигурации", "path", path)
		if err := fc.ApplyToConfig(cfg); err != nil {
			return fmt.Errorf("ошибка в %s: %w", path, err)
		}
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("profiles-file") || cfg.ProfilesPath == "" {
		cfg.ProfilesPath = a.opts.profilesPath
	}
	if changed("log-file") {
		cfg.LogFile = a.opts.logFile
	}
	cfg.Verbose = a.opts.verbose

	// Профиль применяется до флагов: явные флаги его уточняют
	if changed("profile") {
		cfg.Profile = a.opts.profile
	}
	if cfg.Profile != "" && cfg.Profile != profiles.Custom {
		store := profiles.NewStore(cfg.ProfilesPath, logger.L())
		store.Load()
		if !store.Apply(cfg.Profile, &cfg.Settings) {
			return fmt.Errorf("%w: %q", profiles.ErrNotFound, cfg.Profile)
		}
	}

	if changed("resize-preset") {
		cfg.ResizePreset = a.opts.resizePreset
	}
	if cfg.ResizePreset != "" && !cfg.Settings.ApplyResizePreset(cfg.ResizePreset) {
		return fmt.Errorf("неизвестный пресет размера: %q (доступны: %s)",
			cfg.ResizePreset, strings.Join(config.ValidResizePresets(), ", "))
	}

	if changed("out") {
		cfg.OutputDir = a.opts.out
	}
	if changed("in-ext") {
		cfg.InputExtensions = a.opts.inExt
	}
	if changed("format") {
		format, err := config.ParseFormat(a.opts.format)
		if err != nil {
			return err
		}
		cfg.Settings.Format = format
	}
	if changed("quality") {
		cfg.Settings.SetQuality(a.opts.quality)
	}
	if changed("preserve-metadata") {
		cfg.Settings.PreserveMetadata = a.opts.preserveMeta
	}
	if changed("resize") {
		cfg.Settings.Resize = a.opts.resize
	}
	if changed("width") {
		cfg.Settings.Width = a.opts.width
		cfg.Settings.Resize = true
	}
	if changed("height") {
		cfg.Settings.Height = a.opts.height
		cfg.Settings.Resize = true
	}
	if changed("keep-aspect") {
		cfg.Settings.MaintainAspect = a.opts.keepAspect
	}
	if changed("rename") {
		cfg.RenameEnabled = a.opts.rename
	}
	if changed("pattern") {
		cfg.RenamePattern = a.opts.pattern
		cfg.RenameEnabled = true
	}
	if changed("start") {
		cfg.StartNumber = a.opts.start
	}
	if changed("db") {
		cfg.DBPath = a.opts.dbPath
	}
	if changed("no-history") {
		cfg.NoHistory = a.opts.noHistory
	}
	if changed("vips-path") {
		cfg.VipsPath = a.opts.vipsPath
	}
	if changed("vips-timeout") {
		cfg.VipsTimeout = a.opts.vipsTimeout
	}
	if changed("no-progress") {
		cfg.NoProgress = a.opts.noProgress
	}

	a.cfg = cfg
	return nil
}

// newVersionCmd создаёт команду version.
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "imagecompressor %s (built %s)\n", Version, BuildTime)
		},
	}
}

// Execute запускает CLI и возвращает код выхода.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		// Сообщение уже вывела cobra, в журнал пишем подробно
		logger.Debug("команда завершилась с ошибкой", "error", err)
		return 1
	}
	return 0
}

/*
Возможные расширения:
- Добавить команду clean для очистки журнала
- Добавить команду retry для повторной обработки failed из журнала
*/
