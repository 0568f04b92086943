// Package logger настраивает slog: читаемый вывод в консоль и JSON-журнал в файл.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"golang.org/x/term"
)

// Уровни логирования
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ExitPanic - код выхода при необработанной панике.
const ExitPanic = 2

var (
	globalLogger *slog.Logger
	isTerminal   = term.IsTerminal
	osExit       = os.Exit
	exit         = osExit
)

func init() {
	Init(LevelInfo, nil)
}

// Init настраивает глобальный логгер.
// logFile - необязательный приёмник JSON-строк (обычно файл журнала).
func Init(level slog.Level, logFile io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	useColor := isTerminal(int(os.Stderr.Fd()))
	var handler slog.Handler = NewPrettyHandler(os.Stderr, opts, useColor)

	if logFile != nil {
		// В файл пишем всё начиная с Debug, консоль фильтруется по level
		fileOpts := &slog.HandlerOptions{Level: LevelDebug}
		handler = &multiHandler{
			handlers: []slog.Handler{handler, slog.NewJSONHandler(logFile, fileOpts)},
		}
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// Capture копит записи в памяти до настройки журнала: путь к файлу
// становится известен только после чтения конфигурации. Возвращённая
// функция отдаёт накопленное логгеру, настроенному через Init.
func Capture() (flush func()) {
	buf := &bufferHandler{store: &[]slog.Record{}}
	capturing := slog.New(buf)
	globalLogger = capturing

	return func() {
		if globalLogger == capturing {
			Init(LevelInfo, nil)
		}
		ctx := context.Background()
		h := globalLogger.Handler()
		for _, r := range *buf.store {
			if h.Enabled(ctx, r.Level) {
				_ = h.Handle(ctx, r)
			}
		}
		*buf.store = nil
	}
}

// bufferHandler запоминает записи вместе с атрибутами из WithAttrs.
type bufferHandler struct {
	store *[]slog.Record
	attrs []slog.Attr
}

func (h *bufferHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *bufferHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	*h.store = append(*h.store, r)
	return nil
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bufferHandler{store: h.store, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

// WithGroup не поддерживается: до настройки журнала группы не используются.
func (h *bufferHandler) WithGroup(string) slog.Handler { return h }

// DefaultLogPath возвращает путь к журналу по умолчанию: ~/.imagecompressor/app.log.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "imagecompressor", "app.log")
	}
	return filepath.Join(home, ".imagecompressor", "app.log")
}

// OpenLogFile открывает файл журнала на дозапись, создавая директорию.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию журнала: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть журнал %s: %w", path, err)
	}
	return f, nil
}

// L возвращает глобальный логгер.
func L() *slog.Logger { return globalLogger }

func Debug(msg string, args ...any) { globalLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { globalLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { globalLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { globalLogger.Error(msg, args...) }

// RecoverFatal перехватывает панику, пишет её со стеком в журнал и
// завершает процесс с кодом ExitPanic. Вызывается через defer в main.
func RecoverFatal() {
	r := recover()
	if r == nil {
		return
	}
	globalLogger.Error("необработанная паника",
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
	exit(ExitPanic)
}

// PrettyHandler печатает записи в одну строку: время, уровень, сообщение, атрибуты.
type PrettyHandler struct {
	w      io.Writer
	opts   *slog.HandlerOptions
	attrs  []slog.Attr
	groups []string
	color  bool
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *PrettyHandler {
	return &PrettyHandler{w: w, opts: opts, color: color}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	levelColor, reset := "", ""
	if h.color {
		switch r.Level {
		case slog.LevelDebug:
			levelColor = "\033[90m"
		case slog.LevelInfo:
			levelColor = "\033[32m"
		case slog.LevelWarn:
			levelColor = "\033[33m"
		case slog.LevelError:
			levelColor = "\033[31m"
		}
		reset = "\033[0m"
	}

	fmt.Fprintf(h.w, "%s %s%-5s%s %s",
		r.Time.Format("15:04:05"),
		levelColor, r.Level.String(), reset,
		r.Message,
	)

	printAttr := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(h.groups, a)
		}
		if a.Key == "" {
			return
		}
		key := a.Key
		for i := len(h.groups) - 1; i >= 0; i-- {
			key = h.groups[i] + "." + key
		}
		if h.color {
			fmt.Fprintf(h.w, " \033[90m%s=\033[0m%v", key, a.Value)
			return
		}
		fmt.Fprintf(h.w, " %s=%v", key, a.Value)
	}

	for _, a := range h.attrs {
		printAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		printAttr(a)
		return true
	})

	fmt.Fprintln(h.w)
	return nil
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = append(h2.attrs[:len(h2.attrs):len(h2.attrs)], attrs...)
	return &h2
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h2.groups[:len(h2.groups):len(h2.groups)], name)
	return &h2
}

// multiHandler рассылает запись во все обработчики.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
