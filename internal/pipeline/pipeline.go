// Package pipeline выполняет пакетное сжатие: для каждого файла по порядку
// декодирование, масштабирование, подготовка альфа-канала, имя, кодирование.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/artemshloyda/imagecompressor/internal/codec"
	"github.com/artemshloyda/imagecompressor/internal/config"
	"github.com/artemshloyda/imagecompressor/internal/naming"
	"github.com/artemshloyda/imagecompressor/internal/selection"
)

// Session - живое состояние: очередь файлов и текущие настройки.
// Передаётся в Run явно.
type Session struct {
	// Pending - файлы, ожидающие обработки.
	Pending *selection.List

	// Settings - текущие настройки сжатия.
	Settings *config.Settings

	// Rename - настройки переименования.
	Rename naming.Spec

	// OutputDir - директория для результатов.
	OutputDir string
}

// NewSession создаёт сессию с настройками по умолчанию.
func NewSession(outputDir string) *Session {
	settings := config.DefaultSettings()
	return &Session{
		Pending:   selection.NewList(nil),
		Settings:  &settings,
		Rename:    naming.DefaultSpec(),
		OutputDir: outputDir,
	}
}

// Output - успешно записанный файл.
type Output struct {
	Index      int
	Source     string
	Path       string
	InputSize  int64
	OutputSize int64
	Width      int
	Height     int
	Duration   time.Duration
}

// Warning - некритичная проблема при обработке файла.
type Warning struct {
	Path string
	Err  error
}

// Result - итог пакетной обработки.
type Result struct {
	Total    int
	Outputs  []Output
	Failures []*FileError
	Warnings []Warning
}

// InputBytes возвращает суммарный размер исходников успешно обработанных файлов.
func (r *Result) InputBytes() int64 {
	var n int64
	for _, o := range r.Outputs {
		n += o.InputSize
	}
	return n
}

// OutputBytes возвращает суммарный размер результатов.
func (r *Result) OutputBytes() int64 {
	var n int64
	for _, o := range r.Outputs {
		n += o.OutputSize
	}
	return n
}

// SavedPercent возвращает процент экономии.
func (r *Result) SavedPercent() float64 {
	in := r.InputBytes()
	if in == 0 {
		return 0
	}
	return float64(in-r.OutputBytes()) / float64(in) * 100
}

// Pipeline обрабатывает сессию.
type Pipeline struct {
	codec    *codec.Codec
	namer    *naming.Engine
	reporter Reporter
	log      *slog.Logger
}

// New создаёт Pipeline. reporter и log могут быть nil.
func New(c *codec.Codec, namer *naming.Engine, reporter Reporter, log *slog.Logger) *Pipeline {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if log == nil {
		log = slog.Default()
	}
	if namer == nil {
		namer = naming.New()
	}
	return &Pipeline{codec: c, namer: namer, reporter: reporter, log: log}
}

// Run обрабатывает все файлы сессии последовательно, в порядке списка.
// Ошибка одного файла не прерывает пакет; ошибка возвращается только если
// пакет нельзя начать (нет директории, недоступен кодировщик).
//
// После пакета без ошибок очередь очищается, иначе в ней остаются только
// файлы, которые не удалось обработать.
func (p *Pipeline) Run(ctx context.Context, s *Session) (*Result, error) {
	format, err := config.ParseFormat(string(s.Settings.Format))
	if err != nil {
		return nil, err
	}
	s.Settings.Format = format
	s.Settings.SetQuality(s.Settings.Quality)

	enc, err := p.codec.Encoder(s.Settings.Format)
	if err != nil {
		return nil, err
	}
	if s.OutputDir == "" {
		return nil, errors.New("не указана выходная директория")
	}
	if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать выходную директорию: %w", err)
	}

	files := s.Pending.Paths()
	res := &Result{Total: len(files)}
	used := make(map[string]string, len(files))

	p.log.Info("пакет запущен",
		"files", len(files),
		"format", s.Settings.Format,
		"quality", s.Settings.Quality,
		"out", s.OutputDir,
	)

	var failed []string
	for i, src := range files {
		out, warnings, ferr := p.processFile(ctx, s, enc, i, src, used)

		for _, w := range warnings {
			res.Warnings = append(res.Warnings, w)
			p.log.Warn("предупреждение", "path", w.Path, "error", w.Err)
			p.reporter.Warning(w)
		}

		if ferr != nil {
			res.Failures = append(res.Failures, ferr)
			failed = append(failed, src)
			p.log.Error("файл пропущен", "path", src, "kind", ferr.Kind, "error", ferr.Err)
			p.reporter.FileFailed(ferr)
		} else {
			res.Outputs = append(res.Outputs, *out)
			p.log.Debug("файл записан", "src", src, "dst", out.Path, "bytes", out.OutputSize)
			p.reporter.FileDone(*out)
		}

		p.reporter.Progress(i+1, len(files))
	}

	if len(failed) == 0 {
		s.Pending.Clear()
	} else {
		s.Pending.Retain(failed)
	}

	p.log.Info("пакет завершён",
		"ok", len(res.Outputs),
		"failed", len(res.Failures),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// processFile обрабатывает один файл. Декодированное изображение живёт
// только внутри вызова.
func (p *Pipeline) processFile(ctx context.Context, s *Session, enc codec.Encoder, index int, src string, used map[string]string) (*Output, []Warning, *FileError) {
	start := time.Now()
	settings := s.Settings
	fail := func(kind Kind, err error) (*Output, []Warning, *FileError) {
		return nil, nil, &FileError{Path: src, Index: index, Kind: kind, Err: err}
	}

	decoded, err := codec.DecodeFile(src)
	if err != nil {
		return fail(KindDecode, err)
	}

	var img image.Image = decoded.Image
	if settings.Resize {
		w, h, err := TargetSize(decoded.Width(), decoded.Height(), settings.Width, settings.Height, settings.MaintainAspect)
		if err != nil {
			return fail(KindDimensions, err)
		}
		img = codec.Resize(img, w, h)
	}

	if !settings.Format.SupportsAlpha() {
		img = codec.Flatten(img)
	}

	name, err := p.namer.Name(s.Rename, src, index)
	if err != nil {
		return fail(KindNaming, err)
	}
	dst := filepath.Join(s.OutputDir, name+"."+settings.Format.Extension())
	if prev, ok := used[dst]; ok {
		return fail(KindDuplicate, fmt.Errorf("%w: %s (уже записан из %s)", ErrDuplicateOutput, filepath.Base(dst), prev))
	}

	var warnings []Warning
	opts := codec.Options{Quality: settings.Quality}
	if settings.PreserveMetadata && settings.Format != config.FormatICO {
		meta, err := codec.ExtractMetadata(decoded.Data, decoded.Format)
		switch {
		case errors.Is(err, codec.ErrUnsupportedMetadata):
			// во входном формате нечего переносить
		case err != nil:
			warnings = append(warnings, Warning{Path: src, Err: fmt.Errorf("метаданные не прочитаны: %w", err)})
		}
		if !meta.Empty() {
			opts.Metadata = meta
		}
	}

	result, err := enc.Encode(ctx, img, dst, opts)
	if err != nil {
		kind := KindEncode
		if errors.Is(err, codec.ErrWrite) {
			kind = KindWrite
		}
		out, _, ferr := fail(kind, err)
		return out, warnings, ferr
	}
	used[dst] = src

	for _, w := range result.Warnings {
		warnings = append(warnings, Warning{Path: src, Err: w})
	}

	b := img.Bounds()
	return &Output{
		Index:      index,
		Source:     src,
		Path:       dst,
		InputSize:  int64(len(decoded.Data)),
		OutputSize: result.Size,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Duration:   time.Since(start),
	}, warnings, nil
}

/*
Возможные расширения:
- Отмена пакета между файлами по ctx
- Пропуск файлов, которые уже сжаты с теми же настройками (по журналу)
*/
