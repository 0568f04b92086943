package codec

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// ErrWrite - не удалось записать выходной файл.
var ErrWrite = errors.New("ошибка записи")

// Options содержит параметры кодирования одного файла.
type Options struct {
	// Quality - качество (1-100).
	Quality int

	// Metadata - метаданные для переноса (nil = не переносить).
	Metadata *Metadata
}

// Result содержит результат кодирования.
type Result struct {
	// Path - путь к записанному файлу.
	Path string

	// Size - размер записанного файла в байтах.
	Size int64

	// Warnings - некритичные проблемы (метаданные, отдельные размеры ICO).
	Warnings []error
}

// Encoder кодирует изображение в конкретный формат и записывает файл.
type Encoder interface {
	// Format возвращает выходной формат.
	Format() config.OutputFormat

	// Available сообщает, готов ли кодировщик к работе.
	// Внешние кодировщики (vips) могут быть не установлены.
	Available() bool

	// Encode кодирует img и атомарно записывает его в dstPath.
	Encode(ctx context.Context, img image.Image, dstPath string, opts Options) (*Result, error)
}

// Codec хранит набор кодировщиков по форматам.
type Codec struct {
	encoders map[config.OutputFormat]Encoder
}

// New создаёт Codec со всеми встроенными кодировщиками.
// vipsPath может быть пустым - тогда WebP недоступен.
func New(vipsPath string) *Codec {
	c := &Codec{encoders: make(map[config.OutputFormat]Encoder)}
	c.Register(jpegEncoder{})
	c.Register(pngEncoder{})
	c.Register(icoEncoder{})
	c.Register(NewWebPEncoder(vipsPath))
	return c
}

// Register добавляет или заменяет кодировщик.
func (c *Codec) Register(e Encoder) {
	c.encoders[e.Format()] = e
}

// Encoder возвращает кодировщик для формата.
func (c *Codec) Encoder(format config.OutputFormat) (Encoder, error) {
	e, ok := c.encoders[format]
	if !ok {
		return nil, fmt.Errorf("нет кодировщика для формата %s", format)
	}
	if !e.Available() {
		return nil, fmt.Errorf("кодировщик %s недоступен", format)
	}
	return e, nil
}

// writeAtomic пишет данные во временный файл рядом с dstPath и переименовывает его.
func writeAtomic(dstPath string, data []byte) error {
	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("%w: не удалось создать директорию %s: %w", ErrWrite, dstDir, err)
	}

	tmpPath := tempPath(dstPath, "converting")
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrWrite, tmpPath, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: не удалось переименовать %s -> %s: %w", ErrWrite, tmpPath, dstPath, err)
	}

	return nil
}

// TempMarker входит в имя каждого промежуточного файла, чтобы их можно было
// отличить от пользовательских.
const TempMarker = ".imagecompressor-tmp"

// tempPath строит путь вида name.imagecompressor-tmp-<tag>.ext рядом с dstPath.
func tempPath(dstPath, tag string) string {
	ext := filepath.Ext(dstPath)
	return strings.TrimSuffix(dstPath, ext) + TempMarker + "-" + tag + ext
}
