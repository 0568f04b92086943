package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// WebPEncoder кодирует WebP через внешний vips.
// Пиксели передаются vips промежуточным PNG файлом, метаданные
// кладутся в этот PNG и переносятся vips в WebP.
type WebPEncoder struct {
	// vipsPath - путь к бинарнику vips.
	vipsPath string

	// timeout - таймаут на конвертацию одного файла.
	timeout time.Duration
}

// NewWebPEncoder создаёт новый WebPEncoder.
func NewWebPEncoder(vipsPath string) *WebPEncoder {
	return &WebPEncoder{
		vipsPath: vipsPath,
		timeout:  config.DefaultVipsTimeout,
	}
}

// SetTimeout устанавливает таймаут на конвертацию. Неположительное
// значение оставляет прежний.
func (e *WebPEncoder) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// Format возвращает выходной формат.
func (e *WebPEncoder) Format() config.OutputFormat { return config.FormatWebP }

// Available возвращает true, если путь к vips известен.
func (e *WebPEncoder) Available() bool { return e.vipsPath != "" }

// Encode кодирует изображение в WebP.
func (e *WebPEncoder) Encode(ctx context.Context, img image.Image, dstPath string, opts Options) (*Result, error) {
	res := &Result{Path: dstPath}

	// Промежуточный PNG: быстрое сжатие, он живёт только до конца вызова
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, fmt.Errorf("ошибка подготовки изображения для vips: %w", err)
	}
	data := buf.Bytes()

	keepMeta := false
	if !opts.Metadata.Empty() {
		withMeta, err := InjectPNG(data, opts.Metadata)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("метаданные не перенесены: %w", err))
		} else {
			data = withMeta
			keepMeta = true
		}
	}

	srcPath := tempPath(strings.TrimSuffix(dstPath, ".webp")+".png", "source")
	if err := writeAtomic(srcPath, data); err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(srcPath) }()

	// Атомарная запись: vips пишет во временный файл с правильным расширением,
	// затем переименовываем. vips определяет формат по расширению файла.
	tmpPath := tempPath(dstPath, "converting")
	outWithParams := tmpPath + vipsOutputSuffix(opts.Quality, !keepMeta)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.vipsPath, "copy", srcPath, outWithParams)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmpPath)

		errMsg := err.Error()
		if stderr.Len() > 0 {
			errMsg = fmt.Sprintf("%s: %s", err.Error(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("vips copy failed: %s", errMsg)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: не удалось переименовать %s -> %s: %w", ErrWrite, tmpPath, dstPath, err)
	}

	if info, err := os.Stat(dstPath); err == nil {
		res.Size = info.Size()
	}
	return res, nil
}

// vipsOutputSuffix возвращает суффикс для vips с параметрами.
// Например: "output.webp[Q=80,strip]"
func vipsOutputSuffix(quality int, strip bool) string {
	params := []string{fmt.Sprintf("Q=%d", config.ClampQuality(quality))}
	if strip {
		params = append(params, "strip")
	}
	return fmt.Sprintf("[%s]", strings.Join(params, ","))
}

/*
Возможные расширения:
- Добавить lossless режим для WebP (vips lossless=true)
- Передавать пиксели через stdin вместо временного файла
*/
