package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// jpegEncoder кодирует JPEG через imaging.
type jpegEncoder struct{}

func (jpegEncoder) Format() config.OutputFormat { return config.FormatJPEG }

func (jpegEncoder) Available() bool { return true }

func (jpegEncoder) Encode(_ context.Context, img image.Image, dstPath string, opts Options) (*Result, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(config.ClampQuality(opts.Quality))); err != nil {
		return nil, fmt.Errorf("ошибка кодирования JPEG: %w", err)
	}

	res := &Result{Path: dstPath}
	data := buf.Bytes()

	if !opts.Metadata.Empty() {
		withMeta, err := InjectJPEG(data, opts.Metadata)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("метаданные не перенесены: %w", err))
		} else {
			data = withMeta
		}
	}

	if err := writeAtomic(dstPath, data); err != nil {
		return nil, err
	}
	res.Size = int64(len(data))
	return res, nil
}

// pngEncoder кодирует PNG через imaging. PNG без потерь, качество не используется.
type pngEncoder struct{}

func (pngEncoder) Format() config.OutputFormat { return config.FormatPNG }

func (pngEncoder) Available() bool { return true }

func (pngEncoder) Encode(_ context.Context, img image.Image, dstPath string, opts Options) (*Result, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("ошибка кодирования PNG: %w", err)
	}

	res := &Result{Path: dstPath}
	data := buf.Bytes()

	if !opts.Metadata.Empty() {
		withMeta, err := InjectPNG(data, opts.Metadata)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("метаданные не перенесены: %w", err))
		} else {
			data = withMeta
		}
	}

	if err := writeAtomic(dstPath, data); err != nil {
		return nil, err
	}
	res.Size = int64(len(data))
	return res, nil
}
