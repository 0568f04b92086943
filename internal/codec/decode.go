// Package codec содержит декодирование, ресемплинг и кодирование изображений.
package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	ico "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/webp"
)

func init() {
	// ICO на входе: go-ico умеет читать контейнер, регистрируем его в image.
	image.RegisterFormat("ico", "\x00\x00\x01\x00", ico.Decode, ico.DecodeConfig)
}

// Image - декодированное изображение вместе с исходными байтами.
// Байты нужны для переноса метаданных.
type Image struct {
	// Image - пиксели.
	Image image.Image

	// Format - имя формата от декодера (jpeg, png, webp, ico).
	Format string

	// Data - исходное содержимое файла.
	Data []byte
}

// Width возвращает ширину изображения.
func (i *Image) Width() int {
	return i.Image.Bounds().Dx()
}

// Height возвращает высоту изображения.
func (i *Image) Height() int {
	return i.Image.Bounds().Dy()
}

// DecodeFile читает и декодирует файл целиком.
func DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось декодировать изображение: %w", err)
	}

	return &Image{Image: img, Format: format, Data: data}, nil
}

// Dimensions читает размеры изображения только по заголовку.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Resize масштабирует изображение фильтром Lanczos.
func Resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}
