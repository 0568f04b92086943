package preview

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Field - одна строка сведений о файле.
type Field struct {
	Key   string
	Value string
}

// Metadata возвращает сведения о файле: формат, цветовую модель, размеры
// и все найденные EXIF теги. Отсутствие EXIF не ошибка.
func Metadata(path string) ([]Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось декодировать изображение: %w", err)
	}
	b := img.Bounds()

	fields := []Field{
		{"File", filepath.Base(path)},
		{"Format", strings.ToUpper(format)},
		{"Mode", colorMode(img)},
		{"Size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy())},
		{"Bytes", FormatBytes(int64(len(data)))},
	}

	tags, err := exifTags(data)
	if err != nil {
		return fields, err
	}
	return append(fields, tags...), nil
}

// exifTags ищет EXIF блок в любом месте файла.
func exifTags(data []byte) ([]Field, error) {
	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil {
		if isNoExif(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения EXIF: %w", err)
	}

	fields := make([]Field, 0, len(tags))
	for _, tag := range tags {
		if tag.TagName == "" {
			continue
		}
		fields = append(fields, Field{Key: tag.TagName, Value: tag.Formatted})
	}
	return fields, nil
}

func isNoExif(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

// colorMode называет цветовую модель изображения.
func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.YCbCr:
		return "YCbCr"
	case *image.Gray, *image.Gray16:
		return "L"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return "RGBA"
	}
	return fmt.Sprintf("%T", img)
}
