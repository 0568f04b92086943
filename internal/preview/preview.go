// Package preview открывает одно изображение для просмотра: уменьшенная
// копия для показа и краткие сведения о файле.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"

	"github.com/artemshloyda/imagecompressor/internal/codec"
)

// DisplayHeight - высота уменьшенной копии для показа.
const DisplayHeight = 300

// ErrNoImage - в Preview сейчас нет открытого изображения.
var ErrNoImage = errors.New("изображение не открыто")

// Info - сведения об открытом файле.
type Info struct {
	// Name - имя файла без директории.
	Name string

	// Size - размер файла в байтах.
	Size int64

	// Width, Height - размеры исходного изображения.
	Width  int
	Height int

	// Format - имя формата от декодера.
	Format string

	// MIME - тип по сигнатуре содержимого.
	MIME string
}

// Preview владеет ровно одним уменьшенным изображением.
// Открытие нового файла освобождает предыдущее.
type Preview struct {
	path  string
	info  Info
	thumb image.Image
}

// New создаёт пустой Preview.
func New() *Preview {
	return &Preview{}
}

// Open декодирует файл и строит уменьшенную копию высотой DisplayHeight.
// При ошибке ранее открытое изображение остаётся на месте.
func (p *Preview) Open(path string) (*Info, error) {
	img, err := codec.DecodeFile(path)
	if err != nil {
		return nil, err
	}

	info := Info{
		Name:   filepath.Base(path),
		Size:   int64(len(img.Data)),
		Width:  img.Width(),
		Height: img.Height(),
		Format: img.Format,
		MIME:   sniffMIME(img.Data),
	}

	thumb := img.Image
	if info.Height > DisplayHeight {
		thumb = resize.Resize(0, DisplayHeight, img.Image, resize.Lanczos3)
	}

	p.Close()
	p.path = path
	p.info = info
	p.thumb = thumb
	return &p.info, nil
}

// sniffMIME определяет тип по первым байтам файла.
func sniffMIME(data []byte) string {
	kind, err := filetype.Match(data[:min(len(data), 261)])
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

// Close освобождает изображение.
func (p *Preview) Close() {
	p.path = ""
	p.info = Info{}
	p.thumb = nil
}

// Path возвращает путь к открытому файлу или "".
func (p *Preview) Path() string { return p.path }

// Image возвращает уменьшенную копию или nil.
func (p *Preview) Image() image.Image { return p.thumb }

// Info возвращает сведения об открытом файле.
func (p *Preview) Info() (Info, error) {
	if p.thumb == nil {
		return Info{}, ErrNoImage
	}
	return p.info, nil
}

// WritePNG записывает уменьшенную копию в PNG.
func (p *Preview) WritePNG(w io.Writer) error {
	if p.thumb == nil {
		return ErrNoImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.thumb); err != nil {
		return fmt.Errorf("ошибка кодирования превью: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// FormatBytes форматирует байты в человекочитаемый формат.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
