package preview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".jpg":
		err = jpeg.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatal(err)
	}
}

func TestPreview_OpenDownsamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writeImage(t, path, 1000, 600)

	p := New()
	info, err := p.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if info.Width != 1000 || info.Height != 600 {
		t.Errorf("Info размеры = %dx%d, want 1000x600", info.Width, info.Height)
	}
	if info.Format != "png" || info.MIME != "image/png" {
		t.Errorf("Info формат = %q / %q", info.Format, info.MIME)
	}
	if info.Name != "big.png" || info.Size <= 0 {
		t.Errorf("Info = %+v", info)
	}

	b := p.Image().Bounds()
	if b.Dx() != 500 || b.Dy() != DisplayHeight {
		t.Errorf("превью = %dx%d, want 500x%d", b.Dx(), b.Dy(), DisplayHeight)
	}

	var buf bytes.Buffer
	if err := p.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("WritePNG выдал не PNG: %v", err)
	}
	if cfg.Height != DisplayHeight {
		t.Errorf("высота PNG = %d", cfg.Height)
	}
}

func TestPreview_SmallImageKeptAsIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.jpg")
	writeImage(t, path, 40, 30)

	p := New()
	info, err := p.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if info.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want image/jpeg", info.MIME)
	}
	if b := p.Image().Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("превью = %v, want 40x30", b)
	}
}

func TestPreview_OwnsOneImage(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")
	broken := filepath.Join(dir, "broken.png")
	writeImage(t, first, 10, 10)
	writeImage(t, second, 20, 10)
	if err := os.WriteFile(broken, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}

	p := New()
	if _, err := p.Open(first); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Open(second); err != nil {
		t.Fatal(err)
	}
	if p.Path() != second || p.Image().Bounds().Dx() != 20 {
		t.Errorf("после второго Open: path=%q bounds=%v", p.Path(), p.Image().Bounds())
	}

	// Неудачный Open не сбрасывает текущее изображение
	if _, err := p.Open(broken); err == nil {
		t.Error("ожидалась ошибка для повреждённого файла")
	}
	if p.Path() != second {
		t.Errorf("Path() = %q после неудачного Open", p.Path())
	}

	p.Close()
	if p.Image() != nil {
		t.Error("Image() после Close не nil")
	}
	if _, err := p.Info(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Info() error = %v, want ErrNoImage", err)
	}
	if err := p.WritePNG(&bytes.Buffer{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("WritePNG() error = %v, want ErrNoImage", err)
	}
}

func TestMetadata_WithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	writeImage(t, path, 12, 8)

	fields, err := Metadata(path)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}

	got := make(map[string]string)
	for _, f := range fields {
		got[f.Key] = f.Value
	}
	want := map[string]string{"File": "plain.jpg", "Format": "JPEG", "Mode": "YCbCr", "Size": "12x8"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
