package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	ico "github.com/sergeymakinen/go-ico"
	xdraw "golang.org/x/image/draw"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// IconSizes - лестница размеров, которые кладутся в ICO контейнер.
var IconSizes = []int{16, 32, 48, 64, 128, 256}

// IconLadder ресемплирует изображение во все размеры IconSizes.
// Размер, который не удалось построить, пропускается и попадает в список ошибок.
func IconLadder(src image.Image) ([]image.Image, []error) {
	images := make([]image.Image, 0, len(IconSizes))
	var errs []error

	for _, size := range IconSizes {
		icon, err := resampleSquare(src, size)
		if err != nil {
			errs = append(errs, fmt.Errorf("размер %dx%d: %w", size, size, err))
			continue
		}
		images = append(images, icon)
	}

	return images, errs
}

// resampleSquare вписывает изображение в квадрат size x size по центру,
// свободное место остаётся прозрачным.
func resampleSquare(src image.Image, size int) (*image.NRGBA, error) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, errors.New("пустое изображение")
	}

	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	newW := max(1, int(math.Round(float64(srcW)*scale)))
	newH := max(1, int(math.Round(float64(srcH)*scale)))

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	offX := (size - newW) / 2
	offY := (size - newH) / 2
	dr := image.Rect(offX, offY, offX+newW, offY+newH)
	xdraw.CatmullRom.Scale(dst, dr, src, srcBounds, xdraw.Over, nil)

	return dst, nil
}

// icoEncoder собирает многоразмерный ICO контейнер.
// Метаданные в ICO не переносятся.
type icoEncoder struct{}

func (icoEncoder) Format() config.OutputFormat { return config.FormatICO }

func (icoEncoder) Available() bool { return true }

func (icoEncoder) Encode(_ context.Context, img image.Image, dstPath string, _ Options) (*Result, error) {
	images, errs := IconLadder(img)
	if len(images) == 0 {
		return nil, fmt.Errorf("не удалось построить ни одного размера иконки: %w", errors.Join(errs...))
	}

	var buf bytes.Buffer
	if err := ico.EncodeAll(&buf, images); err != nil {
		return nil, fmt.Errorf("ошибка кодирования ICO: %w", err)
	}

	if err := writeAtomic(dstPath, buf.Bytes()); err != nil {
		return nil, err
	}

	return &Result{Path: dstPath, Size: int64(buf.Len()), Warnings: errs}, nil
}
