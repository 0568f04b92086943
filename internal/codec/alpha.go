package codec

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// HasAlpha сообщает, есть ли у изображения прозрачные пиксели.
// Типы из image умеют это сами через Opaque; для остальных смотрим на
// цветовую модель.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}

	switch img.ColorModel() {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model, color.NYCbCrAModel:
		return true
	}

	if p, ok := img.(*image.Paletted); ok {
		for _, c := range p.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}

	return false
}

// Flatten накладывает изображение на белый непрозрачный фон.
// Изображения без альфа-канала возвращаются как есть.
func Flatten(img image.Image) image.Image {
	if !HasAlpha(img) {
		return img
	}

	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
