package pipeline

import (
	"fmt"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// TargetSize вычисляет размеры после масштабирования.
//
// Нулевая ширина или высота заменяется размером исходника. При keepAspect
// результат вписывается в получившуюся рамку с сохранением пропорций
// исходника: уменьшается та сторона, которая иначе исказила бы картинку.
// Без keepAspect размеры берутся как есть. Результат больше
// config.MaxDimension по стороне или config.MaxPixels по площади - ошибка.
func TargetSize(srcW, srcH, reqW, reqH int, keepAspect bool) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("%w: исходник %dx%d", ErrInvalidDimensions, srcW, srcH)
	}
	if err := config.CheckDimensions(reqW, reqH); err != nil {
		return 0, 0, err
	}

	w, h := reqW, reqH
	if w == 0 {
		w = srcW
	}
	if h == 0 {
		h = srcH
	}

	if keepAspect {
		aspect := float64(srcW) / float64(srcH)
		if float64(w)/float64(h) > aspect {
			w = int(float64(h) * aspect)
		} else {
			h = int(float64(w) / aspect)
		}
	}

	w, h = max(w, 1), max(h, 1)
	if err := config.CheckDimensions(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}
