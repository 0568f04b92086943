// Package naming строит имена выходных файлов по шаблону пакетного переименования.
//
// Поддерживаемые переменные: {original_name}, {number}, {date}, {width}, {height}.
// Двойные скобки {{ и }} дают литеральные { и }.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/artemshloyda/imagecompressor/internal/codec"
)

var (
	// ErrUnknownPlaceholder - шаблон ссылается на неизвестную переменную.
	ErrUnknownPlaceholder = errors.New("неизвестная переменная в шаблоне")

	// ErrMalformedPattern - непарные фигурные скобки.
	ErrMalformedPattern = errors.New("некорректный шаблон")

	// ErrEmptyName - после подстановки имя оказалось пустым.
	ErrEmptyName = errors.New("пустое имя файла")
)

// unsafeChars - символы, недопустимые в именах файлов на распространённых ФС.
const unsafeChars = `<>:"/\|?*`

// Spec - настройки пакетного переименования.
type Spec struct {
	// Enabled - включено ли переименование.
	Enabled bool

	// Pattern - шаблон имени.
	Pattern string

	// Start - номер первого файла в пакете.
	Start int
}

// DefaultSpec возвращает настройки переименования по умолчанию.
func DefaultSpec() Spec {
	return Spec{Pattern: "{original_name}", Start: 1}
}

// Vars - значения переменных для одного файла.
type Vars struct {
	OriginalName string
	Number       int
	Date         time.Time
	Width        int
	Height       int
}

// Engine подставляет переменные в шаблон.
type Engine struct {
	now  func() time.Time
	size func(path string) (int, int, error)
}

// New создаёт Engine с системными часами и чтением размеров из заголовка файла.
func New() *Engine {
	return &Engine{
		now:  time.Now,
		size: codec.Dimensions,
	}
}

// WithClock подменяет источник текущей даты.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Name возвращает имя (без расширения) для файла srcPath с индексом index в пакете.
// Если переименование выключено, возвращается исходное имя без расширения.
func (e *Engine) Name(spec Spec, srcPath string, index int) (string, error) {
	stem := Stem(srcPath)
	if !spec.Enabled {
		return stem, nil
	}

	vars := Vars{
		OriginalName: stem,
		Number:       spec.Start + index,
		Date:         e.now(),
	}

	// Размеры нужны только если шаблон на них ссылается
	if strings.Contains(spec.Pattern, "{width}") || strings.Contains(spec.Pattern, "{height}") {
		w, h, err := e.size(srcPath)
		if err == nil {
			vars.Width, vars.Height = w, h
		}
	}

	name, err := Expand(spec.Pattern, vars)
	if err != nil {
		return "", err
	}

	name = Sanitize(name)
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Expand подставляет переменные в шаблон без санитизации.
func Expand(pattern string, v Vars) (string, error) {
	var b strings.Builder

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		switch c {
		case '{':
			if i+1 < len(pattern) && pattern[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(pattern[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: незакрытая '{' в позиции %d", ErrMalformedPattern, i)
			}
			key := pattern[i+1 : i+1+end]
			value, err := lookup(key, v)
			if err != nil {
				return "", err
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(pattern) && pattern[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: одиночная '}' в позиции %d", ErrMalformedPattern, i)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

func lookup(key string, v Vars) (string, error) {
	switch key {
	case "original_name":
		return v.OriginalName, nil
	case "number":
		return FormatNumber(v.Number), nil
	case "date":
		return v.Date.Format("20060102"), nil
	case "width":
		return strconv.Itoa(v.Width), nil
	case "height":
		return strconv.Itoa(v.Height), nil
	}
	return "", fmt.Errorf("%w: {%s}", ErrUnknownPlaceholder, key)
}

// FormatNumber форматирует порядковый номер минимум в 3 цифры.
func FormatNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

// Sanitize заменяет символы, недопустимые в именах файлов, на '_'.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return '_'
		}
		return r
	}, name)
}

// Stem возвращает имя файла без директории и расширения.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
