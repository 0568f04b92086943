package pipeline

import (
	"errors"
	"fmt"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// Kind - категория ошибки обработки одного файла.
type Kind string

const (
	KindDecode     Kind = "decode"
	KindDimensions Kind = "dimensions"
	KindNaming     Kind = "naming"
	KindDuplicate  Kind = "duplicate"
	KindEncode     Kind = "encode"
	KindWrite      Kind = "write"
)

// ErrInvalidDimensions - некорректные целевые размеры.
var ErrInvalidDimensions = config.ErrInvalidDimensions

// ErrDuplicateOutput - два файла пакета получили одно и то же выходное имя.
var ErrDuplicateOutput = errors.New("выходной файл уже создан в этом пакете")

// FileError - ошибка обработки одного файла. Пакет после неё продолжается.
type FileError struct {
	// Path - исходный файл.
	Path string

	// Index - позиция файла в пакете.
	Index int

	Kind Kind
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
