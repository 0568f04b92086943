// Package vipsfinder ищет vips, через который кодируется WebP.
//
// vips опрашивается один раз: версия и наличие webpsave запоминаются
// в Finder и переиспользуются всеми пакетами запуска (например, в watch).
package vipsfinder

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// EnvVar - переменная окружения с путём к vips.
const EnvVar = "IMAGECOMPRESSOR_VIPS"

var (
	// ErrNotFound - ни один кандидат не оказался рабочим vips.
	ErrNotFound = errors.New("vips не найден")

	// ErrNoWebP - vips найден, но собран без webpsave.
	ErrNoWebP = errors.New("vips собран без поддержки WebP")
)

// Info - результат опроса бинарника.
type Info struct {
	Path    string
	Version string

	// WebP - есть ли операция webpsave.
	WebP bool
}

// Finder ищет vips: путь из флага, переменная окружения, PATH.
type Finder struct {
	customPath string

	lookPath func(file string) (string, error)
	run      func(path string, args ...string) ([]byte, error)

	cached *Info
}

// NewFinder создаёт Finder. customPath - значение --vips-path, может быть пустым.
func NewFinder(customPath string) *Finder {
	return &Finder{
		customPath: customPath,
		lookPath:   exec.LookPath,
		run: func(path string, args ...string) ([]byte, error) {
			return exec.Command(path, args...).Output()
		},
	}
}

func (f *Finder) candidates() []string {
	var out []string
	if f.customPath != "" {
		out = append(out, f.customPath)
	}
	if env := os.Getenv(EnvVar); env != "" {
		out = append(out, env)
	}
	if p, err := f.lookPath("vips"); err == nil {
		out = append(out, p)
	}
	return out
}

// Find возвращает первый рабочий vips. Результат кэшируется.
func (f *Finder) Find() (*Info, error) {
	if f.cached != nil {
		return f.cached, nil
	}

	var tried []string
	for _, path := range f.candidates() {
		info, err := f.inspect(path)
		if err != nil {
			tried = append(tried, fmt.Sprintf("%s (%v)", path, err))
			continue
		}
		f.cached = info
		return info, nil
	}

	if len(tried) == 0 {
		return nil, fmt.Errorf("%w: нет ни --vips-path, ни %s, ни vips в PATH", ErrNotFound, EnvVar)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(tried, "; "))
}

// FindWebP возвращает vips, умеющий сохранять WebP.
func (f *Finder) FindWebP() (*Info, error) {
	info, err := f.Find()
	if err != nil {
		return nil, err
	}
	if !info.WebP {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoWebP, info.Path, info.Version)
	}
	return info, nil
}

func (f *Finder) inspect(path string) (*Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, errors.New("файл не найден")
	}

	out, err := f.run(abs, "--version")
	if err != nil {
		return nil, fmt.Errorf("--version: %w", err)
	}
	info := &Info{Path: abs, Version: parseVersion(string(out))}

	classes, err := f.run(abs, "list", "classes")
	if err != nil {
		// Старые сборки не умеют list classes, webpsave там был всегда
		info.WebP = true
		return info, nil
	}
	info.WebP = hasSaver(string(classes), "webpsave")
	return info, nil
}

// parseVersion разбирает "vips-8.14.2" и "vips 8.14.2".
func parseVersion(output string) string {
	output = strings.TrimSpace(output)
	for _, prefix := range []string{"vips-", "vips "} {
		if v, ok := strings.CutPrefix(output, prefix); ok {
			return v
		}
	}
	return output
}

func hasSaver(output, saver string) bool {
	return strings.Contains(output, "("+saver+")")
}
