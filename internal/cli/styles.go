package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorInk     = lipgloss.Color("#E5E9F0")
	colorDim     = lipgloss.Color("#7A8291")
	colorAccent  = lipgloss.Color("#88C0D0")
	colorSuccess = lipgloss.Color("#A3BE8C")
	colorWarn    = lipgloss.Color("#EBCB8B")
	colorError   = lipgloss.Color("#BF616A")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	keyStyle   = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle = lipgloss.NewStyle().Foreground(colorInk)
	okStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// kv - строка "ключ: значение" для табличного вывода.
type kv struct {
	key   string
	value string
}

// writeTable печатает пары ключ-значение с выравниванием ключей.
func writeTable(w io.Writer, rows []kv) {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.key))
	}
	keyCol := keyStyle.Width(width + 2)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s%s\n", keyCol.Render(r.key+":"), valueStyle.Render(r.value))
	}
}
