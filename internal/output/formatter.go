// Package output provides output formatting for the timesheets CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Format represents the output format type.
type Format string

const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ColorMode represents the color output mode.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// Formatter handles output formatting.
type Formatter struct {
	Writer    io.Writer
	Format    Format
	ColorMode ColorMode
	NoNewline bool
}

// NewFormatter creates a new formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		Format:    FormatCLI,
		ColorMode: ColorAuto,
	}
}

// ParseFormat maps a --format value onto a Format. Unknown values mean cli.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatJSON:
		return FormatJSON
	case FormatPlain:
		return FormatPlain
	default:
		return FormatCLI
	}
}

// ParseColorMode maps a --color value onto a ColorMode. Unknown values mean auto.
func ParseColorMode(s string) ColorMode {
	switch ColorMode(s) {
	case ColorAlways:
		return ColorAlways
	case ColorNever:
		return ColorNever
	default:
		return ColorAuto
	}
}

// IsColorEnabled returns true if color output is enabled.
// Plain output never uses color.
func (f *Formatter) IsColorEnabled() bool {
	if f.Format == FormatPlain {
		return false
	}
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		// Auto-detect based on terminal
		if w, ok := f.Writer.(*os.File); ok {
			return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
		}
		return false
	}
}

// Width returns the terminal width of the writer, or DefaultWidth.
func (f *Formatter) Width() int {
	if w, ok := f.Writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(w.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}

// Print outputs formatted text.
func (f *Formatter) Print(a ...interface{}) {
	fmt.Fprint(f.Writer, a...)
}

// Println outputs formatted text with newline.
func (f *Formatter) Println(a ...interface{}) {
	fmt.Fprintln(f.Writer, a...)
}

// Printf outputs formatted text.
func (f *Formatter) Printf(format string, a ...interface{}) {
	fmt.Fprintf(f.Writer, format, a...)
}

// JSON outputs data as JSON.
func (f *Formatter) JSON(v interface{}) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// PrintJSON is an alias for JSON for consistency.
func (f *Formatter) PrintJSON(v interface{}) error {
	return f.JSON(v)
}

// Truncate shortens s to at most width display cells, ending with "…".
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// FormatTime formats a time in local timezone.
func FormatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatTimeShort formats a time without seconds.
func FormatTimeShort(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// FormatDate formats a date only.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatOptionalDate formats a nullable date, "-" when unset.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatDate(*t)
}
