package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
)

// GetDisplayWidth is the terminal cell width of text, counting wide runes
// and emoji as two cells.
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Truncate cuts text to width cells, marking the cut with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

// PadRight pads text with spaces to width cells.
func PadRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// PadLeft pads text on the left to width cells.
func PadLeft(text string, width int) string {
	return runewidth.FillLeft(text, width)
}

// Bar draws a proportional bar of at most width cells.
func Bar(value, max, width int) string {
	if max <= 0 || width <= 0 || value <= 0 {
		return ""
	}
	filled := value * width / max
	if filled == 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled)
}

// FormatHeaderTitle renders a bold cyan heading.
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorCyan, title, ColorReset)
}

// FormatMuted renders secondary text.
func FormatMuted(text string) string {
	return ColorDim + text + ColorReset
}
