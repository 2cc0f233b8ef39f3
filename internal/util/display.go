package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"

	ClearScreen    = "\033[2J"
	ClearLine      = "\033[2K"
	MoveCursorHome = "\033[H"
	HideCursor     = "\033[?25l"
	ShowCursor     = "\033[?25h"
	EnterAltScreen = "\033[?1049h"
	ExitAltScreen  = "\033[?1049l"
)

const (
	blockFull  = "█"
	blockLight = "░"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads text with spaces up to width display columns.
func PadRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// CreateProgressBar creates a bar of width cells filled to percentage.
func CreateProgressBar(percentage float64, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int((percentage / 100) * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat(blockFull, filled) + strings.Repeat(blockLight, width-filled) + "]"
}

// HexToANSI converts a "#RRGGBB" color to a 24-bit foreground escape. An
// unparseable color yields an empty string.
func HexToANSI(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return ""
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff)
}

// Colorize wraps text in the category color when one is known.
func Colorize(text, hex string) string {
	code := HexToANSI(hex)
	if code == "" {
		return text
	}
	return code + text + ColorReset
}

// Swatch returns a block of n cells painted in the category color.
func Swatch(hex string, n int) string {
	if n <= 0 {
		return ""
	}
	return Colorize(strings.Repeat(blockFull, n), hex)
}

// FormatOverviewTitle formats overview/summary titles (Cyan + Bold)
func FormatOverviewTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorCyan, title, ColorReset)
}

// FormatMuted dims secondary text.
func FormatMuted(text string) string {
	return ColorGray + text + ColorReset
}

// CenterText centers text within the given width
func CenterText(text string, width int) string {
	w := GetDisplayWidth(text)
	if w >= width {
		return runewidth.Truncate(text, width, "")
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-w)
}
