package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minContent     = 40
	maxContent     = 120
)

// Sizer measures text and the terminal it is drawn on.
type Sizer struct {
	Width  int
	Height int
}

// NewSizer creates a sizer for a terminal of the given size.
func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// TerminalSizer sizes stdout, falling back to 80x24 when it is not a terminal.
func TerminalSizer() *Sizer {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return NewSizer(fallbackWidth, fallbackHeight)
	}
	return NewSizer(width, height)
}

func (s Sizer) displayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (s Sizer) PadString(text string, width int, leftAlign bool) string {
	actual := s.displayWidth(text)
	if actual >= width {
		return text
	}

	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return text + padding
	}
	return padding + text
}

// ContentWidth is the usable drawing width, leaving a small margin.
func (s Sizer) ContentWidth() int {
	w := s.Width - 4
	if w < minContent {
		return min(s.Width, minContent)
	}
	return min(w, maxContent)
}

// BodyLines is the number of rows left between a header and a footer.
func (s Sizer) BodyLines(header, footer int) int {
	return max(s.Height-header-footer, 0)
}
