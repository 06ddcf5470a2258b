package overlaypane

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	xansi "github.com/charmbracelet/x/ansi"
)

// Placement controls where an overlay sits relative to the background.
// Zero Width or Height sizes the overlay to its content.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
	Width      int
	Height     int
}

// Compose draws foreground on top of background, keeping the background
// visible outside the overlay bounds.
func Compose(background string, width, height int, foreground string, p Placement) string {
	bg := fitLines(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bg, "\n")
	}

	fg := strings.Split(foreground, "\n")
	ow, oh := p.Width, p.Height
	if ow <= 0 {
		for _, line := range fg {
			ow = max(ow, xansi.StringWidth(line))
		}
	}
	if oh <= 0 {
		oh = len(fg)
	}
	ow, oh = min(ow, width), min(oh, height)
	if ow <= 0 || oh <= 0 {
		return strings.Join(bg, "\n")
	}

	x, y := offsets(width, height, ow, oh, p)
	for row := 0; row < oh; row++ {
		dest := y + row
		if dest >= len(bg) {
			break
		}
		line := ""
		if row < len(fg) {
			line = fg[row]
		}
		base := bg[dest]
		bg[dest] = xansi.Cut(base, 0, x) + pad(line, ow) + xansi.Cut(base, x+ow, width)
	}
	return strings.Join(bg, "\n")
}

// offsets returns the top-left corner of an ow x oh overlay inside a
// width x height area.
func offsets(width, height, ow, oh int, p Placement) (int, int) {
	x := p.MarginX
	switch p.Horizontal {
	case lipgloss.Right:
		x = width - ow - p.MarginX
	case lipgloss.Center:
		x = (width - ow) / 2
	}
	y := p.MarginY
	switch p.Vertical {
	case lipgloss.Bottom:
		y = height - oh - p.MarginY
	case lipgloss.Center:
		y = (height - oh) / 2
	}
	return clamp(x, 0, width-ow), clamp(y, 0, height-oh)
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// fitLines keeps the last height lines of view, each padded to width.
func fitLines(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = pad(lines[i], width)
	}
	return lines
}

func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(s)
	if w > width {
		return xansi.Cut(s, 0, width)
	}
	return s + strings.Repeat(" ", width-w)
}
