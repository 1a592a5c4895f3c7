package compose

import "strings"

// PageLayout describes one page's geometry in points, origin at the
// bottom-left per spec §4.8.
type PageLayout struct {
	Width, Height             float64
	MarginTop, MarginBottom   float64
	MarginLeft, MarginRight   float64
}

// Portrait returns a Letter-sized portrait layout with 72pt (1in)
// margins on every side, the composer's default.
func Portrait() PageLayout {
	return PageLayout{Width: 612, Height: 792, MarginTop: 72, MarginBottom: 72, MarginLeft: 72, MarginRight: 72}
}

// Landscape returns Portrait with width and height swapped.
func Landscape() PageLayout {
	l := Portrait()
	l.Width, l.Height = l.Height, l.Width
	return l
}

// textWidth returns the layout's usable horizontal span for body text.
func (l PageLayout) textWidth() float64 {
	return l.Width - l.MarginLeft - l.MarginRight
}

// lineHeight is the vertical advance between baselines at a given font
// size; 1.15x size is a conventional single-spacing leading factor.
const leadingFactor = 1.15

func lineHeight(size float64) float64 {
	return size * leadingFactor
}

// wrapText breaks s into lines no wider than maxWidth under the given
// font, soft-breaking on spaces. A single token wider than maxWidth is
// placed on its own (overflowing) line rather than split, per spec §4.8.
func wrapText(family FontFamily, bold, italic bool, s string, size, maxWidth float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0.0
	spaceWidth := CharWidth(family, bold, italic, ' ', size)

	for _, w := range words {
		ww := StringWidth(family, bold, italic, w, size)
		if cur.Len() == 0 {
			cur.WriteString(w)
			curWidth = ww
			continue
		}
		if curWidth+spaceWidth+ww <= maxWidth {
			cur.WriteString(" ")
			cur.WriteString(w)
			curWidth += spaceWidth + ww
			continue
		}
		lines = append(lines, cur.String())
		cur.Reset()
		cur.WriteString(w)
		curWidth = ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// headingSize returns base scaled for a heading level 1-6, per spec
// §4.8's fixed scale table; levels outside 1-6 clamp to the nearest end.
func headingSize(base float64, level int) float64 {
	scale := []float64{2.0, 1.6, 1.3, 1.1, 1.0, 0.9}
	if level < 1 {
		level = 1
	}
	if level > len(scale) {
		level = len(scale)
	}
	return base * scale[level-1]
}
