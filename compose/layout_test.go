package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapTextBreaksOnWidth(t *testing.T) {
	lines := wrapText(Helvetica, false, false, "one two three four five", 10, 60)
	assert.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, StringWidth(Helvetica, false, false, l, 10), 60.0+0.0001)
	}
}

func TestWrapTextOverflowsSingleLongToken(t *testing.T) {
	lines := wrapText(Helvetica, false, false, "supercalifragilisticexpialidocious", 10, 5)
	assert.Equal(t, 1, len(lines))
}

func TestWrapTextEmptyStringYieldsOneEmptyLine(t *testing.T) {
	lines := wrapText(Helvetica, false, false, "", 10, 100)
	assert.Equal(t, []string{""}, lines)
}

func TestHeadingSizeScale(t *testing.T) {
	assert.InDelta(t, 20.0, headingSize(10, 1), 0.0001)
	assert.InDelta(t, 9.0, headingSize(10, 6), 0.0001)
	// out-of-range levels clamp
	assert.InDelta(t, 20.0, headingSize(10, 0), 0.0001)
	assert.InDelta(t, 9.0, headingSize(10, 9), 0.0001)
}

func TestPortraitLandscapeSwapDimensions(t *testing.T) {
	p := Portrait()
	l := Landscape()
	assert.Equal(t, p.Width, l.Height)
	assert.Equal(t, p.Height, l.Width)
}
