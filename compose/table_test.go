package compose

import (
	"testing"

	"github.com/benedoc-inc/pdfkit/element"
	"github.com/stretchr/testify/assert"
)

func TestPadCellsPadsRaggedRow(t *testing.T) {
	out := padCells([]string{"a"}, 3)
	assert.Equal(t, []string{"a", "", ""}, out)
}

func TestPadCellsTruncatesExcessCells(t *testing.T) {
	out := padCells([]string{"a", "b", "c"}, 2)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestAlignForDefaultsLeft(t *testing.T) {
	assert.Equal(t, element.AlignLeft, alignFor(nil, 0))
}

func TestAlignForUsesGivenColumn(t *testing.T) {
	aligns := []element.Alignment{element.AlignLeft, element.AlignRight, element.AlignCenter}
	assert.Equal(t, element.AlignRight, alignFor(aligns, 1))
	assert.Equal(t, element.AlignCenter, alignFor(aligns, 2))
}
