package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentStreamChaining(t *testing.T) {
	cs := NewContentStream().
		SaveState().
		SetFillColorRGB(1, 0, 0).
		Rectangle(0, 0, 10, 10).
		Fill().
		RestoreState()

	out := string(cs.Bytes())
	assert.True(t, strings.Contains(out, "q\n"))
	assert.True(t, strings.Contains(out, "1.0000 0.0000 0.0000 rg\n"))
	assert.True(t, strings.Contains(out, "0.0000 0.0000 10.0000 10.0000 re\n"))
	assert.True(t, strings.Contains(out, "f\n"))
	assert.True(t, strings.Contains(out, "Q\n"))
}

func TestShowTextEscapesParens(t *testing.T) {
	cs := NewContentStream().ShowText("a (b) c\\d")
	out := string(cs.Bytes())
	assert.Equal(t, "(a \\(b\\) c\\\\d) Tj\n", out)
}

func TestSetTextPositionEmitsAbsoluteTm(t *testing.T) {
	cs := NewContentStream().BeginText().SetTextPosition(10, 20).SetTextPosition(30, 40).EndText()
	out := string(cs.Bytes())
	assert.Equal(t, "BT\n1.0000 0.0000 0.0000 1.0000 10.0000 20.0000 Tm\n1.0000 0.0000 0.0000 1.0000 30.0000 40.0000 Tm\nET\n", out)
}

func TestDrawImageAtWrapsMatrixAroundDo(t *testing.T) {
	cs := NewContentStream().DrawImageAt("/Im1", 0, 0, 100, 50)
	out := string(cs.Bytes())
	assert.True(t, strings.Contains(out, "/Im1 Do\n"))
	assert.True(t, strings.HasPrefix(out, "q\n"))
	assert.True(t, strings.HasSuffix(out, "Q\n"))
}
