package markdown

import (
	"testing"

	"github.com/benedoc-inc/pdfkit/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks(t *testing.T) {
	src := "# Hello\n\nWorld **bold** and *italic* text.\n\n- first\n- second\n\n1. one\n2. two\n"
	els := Parse(src)
	require.NotEmpty(t, els)

	assert.Equal(t, element.KindHeading, els[0].Kind)
	assert.Equal(t, 1, els[0].Level)
	assert.Equal(t, "Hello", els[0].Text)

	var sawParagraph, sawUL, sawOL bool
	for _, e := range els {
		switch e.Kind {
		case element.KindParagraph:
			sawParagraph = true
			assert.NotContains(t, e.Text, "**")
			assert.NotContains(t, e.Text, "*italic*")
		case element.KindUnorderedListItem:
			sawUL = true
		case element.KindOrderedListItem:
			sawOL = true
		}
	}
	assert.True(t, sawParagraph)
	assert.True(t, sawUL)
	assert.True(t, sawOL)
}

func TestParseCodeBlock(t *testing.T) {
	src := "```go\nfunc main() {}\n```\n"
	els := Parse(src)
	require.Len(t, els, 1)
	assert.Equal(t, element.KindCodeBlock, els[0].Kind)
	assert.Equal(t, "go", els[0].Language)
	assert.Equal(t, "func main() {}", els[0].Code)
}

func TestParseTable(t *testing.T) {
	src := "| A | B |\n| --- | :---: |\n| 1 | 2 |\n"
	els := Parse(src)
	require.Len(t, els, 3)
	for _, e := range els {
		assert.Equal(t, element.KindTableRow, e.Kind)
	}
	assert.True(t, els[1].IsSeparator)
	assert.Equal(t, element.AlignCenter, els[1].Alignments[1])
	assert.Equal(t, []string{"1", "2"}, els[2].Cells)
}

func TestParseTaskList(t *testing.T) {
	src := "- [x] done\n- [ ] pending\n"
	els := Parse(src)
	require.Len(t, els, 2)
	assert.True(t, els[0].Checked)
	assert.False(t, els[1].Checked)
}

func TestParseRaggedTableRows(t *testing.T) {
	src := "| A | B | C |\n| --- | --- | --- |\n| 1 |\n| 1 | 2 | 3 | 4 |\n"
	els := Parse(src)
	require.Len(t, els, 4)
	assert.Len(t, els[2].Cells, 1)
	assert.Len(t, els[3].Cells, 4)
}
