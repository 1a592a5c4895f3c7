package compose

import (
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfkit/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeSinglePageBasicFlow(t *testing.T) {
	els := []element.Element{
		element.Heading(1, "Title"),
		element.Paragraph("Hello world."),
		element.EmptyLine(),
		element.UnorderedListItem("first", 0),
		element.UnorderedListItem("second", 0),
	}

	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	assert.True(t, strings.Contains(string(page.Content), "Hello world."))
	assert.True(t, strings.Contains(string(page.Content), "Page 1 of 1"))
	assert.NotEmpty(t, page.FontsUsed)
}

func TestComposePageBreakStartsNewPage(t *testing.T) {
	els := []element.Element{
		element.Paragraph("page one"),
		element.PageBreak(),
		element.Paragraph("page two"),
	}
	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.True(t, strings.Contains(string(doc.Pages[0].Content), "page one"))
	assert.True(t, strings.Contains(string(doc.Pages[1].Content), "page two"))
	assert.True(t, strings.Contains(string(doc.Pages[0].Content), "Page 1 of 2"))
	assert.True(t, strings.Contains(string(doc.Pages[1].Content), "Page 2 of 2"))
}

func TestComposeOverflowingParagraphsPaginate(t *testing.T) {
	var els []element.Element
	for i := 0; i < 200; i++ {
		els = append(els, element.Paragraph("a line of body text that repeats to force pagination"))
	}
	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, len(doc.Pages), 1)
}

func TestComposeFontResourceMappingIsStable(t *testing.T) {
	els := []element.Element{
		element.Paragraph("plain"),
		element.Styled("bold run", true, false),
		element.Paragraph("plain again"),
	}
	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)

	var plainKey, boldKey string
	for k, v := range doc.Fonts {
		if v == "Helvetica" {
			plainKey = k
		}
		if v == "Helvetica-Bold" {
			boldKey = k
		}
	}
	assert.NotEmpty(t, plainKey)
	assert.NotEmpty(t, boldKey)
	assert.NotEqual(t, plainKey, boldKey)
}

func TestComposeTableRunRendersAllRowsOnce(t *testing.T) {
	els := []element.Element{
		element.TableRow([]string{"A", "B"}, false, nil),
		element.TableRow([]string{"-", "-"}, true, []element.Alignment{element.AlignLeft, element.AlignRight}),
		element.TableRow([]string{"1", "2"}, false, nil),
		element.TableRow([]string{"3"}, false, nil), // ragged row, must not panic
	}
	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	content := string(doc.Pages[0].Content)
	assert.True(t, strings.Contains(content, "(A) Tj"))
	assert.True(t, strings.Contains(content, "(1) Tj"))
	assert.True(t, strings.Contains(content, "(3) Tj"))
}

func TestComposeFootnoteRendersOnCollectingPage(t *testing.T) {
	els := []element.Element{
		element.Paragraph("body text"),
		element.Footnote("1", "a footnote"),
	}
	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.True(t, strings.Contains(string(doc.Pages[0].Content), "a footnote"))
}

func TestComposeLinkRecordsAnnotation(t *testing.T) {
	els := []element.Element{element.Link("click me", "https://example.com")}
	doc, err := Compose(els, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Pages[0].Annotations, 1)
	assert.Equal(t, "https://example.com", doc.Pages[0].Annotations[0].URL)
}
