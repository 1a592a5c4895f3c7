package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		kind Kind
	}{
		{"heading", Heading(2, "Title"), KindHeading},
		{"paragraph", Paragraph("body"), KindParagraph},
		{"unordered", UnorderedListItem("item", 1), KindUnorderedListItem},
		{"ordered", OrderedListItem(3, "item", 0), KindOrderedListItem},
		{"task", TaskListItem(true, "done"), KindTaskListItem},
		{"code block", CodeBlock("go", "package main"), KindCodeBlock},
		{"inline code", InlineCode("x"), KindInlineCode},
		{"table row", TableRow([]string{"a", "b"}, false, nil), KindTableRow},
		{"blockquote", BlockQuote("quoted", 2), KindBlockQuote},
		{"definition", DefinitionItem("term", "def"), KindDefinitionItem},
		{"footnote", Footnote("1", "note"), KindFootnote},
		{"link", Link("text", "https://example.com"), KindLink},
		{"image", Image("alt", "a.jpg"), KindImage},
		{"styled", Styled("bold", true, false), KindStyledText},
		{"hr", HorizontalRule(), KindHorizontalRule},
		{"page break", PageBreak(), KindPageBreak},
		{"empty line", EmptyLine(), KindEmptyLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.el.Kind)
		})
	}
}

func TestOrderedListItemFields(t *testing.T) {
	el := OrderedListItem(5, "fifth", 1)
	assert.Equal(t, 5, el.Number)
	assert.Equal(t, "fifth", el.Text)
	assert.Equal(t, 1, el.Depth)
}

func TestTableRowAlignments(t *testing.T) {
	el := TableRow([]string{"---", ":--:"}, true, []Alignment{AlignLeft, AlignCenter})
	assert.True(t, el.IsSeparator)
	assert.Equal(t, []Alignment{AlignLeft, AlignCenter}, el.Alignments)
}
