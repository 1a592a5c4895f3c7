// Package element defines the input to the page composer: a closed,
// ordered sequence of document elements (headings, paragraphs, lists,
// tables, images, ...). Elements are produced by the markdown package or
// constructed directly by a library caller; the composer consumes them
// once and does not hand back ownership.
package element

// Kind tags which variant of Element is populated. Only the fields
// documented for a Kind are meaningful; the rest are zero.
type Kind string

const (
	KindHeading            Kind = "heading"
	KindParagraph          Kind = "paragraph"
	KindUnorderedListItem  Kind = "unordered_list_item"
	KindOrderedListItem    Kind = "ordered_list_item"
	KindTaskListItem       Kind = "task_list_item"
	KindCodeBlock          Kind = "code_block"
	KindInlineCode         Kind = "inline_code"
	KindTableRow           Kind = "table_row"
	KindBlockQuote         Kind = "block_quote"
	KindDefinitionItem     Kind = "definition_item"
	KindFootnote           Kind = "footnote"
	KindLink               Kind = "link"
	KindImage              Kind = "image"
	KindStyledText         Kind = "styled_text"
	KindHorizontalRule     Kind = "horizontal_rule"
	KindPageBreak          Kind = "page_break"
	KindEmptyLine          Kind = "empty_line"
)

// Alignment is a table column's horizontal alignment, taken from a
// TableRow separator row.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Element is the tagged variant over the closed set of document
// elements in spec §3.3. Switch on Kind, not on which fields are set.
type Element struct {
	Kind Kind

	// Heading
	Level int
	Text  string

	// UnorderedListItem / OrderedListItem / BlockQuote (Depth also used
	// by those three)
	Depth int

	// OrderedListItem
	Number int

	// TaskListItem
	Checked bool

	// CodeBlock / InlineCode
	Language string
	Code     string

	// TableRow
	Cells        []string
	IsSeparator  bool
	Alignments   []Alignment

	// DefinitionItem
	Term       string
	Definition string

	// Footnote
	Label string

	// Link
	URL string

	// Image
	Alt  string
	Path string
	// ImageData carries the raw JPEG bytes. compose renders an Image from
	// ImageData only and fails with UnsupportedImageFormat when it is
	// empty; neither compose nor the md-to-pdf CLI command reads the file
	// named by Path, so an Image carrying only a Path does not render.
	ImageData []byte

	// StyledText
	Bold   bool
	Italic bool
}

// Heading constructs a Heading element.
func Heading(level int, text string) Element {
	return Element{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph constructs a Paragraph element.
func Paragraph(text string) Element {
	return Element{Kind: KindParagraph, Text: text}
}

// UnorderedListItem constructs an UnorderedListItem element.
func UnorderedListItem(text string, depth int) Element {
	return Element{Kind: KindUnorderedListItem, Text: text, Depth: depth}
}

// OrderedListItem constructs an OrderedListItem element.
func OrderedListItem(number int, text string, depth int) Element {
	return Element{Kind: KindOrderedListItem, Number: number, Text: text, Depth: depth}
}

// TaskListItem constructs a TaskListItem element.
func TaskListItem(checked bool, text string) Element {
	return Element{Kind: KindTaskListItem, Checked: checked, Text: text}
}

// CodeBlock constructs a CodeBlock element.
func CodeBlock(language, code string) Element {
	return Element{Kind: KindCodeBlock, Language: language, Code: code}
}

// InlineCode constructs an InlineCode element.
func InlineCode(code string) Element {
	return Element{Kind: KindInlineCode, Code: code}
}

// TableRow constructs a TableRow element. alignments may be nil for a
// non-separator row.
func TableRow(cells []string, isSeparator bool, alignments []Alignment) Element {
	return Element{Kind: KindTableRow, Cells: cells, IsSeparator: isSeparator, Alignments: alignments}
}

// BlockQuote constructs a BlockQuote element.
func BlockQuote(text string, depth int) Element {
	return Element{Kind: KindBlockQuote, Text: text, Depth: depth}
}

// DefinitionItem constructs a DefinitionItem element.
func DefinitionItem(term, definition string) Element {
	return Element{Kind: KindDefinitionItem, Term: term, Definition: definition}
}

// Footnote constructs a Footnote element.
func Footnote(label, text string) Element {
	return Element{Kind: KindFootnote, Label: label, Text: text}
}

// Link constructs a Link element.
func Link(text, url string) Element {
	return Element{Kind: KindLink, Text: text, URL: url}
}

// Image constructs an Image element referencing a path the caller will
// resolve (the core never reads the filesystem itself).
func Image(alt, path string) Element {
	return Element{Kind: KindImage, Alt: alt, Path: path}
}

// ImageFromBytes constructs an Image element carrying JPEG bytes
// directly, bypassing the Path/caller-reads-file indirection.
func ImageFromBytes(alt string, data []byte) Element {
	return Element{Kind: KindImage, Alt: alt, ImageData: data}
}

// Styled constructs a StyledText element.
func Styled(text string, bold, italic bool) Element {
	return Element{Kind: KindStyledText, Text: text, Bold: bold, Italic: italic}
}

// HorizontalRule constructs a HorizontalRule element.
func HorizontalRule() Element { return Element{Kind: KindHorizontalRule} }

// PageBreak constructs a PageBreak element.
func PageBreak() Element { return Element{Kind: KindPageBreak} }

// EmptyLine constructs an EmptyLine element.
func EmptyLine() Element { return Element{Kind: KindEmptyLine} }
