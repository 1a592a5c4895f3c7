// Package markdown tokenizes Markdown source into the ordered
// element.Element sequence the page composer consumes (spec §4.10). It
// is a line-oriented block parser: each source line is classified into
// one block kind, with a second inline pass stripping `**bold**`,
// `*italic*`, `~~strike~~`, `` `code` `` and `[text](url)` spans per the
// accepted grammar. It is deliberately not a full CommonMark
// implementation — only the subset of block/inline syntax §4.10 names.
package markdown

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/benedoc-inc/pdfkit/element"
)

var (
	reHeading      = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	reRule         = regexp.MustCompile(`^ {0,3}([-*_])(\s*\1){2,}\s*$`)
	reFenceOpen    = regexp.MustCompile("^```\\s*([A-Za-z0-9_+-]*)\\s*$")
	reTask         = regexp.MustCompile(`^(\s*)[-*+]\s+\[([ xX])\]\s+(.*)$`)
	reUnordered    = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	reOrdered      = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
	reBlockquote   = regexp.MustCompile(`^(>+)\s?(.*)$`)
	reTableRow     = regexp.MustCompile(`^\s*\|?(.+?)\|?\s*$`)
	reTableSep     = regexp.MustCompile(`^\s*:?-{3,}:?\s*$`)
	reDefinition   = regexp.MustCompile(`^:\s+(.*)$`)
	reFootnoteDef  = regexp.MustCompile(`^\[\^([^\]]+)\]:\s*(.*)$`)
	reStandaloneLk = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)$`)
	reStandaloneIm = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)
	rePageBreak    = regexp.MustCompile(`^<!--\s*pagebreak\s*-->$`)

	reInlineImage = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	reInlineLink  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reInlineCode  = regexp.MustCompile("`([^`]+)`")
	reInlineBold  = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	reInlineItal  = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	reInlineStrk  = regexp.MustCompile(`~~([^~]+)~~`)
)

// Parse tokenizes Markdown source into an element.Element sequence.
func Parse(src string) []element.Element {
	var out []element.Element
	scanner := bufio.NewScanner(strings.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var pendingTerm string
	lastTableAligns := []element.Alignment(nil)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			out = append(out, element.EmptyLine())
			pendingTerm = ""
			continue
		}

		if rePageBreak.MatchString(strings.TrimSpace(line)) {
			out = append(out, element.PageBreak())
			continue
		}

		if m := reFenceOpen.FindStringSubmatch(line); m != nil {
			lang := m[1]
			var code []string
			for scanner.Scan() {
				body := scanner.Text()
				if strings.TrimSpace(body) == "```" {
					break
				}
				code = append(code, body)
			}
			out = append(out, element.CodeBlock(lang, strings.Join(code, "\n")))
			continue
		}

		if reRule.MatchString(line) {
			out = append(out, element.HorizontalRule())
			continue
		}

		if m := reHeading.FindStringSubmatch(line); m != nil {
			out = append(out, element.Heading(len(m[1]), stripInline(m[2])))
			continue
		}

		if m := reFootnoteDef.FindStringSubmatch(line); m != nil {
			out = append(out, element.Footnote(m[1], stripInline(m[2])))
			continue
		}

		if m := reTask.FindStringSubmatch(line); m != nil {
			depth := indentDepth(m[1])
			checked := m[2] == "x" || m[2] == "X"
			out = append(out, element.TaskListItem(checked, stripInline(m[3])))
			_ = depth
			continue
		}

		if m := reOrdered.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			out = append(out, element.OrderedListItem(n, stripInline(m[3]), indentDepth(m[1])))
			continue
		}

		if m := reUnordered.FindStringSubmatch(line); m != nil {
			out = append(out, element.UnorderedListItem(stripInline(m[2]), indentDepth(m[1])))
			continue
		}

		if m := reBlockquote.FindStringSubmatch(line); m != nil {
			out = append(out, element.BlockQuote(stripInline(m[2]), len(m[1])-1))
			continue
		}

		if m := reDefinition.FindStringSubmatch(line); m != nil && pendingTerm != "" {
			out = append(out, element.DefinitionItem(pendingTerm, stripInline(m[1])))
			pendingTerm = ""
			continue
		}

		if isTableRow(line) {
			cells := splitTableCells(line)
			if isTableSeparator(cells) {
				aligns := make([]element.Alignment, len(cells))
				for i, c := range cells {
					aligns[i] = alignmentOf(c)
				}
				lastTableAligns = aligns
				out = append(out, element.TableRow(cells, true, aligns))
			} else {
				out = append(out, element.TableRow(cells, false, lastTableAligns))
			}
			continue
		}

		if m := reStandaloneIm.FindStringSubmatch(line); m != nil {
			out = append(out, element.Image(m[1], m[2]))
			continue
		}

		if m := reStandaloneLk.FindStringSubmatch(line); m != nil {
			out = append(out, element.Link(m[1], m[2]))
			continue
		}

		if m := reInlineCode.FindStringSubmatch(line); m != nil && len(strings.TrimSpace(line)) == len(m[0]) {
			out = append(out, element.InlineCode(m[1]))
			continue
		}

		if styled, ok := wholeLineStyle(line); ok {
			out = append(out, styled)
			continue
		}

		out = append(out, element.Paragraph(stripInline(line)))
		pendingTerm = strings.TrimSpace(line)
	}

	return out
}

func indentDepth(indent string) int {
	return len(strings.ReplaceAll(indent, "\t", "  ")) / 2
}

func isTableRow(line string) bool {
	return strings.Contains(line, "|")
}

func splitTableCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(stripInline(p))
	}
	return cells
}

func isTableSeparator(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !reTableSep.MatchString(c) {
			return false
		}
	}
	return true
}

func alignmentOf(cell string) element.Alignment {
	c := strings.TrimSpace(cell)
	left := strings.HasPrefix(c, ":")
	right := strings.HasSuffix(c, ":")
	switch {
	case left && right:
		return element.AlignCenter
	case right:
		return element.AlignRight
	case left:
		return element.AlignLeft
	default:
		return element.AlignNone
	}
}

// wholeLineStyle recognizes a line that is entirely one bold or italic
// span, emitting a StyledText element instead of a plain Paragraph.
func wholeLineStyle(line string) (element.Element, bool) {
	trimmed := strings.TrimSpace(line)
	if m := reInlineBold.FindStringSubmatch(trimmed); m != nil && m[0] == trimmed {
		return element.Styled(text(m[1], m[2]), true, false), true
	}
	if m := reInlineItal.FindStringSubmatch(trimmed); m != nil && m[0] == trimmed {
		return element.Styled(text(m[1], m[2]), false, true), true
	}
	return element.Element{}, false
}

func text(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// stripInline removes the inline markdown spans accepted by spec §4.10,
// keeping their plain text content: images drop entirely (an Image
// element is block-level only), links keep their display text, code
// spans keep their code text, bold/italic/strike keep their text.
func stripInline(s string) string {
	s = reInlineImage.ReplaceAllString(s, "")
	s = reInlineLink.ReplaceAllString(s, "$1")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reInlineBold.ReplaceAllStringFunc(s, func(m string) string {
		sub := reInlineBold.FindStringSubmatch(m)
		return text(sub[1], sub[2])
	})
	s = reInlineItal.ReplaceAllStringFunc(s, func(m string) string {
		sub := reInlineItal.FindStringSubmatch(m)
		return text(sub[1], sub[2])
	})
	s = reInlineStrk.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
