// Package compose implements the page composer (spec component C8): it
// turns an ordered element.Element list into paginated page content
// streams plus the font/image/annotation resources those streams
// reference. It does not itself build the PDF object graph — the root
// package's assemble.go turns a Document into pdfval objects for pdfdoc
// to serialize,
// keeping C8's rendering logic independent of object numbering.
package compose

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/benedoc-inc/pdfkit/element"
	"github.com/benedoc-inc/pdfkit/pdferr"
)

// Options configures one composition run.
type Options struct {
	Family FontFamily
	Size   float64
	Layout PageLayout
}

// DefaultOptions returns base Helvetica at 11pt on a portrait Letter
// page, the composer's baseline configuration.
func DefaultOptions() Options {
	return Options{Family: Helvetica, Size: 11, Layout: Portrait()}
}

// Annotation is a page-level annotation recorded against a page's
// content, per spec §4.9's Text/Link/Highlight set.
type Annotation struct {
	Kind       string // "Link", "Highlight", "Text"
	Rect       [4]float64
	URL        string
	Contents   string
	QuadPoints []float64
}

// Page is one rendered page: its content stream plus the resource
// keys (not yet bound to PDF object numbers) its operators reference.
type Page struct {
	Content     []byte
	FontsUsed   []string
	ImagesUsed  []string
	Annotations []Annotation
	Rotate      int
}

// ImageResource is one embedded JPEG, keyed by its composer-assigned
// resource name (e.g. "/Im1").
type ImageResource struct {
	Data          []byte
	Width, Height int
}

// Document is the composer's complete output: pages in order, the
// stable font-key -> BaseFont-name resource map (spec §4.8's "mapping
// is stable within a document"), and the images referenced anywhere in
// the document.
type Document struct {
	Pages  []Page
	Fonts  map[string]string // "/F1" -> "Helvetica-Bold"
	Images map[string]ImageResource
	Layout PageLayout
}

type fontKey struct {
	family FontFamily
	bold   bool
	italic bool
}

type footnoteRef struct {
	label string
	text  string
}

type pageState struct {
	cs         *ContentStream
	fontsUsed  map[string]bool
	imagesUsed map[string]bool
	annots     []Annotation
	footnotes  []footnoteRef
}

type composer struct {
	opts Options

	fonts     map[fontKey]string
	fontOrder []fontKey
	images    map[string]ImageResource

	pages   []*pageState
	cur     *pageState
	cursorY float64

	nextImage int
	seenFootnotes map[string]bool
}

// Compose renders elements into a Document under opts.
func Compose(elements []element.Element, opts Options) (*Document, error) {
	if opts.Size <= 0 {
		opts.Size = 11
	}
	if opts.Layout.Width == 0 {
		opts.Layout = Portrait()
	}

	c := &composer{
		opts:          opts,
		fonts:         map[fontKey]string{},
		images:        map[string]ImageResource{},
		seenFootnotes: map[string]bool{},
	}

	for i := range elements {
		if err := c.renderElement(elements, i); err != nil {
			return nil, err
		}
	}
	c.flushPage()

	n := len(c.pages)
	for i, p := range c.pages {
		c.drawFooter(p, i+1, n)
	}

	doc := &Document{
		Fonts:  map[string]string{},
		Images: c.images,
		Layout: opts.Layout,
	}
	for _, k := range c.fontOrder {
		doc.Fonts[c.fonts[k]] = baseFontNameFromKey(k)
	}
	for _, p := range c.pages {
		doc.Pages = append(doc.Pages, Page{
			Content:     p.cs.Bytes(),
			FontsUsed:   setKeys(p.fontsUsed),
			ImagesUsed:  setKeys(p.imagesUsed),
			Annotations: p.annots,
			Rotate:      0,
		})
	}
	return doc, nil
}

func baseFontNameFromKey(k fontKey) string {
	return BaseFontName(k.family, k.bold, k.italic)
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// fontResource returns the stable resource name for a (family, bold,
// italic) combination, allocating "/F<n>" the first time it is used.
func (c *composer) fontResource(family FontFamily, bold, italic bool) string {
	key := fontKey{family: family, bold: bold, italic: italic}
	if name, ok := c.fonts[key]; ok {
		return name
	}
	name := fmt.Sprintf("/F%d", len(c.fontOrder)+1)
	c.fonts[key] = name
	c.fontOrder = append(c.fontOrder, key)
	return name
}

func (c *composer) startPage() {
	p := &pageState{
		cs:         NewContentStream(),
		fontsUsed:  map[string]bool{},
		imagesUsed: map[string]bool{},
	}
	c.pages = append(c.pages, p)
	c.cur = p
	c.cursorY = c.opts.Layout.Height - c.opts.Layout.MarginTop
}

// flushPage renders any footnotes collected for the current page, just
// above the footer line, and leaves cur in place for startPage to
// replace on the next ensureSpace call.
func (c *composer) flushPage() {
	if c.cur == nil {
		return
	}
	if len(c.cur.footnotes) > 0 {
		c.drawFootnotes(c.cur)
	}
}

// ensureSpace flushes to a new page if height more of content would
// cross margin_bottom, per spec §4.8's flush rule.
func (c *composer) ensureSpace(height float64) {
	if c.cur == nil {
		c.startPage()
		return
	}
	if c.cursorY-height < c.opts.Layout.MarginBottom {
		c.flushPage()
		c.startPage()
	}
}

func (c *composer) useFont(name string) {
	c.cur.fontsUsed[name] = true
}

func (c *composer) drawFooter(p *pageState, n, total int) {
	text := fmt.Sprintf("Page %d of %d", n, total)
	size := c.opts.Size * 0.8
	name := c.fontResource(c.opts.Family, false, false)
	p.fontsUsed[name] = true

	w := StringWidth(c.opts.Family, false, false, text, size)
	x := (c.opts.Layout.Width - w) / 2
	y := c.opts.Layout.MarginBottom / 2

	p.cs.BeginText()
	p.cs.SetFont(name, size)
	p.cs.SetTextPosition(x, y)
	p.cs.ShowText(text)
	p.cs.EndText()
}

func (c *composer) drawFootnotes(p *pageState) {
	size := c.opts.Size * 0.8
	name := c.fontResource(c.opts.Family, false, false)
	p.fontsUsed[name] = true

	y := c.opts.Layout.MarginBottom + lineHeight(size)*float64(len(p.footnotes))
	p.cs.BeginText()
	p.cs.SetFont(name, size)
	for _, fn := range p.footnotes {
		p.cs.SetTextPosition(c.opts.Layout.MarginLeft, y)
		p.cs.ShowText(fmt.Sprintf("[%s] %s", fn.label, fn.text))
		y -= lineHeight(size)
	}
	p.cs.EndText()
}

// renderElement dispatches on elements[i].Kind. i is passed (rather
// than just the element) so the table algorithm can look ahead to
// consume an entire contiguous run of TableRow elements at once.
func (c *composer) renderElement(elements []element.Element, i int) error {
	e := elements[i]
	switch e.Kind {
	case element.KindHeading:
		return c.renderHeading(e)
	case element.KindParagraph:
		return c.renderParagraph(e, c.opts.Family, false, false)
	case element.KindUnorderedListItem:
		return c.renderListItem(e, "• ")
	case element.KindOrderedListItem:
		return c.renderListItem(e, fmt.Sprintf("%d. ", e.Number))
	case element.KindTaskListItem:
		marker := "[ ] "
		if e.Checked {
			marker = "[x] "
		}
		return c.renderParagraphIndented(e.Text, 0, marker)
	case element.KindCodeBlock:
		return c.renderCodeBlock(e)
	case element.KindInlineCode:
		return c.renderInlineCode(e)
	case element.KindLink:
		return c.renderLink(e)
	case element.KindImage:
		return c.renderImage(e)
	case element.KindStyledText:
		return c.renderParagraph(e, c.opts.Family, e.Bold, e.Italic)
	case element.KindBlockQuote:
		return c.renderBlockQuote(e)
	case element.KindDefinitionItem:
		return c.renderDefinitionItem(e)
	case element.KindFootnote:
		c.collectFootnote(e)
		return nil
	case element.KindHorizontalRule:
		return c.renderHorizontalRule()
	case element.KindTableRow:
		if isTableStart(elements, i) {
			return c.renderTable(tableRun(elements, i))
		}
		return nil // consumed as part of an earlier renderTable call
	case element.KindPageBreak:
		c.flushPage()
		c.startPage()
		return nil
	case element.KindEmptyLine:
		c.ensureSpace(lineHeight(c.opts.Size))
		c.cursorY -= lineHeight(c.opts.Size)
		return nil
	default:
		return pdferr.Newf(pdferr.InvalidInput, "unknown element kind %q", e.Kind)
	}
}

// isTableStart reports whether elements[i] begins a new contiguous
// TableRow run (i.e. the previous element, if any, is not itself a
// TableRow) — the table algorithm treats the whole run as one table.
func isTableStart(elements []element.Element, i int) bool {
	return i == 0 || elements[i-1].Kind != element.KindTableRow
}

func tableRun(elements []element.Element, start int) []element.Element {
	end := start
	for end < len(elements) && elements[end].Kind == element.KindTableRow {
		end++
	}
	return elements[start:end]
}

func (c *composer) renderHeading(e element.Element) error {
	size := headingSize(c.opts.Size, e.Level)
	lh := lineHeight(size)
	c.ensureSpace(lh * 2) // half-leading before and after, per spec §4.8

	c.cursorY -= lh * 0.5
	c.ensureSpace(lh)

	name := c.fontResource(c.opts.Family, true, false)
	c.useFont(name)

	x := c.opts.Layout.MarginLeft
	if e.Level == 1 {
		w := StringWidth(c.opts.Family, true, false, e.Text, size)
		x = (c.opts.Layout.Width - w) / 2
	}

	c.cur.cs.BeginText()
	c.cur.cs.SetFont(name, size)
	c.cur.cs.SetTextPosition(x, c.cursorY-size)
	c.cur.cs.ShowText(e.Text)
	c.cur.cs.EndText()

	c.cursorY -= lh
	c.cursorY -= lh * 0.5
	return nil
}

func (c *composer) renderParagraph(e element.Element, family FontFamily, bold, italic bool) error {
	return c.renderWrappedLines(e.Text, family, bold, italic, c.opts.Layout.MarginLeft, c.opts.Layout.textWidth())
}

// renderParagraphIndented wraps text at indent with a marker prefix on
// the first line and hang-indents wrapped continuation lines to after
// the marker, per spec §4.8's list-item rule.
func (c *composer) renderParagraphIndented(text string, indent float64, marker string) error {
	family := c.opts.Family
	size := c.opts.Size
	markerWidth := StringWidth(family, false, false, marker, size)
	width := c.opts.Layout.textWidth() - indent - markerWidth

	lines := wrapText(family, false, false, text, size, width)
	name := c.fontResource(family, false, false)

	for i, line := range lines {
		c.ensureSpace(lineHeight(size))
		c.useFont(name)
		x := c.opts.Layout.MarginLeft + indent
		if i == 0 {
			c.cur.cs.BeginText()
			c.cur.cs.SetFont(name, size)
			c.cur.cs.SetTextPosition(x, c.cursorY-size)
			c.cur.cs.ShowText(marker + line)
			c.cur.cs.EndText()
		} else {
			c.cur.cs.BeginText()
			c.cur.cs.SetFont(name, size)
			c.cur.cs.SetTextPosition(x+markerWidth, c.cursorY-size)
			c.cur.cs.ShowText(line)
			c.cur.cs.EndText()
		}
		c.cursorY -= lineHeight(size)
	}
	return nil
}

func (c *composer) renderListItem(e element.Element, marker string) error {
	indent := float64(e.Depth) * 18
	return c.renderParagraphIndented(e.Text, indent, marker)
}

func (c *composer) renderWrappedLines(text string, family FontFamily, bold, italic bool, x, width float64) error {
	size := c.opts.Size
	lines := wrapText(family, bold, italic, text, size, width)
	name := c.fontResource(family, bold, italic)

	for _, line := range lines {
		c.ensureSpace(lineHeight(size))
		c.useFont(name)
		c.cur.cs.BeginText()
		c.cur.cs.SetFont(name, size)
		c.cur.cs.SetTextPosition(x, c.cursorY-size)
		c.cur.cs.ShowText(line)
		c.cur.cs.EndText()
		c.cursorY -= lineHeight(size)
	}
	return nil
}

func (c *composer) renderCodeBlock(e element.Element) error {
	size := c.opts.Size * 0.85
	lh := lineHeight(size)
	name := c.fontResource(Courier, false, false)
	x := c.opts.Layout.MarginLeft
	width := c.opts.Layout.textWidth()

	for _, line := range strings.Split(e.Code, "\n") {
		c.ensureSpace(lh)
		c.useFont(name)

		c.cur.cs.SaveState()
		c.cur.cs.SetFillColorGray(0.95)
		c.cur.cs.Rectangle(x, c.cursorY-lh+0.2*lh, width, lh)
		c.cur.cs.Fill()
		c.cur.cs.RestoreState()

		c.cur.cs.BeginText()
		c.cur.cs.SetFont(name, size)
		c.cur.cs.SetFillColorGray(0)
		c.cur.cs.SetTextPosition(x, c.cursorY-size)
		c.cur.cs.ShowText(line)
		c.cur.cs.EndText()

		c.cursorY -= lh
	}
	return nil
}

// renderInlineCode draws one run of inline code switched to Courier,
// gray fill, at the current cursor position on its own line (the
// composer has no sub-line run model to splice inline code mid-
// paragraph, so each InlineCode element advances its own line).
func (c *composer) renderInlineCode(e element.Element) error {
	size := c.opts.Size
	lh := lineHeight(size)
	c.ensureSpace(lh)

	name := c.fontResource(Courier, false, false)
	c.useFont(name)

	c.cur.cs.BeginText()
	c.cur.cs.SetFont(name, size)
	c.cur.cs.SetFillColorGray(0.3)
	c.cur.cs.SetTextPosition(c.opts.Layout.MarginLeft, c.cursorY-size)
	c.cur.cs.ShowText(e.Code)
	c.cur.cs.SetFillColorGray(0)
	c.cur.cs.EndText()

	c.cursorY -= lh
	return nil
}

func (c *composer) renderLink(e element.Element) error {
	size := c.opts.Size
	lh := lineHeight(size)
	c.ensureSpace(lh)

	name := c.fontResource(c.opts.Family, false, false)
	c.useFont(name)

	x := c.opts.Layout.MarginLeft
	y := c.cursorY - size
	w := StringWidth(c.opts.Family, false, false, e.Text, size)

	c.cur.cs.BeginText()
	c.cur.cs.SetFont(name, size)
	c.cur.cs.SetFillColorRGB(0, 0, 0.8)
	c.cur.cs.SetTextPosition(x, y)
	c.cur.cs.ShowText(e.Text)
	c.cur.cs.SetFillColorGray(0)
	c.cur.cs.EndText()

	c.cur.annots = append(c.cur.annots, Annotation{
		Kind: "Link",
		Rect: [4]float64{x, y, x + w, y + size},
		URL:  e.URL,
	})

	c.cursorY -= lh
	return nil
}

// renderImage decodes JPEG dimensions via image/jpeg's DecodeConfig
// (spec §1 limits image handling to format+dimension detection; the
// raw bytes pass through verbatim into a DCTDecode stream at assembly
// time) and scales to fit the remaining page width, preserving aspect
// ratio.
func (c *composer) renderImage(e element.Element) error {
	data := e.ImageData
	if len(data) == 0 {
		return pdferr.New(pdferr.UnsupportedImageFormat, "image element has no data")
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pdferr.Wrap(pdferr.UnsupportedImageFormat, "decoding JPEG dimensions", err)
	}

	maxWidth := c.opts.Layout.textWidth()
	scale := 1.0
	if float64(cfg.Width) > maxWidth {
		scale = maxWidth / float64(cfg.Width)
	}
	w := float64(cfg.Width) * scale
	h := float64(cfg.Height) * scale

	c.ensureSpace(h)

	c.nextImage++
	name := fmt.Sprintf("/Im%d", c.nextImage)
	c.images[name] = ImageResource{Data: data, Width: cfg.Width, Height: cfg.Height}
	c.cur.imagesUsed[name] = true

	x := c.opts.Layout.MarginLeft
	y := c.cursorY - h
	c.cur.cs.DrawImageAt(name, x, y, w, h)

	c.cursorY -= h
	return nil
}

func (c *composer) renderBlockQuote(e element.Element) error {
	size := c.opts.Size
	barX := c.opts.Layout.MarginLeft + float64(e.Depth)*12
	textX := barX + 8
	width := c.opts.Layout.Width - c.opts.Layout.MarginRight - textX

	name := c.fontResource(c.opts.Family, false, true)
	lines := wrapText(c.opts.Family, false, true, e.Text, size, width)
	lh := lineHeight(size)

	for _, line := range lines {
		c.ensureSpace(lh)
		c.useFont(name)

		c.cur.cs.SaveState()
		c.cur.cs.SetLineWidth(2)
		c.cur.cs.MoveTo(barX, c.cursorY-lh+2)
		c.cur.cs.LineTo(barX, c.cursorY+2)
		c.cur.cs.Stroke()
		c.cur.cs.RestoreState()

		c.cur.cs.BeginText()
		c.cur.cs.SetFont(name, size)
		c.cur.cs.SetTextPosition(textX, c.cursorY-size)
		c.cur.cs.ShowText(line)
		c.cur.cs.EndText()

		c.cursorY -= lh
	}
	return nil
}

func (c *composer) renderDefinitionItem(e element.Element) error {
	size := c.opts.Size
	lh := lineHeight(size)

	boldName := c.fontResource(c.opts.Family, true, false)
	c.ensureSpace(lh)
	c.useFont(boldName)
	c.cur.cs.BeginText()
	c.cur.cs.SetFont(boldName, size)
	c.cur.cs.SetTextPosition(c.opts.Layout.MarginLeft, c.cursorY-size)
	c.cur.cs.ShowText(e.Term)
	c.cur.cs.EndText()
	c.cursorY -= lh

	return c.renderWrappedLines(e.Definition, c.opts.Family, false, false,
		c.opts.Layout.MarginLeft+18, c.opts.Layout.textWidth()-18)
}

func (c *composer) collectFootnote(e element.Element) {
	if c.cur == nil {
		c.startPage()
	}
	if c.seenFootnotes[e.Label] {
		return
	}
	c.seenFootnotes[e.Label] = true
	c.cur.footnotes = append(c.cur.footnotes, footnoteRef{label: e.Label, text: e.Text})
}

func (c *composer) renderHorizontalRule() error {
	size := c.opts.Size
	lh := lineHeight(size)
	c.ensureSpace(lh * 2)
	c.cursorY -= lh

	c.cur.cs.SaveState()
	c.cur.cs.SetLineWidth(0.5)
	c.cur.cs.MoveTo(c.opts.Layout.MarginLeft, c.cursorY)
	c.cur.cs.LineTo(c.opts.Layout.Width-c.opts.Layout.MarginRight, c.cursorY)
	c.cur.cs.Stroke()
	c.cur.cs.RestoreState()

	c.cursorY -= lh
	return nil
}
