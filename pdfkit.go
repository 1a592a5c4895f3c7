// Package pdfkit is the toolkit's top-level programmatic surface (spec
// §6.2): Markdown parsing, PDF generation from an element sequence,
// structural validation, parsing, text extraction, and the page-level
// operations (merge/split/rotate/reorder/watermark/metadata/
// annotations), re-exported from the component packages so a caller
// needs only this one import for common use. Callers who want direct
// access to a component (e.g. to build an element.Element sequence by
// hand rather than through Markdown) import the component package
// itself; nothing here is the only way to reach that functionality.
package pdfkit

import (
	"time"

	"github.com/benedoc-inc/pdfkit/compose"
	"github.com/benedoc-inc/pdfkit/element"
	"github.com/benedoc-inc/pdfkit/extract"
	"github.com/benedoc-inc/pdfkit/markdown"
	"github.com/benedoc-inc/pdfkit/pageops"
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/benedoc-inc/pdfkit/validate"
)

// Re-exported types, so callers building against this package alone
// don't need a second import for the types its functions pass around.
type (
	Element       = element.Element
	PageLayout    = compose.PageLayout
	FontFamily    = compose.FontFamily
	ComposeOptions = compose.Options
	Document      = pdfval.Document
	Validation    = validate.Result
	Metadata      = pageops.Metadata
	Annotation    = pageops.Annotation
	AnnotationKind = pageops.AnnotationKind
)

// The three standard Type1 font families spec §3.2/§4.8 supports.
const (
	Helvetica = compose.Helvetica
	Times     = compose.Times
	Courier   = compose.Courier
)

// The three annotation kinds spec §4.9 supports.
const (
	AnnotationText      = pageops.AnnotationText
	AnnotationLink      = pageops.AnnotationLink
	AnnotationHighlight = pageops.AnnotationHighlight
)

// Portrait returns the default 612x792 layout with 72pt margins on
// every side, per spec §6.2.
func Portrait() PageLayout { return compose.Portrait() }

// Landscape returns the 792x612 layout (Portrait with width/height
// swapped), same margins.
func Landscape() PageLayout { return compose.Landscape() }

// DefaultComposeOptions returns Helvetica 11pt on a portrait page, the
// composer's baseline configuration.
func DefaultComposeOptions() ComposeOptions { return compose.DefaultOptions() }

// ParseMarkdown tokenizes src into the ordered element sequence the
// composer consumes, per spec §4.10.
func ParseMarkdown(src string) []Element {
	return markdown.Parse(src)
}

// GeneratePDFBytes composes elements into paginated pages under the
// given font family, size, and layout, then assembles and serializes a
// complete PDF file, per spec §6.2.
func GeneratePDFBytes(elements []Element, family FontFamily, size float64, layout PageLayout) ([]byte, error) {
	return GeneratePDFBytesWithOptions(elements, ComposeOptions{Family: family, Size: size, Layout: layout})
}

// GeneratePDFBytesWithOptions is GeneratePDFBytes taking a pre-built
// ComposeOptions, for callers that already assembled one (e.g.
// CreatePDFWithImages below).
func GeneratePDFBytesWithOptions(elements []Element, opts ComposeOptions) ([]byte, error) {
	composed, err := compose.Compose(elements, opts)
	if err != nil {
		return nil, err
	}
	doc, err := assemble(composed)
	if err != nil {
		return nil, err
	}
	return pdfdoc.Write(doc)
}

// ValidatePDFBytes runs the structural validator's nine-point checklist
// against buf, per spec §4.7/§6.2.
func ValidatePDFBytes(buf []byte) *Validation {
	return validate.Validate(buf)
}

// ParsePDF parses buf into a Document object graph, per spec §6.2.
func ParsePDF(buf []byte) (*Document, error) {
	return pdfdoc.Parse(buf)
}

// ExtractText recovers the plain text of every page of doc, in
// document order, per spec §4.6/§6.2.
func ExtractText(doc *Document) (string, error) {
	return extract.Text(doc)
}

// MergePDFs concatenates every input's pages, in input order, into one
// output PDF, per spec §4.9/§6.2.
func MergePDFs(inputs [][]byte) ([]byte, error) {
	doc, err := pageops.Merge(inputs)
	if err != nil {
		return nil, err
	}
	return pdfdoc.Write(doc)
}

// SplitPDF keeps pages [start, end] (1-based, inclusive) of input.
func SplitPDF(input []byte, start, end int) ([]byte, error) {
	doc, err := pageops.Split(input, start, end)
	if err != nil {
		return nil, err
	}
	return pdfdoc.Write(doc)
}

// RotatePDF sets every page's /Rotate to angle (0, 90, 180, or 270),
// absolute rather than additive.
func RotatePDF(input []byte, angle int) ([]byte, error) {
	doc, err := pageops.Rotate(input, angle)
	if err != nil {
		return nil, err
	}
	return pdfdoc.Write(doc)
}

// ReorderPages rewrites input's page order to the given 1-based
// permutation.
func ReorderPages(input []byte, permutation []int) ([]byte, error) {
	doc, err := pageops.Reorder(input, permutation)
	if err != nil {
		return nil, err
	}
	return pdfdoc.Write(doc)
}

// WatermarkPDF draws text, rotated 45 degrees and centered at the given
// opacity, on every page of input.
func WatermarkPDF(input []byte, text string, size, opacity float64) ([]byte, error) {
	doc, err := pageops.Watermark(input, text, size, opacity)
	if err != nil {
		return nil, err
	}
	return pdfdoc.Write(doc)
}

// CreatePDFWithMetadata composes elements exactly as GeneratePDFBytes
// does, then stamps the document-info dictionary described by meta
// before serializing, per spec §4.9/§6.2. now supplies the /CreationDate
// and /ModDate timestamp (this toolkit's core never reads the clock
// itself — see pageops' SetMetadata).
func CreatePDFWithMetadata(elements []Element, opts ComposeOptions, meta Metadata, now time.Time) ([]byte, error) {
	composed, err := compose.Compose(elements, opts)
	if err != nil {
		return nil, err
	}
	doc, err := assemble(composed)
	if err != nil {
		return nil, err
	}
	pageops.SetMetadata(doc, meta, now)
	return pdfdoc.Write(doc)
}

// PageAnnotations assigns a set of extra annotations to add to one
// 1-based page index, for CreatePDFWithAnnotations.
type PageAnnotations struct {
	Page        int
	Annotations []Annotation
}

// CreatePDFWithAnnotations composes elements, then adds each entry's
// annotations to its page before serializing, per spec §4.9/§6.2.
// Elements that already produce annotations on their own (Link text)
// keep those; this is for annotations a caller wants to add directly
// rather than by writing a Link element.
func CreatePDFWithAnnotations(elements []Element, opts ComposeOptions, extra []PageAnnotations) ([]byte, error) {
	composed, err := compose.Compose(elements, opts)
	if err != nil {
		return nil, err
	}
	doc, err := assemble(composed)
	if err != nil {
		return nil, err
	}
	for _, pa := range extra {
		for _, ann := range pa.Annotations {
			if err := pageops.AddAnnotation(doc, pa.Page, ann); err != nil {
				return nil, err
			}
		}
	}
	return pdfdoc.Write(doc)
}

// CreatePDFWithImages composes elements — which may include
// element.Image/element.ImageFromBytes entries — and serializes the
// result. It is GeneratePDFBytes under a name that matches spec §6.2;
// image placement is already part of the ordinary element sequence, so
// no separate image-specific code path is needed here.
func CreatePDFWithImages(elements []Element, opts ComposeOptions) ([]byte, error) {
	return GeneratePDFBytesWithOptions(elements, opts)
}
