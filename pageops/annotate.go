package pageops

import (
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// AnnotationKind is one of the three annotation subtypes spec §4.9 names.
type AnnotationKind string

const (
	AnnotationText      AnnotationKind = "Text"
	AnnotationLink      AnnotationKind = "Link"
	AnnotationHighlight AnnotationKind = "Highlight"
)

// Annotation describes one page annotation to add. Rect is always
// required; URL is used by Link, Contents by Text, QuadPoints (8
// numbers per quadrilateral) by Highlight.
type Annotation struct {
	Kind       AnnotationKind
	Rect       [4]float64
	URL        string
	Contents   string
	QuadPoints []float64
}

// AddAnnotation appends ann to the page numbered pageIndex (1-based)
// of doc's page tree, building the /Annots array if absent.
func AddAnnotation(doc *pdfval.Document, pageIndex int, ann Annotation) error {
	pageNums, err := doc.Pages()
	if err != nil {
		return err
	}
	if pageIndex < 1 || pageIndex > len(pageNums) {
		return pdferr.Newf(pdferr.InvalidPageRange, "page %d out of range for a %d-page document", pageIndex, len(pageNums))
	}
	page, ok := doc.Objects[pageNums[pageIndex-1]].(*pdfval.Dict)
	if !ok {
		return pdferr.Newf(pdferr.UnresolvedReference, "page object %d is not a dictionary", pageNums[pageIndex-1])
	}

	dict := AnnotationDict(ann)

	existing, ok := page.Get(pdfval.Name("Annots"))
	var annots pdfval.Array
	if ok {
		if arr, ok := doc.Resolve(existing).(pdfval.Array); ok {
			annots = arr
		}
	}
	annots = append(annots, dict)
	page.Set(pdfval.Name("Annots"), annots)
	return nil
}

// AnnotationDict builds the /Annot dictionary for ann, per spec §4.9's
// Text/Link/Highlight set. Exported so assemble.go's compose.Document ->
// pdfval.Document assembler can build the same shape of annotation dict
// when a page's /Annots is populated from scratch, without duplicating
// the Kind-specific field rules AddAnnotation already implements.
func AnnotationDict(ann Annotation) *pdfval.Dict {
	d := pdfval.NewDict()
	d.Set(pdfval.Name("Type"), pdfval.Name("Annot"))
	d.Set(pdfval.Name("Subtype"), pdfval.Name(ann.Kind))
	d.Set(pdfval.Name("Rect"), rectArray(ann.Rect))

	switch ann.Kind {
	case AnnotationLink:
		action := pdfval.NewDict()
		action.Set(pdfval.Name("S"), pdfval.Name("URI"))
		action.Set(pdfval.Name("URI"), pdfval.NewString(ann.URL))
		d.Set(pdfval.Name("A"), action)
	case AnnotationHighlight:
		quads := make(pdfval.Array, len(ann.QuadPoints))
		for i, q := range ann.QuadPoints {
			quads[i] = pdfval.Number(q)
		}
		d.Set(pdfval.Name("QuadPoints"), quads)
	case AnnotationText:
		d.Set(pdfval.Name("Contents"), pdfval.NewString(ann.Contents))
	}
	return d
}

func rectArray(r [4]float64) pdfval.Array {
	return pdfval.Array{
		pdfval.Number(r[0]),
		pdfval.Number(r[1]),
		pdfval.Number(r[2]),
		pdfval.Number(r[3]),
	}
}
