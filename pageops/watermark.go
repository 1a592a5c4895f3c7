package pageops

import (
	"math"

	"github.com/benedoc-inc/pdfkit/compose"
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Watermark appends a content stream to every page of input that
// draws text, gray-filled, at the given opacity, rotated 45 degrees
// and centered on the page — saving and restoring graphics state
// around the addition so the page's existing content is untouched, per
// spec §4.9. Opacity is applied through an ExtGState's /CA and /ca,
// not a plain gray fill, per the spec's explicit mandate.
func Watermark(input []byte, text string, size, opacity float64) (*pdfval.Document, error) {
	doc, err := pdfdoc.Parse(input)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.IOFailure, "parsing watermark input", err)
	}
	pageNums, err := doc.Pages()
	if err != nil {
		return nil, pdferr.Wrap(pdferr.UnresolvedReference, "reading pages of watermark input", err)
	}

	nextNum := maxObjectNumber(doc) + 1

	fontNum := nextNum
	nextNum++
	font := pdfval.NewDict()
	font.Set(pdfval.Name("Type"), pdfval.Name("Font"))
	font.Set(pdfval.Name("Subtype"), pdfval.Name("Type1"))
	font.Set(pdfval.Name("BaseFont"), pdfval.Name(compose.BaseFontName(compose.Helvetica, false, false)))
	doc.Objects[fontNum] = font

	gsNum := nextNum
	nextNum++
	gs := pdfval.NewDict()
	gs.Set(pdfval.Name("Type"), pdfval.Name("ExtGState"))
	gs.Set(pdfval.Name("CA"), pdfval.Number(opacity))
	gs.Set(pdfval.Name("ca"), pdfval.Number(opacity))
	doc.Objects[gsNum] = gs

	for _, pn := range pageNums {
		page, ok := doc.Objects[pn].(*pdfval.Dict)
		if !ok {
			continue
		}

		width, height := pageDimensions(doc, page)
		content := watermarkContent(text, size, width, height, gray)

		streamNum := nextNum
		nextNum++
		streamDict := pdfval.NewDict()
		streamDict.Set(pdfval.Name("Length"), pdfval.Number(len(content)))
		doc.Objects[streamNum] = &pdfval.Stream{Dict: streamDict, Data: content}

		appendPageContent(page, streamNum)
		addFontResource(doc, page, "/WMFont", fontNum)
		addExtGStateResource(doc, page, "/WMGS", gsNum)
	}

	return doc, nil
}

const gray = 0.5

func watermarkContent(text string, size, width, height, textGray float64) []byte {
	w := compose.StringWidth(compose.Helvetica, false, false, text, size)
	rad := 45 * math.Pi / 180
	cosv, sinv := math.Cos(rad), math.Sin(rad)
	cx, cy := width/2, height/2

	cs := compose.NewContentStream().
		SaveState().
		SetFillColorGray(textGray).
		SetExtGState("/WMGS").
		SetMatrix(cosv, sinv, -sinv, cosv, cx, cy).
		BeginText().
		SetFont("/WMFont", size).
		SetTextPosition(-w/2, 0).
		ShowText(text).
		EndText().
		RestoreState()
	return cs.Bytes()
}

// maxObjectNumber returns the highest object number currently in use,
// so new objects can be appended without colliding; 0 if doc has none.
func maxObjectNumber(doc *pdfval.Document) int {
	max := 0
	for n := range doc.Objects {
		if n > max {
			max = n
		}
	}
	return max
}

// pageDimensions resolves a page's /MediaBox (falling back to its
// ancestor-resolved value if the page itself doesn't carry one, or to
// US Letter if none is found anywhere).
func pageDimensions(doc *pdfval.Document, page *pdfval.Dict) (width, height float64) {
	mbVal, ok := page.Get(pdfval.Name("MediaBox"))
	node := page
	for hops := 0; !ok && hops < 32; hops++ {
		parentVal, hasParent := node.Get(pdfval.Name("Parent"))
		if !hasParent {
			break
		}
		parent, isDict := doc.Resolve(parentVal).(*pdfval.Dict)
		if !isDict {
			break
		}
		node = parent
		mbVal, ok = node.Get(pdfval.Name("MediaBox"))
	}
	if !ok {
		return 612, 792
	}
	arr, ok := doc.Resolve(mbVal).(pdfval.Array)
	if !ok || len(arr) != 4 {
		return 612, 792
	}
	llx, _ := arr[0].(pdfval.Number)
	lly, _ := arr[1].(pdfval.Number)
	urx, _ := arr[2].(pdfval.Number)
	ury, _ := arr[3].(pdfval.Number)
	return float64(urx - llx), float64(ury - lly)
}

// appendPageContent turns /Contents into (or extends) an array and
// appends a reference to the new content stream, so the watermark
// layer draws after the page's own content.
func appendPageContent(page *pdfval.Dict, streamNum int) {
	ref := pdfval.Reference{Num: streamNum}
	existing, ok := page.Get(pdfval.Name("Contents"))
	if !ok {
		page.Set(pdfval.Name("Contents"), ref)
		return
	}
	switch v := existing.(type) {
	case pdfval.Array:
		page.Set(pdfval.Name("Contents"), append(v, ref))
	default:
		page.Set(pdfval.Name("Contents"), pdfval.Array{v, ref})
	}
}

// addFontResource adds a /Resources /Font entry for key -> fontNum,
// creating /Resources and /Font dictionaries on the page if absent.
func addFontResource(doc *pdfval.Document, page *pdfval.Dict, key string, fontNum int) {
	resources := resourcesDict(doc, page)
	fonts, ok := resources.Get(pdfval.Name("Font"))
	fontsDict, isDict := doc.Resolve(fonts).(*pdfval.Dict)
	if !ok || !isDict {
		fontsDict = pdfval.NewDict()
		resources.Set(pdfval.Name("Font"), fontsDict)
	}
	fontsDict.Set(pdfval.Name(key[1:]), pdfval.Reference{Num: fontNum})
}

// addExtGStateResource adds a /Resources /ExtGState entry for key -> gsNum.
func addExtGStateResource(doc *pdfval.Document, page *pdfval.Dict, key string, gsNum int) {
	resources := resourcesDict(doc, page)
	states, ok := resources.Get(pdfval.Name("ExtGState"))
	statesDict, isDict := doc.Resolve(states).(*pdfval.Dict)
	if !ok || !isDict {
		statesDict = pdfval.NewDict()
		resources.Set(pdfval.Name("ExtGState"), statesDict)
	}
	statesDict.Set(pdfval.Name(key[1:]), pdfval.Reference{Num: gsNum})
}

func resourcesDict(doc *pdfval.Document, page *pdfval.Dict) *pdfval.Dict {
	resVal, ok := page.Get(pdfval.Name("Resources"))
	if ok {
		if d, ok := doc.Resolve(resVal).(*pdfval.Dict); ok {
			return d
		}
	}
	d := pdfval.NewDict()
	page.Set(pdfval.Name("Resources"), d)
	return d
}
