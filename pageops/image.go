package pageops

import (
	"bytes"
	"image/jpeg"

	"github.com/benedoc-inc/pdfkit/compose"
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// addedImageResourceKey is the XObject resource name AddImage binds its
// stamped image to on the target page.
const addedImageResourceKey = "AddedIm"

// AddImage stamps a JPEG image onto the page numbered pageIndex
// (1-based) of input at the rectangle with lower-left corner (x, y) and
// the given width/height, per the CLI's add-image subcommand (spec
// §6.3). It reuses watermark.go's technique: the page's existing
// content is left untouched, a new content stream drawing the image is
// appended to /Contents, and an XObject resource entry is added.
func AddImage(input []byte, pageIndex int, data []byte, x, y, width, height float64) (*pdfval.Document, error) {
	doc, err := pdfdoc.Parse(input)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.IOFailure, "parsing add-image input", err)
	}
	pageNums, err := doc.Pages()
	if err != nil {
		return nil, pdferr.Wrap(pdferr.UnresolvedReference, "reading pages of add-image input", err)
	}
	if pageIndex < 1 || pageIndex > len(pageNums) {
		return nil, pdferr.Newf(pdferr.InvalidPageRange, "page %d out of range for a %d-page document", pageIndex, len(pageNums))
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, pdferr.Wrap(pdferr.UnsupportedImageFormat, "decoding JPEG dimensions", err)
	}

	page, ok := doc.Objects[pageNums[pageIndex-1]].(*pdfval.Dict)
	if !ok {
		return nil, pdferr.Newf(pdferr.UnresolvedReference, "page object %d is not a dictionary", pageNums[pageIndex-1])
	}

	nextNum := maxObjectNumber(doc) + 1
	imgNum := nextNum
	nextNum++
	imgDict := pdfval.NewDict()
	imgDict.Set(pdfval.Name("Type"), pdfval.Name("XObject"))
	imgDict.Set(pdfval.Name("Subtype"), pdfval.Name("Image"))
	imgDict.Set(pdfval.Name("Width"), pdfval.Number(cfg.Width))
	imgDict.Set(pdfval.Name("Height"), pdfval.Number(cfg.Height))
	imgDict.Set(pdfval.Name("ColorSpace"), pdfval.Name("DeviceRGB"))
	imgDict.Set(pdfval.Name("BitsPerComponent"), pdfval.Number(8))
	imgDict.Set(pdfval.Name("Filter"), pdfval.Name("DCTDecode"))
	imgDict.Set(pdfval.Name("Length"), pdfval.Number(len(data)))
	doc.Objects[imgNum] = &pdfval.Stream{Dict: imgDict, Data: data}

	content := compose.NewContentStream().DrawImageAt("/"+addedImageResourceKey, x, y, width, height).Bytes()
	streamNum := nextNum
	nextNum++
	streamDict := pdfval.NewDict()
	streamDict.Set(pdfval.Name("Length"), pdfval.Number(len(content)))
	doc.Objects[streamNum] = &pdfval.Stream{Dict: streamDict, Data: content}

	appendPageContent(page, streamNum)
	addXObjectResource(doc, page, addedImageResourceKey, imgNum)

	return doc, nil
}

// addXObjectResource adds a /Resources /XObject entry for key -> num,
// creating /Resources and /XObject dictionaries on the page if absent.
func addXObjectResource(doc *pdfval.Document, page *pdfval.Dict, key string, num int) {
	resources := resourcesDict(doc, page)
	xobjVal, ok := resources.Get(pdfval.Name("XObject"))
	xobjDict, isDict := doc.Resolve(xobjVal).(*pdfval.Dict)
	if !ok || !isDict {
		xobjDict = pdfval.NewDict()
		resources.Set(pdfval.Name("XObject"), xobjDict)
	}
	xobjDict.Set(pdfval.Name(key), pdfval.Reference{Num: num})
}
