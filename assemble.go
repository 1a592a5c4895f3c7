package pdfkit

import (
	"sort"
	"strconv"

	"github.com/benedoc-inc/pdfkit/compose"
	"github.com/benedoc-inc/pdfkit/pageops"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// assemble turns a compose.Document — rendered page content streams
// plus the font/image resource-key intermediate representation C8
// produces — into a real pdfval.Document object graph: a Font object
// per stable (family, bold, italic) combination, an Image XObject
// stream per embedded JPEG, a content-stream object and a Resources
// dictionary per page, and the Catalog/Pages tree tying it together.
// This is the one place the composer's output crosses into the C3/C4
// object model; compose itself never allocates an object number, so
// it stays decoupled from xref/object-numbering concerns (see
// DESIGN.md's compose entry).
func assemble(doc *compose.Document) (*pdfval.Document, error) {
	out := pdfval.NewDocument("1.4")
	nextNum := 1
	alloc := func() int {
		n := nextNum
		nextNum++
		return n
	}

	fontNums := make(map[string]int, len(doc.Fonts))
	for _, key := range sortedFontKeys(doc.Fonts) {
		num := alloc()
		font := pdfval.NewDict()
		font.Set(pdfval.Name("Type"), pdfval.Name("Font"))
		font.Set(pdfval.Name("Subtype"), pdfval.Name("Type1"))
		font.Set(pdfval.Name("BaseFont"), pdfval.Name(doc.Fonts[key]))
		out.Objects[num] = font
		fontNums[key] = num
	}

	imageNums := make(map[string]int, len(doc.Images))
	for _, key := range sortedImageKeys(doc.Images) {
		img := doc.Images[key]
		num := alloc()
		streamDict := pdfval.NewDict()
		streamDict.Set(pdfval.Name("Type"), pdfval.Name("XObject"))
		streamDict.Set(pdfval.Name("Subtype"), pdfval.Name("Image"))
		streamDict.Set(pdfval.Name("Width"), pdfval.Number(img.Width))
		streamDict.Set(pdfval.Name("Height"), pdfval.Number(img.Height))
		streamDict.Set(pdfval.Name("ColorSpace"), pdfval.Name("DeviceRGB"))
		streamDict.Set(pdfval.Name("BitsPerComponent"), pdfval.Number(8))
		streamDict.Set(pdfval.Name("Filter"), pdfval.Name("DCTDecode"))
		streamDict.Set(pdfval.Name("Length"), pdfval.Number(len(img.Data)))
		out.Objects[num] = &pdfval.Stream{Dict: streamDict, Data: img.Data}
		imageNums[key] = num
	}

	pagesNum := alloc()
	var kids pdfval.Array

	for _, p := range doc.Pages {
		contentNum := alloc()
		contentDict := pdfval.NewDict()
		contentDict.Set(pdfval.Name("Length"), pdfval.Number(len(p.Content)))
		out.Objects[contentNum] = &pdfval.Stream{Dict: contentDict, Data: p.Content}

		resources := pdfval.NewDict()
		if len(p.FontsUsed) > 0 {
			fontsDict := pdfval.NewDict()
			for _, key := range sortByResourceIndex(p.FontsUsed) {
				num, ok := fontNums[key]
				if !ok {
					return nil, pdferr.Newf(pdferr.InvalidInput, "page references unknown font resource %q", key)
				}
				fontsDict.Set(pdfval.Name(key[1:]), pdfval.Reference{Num: num})
			}
			resources.Set(pdfval.Name("Font"), fontsDict)
		}
		if len(p.ImagesUsed) > 0 {
			xobjDict := pdfval.NewDict()
			for _, key := range sortByResourceIndex(p.ImagesUsed) {
				num, ok := imageNums[key]
				if !ok {
					return nil, pdferr.Newf(pdferr.InvalidInput, "page references unknown image resource %q", key)
				}
				xobjDict.Set(pdfval.Name(key[1:]), pdfval.Reference{Num: num})
			}
			resources.Set(pdfval.Name("XObject"), xobjDict)
		}

		pageNum := alloc()
		page := pdfval.NewDict()
		page.Set(pdfval.Name("Type"), pdfval.Name("Page"))
		page.Set(pdfval.Name("Parent"), pdfval.Reference{Num: pagesNum})
		page.Set(pdfval.Name("MediaBox"), pdfval.Array{
			pdfval.Number(0), pdfval.Number(0),
			pdfval.Number(doc.Layout.Width), pdfval.Number(doc.Layout.Height),
		})
		page.Set(pdfval.Name("Contents"), pdfval.Reference{Num: contentNum})
		page.Set(pdfval.Name("Resources"), resources)
		if p.Rotate != 0 {
			page.Set(pdfval.Name("Rotate"), pdfval.Number(p.Rotate))
		}
		if len(p.Annotations) > 0 {
			annots := make(pdfval.Array, len(p.Annotations))
			for i, a := range p.Annotations {
				annots[i] = pageops.AnnotationDict(pageops.Annotation{
					Kind:       pageops.AnnotationKind(a.Kind),
					Rect:       a.Rect,
					URL:        a.URL,
					Contents:   a.Contents,
					QuadPoints: a.QuadPoints,
				})
			}
			page.Set(pdfval.Name("Annots"), annots)
		}

		out.Objects[pageNum] = page
		kids = append(kids, pdfval.Reference{Num: pageNum})
	}

	pages := pdfval.NewDict()
	pages.Set(pdfval.Name("Type"), pdfval.Name("Pages"))
	pages.Set(pdfval.Name("Kids"), kids)
	pages.Set(pdfval.Name("Count"), pdfval.Number(len(kids)))
	out.Objects[pagesNum] = pages

	catalogNum := alloc()
	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: pagesNum})
	out.Objects[catalogNum] = catalog

	out.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: catalogNum})
	return out, nil
}

// sortedFontKeys and sortedImageKeys give deterministic iteration order
// over compose.Document's resource maps (Go map order is not stable),
// so that object-id assignment is deterministic given identical input,
// per spec §5.
func sortedFontKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return sortByResourceIndex(keys)
}

func sortedImageKeys(m map[string]compose.ImageResource) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return sortByResourceIndex(keys)
}

// sortByResourceIndex orders resource keys ("/F1", "/F2", ..., "/F10")
// by their trailing numeric suffix rather than lexically, so "/F10"
// doesn't sort before "/F2".
func sortByResourceIndex(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Slice(out, func(i, j int) bool {
		return resourceIndex(out[i]) < resourceIndex(out[j])
	})
	return out
}

func resourceIndex(key string) int {
	i := len(key)
	for i > 0 && key[i-1] >= '0' && key[i-1] <= '9' {
		i--
	}
	n, _ := strconv.Atoi(key[i:])
	return n
}
