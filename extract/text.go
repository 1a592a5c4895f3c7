package extract

import (
	"strings"

	"github.com/benedoc-inc/pdfkit/filter"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Text extracts the plain text of every page in doc, in document order,
// with a newline separating pages. Content streams split across
// multiple /Contents entries are concatenated before scanning, per
// spec §4.6.
func Text(doc *pdfval.Document) (string, error) {
	pageNums, err := doc.Pages()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for i, num := range pageNums {
		if i > 0 {
			out.WriteString("\n")
		}
		if err := extractPage(doc, num, &out); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func extractPage(doc *pdfval.Document, pageNum int, out *strings.Builder) error {
	page, ok := doc.Resolve(pdfval.Reference{Num: pageNum}).(*pdfval.Dict)
	if !ok {
		return pdferr.Newf(pdferr.UnresolvedReference, "page object %d is not a dictionary", pageNum)
	}

	data, err := pageContentBytes(doc, page)
	if err != nil {
		return err
	}

	fontEnc := pageFontEncodings(doc, page)
	return extractFromStream(data, fontEnc, out)
}

// pageContentBytes resolves and decompresses a page's /Contents, which
// may be a single stream or an array of streams concatenated with a
// separating newline.
func pageContentBytes(doc *pdfval.Document, page *pdfval.Dict) ([]byte, error) {
	contentsVal, ok := page.Get(pdfval.Name("Contents"))
	if !ok {
		return nil, nil
	}

	resolved := doc.Resolve(contentsVal)
	var streams []*pdfval.Stream
	switch v := resolved.(type) {
	case *pdfval.Stream:
		streams = append(streams, v)
	case pdfval.Array:
		for _, item := range v {
			if s, ok := doc.Resolve(item).(*pdfval.Stream); ok {
				streams = append(streams, s)
			}
		}
	}

	var buf strings.Builder
	for i, s := range streams {
		if i > 0 {
			buf.WriteString("\n")
		}
		decoded, err := decodeStream(s)
		if err != nil {
			return nil, err
		}
		buf.Write(decoded)
	}
	return []byte(buf.String()), nil
}

func decodeStream(s *pdfval.Stream) ([]byte, error) {
	data := s.Data
	filterVal, ok := s.Dict.Get(pdfval.Name("Filter"))
	if !ok {
		return data, nil
	}

	var names []string
	switch fv := filterVal.(type) {
	case pdfval.Name:
		names = append(names, string(fv))
	case pdfval.Array:
		for _, n := range fv {
			if name, ok := n.(pdfval.Name); ok {
				names = append(names, string(name))
			}
		}
	}

	for _, name := range names {
		decoded, err := filter.Decode(data, name)
		if err != nil {
			return nil, err
		}
		data = decoded
	}
	return data, nil
}

// pageFontEncodings builds the resource-font-key -> encoding-name map
// Tf consults, by resolving each entry of the page's /Resources /Font
// dictionary and reading its /Encoding name. Fonts with no /Encoding
// entry (or a CID/Identity font, out of scope for this single-byte
// decoder) default to WinAnsiEncoding at the call site.
func pageFontEncodings(doc *pdfval.Document, page *pdfval.Dict) map[pdfval.Name]string {
	out := map[pdfval.Name]string{}

	resourcesVal, ok := page.Get(pdfval.Name("Resources"))
	if !ok {
		return out
	}
	resources, ok := doc.Resolve(resourcesVal).(*pdfval.Dict)
	if !ok {
		return out
	}
	fontsVal, ok := resources.Get(pdfval.Name("Font"))
	if !ok {
		return out
	}
	fonts, ok := doc.Resolve(fontsVal).(*pdfval.Dict)
	if !ok {
		return out
	}

	for _, key := range fonts.Keys() {
		fontVal, _ := fonts.Get(key)
		fontDict, ok := doc.Resolve(fontVal).(*pdfval.Dict)
		if !ok {
			continue
		}
		encName := "WinAnsiEncoding"
		if ev, ok := fontDict.Get(pdfval.Name("Encoding")); ok {
			if n, ok := ev.(pdfval.Name); ok {
				encName = string(n)
			}
		}
		out[pdfval.Name("/"+string(key))] = encName
	}
	return out
}
