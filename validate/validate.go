// Package validate implements the structural validator of spec
// component C7: a fixed nine-point checklist over raw PDF bytes plus
// the parsed object graph, returning blocking errors separately from
// non-blocking warnings.
package validate

import (
	"bytes"
	"fmt"

	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/benedoc-inc/pdfkit/pdfval/xref"
)

// Result is the validator's report: errors block Valid, warnings never
// do.
type Result struct {
	Valid       bool
	Errors      []string
	Warnings    []string
	PageCount   int
	ObjectCount int
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate runs the full nine-point checklist against buf.
func Validate(buf []byte) *Result {
	r := &Result{}

	checkHeader(buf, r)
	checkEOF(buf, r)

	startOffset, haveStartxref := checkStartxref(buf, r)
	if !haveStartxref {
		r.Valid = len(r.Errors) == 0
		return r
	}

	table, trailer, err := checkXrefParseable(buf, startOffset, r)
	if err != nil {
		r.Valid = len(r.Errors) == 0
		return r
	}

	checkTrailerKeys(trailer, r)

	doc, err := pdfdoc.Parse(buf)
	if err != nil {
		r.fail("document could not be fully parsed: %v", err)
		r.Valid = false
		return r
	}
	r.ObjectCount = len(doc.Objects)

	root := checkCatalog(doc, r)
	checkPagesTree(doc, root, r)

	checkObjEndobjBalance(buf, r)
	checkStreamLengths(doc, r)

	_ = table
	r.Valid = len(r.Errors) == 0
	return r
}

// 1. "%PDF-1." followed by a digit 0-7 within the first 1024 bytes.
func checkHeader(buf []byte, r *Result) {
	if _, err := pdfval.Header(buf); err != nil {
		r.fail("%v", err)
	}
}

// 2. "%%EOF" within the last 1024 bytes.
func checkEOF(buf []byte, r *Result) {
	if !pdfval.HasEOF(buf) {
		r.fail("missing %%%%EOF within the last 1024 bytes")
	}
}

// 3. "startxref" token present and yields an offset within the file.
func checkStartxref(buf []byte, r *Result) (int64, bool) {
	const window = 2048
	tail := buf
	if len(buf) > window {
		tail = buf[len(buf)-window:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		r.fail("startxref token not found")
		return 0, false
	}
	l := pdfval.NewLexerAt(tail, idx+len("startxref"))
	tok, err := l.Next()
	if err != nil || tok.Kind != pdfval.TokInteger {
		r.fail("startxref not followed by an integer offset")
		return 0, false
	}
	var offset int64
	fmt.Sscanf(tok.Text, "%d", &offset)
	if offset < 0 || offset >= int64(len(buf)) {
		r.fail("startxref offset %d is out of range", offset)
		return 0, false
	}
	return offset, true
}

// 4. An xref table or xref stream is parseable at that offset.
func checkXrefParseable(buf []byte, offset int64, r *Result) (xref.Table, *pdfval.Dict, error) {
	table, trailer, _, err := xref.Read(buf)
	if err != nil {
		r.fail("xref section at offset %d is not parseable: %v", offset, err)
		return nil, nil, err
	}
	return table, trailer, nil
}

// 5. Trailer (or xref-stream dict) contains /Size and /Root.
func checkTrailerKeys(trailer *pdfval.Dict, r *Result) {
	if _, ok := trailer.Get(pdfval.Name("Size")); !ok {
		r.fail("trailer missing /Size")
	}
	if _, ok := trailer.Get(pdfval.Name("Root")); !ok {
		r.fail("trailer missing /Root")
	}
}

// 6. /Root resolves to a dictionary with /Type /Catalog.
func checkCatalog(doc *pdfval.Document, r *Result) *pdfval.Dict {
	root, err := doc.Root()
	if err != nil {
		r.fail("%v", err)
		return nil
	}
	typeVal, ok := root.Get(pdfval.Name("Type"))
	if !ok {
		r.fail("/Root dictionary missing /Type")
		return root
	}
	if n, ok := typeVal.(pdfval.Name); !ok || n != "Catalog" {
		r.fail("/Root dictionary /Type is not /Catalog")
	}
	return root
}

// 7. /Pages resolves to a dictionary with /Type /Pages and /Count equal
// to the number of reachable leaf /Page nodes.
func checkPagesTree(doc *pdfval.Document, root *pdfval.Dict, r *Result) {
	if root == nil {
		return
	}
	pagesVal, ok := root.Get(pdfval.Name("Pages"))
	if !ok {
		r.fail("catalog missing /Pages")
		return
	}
	pagesDict, ok := doc.Resolve(pagesVal).(*pdfval.Dict)
	if !ok {
		r.fail("/Pages does not resolve to a dictionary")
		return
	}
	typeVal, _ := pagesDict.Get(pdfval.Name("Type"))
	if n, ok := typeVal.(pdfval.Name); !ok || n != "Pages" {
		r.fail("/Pages dictionary /Type is not /Pages")
	}

	leaves, err := doc.Pages()
	if err != nil {
		r.fail("pages tree could not be walked: %v", err)
		return
	}
	r.PageCount = len(leaves)

	countVal, ok := pagesDict.Get(pdfval.Name("Count"))
	if !ok {
		r.fail("/Pages dictionary missing /Count")
		return
	}
	count, ok := countVal.(pdfval.Number)
	if !ok {
		r.fail("/Pages /Count is not a number")
		return
	}
	if int(count) != len(leaves) {
		r.fail("/Pages /Count is %d but %d leaf /Page nodes are reachable", int(count), len(leaves))
	}
}

// 8. obj count equals endobj count; stream count equals endstream count.
func checkObjEndobjBalance(buf []byte, r *Result) {
	objCount := countKeywordOccurrences(buf, "obj")
	endobjCount := countKeywordOccurrences(buf, "endobj")
	if objCount != endobjCount {
		r.fail("obj count (%d) does not match endobj count (%d)", objCount, endobjCount)
	}

	// countKeywordOccurrences requires a non-word boundary on both sides,
	// so "stream" embedded in "endstream" never matches the "stream"
	// search (the preceding 'd' is a word character) — the two counts
	// below are independent, not one needing adjustment for the other.
	streamCount := countKeywordOccurrences(buf, "stream")
	endstreamCount := countKeywordOccurrences(buf, "endstream")
	if streamCount != endstreamCount {
		r.fail("stream count (%d) does not match endstream count (%d)", streamCount, endstreamCount)
	}
}

func countKeywordOccurrences(buf []byte, keyword string) int {
	count := 0
	kw := []byte(keyword)
	for i := 0; i+len(kw) <= len(buf); i++ {
		if !bytes.Equal(buf[i:i+len(kw)], kw) {
			continue
		}
		before := i == 0 || isWordBoundary(buf[i-1])
		after := i+len(kw) == len(buf) || isWordBoundary(buf[i+len(kw)])
		if before && after {
			count++
		}
	}
	return count
}

func isWordBoundary(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return false
	case b >= 'A' && b <= 'Z':
		return false
	case b >= '0' && b <= '9':
		return false
	default:
		return true
	}
}

// 9. Every /Length on a stream matches the measured payload length
// (warning if off by <= 2, error otherwise).
func checkStreamLengths(doc *pdfval.Document, r *Result) {
	for num, v := range doc.Objects {
		stream, ok := v.(*pdfval.Stream)
		if !ok {
			continue
		}
		lengthVal, ok := stream.Dict.Get(pdfval.Name("Length"))
		if !ok {
			r.warn("object %d: stream missing /Length", num)
			continue
		}
		length, ok := doc.Resolve(lengthVal).(pdfval.Number)
		if !ok {
			r.warn("object %d: /Length does not resolve to a number", num)
			continue
		}
		declared := int(length)
		measured := len(stream.Data)
		diff := declared - measured
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			// exact match
		case diff <= 2:
			r.warn("object %d: /Length %d differs from measured length %d by %d bytes", num, declared, measured, diff)
		default:
			r.fail("object %d: /Length %d does not match measured length %d", num, declared, measured)
		}
	}
}
