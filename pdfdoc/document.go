// Package pdfdoc ties the lower-level pdfval/pdfval-xref/pdfval-objstm
// packages together into whole-file parse and write operations: locating
// and following the xref chain, expanding object streams, and — on the
// way back out — renumbering objects into a contiguous range and
// emitting either a classical xref table (PDF < 1.5) or a compressed
// cross-reference stream (PDF >= 1.5) plus trailer, per spec §4.4/§6.1.
// Nothing below parses content streams or page layout; that is the
// extract and compose packages' job, both built on top of this one.
package pdfdoc

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/benedoc-inc/pdfkit/pdfval/objstm"
	"github.com/benedoc-inc/pdfkit/pdfval/xref"
)

// Parse builds a *pdfval.Document from raw PDF bytes: header/EOF checks,
// the xref walk (classical table or stream, following /Prev), and
// expansion of any /Type /ObjStm entries the xref table points into.
func Parse(buf []byte) (*pdfval.Document, error) {
	version, err := pdfval.Header(buf)
	if err != nil {
		return nil, err
	}
	if !pdfval.HasEOF(buf) {
		return nil, pdferr.New(pdferr.MissingEOF, "missing %%EOF within last 1024 bytes")
	}

	table, trailer, xrefStreamNums, err := xref.Read(buf)
	if err != nil {
		return nil, err
	}

	doc := &pdfval.Document{Version: version, Objects: make(map[int]pdfval.Value), Trailer: trailer}

	streamHolders := map[int]bool{}
	for num, entry := range table {
		if entry.Type != xref.InUse {
			continue
		}
		if xrefStreamNums[num] {
			// A PDF-1.5 cross-reference stream describes the file's
			// object layout, not document content; exclude it from the
			// object graph and ObjectCount, per spec §6.1.
			continue
		}
		obj, _, err := pdfval.ParseIndirectObjectAt(buf, int(entry.Offset))
		if err != nil {
			return nil, pdferr.Wrapf(pdferr.CorruptStream, err, "object %d at offset %d", num, entry.Offset)
		}
		doc.Objects[num] = obj.Value
		if _, ok := obj.Value.(*pdfval.Stream); ok {
			streamHolders[num] = true
		}
	}

	needed := map[int]bool{}
	for _, entry := range table {
		if entry.Type == xref.Compressed {
			needed[entry.StreamObj] = true
		}
	}
	for streamNum := range needed {
		s, ok := doc.Objects[streamNum].(*pdfval.Stream)
		if !ok {
			continue
		}
		entries, err := objstm.Decode(s)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if _, exists := doc.Objects[e.Num]; !exists {
				doc.Objects[e.Num] = e.Value
			}
		}
	}

	return doc, nil
}

// Write renumbers doc's objects into a contiguous [1, N] range (stable,
// by ascending original object number) and serializes it per spec §6.1:
// header, binary marker, indirect objects, xref section, trailer,
// startxref, %%EOF. The xref section is a classical table for PDF
// versions below 1.5, or a compressed cross-reference stream (spec §6.1's
// PDF-1.5 form) from 1.5 onward.
func Write(doc *pdfval.Document) ([]byte, error) {
	return WriteVersion(doc, doc.Version)
}

// WriteVersion is Write with an explicit header version, for callers
// that want to force e.g. "1.4" regardless of doc.Version.
func WriteVersion(doc *pdfval.Document, version string) ([]byte, error) {
	if version == "" {
		version = "1.4"
	}
	compact, rootNum, infoNum := renumber(doc)

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + version + "\n")
	buf.WriteString("%\xE2\xE3\xCF\xD3\n")

	nums := make([]int, 0, len(compact.Objects))
	for n := range compact.Objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	offsets := make(map[int]int64, len(nums))
	for _, n := range nums {
		offsets[n] = int64(buf.Len())
		pdfval.SerializeIndirect(&buf, n, 0, compact.Objects[n])
	}

	maxNum := 0
	if len(nums) > 0 {
		maxNum = nums[len(nums)-1]
	}

	trailer := pdfval.NewDict()
	if rootNum > 0 {
		trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: rootNum})
	}
	if infoNum > 0 {
		trailer.Set(pdfval.Name("Info"), pdfval.Reference{Num: infoNum})
	}

	var xrefOffset int64
	if usesXrefStream(version) {
		xrefObjNum := maxNum + 1
		size := xrefObjNum + 1
		trailer.Set(pdfval.Name("Size"), pdfval.Number(size))
		xrefOffset = xref.WriteStreamSection(&buf, offsets, size, xrefObjNum, trailer)
	} else {
		size := maxNum + 1
		trailer.Set(pdfval.Name("Size"), pdfval.Number(size))
		xrefOffset = int64(buf.Len())
		xref.WriteClassical(&buf, offsets, size, trailer)
	}

	buf.WriteString("startxref\n")
	buf.WriteString(strconv.FormatInt(xrefOffset, 10))
	buf.WriteString("\n%%EOF\n")

	return buf.Bytes(), nil
}

// usesXrefStream reports whether version (e.g. "1.7") is PDF 1.5 or
// later, the point at which spec §6.1 allows a compressed
// cross-reference stream in place of the classical table.
func usesXrefStream(version string) bool {
	major, minor, ok := parsePDFVersion(version)
	if !ok {
		return false
	}
	return major > 1 || (major == 1 && minor >= 5)
}

func parsePDFVersion(version string) (major, minor int, ok bool) {
	parts := strings.SplitN(version, ".", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return major, minor, true
}
