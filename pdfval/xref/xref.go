// Package xref implements the cross-reference and trailer machinery of
// spec component C4: locating startxref, reading classical xref tables
// and PDF-1.5 cross-reference streams (including /Prev chains), and
// writing both forms back out.
package xref

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/benedoc-inc/pdfkit/filter"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// EntryType is the xref entry classification shared by both the
// classical table and the stream encoding.
type EntryType int

const (
	Free       EntryType = 0
	InUse      EntryType = 1
	Compressed EntryType = 2 // inside an object stream
)

// Entry describes where one object number lives.
type Entry struct {
	Type      EntryType
	Offset    int64 // for InUse: byte offset in the file
	Gen       int   // for InUse: generation
	StreamObj int   // for Compressed: containing /ObjStm object number
	Index     int   // for Compressed: index within that object stream
}

// Table maps object numbers to their location, newest /Prev section
// winning ties per spec §4.4.
type Table map[int]Entry

// Read locates startxref, follows the referenced section (classical or
// stream), walks any /Prev chain, and returns the merged object table
// along with the effective trailer dictionary (the first section's
// trailer wins for /Root, /Info, /Size, /Encrypt, per spec). The third
// result names the object number of every self-describing cross-reference
// stream found along the way (empty for a classical-only file) — callers
// that expose an object count to users exclude these, since a PDF-1.5
// xref stream is xref bookkeeping, not document content.
func Read(buf []byte) (Table, *pdfval.Dict, map[int]bool, error) {
	startOffset, err := findStartxref(buf)
	if err != nil {
		return nil, nil, nil, err
	}

	table := Table{}
	var trailer *pdfval.Dict
	xrefStreamNums := map[int]bool{}
	seen := map[int64]bool{}
	offset := startOffset

	for {
		if offset < 0 || offset >= int64(len(buf)) {
			return nil, nil, nil, pdferr.New(pdferr.BadXref, "xref offset out of range")
		}
		if seen[offset] {
			break // cyclic /Prev chain; stop rather than loop forever
		}
		seen[offset] = true

		sectionTable, sectionTrailer, prev, streamObjNum, err := readSection(buf, offset)
		if err != nil {
			return nil, nil, nil, err
		}
		for num, e := range sectionTable {
			if _, exists := table[num]; !exists {
				table[num] = e
			}
		}
		if streamObjNum > 0 {
			xrefStreamNums[streamObjNum] = true
		}
		if trailer == nil {
			trailer = sectionTrailer
		} else {
			mergeTrailer(trailer, sectionTrailer)
		}
		if prev == nil {
			break
		}
		offset = *prev
	}

	if trailer == nil {
		return nil, nil, nil, pdferr.New(pdferr.BadXref, "no trailer found")
	}
	return table, trailer, xrefStreamNums, nil
}

func mergeTrailer(dst, src *pdfval.Dict) {
	for _, k := range src.Keys() {
		if _, ok := dst.Get(k); !ok {
			v, _ := src.Get(k)
			dst.Set(k, v)
		}
	}
}

func findStartxref(buf []byte) (int64, error) {
	tail := buf
	const window = 2048
	if len(buf) > window {
		tail = buf[len(buf)-window:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, pdferr.New(pdferr.MissingStartxref, "startxref token not found")
	}
	l := pdfval.NewLexerAt(tail, idx+len("startxref"))
	tok, err := l.Next()
	if err != nil || tok.Kind != pdfval.TokInteger {
		return 0, pdferr.New(pdferr.MissingStartxref, "startxref not followed by an offset")
	}
	n, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return 0, pdferr.Wrap(pdferr.MissingStartxref, "invalid startxref offset", err)
	}
	return n, nil
}

// readSection reads one xref section (classical or stream) at offset and
// returns its table, trailer, /Prev offset if any, and — for a stream
// section — the object number of the xref stream itself (0 for a
// classical section, which has none).
func readSection(buf []byte, offset int64) (Table, *pdfval.Dict, *int64, int, error) {
	l := pdfval.NewLexerAt(buf, int(offset))
	save := l.Pos()
	tok, err := l.Next()
	if err != nil {
		return nil, nil, nil, 0, err
	}
	if tok.Kind == pdfval.TokKeyword && tok.Text == "xref" {
		table, trailer, prev, err := readClassicalSection(buf, l)
		return table, trailer, prev, 0, err
	}
	l.SeekTo(save)
	return readStreamSection(buf, int(offset))
}

func readClassicalSection(buf []byte, l *pdfval.Lexer) (Table, *pdfval.Dict, *int64, error) {
	table := Table{}
	for {
		save := l.Pos()
		tok, err := l.Next()
		if err != nil {
			return nil, nil, nil, err
		}
		if tok.Kind == pdfval.TokKeyword && tok.Text == "trailer" {
			break
		}
		if tok.Kind != pdfval.TokInteger {
			l.SeekTo(save)
			break
		}
		first, _ := strconv.Atoi(tok.Text)
		countTok, err := l.Next()
		if err != nil || countTok.Kind != pdfval.TokInteger {
			return nil, nil, nil, pdferr.New(pdferr.BadXref, "malformed xref subsection header")
		}
		count, _ := strconv.Atoi(countTok.Text)

		pos := l.Pos()
		// Skip the EOL that follows the subsection header.
		for pos < len(buf) && (buf[pos] == '\r' || buf[pos] == '\n' || buf[pos] == ' ') {
			pos++
			break
		}
		for i := 0; i < count; i++ {
			entryStart := pos
			if entryStart+20 > len(buf) {
				return nil, nil, nil, pdferr.New(pdferr.BadXref, "truncated xref entry")
			}
			line := buf[entryStart : entryStart+20]
			offStr := string(bytes.TrimSpace(line[0:10]))
			genStr := string(bytes.TrimSpace(line[11:16]))
			typeCh := line[17]
			off, _ := strconv.ParseInt(offStr, 10, 64)
			gen, _ := strconv.Atoi(genStr)
			num := first + i
			if _, exists := table[num]; !exists {
				if typeCh == 'n' {
					table[num] = Entry{Type: InUse, Offset: off, Gen: gen}
				} else {
					table[num] = Entry{Type: Free, Gen: gen}
				}
			}
			pos += 20
		}
		l.SeekTo(pos)
	}

	trailerVal, err := pdfval.ParseValue(l)
	if err != nil {
		return nil, nil, nil, pdferr.Wrap(pdferr.BadXref, "malformed trailer dictionary", err)
	}
	dict, ok := trailerVal.(*pdfval.Dict)
	if !ok {
		return nil, nil, nil, pdferr.New(pdferr.BadXref, "trailer is not a dictionary")
	}
	var prev *int64
	if pv, ok := dict.Get(pdfval.Name("Prev")); ok {
		if n, ok := pv.(pdfval.Number); ok {
			v := int64(n)
			prev = &v
		}
	}
	return table, dict, prev, nil
}

func readStreamSection(buf []byte, offset int) (Table, *pdfval.Dict, *int64, int, error) {
	obj, _, err := pdfval.ParseIndirectObjectAt(buf, offset)
	if err != nil {
		return nil, nil, nil, 0, pdferr.Wrap(pdferr.BadXref, "malformed xref stream object", err)
	}
	stream, ok := obj.Value.(*pdfval.Stream)
	if !ok {
		return nil, nil, nil, 0, pdferr.New(pdferr.BadXref, "xref stream object is not a stream")
	}
	typeName, _ := stream.Dict.Get(pdfval.Name("Type"))
	if n, ok := typeName.(pdfval.Name); !ok || n != "XRef" {
		return nil, nil, nil, 0, pdferr.New(pdferr.BadXref, "object at startxref is not /Type /XRef")
	}

	data, err := decompressStream(stream)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	wArr, ok := stream.Dict.Get(pdfval.Name("W"))
	if !ok {
		return nil, nil, nil, 0, pdferr.New(pdferr.BadXref, "xref stream missing /W")
	}
	widths, err := intArray(wArr)
	if err != nil || len(widths) != 3 {
		return nil, nil, nil, 0, pdferr.New(pdferr.BadXref, "xref stream /W must have 3 entries")
	}
	w1, w2, w3 := widths[0], widths[1], widths[2]
	entryWidth := w1 + w2 + w3

	size := 0
	if sv, ok := stream.Dict.Get(pdfval.Name("Size")); ok {
		if n, ok := sv.(pdfval.Number); ok {
			size = int(n)
		}
	}
	var index []int
	if iv, ok := stream.Dict.Get(pdfval.Name("Index")); ok {
		index, _ = intArray(iv)
	}
	if len(index) == 0 {
		index = []int{0, size}
	}

	table := Table{}
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+entryWidth > len(data) {
				return nil, nil, nil, 0, pdferr.New(pdferr.BadXref, "truncated xref stream data")
			}
			entry := data[pos : pos+entryWidth]
			pos += entryWidth
			num := first + j

			typeField := int64(1)
			if w1 > 0 {
				typeField = beUint(entry[0:w1])
			}
			f2 := beUint(entry[w1 : w1+w2])
			f3 := beUint(entry[w1+w2 : w1+w2+w3])

			if _, exists := table[num]; exists {
				continue
			}
			switch typeField {
			case 0:
				table[num] = Entry{Type: Free, Gen: int(f3)}
			case 1:
				table[num] = Entry{Type: InUse, Offset: f2, Gen: int(f3)}
			case 2:
				table[num] = Entry{Type: Compressed, StreamObj: int(f2), Index: int(f3)}
			}
		}
	}

	var prev *int64
	if pv, ok := stream.Dict.Get(pdfval.Name("Prev")); ok {
		if n, ok := pv.(pdfval.Number); ok {
			v := int64(n)
			prev = &v
		}
	}
	return table, stream.Dict, prev, obj.Num, nil
}

func decompressStream(s *pdfval.Stream) ([]byte, error) {
	filterVal, ok := s.Dict.Get(pdfval.Name("Filter"))
	if !ok {
		return s.Data, nil
	}
	name, ok := filterVal.(pdfval.Name)
	if !ok {
		return nil, pdferr.New(pdferr.UnsupportedFilter, "xref stream has non-Name /Filter")
	}
	if name != "FlateDecode" {
		return nil, pdferr.Newf(pdferr.UnsupportedFilter, "xref stream filter %q not supported", name)
	}
	return filter.DecodeFlate(s.Data)
}

func intArray(v pdfval.Value) ([]int, error) {
	arr, ok := v.(pdfval.Array)
	if !ok {
		return nil, fmt.Errorf("not an array")
	}
	out := make([]int, len(arr))
	for i, item := range arr {
		n, ok := item.(pdfval.Number)
		if !ok {
			return nil, fmt.Errorf("array element is not a number")
		}
		out[i] = int(n)
	}
	return out, nil
}

func beUint(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// WriteClassical appends a classical xref table and trailer to buf for
// the given object offsets (object 0 is always free).
func WriteClassical(buf *bytes.Buffer, offsets map[int]int64, size int, trailerExtra *pdfval.Dict) {
	buf.WriteString("xref\n")
	fmt.Fprintf(buf, "0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		off := offsets[i]
		fmt.Fprintf(buf, "%010d %05d n \n", off, 0)
	}
	buf.WriteString("trailer\n")
	pdfval.Serialize(buf, trailerExtra)
	buf.WriteByte('\n')
}

// WriteStreamSection writes a PDF-1.5 cross-reference stream object
// describing offsets for objects [0, size) plus the xref stream object
// itself (object number size-1, already reserved by the caller). It
// returns the byte offset the xref stream object starts at.
func WriteStreamSection(buf *bytes.Buffer, offsets map[int]int64, size int, xrefObjNum int, trailerExtra *pdfval.Dict) int64 {
	maxOffset := int64(buf.Len()) + 256
	for _, off := range offsets {
		if off > maxOffset {
			maxOffset = off
		}
	}
	w2 := bytesNeeded(maxOffset)
	const w1, w3 = 1, 1
	entryWidth := w1 + w2 + w3

	data := make([]byte, 0, size*entryWidth)
	data = append(data, make([]byte, entryWidth)...) // object 0: free

	for i := 1; i < size; i++ {
		entry := make([]byte, entryWidth)
		if i == xrefObjNum {
			entry[0] = 1
			// offset patched below once known
		} else if off, ok := offsets[i]; ok {
			entry[0] = 1
			putBE(entry[w1:w1+w2], off)
		}
		data = append(data, entry...)
	}

	xrefPos := int64(buf.Len())
	xrefEntryStart := xrefObjNum * entryWidth
	putBE(data[xrefEntryStart+w1:xrefEntryStart+w1+w2], xrefPos)

	compressed := filter.EncodeFlate(data)

	dict := cloneDictForWrite(trailerExtra)
	dict.Set(pdfval.Name("Type"), pdfval.Name("XRef"))
	dict.Set(pdfval.Name("Size"), pdfval.Number(size))
	dict.Set(pdfval.Name("W"), pdfval.Array{pdfval.Number(w1), pdfval.Number(w2), pdfval.Number(w3)})
	dict.Set(pdfval.Name("Filter"), pdfval.Name("FlateDecode"))

	stream := &pdfval.Stream{Dict: dict, Data: compressed}
	pdfval.SerializeIndirect(buf, xrefObjNum, 0, stream)

	return xrefPos
}

func bytesNeeded(n int64) int {
	if n <= 0 {
		return 1
	}
	w := 0
	for n > 0 {
		w++
		n >>= 8
	}
	return w
}

func putBE(dst []byte, v int64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v & 0xff)
		v >>= 8
	}
}

func cloneDictForWrite(d *pdfval.Dict) *pdfval.Dict {
	out := pdfval.NewDict()
	if d == nil {
		return out
	}
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		out.Set(k, v)
	}
	return out
}
