// Package objstm decodes PDF-1.5 object streams (/Type /ObjStm), spec
// component C5: a stream holding /N indirect objects, none of which
// carry their own "obj"/"endobj" wrapper.
package objstm

import (
	"strconv"

	"github.com/benedoc-inc/pdfkit/filter"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Entry is one object decoded out of an object stream.
type Entry struct {
	Num   int
	Value pdfval.Value
}

// Decode returns every object stored in an object stream.
func Decode(s *pdfval.Stream) ([]Entry, error) {
	n, ok := intField(s.Dict, "N")
	if !ok {
		return nil, pdferr.New(pdferr.CorruptStream, "object stream missing /N")
	}
	first, ok := intField(s.Dict, "First")
	if !ok {
		return nil, pdferr.New(pdferr.CorruptStream, "object stream missing /First")
	}

	data := s.Data
	if filterName, ok := s.Dict.Get(pdfval.Name("Filter")); ok {
		name, _ := filterName.(pdfval.Name)
		if name == "FlateDecode" {
			decoded, err := filter.DecodeFlate(data)
			if err != nil {
				return nil, err
			}
			data = decoded
		}
	}

	header := data
	if first < len(data) {
		header = data[:first]
	}
	l := pdfval.NewLexer(header)

	type pair struct{ num, offset int }
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		numTok, err := l.Next()
		if err != nil {
			return nil, err
		}
		offTok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if numTok.Kind != pdfval.TokInteger || offTok.Kind != pdfval.TokInteger {
			return nil, pdferr.New(pdferr.CorruptStream, "malformed object stream header")
		}
		num, _ := strconv.Atoi(numTok.Text)
		off, _ := strconv.Atoi(offTok.Text)
		pairs = append(pairs, pair{num, off})
	}

	entries := make([]Entry, 0, len(pairs))
	for i, p := range pairs {
		start := first + p.offset
		end := len(data)
		if i+1 < len(pairs) {
			end = first + pairs[i+1].offset
		}
		if start < 0 || start > len(data) || end > len(data) || end < start {
			return nil, pdferr.New(pdferr.CorruptStream, "object stream entry out of range")
		}
		vl := pdfval.NewLexer(data[start:end])
		v, err := pdfval.ParseValue(vl)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Num: p.num, Value: v})
	}
	return entries, nil
}

func intField(d *pdfval.Dict, key string) (int, bool) {
	v, ok := d.Get(pdfval.Name(key))
	if !ok {
		return 0, false
	}
	n, ok := v.(pdfval.Number)
	if !ok {
		return 0, false
	}
	return int(n), true
}
