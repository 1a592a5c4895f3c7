package pdfval

import (
	"bytes"
	"fmt"

	"github.com/benedoc-inc/pdfkit/pdferr"
)

// Document is an in-memory PDF: the flat object table plus the trailer
// keys needed to find the catalog and info dictionary. Parent/child
// relationships (pages ↔ pages tree) live as Reference values in this
// table, never as native Go pointers, so the table can be walked and
// rewritten without untangling cycles.
type Document struct {
	Version string
	Objects map[int]Value
	Trailer *Dict
}

// NewDocument creates an empty document ready to receive objects, e.g.
// for constructing one from scratch rather than parsing bytes.
func NewDocument(version string) *Document {
	return &Document{Version: version, Objects: make(map[int]Value), Trailer: NewDict()}
}

// Get returns the raw (possibly-reference) value stored for an object
// number.
func (d *Document) Get(num int) (Value, bool) {
	v, ok := d.Objects[num]
	return v, ok
}

// Resolve follows a chain of References until it reaches a non-Reference
// value (or gives up after a bounded number of hops, to tolerate a
// reference cycle without looping forever).
func (d *Document) Resolve(v Value) Value {
	for i := 0; i < 32; i++ {
		ref, ok := v.(Reference)
		if !ok {
			return v
		}
		next, ok := d.Objects[ref.Num]
		if !ok {
			return Null{}
		}
		v = next
	}
	return Null{}
}

// ResolveRef is Resolve for the common case of looking an object number
// up directly.
func (d *Document) ResolveRef(num int) Value {
	v, ok := d.Objects[num]
	if !ok {
		return Null{}
	}
	return d.Resolve(v)
}

// Root returns the catalog dictionary named by the trailer's /Root.
func (d *Document) Root() (*Dict, error) {
	rootVal, ok := d.Trailer.Get(Name("Root"))
	if !ok {
		return nil, pdferr.New(pdferr.BadXref, "trailer missing /Root")
	}
	dict, ok := d.Resolve(rootVal).(*Dict)
	if !ok {
		return nil, pdferr.New(pdferr.UnresolvedReference, "/Root does not resolve to a dictionary")
	}
	return dict, nil
}

// Pages returns the page object numbers in document order by walking the
// catalog's /Pages tree depth-first.
func (d *Document) Pages() ([]int, error) {
	root, err := d.Root()
	if err != nil {
		return nil, err
	}
	pagesVal, ok := root.Get(Name("Pages"))
	if !ok {
		return nil, pdferr.New(pdferr.UnresolvedReference, "catalog missing /Pages")
	}
	ref, ok := pagesVal.(Reference)
	if !ok {
		return nil, pdferr.New(pdferr.UnresolvedReference, "/Pages is not a reference")
	}

	var out []int
	var walk func(num int) error
	visited := map[int]bool{}
	walk = func(num int) error {
		if visited[num] {
			return nil
		}
		visited[num] = true
		dict, ok := d.Resolve(Reference{Num: num}).(*Dict)
		if !ok {
			return pdferr.Newf(pdferr.UnresolvedReference, "pages-tree node %d is not a dictionary", num)
		}
		typeVal, _ := dict.Get(Name("Type"))
		if tn, ok := typeVal.(Name); ok && tn == "Page" {
			out = append(out, num)
			return nil
		}
		kidsVal, ok := dict.Get(Name("Kids"))
		if !ok {
			return nil
		}
		kids, ok := kidsVal.(Array)
		if !ok {
			return nil
		}
		for _, k := range kids {
			if kref, ok := k.(Reference); ok {
				if err := walk(kref.Num); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(ref.Num); err != nil {
		return nil, err
	}
	return out, nil
}

// Header parses the leading "%PDF-1.x" comment from buf, required within
// the first 1024 bytes.
func Header(buf []byte) (string, error) {
	window := buf
	if len(window) > 1024 {
		window = window[:1024]
	}
	idx := bytes.Index(window, []byte("%PDF-1."))
	if idx < 0 {
		return "", pdferr.New(pdferr.MalformedHeader, "missing %PDF-1.x header in first 1024 bytes")
	}
	if idx+8 > len(window) {
		return "", pdferr.New(pdferr.MalformedHeader, "truncated header")
	}
	digit := window[idx+7]
	if digit < '0' || digit > '7' {
		return "", pdferr.New(pdferr.MalformedHeader, "unsupported PDF minor version")
	}
	return fmt.Sprintf("1.%c", digit), nil
}

// HasEOF reports whether %%EOF appears within the last 1024 bytes.
func HasEOF(buf []byte) bool {
	window := buf
	if len(window) > 1024 {
		window = window[len(window)-1024:]
	}
	return bytes.Contains(window, []byte("%%EOF"))
}

// objstmDecoder mirrors the shape of pdfval/objstm.Decode (object number
// plus value per entry); declared here (not imported) to avoid a
// pdfval <-> objstm import cycle, since objstm itself depends on pdfval's
// Value/Stream types. objstm.Decode returns its own named Entry type, so
// it is not assignable to objstmDecoder, and nothing uses this type.
type objstmDecoder func(s *Stream) ([]struct {
	Num   int
	Value Value
}, error)
