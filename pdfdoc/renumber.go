package pdfdoc

import (
	"sort"

	"github.com/benedoc-inc/pdfkit/pdfval"
)

// renumber compacts doc's object numbers into a contiguous [1, N] range,
// preserving relative order, and rewrites every Reference in the object
// tree to match. It returns the compacted document along with the new
// object numbers of the catalog (/Root) and info dictionary (/Info), so
// Write can rebuild the trailer.
func renumber(doc *pdfval.Document) (compact *pdfval.Document, rootNum, infoNum int) {
	oldNums := make([]int, 0, len(doc.Objects))
	for n := range doc.Objects {
		oldNums = append(oldNums, n)
	}
	sort.Ints(oldNums)

	remap := make(map[int]int, len(oldNums))
	for i, old := range oldNums {
		remap[old] = i + 1
	}

	out := &pdfval.Document{
		Version: doc.Version,
		Objects: make(map[int]pdfval.Value, len(oldNums)),
		Trailer: doc.Trailer,
	}
	for _, old := range oldNums {
		out.Objects[remap[old]] = rewriteRefs(doc.Objects[old], remap)
	}

	if doc.Trailer != nil {
		if rv, ok := doc.Trailer.Get(pdfval.Name("Root")); ok {
			if ref, ok := rv.(pdfval.Reference); ok {
				rootNum = remap[ref.Num]
			}
		}
		if iv, ok := doc.Trailer.Get(pdfval.Name("Info")); ok {
			if ref, ok := iv.(pdfval.Reference); ok {
				infoNum = remap[ref.Num]
			}
		}
	}

	return out, rootNum, infoNum
}

// rewriteRefs returns a copy of v with every Reference renumbered per
// remap. Scalars are returned unchanged (Value's concrete scalar types
// are immutable, so no copy is needed there).
func rewriteRefs(v pdfval.Value, remap map[int]int) pdfval.Value {
	switch val := v.(type) {
	case pdfval.Reference:
		if newNum, ok := remap[val.Num]; ok {
			return pdfval.Reference{Num: newNum, Gen: 0}
		}
		return val
	case pdfval.Array:
		out := make(pdfval.Array, len(val))
		for i, item := range val {
			out[i] = rewriteRefs(item, remap)
		}
		return out
	case *pdfval.Dict:
		out := pdfval.NewDict()
		for _, k := range val.Keys() {
			child, _ := val.Get(k)
			out.Set(k, rewriteRefs(child, remap))
		}
		return out
	case *pdfval.Stream:
		return &pdfval.Stream{Dict: rewriteRefs(val.Dict, remap).(*pdfval.Dict), Data: val.Data}
	default:
		return v
	}
}
