// Package pageops implements the page-level operations of spec
// component C9: merge, split, rotate, reorder, watermark, annotations,
// and metadata. Every operation works at the granularity of whole Page
// dictionaries — content streams are copied as opaque byte payloads,
// never re-parsed, per spec §4.9.
package pageops

import (
	"sort"

	"github.com/benedoc-inc/pdfkit/pdfval"
)

// objectClosure walks the transitive object graph reachable from
// roots (page object numbers), following References inside
// Dict/Array/Stream values, and returns the set of object numbers
// visited (roots included). It deliberately does not follow a Dict's
// /Parent entry: that would walk back up into the page tree and pull
// in sibling pages never meant to be part of the closure, defeating
// both Merge's per-input isolation and Split's mark-and-sweep.
func objectClosure(doc *pdfval.Document, roots []int) map[int]bool {
	visited := map[int]bool{}
	var walk func(num int)
	walk = func(num int) {
		if visited[num] {
			return
		}
		visited[num] = true
		v, ok := doc.Objects[num]
		if !ok {
			return
		}
		walkValue(v, walk)
	}
	for _, r := range roots {
		walk(r)
	}
	return visited
}

func walkValue(v pdfval.Value, walk func(int)) {
	switch val := v.(type) {
	case pdfval.Reference:
		walk(val.Num)
	case pdfval.Array:
		for _, item := range val {
			walkValue(item, walk)
		}
	case *pdfval.Dict:
		for _, k := range val.Keys() {
			if k == pdfval.Name("Parent") {
				continue
			}
			child, _ := val.Get(k)
			walkValue(child, walk)
		}
	case *pdfval.Stream:
		walkValue(val.Dict, walk)
	}
}

// rewriteRefs returns a copy of v with every Reference renumbered per
// remap; references to objects outside remap are left unchanged (after
// objectClosure, those are the /Parent entries it does not follow). Parallels
// pdfdoc's unexported renumber helper, reimplemented here since pageops
// builds merged/split documents directly rather than through pdfdoc.Write.
func rewriteRefs(v pdfval.Value, remap map[int]int) pdfval.Value {
	switch val := v.(type) {
	case pdfval.Reference:
		if newNum, ok := remap[val.Num]; ok {
			return pdfval.Reference{Num: newNum}
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

// sortedNums returns the keys of a visited-set in ascending order, so
// copy order (and therefore remapped numbering) is deterministic.
func sortedNums(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
