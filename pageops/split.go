package pageops

import (
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Split keeps pages [start, end] (1-based, inclusive) of input, drops
// every object not in their transitive closure (mark-and-sweep), and
// rebuilds /Pages over the kept pages, per spec §4.9.
func Split(input []byte, start, end int) (*pdfval.Document, error) {
	src, err := pdfdoc.Parse(input)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.IOFailure, "parsing split input", err)
	}
	pageNums, err := src.Pages()
	if err != nil {
		return nil, pdferr.Wrap(pdferr.UnresolvedReference, "reading pages of split input", err)
	}
	if start < 1 || end > len(pageNums) || start > end {
		return nil, pdferr.Newf(pdferr.InvalidPageRange, "range [%d,%d] invalid for a %d-page document", start, end, len(pageNums))
	}

	kept := pageNums[start-1 : end]
	closure := objectClosure(src, kept)
	nums := sortedNums(closure)

	out := pdfval.NewDocument(src.Version)
	remap := make(map[int]int, len(nums))
	nextNum := 1
	for _, n := range nums {
		remap[n] = nextNum
		nextNum++
	}
	for _, n := range nums {
		out.Objects[remap[n]] = rewriteRefs(src.Objects[n], remap)
	}

	var keptRefs []pdfval.Reference
	for _, pn := range kept {
		keptRefs = append(keptRefs, pdfval.Reference{Num: remap[pn]})
	}

	pagesNum, catalogNum := buildPagesTree(out, keptRefs, &nextNum)
	out.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: catalogNum})
	_ = pagesNum
	return out, nil
}
