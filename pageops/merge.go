package pageops

import (
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Merge parses every input, copies each input's pages' transitive
// object closure into a new document with non-conflicting object
// numbers, and builds a fresh /Pages root listing all pages in input
// order, per spec §4.9.
func Merge(inputs [][]byte) (*pdfval.Document, error) {
	if len(inputs) == 0 {
		return nil, pdferr.New(pdferr.InvalidInput, "no PDFs to merge")
	}

	out := pdfval.NewDocument("1.4")
	nextNum := 1
	var allPages []pdfval.Reference

	for i, raw := range inputs {
		src, err := pdfdoc.Parse(raw)
		if err != nil {
			return nil, pdferr.Wrapf(pdferr.IOFailure, err, "parsing merge input %d", i+1)
		}
		pageNums, err := src.Pages()
		if err != nil {
			return nil, pdferr.Wrapf(pdferr.UnresolvedReference, err, "reading pages of merge input %d", i+1)
		}

		closure := objectClosure(src, pageNums)
		nums := sortedNums(closure)

		remap := make(map[int]int, len(nums))
		for _, n := range nums {
			remap[n] = nextNum
			nextNum++
		}
		for _, n := range nums {
			out.Objects[remap[n]] = rewriteRefs(src.Objects[n], remap)
		}
		for _, pn := range pageNums {
			allPages = append(allPages, pdfval.Reference{Num: remap[pn]})
		}
	}

	pagesNum, catalogNum := buildPagesTree(out, allPages, &nextNum)
	out.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: catalogNum})
	_ = pagesNum
	return out, nil
}

// buildPagesTree adds a flat /Pages node (Kids = pageRefs, in order)
// and a /Catalog referencing it to doc, allocating object numbers from
// *nextNum, and fixes up each listed page's /Parent to point at the new
// Pages node. It returns the new Pages and Catalog object numbers.
func buildPagesTree(doc *pdfval.Document, pageRefs []pdfval.Reference, nextNum *int) (pagesNum, catalogNum int) {
	pagesNum = *nextNum
	*nextNum++

	kids := make(pdfval.Array, len(pageRefs))
	for i, r := range pageRefs {
		kids[i] = r
	}

	pages := pdfval.NewDict()
	pages.Set(pdfval.Name("Type"), pdfval.Name("Pages"))
	pages.Set(pdfval.Name("Kids"), kids)
	pages.Set(pdfval.Name("Count"), pdfval.Number(len(pageRefs)))
	doc.Objects[pagesNum] = pages

	for _, r := range pageRefs {
		if page, ok := doc.Objects[r.Num].(*pdfval.Dict); ok {
			page.Set(pdfval.Name("Parent"), pdfval.Reference{Num: pagesNum})
		}
	}

	catalogNum = *nextNum
	*nextNum++
	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: pagesNum})
	doc.Objects[catalogNum] = catalog

	return pagesNum, catalogNum
}
