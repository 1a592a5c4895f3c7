package pageops

import (
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Reorder rewrites input's top-level /Pages /Kids array to list pages
// in the order given by permutation, a list of 1-based page indices
// each appearing at most once (spec §4.9). Pages whose index is
// omitted from permutation are dropped from the output page order (but
// not swept from the object table — Split is the operation responsible
// for object removal).
func Reorder(input []byte, permutation []int) (*pdfval.Document, error) {
	doc, err := pdfdoc.Parse(input)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.IOFailure, "parsing reorder input", err)
	}
	pageNums, err := doc.Pages()
	if err != nil {
		return nil, pdferr.Wrap(pdferr.UnresolvedReference, "reading pages of reorder input", err)
	}

	seen := make(map[int]bool, len(permutation))
	newKids := make(pdfval.Array, 0, len(permutation))
	for _, idx := range permutation {
		if idx < 1 || idx > len(pageNums) {
			return nil, pdferr.Newf(pdferr.InvalidPageRange, "permutation index %d out of range for a %d-page document", idx, len(pageNums))
		}
		if seen[idx] {
			return nil, pdferr.Newf(pdferr.InvalidInput, "permutation index %d repeated", idx)
		}
		seen[idx] = true
		newKids = append(newKids, pdfval.Reference{Num: pageNums[idx-1]})
	}

	root, err := doc.Root()
	if err != nil {
		return nil, err
	}
	pagesVal, ok := root.Get(pdfval.Name("Pages"))
	if !ok {
		return nil, pdferr.New(pdferr.UnresolvedReference, "catalog missing /Pages")
	}
	pagesRef, ok := pagesVal.(pdfval.Reference)
	if !ok {
		return nil, pdferr.New(pdferr.UnresolvedReference, "/Pages is not a reference")
	}
	pagesDict, ok := doc.Objects[pagesRef.Num].(*pdfval.Dict)
	if !ok {
		return nil, pdferr.New(pdferr.UnresolvedReference, "/Pages does not resolve to a dictionary")
	}

	pagesDict.Set(pdfval.Name("Kids"), newKids)
	pagesDict.Set(pdfval.Name("Count"), pdfval.Number(len(newKids)))
	return doc, nil
}
