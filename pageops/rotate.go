package pageops

import (
	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Rotate sets /Rotate to angle on every page of input. angle must be
// one of 0, 90, 180, 270; this is an absolute assignment, not additive
// to any existing rotation, per spec §4.9. No content stream is
// touched.
func Rotate(input []byte, angle int) (*pdfval.Document, error) {
	if angle != 0 && angle != 90 && angle != 180 && angle != 270 {
		return nil, pdferr.Newf(pdferr.InvalidInput, "rotation angle must be 0, 90, 180, or 270, got %d", angle)
	}

	doc, err := pdfdoc.Parse(input)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.IOFailure, "parsing rotate input", err)
	}
	pageNums, err := doc.Pages()
	if err != nil {
		return nil, pdferr.Wrap(pdferr.UnresolvedReference, "reading pages of rotate input", err)
	}

	for _, n := range pageNums {
		page, ok := doc.Objects[n].(*pdfval.Dict)
		if !ok {
			continue
		}
		page.Set(pdfval.Name("Rotate"), pdfval.Number(angle))
	}
	return doc, nil
}
