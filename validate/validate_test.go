package validate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMinimalDoc() *pdfval.Document {
	doc := pdfval.NewDocument("1.4")

	page := pdfval.NewDict()
	page.Set(pdfval.Name("Type"), pdfval.Name("Page"))
	page.Set(pdfval.Name("Parent"), pdfval.Reference{Num: 2})
	doc.Objects[3] = page

	pages := pdfval.NewDict()
	pages.Set(pdfval.Name("Type"), pdfval.Name("Pages"))
	pages.Set(pdfval.Name("Kids"), pdfval.Array{pdfval.Reference{Num: 3}})
	pages.Set(pdfval.Name("Count"), pdfval.Number(1))
	doc.Objects[2] = pages

	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: 2})
	doc.Objects[1] = catalog

	doc.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: 1})
	return doc
}

func TestValidateValidDocument(t *testing.T) {
	doc := buildMinimalDoc()
	buf, err := pdfdoc.Write(doc)
	require.NoError(t, err)

	r := Validate(buf)
	assert.True(t, r.Valid, "errors: %v", r.Errors)
	assert.Empty(t, r.Errors)
	assert.Equal(t, 1, r.PageCount)
	assert.Equal(t, 3, r.ObjectCount)
}

func TestValidateMissingHeader(t *testing.T) {
	doc := buildMinimalDoc()
	buf, err := pdfdoc.Write(doc)
	require.NoError(t, err)

	stripped := bytes.Replace(buf, []byte("%PDF-1.4\n"), []byte(""), 1)
	r := Validate(stripped)
	assert.False(t, r.Valid)
	assert.NotEmpty(t, r.Errors)
}

func TestValidateBadCountIsError(t *testing.T) {
	doc := buildMinimalDoc()
	pages := doc.Objects[2].(*pdfval.Dict)
	pages.Set(pdfval.Name("Count"), pdfval.Number(5))

	buf, err := pdfdoc.Write(doc)
	require.NoError(t, err)

	r := Validate(buf)
	assert.False(t, r.Valid)
	found := false
	for _, e := range r.Errors {
		if bytes.Contains([]byte(e), []byte("Count")) {
			found = true
		}
	}
	assert.True(t, found, "expected a /Count mismatch error, got: %v", r.Errors)
}

func TestValidateMissingCatalogType(t *testing.T) {
	doc := buildMinimalDoc()
	catalog := doc.Objects[1].(*pdfval.Dict)
	*catalog = *pdfval.NewDict()
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: 2})

	buf, err := pdfdoc.Write(doc)
	require.NoError(t, err)

	r := Validate(buf)
	assert.False(t, r.Valid)
}

// TestValidateXrefStreamDocument covers spec scenario S6: a PDF 1.5 file
// whose cross-reference section is a compressed stream (/W field widths
// wide enough to need 3 bytes per offset) rather than a classical table.
// validate_pdf_bytes must still report valid=true and the xref stream's
// own object excluded from object_count.
func TestValidateXrefStreamDocument(t *testing.T) {
	doc := pdfval.NewDocument("1.5")

	pages := pdfval.NewDict()
	pages.Set(pdfval.Name("Type"), pdfval.Name("Pages"))
	pages.Set(pdfval.Name("Kids"), pdfval.Array{})
	pages.Set(pdfval.Name("Count"), pdfval.Number(0))
	// Padding to push object offsets past 65535, so WriteVersion's xref
	// stream needs a 3-byte offset field — the /W [1 3 1] shape S6 names.
	pages.Set(pdfval.Name("Padding"), pdfval.NewString(strings.Repeat("A", 70000)))
	doc.Objects[2] = pages

	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: 2})
	doc.Objects[1] = catalog

	doc.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: 1})

	buf, err := pdfdoc.WriteVersion(doc, "1.5")
	require.NoError(t, err)
	assert.Contains(t, string(buf), "/Type /XRef")
	assert.Contains(t, string(buf), "/W [1 3 1]")

	r := Validate(buf)
	assert.True(t, r.Valid, "errors: %v", r.Errors)
	assert.Equal(t, 0, r.PageCount)
	assert.Equal(t, 2, r.ObjectCount)
}

func TestCountKeywordOccurrencesExcludesSubstring(t *testing.T) {
	n := countKeywordOccurrences([]byte("1 0 obj\n<< >>\nendobj\n"), "obj")
	assert.Equal(t, 1, n)
	n = countKeywordOccurrences([]byte("stream\ndata\nendstream\n"), "stream")
	assert.Equal(t, 1, n)
}
