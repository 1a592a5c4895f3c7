package pdfdoc

import (
	"testing"

	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDoc() *pdfval.Document {
	doc := pdfval.NewDocument("1.4")

	content := []byte("BT /F1 12 Tf (hello) Tj ET")
	streamDict := pdfval.NewDict()
	streamDict.Set(pdfval.Name("Length"), pdfval.Number(len(content)))
	doc.Objects[4] = &pdfval.Stream{Dict: streamDict, Data: content}

	font := pdfval.NewDict()
	font.Set(pdfval.Name("Type"), pdfval.Name("Font"))
	font.Set(pdfval.Name("Subtype"), pdfval.Name("Type1"))
	font.Set(pdfval.Name("BaseFont"), pdfval.Name("Helvetica"))
	doc.Objects[5] = font

	fontsDict := pdfval.NewDict()
	fontsDict.Set(pdfval.Name("F1"), pdfval.Reference{Num: 5})
	resources := pdfval.NewDict()
	resources.Set(pdfval.Name("Font"), fontsDict)

	page := pdfval.NewDict()
	page.Set(pdfval.Name("Type"), pdfval.Name("Page"))
	page.Set(pdfval.Name("Parent"), pdfval.Reference{Num: 2})
	page.Set(pdfval.Name("Contents"), pdfval.Reference{Num: 4})
	page.Set(pdfval.Name("Resources"), resources)
	page.Set(pdfval.Name("MediaBox"), pdfval.Array{pdfval.Number(0), pdfval.Number(0), pdfval.Number(612), pdfval.Number(792)})
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

func TestWriteThenParseRoundTrips(t *testing.T) {
	doc := buildTestDoc()

	buf, err := Write(doc)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "%PDF-1.4")
	assert.Contains(t, string(buf), "%%EOF")

	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, "1.4", parsed.Version)

	pageNums, err := parsed.Pages()
	require.NoError(t, err)
	assert.Len(t, pageNums, 1)

	root, err := parsed.Root()
	require.NoError(t, err)
	typeVal, ok := root.Get(pdfval.Name("Type"))
	require.True(t, ok)
	assert.Equal(t, pdfval.Name("Catalog"), typeVal)
}

func TestWriteRenumbersIntoContiguousRange(t *testing.T) {
	doc := buildTestDoc()
	buf, err := Write(doc)
	require.NoError(t, err)

	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.Len(t, parsed.Objects, 5)
	for n := 1; n <= 5; n++ {
		_, ok := parsed.Objects[n]
		assert.True(t, ok, "expected contiguous object number %d", n)
	}
}

func TestWriteVersionOverridesHeader(t *testing.T) {
	doc := buildTestDoc()
	buf, err := WriteVersion(doc, "1.7")
	require.NoError(t, err)
	assert.Contains(t, string(buf), "%PDF-1.7")
}

func TestParseRejectsMissingEOF(t *testing.T) {
	doc := buildTestDoc()
	buf, err := Write(doc)
	require.NoError(t, err)

	truncated := buf[:len(buf)-len("%%EOF\n")]
	_, err = Parse(truncated)
	assert.Error(t, err)
}

func TestParseRejectsBadHeader(t *testing.T) {
	_, err := Parse([]byte("not a pdf file at all"))
	assert.Error(t, err)
}
