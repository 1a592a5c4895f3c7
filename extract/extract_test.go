package extract

import (
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromStreamSimpleText(t *testing.T) {
	content := []byte("BT /F1 12 Tf 72 700 Td (Hello) Tj ET")
	var out strings.Builder
	err := extractFromStream(content, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.String())
}

func TestExtractFromStreamLineBreakOnNegativeTd(t *testing.T) {
	content := []byte("BT /F1 12 Tf 72 700 Td (Line1) Tj 0 -14 Td (Line2) Tj ET")
	var out strings.Builder
	err := extractFromStream(content, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2", out.String())
}

func TestExtractFromStreamTJGap(t *testing.T) {
	content := []byte("BT /F1 12 Tf [(Hello)-300(World)] TJ ET")
	var out strings.Builder
	err := extractFromStream(content, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out.String())
}

func TestExtractFromStreamApostropheOperator(t *testing.T) {
	content := []byte("BT /F1 12 Tf (First) Tj (Second) ' ET")
	var out strings.Builder
	err := extractFromStream(content, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "First\nSecond", out.String())
}

func TestTextWalksPagesInOrder(t *testing.T) {
	doc := pdfval.NewDocument("1.4")

	page1 := pdfval.NewDict()
	page1.Set(pdfval.Name("Type"), pdfval.Name("Page"))
	page1.Set(pdfval.Name("Contents"), pdfval.Reference{Num: 10})
	doc.Objects[3] = page1

	page2 := pdfval.NewDict()
	page2.Set(pdfval.Name("Type"), pdfval.Name("Page"))
	page2.Set(pdfval.Name("Contents"), pdfval.Reference{Num: 11})
	doc.Objects[4] = page2

	stream1 := &pdfval.Stream{Dict: pdfval.NewDict(), Data: []byte("BT (A) Tj ET")}
	doc.Objects[10] = stream1
	stream2 := &pdfval.Stream{Dict: pdfval.NewDict(), Data: []byte("BT (B) Tj ET")}
	doc.Objects[11] = stream2

	pages := pdfval.NewDict()
	pages.Set(pdfval.Name("Type"), pdfval.Name("Pages"))
	pages.Set(pdfval.Name("Kids"), pdfval.Array{pdfval.Reference{Num: 3}, pdfval.Reference{Num: 4}})
	doc.Objects[2] = pages

	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: 2})
	doc.Objects[1] = catalog

	doc.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: 1})

	text, err := Text(doc)
	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
}

func TestDecodeBytesWinAnsi(t *testing.T) {
	assert.Equal(t, "Hello", decodeBytes([]byte("Hello"), "WinAnsiEncoding"))
	assert.Equal(t, "€", decodeBytes([]byte{128}, "WinAnsiEncoding"))
}
