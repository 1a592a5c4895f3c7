package pageops

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/benedoc-inc/pdfkit/pdfdoc"
	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// buildSinglePagePDF returns the serialized bytes of a minimal
// one-page document with a trivial content stream, for use as test
// input to the page operations.
func buildSinglePagePDF(t *testing.T, label string) []byte {
	t.Helper()
	doc := pdfval.NewDocument("1.4")

	content := []byte("BT /F1 12 Tf (" + label + ") Tj ET")
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

	buf, err := pdfdoc.Write(doc)
	require.NoError(t, err)
	return buf
}

func buildMultiPagePDF(t *testing.T, n int) []byte {
	t.Helper()
	doc := pdfval.NewDocument("1.4")
	nextNum := 10
	var kids pdfval.Array
	for i := 0; i < n; i++ {
		page := pdfval.NewDict()
		page.Set(pdfval.Name("Type"), pdfval.Name("Page"))
		page.Set(pdfval.Name("Parent"), pdfval.Reference{Num: 2})
		num := nextNum
		nextNum++
		doc.Objects[num] = page
		kids = append(kids, pdfval.Reference{Num: num})
	}
	pages := pdfval.NewDict()
	pages.Set(pdfval.Name("Type"), pdfval.Name("Pages"))
	pages.Set(pdfval.Name("Kids"), kids)
	pages.Set(pdfval.Name("Count"), pdfval.Number(n))
	doc.Objects[2] = pages

	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	catalog.Set(pdfval.Name("Pages"), pdfval.Reference{Num: 2})
	doc.Objects[1] = catalog
	doc.Trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: 1})

	buf, err := pdfdoc.Write(doc)
	require.NoError(t, err)
	return buf
}

func TestMergeCombinesPagesInOrder(t *testing.T) {
	a := buildSinglePagePDF(t, "A")
	b := buildSinglePagePDF(t, "B")

	merged, err := Merge([][]byte{a, b})
	require.NoError(t, err)

	pageNums, err := merged.Pages()
	require.NoError(t, err)
	assert.Len(t, pageNums, 2)

	for i, label := range []string{"(A)", "(B)"} {
		page := merged.Objects[pageNums[i]].(*pdfval.Dict)
		contentsVal, _ := page.Get(pdfval.Name("Contents"))
		stream := merged.Resolve(contentsVal).(*pdfval.Stream)
		assert.Contains(t, string(stream.Data), label)
	}
}

func TestMergeRequiresAtLeastOneInput(t *testing.T) {
	_, err := Merge(nil)
	assert.Error(t, err)
}

func TestSplitKeepsRequestedRange(t *testing.T) {
	src := buildMultiPagePDF(t, 5)
	out, err := Split(src, 2, 4)
	require.NoError(t, err)
	pageNums, err := out.Pages()
	require.NoError(t, err)
	assert.Len(t, pageNums, 3)
}

func TestSplitRejectsOutOfRange(t *testing.T) {
	src := buildMultiPagePDF(t, 3)
	_, err := Split(src, 2, 5)
	assert.Error(t, err)
}

func TestRotateSetsAbsoluteAngle(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	doc, err := Rotate(src, 90)
	require.NoError(t, err)
	pageNums, _ := doc.Pages()
	page := doc.Objects[pageNums[0]].(*pdfval.Dict)
	v, ok := page.Get(pdfval.Name("Rotate"))
	require.True(t, ok)
	assert.Equal(t, pdfval.Number(90), v)
}

func TestRotateRejectsInvalidAngle(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	_, err := Rotate(src, 45)
	assert.Error(t, err)
}

func TestReorderReversesPages(t *testing.T) {
	src := buildMultiPagePDF(t, 3)
	doc, err := Reorder(src, []int{3, 2, 1})
	require.NoError(t, err)

	root, err := doc.Root()
	require.NoError(t, err)
	pagesVal, _ := root.Get(pdfval.Name("Pages"))
	pagesRef := pagesVal.(pdfval.Reference)
	pagesDict := doc.Objects[pagesRef.Num].(*pdfval.Dict)
	kidsVal, _ := pagesDict.Get(pdfval.Name("Kids"))
	kids := kidsVal.(pdfval.Array)
	assert.Len(t, kids, 3)

	orig, err := pdfdoc.Parse(src)
	require.NoError(t, err)
	origPages, err := orig.Pages()
	require.NoError(t, err)
	assert.Equal(t, pdfval.Array{
		pdfval.Reference{Num: origPages[2]},
		pdfval.Reference{Num: origPages[1]},
		pdfval.Reference{Num: origPages[0]},
	}, kids)
}

func TestReorderRejectsDuplicateIndex(t *testing.T) {
	src := buildMultiPagePDF(t, 3)
	_, err := Reorder(src, []int{1, 1})
	assert.Error(t, err)
}

func TestWatermarkAppendsContentAndResources(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	doc, err := Watermark(src, "DRAFT", 48, 0.3)
	require.NoError(t, err)

	pageNums, _ := doc.Pages()
	page := doc.Objects[pageNums[0]].(*pdfval.Dict)

	contentsVal, ok := page.Get(pdfval.Name("Contents"))
	require.True(t, ok)
	arr, ok := contentsVal.(pdfval.Array)
	require.True(t, ok)
	assert.Len(t, arr, 2)

	resVal, _ := page.Get(pdfval.Name("Resources"))
	res := resVal.(*pdfval.Dict)
	_, hasExtGState := res.Get(pdfval.Name("ExtGState"))
	assert.True(t, hasExtGState)
}

func TestAddImageStampsXObjectOntoPage(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	data := tinyJPEG(t)

	doc, err := AddImage(src, 1, data, 10, 10, 40, 40)
	require.NoError(t, err)

	pageNums, _ := doc.Pages()
	page := doc.Objects[pageNums[0]].(*pdfval.Dict)

	contentsVal, ok := page.Get(pdfval.Name("Contents"))
	require.True(t, ok)
	arr, ok := contentsVal.(pdfval.Array)
	require.True(t, ok)
	assert.Len(t, arr, 2)

	resVal, _ := page.Get(pdfval.Name("Resources"))
	res := resVal.(*pdfval.Dict)
	xobjVal, ok := res.Get(pdfval.Name("XObject"))
	require.True(t, ok)
	xobj := xobjVal.(*pdfval.Dict)
	_, hasImage := xobj.Get(pdfval.Name(addedImageResourceKey))
	assert.True(t, hasImage)
}

func TestAddImageRejectsOutOfRangePage(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	data := tinyJPEG(t)
	_, err := AddImage(src, 5, data, 0, 0, 10, 10)
	assert.Error(t, err)
}

func TestAddAnnotationLink(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	doc, err := pdfdoc.Parse(src)
	require.NoError(t, err)

	err = AddAnnotation(doc, 1, Annotation{
		Kind: AnnotationLink,
		Rect: [4]float64{0, 0, 100, 20},
		URL:  "https://example.com",
	})
	require.NoError(t, err)

	pageNums, _ := doc.Pages()
	page := doc.Objects[pageNums[0]].(*pdfval.Dict)
	annotsVal, ok := page.Get(pdfval.Name("Annots"))
	require.True(t, ok)
	annots := annotsVal.(pdfval.Array)
	require.Len(t, annots, 1)
}

func TestAddAnnotationOutOfRange(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	doc, err := pdfdoc.Parse(src)
	require.NoError(t, err)
	err = AddAnnotation(doc, 5, Annotation{Kind: AnnotationText})
	assert.Error(t, err)
}

func TestSetMetadataStampsInfo(t *testing.T) {
	src := buildSinglePagePDF(t, "A")
	doc, err := pdfdoc.Parse(src)
	require.NoError(t, err)

	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	SetMetadata(doc, Metadata{Title: "T", Author: "A"}, now)

	infoVal, ok := doc.Trailer.Get(pdfval.Name("Info"))
	require.True(t, ok)
	ref := infoVal.(pdfval.Reference)
	info := doc.Objects[ref.Num].(*pdfval.Dict)

	v, _ := info.Get(pdfval.Name("CreationDate"))
	assert.Equal(t, pdfval.NewString("D:20260115103000"), v)
}
