package xref

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteClassicalThenReadRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := map[int]int64{}
	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	offsets[1] = int64(buf.Len())
	pdfval.SerializeIndirect(&buf, 1, 0, catalog)

	trailer := pdfval.NewDict()
	trailer.Set(pdfval.Name("Size"), pdfval.Number(2))
	trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: 1})

	xrefOffset := int64(buf.Len())
	WriteClassical(&buf, offsets, 2, trailer)
	buf.WriteString("startxref\n")
	buf.WriteString(strconv.FormatInt(xrefOffset, 10))
	buf.WriteString("\n%%EOF\n")

	table, readTrailer, xrefStreamNums, err := Read(buf.Bytes())
	require.NoError(t, err)

	entry, ok := table[1]
	require.True(t, ok)
	assert.Equal(t, InUse, entry.Type)
	assert.Equal(t, offsets[1], entry.Offset)

	rootVal, ok := readTrailer.Get(pdfval.Name("Root"))
	require.True(t, ok)
	assert.Equal(t, pdfval.Reference{Num: 1}, rootVal)
	assert.Empty(t, xrefStreamNums, "a classical table names no xref-stream objects")
}

func TestReadRejectsMissingStartxref(t *testing.T) {
	_, _, _, err := Read([]byte("%PDF-1.4\nno startxref token here\n%%EOF\n"))
	assert.Error(t, err)
}

func TestReadRejectsOutOfRangeOffset(t *testing.T) {
	_, _, _, err := Read([]byte("%PDF-1.4\nstartxref\n99999\n%%EOF\n"))
	assert.Error(t, err)
}

func TestWriteStreamSectionThenReadRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	offsets := map[int]int64{}
	catalog := pdfval.NewDict()
	catalog.Set(pdfval.Name("Type"), pdfval.Name("Catalog"))
	offsets[1] = int64(buf.Len())
	pdfval.SerializeIndirect(&buf, 1, 0, catalog)

	trailer := pdfval.NewDict()
	trailer.Set(pdfval.Name("Root"), pdfval.Reference{Num: 1})

	const xrefObjNum = 2
	const size = 3 // object 0 (free), object 1 (catalog), object 2 (xref stream itself)
	trailer.Set(pdfval.Name("Size"), pdfval.Number(size))
	xrefOffset := WriteStreamSection(&buf, offsets, size, xrefObjNum, trailer)
	buf.WriteString("startxref\n")
	buf.WriteString(strconv.FormatInt(xrefOffset, 10))
	buf.WriteString("\n%%EOF\n")

	table, readTrailer, xrefStreamNums, err := Read(buf.Bytes())
	require.NoError(t, err)

	entry, ok := table[1]
	require.True(t, ok)
	assert.Equal(t, InUse, entry.Type)
	assert.Equal(t, offsets[1], entry.Offset)

	xrefEntry, ok := table[xrefObjNum]
	require.True(t, ok)
	assert.Equal(t, InUse, xrefEntry.Type)
	assert.True(t, xrefStreamNums[xrefObjNum], "the xref stream's own object number must be reported")

	rootVal, ok := readTrailer.Get(pdfval.Name("Root"))
	require.True(t, ok)
	assert.Equal(t, pdfval.Reference{Num: 1}, rootVal)
}

