package objstm

import (
	"testing"

	"github.com/benedoc-inc/pdfkit/pdfval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildObjStm(header, body string) *pdfval.Stream {
	data := []byte(header + body)
	dict := pdfval.NewDict()
	dict.Set(pdfval.Name("Type"), pdfval.Name("ObjStm"))
	dict.Set(pdfval.Name("N"), pdfval.Number(2))
	dict.Set(pdfval.Name("First"), pdfval.Number(len(header)))
	return &pdfval.Stream{Dict: dict, Data: data}
}

func TestDecodeReturnsEveryObject(t *testing.T) {
	header := "10 0 20 7 "
	body := "(hello)(world)"
	s := buildObjStm(header, body)

	entries, err := Decode(s)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 10, entries[0].Num)
	assert.Equal(t, "hello", entries[0].Value.(pdfval.String).Text())
	assert.Equal(t, 20, entries[1].Num)
	assert.Equal(t, "world", entries[1].Value.(pdfval.String).Text())
}

func TestDecodeRejectsMissingN(t *testing.T) {
	dict := pdfval.NewDict()
	dict.Set(pdfval.Name("First"), pdfval.Number(0))
	_, err := Decode(&pdfval.Stream{Dict: dict, Data: []byte{}})
	assert.Error(t, err)
}

func TestDecodeRejectsMissingFirst(t *testing.T) {
	dict := pdfval.NewDict()
	dict.Set(pdfval.Name("N"), pdfval.Number(1))
	_, err := Decode(&pdfval.Stream{Dict: dict, Data: []byte{}})
	assert.Error(t, err)
}
