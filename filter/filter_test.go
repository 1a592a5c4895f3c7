package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlateRoundTrips(t *testing.T) {
	src := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	encoded := EncodeFlate(src)
	decoded, err := DecodeFlate(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestDecodeRejectsBadZlibHeader(t *testing.T) {
	_, err := DecodeFlate([]byte("not zlib data"))
	assert.Error(t, err)
}

func TestASCIIHexRoundTrips(t *testing.T) {
	src := []byte{0x00, 0xFF, 0x10, 0xAB}
	encoded := EncodeASCIIHex(src)
	decoded, err := DecodeASCIIHex(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestASCIIHexOddDigitPadsWithZeroNibble(t *testing.T) {
	decoded, err := DecodeASCIIHex([]byte("1A5>"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1A, 0x50}, decoded)
}

func TestASCII85RoundTrips(t *testing.T) {
	src := []byte("Man is distinguished, not only by his reason")
	encoded := EncodeASCII85(src)
	decoded, err := DecodeASCII85(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestASCII85EncodesAllZeroTupleAsZ(t *testing.T) {
	encoded := EncodeASCII85([]byte{0, 0, 0, 0})
	assert.Contains(t, string(encoded), "z")
}

func TestRunLengthRoundTrips(t *testing.T) {
	src := []byte("aaaaaaaabcdefg")
	encoded := EncodeRunLength(src)
	decoded, err := DecodeRunLength(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestRunLengthEmptyInput(t *testing.T) {
	encoded := EncodeRunLength(nil)
	assert.Equal(t, []byte{128}, encoded)
}

func TestDecodeDCTPassesThroughValidJPEGMarker(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0x01, 0x02}
	out, err := DecodeDCT(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecodeDCTRejectsMissingSOI(t *testing.T) {
	_, err := DecodeDCT([]byte{0x00, 0x01})
	assert.Error(t, err)
}

func TestDecodeDispatchesByFilterName(t *testing.T) {
	encoded := EncodeFlate([]byte("hi"))
	decoded, err := Decode(encoded, "FlateDecode")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), decoded)

	_, err = Decode(nil, "NoSuchFilter")
	assert.Error(t, err)
}
