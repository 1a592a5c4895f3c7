// Package filter implements the stream filters used by PDF objects:
// FlateDecode, ASCIIHexDecode, ASCII85Decode, RunLengthDecode and the
// pass-through DCTDecode used for JPEG image data.
package filter

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/benedoc-inc/pdfkit/pdferr"
)

// Name is a PDF filter name, with or without the leading slash.
type Name string

const (
	FlateDecode     Name = "/FlateDecode"
	ASCIIHexDecode  Name = "/ASCIIHexDecode"
	ASCII85Decode   Name = "/ASCII85Decode"
	RunLengthDecode Name = "/RunLengthDecode"
	DCTDecode       Name = "/DCTDecode"
)

// Decode applies the named filter to data. The leading slash on name is
// optional.
func Decode(data []byte, name string) ([]byte, error) {
	switch Name("/" + trimSlash(name)) {
	case FlateDecode:
		return DecodeFlate(data)
	case ASCIIHexDecode:
		return DecodeASCIIHex(data)
	case ASCII85Decode:
		return DecodeASCII85(data)
	case RunLengthDecode:
		return DecodeRunLength(data)
	case DCTDecode:
		return DecodeDCT(data)
	default:
		return nil, pdferr.Newf(pdferr.UnsupportedFilter, "unsupported filter: %s", name)
	}
}

func trimSlash(s string) string {
	if len(s) > 0 && s[0] == '/' {
		return s[1:]
	}
	return s
}

// DecodeFlate decompresses zlib/deflate-wrapped data.
func DecodeFlate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, pdferr.Wrap(pdferr.CorruptStream, "flate: bad zlib header", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.CorruptStream, "flate: truncated stream", err)
	}
	return out, nil
}

// EncodeFlate compresses data with zlib-wrapped deflate. This never fails
// on a valid input.
func EncodeFlate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// DecodeASCIIHex decodes ASCIIHexDecode data: pairs of hex digits,
// whitespace ignored, '>' marks end of data. An odd trailing digit is
// padded with a zero nibble.
func DecodeASCIIHex(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var hi byte
	haveNibble := false

	for _, b := range data {
		if isSpace(b) {
			continue
		}
		if b == '>' {
			break
		}
		n, ok := hexNibble(b)
		if !ok {
			return nil, pdferr.Newf(pdferr.CorruptStream, "asciihex: invalid character %q", b)
		}
		if haveNibble {
			out.WriteByte(hi<<4 | n)
			haveNibble = false
		} else {
			hi = n
			haveNibble = true
		}
	}
	if haveNibble {
		out.WriteByte(hi << 4)
	}
	return out.Bytes(), nil
}

func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	default:
		return 0, false
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

// EncodeASCIIHex encodes data as hex digits terminated with '>'.
func EncodeASCIIHex(data []byte) []byte {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, len(data)*2+1)
	for i, b := range data {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0F]
	}
	out[len(data)*2] = '>'
	return out
}

// DecodeASCII85 decodes ASCII85 ("btoa") data. A leading "<~" is tolerated
// if present; a trailing "~>" terminates decoding.
func DecodeASCII85(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte("<~")) {
		data = data[2:]
	}

	var out bytes.Buffer
	var tuple [5]byte
	n := 0

	for i := 0; i < len(data); i++ {
		b := data[i]
		if isSpace(b) {
			continue
		}
		if b == '~' {
			break
		}
		if b == 'z' {
			if n != 0 {
				return nil, pdferr.New(pdferr.CorruptStream, "ascii85: 'z' inside tuple")
			}
			out.Write([]byte{0, 0, 0, 0})
			continue
		}
		if b < '!' || b > 'u' {
			return nil, pdferr.Newf(pdferr.CorruptStream, "ascii85: invalid character %q", b)
		}
		tuple[n] = b - '!'
		n++
		if n == 5 {
			out.Write(decodeTuple(tuple, 5))
			n = 0
		}
	}
	if n > 0 {
		for i := n; i < 5; i++ {
			tuple[i] = 84
		}
		decoded := decodeTuple(tuple, n)
		out.Write(decoded[:n-1])
	}
	return out.Bytes(), nil
}

func decodeTuple(t [5]byte, n int) []byte {
	var v uint32
	v = uint32(t[0])*85*85*85*85 +
		uint32(t[1])*85*85*85 +
		uint32(t[2])*85*85 +
		uint32(t[3])*85 +
		uint32(t[4])
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// EncodeASCII85 encodes data in ASCII85 form wrapped in "<~" ... "~>".
func EncodeASCII85(data []byte) []byte {
	var out bytes.Buffer
	out.WriteString("<~")

	for i := 0; i < len(data); i += 4 {
		remaining := len(data) - i
		var v uint32
		if remaining >= 4 {
			v = uint32(data[i])<<24 | uint32(data[i+1])<<16 | uint32(data[i+2])<<8 | uint32(data[i+3])
			if v == 0 {
				out.WriteByte('z')
				continue
			}
		} else {
			for j := 0; j < remaining; j++ {
				v |= uint32(data[i+j]) << (24 - j*8)
			}
		}
		var enc [5]byte
		for j := 4; j >= 0; j-- {
			enc[j] = byte(v%85) + '!'
			v /= 85
		}
		if remaining >= 4 {
			out.Write(enc[:])
		} else {
			out.Write(enc[:remaining+1])
		}
	}
	out.WriteString("~>")
	return out.Bytes()
}

// DecodeRunLength decodes RunLengthDecode (PackBits-style) data.
func DecodeRunLength(data []byte) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(data) {
		length := int(data[i])
		i++
		switch {
		case length == 128:
			return out.Bytes(), nil
		case length < 128:
			count := length + 1
			if i+count > len(data) {
				return nil, pdferr.New(pdferr.CorruptStream, "runlength: truncated literal run")
			}
			out.Write(data[i : i+count])
			i += count
		default:
			count := 257 - length
			if i >= len(data) {
				return nil, pdferr.New(pdferr.CorruptStream, "runlength: truncated repeat run")
			}
			rep := data[i]
			i++
			for j := 0; j < count; j++ {
				out.WriteByte(rep)
			}
		}
	}
	return out.Bytes(), nil
}

// EncodeRunLength encodes data using RunLengthDecode's PackBits scheme.
func EncodeRunLength(data []byte) []byte {
	if len(data) == 0 {
		return []byte{128}
	}
	var out bytes.Buffer
	i := 0
	for i < len(data) {
		start := i
		for i < len(data)-1 && data[i] == data[i+1] && i-start < 127 {
			i++
		}
		run := i - start + 1
		if run >= 2 {
			out.WriteByte(byte(257 - run))
			out.WriteByte(data[start])
			i++
			continue
		}
		litStart := start
		for i < len(data) && (i == len(data)-1 || data[i] != data[i+1]) && i-litStart < 127 {
			i++
		}
		out.WriteByte(byte(i - litStart - 1))
		out.Write(data[litStart:i])
	}
	out.WriteByte(128)
	return out.Bytes()
}

// DecodeDCT validates and passes through JPEG-compressed image data
// unchanged; PDF never asks the core to decode pixels, only to detect
// the format.
func DecodeDCT(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, pdferr.New(pdferr.UnsupportedImageFormat, "dctdecode: missing JPEG SOI marker")
	}
	return data, nil
}
