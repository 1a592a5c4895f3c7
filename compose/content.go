package compose

import (
	"bytes"
	"fmt"
)

// ContentStream builds a page content stream operator by operator. Every
// method returns the receiver so calls can be chained.
type ContentStream struct {
	buf bytes.Buffer
}

// NewContentStream returns an empty content stream builder.
func NewContentStream() *ContentStream {
	return &ContentStream{}
}

// Bytes returns the accumulated content stream bytes.
func (cs *ContentStream) Bytes() []byte {
	return cs.buf.Bytes()
}

// --- Graphics state ---

func (cs *ContentStream) SaveState() *ContentStream {
	cs.buf.WriteString("q\n")
	return cs
}

func (cs *ContentStream) RestoreState() *ContentStream {
	cs.buf.WriteString("Q\n")
	return cs
}

func (cs *ContentStream) SetMatrix(a, b, c, d, e, f float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f %.4f %.4f %.4f %.4f cm\n", a, b, c, d, e, f)
	return cs
}

// SetExtGState applies an ExtGState resource (the /gs operator), used by
// the watermark opacity mechanism (spec §4.9).
func (cs *ContentStream) SetExtGState(name string) *ContentStream {
	fmt.Fprintf(&cs.buf, "%s gs\n", name)
	return cs
}

// --- Color ---

func (cs *ContentStream) SetFillColorRGB(r, g, b float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f %.4f rg\n", r, g, b)
	return cs
}

func (cs *ContentStream) SetStrokeColorRGB(r, g, b float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f %.4f RG\n", r, g, b)
	return cs
}

func (cs *ContentStream) SetFillColorGray(gray float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f g\n", gray)
	return cs
}

func (cs *ContentStream) SetStrokeColorGray(gray float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f G\n", gray)
	return cs
}

// --- Path ---

func (cs *ContentStream) MoveTo(x, y float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f m\n", x, y)
	return cs
}

func (cs *ContentStream) LineTo(x, y float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f l\n", x, y)
	return cs
}

func (cs *ContentStream) Rectangle(x, y, width, height float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f %.4f %.4f re\n", x, y, width, height)
	return cs
}

func (cs *ContentStream) Stroke() *ContentStream {
	cs.buf.WriteString("S\n")
	return cs
}

func (cs *ContentStream) Fill() *ContentStream {
	cs.buf.WriteString("f\n")
	return cs
}

func (cs *ContentStream) FillStroke() *ContentStream {
	cs.buf.WriteString("B\n")
	return cs
}

func (cs *ContentStream) SetLineWidth(width float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f w\n", width)
	return cs
}

// --- Text ---

func (cs *ContentStream) BeginText() *ContentStream {
	cs.buf.WriteString("BT\n")
	return cs
}

func (cs *ContentStream) EndText() *ContentStream {
	cs.buf.WriteString("ET\n")
	return cs
}

// SetFont sets the font and size (Tf operator). fontName is a resource
// name like "/F1".
func (cs *ContentStream) SetFont(fontName string, size float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%s %.4f Tf\n", fontName, size)
	return cs
}

// SetTextPosition moves the text cursor to an absolute page position.
// It emits Tm rather than Td: Td is relative to the current line
// matrix, which would silently accumulate across the repeated calls
// within one BT/ET block that multi-line rendering (table cells,
// footnotes) needs.
func (cs *ContentStream) SetTextPosition(x, y float64) *ContentStream {
	return cs.SetTextMatrix(1, 0, 0, 1, x, y)
}

func (cs *ContentStream) SetTextMatrix(a, b, c, d, e, f float64) *ContentStream {
	fmt.Fprintf(&cs.buf, "%.4f %.4f %.4f %.4f %.4f %.4f Tm\n", a, b, c, d, e, f)
	return cs
}

// ShowText displays text that is already WinAnsi-encoded single-byte
// text, escaping the PDF literal-string special characters.
func (cs *ContentStream) ShowText(text string) *ContentStream {
	fmt.Fprintf(&cs.buf, "(%s) Tj\n", escapePDFString(text))
	return cs
}

// --- Images ---

// DrawImageAt draws the named XObject scaled to width×height with its
// lower-left corner at (x, y).
func (cs *ContentStream) DrawImageAt(imageName string, x, y, width, height float64) *ContentStream {
	cs.SaveState()
	cs.SetMatrix(width, 0, 0, height, x, y)
	fmt.Fprintf(&cs.buf, "%s Do\n", imageName)
	cs.RestoreState()
	return cs
}

// Raw appends already-formatted operator text verbatim.
func (cs *ContentStream) Raw(data string) *ContentStream {
	cs.buf.WriteString(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		cs.buf.WriteByte('\n')
	}
	return cs
}

// escapePDFString backslash-escapes the literal-string special
// characters spec §4.3 requires: '(', ')', '\\', plus the common
// whitespace escapes every PDF writer emits for readability.
func escapePDFString(s string) string {
	var out bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(':
			out.WriteString("\\(")
		case ')':
			out.WriteString("\\)")
		case '\\':
			out.WriteString("\\\\")
		case '\n':
			out.WriteString("\\n")
		case '\r':
			out.WriteString("\\r")
		case '\t':
			out.WriteString("\\t")
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
