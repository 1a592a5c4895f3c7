// Package extract recovers plain text from an already-parsed PDF
// document: a single-pass content-stream operator scanner tracks the
// active font's encoding and the text and line matrices (font size is
// not tracked), rather than the line-oriented regex matching an older
// generation of this tool used.
package extract

import (
	"strconv"
	"strings"

	"github.com/benedoc-inc/pdfkit/pdferr"
	"github.com/benedoc-inc/pdfkit/pdfval"
)

// tjGapThreshold is the magnitude (in thousandths of text-space units,
// per the TJ array convention) above which a negative offset between
// TJ string runs is taken to mean "word gap" rather than kerning.
const tjGapThreshold = 200

// textState tracks the subset of PDF text state that matters for
// extraction: which font/encoding is active and where the text cursor
// sits, so Td/T*'s vertical motion can be turned into line breaks.
type textState struct {
	inText     bool
	encoding   string
	textMatrix [6]float64
	lineMatrix [6]float64
}

// operatorScanner walks one content stream's tokens, dispatching on
// keyword operators with the pending operand stack.
type operatorScanner struct {
	lex      *pdfval.Lexer
	operands []operand
	state    textState
	fontEnc  map[pdfval.Name]string
	out      *strings.Builder
}

type operand struct {
	kind  operandKind
	num   float64
	str   []byte
	name  pdfval.Name
	array []operand
}

type operandKind int

const (
	opNumber operandKind = iota
	opString
	opName
	opArray
)

// extractFromStream scans one decompressed content stream's bytes,
// appending recovered text to out. fontEnc maps each page resource
// font key (e.g. "/F1") to the encoding name ("WinAnsiEncoding" or
// "MacRomanEncoding") that Tf should switch to when it selects that
// font; unknown keys fall back to WinAnsiEncoding.
func extractFromStream(data []byte, fontEnc map[pdfval.Name]string, out *strings.Builder) error {
	s := &operatorScanner{
		lex:     pdfval.NewLexer(data),
		fontEnc: fontEnc,
		out:     out,
	}
	s.state.textMatrix = [6]float64{1, 0, 0, 1, 0, 0}
	s.state.lineMatrix = s.state.textMatrix
	s.state.encoding = "WinAnsiEncoding"

	for {
		tok, err := s.lex.Next()
		if err != nil {
			return pdferr.Wrap(pdferr.CorruptStream, "content stream", err)
		}
		if tok.Kind == pdfval.TokEOF {
			return nil
		}

		switch tok.Kind {
		case pdfval.TokInteger, pdfval.TokReal:
			f, _ := strconv.ParseFloat(tok.Text, 64)
			s.operands = append(s.operands, operand{kind: opNumber, num: f})
		case pdfval.TokLiteralString, pdfval.TokHexString:
			s.operands = append(s.operands, operand{kind: opString, str: tok.Bytes})
		case pdfval.TokName:
			s.operands = append(s.operands, operand{kind: opName, name: pdfval.Name(tok.Text)})
		case pdfval.TokArrayOpen:
			arr, err := s.scanArray()
			if err != nil {
				return err
			}
			s.operands = append(s.operands, operand{kind: opArray, array: arr})
		case pdfval.TokDictOpen:
			if err := s.skipDict(); err != nil {
				return err
			}
		case pdfval.TokKeyword:
			s.dispatch(tok.Text)
			s.operands = s.operands[:0]
		}
	}
}

func (s *operatorScanner) scanArray() ([]operand, error) {
	var arr []operand
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, pdferr.Wrap(pdferr.CorruptStream, "content stream array", err)
		}
		switch tok.Kind {
		case pdfval.TokArrayClose:
			return arr, nil
		case pdfval.TokEOF:
			return arr, nil
		case pdfval.TokInteger, pdfval.TokReal:
			f, _ := strconv.ParseFloat(tok.Text, 64)
			arr = append(arr, operand{kind: opNumber, num: f})
		case pdfval.TokLiteralString, pdfval.TokHexString:
			arr = append(arr, operand{kind: opString, str: tok.Bytes})
		case pdfval.TokName:
			arr = append(arr, operand{kind: opName, name: pdfval.Name(tok.Text)})
		}
	}
}

// skipDict consumes an inline dictionary (e.g. a BDC property list or a
// marked-content operand) that extraction has no use for.
func (s *operatorScanner) skipDict() error {
	depth := 1
	for depth > 0 {
		tok, err := s.lex.Next()
		if err != nil {
			return pdferr.Wrap(pdferr.CorruptStream, "content stream dict", err)
		}
		if tok.Kind == pdfval.TokEOF {
			return nil
		}
		switch tok.Kind {
		case pdfval.TokDictOpen:
			depth++
		case pdfval.TokDictClose:
			depth--
		}
	}
	return nil
}

func (s *operatorScanner) dispatch(op string) {
	switch op {
	case "BT":
		s.state.inText = true
		s.state.textMatrix = [6]float64{1, 0, 0, 1, 0, 0}
		s.state.lineMatrix = s.state.textMatrix
	case "ET":
		s.state.inText = false
	case "Tf":
		if len(s.operands) >= 2 && s.operands[len(s.operands)-2].kind == opName {
			fontKey := pdfval.Name("/" + string(s.operands[len(s.operands)-2].name))
			if enc, ok := s.fontEnc[fontKey]; ok {
				s.state.encoding = enc
			} else {
				s.state.encoding = "WinAnsiEncoding"
			}
		}
	case "Td", "TD":
		if len(s.operands) >= 2 {
			ty := s.operands[len(s.operands)-1].num
			if ty < 0 {
				s.out.WriteString("\n")
			}
		}
		s.state.lineMatrix = s.state.textMatrix
	case "T*":
		s.out.WriteString("\n")
	case "Tm":
		if len(s.operands) >= 6 {
			for i := 0; i < 6; i++ {
				s.state.textMatrix[i] = s.operands[i].num
			}
			s.state.lineMatrix = s.state.textMatrix
		}
	case "Tj":
		if len(s.operands) >= 1 && s.operands[len(s.operands)-1].kind == opString {
			s.out.WriteString(decodeBytes(s.operands[len(s.operands)-1].str, s.state.encoding))
		}
	case "'":
		s.out.WriteString("\n")
		if len(s.operands) >= 1 && s.operands[len(s.operands)-1].kind == opString {
			s.out.WriteString(decodeBytes(s.operands[len(s.operands)-1].str, s.state.encoding))
		}
	case "\"":
		s.out.WriteString("\n")
		if len(s.operands) >= 1 && s.operands[len(s.operands)-1].kind == opString {
			s.out.WriteString(decodeBytes(s.operands[len(s.operands)-1].str, s.state.encoding))
		}
	case "TJ":
		if len(s.operands) >= 1 && s.operands[len(s.operands)-1].kind == opArray {
			s.emitTJ(s.operands[len(s.operands)-1].array)
		}
	}
}

func (s *operatorScanner) emitTJ(arr []operand) {
	for _, el := range arr {
		switch el.kind {
		case opString:
			s.out.WriteString(decodeBytes(el.str, s.state.encoding))
		case opNumber:
			if el.num < -tjGapThreshold {
				s.out.WriteString(" ")
			}
		}
	}
}
