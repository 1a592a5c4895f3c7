package pdfval

import (
	"strconv"

	"github.com/benedoc-inc/pdfkit/pdferr"
)

// ParseValue scans and returns one Value from l, resolving the
// integer-integer-"R" lookahead into a Reference.
func ParseValue(l *Lexer) (Value, error) {
	tok, err := l.Next()
	if err != nil {
		return nil, err
	}
	return parseFromToken(l, tok)
}

func parseFromToken(l *Lexer, tok Token) (Value, error) {
	switch tok.Kind {
	case TokEOF:
		return nil, pdferr.New(pdferr.CorruptStream, "unexpected end of input while parsing value")
	case TokName:
		return Name(tok.Bytes), nil
	case TokLiteralString:
		return String{Value: tok.Bytes, Kind: StringLiteral}, nil
	case TokHexString:
		return String{Value: tok.Bytes, Kind: StringHex}, nil
	case TokArrayOpen:
		return parseArray(l)
	case TokDictOpen:
		return parseDictOrStream(l)
	case TokInteger:
		return parseIntegerOrReference(l, tok)
	case TokReal:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, pdferr.Wrapf(pdferr.CorruptStream, err, "invalid real number %q", tok.Text)
		}
		return Number(f), nil
	case TokKeyword:
		switch tok.Text {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		case "null":
			return Null{}, nil
		default:
			return nil, pdferr.Newf(pdferr.CorruptStream, "unexpected keyword %q while parsing value", tok.Text)
		}
	default:
		return nil, pdferr.Newf(pdferr.CorruptStream, "unexpected token while parsing value (offset %d)", tok.Offset)
	}
}

// parseIntegerOrReference implements the "N G R" lookahead: an integer
// token followed by another integer and the keyword R collapses into a
// Reference; otherwise it is a plain Number.
func parseIntegerOrReference(l *Lexer, first Token) (Value, error) {
	save := l.Pos()
	second, err := l.Next()
	if err != nil {
		return nil, err
	}
	if second.Kind == TokInteger {
		save2 := l.Pos()
		third, err := l.Next()
		if err != nil {
			return nil, err
		}
		if third.Kind == TokKeyword && third.Text == "R" {
			n, _ := strconv.Atoi(first.Text)
			g, _ := strconv.Atoi(second.Text)
			return Reference{Num: n, Gen: g}, nil
		}
		l.SeekTo(save2)
	}
	l.SeekTo(save)
	n, err := strconv.ParseFloat(first.Text, 64)
	if err != nil {
		return nil, pdferr.Wrapf(pdferr.CorruptStream, err, "invalid integer %q", first.Text)
	}
	return Number(n), nil
}

func parseArray(l *Lexer) (Value, error) {
	var arr Array
	for {
		save := l.Pos()
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokArrayClose {
			return arr, nil
		}
		if tok.Kind == TokEOF {
			return nil, pdferr.New(pdferr.CorruptStream, "unterminated array")
		}
		l.SeekTo(save)
		v, err := ParseValue(l)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func parseDictOrStream(l *Lexer) (Value, error) {
	d := NewDict()
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokDictClose {
			break
		}
		if tok.Kind != TokName {
			return nil, pdferr.Newf(pdferr.CorruptStream, "expected dictionary key, got token kind %d", tok.Kind)
		}
		key := Name(tok.Bytes)
		val, err := ParseValue(l)
		if err != nil {
			return nil, err
		}
		d.Set(key, val)
	}

	// Look ahead for "stream" keyword; if absent, this is a plain dict.
	save := l.Pos()
	tok, err := l.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokKeyword || tok.Text != "stream" {
		l.SeekTo(save)
		return d, nil
	}

	data, err := readStreamBody(l, d)
	if err != nil {
		return nil, err
	}
	return &Stream{Dict: d, Data: data}, nil
}

// readStreamBody consumes the raw bytes between "stream" and "endstream".
// Per PDF syntax the stream keyword is followed by CRLF or LF (never bare
// CR) and then exactly /Length bytes of data.
func readStreamBody(l *Lexer, dict *Dict) ([]byte, error) {
	buf := l.buf
	pos := l.Pos()
	if pos < len(buf) && buf[pos] == '\r' {
		pos++
	}
	if pos < len(buf) && buf[pos] == '\n' {
		pos++
	}

	length, ok := streamLength(dict)
	if ok && pos+length <= len(buf) {
		data := buf[pos : pos+length]
		l.SeekTo(pos + length)
		if err := expectKeyword(l, "endstream"); err != nil {
			// Tolerate a mismatched /Length by falling back to a scan for
			// "endstream", as real-world producers sometimes disagree.
			if end, ok := scanForEndstream(buf, pos); ok {
				l.SeekTo(end)
				return buf[pos:end], nil
			}
			return nil, err
		}
		return data, nil
	}

	end, ok := scanForEndstream(buf, pos)
	if !ok {
		return nil, pdferr.New(pdferr.CorruptStream, "stream missing endstream marker")
	}
	l.SeekTo(end)
	return buf[pos:end], nil
}

func streamLength(dict *Dict) (int, bool) {
	v, ok := dict.Get(Name("Length"))
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case Number:
		return int(n), true
	default:
		return 0, false
	}
}

func scanForEndstream(buf []byte, from int) (int, bool) {
	marker := []byte("endstream")
	for i := from; i+len(marker) <= len(buf); i++ {
		if string(buf[i:i+len(marker)]) == string(marker) {
			end := i
			// Trim a single trailing EOL that belongs to the stream
			// keyword's terminator, not the payload.
			if end > from && buf[end-1] == '\n' {
				end--
				if end > from && buf[end-1] == '\r' {
					end--
				}
			}
			return end, true
		}
	}
	return 0, false
}

func expectKeyword(l *Lexer, kw string) error {
	tok, err := l.Next()
	if err != nil {
		return err
	}
	if tok.Kind != TokKeyword || tok.Text != kw {
		return pdferr.Newf(pdferr.CorruptStream, "expected keyword %q, got %q", kw, tok.Text)
	}
	return nil
}

// ParseIndirectObjectAt parses "N G obj ... endobj" starting at offset in
// buf and returns the decoded IndirectObject plus the offset just past
// "endobj".
func ParseIndirectObjectAt(buf []byte, offset int) (*IndirectObject, int, error) {
	l := NewLexerAt(buf, offset)

	numTok, err := l.Next()
	if err != nil {
		return nil, 0, err
	}
	if numTok.Kind != TokInteger {
		return nil, 0, pdferr.Newf(pdferr.CorruptStream, "expected object number at offset %d", offset)
	}
	genTok, err := l.Next()
	if err != nil {
		return nil, 0, err
	}
	if genTok.Kind != TokInteger {
		return nil, 0, pdferr.Newf(pdferr.CorruptStream, "expected generation number at offset %d", offset)
	}
	if err := expectKeyword(l, "obj"); err != nil {
		return nil, 0, err
	}

	val, err := ParseValue(l)
	if err != nil {
		return nil, 0, err
	}
	if err := expectKeyword(l, "endobj"); err != nil {
		// Tolerant of producers that omit "endobj" before the next object
		// header or xref section; accept whatever was parsed.
	}

	num, _ := strconv.Atoi(numTok.Text)
	gen, _ := strconv.Atoi(genTok.Text)
	return &IndirectObject{Num: num, Gen: gen, Value: val}, l.Pos(), nil
}
