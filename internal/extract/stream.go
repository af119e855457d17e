package extract

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// tjWordGap is the TJ displacement (thousandths of text space) treated as a word break.
const tjWordGap = -250

type operand struct {
	str    []byte
	isStr  bool
	num    float64
	isNum  bool
	array  []operand
	isList bool
}

// textFromContentStream collects text-showing operators (Tj, TJ, ' and ")
// from a decoded page content stream. BT/ET and vertical moves break lines.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	var ops []operand

	newline := func() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
	}

	lx := &lexer{data: data}
	for {
		tok, kind := lx.next()
		if kind == tokEOF {
			break
		}
		switch kind {
		case tokString:
			ops = append(ops, operand{str: tok, isStr: true})
		case tokNumber:
			f, _ := strconv.ParseFloat(string(tok), 64)
			ops = append(ops, operand{num: f, isNum: true})
		case tokArray:
			ops = append(ops, operand{array: lx.lastArray, isList: true})
		case tokName:
			ops = append(ops, operand{})
		case tokOperator:
			switch string(tok) {
			case "Tj":
				writeStrings(&sb, ops)
			case "'", "\"":
				newline()
				writeStrings(&sb, ops)
			case "TJ":
				for _, op := range ops {
					if !op.isList {
						continue
					}
					for _, el := range op.array {
						switch {
						case el.isStr:
							sb.WriteString(decodePDFText(el.str))
						case el.isNum && el.num <= tjWordGap:
							sb.WriteByte(' ')
						}
					}
				}
			case "Td", "TD":
				if len(ops) >= 2 && ops[len(ops)-1].isNum && ops[len(ops)-1].num != 0 {
					newline()
				} else if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
			case "T*", "ET":
				newline()
			}
			ops = ops[:0]
		}
	}
	return tidyLines(sb.String())
}

func writeStrings(sb *strings.Builder, ops []operand) {
	for _, op := range ops {
		if op.isStr {
			sb.WriteString(decodePDFText(op.str))
		}
	}
}

// decodePDFText handles UTF-16BE strings with a BOM; anything else is read
// as UTF-8 when valid and Windows-1252 (standard font encoding) otherwise.
func decodePDFText(b []byte) string {
	if bytes.HasPrefix(b, []byte{0xFE, 0xFF}) {
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "")
	}
	return string(out)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokString
	tokNumber
	tokName
	tokArray
	tokOperator
)

type lexer struct {
	data      []byte
	pos       int
	lastArray []operand
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *lexer) next() ([]byte, tokKind) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			return l.literal(), tokString
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.skipDict()
				continue
			}
			return l.hexString(), tokString
		case c == '[':
			l.pos++
			l.lastArray = l.array()
			return nil, tokArray
		case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
			l.pos++
		case c == '/':
			start := l.pos
			l.pos++
			for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelim(l.data[l.pos]) {
				l.pos++
			}
			return l.data[start:l.pos], tokName
		default:
			start := l.pos
			for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelim(l.data[l.pos]) {
				l.pos++
			}
			word := l.data[start:l.pos]
			if isNumber(word) {
				return word, tokNumber
			}
			return word, tokOperator
		}
	}
	return nil, tokEOF
}

func isNumber(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for i, c := range b {
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && i == 0) {
			continue
		}
		return false
	}
	return true
}

// array reads operands up to the matching ']'.
func (l *lexer) array() []operand {
	var out []operand
	for {
		for l.pos < len(l.data) && isPDFSpace(l.data[l.pos]) {
			l.pos++
		}
		if l.pos >= len(l.data) {
			return out
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return out
		}
		tok, kind := l.next()
		switch kind {
		case tokEOF:
			return out
		case tokString:
			out = append(out, operand{str: tok, isStr: true})
		case tokNumber:
			f, _ := strconv.ParseFloat(string(tok), 64)
			out = append(out, operand{num: f, isNum: true})
		case tokArray:
			out = append(out, operand{array: l.lastArray, isList: true})
		}
	}
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == '<' && l.data[l.pos+1] == '<' {
			depth++
			l.pos += 2
			continue
		}
		if l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// literal reads a (string) with nested parentheses and escapes.
func (l *lexer) literal() []byte {
	l.pos++ // (
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r', '\n':
				// line continuation
				if e == '\r' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos+1 < len(l.data) && l.data[l.pos+1] >= '0' && l.data[l.pos+1] <= '7'; i++ {
						l.pos++
						val = val*8 + int(l.data[l.pos]-'0')
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
		l.pos++
	}
	return out
}

func (l *lexer) hexString() []byte {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if !isPDFSpace(l.data[l.pos]) {
			digits = append(digits, l.data[l.pos])
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out, err := hex.DecodeString(string(digits))
	if err != nil {
		return nil
	}
	return out
}
