package extract

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokArray
	tokDelim
	tokOperator
)

type token struct {
	kind  tokenKind
	text  string  // operator, name or decoded string
	num   float64 // tokNumber
	items []token // tokArray
}

// kerning below this (thousandths of an em) inside a TJ array is read as a word gap
const tjSpaceThreshold = -200

// streamText turns a page content stream into text, one output line per text line.
func streamText(data []byte) string {
	s := &scanner{data: data}
	w := &textWriter{}
	var operands []token
	var lastY float64
	var haveY bool

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "BT":
			w.space()
		case "Tj":
			w.strings(operands)
		case "'", "\"":
			w.newline()
			if n := len(operands); n > 0 && operands[n-1].kind == tokString {
				w.write(operands[n-1].text)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == tokArray {
				for _, it := range operands[n-1].items {
					switch it.kind {
					case tokString:
						w.write(it.text)
					case tokNumber:
						if it.num < tjSpaceThreshold {
							w.space()
						}
					}
				}
			}
		case "Td", "TD":
			if n := len(operands); n >= 2 && operands[n-1].kind == tokNumber && operands[n-2].kind == tokNumber {
				if operands[n-1].num != 0 {
					w.newline()
				} else if operands[n-2].num > 0 {
					w.space()
				}
			}
		case "Tm":
			if n := len(operands); n >= 6 && operands[n-1].kind == tokNumber {
				y := operands[n-1].num
				if haveY && y != lastY {
					w.newline()
				} else {
					w.space()
				}
				lastY, haveY = y, true
			}
		case "T*":
			w.newline()
		case "BI":
			s.skipInlineImage()
		}
		operands = operands[:0]
	}
	return w.String()
}

type textWriter struct {
	b strings.Builder
}

func (w *textWriter) write(s string) { w.b.WriteString(s) }

func (w *textWriter) strings(operands []token) {
	for _, op := range operands {
		if op.kind == tokString {
			w.write(op.text)
		}
	}
}

func (w *textWriter) last() byte {
	s := w.b.String()
	if s == "" {
		return '\n'
	}
	return s[len(s)-1]
}

func (w *textWriter) space() {
	if c := w.last(); c != ' ' && c != '\n' {
		w.b.WriteByte(' ')
	}
}

func (w *textWriter) newline() {
	if w.last() != '\n' {
		w.b.WriteByte('\n')
	}
}

func (w *textWriter) String() string {
	lines := strings.Split(w.b.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// arrays nested deeper than this are skipped without being decoded
const maxArrayDepth = 32

type scanner struct {
	data  []byte
	pos   int
	depth int
}

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *scanner) skipWhiteAndComments() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isWhite(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		return
	}
}

func (s *scanner) next() (token, bool) {
	s.skipWhiteAndComments()
	if s.pos >= len(s.data) {
		return token{}, false
	}
	c := s.data[s.pos]
	switch {
	case c == '(':
		s.pos++
		return token{kind: tokString, text: s.literal()}, true
	case c == '<':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
			s.pos += 2
			return token{kind: tokDelim, text: "<<"}, true
		}
		s.pos++
		return token{kind: tokString, text: s.hex()}, true
	case c == '>':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '>' {
			s.pos += 2
			return token{kind: tokDelim, text: ">>"}, true
		}
		s.pos++
		return token{kind: tokDelim, text: ">"}, true
	case c == '[':
		s.pos++
		if s.depth >= maxArrayDepth {
			s.skipArray()
			return token{kind: tokArray}, true
		}
		s.depth++
		items := s.array()
		s.depth--
		return token{kind: tokArray, items: items}, true
	case c == ']' || c == '{' || c == '}' || c == ')':
		s.pos++
		return token{kind: tokDelim, text: string(c)}, true
	case c == '/':
		s.pos++
		return token{kind: tokName, text: s.regular()}, true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		word := s.regular()
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokNumber, num: f}, true
		}
		return token{kind: tokOperator, text: word}, true
	default:
		return token{kind: tokOperator, text: s.regular()}, true
	}
}

func (s *scanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isWhite(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start && s.pos < len(s.data) {
		// lone delimiter such as a stray '}'
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *scanner) array() []token {
	var items []token
	for {
		s.skipWhiteAndComments()
		if s.pos >= len(s.data) {
			return items
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return items
		}
		tok, ok := s.next()
		if !ok {
			return items
		}
		items = append(items, tok)
	}
}

// skipArray consumes an array body, nested arrays included, without recursion.
func (s *scanner) skipArray() {
	open := 1
	for s.pos < len(s.data) && open > 0 {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '[':
			open++
		case ']':
			open--
		case '(':
			s.literal()
		case '%':
			s.pos--
			s.skipWhiteAndComments()
		}
	}
}

// literal decodes a (...) string; the opening paren is already consumed.
func (s *scanner) literal() string {
	var raw []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.data) {
				return decodeBytes(raw)
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				raw = append(raw, '\n')
			case 'r':
				raw = append(raw, '\r')
			case 't':
				raw = append(raw, '\t')
			case 'b', 'f':
			case '\r':
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						v = v*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					raw = append(raw, byte(v))
				} else {
					raw = append(raw, e)
				}
			}
		case '(':
			depth++
			raw = append(raw, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeBytes(raw)
			}
			raw = append(raw, c)
		default:
			raw = append(raw, c)
		}
	}
	return decodeBytes(raw)
}

// hex decodes a <...> string; the opening bracket is already consumed.
func (s *scanner) hex() string {
	var digits []byte
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		if c := s.data[s.pos]; !isWhite(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	s.pos++ // '>'
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return ""
		}
		raw = append(raw, byte(v))
	}
	// two-byte strings with a zero high byte are plain UCS-2 text
	if len(raw) >= 2 && len(raw)%2 == 0 {
		wide := true
		for i := 0; i < len(raw); i += 2 {
			if raw[i] != 0 {
				wide = false
				break
			}
		}
		if wide {
			narrow := make([]byte, 0, len(raw)/2)
			for i := 1; i < len(raw); i += 2 {
				narrow = append(narrow, raw[i])
			}
			raw = narrow
		}
	}
	return decodeBytes(raw)
}

// decodeBytes maps single-byte text (Latin-1 superset of WinAnsi) to a string, dropping control bytes.
func decodeBytes(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		r := rune(c)
		if r == '\n' || r == '\t' {
			b.WriteByte(' ')
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// skipInlineImage advances past "ID <binary> EI"; the BI operator is already consumed.
func (s *scanner) skipInlineImage() {
	for {
		tok, ok := s.next()
		if !ok {
			return
		}
		if tok.kind == tokOperator && tok.text == "ID" {
			break
		}
	}
	if s.pos < len(s.data) {
		s.pos++ // single white-space after ID
	}
	for i := s.pos; i+1 < len(s.data); i++ {
		if s.data[i] != 'E' || s.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isWhite(s.data[i-1])
		after := i+2 >= len(s.data) || isWhite(s.data[i+2])
		if before && after {
			s.pos = i + 2
			return
		}
	}
	s.pos = len(s.data)
}
