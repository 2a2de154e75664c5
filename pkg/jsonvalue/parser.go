package jsonvalue

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
)

// MaxDepth is the maximum number of nested arrays and objects ParseJSON
// accepts. Deeper input fails to parse.
const MaxDepth = 1000

// ErrInvalidJSON is wrapped by every error returned from ParseJSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// SyntaxError describes why and where parsing stopped. Offset counts UTF-16
// code units from the start of the input.
type SyntaxError struct {
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %s", e.Offset, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrInvalidJSON
}

type token int

const (
	tokenObjectBegin token = iota
	tokenObjectEnd
	tokenArrayBegin
	tokenArrayEnd
	tokenString
	tokenNumber
	tokenTrue
	tokenFalse
	tokenNull
	tokenListSeparator
	tokenPairSeparator
	tokenInvalid
)

var (
	nullLiteral  = []uint16{'n', 'u', 'l', 'l'}
	trueLiteral  = []uint16{'t', 'r', 'u', 'e'}
	falseLiteral = []uint16{'f', 'a', 'l', 's', 'e'}
)

// ParseJSON parses text as a single JSON value. The whole input must be
// consumed by that value: any trailing content, whitespace included, is an
// error. On failure the returned Value is nil.
func ParseJSON(text string) (Value, error) {
	return ParseJSONUTF16(utf16.Encode([]rune(text)))
}

// ParseJSONUTF16 is ParseJSON over UTF-16 code units.
func ParseJSONUTF16(text []uint16) (Value, error) {
	p := &parser{input: text}
	v, end, err := p.buildValue(0, 0)
	if err != nil {
		return nil, err
	}
	if end != len(text) {
		return nil, p.fail(end, "unexpected content after value")
	}
	return v, nil
}

type parser struct {
	input []uint16
}

func (p *parser) fail(offset int, reason string) *SyntaxError {
	return &SyntaxError{Offset: offset, Reason: reason}
}

func isSpace(c uint16) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c uint16) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c uint16) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c uint16) uint16 {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func (p *parser) skipSpace(pos int) int {
	for pos < len(p.input) && isSpace(p.input[pos]) {
		pos++
	}
	return pos
}

// nextToken skips whitespace and classifies the token starting at pos. It
// returns the token with its [start, end) bounds.
func (p *parser) nextToken(pos int) (token, int, int) {
	start := p.skipSpace(pos)
	if start == len(p.input) {
		return tokenInvalid, start, start
	}
	switch c := p.input[start]; c {
	case 'n':
		if end, ok := p.constToken(start, nullLiteral); ok {
			return tokenNull, start, end
		}
	case 't':
		if end, ok := p.constToken(start, trueLiteral); ok {
			return tokenTrue, start, end
		}
	case 'f':
		if end, ok := p.constToken(start, falseLiteral); ok {
			return tokenFalse, start, end
		}
	case '[':
		return tokenArrayBegin, start, start + 1
	case ']':
		return tokenArrayEnd, start, start + 1
	case ',':
		return tokenListSeparator, start, start + 1
	case '{':
		return tokenObjectBegin, start, start + 1
	case '}':
		return tokenObjectEnd, start, start + 1
	case ':':
		return tokenPairSeparator, start, start + 1
	case '"':
		if end, ok := p.stringToken(start + 1); ok {
			return tokenString, start, end
		}
	default:
		if c == '-' || isDigit(c) {
			if end, ok := p.numberToken(start); ok {
				return tokenNumber, start, end
			}
		}
	}
	return tokenInvalid, start, start
}

func (p *parser) constToken(pos int, literal []uint16) (int, bool) {
	if len(p.input)-pos < len(literal) {
		return pos, false
	}
	for i, c := range literal {
		if p.input[pos+i] != c {
			return pos, false
		}
	}
	return pos + len(literal), true
}

// readInt consumes a run of digits. Without allowLeadingZeros a run longer
// than one digit must not start with '0'.
func (p *parser) readInt(pos int, allowLeadingZeros bool) (int, bool) {
	start := pos
	for pos < len(p.input) && isDigit(p.input[pos]) {
		pos++
	}
	length := pos - start
	if length == 0 {
		return pos, false
	}
	if !allowLeadingZeros && length > 1 && p.input[start] == '0' {
		return pos, false
	}
	return pos, true
}

// numberToken delimits [-] int [frac] [exp]. Conversion happens in
// decodeNumber.
func (p *parser) numberToken(pos int) (int, bool) {
	if p.input[pos] == '-' {
		pos++
	}
	pos, ok := p.readInt(pos, false)
	if !ok {
		return pos, false
	}
	if pos == len(p.input) {
		return pos, true
	}
	if p.input[pos] == '.' {
		if pos, ok = p.readInt(pos+1, true); !ok {
			return pos, false
		}
		if pos == len(p.input) {
			return pos, true
		}
	}
	if c := p.input[pos]; c == 'e' || c == 'E' {
		pos++
		if pos == len(p.input) {
			return pos, false
		}
		if c := p.input[pos]; c == '-' || c == '+' {
			pos++
			if pos == len(p.input) {
				return pos, false
			}
		}
		if pos, ok = p.readInt(pos, true); !ok {
			return pos, false
		}
	}
	return pos, true
}

func (p *parser) readHexDigits(pos, digits int) (int, bool) {
	if len(p.input)-pos < digits {
		return pos, false
	}
	for i := 0; i < digits; i++ {
		if !isHexDigit(p.input[pos+i]) {
			return pos, false
		}
	}
	return pos + digits, true
}

// stringToken scans from just after the opening quote to just after the
// closing one, checking that every escape is well formed.
func (p *parser) stringToken(pos int) (int, bool) {
	for pos < len(p.input) {
		c := p.input[pos]
		pos++
		if c == '"' {
			return pos, true
		}
		if c != '\\' {
			continue
		}
		if pos == len(p.input) {
			return pos, false
		}
		c = p.input[pos]
		pos++
		var ok bool
		switch c {
		case 'x':
			if pos, ok = p.readHexDigits(pos, 2); !ok {
				return pos, false
			}
		case 'u':
			if pos, ok = p.readHexDigits(pos, 4); !ok {
				return pos, false
			}
		case '\\', '/', 'b', 'f', 'n', 'r', 't', 'v', '"':
		default:
			return pos, false
		}
	}
	return pos, false
}

// decodeString resolves the escapes in the unquoted token body [start, end).
func (p *parser) decodeString(start, end int) ([]uint16, bool) {
	out := make([]uint16, 0, end-start)
	for pos := start; pos < end; {
		c := p.input[pos]
		pos++
		if c != '\\' {
			out = append(out, c)
			continue
		}
		c = p.input[pos]
		pos++
		switch c {
		case '"', '/', '\\':
		case 'b':
			c = '\b'
		case 'f':
			c = '\f'
		case 'n':
			c = '\n'
		case 'r':
			c = '\r'
		case 't':
			c = '\t'
		case 'v':
			c = '\v'
		case 'x':
			c = hexValue(p.input[pos])<<4 | hexValue(p.input[pos+1])
			pos += 2
		case 'u':
			c = hexValue(p.input[pos])<<12 | hexValue(p.input[pos+1])<<8 |
				hexValue(p.input[pos+2])<<4 | hexValue(p.input[pos+3])
			pos += 4
		default:
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

// decodeNumber converts a delimited number token. The grammar already
// restricts the token to ASCII.
func (p *parser) decodeNumber(start, end int) (float64, bool) {
	raw := make([]byte, end-start)
	for i, c := range p.input[start:end] {
		raw[i] = byte(c)
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// buildValue parses one value starting at pos. depth is the number of
// containers enclosing it. It returns the value and the offset just past it.
func (p *parser) buildValue(pos, depth int) (Value, int, error) {
	tok, start, end := p.nextToken(pos)
	switch tok {
	case tokenNull:
		return Null(), end, nil
	case tokenTrue:
		return NewBoolean(true), end, nil
	case tokenFalse:
		return NewBoolean(false), end, nil
	case tokenNumber:
		n, ok := p.decodeNumber(start, end)
		if !ok {
			return nil, start, p.fail(start, "number out of range")
		}
		return NewNumber(n), end, nil
	case tokenString:
		units, ok := p.decodeString(start+1, end-1)
		if !ok {
			return nil, start, p.fail(start, "invalid escape in string")
		}
		return stringValue{units: units}, end, nil
	case tokenArrayBegin:
		if depth+1 > MaxDepth {
			return nil, start, p.fail(start, fmt.Sprintf("nesting depth exceeds %d", MaxDepth))
		}
		return p.buildArray(end, depth+1)
	case tokenObjectBegin:
		if depth+1 > MaxDepth {
			return nil, start, p.fail(start, fmt.Sprintf("nesting depth exceeds %d", MaxDepth))
		}
		return p.buildObject(end, depth+1)
	case tokenInvalid:
		if start == len(p.input) {
			return nil, start, p.fail(start, "unexpected end of input")
		}
		return nil, start, p.fail(start, "invalid token")
	default:
		return nil, start, p.fail(start, "expected a value")
	}
}

// buildArray parses elements after '['. depth counts the array itself.
func (p *parser) buildArray(pos, depth int) (Value, int, error) {
	array := NewArray()
	tok, _, end := p.nextToken(pos)
	for tok != tokenArrayEnd {
		v, next, err := p.buildValue(pos, depth)
		if err != nil {
			return nil, next, err
		}
		array.PushValue(v)

		var start int
		pos = next
		tok, start, end = p.nextToken(pos)
		switch tok {
		case tokenListSeparator:
			pos = end
			tok, start, end = p.nextToken(pos)
			if tok == tokenArrayEnd {
				return nil, start, p.fail(start, "trailing comma in array")
			}
		case tokenArrayEnd:
		default:
			return nil, start, p.fail(start, "expected ',' or ']'")
		}
	}
	return array, end, nil
}

// buildObject parses members after '{'. depth counts the object itself.
func (p *parser) buildObject(pos, depth int) (Value, int, error) {
	object := NewObject()
	tok, start, end := p.nextToken(pos)
	for tok != tokenObjectEnd {
		if tok != tokenString {
			return nil, start, p.fail(start, "expected string key")
		}
		units, ok := p.decodeString(start+1, end-1)
		if !ok {
			return nil, start, p.fail(start, "invalid escape in key")
		}
		key := string(utf16.Decode(units))

		tok, start, end = p.nextToken(end)
		if tok != tokenPairSeparator {
			return nil, start, p.fail(start, "expected ':'")
		}
		v, next, err := p.buildValue(end, depth)
		if err != nil {
			return nil, next, err
		}
		object.SetValue(key, v)

		tok, start, end = p.nextToken(next)
		switch tok {
		case tokenListSeparator:
			tok, start, end = p.nextToken(end)
			if tok == tokenObjectEnd {
				return nil, start, p.fail(start, "trailing comma in object")
			}
		case tokenObjectEnd:
		default:
			return nil, start, p.fail(start, "expected ',' or '}'")
		}
	}
	return object, end, nil
}
