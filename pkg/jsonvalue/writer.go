package jsonvalue

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// numberBufferLength bounds the rendered length of a number. Longer plain
// decimal renderings switch to exponential form.
const numberBufferLength = 96

const upperHex = "0123456789ABCDEF"

// writeValue is the single serializer for the closed set of variants.
func writeValue(w Writer, v Value) {
	switch t := v.(type) {
	case nil, nullValue:
		w.WriteString("null")
	case basicValue:
		if t.typ == TypeBoolean {
			if t.boolean {
				w.WriteString("true")
			} else {
				w.WriteString("false")
			}
			return
		}
		writeNumber(w, t.number)
	case stringValue:
		writeQuoted(w, t.units)
	case *Object:
		if t == nil {
			w.WriteString("null")
			return
		}
		w.WriteByte('{')
		for i, key := range t.order {
			if i > 0 {
				w.WriteByte(',')
			}
			writeQuoted(w, utf16.Encode([]rune(key)))
			w.WriteByte(':')
			writeValue(w, t.data[key])
		}
		w.WriteByte('}')
	case *Array:
		if t == nil {
			w.WriteString("null")
			return
		}
		w.WriteByte('[')
		for i, item := range t.items {
			if i > 0 {
				w.WriteByte(',')
			}
			writeValue(w, item)
		}
		w.WriteByte(']')
	}
}

// writeNumber renders n with the shortest digits that round-trip. JSON has
// no literal for NaN or the infinities, so they are written as null.
func writeNumber(w Writer, n float64) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		w.WriteString("null")
		return
	}
	w.WriteString(formatNumber(n))
}

func formatNumber(n float64) string {
	negative := math.Signbit(n)
	digits, exponent := shortestDigits(math.Abs(n))

	if s := decimalForm(negative, digits, exponent); len(s) <= numberBufferLength {
		return s
	}
	if s := exponentialForm(negative, digits, exponent); len(s) <= numberBufferLength {
		return s
	}
	return "NaN"
}

// shortestDigits returns the significant digits of a non-negative finite n
// and the decimal exponent of the first digit, so n = 0.d1d2... * 10^(exponent+1).
func shortestDigits(n float64) (string, int) {
	if n == 0 {
		return "0", 0
	}
	s := strconv.FormatFloat(n, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	exponent, _ := strconv.Atoi(exp)
	return strings.Replace(mantissa, ".", "", 1), exponent
}

// decimalForm writes [-]digits with the decimal point placed by exponent,
// padding with zeros as needed.
func decimalForm(negative bool, digits string, exponent int) string {
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	switch {
	case exponent < 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -exponent-1))
		b.WriteString(digits)
	case len(digits) <= exponent+1:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", exponent+1-len(digits)))
	default:
		b.WriteString(digits[:exponent+1])
		b.WriteByte('.')
		b.WriteString(digits[exponent+1:])
	}
	return b.String()
}

// exponentialForm writes [-]d[.ddd]e(+|-)x.
func exponentialForm(negative bool, digits string, exponent int) string {
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte(digits[0])
	if len(digits) > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	b.WriteByte('e')
	if exponent < 0 {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(abs(exponent)))
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// writeQuoted writes units as a double-quoted JSON string. Units outside the
// printable ASCII range, and '<' and '>', are written as \uXXXX so the output
// can be embedded in an HTML page.
func writeQuoted(w Writer, units []uint16) {
	w.WriteByte('"')
	for _, c := range units {
		switch c {
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		case '\\':
			w.WriteString(`\\`)
		case '"':
			w.WriteString(`\"`)
		default:
			if c < 0x20 || c > 0x7E || c == '<' || c == '>' {
				w.Write([]byte{'\\', 'u',
					upperHex[c>>12], upperHex[c>>8&0xF], upperHex[c>>4&0xF], upperHex[c&0xF]})
				continue
			}
			w.WriteByte(byte(c))
		}
	}
	w.WriteByte('"')
}

// Quote returns s as a JSON string literal using the serializer's escaping.
func Quote(s string) string {
	var b strings.Builder
	writeQuoted(&b, utf16.Encode([]rune(s)))
	return b.String()
}
