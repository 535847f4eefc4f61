// printer.go implements the canonical value printing, its string-escaping
// adapted to this core's much smaller value set.
package twine

import (
	"strconv"
	"strings"
)

// Display renders v in the canonical printed form, used for the REPL's
// value-printing path: numbers as decimal (integer if representable
// exactly); booleans as #t/#f; strings double-quoted with standard
// escapes; symbols as their name; lists as (v1 v2 … vn); Nil as ();
// procedures as an opaque tag; fiber handles as an opaque tag with id.
// parse(print(v)) round-trips back to v under this form.
func Display(v Value) string {
	var b strings.Builder
	writeValue(&b, v, true)
	return b.String()
}

// WriteOut renders v the way the `display` built-in writes it to output:
// identical to Display except a top-level or nested string is written as
// its raw content, with no surrounding quotes or escaping.
func WriteOut(v Value) string {
	var b strings.Builder
	writeValue(&b, v, false)
	return b.String()
}

func writeValue(b *strings.Builder, v Value, quoteStrings bool) {
	switch v.Tag {
	case TagNumber:
		b.WriteString(formatNumber(v.AsNumber()))
	case TagBoolean:
		if v.b {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case TagString:
		if quoteStrings {
			writeQuotedString(b, v.AsString())
		} else {
			b.WriteString(v.AsString())
		}
	case TagSymbol:
		b.WriteString(v.AsSymbol().Name)
	case TagNil:
		b.WriteString("()")
	case TagPair:
		b.WriteByte('(')
		first := true
		for cur := v; cur.Tag == TagPair; cur = cur.pair.Tail {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			writeValue(b, cur.pair.Head, quoteStrings)
		}
		b.WriteByte(')')
	case TagProcedure:
		p := v.AsProcedure()
		b.WriteString("#<procedure")
		if p.Name != "" {
			b.WriteByte(' ')
			b.WriteString(p.Name)
		}
		b.WriteByte('>')
	case TagFiberHandle:
		b.WriteString("#<fiber ")
		b.WriteString(strconv.FormatUint(uint64(v.AsFiberID()), 10))
		b.WriteByte('>')
	default:
		b.WriteString("#<unknown>")
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func writeQuotedString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
