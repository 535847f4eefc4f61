package reader

import (
	"testing"

	"github.com/MatrixMike/twine"
)

func parseAll(t *testing.T, src string) []twine.Node {
	t.Helper()
	in := twine.NewInterner()
	forms, err := Parse(src, in)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return forms
}

func TestParseAtoms(t *testing.T) {
	forms := parseAll(t, `42 -3.5 #t #f "hello\nworld" foo?`)
	if len(forms) != 6 {
		t.Fatalf("expected 6 forms, got %d", len(forms))
	}
	num := forms[0].(*twine.Atom).Value
	if !num.IsNumber() || num.AsNumber() != 42 {
		t.Fatalf("expected 42, got %#v", num)
	}
	neg := forms[1].(*twine.Atom).Value
	if neg.AsNumber() != -3.5 {
		t.Fatalf("expected -3.5, got %v", neg.AsNumber())
	}
	if !forms[2].(*twine.Atom).Value.IsTruthy() {
		t.Fatalf("#t should be truthy")
	}
	if forms[3].(*twine.Atom).Value.IsTruthy() {
		t.Fatalf("#f should be falsy")
	}
	str := forms[4].(*twine.Atom).Value
	if str.AsString() != "hello\nworld" {
		t.Fatalf("expected escaped newline, got %q", str.AsString())
	}
	sym := forms[5].(*twine.Atom).Value
	if !sym.IsSymbol() || sym.AsSymbol().Name != "foo?" {
		t.Fatalf("expected symbol foo?, got %#v", sym)
	}
}

func TestParseListAndQuote(t *testing.T) {
	forms := parseAll(t, `(+ 1 2) '(a b c)`)
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(forms))
	}
	list, ok := forms[0].(*twine.List)
	if !ok || len(list.Children) != 3 {
		t.Fatalf("expected a 3-element list, got %#v", forms[0])
	}

	quote, ok := forms[1].(*twine.Quote)
	if !ok {
		t.Fatalf("expected a Quote node, got %#v", forms[1])
	}
	v := twine.QuoteToValue(quote)
	elems := twine.ListSlice(v)
	if len(elems) != 3 {
		t.Fatalf("expected quoted list of 3, got %d", len(elems))
	}
}

func TestInterningIsShared(t *testing.T) {
	in := twine.NewInterner()
	forms, err := Parse(`(define x 1) (set-ish x)`, in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first := forms[0].(*twine.List).Children[1].(*twine.Atom).Value.AsSymbol()
	second := forms[1].(*twine.List).Children[1].(*twine.Atom).Value.AsSymbol()
	if first != second {
		t.Fatalf("expected the same *Symbol for two occurrences of x, got distinct pointers")
	}
}

func TestParseUnterminatedListIsSyntaxError(t *testing.T) {
	in := twine.NewInterner()
	_, err := Parse(`(+ 1 2`, in)
	if err == nil {
		t.Fatalf("expected a syntax error for an unterminated list")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
}

func TestParseUnexpectedCloseParen(t *testing.T) {
	in := twine.NewInterner()
	_, err := Parse(`)`, in)
	if err == nil {
		t.Fatalf("expected a syntax error for a stray ')'")
	}
}

func TestParseOneRejectsTrailingInput(t *testing.T) {
	in := twine.NewInterner()
	_, err := ParseOne(`1 2`, in)
	if err == nil {
		t.Fatalf("expected a syntax error for trailing input after one form")
	}
}
