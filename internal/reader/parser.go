package reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MatrixMike/twine"
)

// SyntaxError reports a lexical or structural problem found before the core
// evaluator ever sees a Node. It is raised here, outside the core, rather
// than via errors.go's failSyntax, since internal/reader has no
// FiberContext to panic through.
type SyntaxError struct {
	Message string
	Line    int
	Col     int
	// Incomplete marks an error caused only by running out of input before a
	// form closed (an unterminated list) — a REPL can treat this as "read
	// another line" rather than a hard error.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

// IsIncomplete reports whether err is a SyntaxError caused by input ending
// mid-form, letting a REPL ask for one more line instead of failing.
func IsIncomplete(err error) bool {
	se, ok := err.(*SyntaxError)
	return ok && se.Incomplete
}

// parser walks a flat token slice with one token of lookahead, building
// twine.Node values directly. There is no operator precedence to resolve
// here: Scheme's uniform prefix s-expression syntax needs only recursive
// descent over lists and atoms, each node carrying a SourcePos and
// descriptive "expected X, got Y" messages on failure.
type parser struct {
	toks []token
	pos  int
	in   *twine.Interner
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func toPos(t token) twine.SourcePos {
	return twine.SourcePos{Line: t.line, Col: t.col}
}

// Parse tokenizes and parses src into a sequence of top-level forms, the
// twine.Node slice an Interpreter's RunProgram consumes directly.
func Parse(src string, in *twine.Interner) ([]twine.Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, in: in}

	var forms []twine.Node
	for {
		if _, ok := p.peek(); !ok {
			break
		}
		n, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, n)
	}
	return forms, nil
}

// ParseOne parses exactly one top-level form, for a REPL that evaluates one
// expression per input line.
func ParseOne(src string, in *twine.Interner) (twine.Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, in: in}
	n, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peek(); ok {
		t := p.toks[p.pos]
		return nil, &SyntaxError{Message: "unexpected trailing input", Line: t.line, Col: t.col}
	}
	return n, nil
}

func (p *parser) parseForm() (twine.Node, error) {
	t, ok := p.next()
	if !ok {
		return nil, &SyntaxError{Message: "unexpected end of input", Line: -1, Col: -1, Incomplete: true}
	}
	switch t.kind {
	case tokLParen:
		return p.parseList(t)
	case tokRParen:
		return nil, &SyntaxError{Message: "unexpected ')'", Line: t.line, Col: t.col}
	case tokQuote:
		child, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return &twine.Quote{Child: child, Span: toPos(t)}, nil
	case tokNumber:
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &SyntaxError{Message: fmt.Sprintf("malformed number %q", t.text), Line: t.line, Col: t.col}
		}
		return &twine.Atom{Value: twine.Number(n), Span: toPos(t)}, nil
	case tokString:
		return &twine.Atom{Value: twine.String(unquoteString(t.text)), Span: toPos(t)}, nil
	case tokBoolTrue:
		return &twine.Atom{Value: twine.Boolean(true), Span: toPos(t)}, nil
	case tokBoolFalse:
		return &twine.Atom{Value: twine.Boolean(false), Span: toPos(t)}, nil
	case tokSymbol:
		sym := p.in.Intern(t.text)
		return &twine.Atom{Value: twine.SymbolVal(sym), Span: toPos(t)}, nil
	default:
		return nil, &SyntaxError{Message: "unrecognized token", Line: t.line, Col: t.col}
	}
}

func (p *parser) parseList(open token) (twine.Node, error) {
	var children []twine.Node
	for {
		t, ok := p.peek()
		if !ok {
			return nil, &SyntaxError{Message: "unterminated list, missing ')'", Line: open.line, Col: open.col, Incomplete: true}
		}
		if t.kind == tokRParen {
			p.pos++
			break
		}
		n, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return &twine.List{Children: children, Span: toPos(open)}, nil
}

// unquoteString strips the surrounding quote marks and resolves the small
// set of backslash escapes Twine's string literal syntax supports.
func unquoteString(lit string) string {
	inner := lit[1 : len(lit)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i == len(inner)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(inner[i])
		}
	}
	return b.String()
}
