// Package reader turns Scheme source text into the twine.Node AST
// (Atom/List/Quote), interning every symbol it produces through a
// twine.Interner so that two occurrences of the same identifier share one
// *twine.Symbol, the precondition for pointer-identity symbol equality.
//
// Tokenization is built directly on github.com/timtadh/lexmachine, a
// DFA-based lexer generator. The grammar here is small enough (eight token
// classes) that this package talks to lexmachine directly rather than
// wrapping it behind its own tokenizer interface.
package reader

import (
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tokKind enumerates the lexical classes Twine's grammar needs.
type tokKind int

const (
	tokLParen tokKind = iota
	tokRParen
	tokQuote
	tokNumber
	tokString
	tokBoolTrue
	tokBoolFalse
	tokSymbol
)

type token struct {
	kind tokKind
	text string
	line int
	col  int
}

// tokenAction builds a lexmachine.Action that tags its match with kind. The
// returned value becomes the interface{} lexmachine.Scanner.Next() hands
// back, so lex below type-asserts straight to token — no intermediate
// *lexmachine.Token wrapping is needed for a grammar this small.
func tokenAction(kind tokKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return token{
			kind: kind,
			text: string(m.Bytes),
			line: m.StartLine,
			col:  m.StartColumn,
		}, nil
	}
}

func skipAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return nil, nil
}

// newLexmachineLexer builds and compiles the DFA. Twine's grammar is small
// enough that building it per-Lex call (rather than caching a package
// global) costs nothing observable and keeps this package free of
// init-time panics on a bad regex.
func newLexmachineLexer() (*lexmachine.Lexer, error) {
	lx := lexmachine.NewLexer()

	lx.Add([]byte(`\(`), tokenAction(tokLParen))
	lx.Add([]byte(`\)`), tokenAction(tokRParen))
	lx.Add([]byte(`'`), tokenAction(tokQuote))
	lx.Add([]byte(`#t`), tokenAction(tokBoolTrue))
	lx.Add([]byte(`#f`), tokenAction(tokBoolFalse))
	lx.Add([]byte(`-?[0-9]+(\.[0-9]+)?`), tokenAction(tokNumber))
	lx.Add([]byte(`"([^"\\]|\\.)*"`), tokenAction(tokString))
	// A symbol is anything that isn't whitespace, a paren, a quote mark, or
	// the start of a string literal — Scheme identifiers permit a wide
	// range of punctuation (+, -, *, ->, list->vector, even? ...).
	lx.Add([]byte(`[^ \t\r\n()'"]+`), tokenAction(tokSymbol))
	lx.Add([]byte(`;[^\n]*`), skipAction)
	lx.Add([]byte(`[ \t\r\n]+`), skipAction)

	if err := lx.Compile(); err != nil {
		return nil, err
	}
	return lx, nil
}

// lex tokenizes src in full, returning tokens in source order. A lexmachine
// UnconsumedInput error (a byte the DFA couldn't classify) is reported as a
// SyntaxError rather than skipped, so a stray character surfaces as a
// syntax error instead of silently vanishing from the token stream.
func lex(src string) ([]token, error) {
	lx, err := newLexmachineLexer()
	if err != nil {
		return nil, err
	}
	scanner, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, err
	}

	var toks []token
	for {
		raw, err, eof := scanner.Next()
		if eof {
			break
		}
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, &SyntaxError{
					Message: "unrecognized character in source",
					Line:    ui.StartLine,
					Col:     ui.StartColumn,
				}
			}
			return nil, err
		}
		if raw == nil {
			continue // a skip action (whitespace/comment) produced no token
		}
		t, ok := raw.(token)
		if !ok {
			continue
		}
		toks = append(toks, t)
	}
	return toks, nil
}
