package twine

// SourcePos is the opaque source-position payload every AST node carries,
// used only for error reporting. The reader collaborator (internal/reader)
// is responsible for filling it in; zero value means "unknown position"
// and is rendered without a caret snippet.
type SourcePos struct {
	Line int
	Col  int
}

// Node is the AST contract the core consumes: Atom(Value), List(children),
// Quote(child). It is a closed set by design — the
// evaluator's special-form dispatch switches on concrete node types, not an
// open interface method set.
type Node interface {
	Pos() SourcePos
}

// Atom wraps a self-evaluating literal or a Symbol reference.
type Atom struct {
	Value Value
	Span  SourcePos
}

func (a *Atom) Pos() SourcePos { return a.Span }

// List is a parenthesized sequence of child nodes: a special-form use, a
// procedure application, or (quoted) literal list syntax.
type List struct {
	Children []Node
	Span     SourcePos
}

func (l *List) Pos() SourcePos { return l.Span }

// Quote wraps a single child node that must be converted to a Value without
// evaluation.
type Quote struct {
	Child Node
	Span  SourcePos
}

func (q *Quote) Pos() SourcePos { return q.Span }

// QuoteToValue converts an AST node into a literal Value, recursively,
// without evaluating any of it — the contract of the `quote` special form
// and of any literal list/atom appearing inside a quoted form.
func QuoteToValue(n Node) Value {
	switch t := n.(type) {
	case *Atom:
		return t.Value
	case *Quote:
		return QuoteToValue(t.Child)
	case *List:
		vs := make([]Value, len(t.Children))
		for i, c := range t.Children {
			vs[i] = QuoteToValue(c)
		}
		return ListFromSlice(vs)
	default:
		return Nil
	}
}
