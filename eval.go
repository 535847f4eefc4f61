// eval.go implements the evaluator. Eval is written as an explicit
// trampoline — tail calls reassign the loop's node/env locals and
// `continue` rather than recursing — so that mutual and self tail recursion
// runs in O(1) native Go stack. Non-tail calls fall through to ordinary
// recursive Eval calls instead, bounded only by available memory, and
// runtime failures unwind through the same panic/recover discipline
// (fail() building an *EvalError, carried as rtErr) used everywhere else
// in the interpreter.
package twine

// Eval reduces a single AST node to a Value in env, on behalf of the fiber
// fc belongs to.
func Eval(ip *Interpreter, node Node, env *Env, fc *FiberContext) Value {
	for {
		switch n := node.(type) {
		case *Atom:
			if n.Value.IsSymbol() {
				return env.Lookup(n.Value.AsSymbol(), n.Span)
			}
			return n.Value

		case *Quote:
			return QuoteToValue(n.Child)

		case *List:
			if len(n.Children) == 0 {
				failSyntax(n.Span, "empty combination ()")
			}
			if headAtom, ok := n.Children[0].(*Atom); ok && headAtom.Value.IsSymbol() {
				switch headAtom.Value.AsSymbol().Name {
				case "quote":
					if len(n.Children) != 2 {
						failArity(n.Span, "quote", 1, len(n.Children)-1)
					}
					return QuoteToValue(n.Children[1])

				case "if":
					if len(n.Children) != 3 && len(n.Children) != 4 {
						failArity(n.Span, "if", 2, len(n.Children)-1)
					}
					cond := Eval(ip, n.Children[1], env, fc)
					if cond.IsTruthy() {
						node = n.Children[2]
						continue
					}
					if len(n.Children) == 4 {
						node = n.Children[3]
						continue
					}
					return Nil

				case "define":
					return evalDefine(ip, n, env, fc)

				case "lambda":
					return evalLambda(n, env)

				case "let":
					var body []Node
					env, body = evalLetBindings(ip, n, env, fc, false)
					if len(body) == 0 {
						return Nil
					}
					evalAllButLast(ip, body[:len(body)-1], env, fc)
					node = body[len(body)-1]
					continue

				case "letrec":
					var body []Node
					env, body = evalLetBindings(ip, n, env, fc, true)
					if len(body) == 0 {
						return Nil
					}
					evalAllButLast(ip, body[:len(body)-1], env, fc)
					node = body[len(body)-1]
					continue

				case "async":
					return evalAsync(ip, n, env, fc)
				}
			}

			// Procedure application: strict left-to-right evaluation of the
			// head and every argument, head first.
			headVal := Eval(ip, n.Children[0], env, fc)
			args := make([]Value, len(n.Children)-1)
			for i, c := range n.Children[1:] {
				args[i] = Eval(ip, c, env, fc)
			}
			if !headVal.IsProcedure() {
				failType(n.Span, "procedure", typeName(headVal))
			}
			proc := headVal.AsProcedure()
			proc.checkArity(n.Span, len(args))

			if proc.Builtin {
				return proc.Impl(ip, fc, args, n.Span)
			}

			child := Extend(proc.Env, proc.Params, args, n.Span)
			if len(proc.Body) == 0 {
				return Nil
			}
			evalAllButLast(ip, proc.Body[:len(proc.Body)-1], child, fc)
			node = proc.Body[len(proc.Body)-1]
			env = child
			continue

		default:
			failInternal(SourcePos{}, "unrecognized AST node type")
		}
	}
}

// EvalSequence evaluates expressions left to right, returning the last.
// An empty sequence evaluates to Nil (used for an empty `async` body).
func EvalSequence(ip *Interpreter, nodes []Node, env *Env, fc *FiberContext) Value {
	if len(nodes) == 0 {
		return Nil
	}
	evalAllButLast(ip, nodes[:len(nodes)-1], env, fc)
	return Eval(ip, nodes[len(nodes)-1], env, fc)
}

func evalAllButLast(ip *Interpreter, nodes []Node, env *Env, fc *FiberContext) {
	for _, n := range nodes {
		Eval(ip, n, env, fc)
	}
}

func evalDefine(ip *Interpreter, n *List, env *Env, fc *FiberContext) Value {
	if len(n.Children) < 2 {
		failSyntax(n.Span, "define: missing target")
	}
	switch target := n.Children[1].(type) {
	case *Atom:
		if !target.Value.IsSymbol() {
			failSyntax(n.Span, "define: target must be a symbol")
		}
		if len(n.Children) != 3 {
			failSyntax(n.Span, "define: expected exactly one expression")
		}
		v := Eval(ip, n.Children[2], env, fc)
		env.Define(target.Value.AsSymbol(), v)
		return Nil

	case *List:
		if len(target.Children) == 0 {
			failSyntax(n.Span, "define: malformed procedure head")
		}
		nameAtom, ok := target.Children[0].(*Atom)
		if !ok || !nameAtom.Value.IsSymbol() {
			failSyntax(n.Span, "define: procedure name must be a symbol")
		}
		params := distinctSymbolParams(n.Span, target.Children[1:], "define")
		body := n.Children[2:]
		if len(body) == 0 {
			failSyntax(n.Span, "define: empty body")
		}
		proc := &Procedure{Name: nameAtom.Value.AsSymbol().Name, Params: params, Body: body, Env: env}
		env.Define(nameAtom.Value.AsSymbol(), ProcedureVal(proc))
		return Nil

	default:
		failSyntax(n.Span, "define: malformed target")
		panic("unreachable")
	}
}

func evalLambda(n *List, env *Env) Value {
	if len(n.Children) < 3 {
		failSyntax(n.Span, "lambda: expected parameters and a body")
	}
	paramsList, ok := n.Children[1].(*List)
	if !ok {
		failSyntax(n.Span, "lambda: parameter list must be a list")
	}
	params := distinctSymbolParams(n.Span, paramsList.Children, "lambda")
	body := n.Children[2:]
	if len(body) == 0 {
		failSyntax(n.Span, "lambda: empty body")
	}
	return ProcedureVal(&Procedure{Name: "lambda", Params: params, Body: body, Env: env})
}

func distinctSymbolParams(pos SourcePos, nodes []Node, form string) []*Symbol {
	params := make([]*Symbol, 0, len(nodes))
	seen := make(map[*Symbol]bool, len(nodes))
	for _, p := range nodes {
		pa, ok := p.(*Atom)
		if !ok || !pa.Value.IsSymbol() {
			failSyntax(pos, "%s: parameters must be symbols", form)
		}
		s := pa.Value.AsSymbol()
		if seen[s] {
			failSyntax(pos, "%s: duplicate parameter %q", form, s.Name)
		}
		seen[s] = true
		params = append(params, s)
	}
	return params
}

// evalLetBindings parses the common (let/letrec ((s e) ...) body...) shape
// and returns the new child environment plus the remaining body nodes. For
// plain let, every eᵢ is evaluated in the outer env before any sᵢ is bound
// (simultaneous binding). For letrec, every sᵢ is declared pending up
// front in the new frame, and each eᵢ is evaluated in
// that same frame — so a lambda among the eᵢ may close over its own or a
// sibling's binding — with the binding installed (and its pending marker
// cleared) immediately after its own expression is evaluated.
func evalLetBindings(ip *Interpreter, n *List, outer *Env, fc *FiberContext, recursive bool) (*Env, []Node) {
	form := "let"
	if recursive {
		form = "letrec"
	}
	if len(n.Children) < 2 {
		failSyntax(n.Span, "%s: expected bindings and a body", form)
	}
	bindingsList, ok := n.Children[1].(*List)
	if !ok {
		failSyntax(n.Span, "%s: bindings must be a list", form)
	}
	syms := make([]*Symbol, 0, len(bindingsList.Children))
	exprs := make([]Node, 0, len(bindingsList.Children))
	seen := make(map[*Symbol]bool, len(bindingsList.Children))
	for _, b := range bindingsList.Children {
		bl, ok := b.(*List)
		if !ok || len(bl.Children) != 2 {
			failSyntax(n.Span, "%s: malformed binding", form)
		}
		a, ok := bl.Children[0].(*Atom)
		if !ok || !a.Value.IsSymbol() {
			failSyntax(n.Span, "%s: binding name must be a symbol", form)
		}
		s := a.Value.AsSymbol()
		if seen[s] {
			failSyntax(n.Span, "%s: duplicate binding name %q", form, s.Name)
		}
		seen[s] = true
		syms = append(syms, s)
		exprs = append(exprs, bl.Children[1])
	}

	body := n.Children[2:]

	if !recursive {
		vals := make([]Value, len(exprs))
		for i, e := range exprs {
			vals[i] = Eval(ip, e, outer, fc)
		}
		return Extend(outer, syms, vals, n.Span), body
	}

	child := NewChildEnv(outer)
	child.DeclarePending(syms)
	for i, e := range exprs {
		v := Eval(ip, e, child, fc)
		child.ResolvePending(syms[i], v)
	}
	return child, body
}

// Apply applies proc to an already-evaluated argument vector — the
// mechanism the higher-order built-ins map and apply are built atop.
// It is not required to preserve tail-call stack bounds across a chain of
// calls driven from a host loop (map/apply run one application per Go loop
// iteration, not in Scheme tail position), so it simply recurses into Eval
// rather than re-entering the trampoline.
func Apply(ip *Interpreter, procVal Value, args []Value, fc *FiberContext, pos SourcePos) Value {
	if !procVal.IsProcedure() {
		failType(pos, "procedure", typeName(procVal))
	}
	proc := procVal.AsProcedure()
	proc.checkArity(pos, len(args))
	if proc.Builtin {
		return proc.Impl(ip, fc, args, pos)
	}
	child := Extend(proc.Env, proc.Params, args, pos)
	return EvalSequence(ip, proc.Body, child, fc)
}

func typeName(v Value) string {
	switch v.Tag {
	case TagNumber:
		return "number"
	case TagBoolean:
		return "boolean"
	case TagString:
		return "string"
	case TagSymbol:
		return "symbol"
	case TagNil:
		return "null"
	case TagPair:
		return "list"
	case TagProcedure:
		return "procedure"
	case TagFiberHandle:
		return "fiber-handle"
	}
	return "unknown"
}
