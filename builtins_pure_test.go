package twine

import "testing"

func callBuiltin(t *testing.T, ip *Interpreter, fc *FiberContext, name string, args ...Value) Value {
	t.Helper()
	v, ok := ip.Root.TryLookup(sym(ip, name))
	if !ok {
		t.Fatalf("no such builtin %q", name)
	}
	return Apply(ip, v, args, fc, SourcePos{})
}

func TestArithmeticBuiltins(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)

	if v := callBuiltin(t, ip, fc, "+", Number(1), Number(2), Number(3)); v.AsNumber() != 6 {
		t.Fatalf("+ : got %v", v.AsNumber())
	}
	if v := callBuiltin(t, ip, fc, "-", Number(5)); v.AsNumber() != -5 {
		t.Fatalf("unary - : got %v", v.AsNumber())
	}
	if v := callBuiltin(t, ip, fc, "-", Number(10), Number(3), Number(2)); v.AsNumber() != 5 {
		t.Fatalf("n-ary - : got %v", v.AsNumber())
	}
	if v := callBuiltin(t, ip, fc, "*", Number(2), Number(3), Number(4)); v.AsNumber() != 24 {
		t.Fatalf("* : got %v", v.AsNumber())
	}
	if v := callBuiltin(t, ip, fc, "/", Number(2)); v.AsNumber() != 0.5 {
		t.Fatalf("unary / : got %v", v.AsNumber())
	}
}

func TestDivisionByZeroIsNumericError(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)
	defer func() {
		ee := recoverEval(recover())
		if ee.Kind != KindNumeric {
			t.Fatalf("expected KindNumeric, got %v", ee.Kind)
		}
	}()
	callBuiltin(t, ip, fc, "/", Number(1), Number(0))
}

func TestTypeErrorOnNonNumberArithmetic(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)
	defer func() {
		ee := recoverEval(recover())
		if ee.Kind != KindType {
			t.Fatalf("expected KindType, got %v", ee.Kind)
		}
	}()
	callBuiltin(t, ip, fc, "+", Number(1), String("nope"))
}

func TestListBuiltins(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)

	lst3 := callBuiltin(t, ip, fc, "list", Number(1), Number(2), Number(3))
	if v := callBuiltin(t, ip, fc, "length", lst3); v.AsNumber() != 3 {
		t.Fatalf("length: got %v", v.AsNumber())
	}
	if v := callBuiltin(t, ip, fc, "car", lst3); v.AsNumber() != 1 {
		t.Fatalf("car: got %v", v.AsNumber())
	}
	rest := callBuiltin(t, ip, fc, "cdr", lst3)
	if len(ListSlice(rest)) != 2 {
		t.Fatalf("cdr: expected 2 remaining elements, got %v", ListSlice(rest))
	}
	consed := callBuiltin(t, ip, fc, "cons", Number(0), lst3)
	if ListSlice(consed)[0].AsNumber() != 0 {
		t.Fatalf("cons: expected head 0")
	}
	rev := callBuiltin(t, ip, fc, "reverse", lst3)
	revSlice := ListSlice(rev)
	if revSlice[0].AsNumber() != 3 || revSlice[2].AsNumber() != 1 {
		t.Fatalf("reverse: got %v", revSlice)
	}
	appended := callBuiltin(t, ip, fc, "append", lst3, lst3)
	if len(ListSlice(appended)) != 6 {
		t.Fatalf("append: expected 6 elements, got %d", len(ListSlice(appended)))
	}
	if !callBuiltin(t, ip, fc, "null?", Nil).IsTruthy() {
		t.Fatalf("null? on Nil should be true")
	}
	if !callBuiltin(t, ip, fc, "pair?", lst3).IsTruthy() {
		t.Fatalf("pair? on a non-empty list should be true")
	}
}

func TestCarOnEmptyListIsTypeError(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)
	defer func() {
		ee := recoverEval(recover())
		if ee.Kind != KindType {
			t.Fatalf("expected KindType, got %v", ee.Kind)
		}
	}()
	callBuiltin(t, ip, fc, "car", Nil)
}

func TestPredicateBuiltins(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)

	if !callBuiltin(t, ip, fc, "number?", Number(1)).IsTruthy() {
		t.Fatalf("number? should be true for a number")
	}
	if callBuiltin(t, ip, fc, "number?", String("x")).IsTruthy() {
		t.Fatalf("number? should be false for a string")
	}
	if !callBuiltin(t, ip, fc, "even?", Number(4)).IsTruthy() {
		t.Fatalf("even? 4 should be true")
	}
	if !callBuiltin(t, ip, fc, "odd?", Number(3)).IsTruthy() {
		t.Fatalf("odd? 3 should be true")
	}
}

func TestEqPIdentityVsEqual(t *testing.T) {
	ip := NewRuntime()
	fc := newTestFC(t)
	a := ListFromSlice([]Value{Number(1)})
	b := ListFromSlice([]Value{Number(1)})
	if callBuiltin(t, ip, fc, "eq?", a, b).IsTruthy() {
		t.Fatalf("eq? should be false for two separately built equal lists")
	}
	if !callBuiltin(t, ip, fc, "eq?", a, a).IsTruthy() {
		t.Fatalf("eq? should be true for a value compared to itself")
	}
}
