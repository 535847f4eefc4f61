package twine

import "testing"

func TestListSliceAndFromSliceRoundTrip(t *testing.T) {
	vs := []Value{Number(1), Number(2), Number(3)}
	lst := ListFromSlice(vs)
	if !lst.IsList() {
		t.Fatalf("expected a proper list")
	}
	got := ListSlice(lst)
	if len(got) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(got))
	}
	for i, v := range got {
		if v.AsNumber() != vs[i].AsNumber() {
			t.Fatalf("element %d: expected %v, got %v", i, vs[i], v)
		}
	}
}

func TestNilIsListAndEmpty(t *testing.T) {
	if !Nil.IsList() {
		t.Fatalf("Nil should satisfy IsList")
	}
	if len(ListSlice(Nil)) != 0 {
		t.Fatalf("ListSlice(Nil) should be empty")
	}
}

func TestIsTruthyOnlyFalseIsFalsy(t *testing.T) {
	falsy := []Value{Boolean(false)}
	truthy := []Value{Boolean(true), Number(0), String(""), Nil, ListFromSlice(nil)}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Fatalf("expected %#v to be falsy", v)
		}
	}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Fatalf("expected %#v to be truthy", v)
		}
	}
}

func TestEqualStructuralVsEqIdentity(t *testing.T) {
	a := ListFromSlice([]Value{Number(1), Number(2)})
	b := ListFromSlice([]Value{Number(1), Number(2)})
	if !Equal(a, b) {
		t.Fatalf("expected structurally-equal lists to satisfy Equal")
	}
	if Eq(a, b) {
		t.Fatalf("expected two separately-built lists to fail Eq (identity)")
	}
	if !Eq(a, a) {
		t.Fatalf("expected a value to Eq itself")
	}
}

func TestEqualSymbolsByInterning(t *testing.T) {
	in := NewInterner()
	s1 := in.Intern("foo")
	s2 := in.Intern("foo")
	if s1 != s2 {
		t.Fatalf("expected interning to return the same *Symbol for equal names")
	}
	if !Equal(SymbolVal(s1), SymbolVal(s2)) {
		t.Fatalf("expected interned symbols to compare equal")
	}
}

func TestNumberEqualityFollowsIEEE754(t *testing.T) {
	nan := Number(nanValue())
	if Equal(nan, nan) {
		t.Fatalf("NaN should not equal itself under Equal (IEEE-754)")
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
