package twine

import "testing"

func TestEnvDefineAndLookupShadowing(t *testing.T) {
	in := NewInterner()
	x := in.Intern("x")

	root := NewRootEnv()
	root.Define(x, Number(1))

	child := NewChildEnv(root)
	child.Define(x, Number(2))

	if v := child.Lookup(x, SourcePos{}); v.AsNumber() != 2 {
		t.Fatalf("expected shadowed value 2 in child, got %v", v.AsNumber())
	}
	if v := root.Lookup(x, SourcePos{}); v.AsNumber() != 1 {
		t.Fatalf("expected root's own binding to be unaffected by shadowing, got %v", v.AsNumber())
	}
}

func TestEnvLookupWalksToParent(t *testing.T) {
	in := NewInterner()
	y := in.Intern("y")
	root := NewRootEnv()
	root.Define(y, Number(42))
	child := NewChildEnv(root)

	if v := child.Lookup(y, SourcePos{}); v.AsNumber() != 42 {
		t.Fatalf("expected lookup to walk to parent frame, got %v", v.AsNumber())
	}
}

func TestEnvLookupUnboundPanics(t *testing.T) {
	in := NewInterner()
	z := in.Intern("z")
	root := NewRootEnv()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for an unbound identifier")
		}
		ee := recoverEval(r)
		if ee.Kind != KindUnboundIdentifier {
			t.Fatalf("expected KindUnboundIdentifier, got %v", ee.Kind)
		}
	}()
	root.Lookup(z, SourcePos{Line: 1, Col: 1})
}

func TestEnvExtendRejectsDuplicateSymbols(t *testing.T) {
	in := NewInterner()
	s := in.Intern("s")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for duplicate symbols in Extend")
		}
		ee := recoverEval(r)
		if ee.Kind != KindInternal {
			t.Fatalf("expected KindInternal, got %v", ee.Kind)
		}
	}()
	Extend(NewRootEnv(), []*Symbol{s, s}, []Value{Number(1), Number(2)}, SourcePos{})
}

func TestEnvLetrecPendingBlocksPrematureReference(t *testing.T) {
	in := NewInterner()
	a := in.Intern("a")

	outer := NewRootEnv()
	child := NewChildEnv(outer)
	child.DeclarePending([]*Symbol{a})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic referencing a pending letrec binding")
		}
		ee := recoverEval(r)
		if ee.Kind != KindUnboundIdentifier {
			t.Fatalf("expected KindUnboundIdentifier for a not-yet-resolved letrec binding, got %v", ee.Kind)
		}
	}()
	child.Lookup(a, SourcePos{})
}

func TestEnvLetrecResolvePendingThenLookupSucceeds(t *testing.T) {
	in := NewInterner()
	a := in.Intern("a")

	outer := NewRootEnv()
	child := NewChildEnv(outer)
	child.DeclarePending([]*Symbol{a})
	child.ResolvePending(a, Number(7))

	if v := child.Lookup(a, SourcePos{}); v.AsNumber() != 7 {
		t.Fatalf("expected resolved letrec binding 7, got %v", v.AsNumber())
	}
}
