// builtins_pure.go implements the non-suspending built-ins: arithmetic,
// comparison, list construction and traversal, and the type/identity
// predicates, none of which ever suspend the calling fiber.
package twine

import (
	"math"

	"golang.org/x/exp/slices"
)

func registerPureBuiltins(ip *Interpreter) {
	ip.RegisterBuiltin("+", 0, -1, builtinAdd)
	ip.RegisterBuiltin("-", 1, -1, builtinSub)
	ip.RegisterBuiltin("*", 0, -1, builtinMul)
	ip.RegisterBuiltin("/", 1, -1, builtinDiv)

	ip.RegisterBuiltin("=", 2, -1, builtinNumCompare("=", func(a, b float64) bool { return a == b }))
	ip.RegisterBuiltin("<", 2, -1, builtinNumCompare("<", func(a, b float64) bool { return a < b }))
	ip.RegisterBuiltin(">", 2, -1, builtinNumCompare(">", func(a, b float64) bool { return a > b }))
	ip.RegisterBuiltin("<=", 2, -1, builtinNumCompare("<=", func(a, b float64) bool { return a <= b }))
	ip.RegisterBuiltin(">=", 2, -1, builtinNumCompare(">=", func(a, b float64) bool { return a >= b }))

	ip.RegisterBuiltin("car", 1, 1, builtinCar)
	ip.RegisterBuiltin("cdr", 1, 1, builtinCdr)
	ip.RegisterBuiltin("cons", 2, 2, builtinCons)
	ip.RegisterBuiltin("list", 0, -1, builtinList)
	ip.RegisterBuiltin("null?", 1, 1, builtinNullP)
	ip.RegisterBuiltin("pair?", 1, 1, builtinPairP)
	ip.RegisterBuiltin("append", 0, -1, builtinAppend)
	ip.RegisterBuiltin("reverse", 1, 1, builtinReverse)
	ip.RegisterBuiltin("length", 1, 1, builtinLength)

	ip.RegisterBuiltin("number?", 1, 1, builtinPredicate(func(v Value) bool { return v.IsNumber() }))
	ip.RegisterBuiltin("boolean?", 1, 1, builtinPredicate(func(v Value) bool { return v.IsBoolean() }))
	ip.RegisterBuiltin("string?", 1, 1, builtinPredicate(func(v Value) bool { return v.IsString() }))
	ip.RegisterBuiltin("symbol?", 1, 1, builtinPredicate(func(v Value) bool { return v.IsSymbol() }))
	ip.RegisterBuiltin("list?", 1, 1, builtinPredicate(func(v Value) bool { return v.IsList() }))
	ip.RegisterBuiltin("procedure?", 1, 1, builtinPredicate(func(v Value) bool { return v.IsProcedure() }))
	ip.RegisterBuiltin("even?", 1, 1, builtinParity(true))
	ip.RegisterBuiltin("odd?", 1, 1, builtinParity(false))

	ip.RegisterBuiltin("eq?", 2, 2, builtinEqP)

	ip.RegisterBuiltin("map", 2, 2, builtinMap)
	ip.RegisterBuiltin("apply", 2, 2, builtinApply)
}

func requireNumber(pos SourcePos, v Value) float64 {
	if !v.IsNumber() {
		failType(pos, "number", typeName(v))
	}
	return v.AsNumber()
}

func builtinAdd(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	sum := 0.0
	for _, a := range args {
		sum += requireNumber(pos, a)
	}
	return Number(sum)
}

// builtinSub: one argument negates, two or more fold left-to-right by
// subtraction.
func builtinSub(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if len(args) == 1 {
		return Number(-requireNumber(pos, args[0]))
	}
	acc := requireNumber(pos, args[0])
	for _, a := range args[1:] {
		acc -= requireNumber(pos, a)
	}
	return Number(acc)
}

func builtinMul(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	prod := 1.0
	for _, a := range args {
		prod *= requireNumber(pos, a)
	}
	return Number(prod)
}

// builtinDiv: `(/ x 0)` raises NumericError; one argument is the
// reciprocal, two or more fold left-to-right by division.
func builtinDiv(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if len(args) == 1 {
		d := requireNumber(pos, args[0])
		if d == 0 {
			failNumeric(pos, "division by zero")
		}
		return Number(1 / d)
	}
	acc := requireNumber(pos, args[0])
	for _, a := range args[1:] {
		d := requireNumber(pos, a)
		if d == 0 {
			failNumeric(pos, "division by zero")
		}
		acc /= d
	}
	return Number(acc)
}

func builtinNumCompare(name string, cmp func(a, b float64) bool) func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
		prev := requireNumber(pos, args[0])
		for _, a := range args[1:] {
			cur := requireNumber(pos, a)
			if !cmp(prev, cur) {
				return Boolean(false)
			}
			prev = cur
		}
		return Boolean(true)
	}
}

func requireList(pos SourcePos, v Value, op string) {
	if !v.IsList() {
		failType(pos, "list", typeName(v))
	}
	_ = op
}

func builtinCar(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if !args[0].IsPair() {
		failType(pos, "non-empty list", typeName(args[0]))
	}
	return args[0].AsPair().Head
}

func builtinCdr(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if !args[0].IsPair() {
		failType(pos, "non-empty list", typeName(args[0]))
	}
	return args[0].AsPair().Tail
}

// builtinCons requires its second argument to already be a list: this core
// has no dotted-pair notation — lists are finite, always proper.
func builtinCons(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	requireList(pos, args[1], "cons")
	return Cons(args[0], args[1])
}

func builtinList(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return ListFromSlice(args)
}

func builtinNullP(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return Boolean(args[0].IsNil())
}

func builtinPairP(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return Boolean(args[0].IsPair())
}

func builtinAppend(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	var all []Value
	for _, a := range args {
		requireList(pos, a, "append")
		all = append(all, ListSlice(a)...)
	}
	return ListFromSlice(all)
}

func builtinReverse(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	requireList(pos, args[0], "reverse")
	rev := slices.Clone(ListSlice(args[0]))
	slices.Reverse(rev)
	return ListFromSlice(rev)
}

func builtinLength(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	requireList(pos, args[0], "length")
	return Number(float64(len(ListSlice(args[0]))))
}

func builtinPredicate(pred func(Value) bool) func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
		return Boolean(pred(args[0]))
	}
}

func builtinParity(wantEven bool) func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
		n := requireNumber(pos, args[0])
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			failType(pos, "integer", "non-integral number")
		}
		isEven := math.Mod(n, 2) == 0
		return Boolean(isEven == wantEven)
	}
}

func builtinEqP(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return Boolean(Eq(args[0], args[1]))
}

func builtinMap(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if !args[0].IsProcedure() {
		failType(pos, "procedure", typeName(args[0]))
	}
	requireList(pos, args[1], "map")
	items := ListSlice(args[1])
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Apply(ip, args[0], []Value{item}, fc, pos)
	}
	return ListFromSlice(out)
}

func builtinApply(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	requireList(pos, args[1], "apply")
	return Apply(ip, args[0], ListSlice(args[1]), fc, pos)
}
