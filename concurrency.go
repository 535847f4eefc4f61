// concurrency.go implements the `async` special form and the
// `spawn-fiber`/`fiber-wait` built-ins, the bridge from the evaluator into
// the scheduler.
package twine

func registerConcurrencyBuiltins(ip *Interpreter) {
	ip.RegisterBuiltin("spawn-fiber", 1, 1, builtinSpawnFiber)
	ip.RegisterBuiltin("fiber-wait", 1, 1, builtinFiberWait)
}

// evalAsync implements `(async expr…)`. It must not evaluate expr… at the
// call site — that is the entire reason async is a special form rather
// than a library function. It captures the current environment and the
// body sequence, asks the scheduler to spawn a fiber parented to the
// current one, and returns the new FiberHandle immediately without
// blocking on the child's completion.
func evalAsync(ip *Interpreter, n *List, env *Env, fc *FiberContext) Value {
	body := n.Children[1:]
	parent := fc.Fiber.ID()
	f := fc.Scheduler.Spawn(&parent, func(childFC *FiberContext) Value {
		return EvalSequence(ip, body, env, childFC)
	})
	return FiberHandleVal(f.ID())
}

// builtinSpawnFiber implements `spawn-fiber`: a zero-argument procedure is
// spawned as a fiber with no parent link.
func builtinSpawnFiber(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if !args[0].IsProcedure() {
		failType(pos, "procedure", typeName(args[0]))
	}
	proc := args[0]
	f := fc.Scheduler.Spawn(nil, func(childFC *FiberContext) Value {
		return Apply(ip, proc, nil, childFC, pos)
	})
	return FiberHandleVal(f.ID())
}

// builtinFiberWait implements `fiber-wait`. The actual suspend/resume and
// self-wait-deadlocks-by-construction behavior lives in Scheduler.Wait;
// this is just the argument-type boundary.
func builtinFiberWait(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	if !args[0].IsFiberHandle() {
		failType(pos, "fiber-handle", typeName(args[0]))
	}
	return fc.Scheduler.Wait(fc.Fiber, args[0].AsFiberID(), pos)
}
