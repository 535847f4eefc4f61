// interpreter.go is the public engine facade: a small, stable API surface
// that owns the root environment and symbol table and exposes the handful
// of entry points a driver (cmd/twine, or a test) needs, without leaking
// Eval's internals.
package twine

// Interpreter owns the root environment (with all built-ins registered) and
// the symbol interner shared by every fiber it runs. It is safe to run many
// programs through one Interpreter's RunProgram sequentially; it is not
// itself reentrant — each RunProgram call drives its own Scheduler.
type Interpreter struct {
	Root     *Env
	Interner *Interner
}

// NewInterpreter returns a bare engine with an empty root environment and a
// fresh interner — no built-ins registered. Most callers want NewRuntime.
func NewInterpreter() *Interpreter {
	return &Interpreter{Root: NewRootEnv(), Interner: NewInterner()}
}

// RegisterBuiltin defines name in the root environment as a Builtin
// procedure, interning name through ip.Interner so later lookups by a
// parsed AST (which reference the same interner) resolve to this binding.
func (ip *Interpreter) RegisterBuiltin(name string, minArity, maxArity int, impl func(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value) {
	sym := ip.Interner.Intern(name)
	ip.Root.Define(sym, ProcedureVal(NewBuiltin(name, minArity, maxArity, impl)))
}

// RunResult is the outcome of running a top-level program: its final value,
// or the error that aborted the root fiber, which becomes the process-level
// error.
type RunResult struct {
	Value Value
	Err   *EvalError
}

// RunProgram evaluates program (the top-level AST sequence) as the body of
// the root fiber, driven by a scheduler with the given worker count and I/O
// backend, and blocks until the root fiber completes. It owns the
// scheduler's full lifecycle: starts the worker pool, waits for the root
// fiber, then shuts the scheduler down.
func (ip *Interpreter) RunProgram(program []Node, workers int, io IOBackend, log Logger) RunResult {
	if log == nil {
		log = NopLogger{}
	}
	sched := NewScheduler(workers, io, log)
	defer sched.Shutdown()

	root := sched.Spawn(nil, func(fc *FiberContext) Value {
		return EvalSequence(ip, program, ip.Root, fc)
	})

	<-root.done
	v, err, _ := root.Result()
	return RunResult{Value: v, Err: err}
}
