// runtime.go assembles a fully-initialized Interpreter with every built-in
// registered, built purely against the public facade in interpreter.go (no
// reaching into eval.go/scheduler.go internals from here).
package twine

// NewRuntime returns an Interpreter with the full built-in set — pure,
// I/O, and concurrency — already registered in its root environment.
func NewRuntime() *Interpreter {
	ip := NewInterpreter()
	registerPureBuiltins(ip)
	registerIOBuiltins(ip)
	registerConcurrencyBuiltins(ip)
	return ip
}

// DefaultWorkerCount returns a sensible default worker-pool size:
// configurable by the caller, defaulting to the available core count.
func DefaultWorkerCount() int {
	n := numCPU()
	if n < 1 {
		return 1
	}
	return n
}
