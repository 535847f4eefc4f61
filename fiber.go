// fiber.go implements a single fiber's lifecycle state: one goroutine per
// fiber, parked on a channel handshake with the scheduler between runs
// rather than driven by an explicit resumable continuation (see
// scheduler.go's doc comment for the reasoning behind that choice).
package twine

import "sync"

// FiberID is a stable fiber identifier, unique within one Scheduler.
type FiberID uint64

// FiberState is the fiber's position in its state machine:
// Ready, Running, Suspended(reason), Completed(Result).
type FiberState int

const (
	FiberReady FiberState = iota
	FiberRunning
	FiberSuspended
	FiberCompleted
)

func (s FiberState) String() string {
	switch s {
	case FiberReady:
		return "ready"
	case FiberRunning:
		return "running"
	case FiberSuspended:
		return "suspended"
	case FiberCompleted:
		return "completed"
	}
	return "unknown"
}

// SuspendReason distinguishes why a Suspended fiber is parked. SuspendYielded
// exists for completeness but is never produced: this core has no explicit
// cooperative-yield built-in, only suspension on I/O and on fiber-wait.
type SuspendReason int

const (
	SuspendNone SuspendReason = iota
	SuspendIoPending
	SuspendAwaitingFiber
	SuspendYielded
)

// Fiber is the unit of cooperative execution. Every field
// mutation is guarded by mu except resumeValue/resumeErr, which are written
// by whoever wakes the fiber strictly before it is re-enqueued, and read by
// the fiber's own goroutine strictly after being granted again — the
// ready-queue handoff is itself the synchronization, so no lock is needed
// for those two fields specifically.
type Fiber struct {
	mu     sync.Mutex
	id     FiberID
	state  FiberState
	reason SuspendReason
	parent *FiberID

	awaitingTarget FiberID // valid when reason == SuspendAwaitingFiber

	result    Value
	resultErr *EvalError
	done      chan struct{}

	resumeValue Value
	resumeErr   *EvalError

	grant   chan struct{} // scheduler -> fiber: "you may run now"
	yielded chan struct{} // fiber -> worker: "I've suspended or finished"
}

func newFiber(id FiberID, parent *FiberID) *Fiber {
	return &Fiber{
		id:      id,
		state:   FiberReady,
		parent:  parent,
		done:    make(chan struct{}),
		grant:   make(chan struct{}),
		yielded: make(chan struct{}),
	}
}

func (f *Fiber) ID() FiberID { return f.id }

func (f *Fiber) snapshotState() (FiberState, SuspendReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.reason
}

func (f *Fiber) setRunning() {
	f.mu.Lock()
	f.state = FiberRunning
	f.mu.Unlock()
}

func (f *Fiber) setSuspended(reason SuspendReason) {
	f.mu.Lock()
	f.state = FiberSuspended
	f.reason = reason
	f.mu.Unlock()
}

func (f *Fiber) setReady() {
	f.mu.Lock()
	f.state = FiberReady
	f.mu.Unlock()
}

// Result returns the fiber's completion value/error; ok is false if the
// fiber has not completed yet.
func (f *Fiber) Result() (Value, *EvalError, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.resultErr, f.state == FiberCompleted
}

// FiberContext threads the identity of the currently-running fiber and its
// owning scheduler through Eval, so that I/O built-ins and the
// spawn-fiber/fiber-wait/async primitives can reach the scheduler.
type FiberContext struct {
	Fiber     *Fiber
	Scheduler *Scheduler
}
