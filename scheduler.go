// scheduler.go implements the fiber scheduler: its ready queue, suspension
// registry, and worker pool.
//
// Go has no first-class resumable-function type, the way a continuation or
// a pinned boxed Future would be represented in other languages, but it
// does have goroutines, and a goroutine blocked on a channel receive is
// itself a resumable computation: its native call stack, sitting right in
// the middle of Eval, *is* the continuation. So each fiber gets its own
// goroutine for its whole lifetime. Running at most N fibers concurrently
// is enforced separately, by a grant/yielded handshake: a worker goroutine
// only ever has one fiber goroutine holding its grant at a time, and a
// fiber goroutine must give up its grant (send on yielded) at every
// suspension point before it blocks on anything else.
package twine

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/MatrixMike/twine/internal/diag"
)

// fiberQueue is a blocking FIFO of FiberID, the scheduler's ready queue.
// Implemented with emirpasic/gods' linkedlistqueue for the underlying
// storage plus a mutex/cond for blocking, fair Dequeue semantics that a
// bare Go channel cannot give us (channel receiver wake order is not
// contractually FIFO).
type fiberQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	q      *linkedlistqueue.Queue
	closed bool
}

func newFiberQueue() *fiberQueue {
	fq := &fiberQueue{q: linkedlistqueue.New()}
	fq.cond = sync.NewCond(&fq.mu)
	return fq
}

func (fq *fiberQueue) Push(id FiberID) {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	if fq.closed {
		return
	}
	fq.q.Enqueue(id)
	fq.cond.Signal()
}

// Pop blocks until an id is available or the queue is closed, in which case
// ok is false.
func (fq *fiberQueue) Pop() (FiberID, bool) {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	for fq.q.Empty() && !fq.closed {
		fq.cond.Wait()
	}
	if fq.q.Empty() {
		return 0, false
	}
	v, _ := fq.q.Dequeue()
	return v.(FiberID), true
}

func (fq *fiberQueue) Close() {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	fq.closed = true
	fq.cond.Broadcast()
}

// CompletionToken identifies one in-flight async I/O operation.
type CompletionToken uint64

// Scheduler owns the fiber table, ready queue, and suspension registry,
// and is the single writer for fiber state transitions.
type Scheduler struct {
	mu sync.Mutex

	fibers map[FiberID]*Fiber
	nextID FiberID

	ready *fiberQueue

	ioPending map[CompletionToken]FiberID
	nextToken CompletionToken
	awaiters  map[FiberID]*hashset.Set // target FiberID -> set of waiter FiberID

	io  IOBackend
	log Logger

	workerWG sync.WaitGroup
}

// NewScheduler creates a scheduler with workers worker goroutines and the
// given async I/O backend, and starts the worker pool immediately.
func NewScheduler(workers int, io IOBackend, log Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	s := &Scheduler{
		fibers:    make(map[FiberID]*Fiber),
		ready:     newFiberQueue(),
		ioPending: make(map[CompletionToken]FiberID),
		awaiters:  make(map[FiberID]*hashset.Set),
		io:        io,
		log:       log,
	}
	s.workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		go s.workerLoop(i)
	}
	return s
}

func (s *Scheduler) workerLoop(idx int) {
	defer s.workerWG.Done()
	for {
		id, ok := s.ready.Pop()
		if !ok {
			return
		}
		f := s.getFiber(id)
		if f == nil {
			continue
		}
		s.log.Debug("worker dispatching fiber", "worker", idx, "fiber_id", uint64(id))
		f.grant <- struct{}{}
		<-f.yielded
	}
}

func (s *Scheduler) getFiber(id FiberID) *Fiber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fibers[id]
}

// Spawn allocates a fiber, registers it Ready in the fiber table, enqueues
// it, and starts its goroutine, then returns immediately without waiting
// for a worker to pick it up: spawning is non-blocking. thunk is run with
// the new fiber's own FiberContext.
func (s *Scheduler) Spawn(parent *FiberID, thunk func(fc *FiberContext) Value) *Fiber {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	f := newFiber(id, parent)
	s.fibers[id] = f
	s.mu.Unlock()

	go s.runFiber(f, thunk)
	s.ready.Push(id)
	s.log.Debug("fiber spawned", "fiber_id", uint64(id))
	return f
}

func (s *Scheduler) runFiber(f *Fiber, thunk func(fc *FiberContext) Value) {
	<-f.grant
	f.setRunning()
	fc := &FiberContext{Fiber: f, Scheduler: s}

	var result Value
	var evalErr *EvalError
	func() {
		defer func() {
			if r := recover(); r != nil {
				evalErr = recoverEval(r)
			}
		}()
		result = thunk(fc)
	}()

	s.finish(f, result, evalErr)
	f.yielded <- struct{}{}
}

func (s *Scheduler) finish(f *Fiber, result Value, evalErr *EvalError) {
	f.mu.Lock()
	f.state = FiberCompleted
	f.result = result
	f.resultErr = evalErr
	f.mu.Unlock()
	close(f.done)

	if evalErr != nil {
		s.log.Debug("fiber completed with error", "fiber_id", uint64(f.id), "error", evalErr.Error())
	} else {
		s.log.Debug("fiber completed", "fiber_id", uint64(f.id))
	}

	s.mu.Lock()
	waiters := s.awaiters[f.id]
	delete(s.awaiters, f.id)
	s.mu.Unlock()

	if waiters == nil {
		return
	}
	for _, raw := range waiters.Values() {
		wid := raw.(FiberID)
		w := s.getFiber(wid)
		if w == nil {
			continue
		}
		w.resumeValue = result
		w.resumeErr = evalErr
		w.setReady()
		s.ready.Push(wid)
	}
}

// parkAndWait is the common "give up the worker, block until re-granted"
// primitive used by I/O suspension. registryUpdate runs
// under s.mu after the fiber's state is set to Suspended but before the
// worker slot is released, so the registry entry that will eventually wake
// this fiber is in place before any other goroutine could possibly try to
// use it.
func (s *Scheduler) parkAndWait(f *Fiber, reason SuspendReason, registryUpdate func()) {
	f.setSuspended(reason)
	s.mu.Lock()
	registryUpdate()
	s.mu.Unlock()

	f.yielded <- struct{}{}
	<-f.grant
	f.setRunning()
}

// SubmitIO registers op as an in-flight async operation for f, runs op on a
// fresh background goroutine, never on a worker, and blocks f until the
// result is delivered.
func (s *Scheduler) SubmitIO(f *Fiber, op func() (Value, error)) Value {
	s.mu.Lock()
	s.nextToken++
	token := s.nextToken
	s.mu.Unlock()

	s.parkAndWait(f, SuspendIoPending, func() {
		s.ioPending[token] = f.id
		go func() {
			v, err := op()
			s.completeIO(token, v, err)
		}()
	})

	if f.resumeErr != nil {
		panic(rtErr{err: f.resumeErr})
	}
	return f.resumeValue
}

func (s *Scheduler) completeIO(token CompletionToken, v Value, err error) {
	s.mu.Lock()
	fid, ok := s.ioPending[token]
	delete(s.ioPending, token)
	s.mu.Unlock()
	if !ok {
		return
	}
	f := s.getFiber(fid)
	if f == nil {
		return
	}
	if err != nil {
		f.resumeErr = &EvalError{Kind: KindIO, Message: err.Error()}
	} else {
		f.resumeValue = v
		f.resumeErr = nil
	}
	f.setReady()
	s.ready.Push(fid)
}

// Wait implements the fiber-wait built-in's algorithm. If target has
// already completed, returns (or re-raises) its result without suspending
// caller at all. Otherwise caller is registered as an awaiter of target and
// suspended; a caller waiting on itself runs this same code path and simply
// never wakes — a deliberate, accepted deadlock, not a special-cased error.
//
// The completion check and the awaiter registration run as one critical
// section under s.mu, matching the lock finish holds while it drains
// s.awaiters[target]: if they were separate (check, then lock to register)
// target could complete and finish could drain an empty awaiter set in
// between, after which caller's registration would never be drained and
// fiber-wait would hang forever.
func (s *Scheduler) Wait(caller *Fiber, target FiberID, pos SourcePos) Value {
	tf := s.getFiber(target)
	if tf == nil {
		failInternal(pos, "fiber-wait: unknown fiber")
	}

	caller.setSuspended(SuspendAwaitingFiber)

	s.mu.Lock()
	if v, evalErr, done := tf.Result(); done {
		s.mu.Unlock()
		caller.setRunning()
		if evalErr != nil {
			panic(rtErr{err: evalErr})
		}
		return v
	}
	set, ok := s.awaiters[target]
	if !ok {
		set = hashset.New()
		s.awaiters[target] = set
	}
	set.Add(caller.id)
	s.mu.Unlock()

	caller.yielded <- struct{}{}
	<-caller.grant
	caller.setRunning()

	if caller.resumeErr != nil {
		panic(rtErr{err: caller.resumeErr})
	}
	return caller.resumeValue
}

// SchedulerSnapshot is a point-in-time, exported view of the scheduler's
// bookkeeping: the fiber table's states, the number of in-flight I/O
// operations, and the fibers that have awaiters. Fingerprint hands it to
// internal/diag, so tests can compare snapshots taken before and after a
// dispatch cycle. It does not include the ready queue's contents.
type SchedulerSnapshot struct {
	FiberCount      int
	FiberStates     map[FiberID]string
	IOPendingCount  int
	AwaiterTargets  []FiberID
}

// Snapshot captures the current scheduler bookkeeping. It locks s.mu for
// the duration, so it briefly blocks fiber completion/suspension bookkeeping
// — acceptable for diagnostics and tests, not used on any hot path.
func (s *Scheduler) Snapshot() SchedulerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[FiberID]string, len(s.fibers))
	for id, f := range s.fibers {
		st, _ := f.snapshotState()
		states[id] = st.String()
	}
	targets := make([]FiberID, 0, len(s.awaiters))
	for target := range s.awaiters {
		targets = append(targets, target)
	}
	return SchedulerSnapshot{
		FiberCount:     len(s.fibers),
		FiberStates:    states,
		IOPendingCount: len(s.ioPending),
		AwaiterTargets: targets,
	}
}

// Fingerprint hands this snapshot to internal/diag for structhash-based
// fingerprinting, flattening the FiberID-keyed map into the plain-uint64
// shape diag.Hash expects so internal/diag never needs to import twine's
// FiberID type.
func (snap SchedulerSnapshot) Fingerprint() diag.Fingerprint {
	states := make(map[uint64]string, len(snap.FiberStates))
	for id, st := range snap.FiberStates {
		states[uint64(id)] = st
	}
	return diag.Hash(snap.FiberCount, states, snap.IOPendingCount, len(snap.AwaiterTargets))
}

// Shutdown stops accepting new ready-queue dispatch work and releases idle
// workers. Any fiber still blocked mid-suspension never resumes, an
// accepted, non-error hazard: a fiber still non-Completed at shutdown
// becomes unreachable and its result is discarded, so Shutdown does not
// attempt to join those goroutines.
func (s *Scheduler) Shutdown() {
	s.ready.Close()
}
