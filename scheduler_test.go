package twine

import (
	"strings"
	"testing"
	"time"
)

func TestSchedulerSnapshotFingerprintDeterministic(t *testing.T) {
	sched := NewScheduler(2, NewIOBackend(&strings.Builder{}, strings.NewReader("")), NopLogger{})
	defer sched.Shutdown()

	block := make(chan struct{})
	f := sched.Spawn(nil, func(fc *FiberContext) Value {
		<-block
		return Number(1)
	})

	// Give the worker a moment to actually grant the fiber so its state is
	// Running rather than Ready when we snapshot — either is a valid
	// observation, but Running exercises more of Fingerprint's code path.
	time.Sleep(10 * time.Millisecond)

	snapA := sched.Snapshot()
	snapB := sched.Snapshot()

	fpA := snapA.Fingerprint()
	fpB := snapB.Fingerprint()
	if fpA.Error != nil || fpB.Error != nil {
		t.Fatalf("unexpected fingerprint error: %v, %v", fpA.Error, fpB.Error)
	}
	if fpA.Hash != fpB.Hash {
		t.Fatalf("two snapshots of the same idle state produced different hashes: %q vs %q", fpA.Hash, fpB.Hash)
	}

	close(block)
	<-f.done

	snapC := sched.Snapshot()
	fpC := snapC.Fingerprint()
	if fpC.Error != nil {
		t.Fatalf("unexpected fingerprint error: %v", fpC.Error)
	}
	if fpC.Hash == fpA.Hash {
		t.Fatalf("fingerprint did not change across a dispatch cycle that completed a fiber")
	}
}

func TestSchedulerSnapshotInvariant(t *testing.T) {
	sched := NewScheduler(1, NewIOBackend(&strings.Builder{}, strings.NewReader("")), NopLogger{})
	defer sched.Shutdown()

	f := sched.Spawn(nil, func(fc *FiberContext) Value {
		return Number(42)
	})
	<-f.done

	snap := sched.Snapshot()
	if snap.FiberCount != 1 {
		t.Fatalf("expected 1 tracked fiber, got %d", snap.FiberCount)
	}
	if snap.FiberStates[f.id] != "completed" {
		t.Fatalf("expected completed fiber state, got %q", snap.FiberStates[f.id])
	}
	if snap.IOPendingCount != 0 || len(snap.AwaiterTargets) != 0 {
		t.Fatalf("expected no pending I/O or awaiters after completion, got io=%d awaiters=%v", snap.IOPendingCount, snap.AwaiterTargets)
	}
}
