// Package diag fingerprints a scheduler snapshot for use in tests and
// diagnostic dumps, built on github.com/cnf/structhash.
package diag

import (
	"sort"

	"github.com/cnf/structhash"
)

// Fingerprint is a stable, order-independent hash of a scheduler snapshot,
// used to assert that two snapshots taken around a dispatch cycle describe
// the same bookkeeping even though map iteration order is randomized.
type Fingerprint struct {
	Hash  string
	Error error
}

// snapshot mirrors twine.SchedulerSnapshot's shape without importing the
// twine package, so diag stays a leaf dependency: callers pass in
// plain-data fields, and Hash sorts the per-fiber pairs itself.
type snapshot struct {
	FiberCount     int
	StatePairs     []string
	IOPendingCount int
	AwaiterCount   int
}

// Hash computes a structhash fingerprint of a scheduler snapshot's
// essential shape: fiber count, each fiber's (id, state) pair sorted for
// determinism, the count of in-flight I/O operations, and the number of
// distinct fibers with at least one awaiter.
func Hash(fiberCount int, fiberStates map[uint64]string, ioPendingCount, awaiterTargetCount int) Fingerprint {
	pairs := make([]string, 0, len(fiberStates))
	for id, state := range fiberStates {
		pairs = append(pairs, formatPair(id, state))
	}
	sort.Strings(pairs)

	s := snapshot{
		FiberCount:     fiberCount,
		StatePairs:     pairs,
		IOPendingCount: ioPendingCount,
		AwaiterCount:   awaiterTargetCount,
	}
	h, err := structhash.Hash(s, 1)
	return Fingerprint{Hash: h, Error: err}
}

func formatPair(id uint64, state string) string {
	buf := make([]byte, 0, 24)
	buf = appendUint(buf, id)
	buf = append(buf, ':')
	buf = append(buf, state...)
	return string(buf)
}

func appendUint(buf []byte, v uint64) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}
