//go:build memdebug

package memalloc

import (
	"fmt"
	"runtime"
	"sync"
)

// leakRecord is one outstanding allocation tracked by the memdebug
// build. It exists only to support LeakCheck; it is never consulted
// by the allocation fast path.
type leakRecord struct {
	addr uintptr
	size int64
	file string
	line int
}

var (
	leakMu  sync.Mutex
	leakLog = map[uintptr]leakRecord{}
)

// trackAlloc records ptr as outstanding, attributing it to the
// caller skip frames above trackAlloc. Only Alloc calls it;
// allocations made through AllocFrom or ReallocFrom are not recorded.
func trackAlloc(ptr []byte, size int64, skip int) {
	if len(ptr) == 0 {
		return
	}
	_, file, line, _ := runtime.Caller(skip)
	leakMu.Lock()
	leakLog[sliceAddr(ptr)] = leakRecord{addr: sliceAddr(ptr), size: size, file: file, line: line}
	leakMu.Unlock()
}

// untrackAlloc removes ptr from the outstanding-allocation ledger.
func untrackAlloc(ptr []byte) {
	if len(ptr) == 0 {
		return
	}
	leakMu.Lock()
	delete(leakLog, sliceAddr(ptr))
	leakMu.Unlock()
}

// LeakCheck reports every allocation tracked by trackAlloc that has
// not yet been released, one line per survivor. It is only compiled
// in under the memdebug build tag.
func LeakCheck() []string {
	leakMu.Lock()
	defer leakMu.Unlock()
	out := make([]string, 0, len(leakLog))
	for _, r := range leakLog {
		out = append(out, fmt.Sprintf("memory leak: %d bytes allocated at %s:%d", r.size, r.file, r.line))
	}
	return out
}
