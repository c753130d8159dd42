// Package alloc is the accounting allocator collaborator described by
// the core's external-interfaces contract: named handles bound to a
// fixed object size, allocate/free tracked per handle, and a leak
// check run at shutdown. The teacher's own helper.go/slice.go took
// the same shape — a malloc hook injected into a byte-slice-to-bucket
// converter (allocBuckets(malloc func(size int) []byte, n int)
// []bucket) — rather than a package-global allocator; this package
// generalizes that injected-allocator idea into a small reusable
// accounting layer instead of reaching for a bare make() at every call
// site, per the core's design note that global allocator state should
// become an injected allocator context.
package alloc

import (
	"fmt"
	"os"
)

// Handle names the three allocation sites the core depends on.
type Handle string

const (
	HandleTable    Handle = "table"
	HandleBinArray Handle = "bins"
	HandleIterator Handle = "iterator"
)

type handleStats struct {
	size     int // fixed object size in bytes for this handle
	reused   int64
	recycled int64
	inUse    int64
	maxUsage int64
}

// Allocator tracks allocate/free calls per handle and enforces the
// leak-check contract: reused must equal recycled for every handle by
// the time Close is called. It is itself single-threaded, matching
// the core's non-concurrent execution model — callers sharing an
// Allocator across goroutines must provide their own mutual
// exclusion, same as the table itself.
type Allocator struct {
	handles map[Handle]*handleStats
	onFatal func(error)
}

// New creates an Allocator. onFatal is invoked (and then the process
// is terminated) on any contract violation: a nil handle, a
// zero-sized allocation, re-registration of an existing handle id, or
// a leak detected at Close. If onFatal is nil, diagnostics go to
// stderr via fmt.Fprintln before the process exits — the core
// never lets a contract violation escape as a recoverable error.
func New(onFatal func(error)) *Allocator {
	if onFatal == nil {
		onFatal = func(err error) {
			fmt.Fprintln(os.Stderr, "binhash: fatal:", err)
		}
	}
	return &Allocator{
		handles: make(map[Handle]*handleStats),
		onFatal: onFatal,
	}
}

// osExit is a package variable so tests can intercept process
// termination instead of actually exiting the test binary.
var osExit = os.Exit

func (a *Allocator) fatal(format string, args ...any) {
	a.onFatal(fmt.Errorf(format, args...))
	osExit(2)
}

// Fatalf reports a contract violation detected by a collaborator
// outside this package (the table, the iterator) through the same
// installed callback, then terminates the process. Exported so the
// core's own assertion points share one fatal path with the
// allocator's.
func (a *Allocator) Fatalf(format string, args ...any) {
	a.fatal(format, args...)
}

// Register binds handle to a fixed per-object size in bytes.
// Re-registering an existing handle is a contract violation.
func (a *Allocator) Register(handle Handle, size int) {
	if handle == "" {
		a.fatal("alloc: register: empty handle")
	}
	if size <= 0 {
		a.fatal("alloc: register: non-positive size %d for handle %q", size, handle)
	}
	if _, exists := a.handles[handle]; exists {
		a.fatal("alloc: register: handle %q already registered", handle)
	}
	a.handles[handle] = &handleStats{size: size}
}

func (a *Allocator) stats(handle Handle) *handleStats {
	s, ok := a.handles[handle]
	if !ok {
		a.fatal("alloc: handle %q not registered", handle)
	}
	return s
}

// Allocate accounts for n objects allocated under handle and returns
// a freshly zeroed slice of the requested element type. n must be
// positive; a zero-length allocation is a contract violation (it
// indicates a caller bug, never a legitimate empty request — callers
// that have nothing to allocate should simply not call Allocate).
func Allocate[T any](a *Allocator, handle Handle, n int) []T {
	s := a.stats(handle)
	if n <= 0 {
		a.fatal("alloc: allocate: non-positive count %d for handle %q", n, handle)
	}
	s.reused += int64(n)
	s.inUse += int64(n)
	if s.inUse > s.maxUsage {
		s.maxUsage = s.inUse
	}
	return make([]T, n)
}

// Free accounts for releasing a previously allocated slice under
// handle. n must match the length originally allocated.
func Free[T any](a *Allocator, handle Handle, s []T) {
	st := a.stats(handle)
	n := int64(len(s))
	if n <= 0 {
		st.recycled += 0
		return
	}
	if n > st.inUse {
		a.fatal("alloc: free: releasing %d objects under handle %q exceeds %d in use", n, handle, st.inUse)
	}
	st.recycled += n
	st.inUse -= n
}

// HandleUsage reports the reused/recycled/max-usage counters for a
// handle, used by Stats-reporting callers and tests.
type HandleUsage struct {
	Reused   int64
	Recycled int64
	InUse    int64
	MaxUsage int64
}

func (a *Allocator) Usage(handle Handle) HandleUsage {
	s := a.stats(handle)
	return HandleUsage{Reused: s.reused, Recycled: s.recycled, InUse: s.inUse, MaxUsage: s.maxUsage}
}

// Close runs the leak check: every registered handle must have
// reused == recycled (everything allocated was freed). Any
// discrepancy is a contract violation and aborts the process, per the
// core's error-handling design — allocator leaks are a programming
// error, never a recoverable condition.
func (a *Allocator) Close() {
	for handle, s := range a.handles {
		if s.reused != s.recycled {
			a.fatal("alloc: leak check failed for handle %q: reused=%d recycled=%d", handle, s.reused, s.recycled)
		}
	}
}
