package il

import "sync/atomic"

// TempAllocator mints fresh temporary variables, embedding a monotone
// counter in each Var's ID (not only its printed name). IDs are unique only
// within one allocator: every allocator counts from 0, so two allocators
// mint equal IDs. pkg/lift creates a fresh allocator for each Lift call, so
// temporaries are distinct within one instruction, while temporaries of
// different instructions can share an ID (see NewGlobalTempAllocator for a
// shared-counter allocator).
type TempAllocator struct {
	next uint64
}

// NewTempAllocator returns a fresh per-call allocator starting at 0.
func NewTempAllocator() *TempAllocator { return &TempAllocator{} }

// Fresh mints a new temporary of the given width.
func (t *TempAllocator) Fresh(width int) Var {
	id := t.next
	t.next++
	return Var{Name: "t", Typ: Reg(width), ID: id}
}

// GlobalTempAllocator is a process-wide, mutex-free (atomic) alternative to
// a per-call TempAllocator, for callers who share one allocator across
// concurrent lift invocations rather than threading a fresh one through
// each call. Per spec §5, invocations sharing an allocator must synchronize
// it; this type does so via atomic.Uint64. pkg/lift's Lifter does not use
// it.
type GlobalTempAllocator struct {
	next atomic.Uint64
}

// NewGlobalTempAllocator returns a new process-wide allocator.
func NewGlobalTempAllocator() *GlobalTempAllocator { return &GlobalTempAllocator{} }

// Fresh mints a new temporary of the given width, safe for concurrent use.
func (t *GlobalTempAllocator) Fresh(width int) Var {
	id := t.next.Add(1) - 1
	return Var{Name: "t", Typ: Reg(width), ID: id}
}
