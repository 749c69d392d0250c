package gclib

import "unsafe"

// AddRoot registers slot as a source of liveness: Collect will read *slot
// and trace from it. The same slot must not be registered twice.
func (gc *GC) AddRoot(slot *unsafe.Pointer) {
	gc.roots[slot] = struct{}{}
}

// RemoveRoot deregisters a previously registered slot.
func (gc *GC) RemoveRoot(slot *unsafe.Pointer) {
	delete(gc.roots, slot)
}

// MoveRoot atomically deregisters from and registers to, used when a root's
// backing storage moves (e.g. a Root handle being move-constructed).
func (gc *GC) MoveRoot(from, to *unsafe.Pointer) {
	delete(gc.roots, from)
	gc.roots[to] = struct{}{}
}

// noCopy is embedded in Root to make `go vet`'s copylocks check (which treats
// any type with a Lock method as non-copyable) flag accidental copies of a
// root handle. It's the same trick sync.Once/sync.Mutex-adjacent types in
// the standard library use; Root enforces move-only semantics this way
// since Go has no copy constructors to delete.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Root is a move-only scoped handle around a pointer into gc's heap. While
// held, it keeps its target (and everything reachable from it) alive across
// collections. Construct with NewRoot, which returns a pointer to a
// heap-allocated Root: the address gc traces from is &root.ptr, so the Root
// itself must never be copied by value after registration (noCopy flags
// that via go vet) and must be referred to through the returned pointer.
// Release with Close, or let the host arrange for Close to run (Root has no
// finalizer of its own — unlike GC itself, a forgotten Root only leaks a GC
// root slot, not OS memory).
type Root[T any] struct {
	_   noCopy
	ptr unsafe.Pointer
	gc  *GC
}

// NewRoot registers ptr as a root and returns a handle for it. The handle is
// allocated on the heap and returned by pointer so the address gc.AddRoot
// registers stays valid for the handle's entire lifetime — returning Root by
// value here would register the address of a local that a subsequent copy
// (e.g. storing the return into a slice) leaves behind.
// A nil ptr leaves the handle unregistered until Set gives it a target.
func NewRoot[T any](gc *GC, ptr *T) *Root[T] {
	r := &Root[T]{ptr: unsafe.Pointer(ptr), gc: gc}
	if ptr != nil {
		gc.AddRoot(&r.ptr)
	}
	return r
}

// Get returns the handle's current target, or nil if it was cleared.
func (r *Root[T]) Get() *T { return (*T)(r.ptr) }

// Set overwrites the handle's target in place; the slot address does not
// change, so a handle that is already registered stays registered. Setting
// a target on a cleared handle registers it again, and setting nil clears it.
func (r *Root[T]) Set(ptr *T) {
	if ptr == nil {
		r.Clear()
		return
	}
	if r.ptr == nil {
		r.gc.AddRoot(&r.ptr)
	}
	r.ptr = unsafe.Pointer(ptr)
}

// Clear deregisters the handle without destroying it, leaving it reusable.
func (r *Root[T]) Clear() {
	if r.ptr != nil {
		r.gc.RemoveRoot(&r.ptr)
		r.ptr = nil
	}
}

// MoveTo transfers ownership of r's registration to dst, clearing r. This is
// the Go stand-in for the original's move constructor/move assignment: Go
// has no way to hook a plain `dst := r` copy, so callers that need dst's
// identity (its address, already held elsewhere) to take over r's target
// must call MoveTo explicitly instead of copying through *r.
func (r *Root[T]) MoveTo(dst *Root[T]) {
	if dst.ptr != nil {
		dst.gc.RemoveRoot(&dst.ptr)
	}
	dst.ptr = r.ptr
	dst.gc = r.gc
	if r.ptr != nil {
		r.gc.MoveRoot(&r.ptr, &dst.ptr)
	}
	r.ptr = nil
}

// Close deregisters the handle. Safe to call more than once.
func (r *Root[T]) Close() {
	r.Clear()
}
