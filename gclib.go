// Package gclib is an embeddable, precise, tracing garbage collector for a
// host program that chooses its own object representation. It supplies a
// bump-pointer allocator backed by block/line metadata, a mark-and-sweep
// collection cycle driven by an explicit root set, a selective compacting
// relocation pass for fragmented blocks, and a large-object fallback path.
//
// The host describes its object graph with three callbacks — SizeFunc,
// PointerBeginFunc, NextPointerFunc — passed to New. Roots are registered
// explicitly; Root is a move-only scoped handle that does this for the host.
//
// A GC instance is single-owner and not safe for concurrent use: every call
// into it, including through a Root, must be serialized by the host.
package gclib

import (
	"fmt"
	"log"
	"runtime"
	"unsafe"

	"github.com/mkern/gclib/internal/pagemem"
)

// SizeFunc reports the total size in bytes of a GC-managed object,
// including any header the host keeps in front of it.
type SizeFunc func(obj unsafe.Pointer) uintptr

// PointerBeginFunc returns the address of the first outgoing pointer slot
// within obj, or ok=false if obj has none.
type PointerBeginFunc func(obj unsafe.Pointer) (slot *unsafe.Pointer, ok bool)

// NextPointerFunc returns the address of the next outgoing pointer slot
// within obj after prev, or ok=false if there is none.
type NextPointerFunc func(obj unsafe.Pointer, prev *unsafe.Pointer) (slot *unsafe.Pointer, ok bool)

// GC is one garbage-collected heap. Allocate with New; every block and large
// object it owns is released by Close.
type GC struct {
	cfg Config

	lineSize           uintptr
	blockSize          uintptr
	bigObjectThreshold uintptr
	lineGroups         int
	metadataLineBits   uint

	sizeOf SizeFunc
	begin  PointerBeginFunc
	next   NextPointerFunc

	blocks         []blockRef
	blockRegions   map[blockRef]pagemem.Region
	bigObjects     map[unsafe.Pointer]struct{}
	bump, bumpEnd  unsafe.Pointer
	freeBlocksList []blockRef
	roots          map[*unsafe.Pointer]struct{}

	objectCount    uint64
	collectCounter uint64

	closed bool
}

// New creates a GC instance with the given tuning constants and host
// callbacks.
func New(cfg Config, sizeOf SizeFunc, begin PointerBeginFunc, next NextPointerFunc) (*GC, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if sizeOf == nil || begin == nil || next == nil {
		return nil, fmt.Errorf("gclib: sizeOf, begin and next callbacks are required")
	}

	lineGroups := int(cfg.BlockSize / cfg.LineSize / 64)
	metadataBytes := blockHeaderSize + lineGroups*8
	metadataLines := (uintptr(metadataBytes) + cfg.LineSize - 1) / cfg.LineSize

	gc := &GC{
		cfg:                cfg,
		lineSize:           cfg.LineSize,
		blockSize:          cfg.BlockSize,
		bigObjectThreshold: cfg.BigObjectThreshold,
		lineGroups:         lineGroups,
		metadataLineBits:   uint(metadataLines),
		sizeOf:             sizeOf,
		begin:              begin,
		next:               next,
		blockRegions:       make(map[blockRef]pagemem.Region),
		bigObjects:         make(map[unsafe.Pointer]struct{}),
		roots:              make(map[*unsafe.Pointer]struct{}),
		collectCounter:     cfg.BlockCollectFactor,
	}
	runtime.SetFinalizer(gc, (*GC).Close)
	return gc, nil
}

// Close frees every block and large object owned by gc. A closed GC must not
// be used again. New registers Close as a finalizer as a safety net; calling
// it explicitly is still the host's responsibility once the heap is no
// longer needed, matching the original's destructor semantics.
func (gc *GC) Close() error {
	if gc.closed {
		return nil
	}
	gc.closed = true
	runtime.SetFinalizer(gc, nil)

	var firstErr error
	for _, b := range gc.blocks {
		if err := gc.freeBlock(b); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	gc.blocks = nil
	gc.bigObjects = nil
	return firstErr
}

// LiveObjectCount returns the number of small and large objects known live
// after the last collection, plus anything allocated since.
func (gc *GC) LiveObjectCount() uint64 { return gc.objectCount }

// BlockCount returns the number of small-object blocks currently owned.
func (gc *GC) BlockCount() int { return len(gc.blocks) }

// BigObjectCount returns the number of oversize allocations currently owned.
func (gc *GC) BigObjectCount() int { return len(gc.bigObjects) }

func (gc *GC) debugf(format string, args ...any) {
	if gc.cfg.Debug {
		log.Printf("gclib: "+format, args...)
	}
}
