package gclib

import (
	"fmt"
	"unsafe"

	"github.com/mkern/gclib/internal/pagemem"
)

// Alloc returns a region of at least bytes bytes, aligned to maxAlign. It
// may trigger a collection first if the allocation counter has run out.
func (gc *GC) Alloc(bytes uintptr) unsafe.Pointer {
	bytes = bytesToMaxAlign(bytes)

	gc.collectCounter--
	if gc.collectCounter == 0 {
		gc.collectCounter = gc.cfg.BlockCollectFactor * uint64(max(1, len(gc.blocks)))
		gc.Collect()
	}
	gc.objectCount++

	if bytes > gc.bigObjectThreshold {
		return gc.allocBig(bytes)
	}
	return gc.allocSmall(bytes)
}

func (gc *GC) allocBig(bytes uintptr) unsafe.Pointer {
	buf := make([]byte, bytes)
	ptr := unsafe.Pointer(&buf[0])
	gc.bigObjects[ptr] = struct{}{}
	return ptr
}

func (gc *GC) allocSmall(bytes uintptr) unsafe.Pointer {
	for {
		if gc.bump == nil {
			gc.addBlock()
			if out := gc.allocInBump(bytes); out != nil {
				return out
			}
			continue
		}
		if out := gc.allocInBump(bytes); out != nil {
			return out
		}
		gc.nextBump()
	}
}

// allocInBump carves bytes out of the current bump range. The bytes==space
// case must drain the range and refill it rather than leaving a zero-length
// range armed — the next_free bookkeeping desyncs otherwise (spec.md §9).
func (gc *GC) allocInBump(bytes uintptr) unsafe.Pointer {
	space := uintptr(gc.bumpEnd) - uintptr(gc.bump)
	switch {
	case bytes < space:
		out := gc.bump
		gc.bump = unsafe.Add(gc.bump, bytes)
		return out
	case bytes == space:
		out := gc.bump
		gc.nextBump()
		return out
	default:
		return nil
	}
}

// nextBump refills (bump, bumpEnd) from the back of freeBlocksList, popping
// the block off the list once it has no more free runs.
func (gc *GC) nextBump() {
	n := len(gc.freeBlocksList)
	if n == 0 {
		gc.bump, gc.bumpEnd = nil, nil
		return
	}
	b := gc.freeBlocksList[n-1]
	gc.bump, gc.bumpEnd = gc.blockNextRange(b)
	if gc.blockIsFull(b) {
		gc.freeBlocksList = gc.freeBlocksList[:n-1]
	}
}

func (gc *GC) addBlock() {
	b := gc.allocBlock()
	gc.blocks = append(gc.blocks, b)
	gc.bump, gc.bumpEnd = gc.blockNextRange(b)
}

// allocBlock obtains a fresh block_size-aligned region from the platform and
// clears its metadata.
func (gc *GC) allocBlock() blockRef {
	region, err := pagemem.Alloc(gc.blockSize)
	if err != nil {
		panic(fmt.Sprintf("gclib: out of memory allocating a block: %v", err))
	}
	b := blockRef(uintptr(region.Base))
	gc.blockRegions[b] = region
	gc.blockClear(b)
	return b
}

func (gc *GC) freeBlock(b blockRef) error {
	region, ok := gc.blockRegions[b]
	if !ok {
		return nil
	}
	delete(gc.blockRegions, b)
	return pagemem.Free(region)
}
