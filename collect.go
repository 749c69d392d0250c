package gclib

import "fmt"

// Collect runs one full collection cycle: clear every block's occupancy,
// mark everything reachable from the root set, sweep large objects not in
// that set, optionally compact the most fragmented blocks, then rebuild the
// per-block free cursors and rearm the bump allocator.
//
// When Config.Asserts is enabled, Collect runs this cycle a second time
// immediately afterward and compares DebugChecksum before and after: a
// collect is supposed to be a pure function of the live set (spec.md §8
// property 5), so the second pass should leave every bit exactly where the
// first one put it. A mismatch means some step left stale bitmap state
// behind and panics rather than returning corrupted occupancy data.
func (gc *GC) Collect() {
	gc.collectOnce()

	if gc.cfg.Asserts {
		before := gc.DebugChecksum()
		gc.collectOnce()
		after := gc.DebugChecksum()
		if before != after {
			panic(fmt.Sprintf("gclib: heap checksum changed across an idempotent collect (%#x -> %#x)", before, after))
		}
	}
}

func (gc *GC) collectOnce() {
	for _, b := range gc.blocks {
		gc.blockClear(b)
	}

	alive := gc.mark()

	gc.sweepBigObjects(alive)

	gc.compact(alive)

	gc.freeBlocksList = gc.freeBlocksList[:0]
	for _, b := range gc.blocks {
		gc.blockPrepare(b)
		if !gc.blockIsFull(b) {
			gc.freeBlocksList = append(gc.freeBlocksList, b)
		}
	}

	gc.bump, gc.bumpEnd = nil, nil
	gc.nextBump()

	gc.objectCount = uint64(len(alive))

	gc.debugf("collect: %d live objects, %d blocks, %d big objects", gc.objectCount, len(gc.blocks), len(gc.bigObjects))
}
