package gclib

import "unsafe"

// mark runs an iterative DFS from every registered root over the object
// graph, returning the set of objects proven reachable. Every block must
// already have been cleared (blockClear) before this runs: as each small
// object is marked live, its line footprint is re-recorded into its owning
// block's bitmap, so by the time mark returns, free bitmaps reflect exactly
// which lines are unoccupied.
func (gc *GC) mark() map[unsafe.Pointer]struct{} {
	alive := make(map[unsafe.Pointer]struct{})

	var work []unsafe.Pointer
	for slot := range gc.roots {
		if p := *slot; p != nil {
			work = append(work, p)
		}
	}

	for len(work) > 0 {
		o := work[len(work)-1]
		work = work[:len(work)-1]
		if _, seen := alive[o]; seen {
			continue
		}
		alive[o] = struct{}{}

		size := gc.sizeOf(o)
		if size <= gc.bigObjectThreshold {
			b := blockOf(o, gc.blockSize)
			gc.blockAddObject(b, o, size)
		}

		for slot, ok := gc.begin(o); ok; slot, ok = gc.next(o, slot) {
			if p := *slot; p != nil {
				work = append(work, p)
			}
		}
	}

	return alive
}
