package gclib

import "unsafe"

// sweepBigObjects removes every big object not in alive, letting the Go
// runtime reclaim its backing memory once the last reference (the map key
// itself) is dropped.
func (gc *GC) sweepBigObjects(alive map[unsafe.Pointer]struct{}) {
	for p := range gc.bigObjects {
		if _, ok := alive[p]; !ok {
			delete(gc.bigObjects, p)
		}
	}
}
