package gclib

import (
	"fmt"

	"github.com/inhies/go-bytesize"
)

// Stats is a point-in-time snapshot of heap occupancy, supplementing the
// three raw counters spec.md §6 requires with human-readable formatting.
type Stats struct {
	LiveObjects uint64
	Blocks      int
	BigObjects  int
	BlockBytes  uintptr
}

// Stats returns a snapshot of the current heap state.
func (gc *GC) Stats() Stats {
	return Stats{
		LiveObjects: gc.objectCount,
		Blocks:      len(gc.blocks),
		BigObjects:  len(gc.bigObjects),
		BlockBytes:  gc.blockSize,
	}
}

// String renders the snapshot with human-scaled byte sizes, e.g.
// "12 objects, 3 blocks (96.00KB), 1 big object".
func (s Stats) String() string {
	total := bytesize.New(float64(uintptr(s.Blocks) * s.BlockBytes))
	objWord := "objects"
	if s.LiveObjects == 1 {
		objWord = "object"
	}
	bigWord := "big objects"
	if s.BigObjects == 1 {
		bigWord = "big object"
	}
	return fmt.Sprintf("%d %s, %d blocks (%s), %d %s", s.LiveObjects, objWord, s.Blocks, total, s.BigObjects, bigWord)
}
