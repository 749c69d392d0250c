package gclib

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

var checksumTable = crc16.MakeTable(crc16.CRC16_ARC)

// DebugChecksum folds a CRC16 over every block's free-line bitmap plus the
// big-object count into a single fingerprint of the heap's occupancy state.
// It is meant for tests and debugging: two collections that are supposed to
// leave the heap unchanged (spec.md §8 property 5, idempotence) can compare
// this instead of LiveObjectCount alone, catching a bug that rearranges
// bitmap bits without changing any count.
func (gc *GC) DebugChecksum() uint16 {
	crc := crc16.Init(checksumTable)
	var word [8]byte
	for _, b := range gc.blocks {
		for _, w := range gc.blockFree(b) {
			binary.LittleEndian.PutUint64(word[:], w)
			crc = crc16.Update(crc, word[:], checksumTable)
		}
	}
	binary.LittleEndian.PutUint64(word[:], uint64(len(gc.bigObjects)))
	crc = crc16.Update(crc, word[:], checksumTable)
	return crc16.Complete(crc, checksumTable)
}
