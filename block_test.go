package gclib

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func newNoopGC(t *testing.T) *GC {
	t.Helper()
	gc, err := New(DefaultConfig(),
		func(unsafe.Pointer) uintptr { return 0 },
		func(unsafe.Pointer) (*unsafe.Pointer, bool) { return nil, false },
		func(unsafe.Pointer, *unsafe.Pointer) (*unsafe.Pointer, bool) { return nil, false },
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gc.Close() })
	return gc
}

func TestBlockClearOccupiesOnlyMetadataLines(t *testing.T) {
	gc := newNoopGC(t)
	b := gc.allocBlock()

	free := gc.blockFree(b)
	require.Equal(t, ^uint64(0)<<gc.metadataLineBits, free[0])
	for i := 1; i < len(free); i++ {
		require.Equal(t, ^uint64(0), free[i])
	}
	require.False(t, gc.blockIsFull(b))
}

func TestBlockNextRangeDrainsExactlyTheUsableSpace(t *testing.T) {
	gc := newNoopGC(t)
	b := gc.allocBlock()

	linesPerBlock := gc.blockSize / gc.lineSize
	usableLines := linesPerBlock - uintptr(gc.metadataLineBits)

	var total uintptr
	for !gc.blockIsFull(b) {
		begin, end := gc.blockNextRange(b)
		require.Less(t, uintptr(begin), uintptr(end))
		require.True(t, uintptr(begin)%gc.lineSize == 0)
		require.True(t, uintptr(end)%gc.lineSize == 0)
		total += uintptr(end) - uintptr(begin)
	}
	require.Equal(t, usableLines*gc.lineSize, total)
}

func TestBlockAddObjectClearsCoveredLinesOnly(t *testing.T) {
	gc := newNoopGC(t)
	b := gc.allocBlock()

	at := unsafe.Add(b.ptr(), uintptr(gc.metadataLineBits)*gc.lineSize)
	gc.blockAddObject(b, at, gc.lineSize*3-1) // spans 3 lines

	free := gc.blockFree(b)
	firstLine := uint64(gc.metadataLineBits)
	for i := firstLine; i < firstLine+3; i++ {
		word, bit := i/64, i%64
		require.Zero(t, free[word]&(1<<bit), "line %d should be occupied", i)
	}
	nextLine := firstLine + 3
	word, bit := nextLine/64, nextLine%64
	require.NotZero(t, free[word]&(1<<bit), "line %d should still be free", nextLine)
}

func TestBlockCountHolesMatchesBruteForce(t *testing.T) {
	gc := newNoopGC(t)
	b := gc.allocBlock()

	free := gc.blockFree(b)
	// Carve an artificial checkerboard of alternating 4-bit runs so there
	// are several holes, including ones that start exactly at a word
	// boundary. The metadata lines at the start of word 0 stay occupied, as
	// they always are in a real block.
	for i := range free {
		free[i] = 0x0F0F0F0F0F0F0F0F
	}
	free[0] &^= (uint64(1) << gc.metadataLineBits) - 1

	var want uint64
	prevBit := -1
	totalBits := len(free) * 64
	for i := 0; i < totalBits; i++ {
		word, bit := i/64, uint(i%64)
		isFree := free[word]&(1<<bit) != 0
		if isFree && prevBit != 1 {
			want++
		}
		if isFree {
			prevBit = 1
		} else {
			prevBit = 0
		}
	}

	require.Equal(t, want, gc.blockCountHoles(b))
}

func TestBigObjectDoesNotAliasAManagedBlock(t *testing.T) {
	gc := newNoopGC(t)
	gc.addBlock()

	big := gc.allocBig(gc.bigObjectThreshold + 1)
	masked := blockOf(big, gc.blockSize)

	for _, owned := range gc.blocks {
		require.NotEqual(t, owned, masked)
	}
}
