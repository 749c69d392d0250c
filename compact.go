package gclib

import (
	"slices"
	"unsafe"
)

// evacSentinel marks a block as not selected for evacuation this cycle.
const evacSentinel = ^uint64(0)

// compact evacuates the most fragmented blocks, packing their live objects
// into fresh blocks and rewriting every reference that pointed into an
// evacuated block. alive must be the set produced by the mark phase that
// just ran; it is not mutated. Destination blocks are fresh, and arming one
// consumes its whole free run, so its bitmap reads as full after packing
// until the next cycle re-marks it; packing itself does not touch bitmaps.
func (gc *GC) compact(alive map[unsafe.Pointer]struct{}) {
	if uint64(len(gc.blocks)) <= gc.cfg.BlockCompactRatio {
		return
	}

	type holeCount struct {
		holes uint64
		idx   int
	}
	byHoles := make([]holeCount, len(gc.blocks))
	withHoles := 0
	for i, b := range gc.blocks {
		h := gc.blockCountHoles(b)
		byHoles[i] = holeCount{h, i}
		*gc.blockFlagPtr(b) = evacSentinel
		if h > 1 {
			withHoles++
		}
	}
	// Descending by hole count, ties broken by descending original index —
	// matches sorting (holes, idx) pairs with std::greater.
	slices.SortFunc(byHoles, func(a, b holeCount) int {
		if a.holes != b.holes {
			if a.holes > b.holes {
				return -1
			}
			return 1
		}
		if a.idx > b.idx {
			return -1
		}
		if a.idx < b.idx {
			return 1
		}
		return 0
	})

	compactCount := len(gc.blocks) / int(gc.cfg.BlockCompactRatio)
	if withHoles < compactCount {
		compactCount = withHoles
	}
	if compactCount == 0 {
		return
	}
	gc.debugf("compacting %d of %d blocks", compactCount, len(gc.blocks))

	toCompact := make([]int, compactCount)
	for j := 0; j < compactCount; j++ {
		toCompact[j] = byHoles[j].idx
		*gc.blockFlagPtr(gc.blocks[toCompact[j]]) = uint64(j)
	}

	buckets := make([][]unsafe.Pointer, compactCount)
	externalRefs := make(map[unsafe.Pointer][]*unsafe.Pointer)

	isSmall := func(o unsafe.Pointer) bool { return gc.sizeOf(o) <= gc.bigObjectThreshold }

	// Classify references: a live object either lands in a bucket (it's
	// itself being evacuated) or has its outgoing slots scanned for
	// pointers into evacuation sources. Big objects are never evacuation
	// sources (moving them out of the large-object pool is a non-goal) and
	// never owned by a block, so they're only ever scanners here, never
	// bucketed, and isSmall guards every owning-block lookup against them.
	for o := range alive {
		if isSmall(o) {
			b := blockOf(o, gc.blockSize)
			if flag := *gc.blockFlagPtr(b); flag != evacSentinel {
				buckets[flag] = append(buckets[flag], o)
				continue
			}
		}
		for slot, ok := gc.begin(o); ok; slot, ok = gc.next(o, slot) {
			p := *slot
			if p == nil || !isSmall(p) {
				continue
			}
			pb := blockOf(p, gc.blockSize)
			if flag := *gc.blockFlagPtr(pb); flag != evacSentinel {
				externalRefs[p] = append(externalRefs[p], slot)
			}
		}
	}
	for slot := range gc.roots {
		p := *slot
		if p == nil || !isSmall(p) {
			continue
		}
		pb := blockOf(p, gc.blockSize)
		if flag := *gc.blockFlagPtr(pb); flag != evacSentinel {
			externalRefs[p] = append(externalRefs[p], slot)
		}
	}

	var newBlocks []blockRef
	var dstBump, dstEnd unsafe.Pointer
	pushDst := func() {
		nb := gc.allocBlock()
		newBlocks = append(newBlocks, nb)
		dstBump, dstEnd = gc.blockNextRange(nb)
	}
	pushDst()

	transfer := make(map[unsafe.Pointer]unsafe.Pointer)
	for j := 0; j < compactCount; j++ {
		for _, o := range buckets[j] {
			sz := bytesToMaxAlign(gc.sizeOf(o))
			if uintptr(dstEnd)-uintptr(dstBump) < sz {
				pushDst()
			}
			dst := dstBump
			transfer[o] = dst
			copyObject(dst, o, sz)
			for _, slot := range externalRefs[o] {
				*slot = dst
			}
			dstBump = unsafe.Add(dstBump, sz)
		}
	}

	// Free the sources, descending index order so earlier indices in
	// gc.blocks stay valid as later ones are removed (spec.md §9).
	removalOrder := append([]int(nil), toCompact...)
	slices.SortFunc(removalOrder, func(a, b int) int {
		if a > b {
			return -1
		}
		if a < b {
			return 1
		}
		return 0
	})
	for _, idx := range removalOrder {
		gc.freeBlock(gc.blocks[idx])
		gc.blocks = append(gc.blocks[:idx], gc.blocks[idx+1:]...)
	}

	// Rewrite internal references between relocated objects, scanning each
	// copy rather than its original: the original's storage may already
	// have been reused by a later object copied in this same pass.
	for _, dst := range transfer {
		for slot, ok := gc.begin(dst); ok; slot, ok = gc.next(dst, slot) {
			if to, relocated := transfer[*slot]; relocated {
				*slot = to
			}
		}
	}

	gc.blocks = append(gc.blocks, newBlocks...)
}

func copyObject(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
