package gclib

import "fmt"

// Config holds the tuning constants spec.md calls compile-time constants.
// gclib keeps them as ordinary construction-time values instead, one Config
// per GC instance, so a single process can run collectors with different
// block/line geometries (e.g. a benchmark harness sweeping BlockSize).
type Config struct {
	// LineSize is the byte size of one occupancy-tracking unit.
	LineSize uintptr `yaml:"line_size"`
	// BlockSize is the byte size (and alignment) of one heap region.
	// Must be a multiple of LineSize*64.
	BlockSize uintptr `yaml:"block_size"`
	// BigObjectThreshold is the largest allocation handled by the block
	// allocator; anything bigger is diverted to the big-object list.
	// Must be <= BlockSize.
	BigObjectThreshold uintptr `yaml:"big_object_threshold"`
	// BlockCollectFactor is the per-block multiplier used to reset the
	// allocation counter that triggers a collection.
	BlockCollectFactor uint64 `yaml:"block_collect_factor"`
	// BlockCompactRatio is both the block-count threshold that makes a
	// collection eligible for compaction and the denominator used to pick
	// how many of the most fragmented blocks to evacuate.
	BlockCompactRatio uint64 `yaml:"block_compact_ratio"`
	// Debug enables verbose tracing of collection cycles via the log
	// package. Off by default; mirrors tinygo's gcDebug constant.
	Debug bool `yaml:"debug"`
	// Asserts enables an expensive internal consistency check: Collect runs
	// its cycle twice back to back and panics if DebugChecksum disagrees
	// between the two, since a second collect is supposed to be a no-op.
	// Off by default; mirrors tinygo's gcAsserts constant.
	Asserts bool `yaml:"asserts"`
}

// maxAlign is the alignment (and minimum allocation granularity) every
// object is rounded up to. 16 bytes covers every scalar and pointer pair on
// both 32- and 64-bit hosts, playing the role of C's max_align_t.
const maxAlign = 16

// DefaultConfig returns the constants recommended by spec.md §3.
func DefaultConfig() Config {
	const lineSize = 128
	return Config{
		LineSize:           lineSize,
		BlockSize:          256 * lineSize,
		BigObjectThreshold: (256 * lineSize) / 4,
		BlockCollectFactor: 128,
		BlockCompactRatio:  20,
	}
}

// validate checks the constraints spec.md §6 lists, plus the invariant that
// the block metadata header must fit in under one line group (64 lines).
func (c Config) validate() error {
	if c.LineSize == 0 || c.BlockSize == 0 {
		return fmt.Errorf("gclib: LineSize and BlockSize must be nonzero")
	}
	if c.BlockSize%(c.LineSize*64) != 0 {
		return fmt.Errorf("gclib: BlockSize (%d) must be a multiple of LineSize*64 (%d)", c.BlockSize, c.LineSize*64)
	}
	if c.BigObjectThreshold > c.BlockSize {
		return fmt.Errorf("gclib: BigObjectThreshold (%d) must be <= BlockSize (%d)", c.BigObjectThreshold, c.BlockSize)
	}
	if c.BlockCollectFactor == 0 {
		return fmt.Errorf("gclib: BlockCollectFactor must be nonzero")
	}
	if c.BlockCompactRatio == 0 {
		return fmt.Errorf("gclib: BlockCompactRatio must be nonzero")
	}
	linesPerBlock := c.BlockSize / c.LineSize
	if linesPerBlock%64 != 0 {
		return fmt.Errorf("gclib: BlockSize/LineSize (%d) must be a multiple of 64", linesPerBlock)
	}
	lineGroups := linesPerBlock / 64
	metadataBytes := blockHeaderSize + lineGroups*8
	metadataLines := (metadataBytes + c.LineSize - 1) / c.LineSize
	if metadataLines >= 64 {
		return fmt.Errorf("gclib: block metadata header (%d lines) does not fit in one line group", metadataLines)
	}
	if maxAlign > c.LineSize {
		return fmt.Errorf("gclib: LineSize (%d) must be >= max alignment (%d)", c.LineSize, maxAlign)
	}
	return nil
}

func bytesToMaxAlign(bytes uintptr) uintptr {
	return (bytes + maxAlign - 1) / maxAlign * maxAlign
}
