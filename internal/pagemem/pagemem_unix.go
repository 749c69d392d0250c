//go:build linux || darwin || freebsd || netbsd || openbsd

package pagemem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Alloc maps a fresh, zeroed size-byte region aligned to size, which must be
// a power of two. It over-maps 2*size bytes (mmap gives no alignment
// guarantee beyond the page size) and hands back a pointer into the aligned
// sub-range; the whole over-mapping is kept around so Free can release it in
// one munmap.
func Alloc(size uintptr) (Region, error) {
	raw, err := unix.Mmap(-1, 0, int(2*size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return Region{}, fmt.Errorf("pagemem: mmap %d bytes: %w", 2*size, err)
	}
	rawAddr := uintptr(unsafe.Pointer(&raw[0]))
	base := alignUp(rawAddr, size)

	return Region{
		Base:   unsafe.Pointer(base),
		raw:    unsafe.Pointer(&raw[0]),
		rawLen: uintptr(len(raw)),
	}, nil
}

// Free releases a region obtained from Alloc.
func Free(r Region) error {
	raw := unsafe.Slice((*byte)(r.raw), r.rawLen)
	if err := unix.Munmap(raw); err != nil {
		return fmt.Errorf("pagemem: munmap: %w", err)
	}
	return nil
}
