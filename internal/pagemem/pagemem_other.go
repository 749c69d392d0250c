//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package pagemem

import "unsafe"

// Alloc returns a size-byte region aligned to size, which must be a power of
// two, using a plain over-allocated Go slice since this platform has no mmap
// binding wired in. The backing slice is kept alive by the Region's raw
// field for as long as the region is in use.
func Alloc(size uintptr) (Region, error) {
	raw := make([]byte, 2*size)
	rawAddr := uintptr(unsafe.Pointer(&raw[0]))
	base := alignUp(rawAddr, size)

	return Region{
		Base:   unsafe.Pointer(base),
		raw:    unsafe.Pointer(&raw[0]),
		rawLen: uintptr(len(raw)),
	}, nil
}

// Free is a no-op here: the backing slice is ordinary Go-GC-managed memory
// and is reclaimed once nothing references Region.raw anymore.
func Free(r Region) error {
	return nil
}
