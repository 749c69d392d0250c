package gclib_test

import (
	"unsafe"

	"github.com/mkern/gclib"
)

// The object model below is the "host collaborator" spec.md §1 calls out of
// scope: a small tagged-union discriminated by a leading tag byte, the same
// shape original_source/test/test.cpp uses for its gcint/gcivec fixture. It
// exists only to drive the scenario tests in gclib_test.

type objTag uint8

const (
	tagInt objTag = iota
	tagListNode
	tagDNode
	tagVecHeader
	tagVecPayload
)

type gcInt struct {
	tag   objTag
	_     [7]byte
	Value int64
}

type gcListNode struct {
	tag   objTag
	_     [7]byte
	Next  unsafe.Pointer
	Value int64
}

type gcDNode struct {
	tag        objTag
	_          [7]byte
	Next, Prev unsafe.Pointer
	Value      int64
}

type gcVecHeader struct {
	tag  objTag
	_    [7]byte
	Data unsafe.Pointer
}

type gcVecPayload struct {
	tag objTag
	_   [7]byte
	N   int64
	// N int64 values follow immediately after this header.
}

func vecPayloadItems(p *gcVecPayload) []int64 {
	base := unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(gcVecPayload{}))
	return unsafe.Slice((*int64)(base), p.N)
}

func objTagOf(obj unsafe.Pointer) objTag {
	return *(*objTag)(obj)
}

func hostSizeOf(obj unsafe.Pointer) uintptr {
	switch objTagOf(obj) {
	case tagInt:
		return unsafe.Sizeof(gcInt{})
	case tagListNode:
		return unsafe.Sizeof(gcListNode{})
	case tagDNode:
		return unsafe.Sizeof(gcDNode{})
	case tagVecHeader:
		return unsafe.Sizeof(gcVecHeader{})
	case tagVecPayload:
		n := (*gcVecPayload)(obj).N
		return unsafe.Sizeof(gcVecPayload{}) + uintptr(n)*8
	default:
		panic("gclib_test: unknown tag")
	}
}

func hostPointerBegin(obj unsafe.Pointer) (*unsafe.Pointer, bool) {
	switch objTagOf(obj) {
	case tagListNode:
		return &(*gcListNode)(obj).Next, true
	case tagDNode:
		return &(*gcDNode)(obj).Next, true
	case tagVecHeader:
		return &(*gcVecHeader)(obj).Data, true
	default:
		return nil, false
	}
}

func hostNextPointer(obj unsafe.Pointer, prev *unsafe.Pointer) (*unsafe.Pointer, bool) {
	switch objTagOf(obj) {
	case tagDNode:
		n := (*gcDNode)(obj)
		if prev == &n.Next {
			return &n.Prev, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func newHostGC() (*gclib.GC, error) {
	return gclib.New(gclib.DefaultConfig(), hostSizeOf, hostPointerBegin, hostNextPointer)
}

func allocInt(gc *gclib.GC, v int64) *gcInt {
	p := (*gcInt)(gc.Alloc(unsafe.Sizeof(gcInt{})))
	p.tag = tagInt
	p.Value = v
	return p
}

func allocListNode(gc *gclib.GC, v int64) *gcListNode {
	p := (*gcListNode)(gc.Alloc(unsafe.Sizeof(gcListNode{})))
	p.tag = tagListNode
	p.Value = v
	return p
}

func allocDNode(gc *gclib.GC, v int64) *gcDNode {
	p := (*gcDNode)(gc.Alloc(unsafe.Sizeof(gcDNode{})))
	p.tag = tagDNode
	p.Value = v
	return p
}

func allocVecHeader(gc *gclib.GC) *gcVecHeader {
	p := (*gcVecHeader)(gc.Alloc(unsafe.Sizeof(gcVecHeader{})))
	p.tag = tagVecHeader
	return p
}

func allocVecPayload(gc *gclib.GC, n int64) *gcVecPayload {
	bytes := unsafe.Sizeof(gcVecPayload{}) + uintptr(n)*8
	p := (*gcVecPayload)(gc.Alloc(bytes))
	p.tag = tagVecPayload
	p.N = n
	return p
}
