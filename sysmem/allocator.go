// Package sysmem provides the system memory allocators a region.Pool draws
// its blocks and large buffers from.
//
// Three implementations are provided:
//
//   - Heap: buffers from the Go heap, released by the garbage collector
//   - Mmap: anonymous memory mappings outside the Go heap
//   - Limit: a byte budget wrapped around another Allocator
//
// Mmap and Limit are safe for concurrent use and may be shared by many pools.
package sysmem

import (
	"unsafe"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfMemory indicates the allocator could not satisfy a request.
	ErrOutOfMemory = errors.New("sysmem: out of memory")

	// ErrInvalidSize indicates a non-positive request size.
	ErrInvalidSize = errors.New("sysmem: invalid size")

	// ErrInvalidAlignment indicates an alignment that is not a power of two.
	ErrInvalidAlignment = errors.New("sysmem: alignment must be a power of two")

	// ErrUnknownRegion indicates Release was called with a buffer the
	// allocator did not hand out.
	ErrUnknownRegion = errors.New("sysmem: unknown region")
)

// WordSize is the platform pointer alignment.
const WordSize = int(unsafe.Sizeof(uintptr(0)))

// Allocator acquires and releases whole regions of memory. A region is never
// partially released or resized.
type Allocator interface {
	// Acquire returns size bytes whose first byte is aligned to alignment.
	Acquire(size, alignment int) ([]byte, error)

	// Release returns a region previously returned by Acquire.
	Release(b []byte) error
}

func checkRequest(size, alignment int) error {
	if size <= 0 {
		return errors.Wrapf(ErrInvalidSize, "size %d", size)
	}
	if !IsPowerOfTwo(alignment) {
		return errors.Wrapf(ErrInvalidAlignment, "alignment %d", alignment)
	}
	return nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// alignOffset returns the number of bytes to skip from the start of b so the
// first byte is aligned to alignment.
func alignOffset(b []byte, alignment int) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	mask := uintptr(alignment - 1)
	return int(((addr + mask) &^ mask) - addr)
}

func key(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
