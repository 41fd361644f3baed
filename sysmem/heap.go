package sysmem

import (
	"math"

	"github.com/pkg/errors"
)

// maxHeapAlloc is the largest slice the Go runtime will make. Bigger requests
// panic in make, so they are refused up front.
const maxHeapAlloc = min(math.MaxInt, 1<<48)

// Heap allocates from the Go heap. Released regions are left to the garbage
// collector, so Release never fails.
type Heap struct{}

// Acquire over-allocates by alignment-1 bytes when needed and returns the
// aligned window. Requests the runtime cannot represent fail with
// ErrOutOfMemory.
func (Heap) Acquire(size, alignment int) ([]byte, error) {
	if err := checkRequest(size, alignment); err != nil {
		return nil, err
	}
	if size > maxHeapAlloc-(alignment-1) {
		return nil, errors.Wrapf(ErrOutOfMemory, "heap: %d bytes aligned to %d", size, alignment)
	}
	buf := make([]byte, size+alignment-1)
	off := alignOffset(buf, alignment)
	return buf[off : off+size : off+size], nil
}

// Release is a no-op.
func (Heap) Release([]byte) error { return nil }
