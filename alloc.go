package region

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// Alloc returns a pointer to a zeroed T stored inside the pool. T must not
// contain Go pointers: pool memory is not scanned by the garbage collector.
// The pointer is valid until the pool is reset or destroyed.
func Alloc[T any](p *Pool) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return &zero, nil
	}
	b, err := allocFor(p, size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	clear(b)
	return (*T)(unsafe.Pointer(&b[0])), nil
}

// AllocSlice allocates a slice of n elements of type T inside the pool.
// The slice elements are not initialized (contain garbage data).
// Returns nil if n <= 0, and ErrInvalidSize if n elements do not fit in an int
// byte count.
func AllocSlice[T any](p *Pool, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n), nil
	}
	if n > math.MaxInt/elemSize {
		return nil, errors.Wrapf(ErrInvalidSize, "%d elements of %d bytes", n, elemSize)
	}
	b, err := allocFor(p, elemSize*n, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// AllocSliceZeroed allocates a slice of n elements of type T with zeroed memory.
func AllocSliceZeroed[T any](p *Pool, n int) ([]T, error) {
	s, err := AllocSlice[T](p, n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// CopyBytes copies b into unaligned pool memory.
func CopyBytes(p *Pool, b []byte) ([]byte, error) {
	dst, err := p.AllocUnaligned(len(b))
	if err != nil {
		return nil, err
	}
	copy(dst, b)
	return dst, nil
}

// CopyString copies s into unaligned pool memory and returns a string backed
// by it.
func CopyString(p *Pool, s string) (string, error) {
	dst, err := p.AllocUnaligned(len(s))
	if err != nil || len(dst) == 0 {
		return "", err
	}
	copy(dst, s)
	return unsafe.String(&dst[0], len(dst)), nil
}

// allocFor serves word-aligned types from blocks and anything stricter from
// the system allocator.
func allocFor(p *Pool, size, align int) ([]byte, error) {
	if align > wordSize {
		return p.AllocAligned(size, align)
	}
	return p.Alloc(size)
}
