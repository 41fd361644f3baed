package region

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned by Free for a buffer that is not a live large
	// allocation of the pool. Small allocations are never individually freed.
	ErrNotFound = errors.New("region: allocation not found")

	// ErrInvalidSize indicates a negative allocation size.
	ErrInvalidSize = errors.New("region: invalid size")

	// ErrInvalidAlignment indicates an alignment that is not a power of two.
	ErrInvalidAlignment = errors.New("region: alignment must be a power of two")
)

const useAfterDestroy = "region: use after Destroy()"
