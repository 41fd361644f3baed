package sysmem

import (
	"sync"

	"github.com/pkg/errors"
)

// Limit caps the number of bytes held through a parent Allocator. It is
// typically shared by all pools serving one tenant or listener.
type Limit struct {
	mu     sync.Mutex
	parent Allocator
	limit  int
	used   int
	sizes  map[uintptr]int
}

// NewLimit wraps parent with a budget of limit bytes.
func NewLimit(parent Allocator, limit int) *Limit {
	return &Limit{
		parent: parent,
		limit:  limit,
		sizes:  make(map[uintptr]int),
	}
}

// Acquire reserves size bytes of the budget and then asks the parent. A
// refused or failed request holds nothing.
func (l *Limit) Acquire(size, alignment int) ([]byte, error) {
	if err := checkRequest(size, alignment); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if size > l.limit-l.used {
		used := l.used
		l.mu.Unlock()
		return nil, errors.Wrapf(ErrOutOfMemory, "limit %d bytes, %d in use, %d requested",
			l.limit, used, size)
	}
	l.used += size
	l.mu.Unlock()

	b, err := l.parent.Acquire(size, alignment)
	if err != nil {
		l.mu.Lock()
		l.used -= size
		l.mu.Unlock()
		return nil, err
	}

	l.mu.Lock()
	l.sizes[key(b)] = size
	l.mu.Unlock()
	return b, nil
}

// Release returns b to the parent and gives its bytes back to the budget.
func (l *Limit) Release(b []byte) error {
	l.mu.Lock()
	size, ok := l.sizes[key(b)]
	if ok {
		delete(l.sizes, key(b))
		l.used -= size
	}
	l.mu.Unlock()
	if !ok {
		return ErrUnknownRegion
	}
	return l.parent.Release(b)
}

// Used returns the number of bytes currently held.
func (l *Limit) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}
