package region

import (
	"github.com/pkg/errors"

	"github.com/pavanmanishd/region/sysmem"
)

// largeReuseWindow is how many registry slots, counted from the head, are
// searched for a freed slot before a new one is added.
const largeReuseWindow = 3

// largeAlloc is one registry slot. A nil data marks a slot emptied by Free.
type largeAlloc struct {
	data []byte
}

// AllocAligned returns n bytes aligned to alignment, which must be a power of
// two. The buffer always comes directly from the system allocator, whatever
// its size, and can be released early with Free.
func (p *Pool) AllocAligned(n, alignment int) ([]byte, error) {
	p.panicIfDestroyed()
	switch {
	case n < 0:
		return nil, errors.Wrapf(ErrInvalidSize, "size %d", n)
	case !sysmem.IsPowerOfTwo(alignment):
		return nil, errors.Wrapf(ErrInvalidAlignment, "alignment %d", alignment)
	case n == 0:
		return nil, nil
	}
	return p.allocLarge(n, alignment, pathAligned)
}

func (p *Pool) allocLarge(n, alignment int, path string) ([]byte, error) {
	data, err := p.sys.Acquire(n, alignment)
	if err != nil {
		p.metrics.failure(path)
		p.log.WithField("action", "pool_alloc").WithField("size", n).
			WithField("alignment", alignment).WithError(err).
			Error("cannot acquire large allocation")
		return nil, errors.Wrapf(err, "allocate %d bytes", n)
	}

	// the head is the last slot
	for i, scanned := len(p.large)-1, 0; i >= 0 && scanned < largeReuseWindow; i, scanned = i-1, scanned+1 {
		if p.large[i].data == nil {
			p.large[i].data = data
			p.metrics.allocated(path, n)
			return data, nil
		}
	}

	p.large = append(p.large, largeAlloc{data: data})
	p.metrics.allocated(path, n)
	return data, nil
}

func (p *Pool) freeLarge(b []byte) error {
	ptr := dataPtr(b)
	for i := len(p.large) - 1; i >= 0; i-- {
		l := &p.large[i]
		if l.data == nil || dataPtr(l.data) != ptr {
			continue
		}
		data := l.data
		l.data = nil
		p.metrics.largeFreed()
		if err := p.sys.Release(data); err != nil {
			return errors.Wrap(err, "release large allocation")
		}
		return nil
	}
	return ErrNotFound
}
