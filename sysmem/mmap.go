package sysmem

import (
	"math"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Mmap allocates anonymous read-write mappings. Memory handed out by Mmap is
// outside the Go heap and is not scanned by the garbage collector.
type Mmap struct {
	mu       sync.Mutex
	pageSize int
	regions  map[uintptr]mmap.MMap
}

// NewMmap creates an anonymous mapping allocator.
func NewMmap() *Mmap {
	return &Mmap{
		pageSize: os.Getpagesize(),
		regions:  make(map[uintptr]mmap.MMap),
	}
}

// Acquire maps a fresh region. Mappings are page aligned, so alignments above
// the page size are served by over-mapping and handing out an aligned window.
func (m *Mmap) Acquire(size, alignment int) ([]byte, error) {
	if err := checkRequest(size, alignment); err != nil {
		return nil, err
	}
	length := size
	if alignment > m.pageSize {
		if size > math.MaxInt-alignment {
			return nil, errors.Wrapf(ErrOutOfMemory, "mmap %d bytes aligned to %d", size, alignment)
		}
		length += alignment
	}
	region, err := mmap.MapRegion(nil, length, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "mmap %d bytes: %v", length, err)
	}
	off := 0
	if alignment > m.pageSize {
		off = alignOffset(region, alignment)
	}
	b := region[off : off+size : off+size]

	m.mu.Lock()
	m.regions[key(b)] = region
	m.mu.Unlock()
	return b, nil
}

// Release unmaps the whole mapping b was carved from.
func (m *Mmap) Release(b []byte) error {
	m.mu.Lock()
	region, ok := m.regions[key(b)]
	if ok {
		delete(m.regions, key(b))
	}
	m.mu.Unlock()
	if !ok {
		return ErrUnknownRegion
	}
	if err := region.Unmap(); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

// Mapped returns the number of live mappings.
func (m *Mmap) Mapped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regions)
}
