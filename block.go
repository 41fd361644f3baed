package region

import (
	"github.com/pkg/errors"
)

// maxBlockFailures is how many requests a block may fail before searches
// start past it.
const maxBlockFailures = 4

// block is one node of the block chain.
type block struct {
	buf    []byte // backing memory from the system allocator
	cursor int    // next free byte within buf
	failed int    // requests this block could not satisfy
}

// Alloc returns n bytes aligned to the platform word size. Requests larger
// than MaxSmall are served by the system allocator and tracked until Free,
// Reset or Destroy. Returns nil if n == 0.
func (p *Pool) Alloc(n int) ([]byte, error) {
	return p.alloc(n, true)
}

// AllocUnaligned is Alloc without alignment, for byte-oriented data such as
// strings.
func (p *Pool) AllocUnaligned(n int) ([]byte, error) {
	return p.alloc(n, false)
}

// AllocZeroed is Alloc followed by clearing the returned bytes.
func (p *Pool) AllocZeroed(n int) ([]byte, error) {
	b, err := p.alloc(n, true)
	if err != nil {
		return nil, err
	}
	clear(b)
	return b, nil
}

func (p *Pool) alloc(n int, aligned bool) ([]byte, error) {
	p.panicIfDestroyed()
	switch {
	case n < 0:
		return nil, errors.Wrapf(ErrInvalidSize, "size %d", n)
	case n == 0:
		return nil, nil
	case n > p.maxSmall:
		return p.allocLarge(n, wordSize, pathLarge)
	}
	return p.allocSmall(n, aligned)
}

func (p *Pool) allocSmall(n int, aligned bool) ([]byte, error) {
	for i := p.current; i < len(p.blocks); i++ {
		c := &p.blocks[i]
		off := c.cursor
		if aligned {
			off = alignUp(off, wordSize)
		}
		if off+n <= len(c.buf) {
			c.cursor = off + n
			p.metrics.allocated(pathSmall, n)
			return c.buf[off : off+n : off+n], nil
		}
		c.failed++
		if c.failed > maxBlockFailures {
			p.current = i + 1
		}
	}
	return p.allocBlock(n)
}

// allocBlock appends a new block to the chain and serves n bytes from its
// start, which the system allocator aligns.
func (p *Pool) allocBlock(n int) ([]byte, error) {
	buf, err := p.sys.Acquire(p.blockSize, wordSize)
	if err != nil {
		p.clampCurrent()
		p.metrics.failure("block")
		p.log.WithField("action", "pool_alloc").WithField("size", p.blockSize).
			WithError(err).Error("cannot acquire block")
		return nil, errors.Wrapf(err, "grow pool by %d bytes", p.blockSize)
	}
	p.blocks = append(p.blocks, block{buf: buf, cursor: n})
	p.metrics.blockAcquired()
	p.metrics.allocated(pathSmall, n)
	p.log.WithField("action", "pool_alloc").WithField("blocks", len(p.blocks)).
		Debug("pool grown")
	return buf[:n:n], nil
}

// clampCurrent keeps current on a block after a failed growth moved it past
// the tail.
func (p *Pool) clampCurrent() {
	if p.current >= len(p.blocks) {
		p.current = len(p.blocks) - 1
	}
}
