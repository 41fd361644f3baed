package region

import (
	"os"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pavanmanishd/region/sysmem"
)

const (
	// DefaultPoolSize is used when New is called with a non-positive size.
	DefaultPoolSize = 16 * 1024

	// MinPoolSize is the smallest block size a pool will use.
	MinPoolSize = 128

	// poolOverhead is the part of the first block reserved for control data.
	// Descriptors live on the Go heap, so the whole block is usable.
	poolOverhead = 0
)

var maxAllocFromPool = os.Getpagesize() - 1

// MaxAllocFromPool returns the largest request any pool serves from blocks.
// Anything larger goes straight to the system allocator.
func MaxAllocFromPool() int { return maxAllocFromPool }

const wordSize = sysmem.WordSize

// Pool is a region allocator owning a chain of blocks, a registry of large
// allocations and a chain of cleanup handlers. Everything is released by a
// single Destroy.
//
// A Pool is not safe for concurrent use. Give each request or connection its
// own pool, or serialize access externally.
type Pool struct {
	blocks    []block
	blockSize int
	maxSmall  int
	current   int

	large    []largeAlloc
	cleanups []*Cleanup

	log     logrus.FieldLogger
	sys     sysmem.Allocator
	metrics *Metrics

	ext       any
	destroyed bool
}

type options struct {
	log     logrus.FieldLogger
	sys     sysmem.Allocator
	metrics *Metrics
}

// Option configures a Pool.
type Option func(*options)

// WithLogger sets the diagnostics sink. Defaults to logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithAllocator sets the system allocator blocks and large buffers come from.
// Defaults to sysmem.Heap.
func WithAllocator(sys sysmem.Allocator) Option {
	return func(o *options) { o.sys = sys }
}

// WithMetrics records pool activity in m. m may be shared by many pools.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a pool whose blocks are size bytes. If size <= 0,
// DefaultPoolSize is used; sizes below MinPoolSize are raised to it.
func New(size int, opts ...Option) (*Pool, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}
	if o.sys == nil {
		o.sys = sysmem.Heap{}
	}

	switch {
	case size <= 0:
		size = DefaultPoolSize
	case size < MinPoolSize:
		size = MinPoolSize
	}
	size = alignUp(size, wordSize)

	buf, err := o.sys.Acquire(size, wordSize)
	if err != nil {
		o.metrics.failure("create")
		o.log.WithField("action", "pool_create").WithField("size", size).
			WithError(err).Error("cannot acquire first block")
		return nil, errors.Wrapf(err, "create pool of %d bytes", size)
	}
	o.metrics.blockAcquired()

	p := &Pool{
		blocks:    []block{{buf: buf}},
		blockSize: size,
		maxSmall:  min(size-poolOverhead, maxAllocFromPool),
		log:       o.log,
		sys:       o.sys,
		metrics:   o.metrics,
	}
	p.log.WithField("action", "pool_create").WithField("size", size).
		Debug("pool created")
	return p, nil
}

// Destroy runs every cleanup handler, most recently added first, then releases
// all large allocations and all blocks. Errors from the system allocator are
// collected and returned; they never stop the teardown. The pool and every
// buffer obtained from it must not be used afterwards.
func (p *Pool) Destroy() error {
	p.panicIfDestroyed()

	for i := len(p.cleanups) - 1; i >= 0; i-- {
		p.runCleanup(p.cleanups[i])
	}
	p.cleanups = nil

	var result *multierror.Error
	for i := range p.large {
		if p.large[i].data == nil {
			continue
		}
		if err := p.sys.Release(p.large[i].data); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "release large allocation"))
		}
	}
	p.large = nil

	for i := range p.blocks {
		if err := p.sys.Release(p.blocks[i].buf); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "release block %d", i))
		}
	}
	p.blocks = nil
	p.current = 0
	p.destroyed = true

	p.metrics.destroyed()
	err := result.ErrorOrNil()
	if err != nil {
		p.log.WithField("action", "pool_destroy").WithError(err).
			Error("releasing pool memory")
	} else {
		p.log.WithField("action", "pool_destroy").Debug("pool destroyed")
	}
	return err
}

// Reset releases all large allocations and rewinds every block so the pool can
// be reused. Cleanup handlers are neither run nor removed: they fire at the
// next Destroy, so resources whose lifetime must not span a reset have to be
// released by the caller beforehand.
func (p *Pool) Reset() {
	p.panicIfDestroyed()

	for i := range p.large {
		if p.large[i].data == nil {
			continue
		}
		if err := p.sys.Release(p.large[i].data); err != nil {
			p.log.WithField("action", "pool_reset").WithError(err).
				Error("cannot release large allocation")
		}
	}
	p.large = nil

	for i := range p.blocks {
		p.blocks[i].cursor = 0
		p.blocks[i].failed = 0
	}
	p.current = 0
	p.metrics.reset()
}

// Free releases b if it is a large allocation of this pool and keeps its slot
// for reuse. b matches by its first byte, so any reslice starting there,
// b[:0] included, frees the allocation. It returns ErrNotFound otherwise,
// including for every small allocation and for nil.
func (p *Pool) Free(b []byte) error {
	p.panicIfDestroyed()
	return p.freeLarge(b)
}

// SetExtension stores v in the pool's extension slot. The pool never
// interprets it.
func (p *Pool) SetExtension(v any) { p.ext = v }

// Extension returns the value stored by SetExtension.
func (p *Pool) Extension() any { return p.ext }

// ExtensionOf returns the extension slot as a T.
func ExtensionOf[T any](p *Pool) (T, bool) {
	v, ok := p.ext.(T)
	return v, ok
}

func (p *Pool) panicIfDestroyed() {
	if p.destroyed {
		panic(useAfterDestroy)
	}
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// dataPtr identifies an allocation by its first byte.
func dataPtr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}
