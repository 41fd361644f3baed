package region

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/hashicorp/go-multierror"
)

// Recycler keeps reset pools for reuse across requests. It is safe for
// concurrent use; the pools it hands out are not, and belong to one caller
// between Get and Put.
type Recycler struct {
	mu   sync.Mutex
	idle *queue.Queue
	max  int
	size int
	opts []Option
}

// NewRecycler creates a recycler of pools with blocks of size bytes, keeping
// at most idle pools around.
func NewRecycler(size, idle int, opts ...Option) *Recycler {
	return &Recycler{
		idle: queue.New(),
		max:  idle,
		size: size,
		opts: opts,
	}
}

// Get returns an idle pool, or a new one when none is left.
func (r *Recycler) Get() (*Pool, error) {
	r.mu.Lock()
	if r.idle.Length() > 0 {
		p := r.idle.Remove().(*Pool)
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()
	return New(r.size, r.opts...)
}

// Put hands p back. Pools with registered cleanups are destroyed, since a
// reset would leave their resources open; so are pools arriving while the
// idle queue is full. Every other pool is reset and kept.
func (r *Recycler) Put(p *Pool) error {
	if p.NumCleanups() > 0 {
		return p.Destroy()
	}

	r.mu.Lock()
	if r.idle.Length() >= r.max {
		r.mu.Unlock()
		return p.Destroy()
	}
	p.Reset()
	r.idle.Add(p)
	r.mu.Unlock()
	return nil
}

// Len returns the number of idle pools.
func (r *Recycler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idle.Length()
}

// Close destroys every idle pool.
func (r *Recycler) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	for r.idle.Length() > 0 {
		if err := r.idle.Remove().(*Pool).Destroy(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
