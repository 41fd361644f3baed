package region

import "github.com/sirupsen/logrus"

// Handler releases one resource when its cleanup runs. The set of handlers is
// closed: CloseFile, DeleteFile and HandlerFunc.
type Handler interface {
	release(c *Cleanup, log logrus.FieldLogger)
	kind() string
}

// Cleanup is one entry of a pool's cleanup chain.
type Cleanup struct {
	// Handler runs at Destroy. A nil Handler is skipped.
	Handler Handler

	// Data is inline context carved from the pool when AddCleanup was called
	// with a positive size, nil otherwise.
	Data []byte
}

// HandlerFunc runs arbitrary release logic with the entry's inline data.
// RunCleanups may run it before Destroy runs it again, so it must tolerate
// being called twice when used that way.
type HandlerFunc func(data []byte)

func (f HandlerFunc) release(c *Cleanup, _ logrus.FieldLogger) { f(c.Data) }
func (HandlerFunc) kind() string { return "func" }

// CloseFile closes an open file descriptor. Only the first run closes FD.
type CloseFile struct {
	FD   int
	Name string
	// Log receives close failures. The pool's logger is used when nil.
	Log logrus.FieldLogger

	done bool
}

func (f *CloseFile) release(_ *Cleanup, log logrus.FieldLogger) {
	if f.done {
		return
	}
	f.done = true
	if f.Log != nil {
		log = f.Log
	}
	log = log.WithField("action", "pool_cleanup_file").WithField("fd", f.FD)
	log.Debug("file cleanup")
	if err := closeFD(f.FD); err != nil {
		log.WithField("name", f.Name).WithError(err).Error("close file failed")
	}
}

func (*CloseFile) kind() string { return "close_file" }

// DeleteFile closes an open file descriptor and removes its path, typically
// for temporary files. Only the first run has any effect.
type DeleteFile struct {
	FD   int
	Name string
	// Log receives close and unlink failures. The pool's logger is used when
	// nil.
	Log logrus.FieldLogger

	done bool
}

func (f *DeleteFile) release(_ *Cleanup, log logrus.FieldLogger) {
	if f.done {
		return
	}
	f.done = true
	if f.Log != nil {
		log = f.Log
	}
	log = log.WithField("action", "pool_delete_file").WithField("fd", f.FD).
		WithField("name", f.Name)
	log.Debug("file cleanup")
	if err := removeFile(f.Name); err != nil && !isNotExist(err) {
		log.WithError(err).Error("delete file failed")
	}
	if err := closeFD(f.FD); err != nil {
		log.WithError(err).Error("close file failed")
	}
}

func (*DeleteFile) kind() string { return "delete_file" }

// AddCleanup registers a new cleanup entry at the head of the chain and
// returns it so the caller can set its Handler. When size > 0, size bytes of
// inline context are allocated from the pool and exposed as Data.
func (p *Pool) AddCleanup(size int) (*Cleanup, error) {
	p.panicIfDestroyed()
	c := &Cleanup{}
	if size > 0 {
		data, err := p.Alloc(size)
		if err != nil {
			return nil, err
		}
		c.Data = data
	}
	p.cleanups = append(p.cleanups, c)
	return c, nil
}

// AddCloseFile registers a CloseFile cleanup for fd.
func (p *Pool) AddCloseFile(fd int, name string) (*CloseFile, error) {
	c, err := p.AddCleanup(0)
	if err != nil {
		return nil, err
	}
	h := &CloseFile{FD: fd, Name: name, Log: p.log}
	c.Handler = h
	return h, nil
}

// AddDeleteFile registers a DeleteFile cleanup for fd and name.
func (p *Pool) AddDeleteFile(fd int, name string) (*DeleteFile, error) {
	c, err := p.AddCleanup(0)
	if err != nil {
		return nil, err
	}
	h := &DeleteFile{FD: fd, Name: name, Log: p.log}
	c.Handler = h
	return h, nil
}

// RunCleanupFile closes fd now through every CloseFile entry registered for
// it. The entries stay in the chain; their second run at Destroy is a no-op.
func (p *Pool) RunCleanupFile(fd int) {
	p.RunCleanups(func(c *Cleanup) bool {
		f, ok := c.Handler.(*CloseFile)
		return ok && f.FD == fd
	})
}

// RunCleanups runs, most recently added first, the handler of every entry
// match selects. The entries stay in the chain and run again at Destroy.
func (p *Pool) RunCleanups(match func(*Cleanup) bool) {
	p.panicIfDestroyed()
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		c := p.cleanups[i]
		if c.Handler != nil && match(c) {
			p.runCleanup(c)
		}
	}
}

func (p *Pool) runCleanup(c *Cleanup) {
	if c.Handler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.metrics.failure("cleanup")
			p.log.WithField("action", "pool_cleanup").
				WithField("handler", c.Handler.kind()).
				Errorf("cleanup handler panicked: %v", r)
		}
	}()
	p.metrics.cleanupRun(c.Handler.kind())
	c.Handler.release(c, p.log)
}
