// Package region implements a region ("pool") allocator for request- and
// connection-scoped work.
//
// # Overview
//
// A Pool serves small allocations from a chain of fixed-size blocks with a
// bump pointer, sends oversized requests straight to a system allocator while
// keeping track of them, and runs registered cleanup handlers for resources
// that are not memory, such as open files. Destroy releases all of it at once:
//
//	p, err := region.New(0) // DefaultPoolSize blocks
//	if err != nil {
//		return err
//	}
//	defer p.Destroy()
//
//	buf, err := p.Alloc(256)          // word aligned, from a block
//	name, err := region.CopyString(p, "index.html")
//	big, err := p.Alloc(64 * 1024)    // larger than MaxSmall: tracked large allocation
//	err = p.Free(big)                 // only large allocations can be freed early
//
// # Blocks
//
// Requests up to MaxSmall bytes are carved from blocks. The search starts at
// the pool's current block; a block that has failed to satisfy more than four
// requests is skipped from then on, which keeps allocation cost bounded when
// many blocks are nearly full. When no block fits a new one of the original
// size is appended.
//
// # Cleanups
//
//	f, _ := os.CreateTemp("", "upload-")
//	p.AddDeleteFile(int(f.Fd()), f.Name())
//
// Handlers run at Destroy, most recently registered first. RunCleanupFile
// closes a file early; its entry stays registered and the later run does
// nothing.
//
// # Reset
//
// Reset releases large allocations and rewinds every block, keeping the
// blocks for the next iteration. It does not run or remove cleanups.
//
// # Thread Safety
//
// A Pool is not safe for concurrent use. Use one pool per request or
// connection. Recycler hands out and takes back pools concurrently, and the
// sysmem allocators and Metrics may be shared by all pools.
//
// # Memory
//
// Blocks and large buffers come from a sysmem.Allocator: the Go heap by
// default, or anonymous mappings with sysmem.Mmap. Pool memory is not scanned
// by the garbage collector, so values allocated with Alloc and AllocSlice must
// not hold Go pointers.
package region
