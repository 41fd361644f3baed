package region

// SizeInUse returns the number of block bytes handed out, including
// alignment padding. Large allocations are not counted.
func (p *Pool) SizeInUse() int {
	sum := 0
	for _, c := range p.blocks {
		sum += c.cursor
	}
	return sum
}

// NumBlocks returns the number of blocks in the chain.
func (p *Pool) NumBlocks() int {
	return len(p.blocks)
}

// Capacity returns the total capacity (in bytes) of all blocks.
func (p *Pool) Capacity() int {
	sum := 0
	for _, c := range p.blocks {
		sum += len(c.buf)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total block capacity
// (0.0 to 1.0). Returns 0.0 if the pool has no blocks.
func (p *Pool) Utilization() float64 {
	capacity := p.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(p.SizeInUse()) / float64(capacity)
}

// BlockSize returns the capacity of every block in the chain.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// MaxSmall returns the largest request served from blocks.
func (p *Pool) MaxSmall() int {
	return p.maxSmall
}

// LargeCount returns the number of live large allocations.
func (p *Pool) LargeCount() int {
	n := 0
	for _, l := range p.large {
		if l.data != nil {
			n++
		}
	}
	return n
}

// LargeBytes returns the size of all live large allocations.
func (p *Pool) LargeBytes() int {
	n := 0
	for _, l := range p.large {
		n += len(l.data)
	}
	return n
}

// LargeSlots returns the length of the large allocation registry, freed
// slots included.
func (p *Pool) LargeSlots() int {
	return len(p.large)
}

// NumCleanups returns the number of registered cleanup entries.
func (p *Pool) NumCleanups() int {
	return len(p.cleanups)
}

// Stats returns a snapshot of pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		SizeInUse:   p.SizeInUse(),
		Capacity:    p.Capacity(),
		NumBlocks:   p.NumBlocks(),
		BlockSize:   p.BlockSize(),
		MaxSmall:    p.MaxSmall(),
		Utilization: p.Utilization(),
		LargeCount:  p.LargeCount(),
		LargeBytes:  p.LargeBytes(),
		LargeSlots:  p.LargeSlots(),
		NumCleanups: p.NumCleanups(),
	}
}

// PoolStats contains statistical information about a pool.
type PoolStats struct {
	SizeInUse   int     // Block bytes currently allocated
	Capacity    int     // Total block capacity in bytes
	NumBlocks   int     // Number of blocks
	BlockSize   int     // Capacity of each block
	MaxSmall    int     // Largest request served from blocks
	Utilization float64 // Ratio of used to total block capacity (0.0-1.0)
	LargeCount  int     // Live large allocations
	LargeBytes  int     // Bytes held by live large allocations
	LargeSlots  int     // Registry length, freed slots included
	NumCleanups int     // Registered cleanup entries
}
