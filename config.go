package region

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/pavanmanishd/region/sysmem"
)

// Allocator names accepted by Config.Allocator.
const (
	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"

	// DefaultIdlePools is the default Recycler capacity.
	DefaultIdlePools = 64
)

// Config describes how pools are sized and where their memory comes from.
//
//	pool_size: 16384
//	allocator: mmap
//	memory_limit: 67108864
//	idle_pools: 32
type Config struct {
	PoolSize    int    `yaml:"pool_size"`
	Allocator   string `yaml:"allocator"`
	MemoryLimit int    `yaml:"memory_limit"`
	IdlePools   int    `yaml:"idle_pools"`
}

// ParseConfig decodes a YAML config, applies defaults and validates it.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "parse pool config")
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.PoolSize == 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.Allocator == "" {
		c.Allocator = AllocatorHeap
	}
	if c.IdlePools == 0 {
		c.IdlePools = DefaultIdlePools
	}
}

// Validate rejects negative sizes and unknown allocator names.
func (c Config) Validate() error {
	if c.PoolSize < 0 {
		return errors.Errorf("pool_size must not be negative, got %d", c.PoolSize)
	}
	if c.MemoryLimit < 0 {
		return errors.Errorf("memory_limit must not be negative, got %d", c.MemoryLimit)
	}
	if c.IdlePools < 0 {
		return errors.Errorf("idle_pools must not be negative, got %d", c.IdlePools)
	}
	switch c.Allocator {
	case AllocatorHeap, AllocatorMmap:
	default:
		return errors.Errorf("unknown allocator %q", c.Allocator)
	}
	return nil
}

// SystemAllocator builds the allocator the config describes. A memory limit
// wraps the base allocator, so the returned value must be shared by every pool
// the limit applies to.
func (c Config) SystemAllocator() sysmem.Allocator {
	var sys sysmem.Allocator = sysmem.Heap{}
	if c.Allocator == AllocatorMmap {
		sys = sysmem.NewMmap()
	}
	if c.MemoryLimit > 0 {
		sys = sysmem.NewLimit(sys, c.MemoryLimit)
	}
	return sys
}

// Options returns the pool options for c. Later opts override them.
func (c Config) Options(opts ...Option) []Option {
	return append([]Option{WithAllocator(c.SystemAllocator())}, opts...)
}

// NewRecycler builds a Recycler from the config.
func (c Config) NewRecycler(opts ...Option) *Recycler {
	return NewRecycler(c.PoolSize, c.IdlePools, c.Options(opts...)...)
}
