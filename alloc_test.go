package region

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/region/sysmem"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

func TestAlloc_Typed(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	ptr, err := Alloc[int](p)
	require.NoError(t, err)
	assert.Zero(t, *ptr)

	s, err := Alloc[testStruct](p)
	require.NoError(t, err)
	assert.Equal(t, testStruct{}, *s)
	assert.Zero(t, uintptr(unsafe.Pointer(s))%unsafe.Alignof(*s))

	*ptr = 42
	s.a = 100
	assert.Equal(t, 42, *ptr)
	assert.Equal(t, int64(100), s.a)
}

func TestAlloc_ZeroedAfterReset(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	ptr, err := Alloc[int64](p)
	require.NoError(t, err)
	*ptr = -1

	p.Reset()
	again, err := Alloc[int64](p)
	require.NoError(t, err)
	require.Same(t, ptr, again)
	assert.Zero(t, *again)
}

func TestAlloc_ZeroSize(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	v, err := Alloc[struct{}](p)
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Zero(t, p.SizeInUse())
}

func TestAllocSlice(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	s, err := AllocSlice[int](p, 10)
	require.NoError(t, err)
	assert.Len(t, s, 10)
	for i := range s {
		s[i] = i * i
	}
	assert.Equal(t, 81, s[9])

	s, err = AllocSlice[int](p, 0)
	assert.NoError(t, err)
	assert.Nil(t, s)

	// larger than MaxSmall comes from the registry
	big, err := AllocSlice[int64](p, 1024)
	require.NoError(t, err)
	assert.Len(t, big, 1024)
	assert.Equal(t, 1, p.LargeCount())
}

func TestAllocSlice_Overflow(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	tests := []struct {
		name string
		n    int
	}{
		{"wraps to a small count", math.MaxInt/8 + 2},
		{"wraps negative", math.MaxInt/4 + 1},
		{"max int", math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := AllocSlice[int64](p, tt.n)
			assert.ErrorIs(t, err, ErrInvalidSize)
			assert.Nil(t, s)
		})
	}
	assert.Zero(t, p.SizeInUse())
	assert.Zero(t, p.LargeCount())
}

func TestAllocSlice_TooLarge(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	s, err := AllocSlice[int64](p, math.MaxInt/8)
	assert.ErrorIs(t, err, sysmem.ErrOutOfMemory)
	assert.Nil(t, s)
	assert.Zero(t, p.LargeCount())
}

func TestAllocSliceZeroed(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	s, err := AllocSlice[uint32](p, 16)
	require.NoError(t, err)
	for i := range s {
		s[i] = 0xdeadbeef
	}
	p.Reset()

	z, err := AllocSliceZeroed[uint32](p, 16)
	require.NoError(t, err)
	assert.Equal(t, make([]uint32, 16), z)
}

func TestCopyString(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	a, err := CopyString(p, "GET")
	require.NoError(t, err)
	b, err := CopyString(p, "/index.html")
	require.NoError(t, err)
	assert.Equal(t, "GET", a)
	assert.Equal(t, "/index.html", b)
	assert.Equal(t, 3+len("/index.html"), p.SizeInUse(), "strings are packed without padding")

	empty, err := CopyString(p, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCopyBytes(t *testing.T) {
	p := newTestPool(t, 1024)
	defer p.Destroy()

	src := []byte("payload")
	dst, err := CopyBytes(p, src)
	require.NoError(t, err)
	src[0] = 'P'
	assert.Equal(t, []byte("payload"), dst)
}
