package region

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestroy_RunsCleanupsNewestFirst(t *testing.T) {
	p := newTestPool(t, 1024)

	const n = 10
	var order []int
	calls := make([]int, n)
	for i := range n {
		c, err := p.AddCleanup(0)
		require.NoError(t, err)
		c.Handler = HandlerFunc(func([]byte) {
			order = append(order, i)
			calls[i]++
		})
	}
	require.Equal(t, n, p.NumCleanups())

	require.NoError(t, p.Destroy())
	for i := range n {
		assert.Equal(t, 1, calls[i], "handler %d", i)
		assert.Equal(t, n-1-i, order[i])
	}
}

func TestAddCleanup_InlineData(t *testing.T) {
	p := newTestPool(t, 1024)

	c, err := p.AddCleanup(16)
	require.NoError(t, err)
	require.Len(t, c.Data, 16)
	assert.Equal(t, 0, owner(p, c.Data), "inline context comes from the block chain")
	copy(c.Data, "connection-42")

	var got string
	c.Handler = HandlerFunc(func(data []byte) { got = string(data[:13]) })

	require.NoError(t, p.Destroy())
	assert.Equal(t, "connection-42", got)
}

func TestAddCleanup_NilHandlerSkipped(t *testing.T) {
	p := newTestPool(t, 1024)

	_, err := p.AddCleanup(0)
	require.NoError(t, err)
	assert.NoError(t, p.Destroy())
}

func TestDestroy_RecoversHandlerPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := New(1024, WithLogger(logger))
	require.NoError(t, err)

	ran := false
	c, err := p.AddCleanup(0)
	require.NoError(t, err)
	c.Handler = HandlerFunc(func([]byte) { ran = true })

	c, err = p.AddCleanup(0)
	require.NoError(t, err)
	c.Handler = HandlerFunc(func([]byte) { panic("boom") })

	require.NoError(t, p.Destroy())
	assert.True(t, ran, "older handlers still run")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "pool_cleanup", entry.Data["action"])
	assert.Contains(t, entry.Message, "boom")
}

func TestRunCleanups(t *testing.T) {
	p := newTestPool(t, 1024)

	calls := map[string]int{}
	for _, name := range []string{"a", "b", "a"} {
		c, err := p.AddCleanup(0)
		require.NoError(t, err)
		c.Handler = HandlerFunc(func([]byte) { calls[name]++ })
	}

	matched := 0
	p.RunCleanups(func(c *Cleanup) bool {
		matched++
		return matched != 2
	})
	assert.Equal(t, map[string]int{"a": 2}, calls)
	assert.Equal(t, 3, p.NumCleanups(), "entries stay registered")

	require.NoError(t, p.Destroy())
	assert.Equal(t, map[string]int{"a": 4, "b": 1}, calls)
}
