//go:build unix

package region

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openTemp returns a descriptor of its own for a new temporary file.
func openTemp(t *testing.T) (int, string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "region-")
	require.NoError(t, err)
	defer f.Close()

	fd, err := unix.Dup(int(f.Fd()))
	require.NoError(t, err)
	return fd, f.Name()
}

func isOpen(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

func TestRunCleanupFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := New(1024, WithLogger(logger))
	require.NoError(t, err)

	fd, name := openTemp(t)
	_, err = p.AddCloseFile(fd, name)
	require.NoError(t, err)
	require.True(t, isOpen(fd))

	p.RunCleanupFile(fd)
	assert.False(t, isOpen(fd), "descriptor is closed immediately")
	assert.Equal(t, 1, p.NumCleanups())

	// the handler runs again and does nothing
	require.NoError(t, p.Destroy())
	assert.Empty(t, hook.AllEntries())

	_, err = os.Stat(name)
	assert.NoError(t, err, "close never removes the file")
}

func TestRunCleanupFile_OnlyMatchesCloseFile(t *testing.T) {
	p := newTestPool(t, 1024)

	closeFD, closeName := openTemp(t)
	deleteFD, deleteName := openTemp(t)
	_, err := p.AddCloseFile(closeFD, closeName)
	require.NoError(t, err)
	_, err = p.AddDeleteFile(deleteFD, deleteName)
	require.NoError(t, err)

	p.RunCleanupFile(deleteFD)
	assert.True(t, isOpen(deleteFD))
	assert.True(t, isOpen(closeFD))

	require.NoError(t, p.Destroy())
	assert.False(t, isOpen(deleteFD))
	assert.False(t, isOpen(closeFD))
}

func TestDeleteFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := New(1024, WithLogger(logger))
	require.NoError(t, err)

	fd, name := openTemp(t)
	_, err = p.AddDeleteFile(fd, name)
	require.NoError(t, err)

	require.NoError(t, p.Destroy())
	assert.False(t, isOpen(fd))
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, hook.AllEntries())
}

func TestDeleteFile_AlreadyRemoved(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := New(1024, WithLogger(logger))
	require.NoError(t, err)

	fd, name := openTemp(t)
	_, err = p.AddDeleteFile(fd, name)
	require.NoError(t, err)
	require.NoError(t, os.Remove(name))

	require.NoError(t, p.Destroy())
	assert.False(t, isOpen(fd))
	assert.Empty(t, hook.AllEntries(), "a missing file is not reported")
}

func TestCloseFile_FailureLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := New(1024, WithLogger(logger))
	require.NoError(t, err)

	_, err = p.AddCloseFile(-1, "bogus")
	require.NoError(t, err)

	ran := false
	c, err := p.AddCleanup(0)
	require.NoError(t, err)
	c.Handler = HandlerFunc(func([]byte) { ran = true })

	require.NoError(t, p.Destroy())
	assert.True(t, ran)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "close file failed", entry.Message)
	assert.Equal(t, "pool_cleanup_file", entry.Data["action"])
	assert.Equal(t, -1, entry.Data["fd"])
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), unix.EBADF)
}

func TestDeleteFile_LogsEachFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := New(1024, WithLogger(logger))
	require.NoError(t, err)

	// a directory cannot be unlinked and -1 cannot be closed
	h, err := p.AddDeleteFile(-1, t.TempDir())
	require.NoError(t, err)
	h.Log = logger

	require.NoError(t, p.Destroy())
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "delete file failed", entries[0].Message)
	assert.Equal(t, "close file failed", entries[1].Message)
}
