//go:build unix

package region

import (
	"errors"

	"golang.org/x/sys/unix"
)

func closeFD(fd int) error { return unix.Close(fd) }

func removeFile(name string) error { return unix.Unlink(name) }

func isNotExist(err error) bool { return errors.Is(err, unix.ENOENT) }
