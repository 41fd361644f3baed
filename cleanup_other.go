//go:build !unix

package region

import (
	"errors"
	"io/fs"
	"os"
)

func closeFD(fd int) error { return os.NewFile(uintptr(fd), "").Close() }

func removeFile(name string) error { return os.Remove(name) }

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
