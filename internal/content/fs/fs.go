// Package fs backs the open-file table's BackingFile interface with the
// local filesystem. Unlike internal/content/s3, it also implements
// ZeroCopyFile: a local os.File has a real descriptor a sendfile-style
// transport can hand off directly.
package fs

import (
	"os"
	"strings"

	"github.com/cubbit/xrootd4g/internal/wire"
)

// File wraps *os.File to additionally expose the file descriptor needed
// for the zero-copy transport path.
type File struct {
	*os.File
}

// Open resolves flags the same way the xrootd open request encodes them
// (read/write, create-new, create-path, truncate-on-open) against an
// already-resolved absolute path and returns a ready BackingFile.
func Open(path string, flags wire.OpenFlag) (*File, error) {
	if flags.Has(wire.OpenReadWrite) && flags.Has(wire.OpenMkPath) {
		if err := os.MkdirAll(parentOf(path), 0755); err != nil {
			return nil, err
		}
	}
	if flags.Has(wire.OpenReadWrite) && flags.Has(wire.OpenNew) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	var (
		osFile *os.File
		err    error
	)
	if flags.Has(wire.OpenReadWrite) {
		osFile, err = os.OpenFile(path, os.O_RDWR, 0644)
	} else {
		osFile, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}

	if flags.Has(wire.OpenReadWrite) && flags.Has(wire.OpenDelete) {
		if err := osFile.Truncate(0); err != nil {
			osFile.Close()
			return nil, err
		}
	}

	return &File{File: osFile}, nil
}

func parentOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

// Region returns the OS file descriptor for a sendfile-style handoff.
func (f *File) Region() (uintptr, bool) {
	return f.Fd(), true
}
