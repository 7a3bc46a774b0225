package xrootd

import "io"

// BackingFile is the minimal random-access file surface the open-file
// table and chunked read responder need. *os.File satisfies it directly;
// internal/content/s3 provides a second implementation so a share can be
// backed by object storage instead of local disk.
type BackingFile interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Truncate changes the file's size, used by the "delete" open flag.
	Truncate(size int64) error

	// Sync flushes the file to stable storage for the sync request.
	Sync() error

	// Name returns the backing path/key, used for logging only.
	Name() string
}

// ZeroCopyFile is implemented by backings that can hand a file region to
// the transport without a user-space buffer copy (component D's
// zero-copy mode). Only a local os.File-backed implementation satisfies
// this; object-storage backings always fall back to copy mode.
type ZeroCopyFile interface {
	BackingFile

	// Region returns the OS file descriptor usable for a sendfile-style
	// handoff, and whether one is available.
	Region() (fd uintptr, ok bool)
}
