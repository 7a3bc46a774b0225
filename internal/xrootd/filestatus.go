package xrootd

import (
	"os"

	"github.com/cubbit/xrootd4g/internal/wire"
)

// FileStatus mirrors the reference FileStatus(id, length, flags, mtime):
// id is always 0 in this core (no per-file generation counter).
type FileStatus struct {
	ID      uint64
	Length  int64
	Flags   wire.StatFlag
	ModTime int64 // seconds since epoch
}

// statFlagsOf computes the StatFlag bitmask for an os.FileInfo the way
// getFileStatusFlagsOf does: isDir, other (neither regular file nor
// directory), xset/readable/writable from the Unix permission bits.
func statFlagsOf(info os.FileInfo) wire.StatFlag {
	var flags wire.StatFlag
	mode := info.Mode()

	if info.IsDir() {
		flags |= wire.StatIsDir
	} else if !mode.IsRegular() {
		flags |= wire.StatOther
	}

	perm := mode.Perm()
	if perm&0111 != 0 {
		flags |= wire.StatXSet
	}
	if perm&0444 != 0 {
		flags |= wire.StatReadable
	}
	if perm&0222 != 0 {
		flags |= wire.StatWritable
	}
	return flags
}

func statusOf(info os.FileInfo) FileStatus {
	length := info.Size()
	if info.IsDir() {
		length = 0
	}
	return FileStatus{
		ID:      0,
		Length:  length,
		Flags:   statFlagsOf(info),
		ModTime: info.ModTime().Unix(),
	}
}
