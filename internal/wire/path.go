package wire

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrPathInvalid is returned when a client path cannot be normalized to a
// canonical path under the configured root (e.g. a ".." escape).
var ErrPathInvalid = errors.New("wire: invalid path")

// ResolvePath normalizes clientPath textually — collapsing "." and ".."
// segments without touching the filesystem — and joins it to root. It
// never consults the filesystem for existence; that is the caller's job.
func ResolvePath(root, clientPath string) (string, error) {
	normalized, err := normalize(clientPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, normalized), nil
}

// normalize collapses "." and ".." segments of a slash-separated path
// purely textually, the way FilenameUtils.normalize does in the reference
// implementation: a ".." is only valid if there is a preceding real
// segment to cancel; a ".." with nothing to cancel means the path would
// escape above the root, and that is rejected rather than silently
// clamped.
func normalize(p string) (string, error) {
	segments := strings.Split(strings.ReplaceAll(p, "\\", "/"), "/")

	var stack []string
	for _, seg := range segments {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if len(stack) == 0 {
				return "", ErrPathInvalid
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}

	return "/" + strings.Join(stack, "/"), nil
}
