package xrootd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/cubbit/xrootd4g/internal/wire"
)

// MaxFrameSize is the default cap on a single read/readv response frame's
// payload, per spec §4.4. Configurable via config.ServerConfig.
const MaxFrameSize = 2 << 20 // 2 MiB

// ReaderFrom is satisfied by transports (e.g. *net.TCPConn) that can hand
// a file off to the kernel for a zero-copy send. Component D's zero-copy
// mode is taken only when the config flag is set, the writer has this
// capability, and the backing file is a ZeroCopyFile.
type ReaderFrom interface {
	ReadFrom(io.Reader) (int64, error)
}

// WriteReadResponse streams the response to a single read(fd, offset, len)
// request. If useZeroCopy is true, file implements ZeroCopyFile and w
// implements ReaderFrom, a single ok frame is written (header only)
// followed by handing the file region to w.ReadFrom, which a *net.TCPConn
// implements via sendfile without a user-space buffer copy. Otherwise the
// payload is streamed in bounded MaxFrameSize chunks, all but the last
// marked oksofar.
func WriteReadResponse(w io.Writer, streamID uint16, file BackingFile, offset, length int64, useZeroCopy bool, frameSize int) error {
	if frameSize <= 0 {
		frameSize = MaxFrameSize
	}

	section := io.NewSectionReader(file, offset, length)

	if _, local := file.(ZeroCopyFile); useZeroCopy && local {
		if rf, ok := w.(ReaderFrom); ok {
			if _, err := w.Write(okHeader(streamID, length)); err != nil {
				return err
			}
			_, err := rf.ReadFrom(section)
			return err
		}
	}

	return streamFrames(w, streamID, section, frameSize)
}

func okHeader(streamID uint16, length int64) []byte {
	return wire.EncodeHeader(wire.ResponseHeader{StreamID: streamID, Status: wire.StOk, DataLen: uint32(length)})
}

// ReadVElement is one embedded request of a readv: read length bytes at
// offset from the file identified by fd.
type ReadVElement struct {
	FD     int
	Offset int64
	Length int32
}

// FileLookup resolves a descriptor to its backing file, e.g.
// (*FileTable).Get.
type FileLookup func(fd int) (BackingFile, error)

// ErrEmptyReadV is returned when a readv request carries no elements.
var ErrEmptyReadV = errors.New("xrootd: readv request contains no elements")

// WriteReadVResponse streams the response to a readv request. Every
// element's fd is validated before any frame is written — if any fd
// fails to resolve, the caller should turn that into a FileNotOpen error
// response instead of calling this function, since the whole response
// must then be an error frame (spec §4.4).
func WriteReadVResponse(w io.Writer, streamID uint16, elements []ReadVElement, lookup FileLookup, frameSize int) error {
	if len(elements) == 0 {
		return ErrEmptyReadV
	}
	if frameSize <= 0 {
		frameSize = MaxFrameSize
	}

	readers := make([]io.Reader, 0, len(elements)*2)
	for _, e := range elements {
		file, err := lookup(e.FD)
		if err != nil {
			return err
		}

		header := make([]byte, 16)
		binary.BigEndian.PutUint32(header[0:4], uint32(e.FD))
		binary.BigEndian.PutUint32(header[4:8], uint32(e.Length))
		binary.BigEndian.PutUint64(header[8:16], uint64(e.Offset))

		readers = append(readers, bytes.NewReader(header))
		readers = append(readers, io.NewSectionReader(file, e.Offset, int64(e.Length)))
	}

	return streamFrames(w, streamID, io.MultiReader(readers...), frameSize)
}

// streamFrames drains r into frames of at most frameSize bytes, writing
// each as oksofar except the final frame (possibly empty), written as ok.
// A read of 0 total bytes still produces exactly one ok frame with an
// empty payload (spec §8 boundary case).
func streamFrames(w io.Writer, streamID uint16, r io.Reader, frameSize int) error {
	buf := make([]byte, frameSize)

	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return err
		}

		if n < frameSize {
			// Short read: this is definitely the last chunk.
			_, werr := w.Write(frameHeader(streamID, false, int32(n)))
			if werr != nil {
				return werr
			}
			if n > 0 {
				if _, werr := w.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			return nil
		}

		// Exactly filled the buffer. Peek one more byte to learn whether
		// this chunk is actually the last one, without losing data.
		var peek [1]byte
		pn, perr := r.Read(peek[:])
		if pn == 0 {
			// Stream ends exactly on a frame boundary: this chunk is last.
			if _, werr := w.Write(frameHeader(streamID, false, int32(n))); werr != nil {
				return werr
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if perr != nil && perr != io.EOF {
				return perr
			}
			return nil
		}

		if _, werr := w.Write(frameHeader(streamID, true, int32(n))); werr != nil {
			return werr
		}
		if _, werr := w.Write(buf[:n]); werr != nil {
			return werr
		}

		r = io.MultiReader(bytes.NewReader(peek[:pn]), r)
	}
}

func frameHeader(streamID uint16, more bool, length int32) []byte {
	status := wire.StOk
	if more {
		status = wire.StOkSoFar
	}
	return wire.EncodeHeader(wire.ResponseHeader{StreamID: streamID, Status: status, DataLen: uint32(length)})
}
