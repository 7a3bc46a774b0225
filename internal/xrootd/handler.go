package xrootd

import (
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cubbit/xrootd4g/internal/content/fs"
	"github.com/cubbit/xrootd4g/internal/telemetry"
	"github.com/cubbit/xrootd4g/internal/wire"
)

// LocalAddr is implemented by connections that can report their own
// address, used by the locate handler. *net.TCPConn satisfies it.
type LocalAddr interface {
	LocalAddr() net.Addr
}

// Handler dispatches decoded requests against a filesystem root, owning
// one FileTable per connection. It is the Go shape of DataServerHandler:
// one instance per accepted connection, created fresh by the server for
// every connection it accepts.
type Handler struct {
	Root         string
	Files        *FileTable
	UseZeroCopy  bool
	MaxFrameSize int
	Metrics      telemetry.Metrics
	Conn         LocalAddr
}

// NewHandler builds a handler with a fresh, empty open-file table.
func NewHandler(root string, useZeroCopy bool, maxFrameSize int, conn LocalAddr) *Handler {
	return &Handler{
		Root:         root,
		Files:        NewFileTable(),
		UseZeroCopy:  useZeroCopy,
		MaxFrameSize: maxFrameSize,
		Metrics:      telemetry.NewMetrics(),
		Conn:         conn,
	}
}

// Close releases every file handle this connection's table still owns,
// e.g. on connection teardown or cancellation.
func (h *Handler) Close() []error {
	return h.Files.CloseAll()
}

// Handle decodes req against its opcode and writes the resulting response
// to w: an ok/error/stat/... frame for most opcodes, or a streamed
// read/readv payload for the two opcodes that produce one. Framing-level
// errors never reach here; a panic inside a per-opcode handler is
// expected to be recovered by the caller (the connection-serve loop), per
// the "any unexpected panic terminates the connection" policy.
func (h *Handler) Handle(w io.Writer, req *wire.Request) error {
	streamID := req.StreamID()
	opcode := strconv.Itoa(int(req.Header.Code))

	h.Metrics.RecordRequestStart(opcode)
	start := time.Now()
	defer func() {
		h.Metrics.RecordRequestEnd(opcode)
	}()

	var err error
	switch req.Header.Code {
	case wire.ReqRead:
		err = h.handleRead(w, streamID, req)
	case wire.ReqReadV:
		err = h.handleReadV(w, streamID, req)
	case wire.ReqWrite:
		err = h.handleWrite(w, streamID, req)
		if err == nil {
			h.Metrics.RecordBytesTransferred("write", int64(len(req.Data)))
		}
	case wire.ReqSync:
		err = h.handleSync(w, streamID, req)
	case wire.ReqClose:
		err = h.handleClose(w, streamID, req)
	default:
		resp, werr := h.dispatch(req)
		if werr != nil {
			err = WriteError(w, streamID, werr)
		} else {
			err = WriteResponse(w, streamID, resp)
		}
	}

	h.Metrics.RecordRequest(opcode, time.Since(start), err)
	return err
}

// dispatch handles every opcode whose result is a single encoded
// Response rather than a streamed payload or an open-file mutation.
func (h *Handler) dispatch(req *wire.Request) (Response, *WireError) {
	switch req.Header.Code {
	case wire.ReqProtocol:
		return protocolResponse(), nil
	case wire.ReqStat:
		return h.doStat(string(req.Data))
	case wire.ReqStatx:
		return h.doStatx(decodeStatx(req.Data))
	case wire.ReqRm:
		return h.doRm(string(req.Data))
	case wire.ReqRmdir:
		return h.doRmdir(string(req.Data))
	case wire.ReqMkdir:
		path, mkpath := decodeMkdir(req.Header.Body, req.Data)
		return h.doMkdir(path, mkpath)
	case wire.ReqMv:
		mv := decodeMv(req.Data)
		return h.doMv(mv.source, mv.target)
	case wire.ReqDirList:
		return h.doDirList(string(req.Data))
	case wire.ReqPrepare:
		return okResponse(), nil
	case wire.ReqOpen:
		open := decodeOpen(req.Header.Body, req.Data)
		return h.doOpen(open.path, open.flags)
	case wire.ReqLocate:
		return h.doLocate(string(req.Data))
	default:
		return Response{}, errArgInvalid("unsupported request code %d", req.Header.Code)
	}
}

func (h *Handler) handleRead(w io.Writer, streamID uint16, req *wire.Request) error {
	r := decodeRead(req.Header.Body)
	file, err := h.Files.Get(r.fd)
	if err != nil {
		return WriteError(w, streamID, errFileNotOpen("invalid file descriptor"))
	}
	if err := WriteReadResponse(w, streamID, file, r.offset, int64(r.length), h.UseZeroCopy, h.MaxFrameSize); err != nil {
		return err
	}
	h.Metrics.RecordBytesTransferred("read", int64(r.length))
	return nil
}

func (h *Handler) handleReadV(w io.Writer, streamID uint16, req *wire.Request) error {
	elements := decodeReadV(req.Data)
	if len(elements) == 0 {
		return WriteError(w, streamID, errArgMissing("request contains no vector"))
	}
	err := WriteReadVResponse(w, streamID, elements, h.Files.Get, h.MaxFrameSize)
	if errors.Is(err, ErrFileNotOpen) {
		return WriteError(w, streamID, errFileNotOpen("invalid file descriptor"))
	}
	return err
}

func (h *Handler) handleWrite(w io.Writer, streamID uint16, req *wire.Request) error {
	wr := decodeWrite(req.Header.Body, req.Data)
	file, err := h.Files.Get(wr.fd)
	if err != nil {
		return WriteError(w, streamID, errFileNotOpen("invalid file descriptor"))
	}
	if _, err := file.WriteAt(wr.data, wr.offset); err != nil {
		return WriteError(w, streamID, asWireError(err))
	}
	return WriteResponse(w, streamID, okResponse())
}

func (h *Handler) handleSync(w io.Writer, streamID uint16, req *wire.Request) error {
	fd := decodeFD(req.Header.Body)
	file, err := h.Files.Get(fd)
	if err != nil {
		return WriteError(w, streamID, errFileNotOpen("invalid file descriptor"))
	}
	if err := file.Sync(); err != nil {
		return WriteError(w, streamID, asWireError(err))
	}
	return WriteResponse(w, streamID, okResponse())
}

func (h *Handler) handleClose(w io.Writer, streamID uint16, req *wire.Request) error {
	fd := decodeFD(req.Header.Body)
	if err := h.Files.Close(fd); err != nil {
		return WriteError(w, streamID, errFileNotOpen("invalid file descriptor"))
	}
	return WriteResponse(w, streamID, okResponse())
}

func (h *Handler) resolve(clientPath string) (string, *WireError) {
	path, err := wire.ResolvePath(h.Root, clientPath)
	if err != nil {
		return "", errArgInvalid("invalid path: %s", clientPath)
	}
	return path, nil
}

func (h *Handler) doStat(clientPath string) (Response, *WireError) {
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}
	info, err := os.Stat(path)
	if err != nil {
		return Response{}, errNotFound("no such file: %s", clientPath)
	}
	return statResponse(statusOf(info)), nil
}

func (h *Handler) doStatx(paths []string) (Response, *WireError) {
	if len(paths) == 0 {
		return Response{}, errArgMissing("no paths specified")
	}

	flags := make([]wire.StatFlag, len(paths))
	for i, p := range paths {
		path, werr := h.resolve(p)
		if werr != nil {
			flags[i] = wire.StatOther
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			flags[i] = wire.StatOther
			continue
		}
		flags[i] = statFlagsOf(info)
	}
	return statxResponse(flags), nil
}

func (h *Handler) doRm(clientPath string) (Response, *WireError) {
	if clientPath == "" {
		return Response{}, errArgMissing("no path specified")
	}
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}

	info, err := os.Stat(path)
	if err != nil {
		return Response{}, errNotFound("no such file: %s", clientPath)
	}
	if info.IsDir() {
		return Response{}, errNotFile("not a file: %s", clientPath)
	}
	if err := os.Remove(path); err != nil {
		return Response{}, errIOError("failed to delete file: %s", clientPath)
	}
	return okResponse(), nil
}

func (h *Handler) doRmdir(clientPath string) (Response, *WireError) {
	if clientPath == "" {
		return Response{}, errArgMissing("no path specified")
	}
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}

	info, err := os.Stat(path)
	if err != nil {
		return Response{}, errNotFound("no such directory: %s", clientPath)
	}
	if !info.IsDir() {
		return Response{}, errIOError("not a directory: %s", clientPath)
	}
	if err := os.Remove(path); err != nil {
		return Response{}, errIOError("failed to delete directory: %s", clientPath)
	}
	return okResponse(), nil
}

func (h *Handler) doMkdir(clientPath string, mkpath bool) (Response, *WireError) {
	if clientPath == "" {
		return Response{}, errArgMissing("no path specified")
	}
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}

	if _, err := os.Stat(path); err == nil {
		return Response{}, errIOError("path exists: %s", clientPath)
	}

	var err error
	if mkpath {
		err = os.MkdirAll(path, 0755)
	} else {
		err = os.Mkdir(path, 0755)
	}
	if err != nil {
		return Response{}, errIOError("failed to create directory: %s", clientPath)
	}
	return okResponse(), nil
}

func (h *Handler) doMv(source, target string) (Response, *WireError) {
	if source == "" {
		return Response{}, errArgMissing("no source path specified")
	}
	if target == "" {
		return Response{}, errArgMissing("no target path specified")
	}

	sourcePath, werr := h.resolve(source)
	if werr != nil {
		return Response{}, werr
	}
	targetPath, werr := h.resolve(target)
	if werr != nil {
		return Response{}, werr
	}

	if _, err := os.Stat(sourcePath); err != nil {
		return Response{}, errNotFound("no such file: %s", source)
	}
	if err := os.Rename(sourcePath, targetPath); err != nil {
		return Response{}, asWireError(err)
	}
	return okResponse(), nil
}

func (h *Handler) doDirList(clientPath string) (Response, *WireError) {
	if clientPath == "" {
		return Response{}, errArgMissing("no source path specified")
	}
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Response{}, errNotFound("no such directory: %s", clientPath)
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return dirListResponse(names), nil
}

func (h *Handler) doOpen(clientPath string, flags wire.OpenFlag) (Response, *WireError) {
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Response{}, errIsDirectory("not a file: %s", clientPath)
	}

	file, err := fs.Open(path, flags)
	if err != nil {
		if os.IsNotExist(err) {
			return Response{}, errNotFound("%v", err)
		}
		return Response{}, asWireError(err)
	}

	var stat *FileStatus
	if flags.Has(wire.OpenRetStat) {
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return Response{}, asWireError(err)
		}
		s := statusOf(info)
		stat = &s
	}

	fd := h.Files.Add(file)
	return openResponse(fd, stat), nil
}

func (h *Handler) doLocate(clientPath string) (Response, *WireError) {
	clientPath = strings.TrimPrefix(clientPath, "*")
	path, werr := h.resolve(clientPath)
	if werr != nil {
		return Response{}, werr
	}

	info, err := os.Stat(path)
	if err != nil {
		return locateEmptyResponse(), nil
	}

	writable := info.Mode().Perm()&0222 != 0
	var addr net.Addr
	if h.Conn != nil {
		addr = h.Conn.LocalAddr()
	}
	return locateResponse(addr, writable), nil
}

