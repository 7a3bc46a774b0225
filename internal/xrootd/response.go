package xrootd

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/cubbit/xrootd4g/internal/wire"
)

// Response is the tagged result of dispatching one request: exactly one
// of the Write* functions below is responsible for turning it into wire
// bytes. A streaming response (Read/ReadV) carries no payload here — the
// handler writes its frames directly, since it needs the file handle and
// the connection's zero-copy/frame-size settings to do so.
type Response struct {
	kind responseKind

	// Ok carries no data.
	stat   *FileStatus
	statx  []wire.StatFlag
	names  []string
	fd     int
	locate *locateInfo
	server wire.ServerKind
}

type responseKind int

const (
	kindOk responseKind = iota
	kindStat
	kindStatx
	kindDirList
	kindOpen
	kindLocate
	kindProtocol
)

type locateInfo struct {
	addr     net.Addr
	writable bool
}

func okResponse() Response               { return Response{kind: kindOk} }
func statResponse(s FileStatus) Response { return Response{kind: kindStat, stat: &s} }
func statxResponse(flags []wire.StatFlag) Response {
	return Response{kind: kindStatx, statx: flags}
}
func dirListResponse(names []string) Response { return Response{kind: kindDirList, names: names} }
func openResponse(fd int, stat *FileStatus) Response {
	return Response{kind: kindOpen, fd: fd, stat: stat}
}
func protocolResponse() Response    { return Response{kind: kindProtocol, server: wire.DataServer} }
func locateEmptyResponse() Response { return Response{kind: kindLocate} }
func locateResponse(addr net.Addr, writable bool) Response {
	return Response{kind: kindLocate, locate: &locateInfo{addr: addr, writable: writable}}
}

// WriteResponse encodes a non-streaming Response as a single ok frame. The
// body layouts below are this core's own wire convention for each
// response kind; the framing (header, status, dlen) is the one fixed by
// the protocol.
func WriteResponse(w io.Writer, streamID uint16, resp Response) error {
	var body []byte

	switch resp.kind {
	case kindOk:
		body = nil

	case kindStat:
		body = make([]byte, 24)
		binary.BigEndian.PutUint64(body[0:8], resp.stat.ID)
		binary.BigEndian.PutUint64(body[8:16], uint64(resp.stat.Length))
		binary.BigEndian.PutUint32(body[16:20], uint32(resp.stat.Flags))
		binary.BigEndian.PutUint32(body[20:24], uint32(resp.stat.ModTime))

	case kindStatx:
		body = make([]byte, len(resp.statx))
		for i, f := range resp.statx {
			body[i] = byte(f)
		}

	case kindDirList:
		for i, n := range resp.names {
			if i > 0 {
				body = append(body, '\n')
			}
			body = append(body, n...)
		}

	case kindOpen:
		body = make([]byte, 4)
		binary.BigEndian.PutUint32(body, uint32(resp.fd))
		if resp.stat != nil {
			statBody := make([]byte, 24)
			binary.BigEndian.PutUint64(statBody[0:8], resp.stat.ID)
			binary.BigEndian.PutUint64(statBody[8:16], uint64(resp.stat.Length))
			binary.BigEndian.PutUint32(statBody[16:20], uint32(resp.stat.Flags))
			binary.BigEndian.PutUint32(statBody[20:24], uint32(resp.stat.ModTime))
			body = append(body, statBody...)
		}

	case kindLocate:
		if resp.locate != nil {
			access := "r"
			if resp.locate.writable {
				access = "w"
			}
			host := "localhost"
			if resp.locate.addr != nil {
				host = resp.locate.addr.String()
			}
			body = []byte(host + " " + access)
		}

	case kindProtocol:
		body = make([]byte, 4)
		binary.BigEndian.PutUint32(body, uint32(resp.server))
	}

	_, err := w.Write(wire.EncodeOkFrame(streamID, body))
	return err
}

// WriteError encodes a WireError as a single error frame.
func WriteError(w io.Writer, streamID uint16, werr *WireError) error {
	_, err := w.Write(wire.EncodeErrorFrame(streamID, werr.Code, werr.Message))
	return err
}
