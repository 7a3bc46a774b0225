package xrootd

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/cubbit/xrootd4g/internal/wire"
)

// The functions below decode each opcode's request body. This core
// defines its own compact body layout for everything beyond the fixed
// 24-byte header (the header framing is the only part the wire protocol
// actually fixes); fields follow the same big-endian, fixed-width style
// as the header itself.

type openRequest struct {
	path  string
	flags wire.OpenFlag
}

func decodeOpen(body [16]byte, data []byte) openRequest {
	return openRequest{
		path:  string(data),
		flags: wire.OpenFlag(binary.BigEndian.Uint16(body[0:2])),
	}
}

type readRequest struct {
	fd     int
	offset int64
	length int32
}

func decodeRead(body [16]byte) readRequest {
	return readRequest{
		fd:     int(binary.BigEndian.Uint32(body[0:4])),
		offset: int64(binary.BigEndian.Uint64(body[4:12])),
		length: int32(binary.BigEndian.Uint32(body[12:16])),
	}
}

// decodeReadV parses a sequence of 16-byte embedded requests:
// offset(8) | length(4) | fd(4). The embedded response headers that
// WriteReadVResponse writes use a different order: fd(4) | length(4) |
// offset(8).
func decodeReadV(data []byte) []ReadVElement {
	var elements []ReadVElement
	for i := 0; i+16 <= len(data); i += 16 {
		elements = append(elements, ReadVElement{
			Offset: int64(binary.BigEndian.Uint64(data[i : i+8])),
			Length: int32(binary.BigEndian.Uint32(data[i+8 : i+12])),
			FD:     int(binary.BigEndian.Uint32(data[i+12 : i+16])),
		})
	}
	return elements
}

type writeRequest struct {
	fd     int
	offset int64
	data   []byte
}

func decodeWrite(body [16]byte, data []byte) writeRequest {
	return writeRequest{
		fd:     int(binary.BigEndian.Uint32(body[0:4])),
		offset: int64(binary.BigEndian.Uint64(body[4:12])),
		data:   data,
	}
}

func decodeFD(body [16]byte) int {
	return int(binary.BigEndian.Uint32(body[0:4]))
}

// decodeStatx splits the request payload into individual paths, one per
// line — statxResponse returns one flag per path in the same order.
func decodeStatx(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return strings.Split(string(data), "\n")
}

type mvRequest struct {
	source string
	target string
}

// decodeMv splits the payload on the first NUL into source and target
// paths.
func decodeMv(data []byte) mvRequest {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return mvRequest{source: string(data[:i]), target: string(data[i+1:])}
	}
	return mvRequest{source: string(data)}
}

func decodeMkdir(body [16]byte, data []byte) (path string, mkpath bool) {
	return string(data), body[0] != 0
}
