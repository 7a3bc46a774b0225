package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Codec decodes one xrootd request per ReadRequest call and enforces the
// configured body-size cap. It holds no per-connection state beyond the
// cap, so it is safe to share across connections.
type Codec struct {
	// MaxBodySize bounds dlen; a request whose body exceeds this fails
	// with ErrBadLength rather than allocating an attacker-controlled
	// buffer size.
	MaxBodySize int32
}

// NewCodec returns a Codec enforcing maxBodySize (spec §6's max_body_size).
func NewCodec(maxBodySize int32) *Codec {
	return &Codec{MaxBodySize: maxBodySize}
}

// ReadRequest consumes exactly one frame from r: a 24-byte header followed
// by dlen bytes of body. It fails with ErrShortFrame if the stream ends
// mid-header or mid-body, and ErrBadLength if dlen is negative or exceeds
// the configured cap.
func (c *Codec) ReadRequest(r io.Reader) (*Request, error) {
	var hdr [RequestHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
	}

	header := RequestHeader{
		StreamID: binary.BigEndian.Uint16(hdr[0:2]),
		Code:     RequestCode(binary.BigEndian.Uint16(hdr[2:4])),
		DataLen:  int32(binary.BigEndian.Uint32(hdr[20:24])),
	}
	copy(header.Body[:], hdr[4:20])

	if header.DataLen < 0 || (c.MaxBodySize > 0 && header.DataLen > c.MaxBodySize) {
		return nil, ErrBadLength
	}

	data := make([]byte, header.DataLen)
	if header.DataLen > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
		}
	}

	return &Request{Header: header, Data: data}, nil
}
