package wire

// ResponseHeader is the fixed 8-byte preamble of every xrootd response
// frame: stream_id(2) | status(2) | dlen(4).
type ResponseHeader struct {
	StreamID uint16
	Status   ResponseStatus
	DataLen  uint32
}

const ResponseHeaderSize = 8

// EncodeHeader serializes a response header in big-endian wire order.
func EncodeHeader(h ResponseHeader) []byte {
	buf := make([]byte, ResponseHeaderSize)
	putUint16(buf[0:2], h.StreamID)
	putUint16(buf[2:4], uint16(h.Status))
	putUint32(buf[4:8], h.DataLen)
	return buf
}

// EncodeOkFrame builds a complete "ok" frame with the given payload.
func EncodeOkFrame(streamID uint16, payload []byte) []byte {
	return encodeFrame(streamID, StOk, payload)
}

// EncodeOkSoFarFrame builds an intermediate chunked-response frame.
func EncodeOkSoFarFrame(streamID uint16, payload []byte) []byte {
	return encodeFrame(streamID, StOkSoFar, payload)
}

func encodeFrame(streamID uint16, status ResponseStatus, payload []byte) []byte {
	out := make([]byte, ResponseHeaderSize+len(payload))
	copy(out, EncodeHeader(ResponseHeader{StreamID: streamID, Status: status, DataLen: uint32(len(payload))}))
	copy(out[ResponseHeaderSize:], payload)
	return out
}

// EncodeErrorFrame builds an "error" frame. The body is
// errcode(4) | UTF-8 message | NUL, per spec §4.1.
func EncodeErrorFrame(streamID uint16, code ErrorCode, message string) []byte {
	body := make([]byte, 4+len(message)+1)
	putUint32(body[0:4], uint32(code))
	copy(body[4:], message)
	body[len(body)-1] = 0
	return encodeFrame(streamID, StError, body)
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
