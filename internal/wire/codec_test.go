package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecReadRequest(t *testing.T) {
	codec := NewCodec(1 << 20)

	t.Run("round trip", func(t *testing.T) {
		var buf bytes.Buffer
		hdr := make([]byte, RequestHeaderSize)
		hdr[0], hdr[1] = 0x00, 0x2a // stream id
		hdr[2], hdr[3] = 0x0b, 0xba // request code (3002)
		hdr[23] = 5                 // dlen
		buf.Write(hdr)
		buf.WriteString("hello")

		req, err := codec.ReadRequest(&buf)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x2a), req.StreamID())
		assert.Equal(t, []byte("hello"), req.Data)
	})

	t.Run("short header", func(t *testing.T) {
		buf := bytes.NewReader(make([]byte, 10))
		_, err := codec.ReadRequest(buf)
		assert.ErrorIs(t, err, ErrShortFrame)
	})

	t.Run("short body", func(t *testing.T) {
		hdr := make([]byte, RequestHeaderSize)
		hdr[23] = 10 // dlen = 10 but no body follows
		_, err := codec.ReadRequest(bytes.NewReader(hdr))
		assert.ErrorIs(t, err, ErrShortFrame)
	})

	t.Run("dlen exceeds cap", func(t *testing.T) {
		small := NewCodec(4)
		hdr := make([]byte, RequestHeaderSize)
		hdr[23] = 5
		_, err := small.ReadRequest(bytes.NewReader(hdr))
		assert.ErrorIs(t, err, ErrBadLength)
	})

	t.Run("zero length body", func(t *testing.T) {
		hdr := make([]byte, RequestHeaderSize)
		req, err := codec.ReadRequest(bytes.NewReader(hdr))
		require.NoError(t, err)
		assert.Empty(t, req.Data)
	})
}

func TestEncodeFrames(t *testing.T) {
	ok := EncodeOkFrame(7, []byte("abc"))
	assert.Equal(t, []byte{0, 7, byte(StOk >> 8), byte(StOk), 0, 0, 0, 3, 'a', 'b', 'c'}, ok)

	soFar := EncodeOkSoFarFrame(7, nil)
	assert.Equal(t, []byte{0, 7, byte(StOkSoFar >> 8), byte(StOkSoFar), 0, 0, 0, 0}, soFar)

	errFrame := EncodeErrorFrame(1, ErrNotFound, "nope")
	assert.Equal(t, ResponseHeaderSize+4+4+1, len(errFrame))
}
