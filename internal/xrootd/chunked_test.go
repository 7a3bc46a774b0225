package xrootd

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content []byte) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "xrootd-test-*")
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func parseFrames(t *testing.T, data []byte) (frames [][]byte, statuses []uint16) {
	t.Helper()
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), 8)
		status := binary.BigEndian.Uint16(data[2:4])
		dlen := binary.BigEndian.Uint32(data[4:8])
		payload := data[8 : 8+int(dlen)]
		frames = append(frames, payload)
		statuses = append(statuses, status)
		data = data[8+int(dlen):]
	}
	return
}

func TestWriteReadResponseZeroBytes(t *testing.T) {
	f := writeTempFile(t, []byte("hello world"))
	var buf bytes.Buffer
	err := WriteReadResponse(&buf, 1, f, 0, 0, false, MaxFrameSize)
	require.NoError(t, err)

	frames, statuses := parseFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, uint16(0), statuses[0]) // ok
	assert.Empty(t, frames[0])
}

func TestWriteReadResponseExactFrame(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 16)
	f := writeTempFile(t, content)
	var buf bytes.Buffer
	err := WriteReadResponse(&buf, 1, f, 0, int64(len(content)), false, 16)
	require.NoError(t, err)

	frames, statuses := parseFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, uint16(0), statuses[0])
	assert.Equal(t, content, frames[0])
}

func TestWriteReadResponseSpillsToSecondFrame(t *testing.T) {
	content := bytes.Repeat([]byte("b"), 17)
	f := writeTempFile(t, content)
	var buf bytes.Buffer
	err := WriteReadResponse(&buf, 1, f, 0, int64(len(content)), false, 16)
	require.NoError(t, err)

	frames, statuses := parseFrames(t, buf.Bytes())
	require.Len(t, frames, 2)
	assert.Equal(t, uint16(7), statuses[0]) // oksofar
	assert.Equal(t, uint16(0), statuses[1]) // ok
	assert.Equal(t, content, append(append([]byte{}, frames[0]...), frames[1]...))
}

func TestWriteReadResponseMatchesFileRegion(t *testing.T) {
	content := []byte("0123456789ABCDEF")
	f := writeTempFile(t, content)
	var buf bytes.Buffer
	err := WriteReadResponse(&buf, 1, f, 3, 5, false, MaxFrameSize)
	require.NoError(t, err)

	frames, _ := parseFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("34567"), frames[0])
}

func TestWriteReadVResponseConcatenatesElements(t *testing.T) {
	content := []byte("ABCDEFGH")
	f := writeTempFile(t, content)

	table := NewFileTable()
	fd := table.Add(f)

	elements := []ReadVElement{
		{FD: fd, Offset: 0, Length: 4},
		{FD: fd, Offset: 4, Length: 4},
	}

	var buf bytes.Buffer
	err := WriteReadVResponse(&buf, 1, elements, table.Get, MaxFrameSize)
	require.NoError(t, err)

	frames, _ := parseFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	payload := frames[0]

	// hdr0(16) + "ABCD" + hdr1(16) + "EFGH"
	require.Len(t, payload, 16+4+16+4)
	assert.Equal(t, "ABCD", string(payload[16:20]))
	assert.Equal(t, "EFGH", string(payload[36:40]))

	// Embedded header order is (fd, length, offset), per the readahead_list
	// wire layout: fhandle[4], rlen[4], offset[8].
	hdr0 := payload[0:16]
	assert.Equal(t, uint32(fd), binary.BigEndian.Uint32(hdr0[0:4]), "fd")
	assert.Equal(t, uint32(4), binary.BigEndian.Uint32(hdr0[4:8]), "length")
	assert.Equal(t, uint64(0), binary.BigEndian.Uint64(hdr0[8:16]), "offset")

	hdr1 := payload[20:36]
	assert.Equal(t, uint32(fd), binary.BigEndian.Uint32(hdr1[0:4]), "fd")
	assert.Equal(t, uint32(4), binary.BigEndian.Uint32(hdr1[4:8]), "length")
	assert.Equal(t, uint64(4), binary.BigEndian.Uint64(hdr1[8:16]), "offset")
}

func TestWriteReadVResponseEmptyElements(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReadVResponse(&buf, 1, nil, nil, MaxFrameSize)
	assert.ErrorIs(t, err, ErrEmptyReadV)
}

func TestWriteReadVResponseBadFD(t *testing.T) {
	table := NewFileTable()
	var buf bytes.Buffer
	err := WriteReadVResponse(&buf, 1, []ReadVElement{{FD: 9, Offset: 0, Length: 1}}, table.Get, MaxFrameSize)
	assert.ErrorIs(t, err, ErrFileNotOpen)
	assert.Empty(t, buf.Bytes(), "no frame should have been written once validation fails")
}
