package xrootd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	name   string
	closed bool
}

func (f *fakeFile) ReadAt(p []byte, off int64) (int, error)  { return 0, nil }
func (f *fakeFile) WriteAt(p []byte, off int64) (int, error) { return len(p), nil }
func (f *fakeFile) Close() error                             { f.closed = true; return nil }
func (f *fakeFile) Truncate(size int64) error                { return nil }
func (f *fakeFile) Sync() error                               { return nil }
func (f *fakeFile) Name() string                              { return f.name }

func TestFileTableAddGetClose(t *testing.T) {
	table := NewFileTable()

	fd0 := table.Add(&fakeFile{name: "a"})
	fd1 := table.Add(&fakeFile{name: "b"})
	assert.Equal(t, 0, fd0)
	assert.Equal(t, 1, fd1)

	got, err := table.Get(fd0)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name())

	require.NoError(t, table.Close(fd0))
	_, err = table.Get(fd0)
	assert.ErrorIs(t, err, ErrFileNotOpen)

	// Freed slot 0 is reused before growing.
	fd2 := table.Add(&fakeFile{name: "c"})
	assert.Equal(t, 0, fd2)
	assert.Equal(t, 2, table.Len())
}

func TestFileTableGetOutOfRange(t *testing.T) {
	table := NewFileTable()
	_, err := table.Get(5)
	assert.ErrorIs(t, err, ErrFileNotOpen)
}

func TestFileTableCloseUnopened(t *testing.T) {
	table := NewFileTable()
	assert.ErrorIs(t, table.Close(0), ErrFileNotOpen)
}

func TestFileTableCloseAllReleasesHandles(t *testing.T) {
	table := NewFileTable()
	f1 := &fakeFile{name: "a"}
	f2 := &fakeFile{name: "b"}
	table.Add(f1)
	table.Add(f2)

	errs := table.CloseAll()
	assert.Empty(t, errs)
	assert.True(t, f1.closed)
	assert.True(t, f2.closed)
	assert.Equal(t, 0, table.Len())
}

// invariant: |open_fds| = opens - closes, and every returned fd satisfies
// 0 <= fd < table.capacity.
func TestFileTableOpenCloseInvariant(t *testing.T) {
	table := NewFileTable()
	opens, closes := 0, 0

	var fds []int
	for i := 0; i < 10; i++ {
		fds = append(fds, table.Add(&fakeFile{}))
		opens++
	}
	for _, fd := range fds[:4] {
		require.NoError(t, table.Close(fd))
		closes++
	}

	openCount := 0
	for fd := 0; fd < table.Len(); fd++ {
		if _, err := table.Get(fd); err == nil {
			openCount++
			assert.True(t, fd >= 0 && fd < table.Len())
		}
	}
	assert.Equal(t, opens-closes, openCount)
}
