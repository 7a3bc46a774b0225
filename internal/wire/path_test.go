package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	t.Run("simple path", func(t *testing.T) {
		got, err := ResolvePath("/data", "/a/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "/data/a/b.txt", got)
	})

	t.Run("collapses dot segments", func(t *testing.T) {
		got, err := ResolvePath("/data", "/a/./b/../c.txt")
		require.NoError(t, err)
		assert.Equal(t, "/data/a/c.txt", got)
	})

	t.Run("escape rejected", func(t *testing.T) {
		_, err := ResolvePath("/data", "/../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathInvalid)
	})

	t.Run("escape rejected no leading slash", func(t *testing.T) {
		_, err := ResolvePath("/data", "../secrets")
		assert.ErrorIs(t, err, ErrPathInvalid)
	})
}
