package trustcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	calls atomic.Int32
}

func (s *stubSource) Fetch(_ context.Context) (Snapshot, error) {
	s.calls.Add(1)
	return Snapshot{
		Anchors:   []TrustAnchor{{Subject: "CN=test-ca", Fingerprint: "deadbeef"}},
		FetchedAt: time.Now(),
	}, nil
}

func TestCacheStartsEmpty(t *testing.T) {
	c, err := New(&stubSource{}, time.Minute, "")
	require.NoError(t, err)
	defer c.Close()

	assert.Empty(t, c.Current().Anchors)
}

func TestCacheRefreshesOnRun(t *testing.T) {
	src := &stubSource{}
	c, err := New(src, 20*time.Millisecond, "")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(c.Current().Anchors) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

// TestCacheCurrentConcurrentWithRefresh exercises the atomic swap under
// concurrent readers, matching the "snapshot swap does not block a
// concurrent reader" property.
func TestCacheCurrentConcurrentWithRefresh(t *testing.T) {
	src := &stubSource{}
	c, err := New(src, time.Millisecond, "")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Run(ctx)

	stop := time.After(50 * time.Millisecond)
	for {
		select {
		case <-stop:
			return
		default:
			_ = c.Current()
		}
	}
}
