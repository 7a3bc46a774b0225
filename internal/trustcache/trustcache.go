// Package trustcache publishes a periodically-refreshed snapshot of GSI
// trust anchors (CA subjects and certificate fingerprints) behind an
// atomically-swapped pointer, so a concurrent reader never blocks on or
// observes a torn refresh. Loading and validating certificates is out of
// scope here; Source is the seam a real CRL/anchor fetcher plugs into.
package trustcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cubbit/xrootd4g/internal/telemetry"
)

// trustAnchorKey is the single badger key the last-known-good snapshot is
// persisted under, so a restart can serve stale-but-present anchors
// immediately instead of blocking on the first refresh.
var trustAnchorKey = []byte("trustcache:snapshot")

// TrustAnchor identifies a single trusted certificate authority.
type TrustAnchor struct {
	Subject     string `json:"subject"`
	Fingerprint string `json:"fingerprint"`
}

// Snapshot is an immutable, atomically-published set of trust anchors.
type Snapshot struct {
	Anchors   []TrustAnchor `json:"anchors"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Source fetches a fresh snapshot from wherever trust anchors actually
// come from (a CRL distribution point, a directory of CA certs, ...).
// Real implementations live outside this module; this package only owns
// the caching and swap discipline.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Cache holds the current trust-anchor snapshot and refreshes it on a
// timer, optionally persisting each refresh to a badger database so the
// next startup has a warm snapshot rather than an empty one.
type Cache struct {
	source Source
	period time.Duration

	db      *badger.DB
	current atomic.Pointer[Snapshot]

	stop chan struct{}
	done chan struct{}
}

// New constructs a Cache. dbPath may be empty to disable persistence
// entirely (the snapshot then lives only in memory and starts empty
// until the first successful refresh).
func New(source Source, period time.Duration, dbPath string) (*Cache, error) {
	if period <= 0 {
		return nil, fmt.Errorf("trustcache: refresh period must be positive")
	}

	c := &Cache{
		source: source,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if dbPath != "" {
		opts := badger.DefaultOptions(dbPath).WithLoggingLevel(badger.WARNING)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("trustcache: open badger at %s: %w", dbPath, err)
		}
		c.db = db

		if snap, ok, err := c.loadPersisted(); err != nil {
			telemetry.Warn("trustcache: failed to load persisted snapshot: %v", err)
		} else if ok {
			c.current.Store(&snap)
		}
	}

	return c, nil
}

// Current returns the most recently published snapshot. It is always
// safe to call concurrently with Run's background refresh and returns
// the zero Snapshot if none has ever been fetched or persisted.
func (c *Cache) Current() Snapshot {
	if s := c.current.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// Run performs an immediate refresh, then refreshes on the configured
// period until ctx is cancelled or Close is called. Run blocks; callers
// typically invoke it in its own goroutine.
func (c *Cache) Run(ctx context.Context) {
	defer close(c.done)

	c.refresh(ctx)

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

func (c *Cache) refresh(ctx context.Context) {
	snap, err := c.source.Fetch(ctx)
	if err != nil {
		telemetry.Warn("trustcache: refresh failed: %v", err)
		return
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}

	c.current.Store(&snap)

	if c.db != nil {
		if err := c.persist(snap); err != nil {
			telemetry.Warn("trustcache: failed to persist snapshot: %v", err)
		}
	}
}

func (c *Cache) persist(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(trustAnchorKey, data)
	})
}

func (c *Cache) loadPersisted() (Snapshot, bool, error) {
	var snap Snapshot
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(trustAnchorKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})

	return snap, found, err
}

// Close stops a running Run loop and closes the persistence database, if
// any. Safe to call even if Run was never started.
func (c *Cache) Close() error {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
