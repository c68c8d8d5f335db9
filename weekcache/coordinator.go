package weekcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helioforecast/go-spaceweather-cache/cache"
	"github.com/helioforecast/go-spaceweather-cache/freshness"
	"github.com/helioforecast/go-spaceweather-cache/internal/storage"
	"github.com/helioforecast/go-spaceweather-cache/internal/watcher"
	"github.com/helioforecast/go-spaceweather-cache/spaceweather"
	"github.com/helioforecast/go-spaceweather-cache/weekdate"
)

// ErrClosed is returned by operations issued after Close.
var ErrClosed = errors.New("weekcache: coordinator is closed")

// EventResult is the read model returned by EventByID. NeedsRefresh is
// informational: it tells the consumer the containing week is due a re-fetch,
// it does not make the event itself less valid.
type EventResult struct {
	Event        spaceweather.Event
	NeedsRefresh bool
}

// Coordinator orchestrates the on-disk week cache: it owns the database
// lifecycle (lazy asynchronous open, self-healing recreation after external
// deletion), applies the freshness policy to reads, and performs the atomic
// week writes.
//
// All methods are safe for concurrent use. Every operation waits for the
// initial database open to finish and re-reads the current handle, so a
// recreation swap is observed by all subsequent calls without extra locking.
type Coordinator struct {
	cfg Config
	log *slog.Logger

	// store is replaced wholesale on recreation, never mutated in place.
	store atomic.Pointer[storage.Store]

	ready   chan struct{}
	initErr error

	summaries cache.Service

	// now is stubbed in tests to pin the freshness decisions.
	now func() time.Time

	bgCtx  context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
	closed  bool
}

// New validates the configuration and returns a running coordinator. The
// database is opened lazily on a background task; construction never blocks
// on disk I/O. The first operation that needs the database waits for the open
// to finish and observes its failure, if any.
func New(cfg Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	summaries, err := cache.NewService(cfg.Summaries)
	if err != nil {
		return nil, fmt.Errorf("weekcache: summary cache: %w", err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		cfg:       cfg,
		log:       cfg.logger(),
		ready:     make(chan struct{}),
		summaries: summaries,
		now:       time.Now,
		bgCtx:     bgCtx,
		cancel:    cancel,
		subs:      make(map[int]chan struct{}),
	}

	c.wg.Add(1)
	go c.initialize()

	return c, nil
}

// initialize performs the lazy database open and, on success, starts the
// deletion watcher. It runs exactly once per coordinator.
func (c *Coordinator) initialize() {
	defer c.wg.Done()

	err := os.MkdirAll(c.cfg.Dir, 0o755)
	if err != nil {
		c.initErr = fmt.Errorf("weekcache: create cache dir: %w", err)
		close(c.ready)
		return
	}

	st, err := storage.Open(c.bgCtx, c.cfg.DatabasePath())
	if err != nil {
		c.initErr = fmt.Errorf("weekcache: open database: %w", err)
		close(c.ready)
		return
	}
	c.store.Store(st)
	close(c.ready)

	// The Add is guarded against a concurrent Close so the watcher is never
	// registered after Close started waiting.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		err := watcher.Run(c.bgCtx, c.cfg.Dir, c.cfg.FileName, c.log, c.recreate)
		if err != nil && c.bgCtx.Err() == nil {
			c.log.Error("deletion watcher stopped", "dir", c.cfg.Dir, "error", err)
		}
	}()
}

// await blocks until the lazy open has finished, then returns the current
// database handle. Operations call it at their start and never hold on to the
// result across calls.
func (c *Coordinator) await(ctx context.Context) (*storage.Store, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.bgCtx.Done():
		return nil, ErrClosed
	}
	if c.initErr != nil {
		return nil, c.initErr
	}
	st := c.store.Load()
	if st == nil {
		return nil, errors.New("weekcache: database unavailable")
	}
	return st, nil
}

// recreate replaces the database after the watcher saw the file vanish. The
// stale handle is closed best-effort, a fresh empty database is opened at the
// same path, the summary cache is wiped and subscribers are notified.
func (c *Coordinator) recreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if old := c.store.Load(); old != nil {
		// The handle usually still "works" through the unlinked inode;
		// close it so readers stop seeing pre-deletion data.
		if err := old.Close(); err != nil {
			c.log.Debug("closing stale database handle", "error", err)
		}
	}

	st, err := storage.Open(c.bgCtx, c.cfg.DatabasePath())
	if err != nil {
		// Leave the pointer as-is; operations will surface errors until a
		// later recreation succeeds.
		c.log.Error("recreate database after external deletion", "path", c.cfg.DatabasePath(), "error", err)
		return
	}
	c.store.Store(st)

	if err := c.summaries.DeleteByPrefix(c.bgCtx, cache.SummariesPrefix()); err != nil {
		c.log.Error("wipe summary cache after recreation", "error", err)
	}

	c.log.Info("cache database recreated", "path", c.cfg.DatabasePath())
	c.broadcastLocked()
}

// IsWeekCachedAndNeedsRefresh reports whether the (week, event type) bucket
// is cached and due a re-fetch. A never-cached bucket reports false; callers
// distinguish that case through the read operations.
func (c *Coordinator) IsWeekCachedAndNeedsRefresh(ctx context.Context, week weekdate.Week, typ spaceweather.EventType, refreshIfRecentlyLoaded bool) (bool, error) {
	st, err := c.await(ctx)
	if err != nil {
		return false, err
	}

	loadTime, cached, err := st.WeekLoadTime(ctx, week, typ)
	if err != nil {
		c.logError(err, "week cache lookup failed", "week", week.String(), "event_type", string(typ))
		return false, err
	}
	if !cached {
		return false, nil
	}
	return freshness.NeedsRefresh(week, loadTime, c.now(), refreshIfRecentlyLoaded), nil
}

// EventSummariesForWeek returns the summary listing for the bucket, most
// recent event first. ok is false when there is no usable cache: the bucket
// was never cached, or it needs a refresh and the caller did not opt in to
// stale data via returnCacheThatNeedsRefreshing. An ok=false result means
// "proceed to the remote fetch", not an error.
func (c *Coordinator) EventSummariesForWeek(ctx context.Context, week weekdate.Week, typ spaceweather.EventType, returnCacheThatNeedsRefreshing bool) (summaries []spaceweather.Summary, ok bool, err error) {
	st, err := c.await(ctx)
	if err != nil {
		return nil, false, err
	}

	loadTime, cached, err := st.WeekLoadTime(ctx, week, typ)
	if err != nil {
		c.logError(err, "week cache lookup failed", "week", week.String(), "event_type", string(typ))
		return nil, false, err
	}
	if !cached {
		return nil, false, nil
	}
	if !returnCacheThatNeedsRefreshing && freshness.NeedsRefresh(week, loadTime, c.now(), false) {
		return nil, false, nil
	}

	key := cache.SummariesKey(week, typ)
	summaries, err = cache.GetOrFetch(ctx, c.summaries, key, func(ctx context.Context) ([]spaceweather.Summary, error) {
		// Re-read the handle: the cached fetch may run after a recreation
		// swapped the store out from under the handle obtained above.
		st := c.store.Load()
		if st == nil {
			return nil, errors.New("weekcache: database unavailable")
		}
		return st.Summaries(ctx, typ, week.FirstInstant(), week.InstantAfterLast())
	})
	if err != nil {
		c.logError(err, "summary query failed", "week", week.String(), "event_type", string(typ))
		return nil, false, err
	}
	return summaries, true, nil
}

// EventByID returns the full typed event for id within the given cached
// week. A nil result without error means the cache has nothing usable: the
// week was never cached, or the id is missing from a cached week. The latter
// signals a data inconsistency and is logged, but is surfaced as plain
// absence so consumers fall back to the remote fetch.
func (c *Coordinator) EventByID(ctx context.Context, id string, typ spaceweather.EventType, week weekdate.Week) (*EventResult, error) {
	st, err := c.await(ctx)
	if err != nil {
		return nil, err
	}

	loadTime, cached, err := st.WeekLoadTime(ctx, week, typ)
	if err != nil {
		c.logError(err, "week cache lookup failed", "week", week.String(), "event_type", string(typ))
		return nil, err
	}
	if !cached {
		return nil, nil
	}

	raw, found, err := st.EventPayload(ctx, id, typ)
	if err != nil {
		c.logError(err, "event lookup failed", "id", id, "event_type", string(typ))
		return nil, err
	}
	if !found {
		c.log.Error("cached week is missing an event", "id", id, "week", week.String(), "event_type", string(typ))
		return nil, nil
	}

	event, err := spaceweather.Decode(typ, raw)
	if err != nil {
		c.logError(err, "cached payload failed to decode", "id", id, "event_type", string(typ))
		return nil, err
	}

	return &EventResult{
		Event:        event,
		NeedsRefresh: freshness.NeedsRefresh(week, loadTime, c.now(), false),
	}, nil
}

// CacheWeek persists a completed fetch for the bucket. It is an idempotent
// upsert: repeating the call with identical arguments leaves the store in the
// same observable state. An empty batch records only the week marker; a
// non-empty batch commits the marker, every event and every extras row in one
// transaction.
func (c *Coordinator) CacheWeek(ctx context.Context, week weekdate.Week, typ spaceweather.EventType, docs []spaceweather.Document, loadTime time.Time) error {
	if !typ.Valid() {
		return fmt.Errorf("weekcache: unknown event type %q", typ)
	}

	st, err := c.await(ctx)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		err = st.MarkWeekCached(ctx, week, typ, loadTime)
	} else {
		err = st.StoreWeek(ctx, week, typ, docs, loadTime)
	}
	if err != nil {
		c.logError(err, "week write failed", "week", week.String(), "event_type", string(typ), "events", len(docs))
		return err
	}

	if err := c.summaries.Delete(ctx, cache.SummariesKey(week, typ)); err != nil {
		c.logError(err, "summary cache invalidation failed", "week", week.String(), "event_type", string(typ))
	}
	return nil
}

// CacheWeekAsync is the fire-and-forget variant of CacheWeek for callers
// that accept best-effort delivery. Failures are logged, never surfaced. The
// write runs on a detached task tied to the coordinator's lifetime: Close
// waits for it, and a closed coordinator drops the write.
func (c *Coordinator) CacheWeekAsync(week weekdate.Week, typ spaceweather.EventType, docs []spaceweather.Document, loadTime time.Time) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Warn("background week write dropped, coordinator closed", "week", week.String(), "event_type", string(typ))
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := c.CacheWeek(c.bgCtx, week, typ, docs, loadTime); err != nil && c.bgCtx.Err() == nil {
			c.log.Error("background week write failed", "week", week.String(), "event_type", string(typ), "error", err)
		}
	}()
}

// SubscribeRecreated returns a channel receiving one notification per
// database recreation, plus a cancel function releasing the subscription.
// Notifications are delivered best-effort: a subscriber that has not drained
// the previous notification does not block the recreation path.
func (c *Coordinator) SubscribeRecreated() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Coordinator) broadcastLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close stops the deletion watcher and any in-flight background writes, then
// closes the database. It is idempotent.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	if st := c.store.Load(); st != nil {
		return st.Close()
	}
	return nil
}

// logError records an operation failure with context. Cancellation is
// expected behavior, not a fault, and is kept out of the error log while
// still propagating to the caller.
func (c *Coordinator) logError(err error, msg string, args ...any) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	c.log.Error(msg, append(args, "error", err)...)
}
