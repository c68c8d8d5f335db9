// Package cache provides the in-memory read-through layer the week cache
// places in front of its summary queries.
//
// # Overview
//
// The package exports the Service interface, explicit key builders for the
// closed (week, event type) key space, and a Config that maps onto the
// default sturdyc-backed implementation.
//
//   - Service: read-through GetOrFetch plus key and prefix invalidation
//   - SummariesKey / SummariesPrefix: stable keys for summary listings
//
// # Basic Usage
//
//	svc, err := cache.NewService(cache.DefaultConfig())
//	key := cache.SummariesKey(week, spaceweather.TypeCME)
//	summaries, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]spaceweather.Summary, error) {
//		return store.Summaries(ctx, spaceweather.TypeCME, week.FirstInstant(), week.InstantAfterLast())
//	})
//
// # Invalidation
//
// Writing a week through the coordinator deletes that bucket's key so the
// next read observes the new rows. When the backing database is recreated
// after an external deletion, every summary key is dropped via
// SummariesPrefix, mirroring the recreation event broadcast to external
// subscribers.
//
// # Why explicit keys
//
// The key space is closed: a key is always (operation, event type, week).
// Building keys explicitly keeps them stable across process restarts and
// keeps prefix invalidation trivial, with no reflection involved.
package cache
