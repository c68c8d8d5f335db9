// Package weekcache implements the cache coordinator for week-bucketed
// space-weather events.
//
// # Overview
//
// The coordinator sits between the remote data provider and the app's
// repository layer. Reads answer from the local SQLite cache when the
// freshness policy allows it and report absence otherwise, signalling the
// caller to invoke its remote fetch; completed fetches come back through
// CacheWeek. The coordinator also owns the database lifecycle: the handle is
// opened lazily on a background task and recreated transparently when the
// file is deleted out-of-band (OS storage trimming), broadcasting a
// recreation event so consumers can drop derived in-memory state.
//
// # Basic Usage
//
//	cfg := weekcache.DefaultConfig()
//	cfg.Dir = cacheDir
//	coord, err := weekcache.New(cfg)
//	defer coord.Close()
//
//	week := weekdate.FromTime(time.Now())
//	summaries, ok, err := coord.EventSummariesForWeek(ctx, week, spaceweather.TypeCME, false)
//	if err == nil && !ok {
//		docs := fetchFromProvider(week, spaceweather.TypeCME) // caller's network client
//		err = coord.CacheWeek(ctx, week, spaceweather.TypeCME, docs, time.Now())
//	}
//
// # Freshness
//
// A cached bucket is served as-is while it is fresh. Buckets whose week ended
// more than seven days before they were loaded are settled and never
// refreshed; among the rest, a refresh is due after an hour or on the
// caller's explicit demand. See the freshness package for the policy itself.
//
// # Failure semantics
//
// Initialization failure is fatal and surfaces on the first awaiting call.
// Read and write failures are logged with operation context and re-raised
// without retry; retry policy belongs to the caller. Cancellation propagates
// but is not treated as an error. Absence (ok=false, nil EventResult) is a
// normal outcome meaning "go fetch", never an error.
package weekcache
