package storage

import (
	"time"

	"github.com/uptrace/bun"
)

// Timestamps are persisted as UTC Unix milliseconds so range comparisons stay
// integer-only inside SQLite.

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// cachedWeek records that a fetch attempt for a (week, event type) bucket
// completed and was durably committed, even when the bucket had no events.
// Rows are upserted on every completed fetch and never deleted.
type cachedWeek struct {
	bun.BaseModel `bun:"table:cached_weeks"`

	WeekYear   int    `bun:"week_year,pk"`
	WeekOfYear int    `bun:"week_of_year,pk"`
	EventType  string `bun:"event_type,pk"`
	LoadTime   int64  `bun:"load_time,notnull"`
}

// cachedEvent stores one event keyed by the provider's globally unique id.
// Payload is the full canonical document so the detail view can be rebuilt
// without re-fetching.
type cachedEvent struct {
	bun.BaseModel `bun:"table:cached_events"`

	ID        string `bun:"id,pk"`
	EventType string `bun:"event_type,notnull"`
	Time      int64  `bun:"time,notnull"`
	Payload   []byte `bun:"payload,notnull"`
}

// cmeExtras projects the summary-only CME scalar out of the payload so week
// listings avoid deserializing documents. One-to-one with cached_events,
// destroyed by cascade when the parent row goes away.
type cmeExtras struct {
	bun.BaseModel `bun:"table:cme_extras"`

	EventID      string `bun:"event_id,pk"`
	MostAccurate bool   `bun:"most_accurate,notnull"`
}

// flrExtras projects the flare class type for summary listings.
type flrExtras struct {
	bun.BaseModel `bun:"table:flr_extras"`

	EventID   string `bun:"event_id,pk"`
	ClassType string `bun:"class_type,notnull"`
}

// summaryRow is the scan target for the summary listing join.
type summaryRow struct {
	ID           string `bun:"id"`
	Time         int64  `bun:"time"`
	MostAccurate bool   `bun:"most_accurate"`
	ClassType    string `bun:"class_type"`
}
