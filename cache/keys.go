package cache

import (
	"strings"

	"github.com/helioforecast/go-spaceweather-cache/spaceweather"
	"github.com/helioforecast/go-spaceweather-cache/weekdate"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// Keys are built explicitly from the week bucket and event type rather than
// through reflection: the key space is closed and known at compile time, and
// prefix-based invalidation depends on the segments staying stable.

// SummariesKey identifies the cached summary list for one (week, event type)
// bucket, e.g. "summaries::CME::2024-W10".
func SummariesKey(week weekdate.Week, typ spaceweather.EventType) string {
	return strings.Join([]string{"summaries", string(typ), week.String()}, KeySeparator)
}

// SummariesPrefix matches every summary key regardless of bucket. Used for
// wholesale invalidation after the database is recreated.
func SummariesPrefix() string {
	return "summaries" + KeySeparator
}
