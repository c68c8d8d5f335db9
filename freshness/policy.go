// Package freshness implements the staleness policy for week-bucketed
// space-weather caches.
//
// The policy is a pure function of its inputs: given when a week's data was
// last loaded and the current time, it decides whether a cached week still
// warrants a refresh. Only weeks that ended recently relative to their load
// time can still receive late-arriving or amended events from the provider;
// older weeks are treated as permanently settled.
package freshness

import (
	"time"

	"github.com/helioforecast/go-spaceweather-cache/weekdate"
)

const (
	// RecentWindow is how long after a week ends the provider may still
	// amend its events. A week whose end is further than this before its
	// load time is considered settled and is never refreshed again.
	RecentWindow = 7 * 24 * time.Hour

	// StaleWindow is how long a successful load stays fresh. Within this
	// window a re-fetch only happens when the caller explicitly demands it.
	StaleWindow = time.Hour
)

// NeedsRefresh reports whether cached data for the week should be re-fetched.
//
// loadTime is when the week's data was last successfully cached and now is the
// current instant. refreshIfRecentlyLoaded forces a refresh of refreshable
// weeks even inside the staleness window (e.g. a user-triggered
// pull-to-refresh). The result is deterministic given the four inputs.
func NeedsRefresh(week weekdate.Week, loadTime, now time.Time, refreshIfRecentlyLoaded bool) bool {
	// Weeks that had already ended more than RecentWindow before they were
	// loaded are settled. Weeks still in progress at load time count as
	// recently ended.
	recentlyEnded := loadTime.Sub(week.InstantAfterLast()) < RecentWindow

	staleByAge := refreshIfRecentlyLoaded || now.Sub(loadTime) > StaleWindow

	return recentlyEnded && staleByAge
}
