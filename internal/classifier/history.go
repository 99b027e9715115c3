package classifier

import "time"

// timedEntry is one entry in a bounded, age-pruned history buffer.
type timedEntry struct {
	ts    time.Time
	value string
}

// ring is a bounded, time-pruned history buffer (spec §3: "kept in
// memory, bounded ring buffers ... pruning by age on every access").
// Exposed as a single read-only view to every composite detector per
// spec §9 ("rather than each recomputing, expose a single read-only
// view to all detectors").
type ring struct {
	entries []timedEntry
	maxLen  int
	maxAge  time.Duration
}

func newRing(maxLen int, maxAge time.Duration) *ring {
	return &ring{maxLen: maxLen, maxAge: maxAge}
}

// add appends an entry, then prunes by age and caps by length.
func (r *ring) add(now time.Time, value string) {
	r.entries = append(r.entries, timedEntry{ts: now, value: value})
	r.prune(now)
	if len(r.entries) > r.maxLen {
		r.entries = r.entries[len(r.entries)-r.maxLen:]
	}
}

func (r *ring) prune(now time.Time) {
	cutoff := now.Add(-r.maxAge)
	i := 0
	for i < len(r.entries) && r.entries[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		r.entries = r.entries[i:]
	}
}

// since returns all entries newer than now-window, oldest first. Always
// prunes first so callers see a consistent view regardless of add order.
func (r *ring) since(now time.Time, window time.Duration) []timedEntry {
	r.prune(now)
	cutoff := now.Add(-window)
	out := make([]timedEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if !e.ts.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// countSince returns the number of entries newer than now-window.
func (r *ring) countSince(now time.Time, window time.Duration) int {
	return len(r.since(now, window))
}

// distinctSince returns the number of distinct values among entries
// newer than now-window.
func (r *ring) distinctSince(now time.Time, window time.Duration) int {
	seen := map[string]struct{}{}
	for _, e := range r.since(now, window) {
		seen[e.value] = struct{}{}
	}
	return len(seen)
}

// history bundles the bounded buffers spec §3 lists, sized per its
// stated bounds (clip ≤20, title ≤50, category ≤30).
type history struct {
	clip     *ring // clipboard event values, 60s window patterns
	title    *ring // title history, value = title
	category *ring // category history, value = category string
	appSwitch *ring // app name history for app-switch extraction
	errors   *ring // error-title occurrences, value = title

	lastTitle     string
	titleChanged  time.Time
	lastApp       string
	appChanged    time.Time
}

func newHistory() *history {
	return &history{
		clip:      newRing(20, 300*time.Second),
		title:     newRing(50, 300*time.Second),
		category:  newRing(30, 300*time.Second),
		appSwitch: newRing(100, 300*time.Second),
		errors:    newRing(50, 300*time.Second),
	}
}
