package usage

import (
	"sort"
	"time"
)

// FilterAll is the sentinel for "no application / key filter".
const FilterAll int64 = 0

// Filter narrows the event pool by application and API key.
// A zero field matches everything.
type Filter struct {
	AppID int64
	KeyID int64
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e Event) bool {
	if f.AppID != FilterAll && e.AppID != f.AppID {
		return false
	}
	if f.KeyID != FilterAll && e.KeyID != f.KeyID {
		return false
	}
	return true
}

// FilterEvents returns the subsequence of events inside [start, end] that
// match f, sorted newest first. Events with malformed timestamps are
// dropped. The input slice is never modified.
func FilterEvents(events []Event, f Filter, start, end time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		t, ok := e.Time()
		if !ok {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		if !f.Matches(e) {
			continue
		}
		out = append(out, e)
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders events descending by timestamp. Ties keep a
// stable order by ID so repeated runs paginate identically.
func SortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, iok := events[i].Time()
		tj, jok := events[j].Time()
		if iok != jok {
			return iok
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return events[i].ID > events[j].ID
	})
}

// PageSize is the fixed row count of the log table.
const PageSize = 10

// TotalPages returns ceil(n / PageSize), minimum 1.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the 1-based page of events. Out-of-range pages clamp
// to the nearest valid page.
func Paginate(events []Event, page int) []Event {
	if page < 1 {
		page = 1
	}
	if max := TotalPages(len(events)); page > max {
		page = max
	}
	lo := (page - 1) * PageSize
	if lo >= len(events) {
		return nil
	}
	hi := lo + PageSize
	if hi > len(events) {
		hi = len(events)
	}
	return events[lo:hi]
}
