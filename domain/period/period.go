// Package period provides reporting period value types and the window
// resolver. All functions are pure - no side effects.
package period

import (
	"fmt"
	"time"
)

// Period is a user-selectable reporting window.
type Period string

const (
	Day       Period = "day" // today, hourly buckets
	SevenDay  Period = "7d"  // last 7 calendar days, daily buckets
	ThirtyDay Period = "30d" // current calendar month, daily buckets
	All       Period = "all" // last 12 calendar months, monthly buckets
)

// Parse converts an API query value into a Period.
func Parse(s string) (Period, error) {
	switch s {
	case "day", "1d":
		return Day, nil
	case "7d", "week":
		return SevenDay, nil
	case "30d", "month":
		return ThirtyDay, nil
	case "all", "":
		return All, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Granularity is the bucket width for a period.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// Granularity returns the bucket width for p.
func (p Period) Granularity() Granularity {
	switch p {
	case Day:
		return GranularityHour
	case SevenDay, ThirtyDay:
		return GranularityDay
	default:
		return GranularityMonth
	}
}

// Bucket is one sub-interval of a reporting window.
// Key is machine-sortable; Label is the display text.
// Future marks a bucket whose interval has not started yet.
type Bucket struct {
	Key    string
	Label  string
	Future bool
}

// Window is the resolved [Start, End] boundary of a period plus its
// ordered bucket sequence. End is always "now", never a period boundary,
// so a chart never shows a completed-but-future interval as if it had data.
type Window struct {
	Start   time.Time
	End     time.Time
	Buckets []Bucket
}

// Contains reports whether t falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Resolve computes the window for p anchored at now.
//
//   - Day: midnight of now's day through now; one bucket per elapsed hour,
//     so no future buckets are emitted.
//   - SevenDay: midnight 6 days back through now; one bucket per day.
//   - ThirtyDay: first of now's month through now; one bucket per day of
//     the full calendar month, with days after today marked Future so the
//     bucketer reports them as absent rather than zero.
//   - All: first of the month 11 months back; 12 monthly buckets ending
//     at now's month.
func Resolve(p Period, now time.Time) Window {
	switch p {
	case Day:
		start := startOfDay(now)
		var buckets []Bucket
		for h := 0; h <= now.Hour(); h++ {
			buckets = append(buckets, Bucket{Key: hourKey(h), Label: hourKey(h)})
		}
		return Window{Start: start, End: now, Buckets: buckets}

	case SevenDay:
		start := startOfDay(now).AddDate(0, 0, -6)
		var buckets []Bucket
		for i := 0; i < 7; i++ {
			d := start.AddDate(0, 0, i)
			buckets = append(buckets, Bucket{Key: dayKey(d), Label: dayLabel(d)})
		}
		return Window{Start: start, End: now, Buckets: buckets}

	case ThirtyDay:
		start := startOfMonth(now)
		last := start.AddDate(0, 1, -1).Day()
		var buckets []Bucket
		for day := 1; day <= last; day++ {
			d := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
			buckets = append(buckets, Bucket{Key: dayKey(d), Label: dayLabel(d), Future: day > now.Day()})
		}
		return Window{Start: start, End: now, Buckets: buckets}

	default: // All
		start := startOfMonth(now).AddDate(0, -11, 0)
		var buckets []Bucket
		for i := 0; i < 12; i++ {
			m := start.AddDate(0, i, 0)
			buckets = append(buckets, Bucket{Key: monthKey(m), Label: monthLabel(m)})
		}
		return Window{Start: start, End: now, Buckets: buckets}
	}
}

// BucketKey truncates t to p's granularity and returns the bucket key
// an event at t belongs to.
func BucketKey(p Period, t time.Time) string {
	switch p.Granularity() {
	case GranularityHour:
		return hourKey(t.Hour())
	case GranularityDay:
		return dayKey(t)
	default:
		return monthKey(t)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func hourKey(h int) string            { return fmt.Sprintf("%02d:00", h) }
func dayKey(t time.Time) string       { return t.Format("2006-01-02") }
func monthKey(t time.Time) string     { return t.Format("2006-01") }
func dayLabel(t time.Time) string     { return fmt.Sprintf("%d월 %d일", int(t.Month()), t.Day()) }
func monthLabel(t time.Time) string   { return fmt.Sprintf("%d년 %d월", t.Year(), int(t.Month())) }
