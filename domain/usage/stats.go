package usage

import (
	"math"
	"time"
)

// Card is one rolling stat card: a current-window count, the preceding
// window's count, and the rounded percent delta between them.
type Card struct {
	Value      int `json:"value"`
	Previous   int `json:"previous"`
	ChangePct  int `json:"change_pct"`
}

// Stats are the three period-independent cards. They are always anchored
// to "today" regardless of the chart's selected period.
type Stats struct {
	Today Card `json:"today"`
	Week  Card `json:"week"`
	Month Card `json:"month"`
}

// PercentChange computes the stat-card delta. A zero previous value is
// defined by policy, not accident: 100 when anything happened in the
// current window, 0 otherwise. This avoids division by zero while still
// signalling growth from nothing.
func PercentChange(current, previous int) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(roundHalfUp(float64(current-previous) / float64(previous) * 100))
}

// ComputeStats counts events in three window pairs anchored at now:
// today vs yesterday, the last 7 days vs the 7 before them, and the
// month to date vs the full previous calendar month.
//
// The input is the full session pool, never a period-filtered subset.
// This is a PURE function.
func ComputeStats(events []Event, now time.Time) Stats {
	todayStart := startOfDay(now)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	weekStart := todayStart.AddDate(0, 0, -6)
	prevWeekStart := weekStart.AddDate(0, 0, -7)

	monthStart := startOfMonth(now)
	prevMonthStart := startOfMonth(monthStart.AddDate(0, 0, -1))

	var today, yesterday, week, prevWeek, month, prevMonth int
	for _, e := range events {
		t, ok := e.Time()
		if !ok || t.After(now) {
			continue
		}
		if !t.Before(todayStart) {
			today++
		} else if !t.Before(yesterdayStart) {
			yesterday++
		}
		if !t.Before(weekStart) {
			week++
		} else if !t.Before(prevWeekStart) {
			prevWeek++
		}
		if !t.Before(monthStart) {
			month++
		} else if !t.Before(prevMonthStart) {
			prevMonth++
		}
	}

	return Stats{
		Today: Card{Value: today, Previous: yesterday, ChangePct: PercentChange(today, yesterday)},
		Week:  Card{Value: week, Previous: prevWeek, ChangePct: PercentChange(week, prevWeek)},
		Month: Card{Value: month, Previous: prevMonth, ChangePct: PercentChange(month, prevMonth)},
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// roundHalfUp rounds halves toward positive infinity, so -12.5 becomes
// -12. The displayed percentages follow that convention.
func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}
