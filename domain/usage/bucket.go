package usage

import (
	"time"

	"github.com/jihun-01/scratcha-dashboard/domain/period"
)

// Point is one chart bucket. Value is nil for a bucket that has not
// occurred yet - "no data yet" is distinct from a measured zero and must
// not be rendered as one.
type Point struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value *int   `json:"value"`
}

// BucketSeries converts events into the ordered chart series for p
// anchored at now: events outside the resolved window are discarded,
// the rest are counted per bucket key, and every resolver bucket yields
// exactly one point (count, defaulting to 0; nil when the bucket is in
// the future).
//
// This is a PURE function: identical (events, p, now) always produce an
// identical series.
func BucketSeries(events []Event, p period.Period, now time.Time) []Point {
	w := period.Resolve(p, now)

	counts := make(map[string]int)
	for _, e := range events {
		t, ok := e.Time()
		if !ok {
			continue
		}
		if !w.Contains(t) {
			continue
		}
		counts[period.BucketKey(p, t)]++
	}

	points := make([]Point, 0, len(w.Buckets))
	for _, b := range w.Buckets {
		pt := Point{Key: b.Key, Label: b.Label}
		if !b.Future {
			v := counts[b.Key]
			pt.Value = &v
		}
		points = append(points, pt)
	}
	return points
}
