package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TrendPoint is one entry of the monthly trend series.
type TrendPoint struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

var trendLayouts = []string{time.DateOnly, "2006-01"}

// SortTrend orders a trend map by calendar date. Keys may be full dates or
// months. Keys that parse as neither come last, ordered as strings.
func SortTrend(trend map[string]decimal.Decimal) []TrendPoint {
	type keyed struct {
		point  TrendPoint
		at     time.Time
		parsed bool
	}

	items := make([]keyed, 0, len(trend))
	for k, v := range trend {
		at, ok := parseTrendKey(k)
		items = append(items, keyed{point: TrendPoint{Key: k, Value: v}, at: at, parsed: ok})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.parsed && b.parsed:
			if !a.at.Equal(b.at) {
				return a.at.Before(b.at)
			}
			return a.point.Key < b.point.Key
		case a.parsed != b.parsed:
			return a.parsed
		default:
			return a.point.Key < b.point.Key
		}
	})

	out := make([]TrendPoint, len(items))
	for i, it := range items {
		out[i] = it.point
	}
	return out
}

func parseTrendKey(k string) (time.Time, bool) {
	for _, layout := range trendLayouts {
		if t, err := time.Parse(layout, k); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
