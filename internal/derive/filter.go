package derive

import (
	"time"

	"github.com/recon-health/recon/internal/metrics"
)

// TimeRange is an enumerated dashboard range token.
type TimeRange string

const (
	Range7D  TimeRange = "7D"
	Range30D TimeRange = "30D"
	Range90D TimeRange = "90D"
	Range6M  TimeRange = "6M"
	Range1Y  TimeRange = "1Y"
	RangeAll TimeRange = "ALL"
)

var daysBack = map[TimeRange]int{
	Range7D:  7,
	Range30D: 30,
	Range90D: 90,
	Range6M:  183,
	Range1Y:  365,
}

// FilterByRange keeps records on or after the cutoff implied by the range
// token relative to now. ALL and unrecognized tokens return the series
// unchanged. The comparison is on date strings, valid because dates are
// zero-padded ISO.
func FilterByRange(series []metrics.DailyMetric, r TimeRange, now time.Time) []metrics.DailyMetric {
	days, ok := daysBack[r]
	if !ok {
		return series
	}
	cutoff := now.AddDate(0, 0, -days).UTC().Format("2006-01-02")

	out := make([]metrics.DailyMetric, 0, len(series))
	for _, m := range series {
		if m.Date >= cutoff {
			out = append(out, m)
		}
	}
	return out
}
