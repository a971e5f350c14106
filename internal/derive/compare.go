package derive

import (
	"math"
	"time"

	"github.com/recon-health/recon/internal/metrics"
)

// Delta compares the trailing window against the window before it.
type Delta struct {
	Value   float64 `json:"value"`   // absolute difference of window means
	Percent float64 `json:"percent"` // relative to the prior mean, whole percent
}

// CompareWindow averages the field over the last days records and over the
// days records before them, treating unobserved values as 0. It returns nil
// when the series is shorter than days+1 or the prior window is empty (no
// baseline). Percent is 0 when the prior mean is exactly 0.
func CompareWindow(series []metrics.DailyMetric, field metrics.Field, days int) *Delta {
	if days <= 0 {
		days = 7
	}
	if len(series) < days+1 {
		return nil
	}

	recent := series[len(series)-days:]
	prevStart := max(0, len(series)-2*days)
	previous := series[prevStart : len(series)-days]
	if len(previous) == 0 {
		return nil
	}

	recentAvg := windowMean(recent, field)
	prevAvg := windowMean(previous, field)

	d := &Delta{Value: round1(recentAvg - prevAvg)}
	if prevAvg != 0 {
		d.Percent = math.Round((recentAvg - prevAvg) / prevAvg * 100)
	}
	return d
}

func windowMean(window []metrics.DailyMetric, field metrics.Field) float64 {
	sum := 0.0
	for _, m := range window {
		if v := m.Get(field); v != nil {
			sum += *v
		}
	}
	return sum / float64(len(window))
}

// Today returns the record for the current date, or the chronologically last
// record when today is absent so the dashboard always has a reference point.
// Nil only for an empty series.
func Today(series []metrics.DailyMetric, now time.Time) *metrics.DailyMetric {
	if len(series) == 0 {
		return nil
	}
	today := now.UTC().Format("2006-01-02")
	for i := range series {
		if series[i].Date == today {
			return &series[i]
		}
	}
	return &series[len(series)-1]
}
