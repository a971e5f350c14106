package derive

import (
	"math"
	"time"

	"github.com/recon-health/recon/internal/metrics"
)

// WeightTrend is one smoothed point of the weight series.
type WeightTrend struct {
	Date         string  `json:"date"`
	Weight       float64 `json:"weight"`
	MovingAvg7d  float64 `json:"movingAvg7d"`
	MovingAvg30d float64 `json:"movingAvg30d"`
}

// WeightTrendSeries filters the series to records with an observed weight and
// attaches 7-point and 30-point trailing averages. The windows run over the
// weight-only sequence, not calendar days, and shrink at the start of the
// series instead of forward-filling.
func WeightTrendSeries(series []metrics.DailyMetric) []WeightTrend {
	var weights []float64
	var dates []string
	for _, m := range series {
		if m.Weight != nil {
			weights = append(weights, *m.Weight)
			dates = append(dates, m.Date)
		}
	}
	if len(weights) == 0 {
		return nil
	}

	trend := make([]WeightTrend, len(weights))
	for i := range weights {
		start7 := max(0, i-6)
		start30 := max(0, i-29)
		trend[i] = WeightTrend{
			Date:         dates[i],
			Weight:       weights[i],
			MovingAvg7d:  round1(mean(weights[start7 : i+1])),
			MovingAvg30d: round1(mean(weights[start30 : i+1])),
		}
	}
	return trend
}

// WeightRate estimates the weekly rate of change in kg/week by comparing the
// mean of the last seven smoothed points against the mean of the seven before
// them. Negative means losing weight. With fewer than seven points in either
// window the rate is 0.
func WeightRate(trend []WeightTrend) float64 {
	if len(trend) < 7 {
		return 0
	}
	recent := trend[len(trend)-7:]
	olderStart := len(trend) - 14
	if olderStart < 0 {
		olderStart = 0
	}
	older := trend[olderStart : len(trend)-7]
	if len(older) == 0 {
		return 0
	}
	return round2(avg7d(recent) - avg7d(older))
}

func avg7d(points []WeightTrend) float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.MovingAvg7d
	}
	return mean(vals)
}

// GoalProjection is the outcome of projecting the current weight rate toward
// a target weight.
type GoalProjection struct {
	Reached bool   `json:"reached"`
	Month   string `json:"month,omitempty"` // e.g. "Mar 2026"
}

// ProjectGoalDate projects when the 7-day average reaches goalWeight at the
// current rate, formatted as month and year. It returns nil when the trend is
// too short (<14 points) or the rate is not downward; Reached is set when the
// smoothed weight is already at or below the goal.
func ProjectGoalDate(trend []WeightTrend, goalWeight float64, now time.Time) *GoalProjection {
	if len(trend) < 14 {
		return nil
	}
	rate := WeightRate(trend)
	if rate >= 0 {
		return nil
	}

	kgToLose := trend[len(trend)-1].MovingAvg7d - goalWeight
	if kgToLose <= 0 {
		return &GoalProjection{Reached: true}
	}

	weeksNeeded := kgToLose / math.Abs(rate)
	target := now.AddDate(0, 0, int(math.Round(weeksNeeded*7)))
	return &GoalProjection{Month: target.Format("Jan 2006")}
}
