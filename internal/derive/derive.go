// Package derive computes dashboard aggregates over a canonical daily series:
// weight trends and rate, goal projection, time-range filtering, personal
// records, streaks, and comparison deltas. Every function is pure and
// recomputes from scratch on each call; functions that depend on the current
// day take it as a parameter.
package derive

import "math"

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
