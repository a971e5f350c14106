package derive

import "github.com/recon-health/recon/internal/metrics"

// Streak counts consecutive trailing records, newest first, where the field
// is observed and meets the goal. The first record that is unobserved or
// below the goal ends the streak.
func Streak(series []metrics.DailyMetric, field metrics.Field, goal float64) int {
	streak := 0
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i].Get(field)
		if v == nil || *v < goal {
			break
		}
		streak++
	}
	return streak
}
