package derive

import (
	"fmt"
	"math"

	"github.com/recon-health/recon/internal/metrics"
)

// PersonalRecord is an extremal snapshot for one tracked metric.
type PersonalRecord struct {
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
	Display string  `json:"display"` // human form, e.g. "7h 30m" for sleep
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit,omitempty"`
}

type recordSpec struct {
	metric  string
	field   metrics.Field
	label   string
	unit    string
	lowest  bool
	display func(float64) string
}

var recordSpecs = []recordSpec{
	{metric: "weight", field: metrics.FieldWeight, label: "Lowest Weight", unit: "kg", lowest: true},
	{metric: "steps", field: metrics.FieldSteps, label: "Most Steps"},
	{metric: "rhr", field: metrics.FieldRestingHeartRate, label: "Lowest RHR", unit: "bpm", lowest: true},
	{metric: "sleep", field: metrics.FieldSleepDuration, label: "Best Sleep", display: FormatMinutes},
	{metric: "calories", field: metrics.FieldActiveCalories, label: "Most Cals Burned", unit: "kcal"},
	{metric: "flights", field: metrics.FieldFlightsClimbed, label: "Most Flights"},
}

// PersonalRecords scans the series for each tracked metric's extremal record.
// Metrics with no observed values are omitted; on ties the first (earliest)
// occurrence wins.
func PersonalRecords(series []metrics.DailyMetric) []PersonalRecord {
	if len(series) == 0 {
		return nil
	}

	var records []PersonalRecord
	for _, spec := range recordSpecs {
		bestDate := ""
		bestVal := 0.0
		for _, m := range series {
			v := m.Get(spec.field)
			if v == nil {
				continue
			}
			if bestDate == "" || (spec.lowest && *v < bestVal) || (!spec.lowest && *v > bestVal) {
				bestDate, bestVal = m.Date, *v
			}
		}
		if bestDate == "" {
			continue
		}

		rec := PersonalRecord{
			Metric: spec.metric,
			Value:  bestVal,
			Date:   bestDate,
			Label:  spec.label,
			Unit:   spec.unit,
		}
		if spec.display != nil {
			rec.Display = spec.display(bestVal)
		} else {
			rec.Display = trimFloat(bestVal)
		}
		records = append(records, rec)
	}
	return records
}

// FormatMinutes renders a minute count as "7h 30m".
func FormatMinutes(mins float64) string {
	total := int(math.Round(mins))
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
