package metrics

// Merge combines an existing canonical series with freshly parsed partial
// records. For each date, incoming fields that are defined override the
// stored value; undefined incoming fields preserve it. When two batches
// define the same field for the same date, whichever was applied last wins —
// accepted policy, the core keeps no field-level provenance. The result is
// the full date-keyed set sorted ascending by date.
func Merge(existing, incoming []DailyMetric) []DailyMetric {
	byDate := make(map[string]*DailyMetric, len(existing)+len(incoming))

	for _, m := range existing {
		copied := m
		byDate[m.Date] = &copied
	}
	for _, m := range incoming {
		applyPartial(byDate, m)
	}

	return collectSorted(byDate)
}
