package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ParseCSV reads a Health Auto Export CSV dump (header row required) and
// returns one DailyMetric per date, sorted chronologically. Columns whose
// header does not resolve through the flat mapping table are dropped, rows
// without a resolvable date are skipped, and malformed cells leave the single
// field unset rather than failing the row.
func ParseCSV(text string) ([]DailyMetric, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrNoRows)
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrNoRows, err)
	}

	byDate := make(map[string]*DailyMetric)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Structurally broken line; best-effort parsing moves on.
			continue
		}

		partial := parseCSVRow(header, row)
		if partial == nil {
			continue
		}
		applyPartial(byDate, *partial)
	}

	return collectSorted(byDate), nil
}

// parseCSVRow builds a partial record from one data row, or nil when the row
// carries no resolvable date.
func parseCSVRow(header, row []string) *DailyMetric {
	var partial DailyMetric
	for i, cell := range row {
		if i >= len(header) || cell == "" {
			continue
		}
		field, ok := columnField(header[i])
		if !ok {
			continue
		}
		if field == FieldDate {
			partial.Date = NormalizeDate(cell)
			continue
		}
		v, ok := ParseNumber(cell)
		if !ok {
			continue
		}
		// Columns named like "Sleep Analysis [Asleep] (hr)" are always hours,
		// regardless of magnitude. This overrides the <24 heuristic.
		if strings.Contains(header[i], "(hr)") && isSleepDurationField(field) {
			v = math.Round(v * 60)
		}
		partial.Set(field, v)
	}
	if partial.Date == "" {
		return nil
	}
	return &partial
}

func isSleepDurationField(f Field) bool {
	return f == FieldSleepDuration || f == FieldSleepInBed
}

// applyPartial folds a partial record into the per-date accumulator with
// defined-value-wins semantics: the last writer for a date overrides only the
// fields it actually observed.
func applyPartial(byDate map[string]*DailyMetric, partial DailyMetric) {
	existing, ok := byDate[partial.Date]
	if !ok {
		existing = &DailyMetric{Date: partial.Date}
		byDate[partial.Date] = existing
	}
	for _, f := range NumericFields {
		if v := partial.Get(f); v != nil {
			existing.Set(f, *v)
		}
	}
}

func collectSorted(byDate map[string]*DailyMetric) []DailyMetric {
	out := make([]DailyMetric, 0, len(byDate))
	for _, m := range byDate {
		out = append(out, *m)
	}
	sortByDate(out)
	return out
}
