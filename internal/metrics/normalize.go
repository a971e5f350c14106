package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order by NormalizeDate. The HAE REST API emits
// "2006-01-02 15:04:05 -0700"; CSV exports usually carry plain dates or full
// ISO timestamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate canonicalizes a vendor date string to YYYY-MM-DD. Timestamps
// with an offset are shifted to UTC before the time of day is dropped. On an
// unrecognized ISO shape it falls back to DD/MM/YYYY positional parsing, and
// finally returns the input unchanged. It never fails.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}

	// DD/MM/YYYY with optional missing zero padding.
	if parts := strings.Split(s, "/"); len(parts) == 3 {
		day, month, year := parts[0], parts[1], parts[2]
		if len(day) == 1 {
			day = "0" + day
		}
		if len(month) == 1 {
			month = "0" + month
		}
		return fmt.Sprintf("%s-%s-%s", year, month, day)
	}

	return raw
}

// ParseNumber coerces a raw scalar to a float. Empty strings and anything
// non-numeric report ok=false instead of an error; a single bad cell must
// never fail a row. NaN and infinities are rejected so only finite values
// reach a record.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// HoursToMinutes disambiguates HAE sleep values, which arrive in hours or
// minutes with no unit flag. Anything under 24 is taken as hours (no single
// sleep session exceeds a day); anything else is passed through as minutes.
// This is a known approximation inherited from the vendor format, kept
// deliberately so stored values stay comparable across imports.
func HoursToMinutes(v float64) float64 {
	if v < 24 {
		return math.Round(v * 60)
	}
	return math.Round(v)
}
