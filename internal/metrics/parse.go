package metrics

import (
	"path/filepath"
	"strings"
)

// Parse dispatches raw export text to the right format parser. The hint may
// be a literal "csv" or "json", a content type, or a filename whose extension
// decides. When the format stays ambiguous, JSON is attempted first and CSV
// is the silent fallback; only a body neither parser can read surfaces an
// error.
func Parse(text string, sourceHint string) ([]DailyMetric, error) {
	switch detectFormat(sourceHint) {
	case "csv":
		return ParseCSV(text)
	case "json":
		return ParseJSON(text)
	}

	if series, err := ParseJSON(text); err == nil {
		return series, nil
	}
	return ParseCSV(text)
}

func detectFormat(hint string) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	switch {
	case h == "csv" || strings.Contains(h, "text/csv"):
		return "csv"
	case h == "json" || strings.Contains(h, "application/json"):
		return "json"
	}
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(h)), ".") {
	case "csv":
		return "csv"
	case "json":
		return "json"
	}
	return ""
}
