package metrics

import "testing"

// TestParseDispatchByHint verifies explicit hints and filename extensions
// pick the right parser.
func TestParseDispatchByHint(t *testing.T) {
	csvBody := "date,steps\n2024-01-01,9000\n"
	jsonBody := `[{"date":"2024-01-01","steps":9000}]`

	for _, hint := range []string{"csv", "text/csv; charset=utf-8", "export.CSV"} {
		series, err := Parse(csvBody, hint)
		if err != nil {
			t.Fatalf("hint %q: unexpected error: %v", hint, err)
		}
		if len(series) != 1 || series[0].Steps == nil {
			t.Errorf("hint %q: series = %v", hint, series)
		}
	}
	for _, hint := range []string{"json", "application/json", "HealthAutoExport.json"} {
		series, err := Parse(jsonBody, hint)
		if err != nil {
			t.Fatalf("hint %q: unexpected error: %v", hint, err)
		}
		if len(series) != 1 || series[0].Steps == nil {
			t.Errorf("hint %q: series = %v", hint, series)
		}
	}
}

// TestParseAmbiguousFallsBackToCSV verifies ambiguous input tries JSON first
// and silently falls back to CSV.
func TestParseAmbiguousFallsBackToCSV(t *testing.T) {
	series, err := Parse("date,steps\n2024-01-01,9000\n", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Steps == nil || *series[0].Steps != 9000 {
		t.Errorf("series = %v, want one CSV-parsed record", series)
	}
}

// TestParseAmbiguousJSONWins verifies valid JSON is not shoved through the
// CSV path when no hint is given.
func TestParseAmbiguousJSONWins(t *testing.T) {
	series, err := Parse(`[{"date":"2024-01-01","weight":82}]`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Weight == nil || *series[0].Weight != 82 {
		t.Errorf("series = %v, want one JSON-parsed record", series)
	}
}

// TestParseForcedJSONSurfacesError verifies an explicit json hint does not
// fall back: the malformed document error reaches the caller.
func TestParseForcedJSONSurfacesError(t *testing.T) {
	if _, err := Parse("date,steps\n2024-01-01,9000\n", "json"); err == nil {
		t.Error("expected error for CSV body forced through JSON parsing")
	}
}
