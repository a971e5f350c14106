package metrics

import (
	"errors"
	"testing"
)

// TestDetectShapeOrder verifies the discriminator checks data.metrics first,
// then metrics, then array-ness, and that the checks are mutually exclusive.
func TestDetectShapeOrder(t *testing.T) {
	cases := map[string]DocumentShape{
		`{"data":{"metrics":[]}}`:              ShapeNestedMetrics,
		`{"metrics":[]}`:                       ShapeFlatMetrics,
		`{"data":{"metrics":[]},"metrics":[]}`: ShapeNestedMetrics,
		`[{"date":"2024-01-01"}]`:              ShapeDailyArray,
		`{"something":"else"}`:                 ShapeUnknown,
		`{"data":{"metrics":"not-an-array"}}`:  ShapeUnknown,
	}
	for body, want := range cases {
		if got := DetectShape([]byte(body)); got != want {
			t.Errorf("DetectShape(%s) = %d, want %d", body, got, want)
		}
	}
}

// TestParseJSONNestedStandard verifies the HAE standard layout with a qty
// metric resolves through the grouped mapping table.
func TestParseJSONNestedStandard(t *testing.T) {
	body := `{"data":{"metrics":[
		{"name":"step_count","units":"count","data":[
			{"date":"2024-01-01","qty":12345},
			{"date":"2024-01-02","qty":8000}
		]}
	]}}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len = %d, want 2", len(series))
	}
	if series[0].Steps == nil || *series[0].Steps != 12345 {
		t.Errorf("steps = %v, want 12345", series[0].Steps)
	}
}

// TestParseJSONHeartRateGroup verifies that one heart_rate data point fans
// out into the min/max/avg fields of a single record.
func TestParseJSONHeartRateGroup(t *testing.T) {
	body := `{"metrics":[
		{"name":"heart_rate","data":[{"date":"2024-01-01","min":55,"max":130,"avg":72}]}
	]}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("len = %d, want 1", len(series))
	}
	m := series[0]
	if m.HeartRateMin == nil || *m.HeartRateMin != 55 {
		t.Errorf("heartRateMin = %v, want 55", m.HeartRateMin)
	}
	if m.HeartRateMax == nil || *m.HeartRateMax != 130 {
		t.Errorf("heartRateMax = %v, want 130", m.HeartRateMax)
	}
	if m.HeartRateAvg == nil || *m.HeartRateAvg != 72 {
		t.Errorf("heartRateAvg = %v, want 72", m.HeartRateAvg)
	}
}

// TestParseJSONSleepConversion verifies grouped sleep metrics apply the
// hours→minutes converter.
func TestParseJSONSleepConversion(t *testing.T) {
	body := `{"metrics":[
		{"name":"sleep_analysis","data":[{"date":"2024-01-01","asleep":7.5,"inBed":8}]}
	]}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series[0].SleepDuration == nil || *series[0].SleepDuration != 450 {
		t.Errorf("sleepDuration = %v, want 450", series[0].SleepDuration)
	}
	if series[0].SleepInBed == nil || *series[0].SleepInBed != 480 {
		t.Errorf("sleepInBed = %v, want 480", series[0].SleepInBed)
	}
}

// TestParseJSONDailyArrayRoundTrip verifies the flat daily-record layout:
// exactly the given dates, steps, and weights are set and nothing else.
func TestParseJSONDailyArrayRoundTrip(t *testing.T) {
	body := `[
		{"date":"2024-01-01","steps":9000,"weight":82.4},
		{"date":"2024-01-02","steps":11000,"weight":82.1}
	]`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len = %d, want 2", len(series))
	}
	for i, m := range series {
		if m.Steps == nil || m.Weight == nil {
			t.Fatalf("record %d missing steps or weight", i)
		}
		for _, f := range NumericFields {
			if f == FieldSteps || f == FieldWeight {
				continue
			}
			if m.Get(f) != nil {
				t.Errorf("record %d: field %s = %v, want unset", i, f, *m.Get(f))
			}
		}
	}
}

// TestParseJSONIgnoredMetric verifies a recognized-but-ignored metric (empty
// rule list) writes no fields and does not fall back to the flat table.
func TestParseJSONIgnoredMetric(t *testing.T) {
	body := `{"metrics":[
		{"name":"lean_body_mass","data":[{"date":"2024-01-01","qty":64.2}]}
	]}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("len = %d, want 1 date-only record", len(series))
	}
	for _, f := range NumericFields {
		if series[0].Get(f) != nil {
			t.Errorf("field %s set for ignored metric", f)
		}
	}
}

// TestParseJSONUnknownMetricFallback verifies an unknown group name resolves
// through the flat column table, reading qty/value/avg in order.
func TestParseJSONUnknownMetricFallback(t *testing.T) {
	body := `{"metrics":[
		{"name":"blood_oxygen","data":[{"date":"2024-01-01","avg":97.5}]},
		{"name":"totally_new_metric","data":[{"date":"2024-01-01","qty":5}]}
	]}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series[0].BloodOxygen == nil || *series[0].BloodOxygen != 97.5 {
		t.Errorf("bloodOxygen = %v, want 97.5", series[0].BloodOxygen)
	}
}

// TestParseJSONValueKeyFallback verifies the named value key falls back to
// qty, then value, then avg only when the key is absent.
func TestParseJSONValueKeyFallback(t *testing.T) {
	// resting_heart_rate reads "avg" first; here only "qty" is present.
	body := `{"metrics":[
		{"name":"resting_heart_rate","data":[{"date":"2024-01-01","qty":58}]}
	]}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series[0].RestingHeartRate == nil || *series[0].RestingHeartRate != 58 {
		t.Errorf("restingHeartRate = %v, want 58", series[0].RestingHeartRate)
	}
}

// TestParseJSONMalformed verifies a top-level syntax failure is a typed
// error, unlike per-point anomalies.
func TestParseJSONMalformed(t *testing.T) {
	if _, err := ParseJSON(`{"data":`); !errors.Is(err, ErrMalformedJSON) {
		t.Errorf("err = %v, want ErrMalformedJSON", err)
	}
}

// TestParseJSONUnknownShape verifies an unsupported but valid layout yields
// an empty result, not an error.
func TestParseJSONUnknownShape(t *testing.T) {
	series, err := ParseJSON(`{"hello":"world"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("len = %d, want 0", len(series))
	}
}

// TestParseJSONSkipsBadPoints verifies that points without dates and groups
// whose data is not a list are skipped without aborting the document.
func TestParseJSONSkipsBadPoints(t *testing.T) {
	body := `{"metrics":[
		{"name":"step_count","data":"not-a-list"},
		{"name":"step_count","data":[{"qty":999},{"date":"2024-01-03","qty":7000}]},
		{"data":[{"date":"2024-01-04","qty":1}]}
	]}`
	series, err := ParseJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Date != "2024-01-03" {
		t.Fatalf("series = %v, want single 2024-01-03 record", series)
	}
	if series[0].Steps == nil || *series[0].Steps != 7000 {
		t.Errorf("steps = %v, want 7000", series[0].Steps)
	}
}
