package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DocumentShape identifies which of the recognized JSON export layouts a body
// uses. Detection checks data.metrics first, then a top-level metrics array,
// then a top-level array of daily records; the first match wins.
type DocumentShape int

const (
	ShapeUnknown       DocumentShape = iota // valid JSON, unsupported layout
	ShapeNestedMetrics                      // {"data":{"metrics":[...]}}
	ShapeFlatMetrics                        // {"metrics":[...]}
	ShapeDailyArray                         // [{"date":...,"steps":...},...]
)

// jsonEnvelope probes the wrapper keys without committing to a layout.
type jsonEnvelope struct {
	Data struct {
		Metrics json.RawMessage `json:"metrics"`
	} `json:"data"`
	Metrics json.RawMessage `json:"metrics"`
}

// metricGroup is one named metric with its data points. Data stays raw so a
// group whose payload is not a list can be skipped without failing the
// document.
type metricGroup struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// DetectShape classifies a JSON body. It assumes the body already passed a
// top-level syntax check.
func DetectShape(raw []byte) DocumentShape {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return ShapeDailyArray
	}

	var env jsonEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ShapeUnknown
	}
	if isJSONArray(env.Data.Metrics) {
		return ShapeNestedMetrics
	}
	if isJSONArray(env.Metrics) {
		return ShapeFlatMetrics
	}
	return ShapeUnknown
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// ParseJSON accepts any of the recognized export layouts and normalizes them
// to the same per-date records as the CSV parser. A body that fails the
// top-level syntax check returns ErrMalformedJSON; an unsupported layout
// yields an empty result. Per-point anomalies never abort the remaining
// input.
func ParseJSON(text string) ([]DailyMetric, error) {
	raw := []byte(text)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid syntax", ErrMalformedJSON)
	}

	byDate := make(map[string]*DailyMetric)

	switch DetectShape(raw) {
	case ShapeDailyArray:
		var rows []json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, nil
		}
		for _, rowRaw := range rows {
			var row map[string]any
			if err := json.Unmarshal(rowRaw, &row); err != nil {
				continue // non-object element
			}
			parseDailyRow(byDate, row)
		}

	case ShapeNestedMetrics, ShapeFlatMetrics:
		groups := extractGroups(raw)
		for _, g := range groups {
			parseMetricGroup(byDate, g)
		}

	default:
		return nil, nil
	}

	return collectSorted(byDate), nil
}

func extractGroups(raw []byte) []metricGroup {
	var env jsonEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	groupsRaw := env.Data.Metrics
	if !isJSONArray(groupsRaw) {
		groupsRaw = env.Metrics
	}
	var groups []metricGroup
	if err := json.Unmarshal(groupsRaw, &groups); err != nil {
		return nil
	}
	return groups
}

// parseDailyRow handles one element of the flat daily-record array layout.
func parseDailyRow(byDate map[string]*DailyMetric, row map[string]any) {
	dateStr := firstDateKey(row, "date", "Date", "dateString")
	if dateStr == "" {
		return
	}
	partial := DailyMetric{Date: NormalizeDate(dateStr)}

	for key, value := range row {
		field, ok := columnField(key)
		if !ok || field == FieldDate {
			continue
		}
		if v, ok := numberValue(value); ok {
			partial.Set(field, v)
		}
	}
	applyPartial(byDate, partial)
}

// parseMetricGroup handles one named metric group from the nested or flat
// metrics layouts. Unknown metric names fall back to the flat column table;
// names mapped to an empty rule list are recognized and intentionally
// ignored.
func parseMetricGroup(byDate map[string]*DailyMetric, g metricGroup) {
	name := strings.ToLower(strings.TrimSpace(g.Name))
	if name == "" {
		return
	}
	var points []json.RawMessage
	if err := json.Unmarshal(g.Data, &points); err != nil {
		return // data is not a list
	}

	rules, known := metricRules(name)

	for _, pointRaw := range points {
		var point map[string]any
		if err := json.Unmarshal(pointRaw, &point); err != nil {
			continue
		}
		dateStr := firstDateKey(point, "date", "Date")
		if dateStr == "" {
			continue
		}
		partial := DailyMetric{Date: NormalizeDate(dateStr)}

		if known {
			for _, rule := range rules {
				v, ok := pointValue(point, rule.ValueKey)
				if !ok {
					continue
				}
				if rule.Convert != nil {
					v = rule.Convert(v)
				}
				if !math.IsNaN(v) && !math.IsInf(v, 0) {
					partial.Set(rule.Field, v)
				}
			}
		} else if field, ok := columnField(name); ok && field != FieldDate {
			if v, ok := pointValue(point, "qty"); ok {
				partial.Set(field, v)
			}
		}

		applyPartial(byDate, partial)
	}
}

// pointValue reads a data point value by the named key, falling back to qty,
// value, then avg when the key is absent. Fallback happens only on absence;
// a present-but-unparseable value yields no number.
func pointValue(point map[string]any, key string) (float64, bool) {
	for _, k := range []string{key, "qty", "value", "avg"} {
		if raw, present := point[k]; present && raw != nil {
			return numberValue(raw)
		}
	}
	return 0, false
}

// firstDateKey returns the first non-empty string value among the candidate
// keys, in priority order.
func firstDateKey(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := row[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// numberValue coerces a decoded JSON scalar to a finite float.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		return ParseNumber(n)
	case json.Number:
		return ParseNumber(n.String())
	}
	return 0, false
}
