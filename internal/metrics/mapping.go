package metrics

import "strings"

// fieldByColumn maps vendor CSV column names (and flat-JSON keys) to canonical
// fields. Lookups are exact; Health Auto Export has shipped several namings
// for the same metric over the years, so many-to-one entries are expected.
var fieldByColumn = map[string]Field{
	"date": FieldDate,
	"Date": FieldDate,

	"weight":         FieldWeight,
	"Weight":         FieldWeight,
	"weight_kg":      FieldWeight,
	"Weight (kg)":    FieldWeight,
	"body_mass":      FieldWeight,
	"Body Mass (kg)": FieldWeight,

	"body_fat_percentage": FieldBodyFat,
	"Body Fat Percentage": FieldBodyFat,
	"body_fat":            FieldBodyFat,

	"step_count": FieldSteps,
	"Step Count": FieldSteps,
	"steps":      FieldSteps,
	"Steps":      FieldSteps,

	"active_energy":               FieldActiveCalories,
	"Active Energy (kcal)":        FieldActiveCalories,
	"active_energy_burned":        FieldActiveCalories,
	"Active Energy Burned (kcal)": FieldActiveCalories,

	"basal_energy_burned":        FieldBasalCalories,
	"Basal Energy Burned (kcal)": FieldBasalCalories,

	"walking_running_distance":        FieldDistance,
	"Walking + Running Distance (km)": FieldDistance,
	"distance_walking_running":        FieldDistance,

	"flights_climbed": FieldFlightsClimbed,
	"Flights Climbed": FieldFlightsClimbed,

	"resting_heart_rate":       FieldRestingHeartRate,
	"Resting Heart Rate (bpm)": FieldRestingHeartRate,

	"heart_rate_min":         FieldHeartRateMin,
	"heart_rate_max":         FieldHeartRateMax,
	"heart_rate_avg":         FieldHeartRateAvg,
	"Heart Rate [Min] (bpm)": FieldHeartRateMin,
	"Heart Rate [Max] (bpm)": FieldHeartRateMax,
	"Heart Rate [Avg] (bpm)": FieldHeartRateAvg,

	"sleep_duration":               FieldSleepDuration,
	"Sleep Duration (min)":         FieldSleepDuration,
	"sleep_analysis_asleep":        FieldSleepDuration,
	"Sleep Analysis [Asleep] (hr)": FieldSleepDuration,
	"sleep_analysis_inbed":         FieldSleepInBed,
	"Sleep Analysis [In Bed] (hr)": FieldSleepInBed,
	"sleep_deep":                   FieldSleepDeep,
	"sleep_light":                  FieldSleepLight,
	"sleep_rem":                    FieldSleepREM,
	"sleep_awake":                  FieldSleepAwake,

	"blood_oxygen":      FieldBloodOxygen,
	"Blood Oxygen (%)":  FieldBloodOxygen,
	"oxygen_saturation": FieldBloodOxygen,
}

// columnField resolves a column name against the flat table, retrying with
// surrounding whitespace stripped.
func columnField(name string) (Field, bool) {
	if f, ok := fieldByColumn[name]; ok {
		return f, true
	}
	f, ok := fieldByColumn[strings.TrimSpace(name)]
	return f, ok
}

// groupRule describes how one entry of a metric group expands into a
// canonical field: which key of the data point to read and an optional unit
// conversion.
type groupRule struct {
	Field    Field
	ValueKey string
	Convert  func(float64) float64
}

// rulesByMetric maps a lower-cased Health Auto Export metric name to its
// expansion rules. An entry with an empty rule list is recognized but
// intentionally ignored; it must not fall back to the flat column table.
var rulesByMetric = map[string][]groupRule{
	// Body
	"body_mass":           {{Field: FieldWeight, ValueKey: "qty"}},
	"weight":              {{Field: FieldWeight, ValueKey: "qty"}},
	"body_fat_percentage": {{Field: FieldBodyFat, ValueKey: "qty"}},
	"lean_body_mass":      {},
	"body_mass_index":     {},

	// Activity
	"step_count":               {{Field: FieldSteps, ValueKey: "qty"}},
	"active_energy_burned":     {{Field: FieldActiveCalories, ValueKey: "qty"}},
	"active_energy":            {{Field: FieldActiveCalories, ValueKey: "qty"}},
	"basal_energy_burned":      {{Field: FieldBasalCalories, ValueKey: "qty"}},
	"distance_walking_running": {{Field: FieldDistance, ValueKey: "qty"}},
	"walking_running_distance": {{Field: FieldDistance, ValueKey: "qty"}},
	"flights_climbed":          {{Field: FieldFlightsClimbed, ValueKey: "qty"}},

	// Heart. One heart_rate data point fans out into min/max/avg.
	"heart_rate": {
		{Field: FieldHeartRateMin, ValueKey: "min"},
		{Field: FieldHeartRateMax, ValueKey: "max"},
		{Field: FieldHeartRateAvg, ValueKey: "avg"},
	},
	"resting_heart_rate":          {{Field: FieldRestingHeartRate, ValueKey: "avg"}},
	"heart_rate_variability_sdnn": {},

	// Sleep. HAE reports these in hours; the store keeps minutes.
	"sleep_analysis": {
		{Field: FieldSleepDuration, ValueKey: "asleep", Convert: HoursToMinutes},
		{Field: FieldSleepInBed, ValueKey: "inBed", Convert: HoursToMinutes},
	},
	"sleep_analysis_asleep": {{Field: FieldSleepDuration, ValueKey: "qty", Convert: HoursToMinutes}},
	"sleep_analysis_inbed":  {{Field: FieldSleepInBed, ValueKey: "qty", Convert: HoursToMinutes}},
	"sleep_deep":            {{Field: FieldSleepDeep, ValueKey: "qty", Convert: HoursToMinutes}},
	"sleep_core":            {{Field: FieldSleepLight, ValueKey: "qty", Convert: HoursToMinutes}},
	"sleep_rem":             {{Field: FieldSleepREM, ValueKey: "qty", Convert: HoursToMinutes}},
	"sleep_awake":           {{Field: FieldSleepAwake, ValueKey: "qty", Convert: HoursToMinutes}},

	// Blood oxygen
	"oxygen_saturation": {{Field: FieldBloodOxygen, ValueKey: "avg"}},
	"blood_oxygen":      {{Field: FieldBloodOxygen, ValueKey: "avg"}},
}

// metricRules resolves a metric group name. ok reports whether the name is
// known at all, even when the rule list is empty.
func metricRules(name string) (rules []groupRule, ok bool) {
	rules, ok = rulesByMetric[name]
	return rules, ok
}
