// Package metrics holds the canonical per-day health record model and the
// parsing/normalization pipeline that maps Health Auto Export CSV and JSON
// dumps onto it.
package metrics

import "sort"

// Field identifies one canonical metric key on a DailyMetric.
type Field string

const (
	FieldDate             Field = "date"
	FieldWeight           Field = "weight"
	FieldBodyFat          Field = "bodyFat"
	FieldSteps            Field = "steps"
	FieldActiveCalories   Field = "activeCalories"
	FieldBasalCalories    Field = "basalCalories"
	FieldDistance         Field = "distance"
	FieldFlightsClimbed   Field = "flightsClimbed"
	FieldRestingHeartRate Field = "restingHeartRate"
	FieldHeartRateMin     Field = "heartRateMin"
	FieldHeartRateMax     Field = "heartRateMax"
	FieldHeartRateAvg     Field = "heartRateAvg"
	FieldSleepDuration    Field = "sleepDuration"
	FieldSleepInBed       Field = "sleepInBed"
	FieldSleepDeep        Field = "sleepDeep"
	FieldSleepLight       Field = "sleepLight"
	FieldSleepREM         Field = "sleepREM"
	FieldSleepAwake       Field = "sleepAwake"
	FieldBloodOxygen      Field = "bloodOxygen"
)

// NumericFields lists every canonical field except the date key, in a stable
// order used by the merger and the storage adapters.
var NumericFields = []Field{
	FieldWeight, FieldBodyFat, FieldSteps, FieldActiveCalories,
	FieldBasalCalories, FieldDistance, FieldFlightsClimbed,
	FieldRestingHeartRate, FieldHeartRateMin, FieldHeartRateMax,
	FieldHeartRateAvg, FieldSleepDuration, FieldSleepInBed, FieldSleepDeep,
	FieldSleepLight, FieldSleepREM, FieldSleepAwake, FieldBloodOxygen,
}

// DailyMetric is one record per calendar date. A nil field means "not
// observed" for that day; fields are never zero-filled.
type DailyMetric struct {
	Date             string   `json:"date"`                       // YYYY-MM-DD
	Weight           *float64 `json:"weight,omitempty"`           // kg
	BodyFat          *float64 `json:"bodyFat,omitempty"`          // percent
	Steps            *float64 `json:"steps,omitempty"`            // count
	ActiveCalories   *float64 `json:"activeCalories,omitempty"`   // kcal
	BasalCalories    *float64 `json:"basalCalories,omitempty"`    // kcal
	Distance         *float64 `json:"distance,omitempty"`         // km
	FlightsClimbed   *float64 `json:"flightsClimbed,omitempty"`   // count
	RestingHeartRate *float64 `json:"restingHeartRate,omitempty"` // bpm
	HeartRateMin     *float64 `json:"heartRateMin,omitempty"`     // bpm
	HeartRateMax     *float64 `json:"heartRateMax,omitempty"`     // bpm
	HeartRateAvg     *float64 `json:"heartRateAvg,omitempty"`     // bpm
	SleepDuration    *float64 `json:"sleepDuration,omitempty"`    // minutes
	SleepInBed       *float64 `json:"sleepInBed,omitempty"`       // minutes
	SleepDeep        *float64 `json:"sleepDeep,omitempty"`        // minutes
	SleepLight       *float64 `json:"sleepLight,omitempty"`       // minutes
	SleepREM         *float64 `json:"sleepREM,omitempty"`         // minutes
	SleepAwake       *float64 `json:"sleepAwake,omitempty"`       // minutes
	BloodOxygen      *float64 `json:"bloodOxygen,omitempty"`      // percent
}

// Set assigns a numeric field by its canonical key. Unknown keys and the date
// key are ignored; input columns outside the enumeration never land on a
// record through here.
func (m *DailyMetric) Set(f Field, v float64) {
	switch f {
	case FieldWeight:
		m.Weight = &v
	case FieldBodyFat:
		m.BodyFat = &v
	case FieldSteps:
		m.Steps = &v
	case FieldActiveCalories:
		m.ActiveCalories = &v
	case FieldBasalCalories:
		m.BasalCalories = &v
	case FieldDistance:
		m.Distance = &v
	case FieldFlightsClimbed:
		m.FlightsClimbed = &v
	case FieldRestingHeartRate:
		m.RestingHeartRate = &v
	case FieldHeartRateMin:
		m.HeartRateMin = &v
	case FieldHeartRateMax:
		m.HeartRateMax = &v
	case FieldHeartRateAvg:
		m.HeartRateAvg = &v
	case FieldSleepDuration:
		m.SleepDuration = &v
	case FieldSleepInBed:
		m.SleepInBed = &v
	case FieldSleepDeep:
		m.SleepDeep = &v
	case FieldSleepLight:
		m.SleepLight = &v
	case FieldSleepREM:
		m.SleepREM = &v
	case FieldSleepAwake:
		m.SleepAwake = &v
	case FieldBloodOxygen:
		m.BloodOxygen = &v
	}
}

// Get returns the value of a numeric field, or nil when it is not observed.
func (m *DailyMetric) Get(f Field) *float64 {
	switch f {
	case FieldWeight:
		return m.Weight
	case FieldBodyFat:
		return m.BodyFat
	case FieldSteps:
		return m.Steps
	case FieldActiveCalories:
		return m.ActiveCalories
	case FieldBasalCalories:
		return m.BasalCalories
	case FieldDistance:
		return m.Distance
	case FieldFlightsClimbed:
		return m.FlightsClimbed
	case FieldRestingHeartRate:
		return m.RestingHeartRate
	case FieldHeartRateMin:
		return m.HeartRateMin
	case FieldHeartRateMax:
		return m.HeartRateMax
	case FieldHeartRateAvg:
		return m.HeartRateAvg
	case FieldSleepDuration:
		return m.SleepDuration
	case FieldSleepInBed:
		return m.SleepInBed
	case FieldSleepDeep:
		return m.SleepDeep
	case FieldSleepLight:
		return m.SleepLight
	case FieldSleepREM:
		return m.SleepREM
	case FieldSleepAwake:
		return m.SleepAwake
	case FieldBloodOxygen:
		return m.BloodOxygen
	}
	return nil
}

// Goals holds the user-configured targets the derive layer measures against.
// A nil field means "not set"; callers supply defaults.
type Goals struct {
	TargetWeight  *float64 `json:"targetWeight,omitempty"` // kg
	TargetDate    string   `json:"targetDate,omitempty"`   // YYYY-MM-DD
	DailySteps    *float64 `json:"dailySteps,omitempty"`
	DailyCalories *float64 `json:"dailyCalories,omitempty"` // active kcal
	DailySleep    *float64 `json:"dailySleep,omitempty"`    // minutes
}

// sortByDate orders records ascending by date string. Dates are zero-padded
// ISO, so lexicographic order is chronological order.
func sortByDate(series []DailyMetric) {
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
}
