package clock

import "fmt"

// Series is an externally supplied time series: air temperature, wind,
// irradiance, cold-feed temperature, or a control schedule. Every series
// carries its own start day and step, independent of the simulation
// clock's timestep, and wraps around modulo its length the way a yearly
// profile repeats for a multi-year run.
//
// Grounded on store.Store's sorted-slice-plus-binary-search shape
// (store.go ReadingAt/ReadingsInRange), generalised from wall-clock
// time.Time keys to a (start_day, step_h) affine index.
type Series struct {
	StartDay int
	StepH    float64
	Values   []float64
}

// NewSeries validates and wraps a raw value slice.
func NewSeries(startDay int, stepH float64, values []float64) (Series, error) {
	if stepH <= 0 {
		return Series{}, fmt.Errorf("clock: series step_h must be positive, got %v", stepH)
	}
	if len(values) == 0 {
		return Series{}, fmt.Errorf("clock: series has no values")
	}
	return Series{StartDay: startDay, StepH: stepH, Values: values}, nil
}

// At returns the value in effect at simulation hour simHour, wrapping
// around the series modulo its length.
func (s Series) At(simHour float64) float64 {
	idx := IndexOf(simHour, s.StartDay, s.StepH)
	n := len(s.Values)
	idx = ((idx % n) + n) % n
	return s.Values[idx]
}

// AtIndex returns the value at a raw, already-wrapped index.
func (s Series) AtIndex(idx int) float64 {
	n := len(s.Values)
	idx = ((idx % n) + n) % n
	return s.Values[idx]
}

// Len reports the number of distinct samples in one period of the series.
func (s Series) Len() int {
	return len(s.Values)
}
