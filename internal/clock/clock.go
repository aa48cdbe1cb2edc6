// Package clock implements the simulation clock and the time-series lookup
// contract used by every other package to translate wall-clock-like day/hour
// coordinates into timestep indices. It generalises the teacher's
// internal/store time-range/binary-search idiom (store.go's
// ReadingsInRange/ReadingAt) from wall-clock time.Time values to the
// model's day-fraction simulation time.
package clock

import (
	"fmt"
	"math"
)

// SimTime is the immutable (start_day, end_day, timestep_h) tuple that
// drives the whole run. Day 0 hour 0 is the start of the modelled year.
type SimTime struct {
	StartDay   int
	EndDay     int
	TimestepH  float64
}

// New validates and constructs a SimTime.
func New(startDay, endDay int, timestepH float64) (SimTime, error) {
	if timestepH <= 0 {
		return SimTime{}, fmt.Errorf("clock: timestep_h must be positive, got %v", timestepH)
	}
	if endDay < startDay {
		return SimTime{}, fmt.Errorf("clock: end_day %d before start_day %d", endDay, startDay)
	}
	return SimTime{StartDay: startDay, EndDay: endDay, TimestepH: timestepH}, nil
}

// TotalSteps is the number of timesteps covered by [StartDay, EndDay).
func (s SimTime) TotalSteps() int {
	totalHours := float64(s.EndDay-s.StartDay) * 24.0
	return int(math.Round(totalHours / s.TimestepH))
}

// StepsPerDay is the number of timesteps in one day.
func (s SimTime) StepsPerDay() int {
	return int(math.Round(24.0 / s.TimestepH))
}

// Step is one (index, simulation-hour, delta-hours) tuple yielded by Iter.
type Step struct {
	Idx   int
	Hour  float64 // hours since StartDay*24
	DayOfYear int
	HourOfDay float64
	Delta float64
}

// Iter calls fn once per timestep in order, stopping early if fn returns
// false. This mirrors the teacher's engine.go tick loop shape (a bounded
// sequential walk with a per-step callback) without the ticker/wallclock
// pacing, since the core here is a batch computation, not a live replay.
func (s SimTime) Iter(fn func(Step) bool) {
	total := s.TotalSteps()
	stepsPerDay := s.StepsPerDay()
	for i := 0; i < total; i++ {
		hour := float64(s.StartDay)*24.0 + float64(i)*s.TimestepH
		day := s.StartDay + i/stepsPerDay
		hourOfDay := hour - float64(day)*24.0
		st := Step{
			Idx:       i,
			Hour:      hour,
			DayOfYear: day,
			HourOfDay: hourOfDay,
			Delta:     s.TimestepH,
		}
		if !fn(st) {
			return
		}
	}
}

// IndexOf returns the index into an externally indexed series that starts
// at seriesStartDay with step seriesStepH, for the timestep at simulation
// hour simHour.
func IndexOf(simHour float64, seriesStartDay int, seriesStepH float64) int {
	offsetHours := simHour - float64(seriesStartDay)*24.0
	return int(math.Floor(offsetHours/seriesStepH + 1e-9))
}
