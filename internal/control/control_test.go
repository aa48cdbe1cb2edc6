package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemcore/internal/clock"
)

func mustSeries(t *testing.T, startDay int, stepH float64, values []float64) clock.Series {
	t.Helper()
	s, err := clock.NewSeries(startDay, stepH, values)
	require.NoError(t, err)
	return s
}

func TestOnOff_IsOn(t *testing.T) {
	c := NewOnOff(mustSeries(t, 0, 1.0, []float64{0, 1, 0, 1}))
	assert.False(t, c.IsOn(0))
	assert.True(t, c.IsOn(1))
	assert.False(t, c.IsOn(2))
}

func TestSetpoint_ClampsToMinMax(t *testing.T) {
	c := Setpoint{
		Schedule: mustSeries(t, 0, 1.0, []float64{10, 30, math.NaN()}),
		Min:      15, Max: 25, HasMin: true, HasMax: true,
	}
	v, ok := c.Setpnt(0)
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	v, ok = c.Setpnt(1)
	require.True(t, ok)
	assert.Equal(t, 25.0, v)

	_, ok = c.Setpnt(2)
	assert.False(t, ok)
}

func TestSetpoint_DefaultToMaxWhenUnscheduled(t *testing.T) {
	c := Setpoint{
		Schedule:     mustSeries(t, 0, 1.0, []float64{math.NaN()}),
		Max:          21, HasMax: true,
		DefaultToMax: true,
	}
	v, ok := c.Setpnt(0)
	require.True(t, ok)
	assert.Equal(t, 21.0, v)
}

func TestSetpoint_InRequiredPeriod_AdvancedStart(t *testing.T) {
	c := Setpoint{
		Schedule:       mustSeries(t, 0, 1.0, []float64{math.NaN(), 20, math.NaN()}),
		AdvancedStartH: 1,
	}
	assert.False(t, c.InRequiredPeriod(2))
	assert.True(t, c.InRequiredPeriod(0))
	assert.True(t, c.InRequiredPeriod(1))
}

func TestCharge_TargetChargeLevel_ClampsToUnitInterval(t *testing.T) {
	c := Charge{
		ChargeWindow: mustSeries(t, 0, 1.0, []float64{1}),
		ChargeLevel:  mustSeries(t, 0, 1.0, []float64{1.5}),
	}
	assert.Equal(t, 1.0, c.TargetChargeLevel(0))
}

func TestCharge_TargetChargeLevel_AppliesTempCurve(t *testing.T) {
	c := Charge{
		ChargeWindow: mustSeries(t, 0, 1.0, []float64{1}),
		ChargeLevel:  mustSeries(t, 0, 1.0, []float64{1.0}),
		ExternalTemp: mustSeries(t, 0, 1.0, []float64{5}),
		TempChargeCurve: func(extTempC float64) float64 {
			return 0.5
		},
	}
	assert.Equal(t, 0.5, c.TargetChargeLevel(0))
}

func TestCostMinimising_PicksCheapestHours(t *testing.T) {
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = float64(24 - i) // hour 23 cheapest
	}
	c := CostMinimising{
		HourlyPrice:       mustSeries(t, 0, 1.0, prices),
		BudgetHoursPerDay: 1,
	}
	assert.True(t, c.IsOn(23))
	assert.False(t, c.IsOn(0))
}

func TestCombination_ANDandOR(t *testing.T) {
	on := NewOnOff(mustSeries(t, 0, 1.0, []float64{1}))
	off := NewOnOff(mustSeries(t, 0, 1.0, []float64{0}))

	and := Combination{Op: OpAND, Children: []Control{on, off}}
	assert.False(t, and.IsOn(0))

	or := Combination{Op: OpOR, Children: []Control{on, off}}
	assert.True(t, or.IsOn(0))
}

func TestCombination_EmptyChildrenIsOff(t *testing.T) {
	c := Combination{Op: OpOR}
	assert.False(t, c.IsOn(0))
}

func TestGraph_ValidateDetectsCycle(t *testing.T) {
	g := NewGraph()
	g.Add("a", Combination{Name: "a", Op: OpAND}, []string{"b"})
	g.Add("b", Combination{Name: "b", Op: OpAND}, []string{"a"})

	err := g.Validate()
	require.Error(t, err)
}

func TestGraph_ValidateAcceptsDAG(t *testing.T) {
	g := NewGraph()
	leaf := NewOnOff(mustSeries(t, 0, 1.0, []float64{1}))
	g.Add("leaf", leaf, nil)
	g.Add("root", Combination{Name: "root", Op: OpAND, Children: []Control{leaf}}, []string{"leaf"})

	require.NoError(t, g.Validate())

	got, err := g.Get("leaf")
	require.NoError(t, err)
	assert.True(t, got.IsOn(0))
}

func TestGraph_ValidateRejectsUnknownReference(t *testing.T) {
	g := NewGraph()
	g.Add("a", Combination{Name: "a", Op: OpAND}, []string{"ghost"})
	require.Error(t, g.Validate())
}
