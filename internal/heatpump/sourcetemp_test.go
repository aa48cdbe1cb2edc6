package heatpump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceTempC_GroundClampsToZeroToEight(t *testing.T) {
	low := SourceTempC(SourceGround, SourceTempInputs{AirTempC: -50})
	assert.Equal(t, 0.0, low)

	high := SourceTempC(SourceGround, SourceTempInputs{AirTempC: 50})
	assert.Equal(t, 8.0, high)
}

func TestSourceTempC_OutsideAirPassesThrough(t *testing.T) {
	assert.Equal(t, 12.5, SourceTempC(SourceOutsideAir, SourceTempInputs{AirTempC: 12.5}))
}

func TestSourceTempC_ExhaustAirUsesPrevInternalTemp(t *testing.T) {
	assert.Equal(t, 20.0, SourceTempC(SourceExhaustAir, SourceTempInputs{PrevInternalAirTempC: 20}))
}

func TestSourceTempC_MixedExhaustAir_FallsBackAboveMaxExternalTemp(t *testing.T) {
	in := SourceTempInputs{
		ExternalAirTempC:     30,
		EAHPMixedMaxTempC:    20,
		PrevInternalAirTempC: 21,
		MixRatio:             0.5,
	}
	assert.Equal(t, 21.0, SourceTempC(SourceMixedExhaustAir, in))
}

func TestSourceTempC_MixedExhaustAir_FallsBackBelowMinMixedTemp(t *testing.T) {
	in := SourceTempInputs{
		ExternalAirTempC:     -10,
		EAHPMixedMaxTempC:    20,
		EAHPMixedMinTempC:    10,
		PrevInternalAirTempC: 21,
		MixRatio:             0.5,
	}
	assert.Equal(t, 21.0, SourceTempC(SourceMixedExhaustAir, in))
}

func TestSourceTempC_MixedExhaustAir_BlendsWhenWithinBounds(t *testing.T) {
	in := SourceTempInputs{
		ExternalAirTempC:     10,
		EAHPMixedMaxTempC:    20,
		EAHPMixedMinTempC:    0,
		PrevInternalAirTempC: 20,
		MixRatio:             0.5,
	}
	assert.Equal(t, 15.0, SourceTempC(SourceMixedExhaustAir, in))
}

func TestSourceTempC_WaterGroundUsesAnnualAverage(t *testing.T) {
	assert.Equal(t, 11.0, SourceTempC(SourceWaterGround, SourceTempInputs{AnnualAvgAirTempC: 11}))
}

func TestSourceTempC_WaterSurfaceUsesMonthlyAverage(t *testing.T) {
	assert.Equal(t, 9.0, SourceTempC(SourceWaterSurface, SourceTempInputs{MonthlyAvgAirTempC: 9}))
}

func TestSourceTempC_HeatNetworkUsesDistributionTemp(t *testing.T) {
	assert.Equal(t, 55.0, SourceTempC(SourceHeatNetwork, SourceTempInputs{HeatNetworkDistTempC: 55}))
}

func TestSourceTempK_AddsKelvinOffset(t *testing.T) {
	k := SourceTempK(SourceOutsideAir, SourceTempInputs{AirTempC: 0})
	assert.InDelta(t, 273.15, k, 1e-9)
}
