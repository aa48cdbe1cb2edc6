package heatpump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exhaustAirRecords(flowRate float64) []ExhaustAirRecord {
	base := sampleRecords(35)
	out := make([]ExhaustAirRecord, len(base))
	for i, r := range base {
		out[i] = ExhaustAirRecord{TestRecord: r, AirFlowRateM3h: flowRate}
	}
	return out
}

func TestLoadExhaustAir_RejectsEmptyRecords(t *testing.T) {
	_, _, err := LoadExhaustAir(nil, 100)
	require.Error(t, err)
}

func TestLoadExhaustAir_OverventilationRatioIsOneWhenThroughputMeetsLowestFlow(t *testing.T) {
	records := exhaustAirRecords(100)
	_, ratio, err := LoadExhaustAir(records, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)
}

func TestLoadExhaustAir_OverventilationRatioExceedsOneWhenThroughputBelowLowestFlow(t *testing.T) {
	records := exhaustAirRecords(100)
	_, ratio, err := LoadExhaustAir(records, 50)
	require.NoError(t, err)
	assert.Greater(t, ratio, 1.0)
	assert.InDelta(t, 2.0, ratio, 1e-9)
}

func TestInterpAt_ClampsOutsideSampledFlowRates(t *testing.T) {
	low := exhaustAirRecords(50)
	high := exhaustAirRecords(150)
	for i := range high {
		high[i].CapacityKW = 10
	}
	records := append(low, high...)

	ds, _, err := LoadExhaustAir(records, 10) // below lowest sampled flow rate
	require.NoError(t, err)
	// clamped to the lowest flow rate's capacity (5kW, from sampleRecords)
	assert.InDelta(t, 5.0, ds.Groups[0].Records[0].CapacityKW, 1e-9)
}
