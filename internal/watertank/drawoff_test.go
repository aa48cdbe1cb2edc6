package watertank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemandHotWater_DrawsFromTopLayerFirst(t *testing.T) {
	tank, err := NewTank(3, 150, 40, 15, 60, 0)
	require.NoError(t, err)
	tank.LayerTempC = []float64{30, 40, 55}

	res := tank.DemandHotWater([]UsageEvent{
		{WarmTempC: 40, WarmVolumeL: 10},
	}, 10)

	assert.Greater(t, res.EnergyUsedKWh, 0.0)
	assert.Greater(t, res.TotalVolDrawoffL, 0.0)
	require.NoError(t, tank.CheckMonotone())
}

func TestDemandHotWater_ZeroVolumeEventsAreSkipped(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	before := append([]float64(nil), tank.LayerTempC...)

	res := tank.DemandHotWater([]UsageEvent{{WarmTempC: 40, WarmVolumeL: 0}}, 10)

	assert.Zero(t, res.EnergyUsedKWh)
	assert.Equal(t, before, tank.LayerTempC)
}

func TestDemandHotWater_RecordsUnmetWhenTankTooCoolThroughout(t *testing.T) {
	tank, err := NewTank(2, 100, 20, 15, 60, 0)
	require.NoError(t, err)
	tank.LayerTempC = []float64{20, 20}

	res := tank.DemandHotWater([]UsageEvent{
		{WarmTempC: 45, WarmVolumeL: 10},
	}, 10)

	assert.Greater(t, res.UnmetKWh, 0.0)
	assert.Zero(t, res.EnergyUsedKWh)
}

func TestDemandHotWater_KeepsVectorSortedAfterward(t *testing.T) {
	tank, err := NewTank(4, 200, 40, 15, 60, 0)
	require.NoError(t, err)
	tank.LayerTempC = []float64{25, 35, 45, 55}

	tank.DemandHotWater([]UsageEvent{
		{WarmTempC: 40, WarmVolumeL: 50},
	}, 10)

	require.NoError(t, tank.CheckMonotone())
}
