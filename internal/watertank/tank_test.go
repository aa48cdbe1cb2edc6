package watertank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTank_RejectsNonPositiveLayers(t *testing.T) {
	_, err := NewTank(0, 100, 40, 15, 60, 1.5)
	require.Error(t, err)
}

func TestNewTank_InitialisesAllLayersEqual(t *testing.T) {
	tank, err := NewTank(4, 200, 40, 15, 60, 1.5)
	require.NoError(t, err)
	for _, v := range tank.LayerTempC {
		assert.Equal(t, 40.0, v)
	}
}

func TestCheckMonotone_PassesOnSortedLayers(t *testing.T) {
	tank, err := NewTank(3, 150, 40, 15, 60, 1.5)
	require.NoError(t, err)
	tank.LayerTempC = []float64{30, 40, 50}
	assert.NoError(t, tank.CheckMonotone())
}

func TestCheckMonotone_FailsOnInversion(t *testing.T) {
	tank, err := NewTank(3, 150, 40, 15, 60, 1.5)
	require.NoError(t, err)
	tank.LayerTempC = []float64{50, 40, 30}
	assert.Error(t, tank.CheckMonotone())
}

func TestRearrange_MixesInvertedBlockToVolumeWeightedMean(t *testing.T) {
	tank, err := NewTank(3, 150, 40, 15, 60, 1.5)
	require.NoError(t, err)
	tank.LayerTempC = []float64{30, 50, 40} // layer1 > layer2: inverted
	tank.Rearrange()
	require.NoError(t, tank.CheckMonotone())
	assert.InDelta(t, 45.0, tank.LayerTempC[1], 1e-9)
	assert.InDelta(t, 45.0, tank.LayerTempC[2], 1e-9)
	assert.InDelta(t, 30.0, tank.LayerTempC[0], 1e-9)
}

func TestRearrange_IsIdentityOnAlreadySortedVector(t *testing.T) {
	tank, err := NewTank(4, 200, 40, 15, 60, 1.5)
	require.NoError(t, err)
	tank.LayerTempC = []float64{20, 30, 40, 50}
	before := append([]float64(nil), tank.LayerTempC...)
	tank.Rearrange()
	assert.Equal(t, before, tank.LayerTempC)
}

type fakeSource struct {
	maxOutKWh float64
	delivered float64
}

func (f *fakeSource) Name() string                                { return "fake" }
func (f *fakeSource) TimestepEnd()                                {}
func (f *fakeSource) EnergyOutputMax(flowTempC float64) float64 { return f.maxOutKWh }
func (f *fakeSource) DemandEnergy(requiredKWh, flowTempC, returnTempC float64, updateState bool) float64 {
	d := requiredKWh
	if d > f.maxOutKWh {
		d = f.maxOutKWh
	}
	if updateState {
		f.delivered += d
	}
	return d
}

func TestDispatchHeatSources_SkipsWhenThermostatIsOff(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	src := &fakeSource{maxOutKWh: 5}
	tank.Sources = []HeatSourceSlot{{
		Source: src, HeaterLayerIdx: 0, ThermostatLayerIdx: 0,
		SwitchOn: func(t float64) bool { return false },
		FlowTempC: 55,
	}}
	require.NoError(t, tank.DispatchHeatSources(1.0))
	assert.Zero(t, src.delivered)
	assert.Equal(t, 40.0, tank.LayerTempC[0])
}

func TestDispatchHeatSources_HeatsBottomLayerWhenOn(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	src := &fakeSource{maxOutKWh: 1}
	tank.Sources = []HeatSourceSlot{{
		Source: src, HeaterLayerIdx: 0, ThermostatLayerIdx: 0,
		SwitchOn: func(t float64) bool { return true },
		FlowTempC: 55,
	}}
	require.NoError(t, tank.DispatchHeatSources(1.0))
	assert.Greater(t, src.delivered, 0.0)
	require.NoError(t, tank.CheckMonotone())
}

func TestAdditionalEnergyInput_ClampsToHeadroom(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	accepted := tank.AdditionalEnergyInput(0, 1000, 45)
	assert.Less(t, accepted, 1000.0)
	assert.Greater(t, accepted, 0.0)
	// layer 0 is raised to the 45C ceiling, then rearranged with the 40C
	// layer above it to their volume-weighted mean
	assert.InDelta(t, 42.5, tank.LayerTempC[0], 1e-6)
}

func TestAdditionalEnergyInput_RejectsNonPositiveOffer(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	accepted := tank.AdditionalEnergyInput(0, 0, 45)
	assert.Zero(t, accepted)
}
