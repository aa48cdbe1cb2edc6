package watertank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartTank_SoC_RejectsDegenerateSpan(t *testing.T) {
	st, err := NewSmartTank(4, 200, 40, 15, 50, 50, 60, 1.5)
	require.NoError(t, err)
	_, err = st.SoC()
	assert.Error(t, err)
}

func TestSmartTank_SoC_ZeroWhenAllLayersBelowUsable(t *testing.T) {
	st, err := NewSmartTank(4, 200, 30, 15, 50, 10, 60, 1.5)
	require.NoError(t, err)
	soc, err := st.SoC()
	require.NoError(t, err)
	assert.Zero(t, soc)
}

func TestSmartTank_SoC_FullWhenAllLayersAtSetpoint(t *testing.T) {
	st, err := NewSmartTank(4, 200, 60, 15, 50, 10, 60, 1.5)
	require.NoError(t, err)
	soc, err := st.SoC()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, soc, 1e-6)
}

type socSource struct {
	maxOutKWh float64
}

func (s *socSource) EnergyOutputMax(flowTempC float64) float64 { return s.maxOutKWh }
func (s *socSource) DemandEnergy(requiredKWh, flowTempC, returnTempC float64, updateState bool) float64 {
	d := requiredKWh
	if d > s.maxOutKWh {
		d = s.maxOutKWh
	}
	return d
}

func TestSmartTank_DispatchSoC_NoOpWhenAlreadyAboveSoCMax(t *testing.T) {
	st, err := NewSmartTank(4, 200, 60, 15, 50, 10, 60, 1.5)
	require.NoError(t, err)
	st.SoCMax = 0.5
	before := append([]float64(nil), st.LayerTempC...)

	require.NoError(t, st.DispatchSoC(&socSource{maxOutKWh: 5}, 1.0))
	assert.Equal(t, before, st.LayerTempC)
}

func TestSmartTank_DispatchSoC_RaisesLowestLayerWhenBelowMin(t *testing.T) {
	st, err := NewSmartTank(4, 200, 30, 15, 50, 10, 60, 1.5)
	require.NoError(t, err)
	st.SoCMin, st.SoCMax = 0.8, 1.0

	require.NoError(t, st.DispatchSoC(&socSource{maxOutKWh: 2}, 1.0))
	require.NoError(t, st.CheckMonotone())
}

func TestSmartTank_PumpTopUp_ClampsToMaxFlow(t *testing.T) {
	st, err := NewSmartTank(2, 100, 40, 15, 50, 10, 60, 1.5)
	require.NoError(t, err)
	st.PumpMaxFlowLPerMin = 1
	st.PumpPowerKW = 0.1

	pumped := st.PumpTopUp(1000, 1.0)
	assert.InDelta(t, 60.0, pumped, 1e-9) // 1 L/min * 60 min
	assert.InDelta(t, 0.1, st.PumpEnergyKWh, 1e-9)
}
