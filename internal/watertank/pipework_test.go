package watertank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryPipeworkLoss_ChargesRisingEdgeCoolDownOnce(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	seg := &PipeworkSegment{VolumeL: 1, SurroundTempC: 15, HeatLossRateWPerK: 10}
	tank.Pipework = []*PipeworkSegment{seg}

	first := tank.primaryPipeworkLoss(55, 1.0, true)
	second := tank.primaryPipeworkLoss(55, 1.0, true)

	// second call is a steady-state continuation, no repeated cool-down charge
	assert.Greater(t, first, second)
}

func TestPrimaryPipeworkLoss_NoLossWhenOff(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	seg := &PipeworkSegment{VolumeL: 1, SurroundTempC: 15, HeatLossRateWPerK: 10}
	tank.Pipework = []*PipeworkSegment{seg}

	assert.Zero(t, tank.primaryPipeworkLoss(55, 1.0, false))
}

func TestInternalGainsKWh_OnlyCreditsOnFallingEdge(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	seg := &PipeworkSegment{Internal: true, VolumeL: 1, SurroundTempC: 15, HeatLossRateWPerK: 10}
	tank.Pipework = []*PipeworkSegment{seg}

	// still running: no gains credit yet
	tank.primaryPipeworkLoss(55, 1.0, true)
	assert.Zero(t, tank.InternalGainsKWh(55))

	// now off: falling edge, gains credited
	tank.primaryPipeworkLoss(55, 1.0, false)
	assert.Greater(t, tank.InternalGainsKWh(55), 0.0)
}
