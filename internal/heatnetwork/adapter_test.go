package heatnetwork

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hemcore/internal/heatsource"
)

func TestTankAdapter_SatisfiesHeatSourceContract(t *testing.T) {
	var _ heatsource.Source = &TankAdapter{}
}

func TestTankAdapter_EnergyOutputMaxIgnoresFlowTemp(t *testing.T) {
	a := &TankAdapter{HIU: New("hiu-1", 10, 1, 50), TimestepH: 0.5}
	assert.Equal(t, 5.0, a.EnergyOutputMax(999))
}

func TestTankAdapter_DemandEnergyClampsAtTimestepLength(t *testing.T) {
	a := &TankAdapter{HIU: New("hiu-1", 10, 1, 50), TimestepH: 1.0}
	delivered := a.DemandEnergy(100, 55, 40, true)
	assert.Equal(t, 10.0, delivered)
}

func TestTankAdapter_TimestepEndCapturesLoss(t *testing.T) {
	a := &TankAdapter{HIU: New("hiu-1", 10, 2.4, 100), TimestepH: 1.0}
	a.TimestepEnd()
	assert.InDelta(t, 0.2, a.LastLossKWh, 1e-9)
}
