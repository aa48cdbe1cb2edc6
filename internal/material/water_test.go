package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWater_EnergyKWh(t *testing.T) {
	// 1 litre, raised by 1K at 4182 J/(kg*K): 4182 J = 4182/3.6e6 kWh
	got := Water.EnergyKWh(1, 1)
	assert.InDelta(t, 4182.0/3600000.0, got, 1e-9)
}

func TestWater_EnergyKWh_ScalesWithVolumeAndDelta(t *testing.T) {
	base := Water.EnergyKWh(1, 1)
	assert.InDelta(t, base*100*10, Water.EnergyKWh(100, 10), 1e-9)
}

func TestWater_EnergyKWh_NegativeDeltaCoolsDown(t *testing.T) {
	assert.True(t, Water.EnergyKWh(10, -5) < 0)
}
