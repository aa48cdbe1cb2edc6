package watertank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiverter_DivertSurplus_RejectsNonSurplus(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	d := NewDiverter(tank, 0, 5, 55)

	assert.Zero(t, d.DivertSurplus(3))
}

func TestDiverter_DivertSurplus_ClampsToImmersionMax(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	d := NewDiverter(tank, 0, 0.01, 55)

	accepted := d.DivertSurplus(-10)
	assert.LessOrEqual(t, accepted, 0.01)
	assert.Greater(t, accepted, 0.0)
}

func TestDiverter_CapacityAlreadyInUse_TracksAcrossCalls(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	d := NewDiverter(tank, 0, 0.02, 55)

	first := d.DivertSurplus(-0.015)
	second := d.DivertSurplus(-0.015)
	assert.InDelta(t, 0.02, first+second, 1e-9)
}

func TestDiverter_ResetTimestep_ClearsCapacityInUse(t *testing.T) {
	tank, err := NewTank(2, 100, 40, 15, 60, 0)
	require.NoError(t, err)
	d := NewDiverter(tank, 0, 0.02, 55)

	d.DivertSurplus(-0.02)
	d.ResetTimestep()
	accepted := d.DivertSurplus(-0.02)
	assert.InDelta(t, 0.02, accepted, 1e-9)
}
