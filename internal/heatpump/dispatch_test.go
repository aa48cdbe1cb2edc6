package heatpump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferTank_RejectsInvertedFlowTemps(t *testing.T) {
	_, err := NewBufferTank(50, 40, 2, 0.1, 0.05)
	require.Error(t, err)
}

func TestNewBufferTank_AcceptsOrderedFlowTemps(t *testing.T) {
	bt, err := NewBufferTank(40, 50, 2, 0.1, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 2.0, bt.FlowTempIncreaseK)
}

func TestDemandEnergy_DryRunDoesNotCommitPendingResult(t *testing.T) {
	ds, err := Load(sampleRecords(35))
	require.NoError(t, err)
	hp := New("hp-main")

	in := DispatchInputs{
		ServiceName:             "space",
		ServiceType:             ServiceSpace,
		Sink:                    SinkWet,
		EnergyOutputRequiredKWh: 1.0,
		FlowTempK:               308.15,
		ReturnTempK:             303.15,
		UpperLimitK:             333.15,
		TimestepH:               1.0,
		SourceType:              SourceOutsideAir,
		SourceTempK:             280.15,
		TempLowerOpLimitK:       250,
		TempReturnFeedMaxK:      400,
		ModulatingControl:       true,
		UpdateHeatSourceState:   false,
	}

	hp.DemandEnergy(ds, in)
	assert.Empty(t, hp.pending)
}

func TestDemandEnergy_CommittedCallAppendsToPending(t *testing.T) {
	ds, err := Load(sampleRecords(35))
	require.NoError(t, err)
	hp := New("hp-main")

	in := DispatchInputs{
		ServiceName:             "space",
		ServiceType:             ServiceSpace,
		Sink:                    SinkWet,
		EnergyOutputRequiredKWh: 1.0,
		FlowTempK:               308.15,
		ReturnTempK:             303.15,
		UpperLimitK:             333.15,
		TimestepH:               1.0,
		SourceType:              SourceOutsideAir,
		SourceTempK:             280.15,
		TempLowerOpLimitK:       250,
		TempReturnFeedMaxK:      400,
		ModulatingControl:       true,
		UpdateHeatSourceState:   true,
	}

	res := hp.DemandEnergy(ds, in)
	require.Len(t, hp.pending, 1)
	assert.Equal(t, res, hp.pending[0])
}

func TestDemandEnergy_OutsideLowerOpLimitForcesBackupOnly(t *testing.T) {
	ds, err := Load(sampleRecords(35))
	require.NoError(t, err)
	hp := New("hp-main")

	in := DispatchInputs{
		ServiceName:             "space",
		ServiceType:             ServiceSpace,
		Sink:                    SinkWet,
		EnergyOutputRequiredKWh: 1.0,
		FlowTempK:               308.15,
		ReturnTempK:             303.15,
		UpperLimitK:             333.15,
		TimestepH:               1.0,
		SourceType:              SourceOutsideAir,
		SourceTempK:             200, // below TempLowerOpLimitK
		TempLowerOpLimitK:       250,
		TempReturnFeedMaxK:      400,
		ModulatingControl:       true,
		Backup:                  BackupTopUp,
		BackupBoiler:            &HybridBoiler{EfficiencyPct: 0.9, CostPerKWh: 0.05, MaxOutputKWh: 5},
		UpdateHeatSourceState:   false,
	}

	res := hp.DemandEnergy(ds, in)
	assert.True(t, res.BackupOnly)
}
