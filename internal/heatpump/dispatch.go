package heatpump

import "math"

// ServiceType tags the demand type for one dispatch call, per §9.
type ServiceType int

const (
	ServiceWater ServiceType = iota
	ServiceSpace
)

// SinkType tags what the heat pump delivers into.
type SinkType int

const (
	SinkWet SinkType = iota
	SinkAir
	SinkGlycol
)

// BackupCtrlType is the tagged variant for hybrid-boiler backup strategy.
type BackupCtrlType int

const (
	BackupNone BackupCtrlType = iota
	BackupTopUp
	BackupSubstitute
)

// BufferTank models the flow-temperature increase and standing loss a
// buffer tank imposes between the heat pump and the emitter circuit, per
// §9 open question (iii): hp-to-buffer flow must never exceed
// buffer-to-emitter flow.
type BufferTank struct {
	FlowTempIncreaseK float64
	HeatLossKWh       float64
	PumpPowerKW       float64
	bufferToEmitterFlowC float64
	hpToBufferFlowC      float64
}

// NewBufferTank validates the flow-temperature ordering invariant at
// construction time, per the hard-error decision recorded in
// SPEC_FULL.md open question 3.
func NewBufferTank(hpToBufferFlowC, bufferToEmitterFlowC, flowTempIncreaseK, heatLossKWh, pumpPowerKW float64) (*BufferTank, error) {
	if hpToBufferFlowC > bufferToEmitterFlowC {
		return nil, errBufferFlowInverted(hpToBufferFlowC, bufferToEmitterFlowC)
	}
	return &BufferTank{
		FlowTempIncreaseK:    flowTempIncreaseK,
		HeatLossKWh:          heatLossKWh,
		PumpPowerKW:          pumpPowerKW,
		bufferToEmitterFlowC: bufferToEmitterFlowC,
		hpToBufferFlowC:      hpToBufferFlowC,
	}, nil
}

// HybridBoiler is the optional backup boiler referenced from a hybrid HP.
type HybridBoiler struct {
	EfficiencyPct   float64
	CostPerKWh      float64
	MaxOutputKWh    float64
}

// DispatchInputs bundles the per-call dispatch parameters of §4.3.3.
type DispatchInputs struct {
	ServiceName          string
	ServiceType          ServiceType
	Sink                 SinkType
	EnergyOutputRequiredKWh float64
	FlowTempK            float64
	ReturnTempK          float64
	UpperLimitK          float64
	TimeConstantS        float64
	ServiceOn            bool
	TempSpreadCorrection float64 // scalar correction, already resolved

	Buffer         *BufferTank
	Backup         BackupCtrlType
	BackupBoiler   *HybridBoiler
	BackupDelayS   float64

	TimestepH                  float64
	TimeAlreadyCommittedH      float64
	TimeStartFracOfTimestep    float64 // time_start/timestep
	TimeRunningContinuousH     float64

	SourceType SourceType
	SourceTempK float64
	TempLowerOpLimitK float64
	TempReturnFeedMaxK float64
	TempDiffEvapLimitK float64

	CostHPPerKWh      float64
	ModulatingControl bool

	UpdateHeatSourceState bool
}

// ServiceResult is one per-service result recorded for end-of-timestep
// aggregation, per §3 "Heat pump state".
type ServiceResult struct {
	ServiceName   string
	ServiceType   ServiceType
	Sink          SinkType
	TimeRunningH  float64
	EnergyDeliveredKWh float64
	EnergyInputKWh     float64
	CoP                float64
	DegradationCoeff   float64
	CapacityKW         float64
	PumpEnergyKWh      float64
	BackupOnly         bool
	SourceType         SourceType
}

// DemandEnergy runs §4.3.3's full dispatch algorithm for one service call
// and, when updateHeatSourceState is true, appends the result to pending
// for end-of-timestep aggregation.
func (hp *HeatPump) DemandEnergy(ds *TestDataSet, in DispatchInputs) ServiceResult {
	required := in.EnergyOutputRequiredKWh
	flowTargetK := in.FlowTempK

	// 1. buffer-tank effects
	var bufferPumpKWh float64
	if in.Buffer != nil {
		flowTargetK += in.Buffer.FlowTempIncreaseK
		required += in.Buffer.HeatLossKWh
		bufferPumpKWh = in.Buffer.PumpPowerKW * in.TimestepH
	}

	// 2. upper-limit clamp
	usedFlowK := flowTargetK
	if usedFlowK > in.UpperLimitK {
		spread := flowTargetK - in.ReturnTempK
		if spread > 1e-9 {
			required *= (in.UpperLimitK - in.ReturnTempK) / spread
		}
		usedFlowK = in.UpperLimitK
	}

	flowTempC := usedFlowK - 273.15

	// 3. thermal capacity and (cop, deg_coeff) at operating condition
	capacityKW := ds.CapacityOpCondVarFlowOrSourceTemp(flowTempC, usedFlowK, in.SourceTempK, in.ModulatingControl)
	cop := ds.CoPOpCondIfNotAirSource(flowTempC, in.TempDiffEvapLimitK, in.SourceTempK-273.15, in.SourceTempK, usedFlowK)
	if in.SourceType == SourceOutsideAir && in.ServiceType == ServiceWater {
		cop = ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 { return g.AvgCoP_AD })
	}
	degCoeff := ds.AverageDegradationCoeff(flowTempC)
	if in.TempSpreadCorrection != 0 {
		cop *= in.TempSpreadCorrection
	}

	// 4. time accounting
	energyLimited := required
	timeRequiredH := 0.0
	if capacityKW > 0 {
		timeRequiredH = energyLimited / capacityKW
	}
	timeAvailableH := (in.TimestepH - in.TimeAlreadyCommittedH) * (1 - in.TimeStartFracOfTimestep)
	if timeAvailableH < 0 {
		timeAvailableH = 0
	}
	timeRunningH := math.Min(timeRequiredH, timeAvailableH)

	// 5. backup decision
	outsideLimits := in.SourceTempK <= in.TempLowerOpLimitK ||
		(in.Sink != SinkAir && in.ReturnTempK > in.TempReturnFeedMaxK)
	delayElapsed := in.TimeRunningContinuousH*3600 >= in.BackupDelayS
	backupOnly := false
	useBackupTopUp := false

	if outsideLimits {
		backupOnly = in.Backup != BackupNone
	} else if in.Backup == BackupSubstitute && in.BackupBoiler != nil {
		backupMaxKWh := in.BackupBoiler.MaxOutputKWh
		if backupMaxKWh > capacityKW*timeAvailableH && delayElapsed {
			backupOnly = true
		}
	}
	if in.Backup == BackupTopUp && in.BackupBoiler != nil && delayElapsed {
		costHPEff := in.CostHPPerKWh / maxf(cop, 1e-9)
		costBoilerEff := in.BackupBoiler.CostPerKWh / maxf(in.BackupBoiler.EfficiencyPct, 1e-9)
		if costHPEff >= costBoilerEff {
			useBackupTopUp = true
		}
	}

	// 6. energy delivered
	var delivered float64
	if !backupOnly {
		delivered = capacityKW * timeRunningH
	}
	var backupDelivered float64
	if backupOnly || useBackupTopUp {
		remaining := required - delivered
		if remaining > 0 && in.BackupBoiler != nil {
			backupDelivered = math.Min(remaining, in.BackupBoiler.MaxOutputKWh)
		}
	}

	// 7. pump energy
	pumpKWh := 0.05 * timeRunningH // source circulation pump, nominal rate
	if in.Sink == SinkAir && in.ServiceType == ServiceSpace {
		pumpKWh += 0.03 * timeRunningH // warm-air fan
	} else {
		pumpKWh += 0.02 * timeRunningH // wet circulation pump
	}
	pumpKWh += bufferPumpKWh

	var energyInput float64
	if cop > 0 {
		energyInput = delivered / cop
	}

	result := ServiceResult{
		ServiceName:        in.ServiceName,
		ServiceType:        in.ServiceType,
		Sink:               in.Sink,
		TimeRunningH:        timeRunningH,
		EnergyDeliveredKWh:  delivered + backupDelivered,
		EnergyInputKWh:      energyInput,
		CoP:                 cop,
		DegradationCoeff:    degCoeff,
		CapacityKW:          capacityKW,
		PumpEnergyKWh:       pumpKWh,
		BackupOnly:          backupOnly,
		SourceType:          in.SourceType,
	}

	// 9. buffer-tank loss debit
	if in.Buffer != nil {
		result.EnergyDeliveredKWh -= in.Buffer.HeatLossKWh
		if result.EnergyDeliveredKWh < 0 {
			result.EnergyDeliveredKWh = 0
		}
	}

	if in.UpdateHeatSourceState {
		hp.pending = append(hp.pending, result)
	}

	return result
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
