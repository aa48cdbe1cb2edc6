package heatnetwork

// TankAdapter lets an HIU act as a watertank.Tank heat source. The
// heatsource.Source capability interface is flow/return-temperature
// driven (EnergyOutputMax(flowTempC), DemandEnergy(..., flowTempC,
// returnTempC, ...)) while an HIU's output is purely time-driven
// (power_max * time_available, per §4.5); TankAdapter bridges the two by
// holding the fixed simulation timestep length and ignoring the
// temperature arguments the tank dispatch loop passes through.
type TankAdapter struct {
	HIU       *HIU
	TimestepH float64

	LastLossKWh float64
}

func (a *TankAdapter) Name() string { return a.HIU.Name() }

// EnergyOutputMax ignores flowTempC: an HIU's ceiling only depends on the
// timestep length.
func (a *TankAdapter) EnergyOutputMax(flowTempC float64) float64 {
	return a.HIU.EnergyOutputMax(a.TimestepH)
}

// DemandEnergy ignores flowTempC/returnTempC for the same reason.
func (a *TankAdapter) DemandEnergy(requiredKWh, flowTempC, returnTempC float64, updateState bool) float64 {
	return a.HIU.DemandEnergy(requiredKWh, a.TimestepH, updateState)
}

// TimestepEnd settles the HIU's standing/distribution losses. The
// returned loss energy has nowhere to go through the zero-argument
// heatsource.Source.TimestepEnd contract; LastLossKWh exposes it for a
// caller that wants to book it against an energy supply.
func (a *TankAdapter) TimestepEnd() {
	a.LastLossKWh = a.HIU.TimestepEnd(a.TimestepH)
}
