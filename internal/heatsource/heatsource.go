// Package heatsource defines the shared heat-source capability interface
// (§9) through which the storage tank and the zone emitters dispatch a
// source without knowing its concrete type. In this repository
// heatnetwork.TankAdapter implements it; heatpump.HeatPump and
// heatbattery.Battery take differently shaped arguments and do not.
package heatsource

// Source is the capability interface a storage tank's heat-source list
// and the orchestrator's space/water dispatch loop hold.
type Source interface {
	// Name is the configured service name, used for duplicate-name
	// validation and end-of-timestep log correlation.
	Name() string

	// EnergyOutputMax reports the maximum energy (kWh) this source could
	// deliver this timestep at flowTempC, without committing state. Used
	// both for the real dispatch and for dry-run max-output queries.
	EnergyOutputMax(flowTempC float64) float64

	// DemandEnergy requests up to requiredKWh of delivered energy at
	// flowTempC/returnTempC. When updateState is false this must be a
	// pure query: no internal state changes, matching the "dry run"
	// contract in §5 (a demand_energy call with update_heat_source_state
	// = false leaves every piece of shared state unchanged on return).
	DemandEnergy(requiredKWh, flowTempC, returnTempC float64, updateState bool) (deliveredKWh float64)

	// TimestepEnd runs the source's end-of-timestep aggregation/reset
	// (§4.3.4, §4.4, §4.5): committing accumulated service calls to the
	// energy ledger and clearing the per-timestep commit buffer.
	TimestepEnd()
}

// ThermostatControlled is implemented by sources whose switch-on decision
// depends on a thermostat-layer temperature (ordinary tank dispatch,
// §4.2.3 step 1) rather than a state-of-charge target.
type ThermostatControlled interface {
	Source
	SwitchOn(thermostatLayerTempC float64) bool
}

// SoCControlled is implemented by sources dispatched against a
// state-of-charge target (smart tank, §4.2.4).
type SoCControlled interface {
	Source
	SwitchOnSoC(soc float64) bool
}
