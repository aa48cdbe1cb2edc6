// Package heatnetwork implements the heat-network interface unit (HIU) of
// §4.5: a thin source whose maximum output is simply power_max times the
// time available, plus a two-term end-of-timestep loss model (HIU daily
// standing loss and a building-level distribution loss), taken from
// original_source/core/heating_systems/heat_network.py per SPEC_FULL.md
// §D.4.
package heatnetwork

// HIU is one heat-network interface unit.
type HIU struct {
	name string

	PowerMaxKW float64

	HIUDailyLossKWh       float64
	BuildingDistLossW     float64

	committedKWh float64
}

// New builds an HIU.
func New(name string, powerMaxKW, hiuDailyLossKWh, buildingDistLossW float64) *HIU {
	return &HIU{name: name, PowerMaxKW: powerMaxKW, HIUDailyLossKWh: hiuDailyLossKWh, BuildingDistLossW: buildingDistLossW}
}

func (h *HIU) Name() string { return h.name }

// EnergyOutputMax returns power_max * time_available, per §4.5.
func (h *HIU) EnergyOutputMax(timeAvailableH float64) float64 {
	return h.PowerMaxKW * timeAvailableH
}

// DemandEnergy returns min(required, max).
func (h *HIU) DemandEnergy(requiredKWh, timeAvailableH float64, updateState bool) float64 {
	maxOut := h.EnergyOutputMax(timeAvailableH)
	delivered := requiredKWh
	if delivered > maxOut {
		delivered = maxOut
	}
	if updateState {
		h.committedKWh += delivered
	}
	return delivered
}

// TimestepEnd adds the fixed HIU daily loss prorated to the timestep
// length and the building-level distribution loss, both linearly
// prorated the same way the storage-tank standing-loss calc does (§4.2.3
// technique, reused per SPEC_FULL.md §D.4), and returns the total loss
// energy (kWh) to be booked against the heat-network supply.
func (h *HIU) TimestepEnd(timestepH float64) float64 {
	proratedHIU := h.HIUDailyLossKWh * (timestepH / 24.0)
	proratedDist := (h.BuildingDistLossW / 1000.0) * timestepH
	h.committedKWh = 0
	return proratedHIU + proratedDist
}
