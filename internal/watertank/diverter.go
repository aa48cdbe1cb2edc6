package watertank

// Diverter implements §4.2.7: owns a tank and an immersion heater slot,
// tracks capacity_already_in_use per timestep, and accepts end-of-
// timestep surplus from its energy supply via DivertSurplus, satisfying
// energysupply.DiverterTarget without importing that package (the
// orchestrator wires the two together).
type Diverter struct {
	Tank              *Tank
	HeaterLayerIdx    int
	ImmersionMaxKWh   float64
	SetpointMaxC      float64

	capacityAlreadyInUse float64
}

// NewDiverter builds a diverter bound to a tank's immersion heater layer.
func NewDiverter(tank *Tank, heaterLayerIdx int, immersionMaxKWh, setpointMaxC float64) *Diverter {
	return &Diverter{Tank: tank, HeaterLayerIdx: heaterLayerIdx, ImmersionMaxKWh: immersionMaxKWh, SetpointMaxC: setpointMaxC}
}

// DivertSurplus offers up to -surplusKWh (surplus is negative demand, per
// the energysupply.DiverterTarget contract) and returns the amount
// actually accepted by the tank.
func (d *Diverter) DivertSurplus(surplusKWh float64) float64 {
	if surplusKWh >= 0 {
		return 0
	}
	available := d.ImmersionMaxKWh - d.capacityAlreadyInUse
	if available <= 0 {
		return 0
	}
	divertible := -surplusKWh
	if divertible > available {
		divertible = available
	}
	accepted := d.Tank.AdditionalEnergyInput(d.HeaterLayerIdx, divertible, d.SetpointMaxC)
	d.capacityAlreadyInUse += accepted
	return accepted
}

// ResetTimestep zeros capacity_already_in_use at end-of-timestep, per
// §4.2.7.
func (d *Diverter) ResetTimestep() {
	d.capacityAlreadyInUse = 0
}
