// Package material holds constant physical-property records used throughout
// the engine. The teacher has no equivalent (its "material" is always
// water implicitly, baked into battery.go's chemistry constants); this
// package generalises that to a named record the way
// internal/model/sensor.go tables sensor metadata by a constant key.
package material

// Properties is a constant record of a substance's thermophysical
// properties relevant to the tank/battery energy balances.
type Properties struct {
	Name                string
	SpecificHeatCapWhKgK float64 // kWh/(kg*K)
	DensityKgPerL       float64
}

// Water is the sole material instance the storage tank, heat battery and
// draw-off calculations need.
var Water = Properties{
	Name:                 "water",
	SpecificHeatCapWhKgK: 4182.0 / 3600000.0, // 4182 J/(kg*K) -> kWh/(kg*K)
	DensityKgPerL:        1.0,
}

// EnergyKWh returns the energy (kWh) needed to change volumeL litres of
// this material by deltaK kelvin.
func (p Properties) EnergyKWh(volumeL, deltaK float64) float64 {
	return p.DensityKgPerL * volumeL * p.SpecificHeatCapWhKgK * deltaK
}
