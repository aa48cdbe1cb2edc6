// Package zone implements the zone thermal-balance contract of §3/§4.6.
// The envelope finite-difference solver itself is out of scope (§1:
// "zone envelope finite-difference solver (treated as a black box with a
// documented contract)"); this package provides that documented contract
// plus a lumped-capacitance implementation adequate to drive the
// orchestrator, emitters, and ventilation model end to end.
//
// Grounded on the teacher's internal/simulator/thermal.go ThermalModel:
// the same heat-loss-coefficient-times-temperature-difference balance and
// thermal-mass-divided energy-to-temperature step, generalised from a
// single insulation-level constant to the sum of a zone's building
// elements and thermal bridges.
package zone

import "hemcore/internal/hemerr"

// BuildingElement is one opaque or transparent envelope element
// contributing a U-value*area heat-loss term. Transparent elements also
// carry the tilt/orientation pair needed to resolve solar gains against
// internal/weather.Conditions.SurfaceAt.
type BuildingElement struct {
	Name        string
	AreaM2      float64
	UValueWM2K  float64

	Transparent    bool
	TiltDeg        float64
	OrientationDeg float64
}

// ThermalBridge is a linear thermal bridge contributing a psi*length
// heat-loss term; point (chi) bridges are not modelled.
type ThermalBridge struct {
	Name           string
	LengthM        float64
	PsiWPerMK      float64
}

// HeatLossWPerK sums the fabric and thermal-bridge heat-loss
// coefficients for the zone.
func HeatLossWPerK(elements []BuildingElement, bridges []ThermalBridge) float64 {
	total := 0.0
	for _, e := range elements {
		total += e.AreaM2 * e.UValueWM2K
	}
	for _, b := range bridges {
		total += b.LengthM * b.PsiWPerMK
	}
	return total
}

// Zone is the zone state of §3: area, volume, elements, bridges, and the
// current air/operative temperatures.
type Zone struct {
	Name       string
	AreaM2     float64
	VolumeM3   float64
	Elements   []BuildingElement
	Bridges    []ThermalBridge

	AirTempC       float64
	OperativeTempC float64

	ThermalMassKWhPerK float64
	fracConvective     float64 // internal default mix, overridden per call
}

// New builds a zone at a given initial air temperature.
func New(name string, areaM2, volumeM3, thermalMassKWhPerK, initialTempC float64, elements []BuildingElement, bridges []ThermalBridge) *Zone {
	return &Zone{
		Name: name, AreaM2: areaM2, VolumeM3: volumeM3,
		Elements: elements, Bridges: bridges,
		AirTempC: initialTempC, OperativeTempC: initialTempC,
		ThermalMassKWhPerK: thermalMassKWhPerK,
	}
}

// Demand is the result of SpaceHeatCoolDemand: the energy (kWh) needed to
// hold the zone at its heating/cooling setpoints this timestep.
type Demand struct {
	HeatingDemandKWh float64
	CoolingDemandKWh float64
}

// SpaceHeatCoolDemand implements §4.6 step 7's documented contract: given
// internal and solar gains (kWh, already split by convective fraction),
// external temperature, and heating/cooling setpoints, return the energy
// required this timestep to hold each setpoint, without mutating zone
// state (state is advanced separately by UpdateTemperatures once the
// orchestrator has dispatched emitters against this demand).
func (z *Zone) SpaceHeatCoolDemand(deltaH, extTempC, gainsInternalKWh, gainsSolarKWh float64, setpntHeatC, setpntCoolC float64, hasHeat, hasCool bool) Demand {
	hlc := HeatLossWPerK(z.Elements, z.Bridges)
	lossWithNoSystem := hlc * (z.AirTempC - extTempC) / 1000.0 * deltaH
	netFreeKWh := gainsInternalKWh + gainsSolarKWh - lossWithNoSystem

	var d Demand
	if hasHeat {
		requiredToHoldHeat := hlc*(setpntHeatC-extTempC)/1000.0*deltaH - gainsInternalKWh - gainsSolarKWh
		if requiredToHoldHeat > 0 {
			d.HeatingDemandKWh = requiredToHoldHeat
		}
	}
	if hasCool {
		requiredToHoldCool := -(hlc*(setpntCoolC-extTempC)/1000.0*deltaH - gainsInternalKWh - gainsSolarKWh)
		if requiredToHoldCool > 0 {
			d.CoolingDemandKWh = requiredToHoldCool
		}
	}
	_ = netFreeKWh
	return d
}

// UpdateTemperatures advances the zone's air temperature given the
// convective+radiative energy actually delivered this timestep (kWh,
// positive=heating, negative=cooling) and the external temperature, per
// §4.6 step 11.
func (z *Zone) UpdateTemperatures(deltaH, extTempC, deliveredKWh float64) error {
	if z.ThermalMassKWhPerK <= 0 {
		return hemerr.InputValidationf("Zone."+z.Name, "thermal mass must be positive")
	}
	hlc := HeatLossWPerK(z.Elements, z.Bridges)
	lossKWh := hlc * (z.AirTempC - extTempC) / 1000.0 * deltaH
	netKWh := deliveredKWh - lossKWh
	deltaK := netKWh / z.ThermalMassKWhPerK
	z.AirTempC += deltaK
	z.OperativeTempC = z.AirTempC // radiant/air split omitted: treated as equal in this lumped model
	return nil
}
