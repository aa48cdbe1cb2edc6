// Package watertank implements the stratified hot-water storage tank
// state machine (§4.2): layer stratification, the draw-off algorithm, the
// heat-source dispatch order, layer rearrangement, primary-pipework
// losses, the smart tank's state-of-charge driver, and the PV diverter.
//
// The heater-dispatch loop is grounded on the teacher's
// internal/simulator/battery.go decide-then-clamp pattern (a switch-on
// decision followed by an energy-constrained settlement against a
// capacity ceiling); the layer array itself has no teacher analogue, so
// it follows spec §4.2 directly.
package watertank

import (
	"fmt"
	"sort"

	"hemcore/internal/hemerr"
	"hemcore/internal/heatsource"
	"hemcore/internal/material"
)

// HeatSourceSlot binds a dispatchable heat source to a heater layer and
// (for ordinary tanks) a thermostat layer.
type HeatSourceSlot struct {
	Source             heatsource.Source
	HeaterLayerIdx     int
	ThermostatLayerIdx int
	SwitchOn           func(thermostatTempC float64) bool
	FlowTempC          float64
}

// Tank is the storage tank described in §3/§4.2.
type Tank struct {
	NumLayers    int
	VolumeL      float64
	LayerTempC   []float64
	AmbientTempC float64
	SetpointMaxC float64
	QStdLsRefKWh float64 // standing loss reference, kWh/day at 65-20K

	Sources   []HeatSourceSlot
	Pipework  []*PipeworkSegment

	prevInputKWh float64 // cached prior-step input energy, for pipework edge detection

	lastDrawOff DrawOffResult
}

// NewTank builds a tank with numLayers equal layers, all initialised to
// initialTempC.
func NewTank(numLayers int, volumeL, initialTempC, ambientTempC, setpointMaxC, qStdLsRefKWh float64) (*Tank, error) {
	if numLayers <= 0 {
		return nil, hemerr.InputValidationf("StorageTank", "num_layers must be positive, got %d", numLayers)
	}
	layers := make([]float64, numLayers)
	for i := range layers {
		layers[i] = initialTempC
	}
	return &Tank{
		NumLayers:    numLayers,
		VolumeL:      volumeL,
		LayerTempC:   layers,
		AmbientTempC: ambientTempC,
		SetpointMaxC: setpointMaxC,
		QStdLsRefKWh: qStdLsRefKWh,
	}, nil
}

func (t *Tank) layerVolumeL() float64 { return t.VolumeL / float64(t.NumLayers) }

// CheckMonotone verifies invariant 1 of §8: layer temperatures are
// non-decreasing bottom to top, within floating point tolerance.
func (t *Tank) CheckMonotone() error {
	for i := 0; i < t.NumLayers-1; i++ {
		if t.LayerTempC[i] > t.LayerTempC[i+1]+1e-9 {
			return hemerr.Numericalf("StorageTank", "layer %d (%.4fC) exceeds layer %d (%.4fC)", i, t.LayerTempC[i], i+1, t.LayerTempC[i+1])
		}
	}
	return nil
}

// Rearrange implements §4.2.5: iterate bottom-to-top, whenever
// T[i] >= T[i+1], mix the contiguous block of layers flagged, assign the
// volume-weighted mean, and continue until the vector is fully sorted.
// Applied to an already-sorted vector it is the identity (round-trip R2).
func (t *Tank) Rearrange() {
	layerVol := t.layerVolumeL()
	changed := true
	for changed {
		changed = false
		i := 0
		for i < t.NumLayers-1 {
			if t.LayerTempC[i] >= t.LayerTempC[i+1]-1e-12 && t.LayerTempC[i] > t.LayerTempC[i+1] {
				// find the extent of the contiguous inverted block
				j := i + 1
				sum := t.LayerTempC[i]*layerVol + t.LayerTempC[i+1]*layerVol
				vol := 2 * layerVol
				for j+1 < t.NumLayers && t.LayerTempC[j] > t.LayerTempC[j+1] {
					j++
					sum += t.LayerTempC[j] * layerVol
					vol += layerVol
				}
				mixed := sum / vol
				for k := i; k <= j; k++ {
					t.LayerTempC[k] = mixed
				}
				changed = true
				i = j + 1
			} else {
				i++
			}
		}
	}
}

// sortSources orders heat sources ascending by heater-layer index, bottom
// first, per §4.2.3.
func (t *Tank) sortSources() {
	sort.SliceStable(t.Sources, func(a, b int) bool {
		return t.Sources[a].HeaterLayerIdx < t.Sources[b].HeaterLayerIdx
	})
}

// DispatchHeatSources runs §4.2.3's per-timestep heater dispatch loop.
func (t *Tank) DispatchHeatSources(deltaH float64) error {
	t.sortSources()
	water := material.Water

	for _, slot := range t.Sources {
		thermTemp := t.LayerTempC[slot.ThermostatLayerIdx]
		if !slot.SwitchOn(thermTemp) {
			continue
		}

		maxOutKWh := slot.Source.EnergyOutputMax(slot.FlowTempC)
		pipeLossKWh := t.primaryPipeworkLoss(slot.FlowTempC, deltaH, maxOutKWh > 0)
		available := maxOutKWh - pipeLossKWh
		if available <= 0 {
			continue
		}

		delivered := slot.Source.DemandEnergy(available, slot.FlowTempC, t.AmbientTempC, true)
		t.depositEnergy(slot.HeaterLayerIdx, delivered, water)
		t.Rearrange()

		t.applyStandingLoss(deltaH, slot.HeaterLayerIdx, delivered > 0)

		surplus := t.surplusAboveSetpoint(slot.HeaterLayerIdx)
		if surplus > 0 {
			qInH := delivered - surplus
			if qInH < 0 {
				qInH = 0
			}
			_ = slot.Source.DemandEnergy(qInH-pipeLossKWh, slot.FlowTempC, t.AmbientTempC, true)
		}
	}

	if err := t.CheckMonotone(); err != nil {
		return err
	}
	return nil
}

// depositEnergy raises a single layer's temperature by the energy
// delivered, in kWh.
func (t *Tank) depositEnergy(layerIdx int, kWh float64, m material.Properties) {
	if kWh == 0 {
		return
	}
	vol := t.layerVolumeL()
	deltaK := kWh / (m.DensityKgPerL * vol * m.SpecificHeatCapWhKgK)
	t.LayerTempC[layerIdx] += deltaK
}

// applyStandingLoss implements §4.2.3 step 4: standing heat loss
// H_sto = 1000*Q_std_ls_ref/(24*(65-20)) W/K, prorated by layer volume,
// applied against (T_before_loss - T_amb), where T_before_loss is clamped
// to setpnt_max only if the heat source contributed energy to the layer.
func (t *Tank) applyStandingLoss(deltaH float64, heaterLayerIdx int, sourceContributed bool) {
	hStoWPerK := 1000 * t.QStdLsRefKWh / (24 * (65 - 20))
	layerVol := t.layerVolumeL()
	hStoPerLayer := hStoWPerK * (layerVol / t.VolumeL)
	for i := 0; i < t.NumLayers; i++ {
		tBefore := t.LayerTempC[i]
		if i == heaterLayerIdx && sourceContributed && tBefore > t.SetpointMaxC {
			tBefore = t.SetpointMaxC
		}
		lossKWh := hStoPerLayer * (tBefore - t.AmbientTempC) * deltaH / 1000.0
		if lossKWh <= 0 {
			continue
		}
		vol := layerVol
		deltaK := lossKWh / (material.Water.DensityKgPerL * vol * material.Water.SpecificHeatCapWhKgK)
		t.LayerTempC[i] -= deltaK
	}
}

// surplusAboveSetpoint sums the energy (kWh) represented by layers at or
// above heaterLayerIdx whose temperature exceeds SetpointMaxC.
func (t *Tank) surplusAboveSetpoint(heaterLayerIdx int) float64 {
	vol := t.layerVolumeL()
	surplus := 0.0
	for i := heaterLayerIdx; i < t.NumLayers; i++ {
		if t.LayerTempC[i] > t.SetpointMaxC {
			surplus += material.Water.EnergyKWh(vol, t.LayerTempC[i]-t.SetpointMaxC)
		}
	}
	return surplus
}

// AdditionalEnergyInput implements the PV-diverter hook of §4.2.7: it
// performs the same calc-final-temps as a regular heat source but against
// the diverter's own setpoint ceiling, returning the energy actually
// accepted.
func (t *Tank) AdditionalEnergyInput(heaterLayerIdx int, energyMaxKWh, controlMaxC float64) float64 {
	if energyMaxKWh <= 0 {
		return 0
	}
	vol := t.layerVolumeL()
	headroomKWh := material.Water.EnergyKWh(vol, controlMaxC-t.LayerTempC[heaterLayerIdx])
	if headroomKWh <= 0 {
		return 0
	}
	accepted := energyMaxKWh
	if accepted > headroomKWh {
		accepted = headroomKWh
	}
	t.depositEnergy(heaterLayerIdx, accepted, material.Water)
	t.Rearrange()
	return accepted
}

func (t *Tank) String() string {
	return fmt.Sprintf("Tank(layers=%d, vol=%.1fL)", t.NumLayers, t.VolumeL)
}
