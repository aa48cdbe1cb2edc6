package watertank

import (
	"hemcore/internal/hemerr"
	"hemcore/internal/material"
)

// SmartTank wraps a Tank with the state-of-charge heat-source dispatch of
// §4.2.4 and a top-up pump.
type SmartTank struct {
	*Tank

	UsableTempC    float64
	ColdFeedC      float64
	SetpointMaxC   float64
	SoCMin, SoCMax float64

	PumpPowerKW       float64
	PumpMaxFlowLPerMin float64

	PumpEnergyKWh float64 // accumulated this timestep, for the dedicated supply
}

// NewSmartTank builds a smart hot-water tank of numLayers equal layers;
// there is no default layer count.
func NewSmartTank(numLayers int, volumeL, initialTempC, ambientTempC, usableTempC, coldFeedC, setpointMaxC, qStdLsRefKWh float64) (*SmartTank, error) {
	base, err := NewTank(numLayers, volumeL, initialTempC, ambientTempC, setpointMaxC, qStdLsRefKWh)
	if err != nil {
		return nil, err
	}
	return &SmartTank{Tank: base, UsableTempC: usableTempC, ColdFeedC: coldFeedC, SetpointMaxC: setpointMaxC}, nil
}

// SoC computes the state-of-charge per §4.2.4:
//
//	SoC = sum_i [T_i >= T_u] * (1 + (T_i-T_u)/(T_u-T_c)) * (1/N) / (1 + (T_sp-T_u)/(T_u-T_c))
func (s *SmartTank) SoC() (float64, error) {
	denomSpan := s.UsableTempC - s.ColdFeedC
	if denomSpan == 0 {
		return 0, hemerr.Numericalf("SmartTank", "usable temperature equals cold feed temperature")
	}
	num := 0.0
	for _, tLayer := range s.LayerTempC {
		if tLayer >= s.UsableTempC {
			num += (1 + (tLayer-s.UsableTempC)/denomSpan) * (1.0 / float64(s.NumLayers))
		}
	}
	denom := 1 + (s.SetpointMaxC-s.UsableTempC)/denomSpan
	if denom == 0 {
		return 0, hemerr.Numericalf("SmartTank", "degenerate SoC denominator")
	}
	soc := num / denom
	if soc < 0 {
		return soc, hemerr.InputValidationf("SmartTank", "SoC %.4f below zero", soc)
	}
	return soc, nil
}

// DispatchSoC runs §4.2.4's layer-by-layer SoC-driven dispatch for one
// heat source bound to a SoC target rather than a thermostat layer.
func (s *SmartTank) DispatchSoC(src SoCSource, deltaH float64) error {
	soc, err := s.SoC()
	if err != nil {
		return err
	}
	if soc > s.SoCMax {
		return nil // heater already satisfied, stays off
	}
	if soc > s.SoCMin && soc <= s.SoCMax {
		// within deadband but above minimum: only continue if already
		// mid-dispatch; a fresh decision keeps it off.
		return nil
	}

	maxOutKWh := src.EnergyOutputMax(s.FlowTempCFor(src))
	if maxOutKWh <= 0 {
		return nil
	}

	// layer-by-layer: find the lowest layer below T_u and raise it,
	// promoting water to the top as we go, until SoC target is hit or
	// energy runs out.
	remaining := maxOutKWh
	for layer := 0; layer < s.NumLayers && remaining > 1e-9; layer++ {
		if s.LayerTempC[layer] >= s.SetpointMaxC {
			continue
		}
		target := s.UsableTempC
		if s.LayerTempC[layer] >= s.UsableTempC {
			target = s.SetpointMaxC
		}
		vol := s.layerVolumeL()
		needKWh := s.energyToRaise(vol, s.LayerTempC[layer], target)
		use := minf(needKWh, remaining)
		delivered := src.DemandEnergy(use, s.FlowTempCFor(src), s.AmbientTempC, true)
		s.depositEnergy(layer, delivered, material.Water)
		remaining -= delivered

		soc, err = s.SoC()
		if err != nil {
			return err
		}
		if soc >= s.SoCMax {
			break
		}
	}

	s.Rearrange()
	return s.CheckMonotone()
}

// FlowTempCFor returns the configured setpoint ceiling as the smart
// tank's flow temperature target for the given source (all smart-tank
// sources share the tank's setpoint ceiling).
func (s *SmartTank) FlowTempCFor(src SoCSource) float64 { return s.SetpointMaxC }

func (s *SmartTank) energyToRaise(volL, fromC, toC float64) float64 {
	if toC <= fromC {
		return 0
	}
	return material.Water.EnergyKWh(volL, toC-fromC)
}

// PumpTopUp meters the top-up pump per §4.2.4: pumped volume capped at
// min(required, max_flow*delta_t).
func (s *SmartTank) PumpTopUp(requiredL, deltaH float64) (pumpedL float64) {
	maxFlowL := s.PumpMaxFlowLPerMin * deltaH * 60
	pumpedL = requiredL
	if pumpedL > maxFlowL {
		pumpedL = maxFlowL
	}
	s.PumpEnergyKWh += s.PumpPowerKW * deltaH
	return pumpedL
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// SoCSource is the minimal heat-source surface the SoC dispatcher needs.
type SoCSource interface {
	EnergyOutputMax(flowTempC float64) float64
	DemandEnergy(requiredKWh, flowTempC, returnTempC float64, updateState bool) float64
}
