package zone

import "hemcore/internal/heatsource"

// EmitterKind tags how a space-heat/cool system exchanges energy with the
// zone air, per §9's tagged-variant-for-SinkType note.
type EmitterKind int

const (
	EmitterWet EmitterKind = iota
	EmitterElectricInstant
	EmitterWarmAir
)

// SpaceSystem is one entry in a zone's priority-ordered list of
// heating/cooling systems (§4.6 step 9), wrapping a heatsource.Source with
// the convective/radiative split and priority the orchestrator needs.
type SpaceSystem struct {
	Name           string
	Kind           EmitterKind
	Source         heatsource.Source
	FracConvective float64
	Priority       int
	FlowTempC      float64
	ReturnTempC    float64
	MinOutputKW    float64
}

// SplitResult is the convective/radiative decomposition of one system's
// delivered energy this timestep.
type SplitResult struct {
	DeliveredKWh  float64
	ConvectiveKWh float64
	RadiativeKWh  float64
}

// DemandEnergy calls the wrapped source and splits the delivered energy by
// FracConvective, per §4.6 step 9.
func (s *SpaceSystem) DemandEnergy(requiredKWh float64, updateState bool) SplitResult {
	if requiredKWh <= 0 {
		return SplitResult{}
	}
	delivered := s.Source.DemandEnergy(requiredKWh, s.FlowTempC, s.ReturnTempC, updateState)
	return SplitResult{
		DeliveredKWh:  delivered,
		ConvectiveKWh: delivered * s.FracConvective,
		RadiativeKWh:  delivered * (1 - s.FracConvective),
	}
}

// PriorityList is a zone's ordered stack of heating (or cooling) systems,
// highest priority first.
type PriorityList struct {
	Systems []*SpaceSystem
}

// DispatchResult aggregates one priority-list dispatch.
type DispatchResult struct {
	DeliveredKWh  float64
	ConvectiveKWh float64
	RadiativeKWh  float64
	UnmetKWh      float64
	PerSystem     []SplitResult
}

// Dispatch walks the priority list per §4.6 step 9: at each system, the
// remaining demand is first reduced by the summed minimum output of every
// still-untried lower-priority system (so a lower-priority system is never
// starved below its floor), the current system is called with whatever
// demand remains, and the walk then moves on to the next system whether
// or not the current one delivered anything.
func (pl *PriorityList) Dispatch(requiredKWh, timeAvailableH float64, updateState bool) DispatchResult {
	var res DispatchResult
	remaining := requiredKWh
	for i, sys := range pl.Systems {
		if remaining <= 1e-12 {
			break
		}
		minFloorBelow := 0.0
		for j := i + 1; j < len(pl.Systems); j++ {
			minFloorBelow += pl.Systems[j].MinOutputKW * timeAvailableH
		}
		askFor := remaining - minFloorBelow
		if askFor < 0 {
			askFor = 0
		}
		split := sys.DemandEnergy(askFor, updateState)
		res.PerSystem = append(res.PerSystem, split)
		res.DeliveredKWh += split.DeliveredKWh
		res.ConvectiveKWh += split.ConvectiveKWh
		res.RadiativeKWh += split.RadiativeKWh
		remaining -= split.DeliveredKWh
	}
	if remaining > 0 {
		res.UnmetKWh = remaining
	}
	return res
}
