// Package orchestrator implements the per-timestep loop of §4.6: the
// single entry point that interleaves hot-water demand, zone thermal
// balance, space-heat/cool dispatch, and end-of-timestep bookkeeping
// across every stateful system in a run.
//
// Grounded on the teacher's internal/simulator/engine.go Run loop (a
// fixed-Δt for-loop over a simulation clock calling into battery/PV/HP
// steps in a fixed order, with per-step results appended to a results
// slice) — generalised from the teacher's single-battery/single-HP
// pipeline into the twelve-step, many-zone/many-system loop of §4.6, and
// from wall-clock timestamps to the simulation clock's (idx, hour, Δt).
package orchestrator

import (
	"fmt"

	"hemcore/internal/clock"
	"hemcore/internal/control"
	"hemcore/internal/energysupply"
	"hemcore/internal/hemerr"
	"hemcore/internal/watertank"
	"hemcore/internal/weather"
	"hemcore/internal/zone"
)

// HotWaterEventSchedule resolves the list of draw-off events falling in a
// given timestep, per §6's "Events" schedule member.
type HotWaterEventSchedule interface {
	EventsAt(simHour, deltaH float64) []watertank.UsageEvent
}

// PrimaryHotWaterSource is the tank (ordinary or smart) the orchestrator
// calls demand_hot_water against, per §4.6 step 4.
type PrimaryHotWaterSource interface {
	DemandHotWater(events []watertank.UsageEvent, coldFeedC float64) watertank.DrawOffResult
	InternalGainsKWh(flowTempC float64) float64
}

// HeatSourceDispatcher is implemented by primary hot-water sources that
// drive their own wet heat sources each timestep (the ordinary/smart
// tank's DispatchHeatSources, §4.2.3). Declared separately from
// PrimaryHotWaterSource because a source with no wet heat sources of its
// own (e.g. a pass-through pre-heated tank) need not implement it.
type HeatSourceDispatcher interface {
	DispatchHeatSources(deltaH float64) error
}

// PreHeatedSource is a source of pre-warmed water (WWHRS or an upstream
// tank) that may consume the events list before the primary source sees
// it, per §9 design note (iv): pre-heated sources may have no heat
// sources of their own.
type PreHeatedSource interface {
	Consume(events []watertank.UsageEvent, coldFeedC float64) (remaining []watertank.UsageEvent, adjustedColdFeedC float64)
}

// VentilationModel solves the opening ratio meeting min/max ACH
// constraints, per §4.6 step 6.
type VentilationModel interface {
	SolveOpeningRatio(rvArg control.Control, simHour float64, minACH, maxACH float64) (ach float64)
}

// ZoneGains bundles one zone's internal and solar gains for a timestep
// (metabolic, appliances, lighting, buffer tank, DHW, plus solar), per
// §4.6 step 7.
type ZoneGains struct {
	InternalKWh float64
	SolarKWh    float64
}

// ZoneRuntime pairs a zone.Zone with its priority-ordered heating and
// cooling system lists and setpoint controls.
type ZoneRuntime struct {
	Zone        *zone.Zone
	Heating     *zone.PriorityList
	Cooling     *zone.PriorityList
	SetpntHeatC *control.Setpoint
	SetpntCoolC *control.Setpoint
	GainsFn     func(simHour float64) ZoneGains
	VolumeM3    float64
}

// StatefulSystem is anything with an end-of-timestep hook, per §4.6 step
// 12: heat pumps, boilers, heat batteries, heat network, storage tanks,
// diverters, energy supplies.
type StatefulSystem interface {
	TimestepEnd()
}

// ProgressSink is an optional run-progress observer (e.g. internal/live's
// Broadcaster); Run calls it without importing anything beyond this
// interface, keeping the core decoupled from any transport.
type ProgressSink interface {
	OnStart(totalSteps int)
	OnStep(res StepResult)
	OnComplete(totalSteps int)
	OnError(err error)
}

// Dwelling is the fully assembled simulation world for one run.
type Dwelling struct {
	Clock             clock.SimTime
	Conditions        *weather.Conditions
	Zones             []*ZoneRuntime
	PrimaryHW         PrimaryHotWaterSource
	PreHeated         []PreHeatedSource
	HWEvents          HotWaterEventSchedule
	ColdFeedC         clock.Series
	Ventilation       VentilationModel
	RVArg             control.Control
	MinACH, MaxACH    float64
	FracDHWInternalGainsConvective float64
	Supplies          []*energysupply.Supply
	Stateful          []StatefulSystem
	Sink              ProgressSink

	tempInternalAirPrev float64
}

// StepResult is what one timestep of Run reports back, for CSV emission
// or live-progress streaming.
type StepResult struct {
	Idx                 int
	Hour                float64
	HotWater            watertank.DrawOffResult
	UnmetDemandKWh       float64
	ZoneAirTempsC       []float64
	ACH                 float64
}

// Run drives the clock end to end, executing the twelve-step loop of
// §4.6 once per timestep, and returns one StepResult per timestep.
func (d *Dwelling) Run() ([]StepResult, error) {
	total := d.Clock.TotalSteps()
	results := make([]StepResult, 0, total)
	if d.Sink != nil {
		d.Sink.OnStart(total)
	}
	var stepErr error
	d.Clock.Iter(func(s clock.Step) bool {
		res, err := d.step(s)
		if err != nil {
			stepErr = err
			return false
		}
		results = append(results, res)
		if d.Sink != nil {
			d.Sink.OnStep(res)
		}
		return true
	})
	if stepErr != nil {
		if d.Sink != nil {
			d.Sink.OnError(stepErr)
		}
		return nil, stepErr
	}
	if d.Sink != nil {
		d.Sink.OnComplete(total)
	}
	return results, nil
}

func (d *Dwelling) step(s clock.Step) (StepResult, error) {
	d.Conditions.InvalidateAt(s.Idx)

	// Step 1: volume-weighted mean zone air temperature.
	d.tempInternalAirPrev = d.volumeWeightedAirTempC()

	// Step 2: hot-water demand events for this timestep.
	var events []watertank.UsageEvent
	if d.HWEvents != nil {
		events = d.HWEvents.EventsAt(s.Hour, s.Delta)
	}
	coldFeedC := d.ColdFeedC.At(s.Hour)

	// Step 3: pre-heated water sources consume the events list first.
	for _, pre := range d.PreHeated {
		events, coldFeedC = pre.Consume(events, coldFeedC)
	}

	// Step 4: primary hot-water source.
	var drawOff watertank.DrawOffResult
	if d.PrimaryHW != nil {
		drawOff = d.PrimaryHW.DemandHotWater(events, coldFeedC)
	}

	// Step 4b: dispatch the primary source's own wet heat sources against
	// its tank, per §4.2.3.
	if dispatcher, ok := d.PrimaryHW.(HeatSourceDispatcher); ok {
		if err := dispatcher.DispatchHeatSources(s.Delta); err != nil {
			return StepResult{}, hemerr.Wrap(hemerr.Numerical, "PrimaryHW", err)
		}
	}

	// Step 5: pipework losses and internal gains from DHW.
	dhwInternalGainsKWh := 0.0
	if d.PrimaryHW != nil && drawOff.TotalVolDrawoffL > 0 {
		flowTempC := drawOff.TempAverageDrawoffC
		gainsKWh := d.PrimaryHW.InternalGainsKWh(flowTempC)
		dhwInternalGainsKWh = d.FracDHWInternalGainsConvective * gainsKWh
	}

	// Step 6: ventilation opening ratio.
	ach := d.MinACH
	if d.Ventilation != nil {
		ach = d.Ventilation.SolveOpeningRatio(d.RVArg, s.Hour, d.MinACH, d.MaxACH)
	}

	extTempC := d.Conditions.AirTempC.At(s.Hour)

	totalUnmetKWh := 0.0
	airTemps := make([]float64, 0, len(d.Zones))

	anyHeatDemand := false
	anyCoolDemand := false

	type zoneWork struct {
		zr      *ZoneRuntime
		demand  zone.Demand
		gains   ZoneGains
	}
	work := make([]zoneWork, 0, len(d.Zones))

	// Step 7: per-zone gains and demand.
	for _, zr := range d.Zones {
		var gains ZoneGains
		if zr.GainsFn != nil {
			gains = zr.GainsFn(s.Hour)
		}
		gains.InternalKWh += dhwInternalGainsKWh * (zr.VolumeM3 / d.totalVolumeM3())

		setH, hasH := zr.SetpntHeatC.Setpnt(s.Hour)
		setC, hasC := zr.SetpntCoolC.Setpnt(s.Hour)
		demand := zr.Zone.SpaceHeatCoolDemand(s.Delta, extTempC, gains.InternalKWh, gains.SolarKWh, setH, setC, hasH, hasC)
		if demand.HeatingDemandKWh > 0 {
			anyHeatDemand = true
		}
		if demand.CoolingDemandKWh > 0 {
			anyCoolDemand = true
		}
		work = append(work, zoneWork{zr: zr, demand: demand, gains: gains})
	}

	// Step 8: select overall ACH driven by heating/cooling/free-cooling.
	switch {
	case anyHeatDemand:
		ach = d.MinACH
	case anyCoolDemand:
		ach = d.MaxACH
	}

	// Step 9-10: per-zone priority dispatch and unmet-demand recording.
	for _, w := range work {
		var convKWh, radKWh float64
		if w.demand.HeatingDemandKWh > 0 && w.zr.Heating != nil {
			hres := w.zr.Heating.Dispatch(w.demand.HeatingDemandKWh, s.Delta, true)
			convKWh += hres.ConvectiveKWh
			radKWh += hres.RadiativeKWh
			totalUnmetKWh += hres.UnmetKWh
		}
		if w.demand.CoolingDemandKWh > 0 && w.zr.Cooling != nil {
			cres := w.zr.Cooling.Dispatch(w.demand.CoolingDemandKWh, s.Delta, true)
			convKWh -= cres.ConvectiveKWh
			radKWh -= cres.RadiativeKWh
			totalUnmetKWh += cres.UnmetKWh
		}

		// Step 11: update zone temperature with aggregated gains.
		deliveredKWh := convKWh + radKWh + w.gains.InternalKWh + w.gains.SolarKWh
		if err := w.zr.Zone.UpdateTemperatures(s.Delta, extTempC, deliveredKWh); err != nil {
			return StepResult{}, hemerr.Wrap(hemerr.Numerical, fmt.Sprintf("zone.%s", w.zr.Zone.Name), err)
		}
		airTemps = append(airTemps, w.zr.Zone.AirTempC)
	}

	// Step 12: end-of-timestep hooks on every stateful system.
	for _, sup := range d.Supplies {
		if err := sup.EndOfTimestep(s.Delta); err != nil {
			return StepResult{}, err
		}
	}
	for _, st := range d.Stateful {
		st.TimestepEnd()
	}

	return StepResult{
		Idx:            s.Idx,
		Hour:           s.Hour,
		HotWater:       drawOff,
		UnmetDemandKWh: totalUnmetKWh,
		ZoneAirTempsC:  airTemps,
		ACH:            ach,
	}, nil
}

func (d *Dwelling) volumeWeightedAirTempC() float64 {
	totalVol := d.totalVolumeM3()
	if totalVol <= 0 {
		return 0
	}
	sum := 0.0
	for _, zr := range d.Zones {
		sum += zr.Zone.AirTempC * zr.VolumeM3
	}
	return sum / totalVol
}

func (d *Dwelling) totalVolumeM3() float64 {
	total := 0.0
	for _, zr := range d.Zones {
		total += zr.VolumeM3
	}
	return total
}
