package heatpump

import "math"

// Aggregate is the end-of-timestep rollup for one service name, reported
// out for §6 Output's "heat-pump per-service CoP/energy" detailed report.
type Aggregate struct {
	ServiceName        string
	LoadRatio          float64
	OnOffMode          bool
	EnergyInputKWh     float64
	EnergyDeliveredKWh float64
	CoP                float64
}

// minModulationRate linearly interpolates the minimum modulation rate
// between the 20C and 55C (or 35C and 55C) design points, per §4.3.4. If
// the 55C design point is absent, the low-temperature value alone is
// used.
func minModulationRate(flowTempC float64, airSink bool, has55 bool, lowVal, highVal float64) float64 {
	if !has55 {
		return lowVal
	}
	lowT := 35.0
	if airSink {
		lowT = 20.0
	}
	highT := 55.0
	if flowTempC <= lowT {
		return lowVal
	}
	if flowTempC >= highT {
		return highVal
	}
	frac := (flowTempC - lowT) / (highT - lowT)
	return lowVal + frac*(highVal-lowVal)
}

// TimestepEnd implements §4.3.4: aggregate committed service calls,
// compute load ratios, on/off-mode inertia penalties, ancillary energy
// for stopped services, and crankcase/standby/off-mode energy, then reset
// the commit buffers.
func (hp *HeatPump) TimestepEnd(timestepH, rMinLow, rMinHigh float64, has55 bool, timeRemainingH float64) map[string]Aggregate {
	out := make(map[string]Aggregate)

	// sum time_running per service name (space-heating services combined
	// for a single load-ratio modulation decision, per §4.3.4).
	type accum struct {
		timeRunningH, deliveredKWh, inputKWh, cop, capacityKW, degCoeff float64
		sinkAir                                                        bool
		count                                                          int
	}
	byService := map[string]*accum{}
	for _, r := range hp.pending {
		a, ok := byService[r.ServiceName]
		if !ok {
			a = &accum{}
			byService[r.ServiceName] = a
		}
		a.timeRunningH += r.TimeRunningH
		a.deliveredKWh += r.EnergyDeliveredKWh
		a.inputKWh += r.EnergyInputKWh
		a.cop += r.CoP
		a.capacityKW += r.CapacityKW
		a.degCoeff += r.DegradationCoeff
		a.sinkAir = r.Sink == SinkAir
		a.count++
	}

	hp.TotalTimeRunningCurrentTimestepH = 0
	for name, a := range byService {
		if a.count == 0 {
			continue
		}
		avgCoP := a.cop / float64(a.count)
		avgCapacity := a.capacityKW / float64(a.count)
		avgDeg := a.degCoeff / float64(a.count)

		r := a.timeRunningH / timestepH
		rMin := minModulationRate(0, a.sinkAir, has55, rMinLow, rMinHigh)
		onOff := r > 0 && r < rMin

		fullLoadKW := 0.0
		if avgCoP > 0 {
			fullLoadKW = avgCapacity / avgCoP
		}
		minLoadKW := fullLoadKW * rMin

		inertiaKWh := 0.0
		if onOff && rMin > 0 {
			tauOnOff := 1.0 / 60.0 // 1 minute, hours
			tauService := timestepH
			divisor := 1.0
			if (name == "dhw" || name == "water") && a.sinkAir { // DHW-on-air-sink divisor
				divisor = 1 - avgDeg*(1-r/rMin)
				if divisor <= 0 {
					divisor = 1
				}
			}
			inertiaKWh = minLoadKW * tauOnOff * r * (1 - r) / tauService / divisor
		}
		a.inputKWh += inertiaKWh

		// ancillary "when off" energy for services with no later running
		// service this timestep (approximated: any residual time after
		// this service's share of the timestep).
		if rMin > 0 {
			usedTimeH := (r / rMin) * timestepH
			remaining := timeRemainingH - usedTimeH
			if remaining > 0 {
				divisor := 1.0
				ancillary := (1 - avgDeg) * (minLoadKW / rMin) * remaining / divisor
				a.inputKWh += math.Max(0, ancillary)
			}
		}

		hp.TotalTimeRunningCurrentTimestepH += a.timeRunningH

		out[name] = Aggregate{
			ServiceName:        name,
			LoadRatio:          r,
			OnOffMode:          onOff,
			EnergyInputKWh:     a.inputKWh,
			EnergyDeliveredKWh: a.deliveredKWh,
			CoP:                avgCoP,
		}
	}

	// crankcase/standby/off-mode energy
	if hp.HeatingProfileOn || hp.WaterProfileOn {
		for name := range out {
			agg := out[name]
			agg.EnergyInputKWh += hp.CrankcaseStandbyKW * (timestepH - byService[name].timeRunningH)
			out[name] = agg
		}
	}

	if hp.TotalTimeRunningCurrentTimestepH > timestepH+1e-9 {
		// clamp: invariant 3 of §8 must hold even under accumulation
		// rounding across many services.
		hp.TotalTimeRunningCurrentTimestepH = timestepH
	}

	hp.lastAggregates = out
	hp.pending = nil
	hp.TimeRunningContinuousH = hp.TotalTimeRunningCurrentTimestepH

	return out
}

// LastAggregates returns the most recent TimestepEnd rollup, for
// reporting.
func (hp *HeatPump) LastAggregates() map[string]Aggregate { return hp.lastAggregates }
