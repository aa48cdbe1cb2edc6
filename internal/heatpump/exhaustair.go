package heatpump

import (
	"fmt"
	"sort"

	"hemcore/internal/hemerr"
)

// ExhaustAirRecord is one manufacturer test row for an exhaust-air HP,
// additionally keyed by air flow rate, per §4.3.5.
type ExhaustAirRecord struct {
	TestRecord
	AirFlowRateM3h float64
}

// LoadExhaustAir groups records by air_flow_rate, requires every
// (design_flow_temp, test_letter) tuple to be present at every flow rate
// (warning otherwise), interpolates each tuple's capacity/cop as a
// function of air flow rate evaluated at throughputExhaustAir, and
// returns both the resulting TestDataSet and the overventilation ratio
// (lowest available flow rate / throughput, floored at 1).
func LoadExhaustAir(records []ExhaustAirRecord, throughputExhaustAirM3h float64) (*TestDataSet, float64, error) {
	byFlowRate := map[float64][]ExhaustAirRecord{}
	for _, r := range records {
		byFlowRate[r.AirFlowRateM3h] = append(byFlowRate[r.AirFlowRateM3h], r)
	}
	var flowRates []float64
	for fr := range byFlowRate {
		flowRates = append(flowRates, fr)
	}
	sort.Float64s(flowRates)
	if len(flowRates) == 0 {
		return nil, 0, hemerr.InputValidationf("ExhaustAirHeatPump", "no test records supplied")
	}

	type tupleKey struct {
		flow   float64
		letter TestLetter
	}
	tuples := map[tupleKey][]ExhaustAirRecord{}
	for _, r := range records {
		k := tupleKey{r.DesignFlowTempC, r.Letter}
		tuples[k] = append(tuples[k], r)
	}

	for k, rs := range tuples {
		if len(rs) != len(flowRates) {
			fmt.Printf("warning: exhaust-air HP tuple (flow=%.0f, letter=%s) missing at some air flow rates\n", k.flow, k.letter)
		}
	}

	var interpolated []TestRecord
	for k, rs := range tuples {
		sort.Slice(rs, func(i, j int) bool { return rs[i].AirFlowRateM3h < rs[j].AirFlowRateM3h })
		cap := interpAt(rs, throughputExhaustAirM3h, func(r ExhaustAirRecord) float64 { return r.CapacityKW })
		cop := interpAt(rs, throughputExhaustAirM3h, func(r ExhaustAirRecord) float64 { return r.CoP })
		base := rs[0].TestRecord
		base.DesignFlowTempC = k.flow
		base.Letter = k.letter
		base.CapacityKW = cap
		base.CoP = cop
		interpolated = append(interpolated, base)
	}

	ds, err := Load(interpolated)
	if err != nil {
		return nil, 0, err
	}

	lowestFlow := flowRates[0]
	overventRatio := 1.0
	if throughputExhaustAirM3h > 0 {
		ratio := lowestFlow / throughputExhaustAirM3h
		if ratio > overventRatio {
			overventRatio = ratio
		}
	}

	return ds, overventRatio, nil
}

func interpAt(rs []ExhaustAirRecord, x float64, f func(ExhaustAirRecord) float64) float64 {
	n := len(rs)
	if n == 0 {
		return 0
	}
	if x <= rs[0].AirFlowRateM3h {
		return f(rs[0])
	}
	if x >= rs[n-1].AirFlowRateM3h {
		return f(rs[n-1])
	}
	for i := 0; i < n-1; i++ {
		if x >= rs[i].AirFlowRateM3h && x <= rs[i+1].AirFlowRateM3h {
			frac := (x - rs[i].AirFlowRateM3h) / (rs[i+1].AirFlowRateM3h - rs[i].AirFlowRateM3h)
			return f(rs[i]) + frac*(f(rs[i+1])-f(rs[i]))
		}
	}
	return f(rs[n-1])
}
