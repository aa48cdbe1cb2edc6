package heatpump

import "hemcore/internal/hemerr"

func errBufferFlowInverted(hpFlowC, bufferFlowC float64) error {
	return hemerr.InputValidationf("BufferTank", "hp-to-buffer flow %.2fC exceeds buffer-to-emitter flow %.2fC", hpFlowC, bufferFlowC)
}

// HeatPump is the heat-pump state of §3: the current timestep's running
// totals and the committed-but-not-yet-aggregated per-service results.
type HeatPump struct {
	name string

	TotalTimeRunningCurrentTimestepH float64
	TimeRunningContinuousH           float64

	pending []ServiceResult

	HeatingProfileOn bool
	WaterProfileOn   bool

	CrankcaseStandbyKW float64

	lastAggregates map[string]Aggregate
}

// New builds an idle heat pump.
func New(name string) *HeatPump {
	return &HeatPump{name: name, lastAggregates: make(map[string]Aggregate)}
}

func (hp *HeatPump) Name() string { return hp.name }
