// Package control implements the polymorphic Control value (§3 Control):
// OnOff, Setpoint, Charge, CostMinimising, and Combination (a DAG of named
// sub-controls combined by AND/OR/MAX/MIN/MEAN). It is grounded on the
// teacher's tagged-dispatch idiom in internal/model/sensor.go (a constant
// key selecting behaviour from a lookup table) generalised to an
// interface, per the design note in spec §9 ("use a tagged variant for
// SourceType... dispatch on variant at the boundary").
package control

import (
	"fmt"

	"hemcore/internal/clock"
	"hemcore/internal/hemerr"
)

// Control is the common interface every control variant satisfies.
// IsOn and Setpnt both take the simulation hour, not a timestep index,
// so controls can be sampled off-grid by dry-run max-output queries.
type Control interface {
	IsOn(simHour float64) bool
}

// Setpointed is implemented by controls that additionally expose a
// setpoint and a "required period" predicate (Setpoint and Combination
// when it wraps setpoint controls).
type Setpointed interface {
	Control
	Setpnt(simHour float64) (value float64, ok bool)
	InRequiredPeriod(simHour float64) bool
}

// OnOff is a schedule of booleans.
type OnOff struct {
	Schedule clock.Series // 0/1 valued
}

func NewOnOff(schedule clock.Series) OnOff { return OnOff{Schedule: schedule} }

func (c OnOff) IsOn(simHour float64) bool {
	return c.Schedule.At(simHour) != 0
}

// Setpoint is a schedule of optional reals (NaN marks "no value
// scheduled") with an optional min/max clamp, a default-to-max fallback
// for unscheduled slots, and an advanced-start lead time in hours.
type Setpoint struct {
	Schedule       clock.Series // NaN marks "not set" for this slot
	Min, Max       float64
	HasMin, HasMax bool
	DefaultToMax   bool
	AdvancedStartH float64
}

func (c Setpoint) rawAt(simHour float64) (float64, bool) {
	v := c.Schedule.At(simHour)
	if isNaN(v) {
		if c.DefaultToMax && c.HasMax {
			return c.Max, true
		}
		return 0, false
	}
	return v, true
}

func (c Setpoint) Setpnt(simHour float64) (float64, bool) {
	v, ok := c.rawAt(simHour)
	if !ok {
		return 0, false
	}
	if c.HasMin && v < c.Min {
		v = c.Min
	}
	if c.HasMax && v > c.Max {
		v = c.Max
	}
	return v, true
}

// InRequiredPeriod is true only when the schedule value is non-null,
// considering the advanced-start lead-in: a setpoint scheduled to start
// at hour h is already "required" at h - AdvancedStartH.
func (c Setpoint) InRequiredPeriod(simHour float64) bool {
	_, ok := c.rawAt(simHour)
	if ok {
		return true
	}
	if c.AdvancedStartH > 0 {
		_, okAhead := c.rawAt(simHour + c.AdvancedStartH)
		return okAhead
	}
	return false
}

func (c Setpoint) IsOn(simHour float64) bool {
	return c.InRequiredPeriod(simHour)
}

func isNaN(f float64) bool { return f != f }

// Charge drives a thermal-storage charging schedule: a boolean charge
// window plus a per-day charge-level series (0..1), optionally modulated
// by an external-temperature-derived target charge factor.
type Charge struct {
	ChargeWindow  clock.Series
	ChargeLevel   clock.Series // fraction 0..1, one value per day slot
	ExternalTemp  clock.Series
	TempChargeCurve func(extTempC float64) float64 // optional
}

func (c Charge) IsOn(simHour float64) bool {
	return c.ChargeWindow.At(simHour) != 0
}

// TargetChargeLevel returns the scheduled charge level, modulated by the
// external-temperature curve when one is configured.
func (c Charge) TargetChargeLevel(simHour float64) float64 {
	level := c.ChargeLevel.At(simHour)
	if c.TempChargeCurve != nil {
		factor := c.TempChargeCurve(c.ExternalTemp.At(simHour))
		level *= factor
	}
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return level
}

// CostMinimising decides on/off by picking the cheapest N hours of every
// day from an hourly price schedule.
type CostMinimising struct {
	HourlyPrice clock.Series
	BudgetHoursPerDay int
}

// IsOn determines whether simHour falls in the cheapest BudgetHoursPerDay
// hours of its calendar day, ranking by price among the 24 hourly slots
// starting at the day boundary below simHour.
func (c CostMinimising) IsOn(simHour float64) bool {
	dayStart := float64(int(simHour/24)) * 24
	type slot struct {
		hour  float64
		price float64
	}
	slots := make([]slot, 24)
	for h := 0; h < 24; h++ {
		hh := dayStart + float64(h)
		slots[h] = slot{hour: hh, price: c.HourlyPrice.At(hh)}
	}
	// selection by simple insertion rank, budget is always small (<=24)
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			if slots[j].price < slots[i].price {
				slots[i], slots[j] = slots[j], slots[i]
			}
		}
	}
	budget := c.BudgetHoursPerDay
	if budget > 24 {
		budget = 24
	}
	hourOfDay := simHour - dayStart
	for i := 0; i < budget; i++ {
		if int(slots[i].hour-dayStart) == int(hourOfDay) {
			return true
		}
	}
	return false
}

// CombineOp selects how a Combination node folds its children.
type CombineOp int

const (
	OpAND CombineOp = iota
	OpOR
	OpMAX
	OpMIN
	OpMEAN
)

// Combination is a named node in a DAG of sub-controls.
type Combination struct {
	Name     string
	Op       CombineOp
	Children []Control
}

func (c Combination) IsOn(simHour float64) bool {
	if len(c.Children) == 0 {
		return false
	}
	switch c.Op {
	case OpAND:
		for _, ch := range c.Children {
			if !ch.IsOn(simHour) {
				return false
			}
		}
		return true
	case OpOR:
		for _, ch := range c.Children {
			if ch.IsOn(simHour) {
				return true
			}
		}
		return false
	case OpMAX, OpMEAN:
		// For boolean children MAX behaves like OR and MEAN>=0.5 like a
		// majority vote in which a tie counts as on.
		on := 0
		for _, ch := range c.Children {
			if ch.IsOn(simHour) {
				on++
			}
		}
		if c.Op == OpMAX {
			return on > 0
		}
		return float64(on)/float64(len(c.Children)) >= 0.5
	case OpMIN:
		for _, ch := range c.Children {
			if !ch.IsOn(simHour) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Graph is a named registry of controls used to build Combination nodes
// and detect reference cycles at load time.
type Graph struct {
	nodes map[string]Control
	deps  map[string][]string
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]Control), deps: make(map[string][]string)}
}

// Add registers a named control and its (already resolved) dependency
// names, for cycle bookkeeping. Leaf controls (OnOff, Setpoint, Charge,
// CostMinimising) have no dependencies.
func (g *Graph) Add(name string, c Control, deps []string) {
	g.nodes[name] = c
	g.deps[name] = deps
}

// Validate walks the graph depth-first with three-colour marking. It fails
// when a node is reached again while it is still on the current path (a
// cycle) or when a dependency names an unknown control; a node reached
// again after its own walk has finished (a shared sub-control) is accepted.
// Nothing is repaired at run time.
func (g *Graph) Validate() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return hemerr.InputValidationf("Control."+name, "cyclic combination-control reference: %v", append(stack, name))
		}
		color[name] = gray
		for _, dep := range g.deps[name] {
			if _, ok := g.nodes[dep]; !ok {
				return hemerr.InputValidationf("Control."+name, "references unknown control %q", dep)
			}
			if err := visit(dep, append(stack, name)); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}
	for name := range g.nodes {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a registered control by name.
func (g *Graph) Get(name string) (Control, error) {
	c, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("control: unknown control %q", name)
	}
	return c, nil
}
