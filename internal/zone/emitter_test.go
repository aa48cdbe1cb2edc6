package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name      string
	capKWh    float64
	delivered float64
	calls     int
}

func (f *fakeSource) Name() string                        { return f.name }
func (f *fakeSource) EnergyOutputMax(float64) float64     { return f.capKWh }
func (f *fakeSource) TimestepEnd()                        {}
func (f *fakeSource) DemandEnergy(requiredKWh, _, _ float64, updateState bool) float64 {
	got := requiredKWh
	if got > f.capKWh {
		got = f.capKWh
	}
	if updateState {
		f.calls++
		f.delivered += got
	}
	return got
}

func TestSpaceSystem_DemandEnergy_ZeroWhenNoRequirement(t *testing.T) {
	src := &fakeSource{name: "rad", capKWh: 5}
	sys := SpaceSystem{Name: "rad", Source: src, FracConvective: 0.3}
	split := sys.DemandEnergy(0, true)
	assert.Zero(t, split.DeliveredKWh)
}

func TestSpaceSystem_DemandEnergy_SplitsConvectiveAndRadiative(t *testing.T) {
	src := &fakeSource{name: "rad", capKWh: 10}
	sys := SpaceSystem{Name: "rad", Source: src, FracConvective: 0.4}
	split := sys.DemandEnergy(5, true)
	require.Equal(t, 5.0, split.DeliveredKWh)
	assert.InDelta(t, 2.0, split.ConvectiveKWh, 1e-9)
	assert.InDelta(t, 3.0, split.RadiativeKWh, 1e-9)
}

func TestPriorityList_Dispatch_ReservesFloorForLowerPrioritySystems(t *testing.T) {
	primary := &fakeSource{name: "primary", capKWh: 100}
	backup := &fakeSource{name: "backup", capKWh: 100}
	pl := PriorityList{Systems: []*SpaceSystem{
		{Name: "primary", Source: primary, FracConvective: 1, Priority: 0},
		{Name: "backup", Source: backup, FracConvective: 1, Priority: 1, MinOutputKW: 2},
	}}

	res := pl.Dispatch(5, 1.0, true)

	// the backup system reserves 2kWh (MinOutputKW*1h) off the top, so the
	// primary system is only asked for 3kWh.
	require.Len(t, res.PerSystem, 2)
	assert.InDelta(t, 3.0, res.PerSystem[0].DeliveredKWh, 1e-9)
	assert.InDelta(t, 2.0, res.PerSystem[1].DeliveredKWh, 1e-9)
	assert.InDelta(t, 5.0, res.DeliveredKWh, 1e-9)
	assert.Zero(t, res.UnmetKWh)
}

func TestPriorityList_Dispatch_ReportsUnmetWhenCapacityExhausted(t *testing.T) {
	primary := &fakeSource{name: "primary", capKWh: 2}
	pl := PriorityList{Systems: []*SpaceSystem{
		{Name: "primary", Source: primary, FracConvective: 1},
	}}

	res := pl.Dispatch(5, 1.0, true)

	assert.InDelta(t, 2.0, res.DeliveredKWh, 1e-9)
	assert.InDelta(t, 3.0, res.UnmetKWh, 1e-9)
}

func TestPriorityList_Dispatch_DryRunDoesNotCommitToSources(t *testing.T) {
	primary := &fakeSource{name: "primary", capKWh: 10}
	pl := PriorityList{Systems: []*SpaceSystem{
		{Name: "primary", Source: primary, FracConvective: 1},
	}}

	pl.Dispatch(5, 1.0, false)

	assert.Zero(t, primary.calls)
	assert.Zero(t, primary.delivered)
}
