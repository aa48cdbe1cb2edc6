// Package energysupply implements the per-timestep energy ledger (§3
// Energy supply): demand booking by service-connection name, an optional
// PV diverter target, an optional battery store, and the derived
// import/export/generated-consumed/storage flow totals. The battery
// store's decide-then-clamp-to-capacity shape is adapted directly from
// the teacher's Battery.process (internal/simulator/battery.go): there,
// a desired charge/discharge power is clamped against a Wh floor/ceiling
// over a wall-clock interval; here the same clamp runs once per fixed
// simulation timestep instead of a variable backward-looking interval.
package energysupply

import (
	"math"

	"hemcore/internal/hemerr"
)

// FuelType tags a supply's fuel for emissions/primary-energy
// post-processing (out of scope here, but the tag is carried per §6).
type FuelType int

const (
	FuelElectricity FuelType = iota
	FuelGas
	FuelOther
)

// BatteryStoreConfig is the battery's configurable envelope.
type BatteryStoreConfig struct {
	CapacityKWh        float64
	ChargeEfficiency   float64 // 0..1
	DischargeEfficiency float64
	MaxChargeKW        float64
	MaxDischargeKW     float64
}

// BatteryStore is a simple round-trip-efficiency-limited store attached to
// one energy supply.
type BatteryStore struct {
	cfg   BatteryStoreConfig
	socKWh float64
}

// NewBatteryStore builds a store starting empty.
func NewBatteryStore(cfg BatteryStoreConfig) *BatteryStore {
	return &BatteryStore{cfg: cfg}
}

// SoCKWh returns the current state of charge.
func (b *BatteryStore) SoCKWh() float64 { return b.socKWh }

// chargeDischarge applies a desired store energy transfer (positive =
// charge, negative = discharge) over Δt hours, clamped to capacity and
// rate limits, returning the energy actually drawn from/delivered to the
// supply (i.e. grid-side energy, including round-trip losses) and the
// energy actually moved into/out of the store.
func (b *BatteryStore) chargeDischarge(desiredKWh, deltaH float64) (supplySideKWh, storeSideKWh float64) {
	if desiredKWh > 0 {
		maxRateKWh := b.cfg.MaxChargeKW * deltaH
		if desiredKWh > maxRateKWh {
			desiredKWh = maxRateKWh
		}
		headroomKWh := b.cfg.CapacityKWh - b.socKWh
		storeSideKWh = math.Min(desiredKWh*clampEff(b.cfg.ChargeEfficiency), headroomKWh)
		supplySideKWh = storeSideKWh / clampEff(b.cfg.ChargeEfficiency)
		b.socKWh += storeSideKWh
		return supplySideKWh, storeSideKWh
	}
	if desiredKWh < 0 {
		maxRateKWh := b.cfg.MaxDischargeKW * deltaH
		want := -desiredKWh
		if want > maxRateKWh {
			want = maxRateKWh
		}
		storeSideKWh = math.Min(want, b.socKWh)
		supplySideKWh = storeSideKWh * clampEff(b.cfg.DischargeEfficiency)
		b.socKWh -= storeSideKWh
		return -supplySideKWh, -storeSideKWh
	}
	return 0, 0
}

func clampEff(e float64) float64 {
	if e <= 0 {
		return 1
	}
	if e > 1 {
		return 1
	}
	return e
}

// DiverterTarget is implemented by a PV diverter (watertank package) so
// the supply can hand it end-of-timestep surplus without an import cycle.
type DiverterTarget interface {
	// DivertSurplus offers up to -surplusKWh (surplus is negative demand)
	// and returns the amount actually accepted.
	DivertSurplus(surplusKWh float64) (acceptedKWh float64)
	ResetTimestep()
}

// Supply is one service-connection ledger: demand booked this timestep,
// an optional battery, and an optional diverter.
type Supply struct {
	Name     string
	Fuel     FuelType
	Battery  *BatteryStore
	Diverter DiverterTarget

	demandKWh float64 // positive = net consumption this timestep, negative = net generation

	ImportKWh             float64
	ExportKWh             float64
	GeneratedConsumedKWh  float64
	ToStorageKWh          float64
	FromStorageKWh        float64
	UnmetDemandKWh        float64
}

// New builds an empty ledger for one timestep-to-timestep run.
func New(name string, fuel FuelType) *Supply {
	return &Supply{Name: name, Fuel: fuel}
}

// Demand books kWh of demand (positive) or generation (negative) against
// this supply for the current timestep. Called repeatedly as each heat
// source/emitter reports its consumption.
func (s *Supply) Demand(kWh float64) {
	s.demandKWh += kWh
}

// Unmet books non-fatal Insufficiency energy (§7): HW or space demand
// that could not be met by any source this timestep.
func (s *Supply) Unmet(kWh float64) {
	if kWh < 0 {
		return
	}
	s.UnmetDemandKWh += kWh
}

// EndOfTimestep settles the timestep's demand against storage and the
// grid, per §3's "computes energy_import, energy_export,
// energy_generated_consumed, energy_to/from_storage" and invariant 4 of
// §8 (demand = imported + generated_consumed + storage_in - storage_out).
func (s *Supply) EndOfTimestep(deltaH float64) error {
	net := s.demandKWh

	if s.Battery != nil {
		// Positive net demand with no local generation can't be offset by
		// charging; only surplus (negative net) drives a charge decision,
		// and only shortfall (positive net) drives a discharge decision.
		desired := 0.0
		if net < 0 {
			desired = -net // charge with the surplus
		} else if net > 0 {
			desired = -net // discharge to cover the shortfall (negative desiredKWh => discharge)
		}
		supplySide, storeSide := s.Battery.chargeDischarge(desired, deltaH)
		net += supplySide
		if storeSide > 0 {
			s.ToStorageKWh += storeSide
		} else if storeSide < 0 {
			s.FromStorageKWh += -storeSide
		}
	}

	if s.Diverter != nil && net < 0 {
		accepted := s.Diverter.DivertSurplus(net)
		net += accepted
		s.GeneratedConsumedKWh += accepted
	}

	if net > 0 {
		s.ImportKWh += net
	} else if net < 0 {
		s.ExportKWh += -net
	}
	// Self-cancellation between same-timestep demand and generation, and
	// any amount routed to the battery, is already reflected in net and
	// ToStorageKWh above; GeneratedConsumedKWh only needs the diverter's
	// contribution, booked where accepted is computed.

	if s.Diverter != nil {
		s.Diverter.ResetTimestep()
	}

	s.demandKWh = 0

	if math.IsNaN(net) || math.IsInf(net, 0) {
		return hemerr.Numericalf("EnergySupply."+s.Name, "non-finite net energy after settlement")
	}
	return nil
}
