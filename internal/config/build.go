package config

import (
	"hemcore/internal/clock"
	"hemcore/internal/control"
	"hemcore/internal/energysupply"
	"hemcore/internal/heatnetwork"
	"hemcore/internal/heatsource"
	"hemcore/internal/orchestrator"
	"hemcore/internal/watertank"
	"hemcore/internal/weather"
	"hemcore/internal/zone"
)

// Build assembles the core engine types this config section covers: the
// simulation clock, external conditions and per-zone solar gains, zones
// (with empty heating/cooling priority lists — wiring a concrete
// SpaceHeatSystem graph is left to the caller, since §1 places
// schedule/event construction beyond the core's scope), hot water storage
// with its wet heat sources, and energy supplies. Callers that need
// emitters or additional DHW events attach them to the returned
// Dwelling's Zones/HWEvents fields before calling Run.
func (c *Config) Build() (*orchestrator.Dwelling, error) {
	simTime, err := clock.New(c.SimulationTime.StartDay, c.SimulationTime.EndDay, c.SimulationTime.TimestepH)
	if err != nil {
		return nil, err
	}
	deltaH := c.SimulationTime.TimestepH

	conditions, err := c.buildConditions()
	if err != nil {
		return nil, err
	}

	zones := make([]*orchestrator.ZoneRuntime, 0, len(c.Zones))
	for _, zc := range c.Zones {
		elements := make([]zone.BuildingElement, 0, len(zc.Elements))
		for _, ec := range zc.Elements {
			elements = append(elements, zone.BuildingElement{
				Name:           ec.Name,
				AreaM2:         ec.AreaM2,
				UValueWM2K:     ec.UValueWM2K,
				Transparent:    ec.Transparent,
				TiltDeg:        ec.TiltDeg,
				OrientationDeg: ec.OrientationDeg,
			})
		}
		z := zone.New(zc.Name, zc.AreaM2, zc.VolumeM3, zc.ThermalMassKWhPerK, zc.InitialTempC, elements, nil)
		zones = append(zones, &orchestrator.ZoneRuntime{
			Zone:        z,
			Heating:     &zone.PriorityList{},
			Cooling:     &zone.PriorityList{},
			SetpntHeatC: &control.Setpoint{},
			SetpntCoolC: &control.Setpoint{},
			GainsFn:     solarGainsFn(conditions, elements, deltaH),
			VolumeM3:    zc.VolumeM3,
		})
	}

	supplies := make([]*energysupply.Supply, 0, len(c.EnergySupplies))
	for _, sc := range c.EnergySupplies {
		fuel := energysupply.FuelElectricity
		if sc.Fuel == "gas" {
			fuel = energysupply.FuelGas
		}
		sup := energysupply.New(sc.Name, fuel)
		if sc.HasBattery {
			sup.Battery = energysupply.NewBatteryStore(energysupply.BatteryStoreConfig{
				CapacityKWh:         sc.BatteryCapacityKWh,
				ChargeEfficiency:    sc.ChargeEfficiency,
				DischargeEfficiency: sc.DischargeEfficiency,
				MaxChargeKW:         sc.MaxChargeKW,
				MaxDischargeKW:      sc.MaxDischargeKW,
			})
		}
		supplies = append(supplies, sup)
	}

	var primaryHW orchestrator.PrimaryHotWaterSource
	var coldFeed clock.Series
	var stateful []orchestrator.StatefulSystem
	if c.HotWaterTank.NumLayers > 0 {
		tank, err := c.buildTank(deltaH)
		if err != nil {
			return nil, err
		}
		primaryHW = tank
		for _, slot := range tank.Sources {
			if st, ok := slot.Source.(orchestrator.StatefulSystem); ok {
				stateful = append(stateful, st)
			}
		}

		coldFeed, err = loadSeries(c.ColdWaterSource.SeriesFile, c.SimulationTime.StartDay, c.ColdWaterSource.StepH)
		if err != nil {
			return nil, err
		}
	}

	return &orchestrator.Dwelling{
		Clock:                          simTime,
		Conditions:                     conditions,
		Zones:                          zones,
		PrimaryHW:                      primaryHW,
		ColdFeedC:                      coldFeed,
		Supplies:                       supplies,
		Stateful:                       stateful,
		FracDHWInternalGainsConvective: c.FracDHWInternalGainsConvective,
		MinACH:                         c.MinACH,
		MaxACH:                         c.MaxACH,
	}, nil
}

// buildConditions wires c.ExternalConditions into a weather.Conditions,
// resolving its file-backed series. Every run needs a non-nil Conditions:
// the orchestrator's step loop unconditionally calls
// Conditions.InvalidateAt every timestep.
func (c *Config) buildConditions() (*weather.Conditions, error) {
	ec := c.ExternalConditions
	startDay, endDay := c.SimulationTime.StartDay, c.SimulationTime.EndDay

	airTemp, err := loadSeries(ec.AirTempSeriesFile, startDay, 1.0)
	if err != nil {
		return nil, err
	}
	windSpeed, err := loadSeries(ec.WindSpeedSeriesFile, startDay, 1.0)
	if err != nil {
		return nil, err
	}
	diffuse, err := loadSeries(ec.DiffuseSeriesFile, startDay, 1.0)
	if err != nil {
		return nil, err
	}
	direct, err := loadSeries(ec.DirectSeriesFile, startDay, 1.0)
	if err != nil {
		return nil, err
	}
	groundRefl, err := loadSeries(ec.GroundReflectSeries, startDay, 1.0)
	if err != nil {
		return nil, err
	}

	return weather.New(ec.LatitudeDeg, ec.LongitudeDeg, ec.TimezoneH, startDay, endDay,
		airTemp, windSpeed, diffuse, direct, groundRefl, ec.DirectIsNormal)
}

// solarGainsFn returns the ZoneRuntime.GainsFn closure that sums solar
// gains across a zone's transparent elements, per §4.1/§4.6 step 7: each
// element's irradiance is conditions.SurfaceAt(tilt, orientation),
// reduced by that element's direct/diffuse shading factors. Returns nil
// if the zone has no transparent elements, matching the orchestrator's
// "GainsFn may be nil" contract.
//
// Element height/width only matter to the shading geometry (overhangs,
// side fins, obstacle segments); the config schema does not yet expose
// those; elements are synthesised as a 1m-tall strip of the configured
// area, which reproduces a fully-lit reduction factor of 1 (no shading
// configured, so none is applied) regardless of the exact aspect ratio.
func solarGainsFn(conditions *weather.Conditions, elements []zone.BuildingElement, deltaH float64) func(simHour float64) orchestrator.ZoneGains {
	type glazing struct {
		el   weather.Element
		area float64
	}
	var glazed []glazing
	for _, be := range elements {
		if !be.Transparent {
			continue
		}
		glazed = append(glazed, glazing{
			el: weather.Element{
				HeightM: 1, WidthM: be.AreaM2,
				OrientationDeg: be.OrientationDeg, TiltDeg: be.TiltDeg,
			},
			area: be.AreaM2,
		})
	}
	if len(glazed) == 0 {
		return nil
	}

	return func(simHour float64) orchestrator.ZoneGains {
		h := conditions.AtHour(simHour)
		var solarKWh float64
		for _, g := range glazed {
			surf := conditions.SurfaceAt(simHour, g.el.TiltDeg, g.el.OrientationDeg)
			fDir := g.el.DirectReductionFactor(h.AzimuthDeg, h.AltitudeDeg)
			fDiff := g.el.DiffuseReductionFactor(surf.Direct, surf.Diffuse)
			irradianceWm2 := surf.Direct*fDir + surf.Diffuse*fDiff
			solarKWh += irradianceWm2 * g.area / 1000.0 * deltaH
		}
		return orchestrator.ZoneGains{SolarKWh: solarKWh}
	}
}

// buildTank constructs the primary hot water tank and its wet heat
// sources, per §4.2/§4.2.3. Only heat_network entries are assembled into
// a dispatchable source today: heat_pump/boiler/heat_battery need a
// test-data-driven constructor this config section does not yet carry
// (see DESIGN.md).
func (c *Config) buildTank(deltaH float64) (*watertank.Tank, error) {
	tc := c.HotWaterTank
	tank, err := watertank.NewTank(tc.NumLayers, tc.VolumeL, tc.InitialTempC, tc.AmbientTempC, tc.SetpointMaxC, tc.QStdLsRefKWh)
	if err != nil {
		return nil, err
	}

	for _, hc := range c.HeatSourceWet {
		if hc.Type != "heat_network" {
			continue
		}
		hiu := heatnetwork.New(hc.Name, hc.PowerMaxKW, hc.HIUDailyLossKWh, hc.BuildingDistLossW)
		adapter := &heatnetwork.TankAdapter{HIU: hiu, TimestepH: deltaH}
		setpointMaxC := tc.SetpointMaxC
		tank.Sources = append(tank.Sources, watertank.HeatSourceSlot{
			Source:             heatsource.Source(adapter),
			HeaterLayerIdx:     hc.HeaterLayerIdx,
			ThermostatLayerIdx: hc.ThermostatLayerIdx,
			FlowTempC:          hc.FlowTempC,
			SwitchOn: func(thermostatTempC float64) bool {
				return thermostatTempC < setpointMaxC
			},
		})
	}
	return tank, nil
}
