package weather

import "math"

// SurfaceIrradiance is the decomposed result of
// calculated_total_solar_irradiance for one (tilt, orientation) pair.
type SurfaceIrradiance struct {
	Direct      float64
	Diffuse     float64 // total diffuse: sky + circumsolar + horizon
	Sky         float64
	Circumsolar float64
	Horizon     float64
	GroundRefl  float64
	Total       float64
}

type cacheKey struct {
	tiltDeg, orientationDeg float64
}

// tsCache is the per-timestep (tilt, orientation) -> SurfaceIrradiance
// cache, invalidated whenever the timestep index advances. Grounded on
// the design note in spec §9 ("a small hash table keyed by floating-point
// tuples... clear whenever simtime.index() advances").
type tsCache struct {
	idx     int
	hasIdx  bool
	entries map[cacheKey]SurfaceIrradiance
}

// InvalidateAt clears the cache if idx differs from the last-seen index.
func (c *Conditions) InvalidateAt(idx int) {
	if c.cache.hasIdx && c.cache.idx == idx {
		return
	}
	c.cache.idx = idx
	c.cache.hasIdx = true
	c.cache.entries = make(map[cacheKey]SurfaceIrradiance)
}

// solarAngleOfIncidence computes cos(theta_i) and theta_i (degrees) per
// ISO 52010 for a surface of given tilt (0=horizontal) and orientation
// (0=south, positive towards east, matching the hour-angle convention).
func (c *Conditions) solarAngleOfIncidence(h HourPrecompute, declDeg, latDeg, tiltDeg, orientationDeg float64) (cosTheta, thetaDeg float64) {
	decl := rad(declDeg)
	lat := rad(latDeg)
	tilt := rad(tiltDeg)
	orient := rad(orientationDeg)
	omega := rad(h.HourAngleDeg)

	cosTheta = math.Sin(decl)*math.Sin(lat)*math.Cos(tilt) -
		math.Sin(decl)*math.Cos(lat)*math.Sin(tilt)*math.Cos(orient) +
		math.Cos(decl)*math.Cos(lat)*math.Cos(tilt)*math.Cos(omega) +
		math.Cos(decl)*math.Sin(lat)*math.Sin(tilt)*math.Cos(orient)*math.Cos(omega) +
		math.Cos(decl)*math.Sin(tilt)*math.Sin(orient)*math.Sin(omega)

	cosTheta = clamp(cosTheta, -1, 1)
	thetaDeg = deg(math.Acos(cosTheta))
	return
}

// clearnessAndBrightness computes the dimensionless clearness parameter E
// and sky brightness Delta for the current hour, and returns the matching
// Perez table row.
func clearnessAndBrightness(diffuseHoriz, directNormal float64, h HourPrecompute) (e, delta float64, row ebandRow) {
	var eVal float64
	if diffuseHoriz == 0 {
		eVal = 999
	} else {
		asolRad := rad(h.AltitudeDeg)
		term := perezK * math.Pow(asolRad, 3)
		eVal = ((diffuseHoriz+directNormal)/diffuseHoriz + term) / (1 + term)
	}
	var d float64
	if diffuseHoriz > 0 {
		d = h.AirMass * diffuseHoriz / solarConstant
	}
	row = perezTable[len(perezTable)-1]
	for _, r := range perezTable {
		if eVal < r.upperE {
			row = r
			break
		}
	}
	return eVal, d, row
}

// SurfaceAt computes the full irradiance decomposition for a surface at
// (tiltDeg, orientationDeg) at simulation hour simHour (whole-hour
// bucketed for the precomputed arrays, per-timestep for the raw series).
// Results are cached per (tilt, orientation) until InvalidateAt sees a new
// index.
func (c *Conditions) SurfaceAt(simHour float64, tiltDeg, orientationDeg float64) SurfaceIrradiance {
	key := cacheKey{tiltDeg, orientationDeg}
	if c.cache.entries != nil {
		if v, ok := c.cache.entries[key]; ok {
			return v
		}
	}

	h := c.AtHour(simHour)
	dayIdx := int(simHour) / 24
	day := c.DayOf(dayIdx)

	diffuseHoriz := c.DiffuseHorizWm2.At(simHour)
	rawDirect := c.DirectWm2.At(simHour)
	groundRho := c.GroundReflectivity.At(simHour)

	var directNormal float64
	if c.DirectIsNormal {
		directNormal = rawDirect
	} else if h.AltitudeDeg > 0 {
		directNormal = rawDirect / math.Sin(rad(h.AltitudeDeg))
	} else {
		directNormal = rawDirect
	}

	_, cosTheta := 0.0, 0.0
	cosThetaVal, _ := c.solarAngleOfIncidence(h, day.DeclinationDeg, c.Latitude, tiltDeg, orientationDeg)
	cosTheta = cosThetaVal

	direct := math.Max(0, directNormal*cosTheta)

	eVal, delta, row := clearnessAndBrightness(diffuseHoriz, directNormal, h)
	f1 := math.Max(0, row.f11+row.f12*delta+row.f13*math.Pi*h.ZenithDeg/180.0)
	f2 := row.f21 + row.f22*delta + row.f23*math.Pi*h.ZenithDeg/180.0
	_ = eVal

	betaRad := rad(tiltDeg)
	sky := diffuseHoriz * (1 - f1) * (1 + math.Cos(betaRad)) / 2.0

	a := math.Max(0, cosTheta)
	b := math.Max(math.Cos(rad(85)), math.Cos(rad(h.ZenithDeg)))
	circumsolar := diffuseHoriz * f1 * a / b

	horizon := diffuseHoriz * f2 * math.Sin(betaRad)

	totalDiffuse := sky + circumsolar + horizon

	groundRefl := (diffuseHoriz + directNormal*math.Sin(rad(h.AltitudeDeg))) * groundRho * (1 - math.Cos(betaRad)) / 2.0

	result := SurfaceIrradiance{
		Direct:      direct,
		Diffuse:     totalDiffuse,
		Sky:         sky,
		Circumsolar: circumsolar,
		Horizon:     horizon,
		GroundRefl:  groundRefl,
		Total:       direct + totalDiffuse + groundRefl,
	}

	if c.cache.entries == nil {
		c.cache.entries = make(map[cacheKey]SurfaceIrradiance)
	}
	c.cache.entries[key] = result
	return result
}
