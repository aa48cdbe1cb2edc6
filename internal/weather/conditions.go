// Package weather implements BS EN ISO 52010-1 external conditions and
// solar geometry: per-day precomputed declination/equation-of-time arrays,
// per-hour solar position, and per-timestep irradiance decomposition on
// arbitrarily oriented surfaces (§4.1). It generalises the teacher's
// internal/solar/pvprofile.go (empirical PowerAt/interpolateProfile
// lookup-table shape) from a fitted historical PV profile to first-
// principles solar geometry, and the 8-row brightness-coefficient table is
// grounded the same way internal/model/sensor.go tables sensor metadata by
// a constant key (SensorCatalog).
package weather

import (
	"math"

	"hemcore/internal/clock"
	"hemcore/internal/hemerr"
)

const (
	solarConstant = 1367.0 // W/m^2, E_0 mean
	perezK        = 1.014
)

// ebandRow is one row of the Perez brightness-coefficient table, keyed by
// the upper bound of its clearness-parameter band (the last row has no
// upper bound and applies to everything above the previous bound).
type ebandRow struct {
	upperE                 float64
	f11, f12, f13          float64
	f21, f22, f23          float64
}

// perezTable is the standard 8-band Perez/ISO-52010 brightness-coefficient
// table (clearness-parameter bands 1.000-1.065, 1.065-1.230, 1.230-1.500,
// 1.500-1.950, 1.950-2.800, 2.800-4.500, 4.500-6.200, >6.200).
var perezTable = [8]ebandRow{
	{1.065, -0.008, 0.588, -0.062, -0.060, 0.072, -0.022},
	{1.230, 0.130, 0.683, -0.151, -0.019, 0.066, -0.029},
	{1.500, 0.330, 0.487, -0.221, 0.055, -0.064, -0.026},
	{1.950, 0.568, 0.187, -0.295, 0.109, -0.152, -0.014},
	{2.800, 0.873, -0.392, -0.362, 0.226, -0.462, 0.001},
	{4.500, 1.132, -1.237, -0.412, 0.288, -0.823, 0.056},
	{6.200, 1.060, -1.600, -0.359, 0.264, -1.127, 0.131},
	{math.Inf(1), 0.678, -0.327, -0.250, 0.156, -1.377, 0.251},
}

func rad(deg float64) float64 { return deg * math.Pi / 180.0 }
func deg(r float64) float64   { return r * 180.0 / math.Pi }

// DayPrecompute holds the per-day-of-year precomputed quantities.
type DayPrecompute struct {
	EarthOrbitDeviationDeg float64
	DeclinationDeg         float64
	ExtraTerrestrialWm2    float64
	EquationOfTimeMin      float64
}

// HourPrecompute holds the per-hour-of-year precomputed solar position.
type HourPrecompute struct {
	SolarTimeH  float64
	HourAngleDeg float64
	AltitudeDeg  float64
	ZenithDeg    float64
	AzimuthDeg   float64
	AirMass      float64
}

// Conditions is the frozen, construction-time precompute plus the
// per-timestep series needed to evaluate irradiance on a surface. Arrays
// are frozen after New returns; the per-(tilt,orientation) cache is
// invalidated whenever the timestep index advances (see tsCache and
// InvalidateAt in irradiance.go).
type Conditions struct {
	Latitude, Longitude, TimezoneH float64

	AirTempC        clock.Series
	WindSpeedMS     clock.Series
	DiffuseHorizWm2 clock.Series
	DirectWm2       clock.Series
	DirectIsNormal  bool // if false, DirectWm2 is horizontal and must be converted
	GroundReflectivity clock.Series

	days  map[int]DayPrecompute
	hours map[int]HourPrecompute

	cache tsCache
}

// New precomputes the day- and hour-indexed arrays for [startDay, endDay).
func New(latitude, longitude, timezoneH float64, startDay, endDay int,
	airTempC, windSpeedMS, diffuseHorizWm2, directWm2, groundRefl clock.Series,
	directIsNormal bool) (*Conditions, error) {

	if startDay < 0 || endDay < startDay {
		return nil, hemerr.InputValidationf("ExternalConditions", "invalid day-of-year range [%d,%d)", startDay, endDay)
	}

	c := &Conditions{
		Latitude: latitude, Longitude: longitude, TimezoneH: timezoneH,
		AirTempC: airTempC, WindSpeedMS: windSpeedMS,
		DiffuseHorizWm2: diffuseHorizWm2, DirectWm2: directWm2,
		DirectIsNormal: directIsNormal, GroundReflectivity: groundRefl,
		days:  make(map[int]DayPrecompute),
		hours: make(map[int]HourPrecompute),
	}

	tshift := timezoneH - longitude/15.0

	for d := startDay; d < endDay; d++ {
		rdc := (360.0 / 365.0) * (float64(d) + 1.0)
		rdcRad := rad(rdc)
		decl := 0.33281 - 22.984*math.Cos(rdcRad) - 0.3499*math.Cos(2*rdcRad) - 0.1398*math.Cos(3*rdcRad) +
			3.7872*math.Sin(rdcRad) + 0.03205*math.Sin(2*rdcRad) + 0.07187*math.Sin(3*rdcRad)
		e0 := solarConstant * (1 + 0.033*math.Cos(rdcRad))
		teq := equationOfTimeMin(d)

		c.days[d] = DayPrecompute{
			EarthOrbitDeviationDeg: rdc,
			DeclinationDeg:         decl,
			ExtraTerrestrialWm2:    e0,
			EquationOfTimeMin:      teq,
		}

		for h := 0; h < 24; h++ {
			tsol := (float64(h) + 1) - teq/60.0 - tshift
			omega := (180.0 / 12.0) * (12.5 - tsol)
			omega = wrapAngle(omega)

			sinAlt := math.Sin(rad(decl))*math.Sin(rad(latitude)) +
				math.Cos(rad(decl))*math.Cos(rad(latitude))*math.Cos(rad(omega))
			alt := deg(math.Asin(clamp(sinAlt, -1, 1)))
			if alt < 0.0001 {
				alt = 0
			}
			zenith := 90 - alt
			az := solarAzimuth(decl, latitude, omega, alt)
			am := airMass(alt)

			globalHourIdx := d*24 + h
			c.hours[globalHourIdx] = HourPrecompute{
				SolarTimeH:   tsol,
				HourAngleDeg: omega,
				AltitudeDeg:  alt,
				ZenithDeg:    zenith,
				AzimuthDeg:   az,
				AirMass:      am,
			}
		}
	}

	return c, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrapAngle wraps a degree value to (-180, 180].
func wrapAngle(a float64) float64 {
	for a <= -180 {
		a += 360
	}
	for a > 180 {
		a -= 360
	}
	return a
}

// equationOfTimeMin is the piecewise equation-of-time function of
// day-of-year (1-indexed ranges per BS EN ISO 52010-1).
func equationOfTimeMin(dayOfYear int) float64 {
	nday := float64(dayOfYear + 1) // day-of-year is 0-indexed internally
	switch {
	case nday >= 1 && nday <= 20:
		return 2.6 + 0.44*nday
	case nday <= 135:
		return 5.2 + 9.0*math.Cos((nday-43)*0.0357)
	case nday <= 240:
		return 1.4 - 5.0*math.Cos((nday-135)*0.0449)
	case nday <= 335:
		return -6.3 - 10.0*math.Cos((nday-306)*0.036)
	default:
		return 0.45 * (nday - 359)
	}
}

// solarAzimuth implements BS EN ISO 52010-1 Formula 16, a piecewise
// construction from two auxiliary angles, here via the equivalent
// closed-form using atan2 for numerical robustness across quadrants. The
// sign convention matches the hour-angle convention above: 0 degrees is
// due south, positive is eastward (the morning sun has positive azimuth).
func solarAzimuth(declDeg, latDeg, omegaDeg, altDeg float64) float64 {
	decl := rad(declDeg)
	lat := rad(latDeg)
	omega := rad(omegaDeg)
	alt := rad(altDeg)

	sinAux1 := math.Cos(decl) * math.Sin(omega)
	cosAux1 := math.Cos(lat)*math.Sin(decl) - math.Sin(lat)*math.Cos(decl)*math.Cos(omega)
	aux2 := math.Cos(alt)
	if aux2 < 1e-9 {
		return 0
	}
	sinAz := sinAux1 / aux2
	cosAz := cosAux1 / aux2
	return deg(math.Atan2(clamp(sinAz, -1, 1), clamp(cosAz, -1, 1)))
}

// airMass returns relative optical air mass for a solar altitude in
// degrees, using the Kasten-Young low-altitude correction below 10
// degrees.
func airMass(altDeg float64) float64 {
	if altDeg >= 10 {
		return 1.0 / math.Sin(rad(altDeg))
	}
	return 1.0 / (math.Sin(rad(altDeg)) + 0.15*math.Pow(altDeg+3.885, -1.253))
}

// DayOf returns the frozen precompute for day d.
func (c *Conditions) DayOf(d int) DayPrecompute { return c.days[d] }

// HourOf returns the frozen precompute for hour-of-year h (d*24+hourOfDay).
func (c *Conditions) HourOf(globalHourIdx int) HourPrecompute { return c.hours[globalHourIdx] }

// AtHour looks up the hour precompute for a simulation hour value,
// rounding down to the enclosing whole hour-of-year bucket.
func (c *Conditions) AtHour(simHour float64) HourPrecompute {
	idx := int(math.Floor(simHour))
	return c.hours[idx]
}
