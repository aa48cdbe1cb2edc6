// Package heatpump implements the EN 14825 test-data interpolator and
// demand dispatcher (§4.3): electric air/ground/water/exhaust-air source
// heat pumps, buffer tanks, hybrid boiler backup, and hot-water-only
// variants. The interpolation style (sort samples, locate the bracketing
// pair, linear-interpolate) is grounded on the teacher's
// internal/predictor/temperature.go normalization/regression helpers,
// generalised from a neural-network feature pipeline to the much smaller
// quadratic CoP regression this spec calls for.
package heatpump

import (
	"fmt"
	"math"
	"sort"

	"hemcore/internal/hemerr"
)

// TestLetter identifies one EN 14825 test condition.
type TestLetter string

const (
	LetterA   TestLetter = "A"
	LetterB   TestLetter = "B"
	LetterC   TestLetter = "C"
	LetterD   TestLetter = "D"
	LetterF   TestLetter = "F"
	LetterCld TestLetter = "cld"
)

// TestRecord is one row of manufacturer test data, per §3.
type TestRecord struct {
	DesignFlowTempC float64
	Letter          TestLetter
	CapacityKW      float64
	CoP             float64
	DegradationCoeff float64
	TempOutletC     float64
	TempSourceC     float64
	TempTestC       float64

	// derived
	CarnotCoP           float64
	ExergeticEfficiency float64
	TheoreticalLoadRatio float64
}

// condenserSpread is the exact table from the original EN 14825 test-data
// loader: temperature spread (K) between flow and condenser design flow
// temperature, keyed by design_flow_temp (°C).
var condenserSpread = map[float64]float64{
	20: 5, 35: 5, 45: 6, 55: 8, 65: 10,
}

// DesignFlowGroup holds every test record for one design_flow_temp,
// sorted ascending by temp_test, plus the per-group derived quantities of
// §4.3.1.
type DesignFlowGroup struct {
	DesignFlowTempC float64
	Records         []TestRecord

	AvgCoP_AD      float64
	AvgCapacity_AD float64
	AvgDegCoeff_AD float64
	SpreadK        float64

	// quadratic regression coefficients for CoP(outside_temp):
	// cop = RegA + RegB*t + RegC*t^2
	RegA, RegB, RegC float64
}

// TestDataSet is the whole loaded, precomputed table.
type TestDataSet struct {
	Groups       []DesignFlowGroup
	flowTemps    []float64
}

// Load groups rows by design_flow_temp, disambiguates duplicate temp_test
// values by perturbing by 1e-10, sorts each group ascending by temp_test,
// and precomputes the derived per-record and per-group quantities of
// §4.3.1.
func Load(records []TestRecord) (*TestDataSet, error) {
	byFlow := map[float64][]TestRecord{}
	for _, r := range records {
		byFlow[r.DesignFlowTempC] = append(byFlow[r.DesignFlowTempC], r)
	}

	var flows []float64
	for f := range byFlow {
		flows = append(flows, f)
	}
	sort.Float64s(flows)

	ds := &TestDataSet{flowTemps: flows}

	for _, flow := range flows {
		group := byFlow[flow]
		disambiguate(group)
		sort.Slice(group, func(i, j int) bool { return group[i].TempTestC < group[j].TempTestC })

		distinct := distinctCount(group)
		if distinct < 4 {
			return nil, hemerr.InputValidationf("HeatPumpTestData", "design_flow_temp %.0f has only %d distinct test records (need >=4)", flow, distinct)
		}

		for i := range group {
			deriveRecord(&group[i])
		}

		dfg := DesignFlowGroup{DesignFlowTempC: flow, Records: group}
		computeGroupAverages(&dfg)
		dfg.SpreadK = condenserSpreadFor(flow)
		regressCoP(&dfg)

		ds.Groups = append(ds.Groups, dfg)
	}

	if err := checkLettersPresent(ds); err != nil {
		return nil, err
	}

	return ds, nil
}

func distinctCount(group []TestRecord) int {
	seen := map[TestLetter]bool{}
	for _, r := range group {
		seen[r.Letter] = true
	}
	return len(seen)
}

// disambiguate perturbs duplicate (design_flow_temp, temp_test) records
// by +1e-10 per §4.3.1.
func disambiguate(group []TestRecord) {
	seen := map[float64]int{}
	for i := range group {
		t := group[i].TempTestC
		n := seen[t]
		if n > 0 {
			group[i].TempTestC = t + float64(n)*1e-10
		}
		seen[t] = n + 1
	}
}

func condenserSpreadFor(flow float64) float64 {
	if v, ok := condenserSpread[flow]; ok {
		return v
	}
	// nearest-neighbour fallback for a design_flow_temp not in the
	// canonical table.
	best, bestDist := 5.0, math.Inf(1)
	for k, v := range condenserSpread {
		if d := math.Abs(k - flow); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

// deriveRecord computes Carnot CoP and exergetic efficiency. The
// theoretical load ratio is not set here: computeGroupAverages sets it
// once the whole group is known, normalised against the coldest record.
func deriveRecord(r *TestRecord) {
	outK := r.TempOutletC + 273.15
	srcK := r.TempSourceC + 273.15
	denom := outK - srcK
	if denom < 1e-6 {
		denom = 1e-6
	}
	r.CarnotCoP = outK / denom
	if r.CarnotCoP > 0 {
		r.ExergeticEfficiency = r.CoP / r.CarnotCoP
	}
}

func computeGroupAverages(dfg *DesignFlowGroup) {
	// theoretical load ratio: ratio of each record's capacity*carnotCoP
	// product to the coldest record's (i.e. lowest temp_test, since the
	// group is sorted ascending).
	if len(dfg.Records) == 0 {
		return
	}
	cold := dfg.Records[0]
	coldDenom := cold.CarnotCoP * cold.CapacityKW
	for i := range dfg.Records {
		r := &dfg.Records[i]
		if coldDenom != 0 {
			r.TheoreticalLoadRatio = (r.CarnotCoP * r.CapacityKW) / coldDenom
		} else {
			r.TheoreticalLoadRatio = 1
		}
	}

	var sumCoP, sumCap, sumDeg float64
	n := 0
	for _, r := range dfg.Records {
		if r.Letter == LetterA || r.Letter == LetterB || r.Letter == LetterC || r.Letter == LetterD {
			sumCoP += r.CoP
			sumCap += r.CapacityKW
			sumDeg += r.DegradationCoeff
			n++
		}
	}
	if n > 0 {
		dfg.AvgCoP_AD = sumCoP / float64(n)
		dfg.AvgCapacity_AD = sumCap / float64(n)
		dfg.AvgDegCoeff_AD = sumDeg / float64(n)
	}
}

// regressCoP fits a quadratic cop = a + b*t + c*t^2 against the group's
// (temp_test, cop) samples via ordinary least squares.
func regressCoP(dfg *DesignFlowGroup) {
	n := len(dfg.Records)
	if n < 3 {
		if n > 0 {
			dfg.RegA = dfg.Records[0].CoP
		}
		return
	}
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for _, r := range dfg.Records {
		x := r.TempTestC
		y := r.CoP
		x2 := x * x
		sx += x
		sx2 += x2
		sx3 += x2 * x
		sx4 += x2 * x2
		sy += y
		sxy += x * y
		sx2y += x2 * y
	}
	fn := float64(n)
	// normal equations for quadratic OLS, solved via Cramer's rule on the
	// 3x3 system [[n,sx,sx2],[sx,sx2,sx3],[sx2,sx3,sx4]] * [a,b,c] = [sy,sxy,sx2y]
	A := [3][3]float64{{fn, sx, sx2}, {sx, sx2, sx3}, {sx2, sx3, sx4}}
	B := [3]float64{sy, sxy, sx2y}
	a, b, c, ok := solve3x3(A, B)
	if !ok {
		dfg.RegA = dfg.AvgCoP_AD
		return
	}
	dfg.RegA, dfg.RegB, dfg.RegC = a, b, c
}

func solve3x3(A [3][3]float64, B [3]float64) (x, y, z float64, ok bool) {
	det := det3(A)
	if math.Abs(det) < 1e-12 {
		return 0, 0, 0, false
	}
	Ax := A
	Ax[0][0], Ax[1][0], Ax[2][0] = B[0], B[1], B[2]
	Ay := A
	Ay[0][1], Ay[1][1], Ay[2][1] = B[0], B[1], B[2]
	Az := A
	Az[0][2], Az[1][2], Az[2][2] = B[0], B[1], B[2]
	return det3(Ax) / det, det3(Ay) / det, det3(Az) / det, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func checkLettersPresent(ds *TestDataSet) error {
	required := []TestLetter{LetterA, LetterB, LetterC, LetterD, LetterF}
	for _, dfg := range ds.Groups {
		seen := map[TestLetter]bool{}
		for _, r := range dfg.Records {
			seen[r.Letter] = true
		}
		for _, l := range required {
			if !seen[l] {
				// warn only, per §4.3.1
				fmt.Printf("warning: heat pump test data for design_flow_temp=%.0f missing letter %s\n", dfg.DesignFlowTempC, l)
			}
		}
	}
	return nil
}

// interpGroups performs linear interpolation of f(flow) across the
// sorted design_flow_temps, clamping at the ends.
func (ds *TestDataSet) interpGroups(flowTempC float64, f func(DesignFlowGroup) float64) float64 {
	n := len(ds.Groups)
	if n == 0 {
		return 0
	}
	if flowTempC <= ds.Groups[0].DesignFlowTempC {
		return f(ds.Groups[0])
	}
	if flowTempC >= ds.Groups[n-1].DesignFlowTempC {
		return f(ds.Groups[n-1])
	}
	for i := 0; i < n-1; i++ {
		lo, hi := ds.Groups[i], ds.Groups[i+1]
		if flowTempC >= lo.DesignFlowTempC && flowTempC <= hi.DesignFlowTempC {
			frac := (flowTempC - lo.DesignFlowTempC) / (hi.DesignFlowTempC - lo.DesignFlowTempC)
			return f(lo) + frac*(f(hi)-f(lo))
		}
	}
	return f(ds.Groups[n-1])
}

func (ds *TestDataSet) AverageDegradationCoeff(flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 { return g.AvgDegCoeff_AD })
}

func (ds *TestDataSet) AverageCapacity(flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 { return g.AvgCapacity_AD })
}

func (ds *TestDataSet) TempSpreadTestConditions(flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 { return g.SpreadK })
}

// CoPOpCondIfNotAirSource implements §4.3.1's quadratic-regression query,
// scaled by the outlet/source temperature ratio.
func (ds *TestDataSet) CoPOpCondIfNotAirSource(flowTempC, tempDiffLimitK, tempExtC, tempSrcK, tempOutK float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		copBase := g.RegA + g.RegB*tempExtC + g.RegC*tempExtC*tempExtC
		cold := g.Records[0]
		outColdK := cold.TempOutletC + 273.15
		srcColdK := cold.TempSourceC + 273.15
		denom := tempOutK - tempSrcK
		if denom < tempDiffLimitK {
			denom = tempDiffLimitK
		}
		scale := tempOutK * (outColdK - srcColdK) / (outColdK * denom)
		return copBase * scale
	})
}
