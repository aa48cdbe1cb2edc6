package heatpump

import "math"

// CarnotCoPAtTestCondition interpolates the Carnot CoP of the named test
// letter across design_flow_temps.
func (ds *TestDataSet) CarnotCoPAtTestCondition(letter TestLetter, flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		return recordFor(g, letter).CarnotCoP
	})
}

func (ds *TestDataSet) OutletTempAtTestCondition(letter TestLetter, flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		return recordFor(g, letter).TempOutletC
	})
}

func (ds *TestDataSet) SourceTempAtTestCondition(letter TestLetter, flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		return recordFor(g, letter).TempSourceC
	})
}

func (ds *TestDataSet) CapacityAtTestCondition(letter TestLetter, flowTempC float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		return recordFor(g, letter).CapacityKW
	})
}

func recordFor(g DesignFlowGroup, letter TestLetter) TestRecord {
	for _, r := range g.Records {
		if r.Letter == letter {
			return r
		}
	}
	return g.Records[0]
}

// LROpCond implements §4.3.1's lr_op_cond: for each design_flow_temp,
// compute LR_cold * ((T_out_cold*T_src)/(T_out*T_src_cold))^3 normalised
// by the Carnot ratio, clamp each sample to >=1, then interpolate.
func (ds *TestDataSet) LROpCond(flowTempC, tempSourceK, carnotCoPOpCond float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		cold := g.Records[0]
		outColdK := cold.TempOutletC + 273.15
		srcColdK := cold.TempSourceC + 273.15
		outK := flowTempC + 273.15
		ratio := (outColdK * tempSourceK) / (outK * srcColdK)
		lr := cold.TheoreticalLoadRatio * math.Pow(ratio, 3)
		if cold.CarnotCoP != 0 {
			lr *= carnotCoPOpCond / cold.CarnotCoP
		}
		if lr < 1 {
			lr = 1
		}
		return lr
	})
}

// LREffDegCoeffEitherSideOfOpCond implements §4.3.1's bracketing query:
// for each design_flow_temp, find the first test record with
// theoretical_load_ratio > lrOp, return the two bracketing records'
// (LR, efficiency, degradation_coeff), then interpolate each pair across
// flow_temp.
func (ds *TestDataSet) LREffDegCoeffEitherSideOfOpCond(flowTempC, lrOp float64) (lrBelow, lrAbove, effBelow, effAbove, degBelow, degAbove float64) {
	belowF := func(g DesignFlowGroup) float64 { return bracket(g, lrOp, false).TheoreticalLoadRatio }
	aboveF := func(g DesignFlowGroup) float64 { return bracket(g, lrOp, true).TheoreticalLoadRatio }
	effBelowF := func(g DesignFlowGroup) float64 { return bracket(g, lrOp, false).ExergeticEfficiency }
	effAboveF := func(g DesignFlowGroup) float64 { return bracket(g, lrOp, true).ExergeticEfficiency }
	degBelowF := func(g DesignFlowGroup) float64 { return bracket(g, lrOp, false).DegradationCoeff }
	degAboveF := func(g DesignFlowGroup) float64 { return bracket(g, lrOp, true).DegradationCoeff }

	return ds.interpGroups(flowTempC, belowF), ds.interpGroups(flowTempC, aboveF),
		ds.interpGroups(flowTempC, effBelowF), ds.interpGroups(flowTempC, effAboveF),
		ds.interpGroups(flowTempC, degBelowF), ds.interpGroups(flowTempC, degAboveF)
}

func bracket(g DesignFlowGroup, lrOp float64, above bool) TestRecord {
	for i, r := range g.Records {
		if r.TheoreticalLoadRatio > lrOp {
			if above {
				return r
			}
			if i > 0 {
				return g.Records[i-1]
			}
			return r
		}
	}
	return g.Records[len(g.Records)-1]
}

// CapacityOpCondVarFlowOrSourceTemp implements §4.3.1: for modulating
// controls, thermal_capacity_cld*((T_out_cold*T_src)/(T_out*T_src_cold))^3;
// else linear interpolation between the coldest and 'D' records in
// (temp_difference, capacity) space; interpolated over design_flow_temps.
func (ds *TestDataSet) CapacityOpCondVarFlowOrSourceTemp(flowTempC, tempOutK, tempSrcK float64, modulating bool) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		cold := g.Records[0]
		outColdK := cold.TempOutletC + 273.15
		srcColdK := cold.TempSourceC + 273.15
		if modulating {
			ratio := (outColdK * tempSrcK) / (tempOutK * srcColdK)
			return cold.CapacityKW * math.Pow(ratio, 3)
		}
		d := recordFor(g, LetterD)
		coldDiff := outColdK - srcColdK
		dDiff := (d.TempOutletC + 273.15) - (d.TempSourceC + 273.15)
		targetDiff := tempOutK - tempSrcK
		if dDiff == coldDiff {
			return cold.CapacityKW
		}
		frac := (targetDiff - coldDiff) / (dDiff - coldDiff)
		return cold.CapacityKW + frac*(d.CapacityKW-cold.CapacityKW)
	})
}

// TempSpreadCorrection implements §4.3.1's final query: a correction
// factor for the deviation between the test-condition condenser spread
// and the actual emitter spread.
func (ds *TestDataSet) TempSpreadCorrection(flowTempC, spreadEmitK, tempOutK, dTCondK, tempSrcK, dTEvapK float64) float64 {
	return ds.interpGroups(flowTempC, func(g DesignFlowGroup) float64 {
		spreadTest := g.SpreadK
		denom := 2 * (tempOutK - spreadTest/2 + dTCondK - tempSrcK + dTEvapK)
		if denom == 0 {
			return 1
		}
		return 1 - (spreadTest-spreadEmitK)/denom
	})
}
