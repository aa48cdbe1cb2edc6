package watertank

import "hemcore/internal/material"

// UsageEvent is one hot-water draw-off event, per §4.2.2.
type UsageEvent struct {
	StartMin         float64
	DurationMin      float64
	WarmTempC        float64
	WarmVolumeL      float64
	PipeworkVolumeL  float64
}

// DrawOffResult is the per-call return of demand_hot_water, per §4.2.1.
type DrawOffResult struct {
	EnergyUsedKWh      float64
	UnmetKWh           float64
	TempFinalDrawoffC  float64
	TempAverageDrawoffC float64
	TotalVolDrawoffL   float64
}

// DemandHotWater runs the draw-off algorithm of §4.2.2 against a list of
// usage events, mutating the layer vector and re-sorting it at the end
// (§4.2.1: "After each demand_hot_water... update, the final temperature
// vector is sorted non-decreasing").
func (t *Tank) DemandHotWater(events []UsageEvent, coldFeedC float64) DrawOffResult {
	var agg DrawOffResult
	layerVol := t.layerVolumeL()
	water := material.Water

	for _, ev := range events {
		if ev.WarmVolumeL <= 0 {
			continue // IES events without warm_volume are filtered
		}

		remaining := ev.WarmVolumeL
		var energyUsed, weightedTempVol, volDrawn float64
		rearrangeNeeded := false
		coolestTouched := 0.0
		firstTouch := true

		top := t.NumLayers - 1
		i := top
		for remaining > 1e-9 && i >= 0 {
			layerTemp := t.LayerTempC[i]
			if layerTemp < ev.WarmTempC {
				break // insufficient temperature
			}
			denom := layerTemp - coldFeedC
			var f float64
			if denom > 1e-9 {
				f = (ev.WarmTempC - coldFeedC) / denom
			} else {
				f = 1
			}
			var consumedVol float64
			if layerVol <= remaining*f {
				consumedVol = layerVol
			} else {
				consumedVol = remaining * f
			}
			requiredVol := consumedVol
			energyUsed += water.EnergyKWh(requiredVol, layerTemp-coldFeedC)
			weightedTempVol += layerTemp * requiredVol
			volDrawn += requiredVol
			remaining -= requiredVol / maxf(f, 1e-9)

			if firstTouch || layerTemp < coolestTouched {
				coolestTouched = layerTemp
				firstTouch = false
			}
			i--
		}

		unmetWarmVol := remaining
		unmet := water.EnergyKWh(unmetWarmVol, ev.WarmTempC-coldFeedC)

		tempFinal := coldFeedC
		if ev.PipeworkVolumeL > 0 && i >= 0 {
			tempFinal = t.LayerTempC[i]
		}

		// replacement: fill each now-partial layer from below and from
		// the cold feed; if the cold feed is warmer than the coolest
		// touched layer, flag rearrangement.
		for k := i + 1; k <= top; k++ {
			t.LayerTempC[k] = coldFeedC
		}
		if !firstTouch && coldFeedC > coolestTouched {
			rearrangeNeeded = true
		}

		agg.EnergyUsedKWh += energyUsed
		agg.UnmetKWh += unmet
		agg.TotalVolDrawoffL += volDrawn
		if volDrawn > 0 {
			weightedTempVol += 0 // average accumulated below
		}
		if volDrawn > 0 {
			agg.TempAverageDrawoffC = weightedAverage(agg.TempAverageDrawoffC, agg.TotalVolDrawoffL-volDrawn, weightedTempVol/volDrawn, volDrawn)
		}
		agg.TempFinalDrawoffC = tempFinal

		if rearrangeNeeded {
			t.Rearrange()
		}
	}

	t.Rearrange()
	t.lastDrawOff = agg
	return agg
}

func weightedAverage(prevAvg, prevVol, newAvg, newVol float64) float64 {
	total := prevVol + newVol
	if total <= 0 {
		return newAvg
	}
	return (prevAvg*prevVol + newAvg*newVol) / total
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
