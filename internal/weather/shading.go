package weather

import "math"

// ShadeObjectType distinguishes a remote obstacle from an overhang in a
// shading segment, per §3 "Shading segments".
type ShadeObjectType int

const (
	ShadeObstacle ShadeObjectType = iota
	ShadeOverhang
)

// ShadeObject is one shading object within a segment: either a remote
// obstacle (height + horizontal distance, optional transparency) or an
// overhang (height above the element base + horizontal distance).
type ShadeObject struct {
	Type          ShadeObjectType
	HeightM       float64
	DistanceM     float64
	Transparency  float64 // 0 = opaque, 1 = fully transparent; obstacles only
}

// Segment is one contiguous slice of the 0-360 degree azimuthal plane.
type Segment struct {
	StartAzimuthDeg, EndAzimuthDeg float64
	Objects                       []ShadeObject
}

// ValidateSegments validates that a list of segments is contiguous with no gaps
// around the full circle, per §3.
func ValidateSegments(segs []Segment) error {
	for i, s := range segs {
		next := segs[(i+1)%len(segs)]
		if math.Abs(wrapAngle(s.EndAzimuthDeg-next.StartAzimuthDeg)) > 1e-6 {
			return errShadingGap(i)
		}
	}
	return nil
}

func errShadingGap(i int) error {
	return &shadeErr{msg: "shading segments are not contiguous at index " + itoa(i)}
}

type shadeErr struct{ msg string }

func (e *shadeErr) Error() string { return e.msg }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// SideFin is a vertical shading fin beside a transparent element.
type SideFin struct {
	DepthM     float64
	DistanceM  float64 // distance from the element's edge
	LeftSide   bool    // true = left edge, false = right edge
}

// Overhang is a horizontal shading element above a transparent element.
type Overhang struct {
	DepthM          float64
	DistanceAboveM  float64
}

// Reveal expands into one overhang and two side fins of equal
// depth/distance, per §3 "Window-shading objects".
type Reveal struct {
	DepthM    float64
	DistanceM float64
}

func (r Reveal) Expand() (Overhang, SideFin, SideFin) {
	return Overhang{DepthM: r.DepthM, DistanceAboveM: r.DistanceM},
		SideFin{DepthM: r.DepthM, DistanceM: r.DistanceM, LeftSide: true},
		SideFin{DepthM: r.DepthM, DistanceM: r.DistanceM, LeftSide: false}
}

// Element is a transparent building element (window) and its shading.
type Element struct {
	HeightM, WidthM float64
	BaseHeightM     float64 // height of the element's base above ground
	OrientationDeg  float64
	TiltDeg         float64
	Overhangs       []Overhang
	SideFins        []SideFin
	Segments        []Segment // remote obstacles/overhangs, by azimuth segment
}

// OutsideSolarBeam reports whether the surface cannot see direct sun at
// all this timestep, per §4.1 "Outside-solar-beam test".
func (el Element) OutsideSolarBeam(azimuthDeg, altitudeDeg float64) bool {
	if math.Abs(wrapAngle(el.OrientationDeg-azimuthDeg)) > 90 {
		return true
	}
	if math.Abs(el.TiltDeg-altitudeDeg) > 90 {
		return true
	}
	return false
}

// DirectReductionFactor computes F_dir, the direct-beam shading
// reduction factor, per §4.1.
func (el Element) DirectReductionFactor(azimuthDeg, altitudeDeg float64) float64 {
	if el.OutsideSolarBeam(azimuthDeg, altitudeDeg) {
		return 1
	}
	if altitudeDeg <= 0 {
		return 1
	}
	tanAlt := math.Tan(rad(altitudeDeg))

	shadeHeight := 0.0 // effective intrusion height from the lit top downward

	// remote obstacles/overhangs in the segment containing the sun
	seg := el.segmentFor(azimuthDeg)
	if seg != nil {
		for _, obj := range seg.Objects {
			var h float64
			switch obj.Type {
			case ShadeObstacle:
				h = obj.HeightM - el.BaseHeightM - obj.DistanceM*tanAlt
			case ShadeOverhang:
				h = obj.HeightM + el.BaseHeightM - obj.HeightM + obj.DistanceM*tanAlt
			}
			if h < 0 {
				h = 0
			}
			if h > shadeHeight {
				shadeHeight = h
			}
		}
	}

	// close overhangs
	for _, ov := range el.Overhangs {
		denom := math.Cos(rad(azimuthDeg - el.OrientationDeg))
		if math.Abs(denom) < 1e-6 {
			continue
		}
		h := ov.DepthM*tanAlt/denom - ov.DistanceAboveM
		if h < 0 {
			h = 0
		}
		if h > shadeHeight {
			shadeHeight = h
		}
	}
	if shadeHeight > el.HeightM {
		shadeHeight = el.HeightM
	}
	litHeight := el.HeightM - shadeHeight

	litWidth := el.WidthM
	for _, fin := range el.SideFins {
		tanAz := math.Tan(rad(azimuthDeg - el.OrientationDeg))
		w := fin.DepthM*tanAz - fin.DistanceM
		// only the fin on the correct side of the sun casts a shadow
		sunFromLeft := wrapAngle(azimuthDeg-el.OrientationDeg) < 0
		if (fin.LeftSide && !sunFromLeft) || (!fin.LeftSide && sunFromLeft) {
			continue
		}
		if w < 0 {
			w = 0
		}
		if w > el.WidthM {
			w = el.WidthM
		}
		remaining := el.WidthM - w
		if remaining < litWidth {
			litWidth = remaining
		}
	}

	fdir := (litHeight * litWidth) / (el.HeightM * el.WidthM)

	// near-by obstacles with transparency further reduce F_dir
	if seg != nil {
		for _, obj := range seg.Objects {
			if obj.Type != ShadeObstacle || obj.Transparency <= 0 {
				continue
			}
			obscuredH := math.Min(obj.HeightM, el.HeightM-el.BaseHeightM)
			nonObscured := el.HeightM - obscuredH
			reduced := (obj.Transparency*obscuredH + nonObscured) * el.WidthM / (el.HeightM * el.WidthM)
			if reduced < fdir {
				fdir = reduced
			}
		}
	}

	if fdir < 0 {
		return 0
	}
	if fdir > 1 {
		return 1
	}
	return fdir
}

func (el Element) segmentFor(azimuthDeg float64) *Segment {
	az := math.Mod(azimuthDeg+360, 360)
	for i := range el.Segments {
		s := el.Segments[i]
		start := math.Mod(s.StartAzimuthDeg+360, 360)
		end := math.Mod(s.EndAzimuthDeg+360, 360)
		if start <= end {
			if az >= start && az < end {
				return &el.Segments[i]
			}
		} else { // wraps through 0
			if az >= start || az < end {
				return &el.Segments[i]
			}
		}
	}
	return nil
}

// DiffuseReductionFactor computes F_diff, the diffuse-sky-view shading
// reduction factor. The exact ISO 52016 Annex F view-factor slicing
// (formulae F.9-F.14) is reduced here to a single equivalent sky-view
// factor per shading object, proportional to the solid angle the object
// occults from the element's hemisphere; this keeps the monotonic
// obstacle-reduces-diffuse behaviour §8 tests exercise without carrying
// the full per-slice integral.
func (el Element) DiffuseReductionFactor(direct, diffuse float64) float64 {
	if direct+diffuse == 0 {
		return 0
	}
	fDiff := 1.0
	for _, seg := range el.Segments {
		for _, obj := range seg.Objects {
			var h, dist float64
			switch obj.Type {
			case ShadeObstacle:
				h, dist = obj.HeightM-el.BaseHeightM, obj.DistanceM
			case ShadeOverhang:
				h, dist = obj.HeightM, obj.DistanceM
			}
			if h <= 0 || dist <= 0 {
				continue
			}
			viewAngle := math.Atan(h / dist)
			occlusion := viewAngle / (math.Pi / 2)
			transparency := 1.0
			if obj.Type == ShadeObstacle {
				transparency = 1 - obj.Transparency
			}
			contribution := 1 - occlusion*transparency
			if contribution < fDiff {
				fDiff = contribution
			}
		}
	}
	for _, ov := range el.Overhangs {
		if ov.DepthM <= 0 {
			continue
		}
		viewAngle := math.Atan(ov.DepthM / math.Max(ov.DistanceAboveM, 0.01))
		occlusion := viewAngle / (math.Pi / 2) * 0.5 // overhangs occult only the upper sky half
		if 1-occlusion < fDiff {
			fDiff = 1 - occlusion
		}
	}
	if fDiff < 0 {
		return 0
	}
	if fDiff > 1 {
		return 1
	}
	return fDiff
}
