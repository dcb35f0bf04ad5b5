package obstacle

import (
	gomath "math"
)

// minStep bounds the sampling step from below.
const minStep = 0.01

// PointCloud holds index-paired ground coordinates in engine world units
// (X and Z of the engine frame).
type PointCloud struct {
	X []float64
	Z []float64
}

// Len returns the number of points.
func (pc *PointCloud) Len() int {
	return len(pc.X)
}

// Append adds one point.
func (pc *PointCloud) Append(x, z float64) {
	pc.X = append(pc.X, x)
	pc.Z = append(pc.Z, z)
}

// Sampler walks footprint edges at a fixed arc-length step.
type Sampler struct {
	Step float64
}

// Sample returns the boundary points of every footprint. For each
// footprint the edges run corner 0→1→2→3→0 and each edge yields evenly
// spaced points, both endpoints included, no further apart than step.
// A zero-length edge still yields its two (coincident) endpoints.
func (s Sampler) Sample(footprints []Footprint) PointCloud {
	var pc PointCloud
	for _, f := range footprints {
		s.sampleInto(&pc, f)
	}
	return pc
}

func (s Sampler) sampleInto(pc *PointCloud, f Footprint) {
	step := gomath.Max(minStep, s.Step)
	corners := f.Corners()

	for e := 0; e < 4; e++ {
		a := corners[e]
		b := corners[(e+1)%4]
		n := edgeSamples(a.XZ().Distance(b.XZ()), step)

		for i := 0; i < n; i++ {
			p := a.Lerp(b, float64(i)/float64(n-1))
			if i == n-1 {
				p = b
			}
			pc.Append(p.X, p.Z)
		}
	}
}

// edgeSamples counts the points on an edge of the given ground-plane
// length: ceil(length/step) intervals plus the closing endpoint, never
// fewer than two.
func edgeSamples(length, step float64) int {
	n := int(gomath.Ceil(length/step)) + 1
	if n < 2 {
		return 2
	}
	return n
}
