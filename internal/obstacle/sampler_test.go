package obstacle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Faultbox/towplan/pkg/math"
)

func unitSquare() Footprint {
	return Footprint{
		Name:         "crate",
		Size:         math.Vec3{X: 1, Y: 1, Z: 1},
		LocalToWorld: math.Identity(),
		Enabled:      true,
	}
}

func TestSampleUnitSquare(t *testing.T) {
	pc := Sampler{Step: 0.5}.Sample([]Footprint{unitSquare()})

	if pc.Len() != 12 {
		t.Fatalf("expected 12 points (3 per edge), got %d", pc.Len())
	}
	if len(pc.X) != len(pc.Z) {
		t.Fatalf("unpaired cloud: %d x, %d z", len(pc.X), len(pc.Z))
	}

	want := PointCloud{
		X: []float64{-0.5, -0.5, -0.5, -0.5, 0, 0.5, 0.5, 0.5, 0.5, 0.5, 0, -0.5},
		Z: []float64{-0.5, 0, 0.5, 0.5, 0.5, 0.5, 0.5, 0, -0.5, -0.5, -0.5, -0.5},
	}
	if diff := cmp.Diff(want, pc, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("sampled cloud mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleEdgeEndpointsExact(t *testing.T) {
	f := unitSquare()
	corners := f.Corners()
	pc := Sampler{Step: 0.5}.Sample([]Footprint{f})

	for e := 0; e < 4; e++ {
		first := e * 3
		last := first + 2
		a, b := corners[e], corners[(e+1)%4]
		if pc.X[first] != a.X || pc.Z[first] != a.Z {
			t.Errorf("edge %d first point (%v,%v), want corner (%v,%v)", e, pc.X[first], pc.Z[first], a.X, a.Z)
		}
		if pc.X[last] != b.X || pc.Z[last] != b.Z {
			t.Errorf("edge %d last point (%v,%v), want corner (%v,%v)", e, pc.X[last], pc.Z[last], b.X, b.Z)
		}
	}
}

func TestSampleDegenerateFootprint(t *testing.T) {
	f := Footprint{
		Size:         math.Vec3{},
		LocalToWorld: math.Translate(3, 0, 4),
		Enabled:      true,
	}
	pc := Sampler{Step: 0.5}.Sample([]Footprint{f})

	if pc.Len() != 8 {
		t.Fatalf("zero-size footprint should still emit 2 points per edge, got %d", pc.Len())
	}
	for i := 0; i < pc.Len(); i++ {
		if pc.X[i] != 3 || pc.Z[i] != 4 {
			t.Errorf("point %d = (%v,%v), want (3,4)", i, pc.X[i], pc.Z[i])
		}
	}
}

func TestSampleRespectsTransform(t *testing.T) {
	f := Footprint{
		Center:       math.Vec3{X: 0, Z: 1},
		Size:         math.Vec3{X: 2, Y: 1, Z: 4},
		LocalToWorld: math.TRS(math.Vec3{X: 10, Z: -5}, 90, math.Vec3{X: 1, Y: 1, Z: 1}),
		Enabled:      true,
	}
	corners := f.Corners()

	// local (-1, 0, -1) rotated 90° → (-1, 0, 1), then translated
	want := math.Vec3{X: 9, Z: -4}
	if corners[0].Distance(want) > 1e-9 {
		t.Errorf("corner 0 = %v, want %v", corners[0], want)
	}

	for i, c := range corners {
		if c.Y != 0 {
			t.Errorf("corner %d left the ground plane: %v", i, c)
		}
	}
}

func TestSamplePointsPerEdge(t *testing.T) {
	f := Footprint{
		Size:         math.Vec3{X: 2, Y: 1, Z: 4},
		LocalToWorld: math.Translate(10, 0, -5),
		Enabled:      true,
	}
	pc := Sampler{Step: 1}.Sample([]Footprint{f})

	// 4-long edges → 5 points, 2-long edges → 3 points
	if pc.Len() != 5+3+5+3 {
		t.Errorf("expected 16 points, got %d", pc.Len())
	}
}

func TestSampleUsesGroundLength(t *testing.T) {
	// local +X also climbs in Y, so the x edges are longer in 3D than on
	// the ground
	sheared := math.Mat4{
		1, 1, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	f := Footprint{
		Size:         math.Vec3{X: 1, Y: 1, Z: 1},
		LocalToWorld: sheared,
		Enabled:      true,
	}
	pc := Sampler{Step: 0.5}.Sample([]Footprint{f})

	// 1-long ground edges → 3 points each
	if pc.Len() != 12 {
		t.Errorf("expected 12 points, got %d", pc.Len())
	}
}

func TestSampleDeterministic(t *testing.T) {
	fs := []Footprint{unitSquare(), {
		Size:         math.Vec3{X: 3, Z: 1.3},
		LocalToWorld: math.TRS(math.Vec3{X: 1, Z: 2}, 33, math.Vec3{X: 1, Y: 1, Z: 1}),
		Enabled:      true,
	}}
	s := Sampler{Step: 0.25}

	a := s.Sample(fs)
	b := s.Sample(fs)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("sampling is not deterministic:\n%s", diff)
	}
}

func TestSampleTinyStepIsBounded(t *testing.T) {
	pc := Sampler{Step: 0}.Sample([]Footprint{unitSquare()})

	// step is clamped to 0.01 → 101 points per unit edge
	if pc.Len() != 4*101 {
		t.Errorf("expected %d points, got %d", 4*101, pc.Len())
	}
}
