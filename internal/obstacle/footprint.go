// Package obstacle turns box volumes from the scene into the boundary point
// cloud the planner consumes.
package obstacle

import (
	"strings"

	"github.com/Faultbox/towplan/pkg/math"
)

// selfExclusion is the name fragment that marks the towed object itself.
// Fallback selection skips any box whose name contains it so the aircraft
// is never sampled as an obstacle to its own plan.
const selfExclusion = "plane"

// Footprint is a box volume whose ground rectangle blocks the planner.
// Center and Size are in the box's local space; LocalToWorld places it.
// A zero LocalToWorld means the box is already in world space.
type Footprint struct {
	Name         string
	Tag          string
	Center       math.Vec3
	Size         math.Vec3
	LocalToWorld math.Mat4
	Enabled      bool
	Trigger      bool
}

// Solid reports whether the volume takes part in collision.
func (f Footprint) Solid() bool {
	return f.Enabled && !f.Trigger
}

// Corners returns the four ground-plane corners in world space, ordered
// (-x,-z), (-x,+z), (+x,+z), (+x,-z) in local space.
func (f Footprint) Corners() [4]math.Vec3 {
	c := f.Center
	sx, sz := f.Size.X*0.5, f.Size.Z*0.5

	local := [4]math.Vec3{
		c.Add(math.Vec3{X: -sx, Z: -sz}),
		c.Add(math.Vec3{X: -sx, Z: +sz}),
		c.Add(math.Vec3{X: +sx, Z: +sz}),
		c.Add(math.Vec3{X: +sx, Z: -sz}),
	}

	m := f.LocalToWorld
	if m == (math.Mat4{}) {
		m = math.Identity()
	}
	var world [4]math.Vec3
	for i, p := range local {
		world[i] = m.TransformPoint(p)
	}
	return world
}

// Source supplies the current set of box volumes in the scene.
type Source interface {
	Footprints() []Footprint
}

// SourceFunc adapts a function to Source.
type SourceFunc func() []Footprint

// Footprints implements Source.
func (fn SourceFunc) Footprints() []Footprint {
	return fn()
}

// Select picks the obstacles to sample. Volumes tagged with tag are used
// when any exist; otherwise, if includeAllIfUntagged is set, every solid
// box whose name does not contain "plane" is used. Non-solid volumes are
// always skipped.
func Select(all []Footprint, tag string, includeAllIfUntagged bool) []Footprint {
	var tagged []Footprint
	for _, f := range all {
		if tag != "" && f.Tag == tag {
			tagged = append(tagged, f)
		}
	}

	if len(tagged) == 0 && includeAllIfUntagged {
		for _, f := range all {
			if !f.Solid() {
				continue
			}
			if strings.Contains(strings.ToLower(f.Name), selfExclusion) {
				continue
			}
			tagged = append(tagged, f)
		}
		return tagged
	}

	solid := tagged[:0]
	for _, f := range tagged {
		if f.Solid() {
			solid = append(solid, f)
		}
	}
	return solid
}
