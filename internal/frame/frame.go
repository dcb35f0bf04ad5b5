// Package frame converts poses between the host engine's ground frame and
// the planner's frame.
//
// Engine frame: ground plane XZ, heading in degrees, 0 along +Z and +90
// along +X. Planner frame: ground plane XY, heading in radians, 0 along +X
// and +π/2 along +Y. The two types below only meet through Converter, so a
// value cannot silently cross frames.
package frame

import (
	gomath "math"

	"github.com/Faultbox/towplan/pkg/math"
)

// EnginePoint is a ground position in engine world units.
type EnginePoint struct {
	X, Z float64
}

// EnginePose is a ground position plus heading in the engine frame.
type EnginePose struct {
	X, Z   float64
	YawDeg float64
}

// Point returns the pose's ground position.
func (p EnginePose) Point() EnginePoint {
	return EnginePoint{X: p.X, Z: p.Z}
}

// Vec3 lifts the point to a 3D engine position at height y.
func (p EnginePoint) Vec3(y float64) math.Vec3 {
	return math.Vec3{X: p.X, Y: y, Z: p.Z}
}

// PlannerPoint is a ground position in planner units.
type PlannerPoint struct {
	X, Y float64
}

// PlannerPose is a ground position plus heading in the planner frame.
type PlannerPose struct {
	X, Y float64
	Yaw  float64 // radians, (-π, π]
}

// HeadingEngineToPlanner maps an engine heading in degrees to a planner
// heading in radians.
func HeadingEngineToPlanner(deg float64) float64 {
	return math.WrapPi(gomath.Pi/2 - deg*math.Deg2Rad)
}

// HeadingPlannerToEngine maps a planner heading in radians to an engine
// heading in degrees. The result is not wrapped.
func HeadingPlannerToEngine(rad float64) float64 {
	return 90 - rad*math.Rad2Deg
}

// Converter maps positions and poses between the frames. Engine units are
// planner units multiplied by WorldScale.
type Converter struct {
	WorldScale float64
}

// NewConverter returns a converter for the given world scale.
// A non-positive scale falls back to 1.
func NewConverter(worldScale float64) Converter {
	if worldScale <= 0 {
		worldScale = 1
	}
	return Converter{WorldScale: worldScale}
}

func (c Converter) scale() float64 {
	if c.WorldScale <= 0 {
		return 1
	}
	return c.WorldScale
}

// PointToPlanner converts an engine ground point to planner coordinates.
func (c Converter) PointToPlanner(p EnginePoint) PlannerPoint {
	s := c.scale()
	return PlannerPoint{X: p.X / s, Y: p.Z / s}
}

// PointToEngine converts a planner point to engine ground coordinates.
func (c Converter) PointToEngine(p PlannerPoint) EnginePoint {
	s := c.scale()
	return EnginePoint{X: p.X * s, Z: p.Y * s}
}

// PoseToPlanner converts an engine pose to the planner frame.
func (c Converter) PoseToPlanner(p EnginePose) PlannerPose {
	pt := c.PointToPlanner(p.Point())
	return PlannerPose{X: pt.X, Y: pt.Y, Yaw: HeadingEngineToPlanner(p.YawDeg)}
}

// PoseToEngine converts a planner pose to the engine frame.
func (c Converter) PoseToEngine(p PlannerPose) EnginePose {
	pt := c.PointToEngine(PlannerPoint{X: p.X, Y: p.Y})
	return EnginePose{X: pt.X, Z: pt.Z, YawDeg: HeadingPlannerToEngine(p.Yaw)}
}
