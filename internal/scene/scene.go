// Package scene loads a headless stand-in for the host 3D scene: box
// volumes that block the planner and the two bodies that playback moves.
package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/towplan/internal/frame"
	"github.com/Faultbox/towplan/internal/obstacle"
	"github.com/Faultbox/towplan/internal/planner"
	"github.com/Faultbox/towplan/pkg/math"
)

// Vec is a YAML-friendly [x, y, z] triple.
type Vec [3]float64

func (v Vec) vec3() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Box is one volume as written in a scene file.
type Box struct {
	Name     string  `yaml:"name"`
	Tag      string  `yaml:"tag"`
	Position Vec     `yaml:"position"`
	Yaw      float64 `yaml:"yaw"` // degrees
	Scale    *Vec    `yaml:"scale"`
	Center   Vec     `yaml:"center"`
	Size     Vec     `yaml:"size"`
	Enabled  *bool   `yaml:"enabled"` // defaults to true
	Trigger  bool    `yaml:"trigger"`
}

// Footprint converts the box into its obstacle volume.
func (b Box) Footprint() obstacle.Footprint {
	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if b.Scale != nil {
		scale = b.Scale.vec3()
	}
	return obstacle.Footprint{
		Name:         b.Name,
		Tag:          b.Tag,
		Center:       b.Center.vec3(),
		Size:         b.Size.vec3(),
		LocalToWorld: math.TRS(b.Position.vec3(), b.Yaw, scale),
		Enabled:      b.Enabled == nil || *b.Enabled,
		Trigger:      b.Trigger,
	}
}

// Pose is a body placement on the ground plane.
type Pose struct {
	X   float64 `yaml:"x"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"` // degrees
}

// File is the on-disk scene layout.
type File struct {
	Leader   Pose  `yaml:"leader"`
	Follower *Pose `yaml:"follower"`
	Boxes    []Box `yaml:"boxes"`
}

// Scene holds the loaded volumes and the bodies that playback drives.
type Scene struct {
	Boxes    []Box
	Leader   *Transform
	Follower *Transform // nil when the scene has no towed body
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from YAML.
func Parse(data []byte) (*Scene, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, b := range f.Boxes {
		if b.Size[0] < 0 || b.Size[1] < 0 || b.Size[2] < 0 {
			return nil, fmt.Errorf("box %d (%s): negative size", i, b.Name)
		}
	}
	return New(f), nil
}

// New builds a scene from an already decoded file.
func New(f File) *Scene {
	s := &Scene{
		Boxes:  f.Boxes,
		Leader: NewTransform(f.Leader),
	}
	if f.Follower != nil {
		s.Follower = NewTransform(*f.Follower)
	}
	return s
}

// Footprints implements obstacle.Source.
func (s *Scene) Footprints() []obstacle.Footprint {
	out := make([]obstacle.Footprint, len(s.Boxes))
	for i, b := range s.Boxes {
		out[i] = b.Footprint()
	}
	return out
}

// Start returns the current body poses as a planning start.
func (s *Scene) Start() planner.StartPose {
	start := planner.StartPose{Leader: s.Leader.EnginePose()}
	if s.Follower != nil {
		p := s.Follower.EnginePose()
		start.Follower = &p
	}
	return start
}

// Transform is a body whose pose is written by playback.
type Transform struct {
	Position math.Vec3
	Yaw      float64 // degrees
	Updates  int
}

// NewTransform places a body on the ground at p.
func NewTransform(p Pose) *Transform {
	return &Transform{
		Position: math.Vec3{X: p.X, Z: p.Z},
		Yaw:      p.Yaw,
	}
}

// SetPose implements playback.Body.
func (t *Transform) SetPose(pos math.Vec3, yawDeg float64) {
	t.Position = pos
	t.Yaw = yawDeg
	t.Updates++
}

// EnginePose returns the ground-plane pose.
func (t *Transform) EnginePose() frame.EnginePose {
	return frame.EnginePose{X: t.Position.X, Z: t.Position.Z, YawDeg: t.Yaw}
}

func (t *Transform) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f) yaw %.2f", t.Position.X, t.Position.Y, t.Position.Z, t.Yaw)
}
