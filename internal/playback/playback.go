// Package playback replays a planned path as motion of a towing vehicle
// (leader) and the object it tows (follower).
package playback

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/towplan/internal/config"
	"github.com/Faultbox/towplan/internal/frame"
	"github.com/Faultbox/towplan/internal/logger"
	"github.com/Faultbox/towplan/internal/planner"
	"github.com/Faultbox/towplan/pkg/math"
)

const (
	minSegmentTime = 0.001 // seconds
	minSpeed       = 0.01  // world units per second
)

// Body is a pose handle owned by the host scene.
type Body interface {
	SetPose(pos math.Vec3, yawDeg float64)
}

// PathSink receives the published path for display. An empty slice means
// the displayed path should be cleared.
type PathSink func(points []math.Vec3)

// State is the engine's playback state.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Config holds playback settings.
type Config struct {
	WorldScale     float64
	YLift          float64
	Speed          float64 // world units per second
	FollowerOffset float64 // distance from leader to follower along the follower's heading
}

// ConfigFrom extracts playback settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		WorldScale:     cfg.World.WorldScale,
		YLift:          cfg.World.YLift,
		Speed:          cfg.Playback.Speed,
		FollowerOffset: cfg.Playback.FollowerOffset,
	}
}

type keyframe struct {
	pos         math.Vec3
	leaderYaw   float64 // engine degrees
	followerYaw float64 // engine degrees
}

type session struct {
	frames []keyframe
	seg    int
	t      float64
}

// Engine drives the two bodies along the most recently applied path.
type Engine struct {
	cfg      Config
	conv     frame.Converter
	leader   Body
	follower Body
	sink     PathSink
	log      *zap.Logger

	path    []math.Vec3
	session *session
}

// New creates a playback engine. Any of leader, follower and sink may be
// nil; without both bodies paths are published but not played.
func New(cfg Config, leader, follower Body, sink PathSink) *Engine {
	return &Engine{
		cfg:      cfg,
		conv:     frame.NewConverter(cfg.WorldScale),
		leader:   leader,
		follower: follower,
		sink:     sink,
		log:      logger.Named("playback"),
	}
}

// Bind sets the driven bodies and stops any running playback.
func (e *Engine) Bind(leader, follower Body) {
	e.Cancel()
	e.leader = leader
	e.follower = follower
}

// State returns the current playback state.
func (e *Engine) State() State {
	if e.session == nil {
		return Idle
	}
	return Playing
}

// Segment returns the active segment index and the fraction travelled
// along it. Both are zero when idle.
func (e *Engine) Segment() (int, float64) {
	if e.session == nil {
		return 0, 0
	}
	return e.session.seg, e.session.t
}

// Path returns the last published path in engine coordinates.
func (e *Engine) Path() []math.Vec3 {
	return e.path
}

// Cancel stops playback. The bodies keep their last pose.
func (e *Engine) Cancel() {
	e.session = nil
}

// Apply takes a planner response, publishes its path and starts playback.
// It reports whether playback started. A missing, failed or empty response
// clears the displayed path and leaves the engine idle.
func (e *Engine) Apply(resp *planner.PlanResponse) bool {
	if resp == nil {
		e.log.Error("plan response missing")
		e.reset()
		return false
	}
	if !resp.OK || len(resp.X) == 0 || len(resp.Y) == 0 {
		e.log.Error("plan failed", zap.Bool("ok", resp.OK), zap.String("error", resp.Error))
		e.reset()
		return false
	}
	if err := resp.Validate(); errors.Is(err, planner.ErrLengthMismatch) {
		e.log.Warn("path channels differ, clamping to shortest", zap.Error(err))
	}

	n := resp.PointCount()
	path := make([]math.Vec3, n)
	for i := 0; i < n; i++ {
		p := e.conv.PointToEngine(frame.PlannerPoint{X: resp.X[i], Y: resp.Y[i]})
		path[i] = p.Vec3(e.cfg.YLift)
	}
	e.publish(path)
	e.log.Info("path applied", zap.Int("n", n), zap.Float64("cost", resp.Cost))

	e.Cancel()
	m := resp.SampleCount()
	if m < 2 || e.leader == nil || e.follower == nil {
		return false
	}

	frames := make([]keyframe, m)
	for i := range frames {
		frames[i] = keyframe{
			pos:         path[i],
			leaderYaw:   frame.HeadingPlannerToEngine(resp.Yaw[i]),
			followerYaw: frame.HeadingPlannerToEngine(resp.Yaw1[i]),
		}
	}
	e.session = &session{frames: frames}
	return true
}

// Step advances playback by dt seconds and reports whether the engine is
// idle afterwards. Time left over at the end of a segment carries into the
// next one; the last segment ends exactly on the final sample.
func (e *Engine) Step(dt float64) bool {
	s := e.session
	if s == nil {
		return true
	}
	if dt < 0 {
		dt = 0
	}

	remaining := dt
	last := len(s.frames) - 1
	for {
		a, b := s.frames[s.seg], s.frames[s.seg+1]
		segTime := segmentDuration(a.pos.Distance(b.pos), e.cfg.Speed)

		s.t += remaining / segTime
		if s.t < 1 {
			e.pose(a, b, s.t)
			return false
		}

		remaining = (s.t - 1) * segTime
		s.seg++
		s.t = 0
		if s.seg >= last {
			e.pose(a, b, 1)
			e.session = nil
			e.log.Debug("playback finished", zap.Int("segments", last))
			return true
		}
		if remaining <= 0 {
			e.pose(a, b, 1)
			return false
		}
	}
}

func segmentDuration(length, speed float64) float64 {
	return max(minSegmentTime, length/max(minSpeed, speed))
}

// pose places both bodies at fraction t between two keyframes. The
// follower trails the leader along its own heading, not the leader's.
func (e *Engine) pose(a, b keyframe, t float64) {
	pos := a.pos.Lerp(b.pos, t)
	leaderYaw := math.LerpAngleDeg(a.leaderYaw, b.leaderYaw, t)
	followerYaw := math.LerpAngleDeg(a.followerYaw, b.followerYaw, t)

	e.leader.SetPose(pos, leaderYaw)

	forward := math.QuatFromYaw(followerYaw).Rotate(math.Forward)
	e.follower.SetPose(pos.Sub(forward.Scale(e.cfg.FollowerOffset)), followerYaw)
}

func (e *Engine) reset() {
	e.Cancel()
	e.publish(nil)
}

func (e *Engine) publish(path []math.Vec3) {
	e.path = path
	if e.sink != nil {
		e.sink(path)
	}
}
