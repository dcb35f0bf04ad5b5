// Package app runs one plan-and-playback cycle against a headless scene.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/towplan/internal/config"
	"github.com/Faultbox/towplan/internal/logger"
	"github.com/Faultbox/towplan/internal/planlog"
	"github.com/Faultbox/towplan/internal/planner"
	"github.com/Faultbox/towplan/internal/playback"
	"github.com/Faultbox/towplan/internal/scene"
	"github.com/Faultbox/towplan/pkg/math"
)

var (
	// ErrBusy is returned when a plan is requested while one is outstanding.
	ErrBusy = errors.New("planner busy")
	// ErrPlanFailed wraps the planner's error text.
	ErrPlanFailed = errors.New("plan failed")
)

// Phase is where the app is in its cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlanning
	PhasePlaying
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlanning:
		return "planning"
	case PhasePlaying:
		return "playing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes a finished cycle.
type Result struct {
	Response *planner.PlanResponse
	Path     []math.Vec3
	Ticks    int     // ticks spent playing
	Played   float64 // seconds of playback
}

// App wires the scene, the planner client and the playback engine.
type App struct {
	cfg      *config.Config
	scene    *scene.Scene
	client   *planner.Client
	playback *playback.Engine
	log      *zap.Logger

	phase  Phase
	result Result
}

// New creates an app for sc. Extra options are passed to the planner
// client after the defaults.
func New(cfg *config.Config, sc *scene.Scene, opts ...planner.Option) *App {
	a := &App{
		cfg:   cfg,
		scene: sc,
		log:   logger.Named("app"),
	}

	clientOpts := []planner.Option{planner.WithObstacles(sc)}
	if cfg.Planner.LogDir != "" {
		rec := planlog.NewRecorder(cfg.Planner.LogDir)
		clientOpts = append(clientOpts, planner.WithRecorder(rec))
		a.log.Debug("recording plans", zap.String("dir", rec.Base()))
	}
	a.client = planner.New(planner.ConfigFrom(cfg), append(clientOpts, opts...)...)

	// A nil *Transform must not reach playback as a non-nil Body.
	var follower playback.Body
	if sc.Follower != nil {
		follower = sc.Follower
	}
	a.playback = playback.New(playback.ConfigFrom(cfg), sc.Leader, follower, a.showPath)
	return a
}

// Phase returns the current phase.
func (a *App) Phase() Phase {
	return a.phase
}

// Result returns what the cycle produced so far.
func (a *App) Result() Result {
	return a.result
}

// Start requests a plan from the scene's current poses to goal.
func (a *App) Start(goal planner.Goal) error {
	if !a.client.RequestPlan(a.scene.Start(), goal, a.onPlan) {
		return ErrBusy
	}
	a.phase = PhasePlanning
	a.result = Result{}
	a.log.Info("planning",
		zap.Float64("goal_x", goal.Point.X),
		zap.Float64("goal_z", goal.Point.Z),
		zap.Float64("goal_yaw", goal.LeaderYawDeg),
		zap.Float64("goal_trailer_yaw", goal.FollowerYawDeg),
	)
	return nil
}

// Update advances one tick: it delivers a finished plan, if any, and then
// steps playback.
func (a *App) Update(dt float64) {
	a.client.Dispatch()

	if a.phase != PhasePlaying {
		return
	}
	a.result.Ticks++
	a.result.Played += dt
	if a.playback.Step(dt) {
		a.phase = PhaseDone
		a.log.Info("playback finished",
			zap.Int("ticks", a.result.Ticks),
			zap.Float64("seconds", a.result.Played),
			zap.Stringer("leader", a.scene.Leader),
		)
	}
}

// Run starts a plan to goal and ticks until playback finishes, planning
// fails or ctx ends.
func (a *App) Run(ctx context.Context, goal planner.Goal) (Result, error) {
	if err := a.Start(goal); err != nil {
		return a.result, err
	}

	hz := a.cfg.Playback.TickHz
	if hz <= 0 {
		hz = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.playback.Cancel()
			return a.result, ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			a.Update(dt)
		}

		switch a.phase {
		case PhaseDone:
			return a.result, nil
		case PhaseFailed:
			return a.result, fmt.Errorf("%w: %s", ErrPlanFailed, a.result.Response.Error)
		}
	}
}

func (a *App) onPlan(resp *planner.PlanResponse) {
	a.result.Response = resp
	if a.playback.Apply(resp) {
		a.phase = PhasePlaying
		return
	}
	switch {
	case resp == nil:
		a.result.Response = planner.Failure("no response")
	case resp.OK && resp.PointCount() > 0 && resp.SampleCount() == resp.PointCount():
		// Published but nothing to move.
		a.phase = PhaseDone
		return
	case resp.OK:
		a.result.Response = planner.Failure(resp.Validate().Error())
	}
	a.phase = PhaseFailed
	a.log.Warn("planning failed", zap.String("error", a.result.Response.Error))
}

func (a *App) showPath(points []math.Vec3) {
	a.result.Path = points
	if len(points) == 0 {
		a.log.Debug("path cleared")
		return
	}
	a.log.Info("path published",
		zap.Int("points", len(points)),
		zap.String("first", fmtPoint(points[0])),
		zap.String("last", fmtPoint(points[len(points)-1])),
	)
}

func fmtPoint(p math.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Z)
}
