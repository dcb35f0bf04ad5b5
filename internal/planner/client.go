// Package planner talks to the external path-planning service.
//
// A Client admits at most one request at a time. The HTTP round trip runs
// off the tick goroutine; its result waits in the client until the host
// calls Dispatch from its update loop, which then runs the completion
// callback on the host's goroutine.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/towplan/internal/config"
	"github.com/Faultbox/towplan/internal/frame"
	"github.com/Faultbox/towplan/internal/logger"
	"github.com/Faultbox/towplan/internal/obstacle"
	"github.com/Faultbox/towplan/pkg/math"
)

const (
	planPath     = "/plan"
	maxBodyBytes = 64 << 20
	maxLogBody   = 512

	// ParseFailure is the error text for a response body that could not be
	// decoded or whose path channels are not index-paired.
	ParseFailure = "parse fail"
)

// Config holds client settings.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	WorldScale       float64
	XYResolution     float64
	YawResolutionDeg float64

	ObstacleTag          string
	SampleStep           float64
	IncludeAllIfUntagged bool
}

// ConfigFrom extracts client settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:              cfg.Planner.BaseURL,
		Timeout:              cfg.Planner.Timeout(),
		WorldScale:           cfg.World.WorldScale,
		XYResolution:         cfg.Planner.XYGridResolution,
		YawResolutionDeg:     cfg.Planner.YawGridResolutionDeg,
		ObstacleTag:          cfg.Obstacles.Tag,
		SampleStep:           cfg.Obstacles.SampleStep,
		IncludeAllIfUntagged: cfg.Obstacles.IncludeAllIfUntagged,
	}
}

// StartPose is where the two bodies are when planning starts.
// Follower is optional; without it the towed heading equals the leader's.
type StartPose struct {
	Leader   frame.EnginePose
	Follower *frame.EnginePose
}

// Goal is the picked ground point and the desired final headings.
type Goal struct {
	Point          frame.EnginePoint
	LeaderYawDeg   float64
	FollowerYawDeg float64
}

// Callback receives the outcome of an accepted request.
type Callback func(resp *PlanResponse)

// Recorder persists request/response pairs.
type Recorder interface {
	Record(id string, req *PlanRequest, resp *PlanResponse) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObstacles sets the scene query that supplies box volumes.
func WithObstacles(src obstacle.Source) Option {
	return func(c *Client) { c.obstacles = src }
}

// WithRecorder sets where request/response pairs are written.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

type completion struct {
	resp   *PlanResponse
	onDone Callback
}

// Client issues planning requests.
type Client struct {
	cfg       Config
	conv      frame.Converter
	sampler   obstacle.Sampler
	http      *http.Client
	obstacles obstacle.Source
	recorder  Recorder
	log       *zap.Logger

	slot *semaphore.Weighted
	done chan completion
}

// New creates a planner client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		conv:    frame.NewConverter(cfg.WorldScale),
		sampler: obstacle.Sampler{Step: cfg.SampleStep},
		http:    &http.Client{},
		slot:    semaphore.NewWeighted(1),
		done:    make(chan completion, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("planner")
	}
	return c
}

// Busy reports whether a request is in flight or awaiting dispatch.
// It probes the slot by briefly taking it, so it must be called from the
// same goroutine that calls RequestPlan; a RequestPlan racing with Busy
// from another goroutine could be dropped.
func (c *Client) Busy() bool {
	if !c.slot.TryAcquire(1) {
		return true
	}
	c.slot.Release(1)
	return false
}

// RequestPlan starts a planning request from start to goal. If another
// request is still outstanding the call does nothing and returns false;
// onDone is then never invoked. Otherwise onDone is invoked exactly once,
// from Dispatch, with either the decoded response or a failure.
func (c *Client) RequestPlan(start StartPose, goal Goal, onDone Callback) bool {
	if !c.slot.TryAcquire(1) {
		c.log.Debug("plan request dropped, another is in flight")
		return false
	}

	req := c.BuildRequest(start, goal)
	go func() {
		resp := c.Plan(context.Background(), req)
		c.done <- completion{resp: resp, onDone: onDone}
	}()
	return true
}

// Dispatch delivers a finished request, if any, and reports whether one
// was delivered. Call it once per tick from the goroutine that owns the
// scene. The client is idle again before onDone runs, so onDone may start
// the next request.
func (c *Client) Dispatch() bool {
	select {
	case done := <-c.done:
		c.deliver(done)
		return true
	default:
		return false
	}
}

// Wait blocks until the outstanding request finishes and delivers it.
// It returns false if ctx ends first.
func (c *Client) Wait(ctx context.Context) bool {
	select {
	case done := <-c.done:
		c.deliver(done)
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) deliver(done completion) {
	c.slot.Release(1)
	if done.onDone != nil {
		done.onDone(done.resp)
	}
}

// BuildRequest converts the start and goal poses and the current obstacle
// set into a planner request.
func (c *Client) BuildRequest(start StartPose, goal Goal) *PlanRequest {
	s := c.conv.PoseToPlanner(start.Leader)
	styaw := s.Yaw
	if start.Follower != nil {
		styaw = frame.HeadingEngineToPlanner(start.Follower.YawDeg)
	}
	g := c.conv.PointToPlanner(goal.Point)

	req := &PlanRequest{
		SX:      s.X,
		SY:      s.Y,
		SYaw:    s.Yaw,
		STYaw:   styaw,
		GX:      g.X,
		GY:      g.Y,
		GYaw:    frame.HeadingEngineToPlanner(goal.LeaderYawDeg),
		GTYaw:   frame.HeadingEngineToPlanner(goal.FollowerYawDeg),
		XYReso:  c.cfg.XYResolution,
		YawReso: c.cfg.YawResolutionDeg * math.Deg2Rad,
		OX:      []float64{},
		OY:      []float64{},
	}

	if c.obstacles == nil {
		return req
	}
	selected := obstacle.Select(c.obstacles.Footprints(), c.cfg.ObstacleTag, c.cfg.IncludeAllIfUntagged)
	cloud := c.sampler.Sample(selected)
	req.OX = make([]float64, 0, cloud.Len())
	req.OY = make([]float64, 0, cloud.Len())
	for i := 0; i < cloud.Len(); i++ {
		p := c.conv.PointToPlanner(frame.EnginePoint{X: cloud.X[i], Z: cloud.Z[i]})
		req.OX = append(req.OX, p.X)
		req.OY = append(req.OY, p.Y)
	}
	return req
}

// Plan performs one request synchronously. It never fails: transport and
// decode problems come back as a response with OK false.
func (c *Client) Plan(ctx context.Context, req *PlanRequest) *PlanResponse {
	id := uuid.NewString()
	resp := c.roundTrip(ctx, id, req)

	if c.recorder != nil {
		if err := c.recorder.Record(id, req, resp); err != nil {
			c.log.Warn("recording plan failed", zap.String("request_id", id), zap.Error(err))
		}
	}
	return resp
}

func (c *Client) roundTrip(ctx context.Context, id string, req *PlanRequest) *PlanResponse {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + planPath
	log := c.log.With(zap.String("request_id", id), zap.String("url", url))

	body, err := json.Marshal(req)
	if err != nil {
		log.Error("plan request encode failed", zap.Error(err))
		return Failure(err.Error())
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error("plan request build failed", zap.Error(err))
		return Failure(err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", id)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		log.Error("plan request failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("up_bytes", len(body)),
		)
		return Failure(err.Error())
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		log.Error("plan response read failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return Failure(err.Error())
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %s", httpResp.Status)
		log.Error("plan request failed",
			zap.Int("code", httpResp.StatusCode),
			zap.Duration("elapsed", elapsed),
			zap.Int("up_bytes", len(body)),
			zap.Int("dl_bytes", len(data)),
			zap.String("body", truncate(data, maxLogBody)),
		)
		return Failure(msg)
	}

	var out PlanResponse
	if err := json.Unmarshal(data, &out); err != nil {
		log.Error("plan response parse failed", zap.Error(err), zap.String("body", truncate(data, maxLogBody)))
		return Failure(ParseFailure)
	}
	if out.OK {
		if err := out.Validate(); err != nil && !errors.Is(err, ErrEmptyPath) {
			log.Error("plan response rejected", zap.Error(err))
			return Failure(ParseFailure)
		}
	}

	log.Info("plan received",
		zap.Bool("ok", out.OK),
		zap.String("error", out.Error),
		zap.Int("n", out.PointCount()),
		zap.Float64("cost", out.Cost),
		zap.Duration("elapsed", elapsed),
	)
	return &out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
