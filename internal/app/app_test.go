package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/towplan/internal/config"
	"github.com/Faultbox/towplan/internal/frame"
	"github.com/Faultbox/towplan/internal/planner"
	"github.com/Faultbox/towplan/internal/scene"
)

func straightPlan() planner.PlanResponse {
	return planner.PlanResponse{
		OK:   true,
		X:    []float64{0, 1, 2},
		Y:    []float64{0, 0, 0},
		Yaw:  []float64{0, 0, 0},
		Yaw1: []float64{0, 0, 0},
		Cost: 2,
	}
}

func planServer(t *testing.T, resp planner.PlanResponse) (*httptest.Server, func() *planner.PlanRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		last *planner.PlanRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req planner.PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		last = &req
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, func() *planner.PlanRequest {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Planner.BaseURL = baseURL
	cfg.Planner.TimeoutSec = 5
	cfg.Playback.Speed = 50
	cfg.Playback.TickHz = 200
	return cfg
}

func towScene() *scene.Scene {
	return scene.New(scene.File{
		Leader:   scene.Pose{X: 0, Z: 0, Yaw: 90},
		Follower: &scene.Pose{X: -3, Z: 0, Yaw: 90},
		Boxes: []scene.Box{
			{Name: "Hangar", Tag: "Obstacle", Position: scene.Vec{5, 0, 5}, Size: scene.Vec{1, 1, 1}},
		},
	})
}

func goal() planner.Goal {
	return planner.Goal{Point: frame.EnginePoint{X: 2, Z: 0}, LeaderYawDeg: 90, FollowerYawDeg: 90}
}

func TestRunPlaysPathToGoal(t *testing.T) {
	srv, lastReq := planServer(t, straightPlan())
	sc := towScene()
	a := New(testConfig(srv.URL), sc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := a.Run(ctx, goal())
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, a.Phase())
	assert.Len(t, res.Path, 3)
	assert.Positive(t, res.Ticks)

	assert.InDelta(t, 2, sc.Leader.Position.X, 1e-9)
	assert.InDelta(t, 0.05, sc.Leader.Position.Y, 1e-9)
	assert.InDelta(t, 90, sc.Leader.Yaw, 1e-9)
	assert.InDelta(t, -1, sc.Follower.Position.X, 1e-9)

	req := lastReq()
	require.NotNil(t, req)
	assert.InDelta(t, 0, req.SYaw, 1e-9, "engine heading 90 is planner heading 0")
	assert.Equal(t, 2.0, req.GX)
	assert.NotEmpty(t, req.OX, "tagged box is sampled")
}

func TestRunReportsPlannerFailure(t *testing.T) {
	srv, _ := planServer(t, planner.PlanResponse{OK: false, Error: "no path found"})
	sc := towScene()
	a := New(testConfig(srv.URL), sc)

	_, err := a.Run(context.Background(), goal())
	require.ErrorIs(t, err, ErrPlanFailed)
	assert.Contains(t, err.Error(), "no path found")
	assert.Equal(t, PhaseFailed, a.Phase())
	assert.Zero(t, sc.Leader.Updates)
}

func TestRunHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL), towScene())
	res, err := a.Run(context.Background(), goal())
	require.ErrorIs(t, err, ErrPlanFailed)
	assert.Contains(t, res.Response.Error, "HTTP 500")
}

func TestRunStopsOnContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a := New(testConfig(srv.URL), towScene())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Run(ctx, goal())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, PhasePlanning, a.Phase())
}

func TestStartWhileBusy(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(straightPlan())
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL), towScene())
	require.NoError(t, a.Start(goal()))
	assert.ErrorIs(t, a.Start(goal()), ErrBusy)

	close(release)
	require.Eventually(t, func() bool {
		a.Update(0.01)
		return a.Phase() == PhaseDone
	}, 5*time.Second, time.Millisecond)
}

func TestLeaderOnlySceneShowsPath(t *testing.T) {
	srv, lastReq := planServer(t, straightPlan())
	sc := scene.New(scene.File{Leader: scene.Pose{Yaw: 45}})
	a := New(testConfig(srv.URL), sc)

	res, err := a.Run(context.Background(), goal())
	require.NoError(t, err)
	assert.Len(t, res.Path, 3)
	assert.Zero(t, res.Ticks)
	assert.Zero(t, sc.Leader.Updates)

	req := lastReq()
	require.NotNil(t, req)
	assert.Equal(t, req.SYaw, req.STYaw, "towed heading defaults to the leader's")
}

func TestRunRecordsExchange(t *testing.T) {
	srv, _ := planServer(t, straightPlan())
	cfg := testConfig(srv.URL)
	cfg.Planner.LogDir = filepath.Join(t.TempDir(), "planner_logs")

	_, err := New(cfg, towScene()).Run(context.Background(), goal())
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.Planner.LogDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.FileExists(t, filepath.Join(cfg.Planner.LogDir, entries[0].Name(), "response.json"))
}

func TestPlanWithoutHeadingsFails(t *testing.T) {
	a := New(testConfig("http://127.0.0.1:0"), towScene())

	a.onPlan(&planner.PlanResponse{OK: true, X: []float64{0, 1, 2}, Y: []float64{0, 0, 0}})

	assert.Equal(t, PhaseFailed, a.Phase())
	assert.False(t, a.Result().Response.OK)
	assert.Contains(t, a.Result().Response.Error, planner.ErrLengthMismatch.Error())
	assert.Len(t, a.Result().Path, 3, "points are still shown")
}

func TestSinglePointPlanIsDone(t *testing.T) {
	a := New(testConfig("http://127.0.0.1:0"), towScene())

	a.onPlan(&planner.PlanResponse{OK: true, X: []float64{2}, Y: []float64{0}, Yaw: []float64{0}, Yaw1: []float64{0}})

	assert.Equal(t, PhaseDone, a.Phase())
	assert.Len(t, a.Result().Path, 1)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "planning", PhasePlanning.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
