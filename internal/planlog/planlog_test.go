package planlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/towplan/internal/planner"
)

func sampleRequest() *planner.PlanRequest {
	return &planner.PlanRequest{
		SX: 0, SY: 0, SYaw: 0, STYaw: 0,
		GX: 10, GY: 5, GYaw: 1.57, GTYaw: 1.57,
		XYReso:  2,
		YawReso: 0.26,
		OX:      []float64{4, 4, 5, 5},
		OY:      []float64{1, 2, 1, 2},
	}
}

func sampleResponse() *planner.PlanResponse {
	return &planner.PlanResponse{
		OK:   true,
		X:    []float64{0, 5, 10},
		Y:    []float64{0, 3, 5},
		Yaw:  []float64{0, 0.8, 1.57},
		Yaw1: []float64{0, 0.6, 1.57},
		Cost: 12.5,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordWritesRunDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "planner_logs")
	rec := NewRecorder(base)
	rec.now = fixedClock(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))

	require.NoError(t, rec.Record("abc", sampleRequest(), sampleResponse()))

	dir := filepath.Join(base, "20260304_050607_abc")
	assert.FileExists(t, filepath.Join(dir, "request.json"))
	assert.FileExists(t, filepath.Join(dir, "response.json"))

	run, err := LoadRun(dir)
	require.NoError(t, err)
	assert.Equal(t, *sampleRequest(), run.Request)
	assert.Equal(t, *sampleResponse(), run.Response)
	assert.Equal(t, "20260304_050607_abc", run.Name())
}

func TestRecordUsesWireNames(t *testing.T) {
	base := t.TempDir()
	rec := NewRecorder(base)
	require.NoError(t, rec.Record("id1", sampleRequest(), sampleResponse()))

	dir, err := LatestRun(base)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "request.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"styaw"`)
	assert.Contains(t, string(data), `"ox"`)
}

func TestLatestRun(t *testing.T) {
	base := t.TempDir()
	old := filepath.Join(base, "20250101_000000_a")
	newer := filepath.Join(base, "20250102_000000_b")
	require.NoError(t, os.Mkdir(old, 0755))
	require.NoError(t, os.Mkdir(newer, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), nil, 0644))

	now := time.Now()
	require.NoError(t, os.Chtimes(old, now, now))
	require.NoError(t, os.Chtimes(newer, now.Add(-time.Hour), now.Add(-time.Hour)))

	got, err := LatestRun(base)
	require.NoError(t, err)
	assert.Equal(t, old, got, "modification time wins over name")
}

func TestLatestRunEmpty(t *testing.T) {
	_, err := LatestRun(t.TempDir())
	assert.ErrorIs(t, err, ErrNoRuns)

	_, err = LatestRun(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadRunMissingResponse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeJSON(filepath.Join(dir, "request.json"), sampleRequest()))

	_, err := LoadRun(dir)
	assert.Error(t, err)
}

func TestTitle(t *testing.T) {
	ok := &Run{Response: *sampleResponse()}
	assert.Equal(t, "Path ok=true, n=3, cost=12.5", ok.Title())

	failed := &Run{Response: *planner.Failure("HTTP 500 Internal Server Error")}
	assert.Equal(t, "Path ok=false, error=HTTP 500 Internal Server Error", failed.Title())
}

func TestPlotEqualAxes(t *testing.T) {
	p, err := Plot(&Run{Request: *sampleRequest(), Response: *sampleResponse()})
	require.NoError(t, err)

	assert.InDelta(t, p.X.Max-p.X.Min, p.Y.Max-p.Y.Min, 1e-9)
	assert.LessOrEqual(t, p.X.Min, 0.0)
	assert.GreaterOrEqual(t, p.X.Max, 10.0)
}

func TestRenderPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plots", "run.png")
	run := &Run{Request: *sampleRequest(), Response: *sampleResponse()}
	require.NoError(t, Render(run, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderFailedRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "failed.png")
	req := &planner.PlanRequest{SX: 1, SY: 1, GX: 1, GY: 1}
	run := &Run{Request: *req, Response: *planner.Failure("no path")}
	require.NoError(t, Render(run, out))
	assert.FileExists(t, out)
}
