// Package planlog keeps a trail of planner exchanges on disk and renders
// them for inspection.
//
// Each exchange is stored in its own run directory under a base directory:
//
//	<base>/<YYYYMMDD_HHMMSS>_<request id>/request.json
//	<base>/<YYYYMMDD_HHMMSS>_<request id>/response.json
package planlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/towplan/internal/logger"
	"github.com/Faultbox/towplan/internal/planner"
)

const (
	requestFile  = "request.json"
	responseFile = "response.json"
	runTimeFmt   = "20060102_150405"
)

// Recorder writes request/response pairs into run directories.
type Recorder struct {
	mu   sync.Mutex
	base string
	now  func() time.Time
	log  *zap.Logger
}

// NewRecorder creates a recorder rooted at base. The directory is created
// on first use.
func NewRecorder(base string) *Recorder {
	return &Recorder{
		base: base,
		now:  time.Now,
		log:  logger.Named("planlog"),
	}
}

// Base returns the directory runs are written under.
func (r *Recorder) Base() string {
	return r.base
}

// Record implements planner.Recorder.
func (r *Recorder) Record(id string, req *planner.PlanRequest, resp *planner.PlanResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.base, fmt.Sprintf("%s_%s", r.now().Format(runTimeFmt), id))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, requestFile), req); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, responseFile), resp); err != nil {
		return err
	}

	r.log.Debug("plan recorded", zap.String("dir", dir))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
