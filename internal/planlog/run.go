package planlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/towplan/internal/planner"
)

// ErrNoRuns is returned when a base directory holds no run directories.
var ErrNoRuns = errors.New("no run folders")

// Run is one recorded exchange.
type Run struct {
	Dir      string
	Request  planner.PlanRequest
	Response planner.PlanResponse
}

// Name returns the run directory name.
func (r *Run) Name() string {
	return filepath.Base(r.Dir)
}

// LatestRun returns the most recently modified run directory under base.
// Ties are broken by name, newest name first.
func LatestRun(base string) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", err
	}

	type candidate struct {
		path    string
		modTime int64
	}
	var runs []candidate
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		runs = append(runs, candidate{
			path:    filepath.Join(base, e.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoRuns, base)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].modTime != runs[j].modTime {
			return runs[i].modTime > runs[j].modTime
		}
		return runs[i].path > runs[j].path
	})
	return runs[0].path, nil
}

// LoadRun reads the request and response stored in dir.
func LoadRun(dir string) (*Run, error) {
	run := &Run{Dir: dir}
	if err := readJSON(filepath.Join(dir, requestFile), &run.Request); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, responseFile), &run.Response); err != nil {
		return nil, err
	}
	return run, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
