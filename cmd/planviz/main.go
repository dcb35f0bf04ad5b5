// planviz is a CLI utility for inspecting recorded planner exchanges.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/towplan/internal/planlog"
)

const defaultBase = "planner_logs"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "render":
		err = cmdRender(os.Stdout, args)
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "list", "ls":
		err = cmdList(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`planviz - planner log viewer

Usage:
  planviz <command> [options]

Commands:
  render [--base dir] [--run name] [--out file]  Draw a run to an image
  info   [--base dir] [--run name]               Show request/response summary
  list   [--base dir]                            List recorded runs

Without --run the most recently modified run is used.

Examples:
  planviz render
  planviz render --run 20260101_120000_5f0c --out plan.svg
  planviz list --base planner_logs`)
}

func runFlags(name string, args []string) (base, run, out string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&base, "base", defaultBase, "log base dir")
	fs.StringVar(&run, "run", "", "specific run folder name under base")
	fs.StringVar(&out, "out", "", "output image (png, svg or pdf)")
	err = fs.Parse(args)
	return base, run, out, err
}

func resolveRun(base, run string) (*planlog.Run, error) {
	dir := filepath.Join(base, run)
	if run == "" {
		var err error
		if dir, err = planlog.LatestRun(base); err != nil {
			return nil, err
		}
	}
	return planlog.LoadRun(dir)
}

func cmdRender(w io.Writer, args []string) error {
	base, name, out, err := runFlags("render", args)
	if err != nil {
		return err
	}
	run, err := resolveRun(base, name)
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(run.Dir, "plot.png")
	}
	if err := planlog.Render(run, out); err != nil {
		return err
	}
	fmt.Fprintf(w, "[viz] run_dir = %s\n", run.Dir)
	fmt.Fprintf(w, "[viz] %s -> %s\n", run.Title(), out)
	return nil
}

func cmdInfo(w io.Writer, args []string) error {
	base, name, _, err := runFlags("info", args)
	if err != nil {
		return err
	}
	run, err := resolveRun(base, name)
	if err != nil {
		return err
	}

	req, resp := run.Request, run.Response
	fmt.Fprintf(w, "Run:        %s\n", run.Name())
	fmt.Fprintf(w, "Start:      (%.3f, %.3f) yaw %.3f trailer %.3f\n", req.SX, req.SY, req.SYaw, req.STYaw)
	fmt.Fprintf(w, "Goal:       (%.3f, %.3f) yaw %.3f trailer %.3f\n", req.GX, req.GY, req.GYaw, req.GTYaw)
	fmt.Fprintf(w, "Resolution: xy %.3f yaw %.4f rad\n", req.XYReso, req.YawReso)
	fmt.Fprintf(w, "Obstacles:  %d points\n", min(len(req.OX), len(req.OY)))
	fmt.Fprintf(w, "Result:     ok=%t error=%q\n", resp.OK, resp.Error)
	fmt.Fprintf(w, "Path:       %d points, %d samples, cost %g\n", resp.PointCount(), resp.SampleCount(), resp.Cost)
	if n := len(resp.Direction); n > 0 {
		fmt.Fprintf(w, "Direction:  %d entries\n", n)
	}
	return nil
}

func cmdList(w io.Writer, args []string) error {
	base, _, _, err := runFlags("list", args)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, n := range names {
		run, err := planlog.LoadRun(filepath.Join(base, n))
		if err != nil {
			fmt.Fprintf(w, "%-48s  (unreadable: %v)\n", n, err)
			continue
		}
		fmt.Fprintf(w, "%-48s  %s\n", n, run.Title())
	}
	fmt.Fprintf(w, "\nTotal: %d runs\n", len(names))
	return nil
}
