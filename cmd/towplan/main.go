// Package main is the entry point for the headless tow planner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/towplan/internal/app"
	"github.com/Faultbox/towplan/internal/config"
	"github.com/Faultbox/towplan/internal/frame"
	"github.com/Faultbox/towplan/internal/logger"
	"github.com/Faultbox/towplan/internal/planner"
	"github.com/Faultbox/towplan/internal/scene"
)

var (
	flagScene          = flag.String("scene", "", "Path to scene file (boxes and start poses)")
	flagGoal           = flag.String("goal", "", "Goal point as x,z in engine units")
	flagGoalYaw        = flag.Float64("goal-yaw", 0, "Goal heading of the towing vehicle in degrees")
	flagGoalTrailerYaw = flag.Float64("goal-trailer-yaw", 0, "Goal heading of the towed object in degrees")
	flagWriteConfig    = flag.String("write-config", "", "Write the effective config to this path and exit")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *flagWriteConfig != "" {
		if err := cfg.SaveTo(*flagWriteConfig); err != nil {
			logger.Error("writing config failed", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("config written", zap.String("path", *flagWriteConfig))
		return
	}

	logger.Info("=== TowPlan ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	point, err := parseGoal(*flagGoal)
	if err != nil {
		return err
	}

	sc, err := loadScene(*flagScene, cfg.Playback.FollowerOffset)
	if err != nil {
		return err
	}
	logger.Info("scene loaded", zap.Int("boxes", len(sc.Boxes)), zap.Bool("follower", sc.Follower != nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, sc)
	res, err := a.Run(ctx, planner.Goal{
		Point:          point,
		LeaderYawDeg:   *flagGoalYaw,
		FollowerYawDeg: *flagGoalTrailerYaw,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return nil
		}
		return err
	}

	fmt.Printf("path points: %d  cost: %g  played: %.2fs\n", len(res.Path), res.Response.Cost, res.Played)
	fmt.Printf("leader:   %s\n", sc.Leader)
	if sc.Follower != nil {
		fmt.Printf("follower: %s\n", sc.Follower)
	}
	return nil
}

func parseGoal(s string) (frame.EnginePoint, error) {
	if s == "" {
		return frame.EnginePoint{}, errors.New("--goal is required (x,z)")
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return frame.EnginePoint{}, fmt.Errorf("invalid --goal %q: want x,z", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return frame.EnginePoint{}, fmt.Errorf("invalid --goal x: %w", err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return frame.EnginePoint{}, fmt.Errorf("invalid --goal z: %w", err)
	}
	return frame.EnginePoint{X: x, Z: z}, nil
}

// loadScene reads the scene file, or builds an empty apron with the
// follower parked behind the leader.
func loadScene(path string, offset float64) (*scene.Scene, error) {
	if path != "" {
		return scene.Load(path)
	}
	return scene.New(scene.File{
		Leader:   scene.Pose{},
		Follower: &scene.Pose{Z: -offset},
	}), nil
}
