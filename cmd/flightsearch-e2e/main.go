// Command flightsearch-e2e runs the flight-search feature files against a
// live Chromium session.
//
// Usage:
//
//	go run ./cmd/flightsearch-e2e [--headed] [--features features] [--tags @smoke] [--format pretty]
//
// Configuration is read from the environment and an optional .env file; see
// internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"

	"github.com/kuitang/flightsearch-e2e/internal/artifacts"
	"github.com/kuitang/flightsearch-e2e/internal/browser"
	"github.com/kuitang/flightsearch-e2e/internal/config"
	"github.com/kuitang/flightsearch-e2e/internal/obs"
	"github.com/kuitang/flightsearch-e2e/internal/steps"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailed      = 1
	exitUsage       = 2
	exitEnvironment = 3
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("flightsearch-e2e", flag.ContinueOnError)
	flags, err := config.ParseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if err := config.LoadDotEnv(flags.EnvFile); err != nil {
		log.Printf("Failed to load env file: %v", err)
		return exitUsage
	}
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		log.Printf("%v", err)
		return exitUsage
	}

	obs.Init()
	obs.SetLevel(cfg.LogLevel)
	cfg.PrintStartupSummary()

	runID := obs.NewRunID()
	ctx := obs.WithCorrelation(context.Background(), obs.Correlation{RunID: runID})
	logger := obs.From(ctx).With("pkg", "main")

	paths, err := resolveFeaturePaths(cfg.FeaturePaths)
	if err != nil {
		logger.Error("feature_paths_invalid", "error", err)
		return exitUsage
	}

	store, err := artifacts.New(ctx, cfg)
	if err != nil {
		logger.Error("artifact_store_failed", "error", err)
		return exitEnvironment
	}

	session, err := browser.Launch(cfg)
	if err != nil {
		logger.Error("browser_launch_failed", "error", err)
		return exitEnvironment
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("browser_close_failed", "error", err)
		}
	}()

	suite := steps.NewSuite(session.Page(), cfg, store, runID)
	status := godog.TestSuite{
		Name:                "flightsearch-e2e",
		ScenarioInitializer: suite.InitializeScenario,
		Options: &godog.Options{
			Format:         cfg.Format,
			Paths:          paths,
			Tags:           cfg.Tags,
			Concurrency:    1,
			Strict:         true,
			DefaultContext: ctx,
		},
	}.Run()

	if status != 0 {
		logger.Error("run_failed", "status", status, "page", session.PreviewContent(500))
		return exitFailed
	}
	logger.Info("run_passed")
	return exitOK
}

// resolveFeaturePaths keeps paths that exist relative to the working
// directory and otherwise looks them up under the project root, so the
// command works from any directory inside the repository.
func resolveFeaturePaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	var root string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil || filepath.IsAbs(p) {
			out = append(out, p)
			continue
		}
		if root == "" {
			r, err := findProjectRoot()
			if err != nil {
				return nil, err
			}
			root = r
		}
		candidate := filepath.Join(root, p)
		if _, err := os.Stat(candidate); err != nil {
			return nil, fmt.Errorf("feature path %q not found", p)
		}
		out = append(out, candidate)
	}
	return out, nil
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find go.mod in any parent directory")
		}
		dir = parent
	}
}
