// Package main runs a duel between two content loadouts in the in-process
// simulator, optionally hot-reloading tables and scripts while it runs.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/config"
	"github.com/cory-johannsen/motioncombat/internal/content"
	"github.com/cory-johannsen/motioncombat/internal/observability"
	"github.com/cory-johannsen/motioncombat/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	red := flag.String("red", "duelist", "loadout of the first fighter")
	blue := flag.String("blue", "brute", "loadout of the second fighter")
	gap := flag.Float64("gap", 400, "starting distance between the fighters")
	health := flag.Float64("health", 0, "starting health of each fighter; 0 uses the default")
	fromDB := flag.Bool("from-db", false, "read action and reaction tables from the database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "combatsim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	opts := Options{Red: *red, Blue: *blue, Gap: *gap, Health: *health, FromDB: *fromDB}
	app, cleanup, err := initializeApp(cfg, logger, opts)
	if err != nil {
		logger.Fatal("building simulator", zap.Error(err))
	}
	defer cleanup()

	logger.Info("simulator ready",
		zap.String("world", app.World.ID()),
		zap.String("red", opts.Red),
		zap.String("blue", opts.Blue),
		zap.Duration("tick", app.Ticks.Interval()),
		zap.Duration("startup", time.Since(start)),
	)

	lifecycle := server.NewLifecycle(logger)
	if app.Pool != nil {
		lifecycle.Add("database", app.Pool)
	}
	if cfg.Content.Watch {
		watcher, err := content.NewWatcher(cfg.Content.Dir, cfg.Content.Debounce)
		if err != nil {
			logger.Fatal("watching content", zap.Error(err))
		}
		watchCtx, stopWatch := context.WithCancel(context.Background())
		lifecycle.Add("content-watcher", &server.FuncService{
			StartFn: func() error {
				err := watcher.Run(watchCtx, logger, app.reload)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			},
			StopFn: func() {
				stopWatch()
				_ = watcher.Close()
			},
		})
	}
	duelCtx, stopDuel := context.WithCancel(context.Background())
	lifecycle.AddTerminal("duel", &server.FuncService{
		StartFn: func() error { return app.duel(duelCtx) },
		StopFn:  stopDuel,
	})

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("simulator stopped with error", zap.Error(err))
		cleanup()
		_ = logger.Sync()
		os.Exit(1)
	}
}
