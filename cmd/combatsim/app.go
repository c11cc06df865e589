package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/config"
	"github.com/cory-johannsen/motioncombat/internal/content"
	"github.com/cory-johannsen/motioncombat/internal/game/dice"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
	"github.com/cory-johannsen/motioncombat/internal/scripting"
	"github.com/cory-johannsen/motioncombat/internal/sim"
	"github.com/cory-johannsen/motioncombat/internal/storage/postgres"
)

// Options are the command-line choices for one duel.
type Options struct {
	Red    string
	Blue   string
	Gap    float64
	Health float64
	FromDB bool
}

// App holds the wired simulator.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Options Options
	Source  dice.Source
	Scripts *scripting.Manager
	Pool    *postgres.Pool
	Scorers *scoring.Registry
	Ticks   *sim.TickManager
	World   *sim.World
}

func provideSource(cfg config.Config) dice.Source {
	if cfg.Simulation.Seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(cfg.Simulation.Seed)
}

func provideScripts(cfg config.Config, src dice.Source, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(dice.NewLoggedJitterer(src, logger), logger)
	dir := cfg.Scripting.ScriptDir
	if dir == "" {
		return mgr, mgr.Close, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("script directory missing, scripting disabled", zap.String("dir", dir))
		return mgr, mgr.Close, nil
	}
	vms, err := content.LoadScripts(mgr, dir, cfg.Scripting.InstructionLimit)
	if err != nil {
		mgr.Close()
		return nil, nil, err
	}
	logger.Info("scripts loaded", zap.Strings("vms", vms))
	return mgr, mgr.Close, nil
}

// providePool connects to the table store only when the duel reads its
// tables from the database; otherwise it returns nil. The cleanup closes the
// pool; closing it again from the lifecycle is harmless.
func providePool(cfg config.Config, opts Options) (*postgres.Pool, func(), error) {
	if !opts.FromDB {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

func provideBundle(cfg config.Config, pool *postgres.Pool, logger *zap.Logger) (*content.Bundle, error) {
	return loadBundle(context.Background(), cfg.Content.Dir, pool, logger)
}

// loadBundle reads the content directory and, when pool is non-nil,
// replaces its tables with the stored ones.
func loadBundle(ctx context.Context, dir string, pool *postgres.Pool, logger *zap.Logger) (*content.Bundle, error) {
	b, err := content.Load(dir)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return b, nil
	}
	tables, err := postgres.NewActionTableRepository(pool.DB()).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.ReplaceTables(tables); err != nil {
		return nil, fmt.Errorf("stored tables: %w", err)
	}
	reactions, err := postgres.NewReactionTableRepository(pool.DB()).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.ReplaceReactions(reactions); err != nil {
		return nil, fmt.Errorf("stored reactions: %w", err)
	}
	logger.Info("tables loaded from database",
		zap.Int("tables", len(tables)),
		zap.Int("reactions", len(reactions)),
	)
	return b, nil
}

func provideScorers(cfg config.Config, b *content.Bundle, mgr *scripting.Manager, src dice.Source) (*scoring.Registry, error) {
	reg := scoring.NewRegistry()
	tuning := scoring.TuningFromConfig(cfg.Combat)
	if err := scoring.RegisterDefaults(reg, tuning, src); err != nil {
		return nil, err
	}
	if err := b.RegisterScorers(reg, mgr, tuning, src); err != nil {
		return nil, err
	}
	return reg, nil
}

func provideBuses(logger *zap.Logger) *eventbus.Registry {
	return eventbus.NewRegistry(logger)
}

func provideTicks(cfg config.Config) *sim.TickManager {
	return sim.NewTickManager(cfg.Simulation.TickInterval)
}

func provideDeps(cfg config.Config, b *content.Bundle, buses *eventbus.Registry, reg *scoring.Registry, mgr *scripting.Manager, logger *zap.Logger) sim.Deps {
	return sim.Deps{
		Bundle:  b,
		Buses:   buses,
		Scorers: reg,
		Scripts: mgr,
		Combat:  cfg.Combat,
		Logger:  logger,
	}
}

// provideWorld places the two fighters opts.Gap apart, facing each other.
func provideWorld(d sim.Deps, opts Options) (*sim.World, func(), error) {
	w, err := sim.NewWorld(d,
		sim.FighterSpec{Name: "red", Loadout: opts.Red, Health: opts.Health},
		sim.FighterSpec{
			Name:    "blue",
			Loadout: opts.Blue,
			Health:  opts.Health,
			Pose:    geom.Transform{Location: geom.V(opts.Gap, 0, 0), Yaw: 180},
		},
	)
	if err != nil {
		return nil, nil, err
	}
	return w, w.Close, nil
}

// reload rebuilds content after a change under the content directory and
// rebinds the running world. Lua changes reload the script VMs first.
func (a *App) reload(path string) error {
	if content.IsScript(path) {
		if _, err := content.LoadScripts(a.Scripts, a.Config.Scripting.ScriptDir, a.Config.Scripting.InstructionLimit); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b, err := loadBundle(ctx, a.Config.Content.Dir, a.Pool, a.Logger)
	if err != nil {
		return err
	}
	if err := b.RegisterScorers(a.Scorers, a.Scripts, scoring.TuningFromConfig(a.Config.Combat), a.Source); err != nil {
		return err
	}
	return a.World.Reload(b)
}

// duel runs the world on the tick manager until it finishes or ctx ends.
func (a *App) duel(ctx context.Context) error {
	a.Ticks.Start(ctx)
	err := <-a.Ticks.Drive(ctx, a.World)
	r := a.World.Report()
	fields := []zap.Field{
		zap.String("world", r.World),
		zap.Bool("over", r.Over),
		zap.String("winner", r.Winner),
		zap.Duration("elapsed", r.Elapsed),
	}
	for _, f := range r.Fighters {
		fields = append(fields, zap.Float64(f.ID+"_health", f.Health))
	}
	a.Logger.Info("duel report", fields...)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
