// Package main copies the action and reaction tables of a content directory
// into the PostgreSQL table store.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/config"
	"github.com/cory-johannsen/motioncombat/internal/content"
	"github.com/cory-johannsen/motioncombat/internal/observability"
	"github.com/cory-johannsen/motioncombat/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "content directory; empty uses content.dir from the config")
	prune := flag.Bool("prune", false, "delete stored action tables that the content directory no longer defines")
	list := flag.Bool("list", false, "list stored action tables instead of importing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "import-tables")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	tables := postgres.NewActionTableRepository(pool.DB())
	if *list {
		infos, err := tables.List(ctx)
		if err != nil {
			logger.Fatal("listing tables", zap.Error(err))
		}
		for _, info := range infos {
			logger.Info("stored table",
				zap.String("table", info.Name),
				zap.String("variant", info.Variant),
				zap.Int("entries", info.Entries),
				zap.Int("revision", info.Revision),
				zap.Time("updated_at", info.UpdatedAt),
			)
		}
		return
	}

	dir := *contentDir
	if dir == "" {
		dir = cfg.Content.Dir
	}
	bundle, err := content.Load(dir)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", dir), zap.Error(err))
	}

	for _, name := range bundle.TableNames() {
		rev, err := tables.Save(ctx, bundle.Tables[name])
		if err != nil {
			logger.Fatal("saving table", zap.String("table", name), zap.Error(err))
		}
		logger.Info("table imported", zap.String("table", name), zap.Int("revision", rev))
	}

	reactions := postgres.NewReactionTableRepository(pool.DB())
	for name, t := range bundle.Reactions {
		rev, err := reactions.Save(ctx, t)
		if err != nil {
			logger.Fatal("saving reactions", zap.String("table", name), zap.Error(err))
		}
		logger.Info("reactions imported", zap.String("table", name), zap.Int("revision", rev))
	}

	if *prune {
		infos, err := tables.List(ctx)
		if err != nil {
			logger.Fatal("listing tables", zap.Error(err))
		}
		for _, info := range infos {
			if _, ok := bundle.Tables[info.Name]; ok {
				continue
			}
			if err := tables.Delete(ctx, info.Name); err != nil {
				logger.Fatal("pruning table", zap.String("table", info.Name), zap.Error(err))
			}
			logger.Info("table pruned", zap.String("table", info.Name))
		}
	}

	logger.Info("import complete",
		zap.Int("tables", len(bundle.Tables)),
		zap.Int("reactions", len(bundle.Reactions)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
