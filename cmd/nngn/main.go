package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nngn/engine/internal/config"
	"github.com/nngn/engine/internal/core/event"
	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/data"
	"github.com/nngn/engine/internal/persist"
	"github.com/nngn/engine/internal/scripting"
	"github.com/nngn/engine/internal/system"
	"github.com/nngn/engine/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("NNGN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Entity world
	bus := event.NewBus()
	ws, err := world.NewState(cfg.Registry.Max, bus, log)
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	logLifecycle(bus, log)

	// 4. Snapshot store, then restore or seed
	store, closeStore, err := openSnapshotStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	defer closeStore()

	restored, err := restore(ctx, store, ws, log)
	if err != nil {
		return err
	}
	if !restored {
		seeds, err := data.LoadSeedTable(cfg.Data.SeedFile)
		if err != nil {
			return fmt.Errorf("load seeds: %w", err)
		}
		if _, err := ws.SpawnSeeds(seeds); err != nil {
			return fmt.Errorf("spawn seeds: %w", err)
		}
	}
	log.Info("entities ready", zap.Int("live", ws.N()), zap.Int("max", ws.Max()))

	// 5. Scripts
	lua, err := scripting.NewEngine(cfg.Scripting.Dir, ws, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()

	// 6. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewScriptSystem(lua))
	runner.Register(system.NewMotionSystem(ws))
	runner.Register(system.NewParentSystem(ws, log))
	runner.Register(system.NewCleanupSystem(ws))
	var snapshots *system.SnapshotSystem
	if store != nil {
		snapshots = system.NewSnapshotSystem(ws, store, log, cfg.Snapshot.Interval)
		runner.Register(snapshots)
	}

	// 7. Loop
	loop(ctx, runner, cfg.Loop, log)
	log.Info("loop stopped", zap.Uint64("ticks", runner.Ticks()), zap.Int("live", ws.N()))

	// 8. Save
	if snapshots != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := snapshots.SaveNow(saveCtx); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	return nil
}

// loadConfig falls back to built-in defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func loop(ctx context.Context, runner *coresys.Runner, cfg config.LoopConfig, log *zap.Logger) {
	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			runner.Tick(dt)
			if elapsed := time.Since(now); elapsed > cfg.TickRate {
				log.Warn("tick overran", zap.Duration("elapsed", elapsed), zap.Duration("budget", cfg.TickRate))
			}
			if cfg.Ticks > 0 && runner.Ticks() >= cfg.Ticks {
				return
			}
		}
	}
}

func openSnapshotStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (persist.Store, func(), error) {
	noop := func() {}
	if !cfg.Snapshot.Enabled {
		return nil, noop, nil
	}
	if !cfg.Snapshot.UseDatabase {
		return persist.NewFileStore(cfg.Snapshot.File), noop, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := persist.NewDB(dbCtx, cfg.Database, log)
	if err != nil {
		return nil, noop, fmt.Errorf("database: %w", err)
	}
	version, err := persist.RunMigrations(dbCtx, db.Pool)
	if err != nil {
		db.Close()
		return nil, noop, fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied", zap.Int64("version", version))

	repo := persist.NewSnapshotRepo(db)
	closeFn := func() {
		pruneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if n, err := repo.Prune(pruneCtx, cfg.Snapshot.Keep); err != nil {
			log.Warn("prune snapshots", zap.Error(err))
		} else if n > 0 {
			log.Debug("pruned snapshots", zap.Int64("count", n))
		}
		db.Close()
	}
	return repo, closeFn, nil
}

func restore(ctx context.Context, store persist.Store, ws *world.State, log *zap.Logger) (bool, error) {
	if store == nil {
		return false, nil
	}
	snap, err := store.LoadLatest(ctx)
	if errors.Is(err, persist.ErrNoSnapshot) {
		log.Info("no snapshot found, seeding")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if _, err := persist.Replay(ws, snap); err != nil {
		return false, err
	}
	log.Info("snapshot restored",
		zap.Stringer("id", snap.ID),
		zap.Time("taken_at", snap.TakenAt),
		zap.Int("entities", len(snap.Entities)))
	return true, nil
}

func logLifecycle(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.EntityCreated) {
		log.Debug("entity created", zap.Stringer("id", ev.ID), zap.String("name", ev.Name), zap.String("tag", ev.Tag))
	})
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		log.Debug("entity destroyed", zap.Stringer("id", ev.ID), zap.String("name", ev.Name))
	})
	event.Subscribe(bus, func(ev event.EntityRenamed) {
		log.Debug("entity renamed", zap.Stringer("id", ev.ID), zap.String("from", ev.Old), zap.String("to", ev.New))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
